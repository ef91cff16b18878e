package internal

import (
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/adrg/xdg"
)

// MCP runs over stdio, so diagnostics go to a file in the cache dir
// instead of stdout.

var (
	mcpLogger     *log.Logger
	mcpLoggerOnce sync.Once
	mcpLogEnabled bool
)

// InitMCPLogging initializes MCP logging based on config
func InitMCPLogging(config *Config) {
	mcpLoggerOnce.Do(func() {
		mcpLogEnabled = config.MCPLogEnabled
		if !mcpLogEnabled {
			return
		}

		logDir := filepath.Join(xdg.CacheHome, "ytx")
		if err := os.MkdirAll(logDir, 0755); err != nil {
			mcpLogEnabled = false
			return
		}

		logFile, err := os.OpenFile(filepath.Join(logDir, "mcp.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			mcpLogEnabled = false
			return
		}

		mcpLogger = log.New(logFile, "", log.LstdFlags|log.Lmicroseconds)
	})
}

// mcpLogf logs a formatted message if MCP logging is enabled
func mcpLogf(level, format string, args ...any) {
	if !mcpLogEnabled || mcpLogger == nil {
		return
	}

	mcpLogger.Printf("[MCP] [%s] "+format, append([]any{level}, args...)...)
}

// MCPLogInfo logs an info message
func MCPLogInfo(format string, args ...any) {
	mcpLogf("INFO", format, args...)
}

// MCPLogError logs an error message
func MCPLogError(format string, args ...any) {
	mcpLogf("ERROR", format, args...)
}
