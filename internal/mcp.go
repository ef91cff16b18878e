package internal

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// MCPServer wraps the MCP server and application dependencies
type MCPServer struct {
	app       *App
	mcpServer *server.MCPServer
}

// NewMCPServer creates a new MCP server instance
func NewMCPServer(app *App) *MCPServer {
	mcpServer := server.NewMCPServer(
		"ytx-server",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	s := &MCPServer{
		app:       app,
		mcpServer: mcpServer,
	}

	s.registerTools()

	return s
}

// registerTools registers all available MCP tools
func (s *MCPServer) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("get_transcript",
		mcp.WithDescription("Fetch the caption transcript of a YouTube video. Returns plain text with [MM:SS] timestamps by default; set format to 'json' for the raw timed segments. Fails if the video has no captions - check list_transcript_languages first."),
		mcp.WithString("url",
			mcp.Description("YouTube video URL or ID"),
			mcp.Required(),
		),
		mcp.WithString("language",
			mcp.Description("Caption language code (e.g. 'en', 'es'); default picks manual English first"),
		),
		mcp.WithString("format",
			mcp.Description("Output format: 'text' (default) or 'json'"),
		),
		mcp.WithBoolean("timestamps",
			mcp.Description("Include [MM:SS] prefixes in text output (default true)"),
		),
	), s.handleGetTranscript)

	s.mcpServer.AddTool(mcp.NewTool("list_transcript_languages",
		mcp.WithDescription("List the caption languages available for a YouTube video, including whether each track is manual or auto-generated."),
		mcp.WithString("url",
			mcp.Description("YouTube video URL or ID"),
			mcp.Required(),
		),
	), s.handleListLanguages)

	s.mcpServer.AddTool(mcp.NewTool("get_video_metadata",
		mcp.WithDescription("Extract video metadata (title, channel, duration, caption availability) as formatted text."),
		mcp.WithString("url",
			mcp.Description("YouTube video URL or ID"),
			mcp.Required(),
		),
	), s.handleGetMetadata)
}

// handleGetTranscript implements the get_transcript tool
func (s *MCPServer) handleGetTranscript(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url parameter is required and must be a string"), nil
	}

	format, err := ParseOutputFormat(request.GetString("format", string(FormatText)))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	opts := ExtractOptions{
		Format:     format,
		Language:   request.GetString("language", ""),
		Timestamps: request.GetBool("timestamps", true),
		// No Whisper fallback over MCP; missing captions are an error
		// and nothing may prompt on the stdio transport
		FallbackWhisper: false,
		NonInteractive:  true,
	}

	MCPLogInfo("get_transcript url=%s language=%q format=%s", url, opts.Language, opts.Format)

	transcript, err := s.app.FormattedTranscript(ctx, url, opts)
	if err != nil {
		MCPLogError("get_transcript failed: %v", err)
		return mcp.NewToolResultErrorFromErr("no captions available - use list_transcript_languages to check availability", err), nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(transcript)},
	}, nil
}

// handleListLanguages implements the list_transcript_languages tool
func (s *MCPServer) handleListLanguages(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url parameter is required and must be a string"), nil
	}

	_, videoID := ParseArg(url)
	languages, err := s.app.youtube.Languages(ctx, videoID)
	if err != nil {
		MCPLogError("list_transcript_languages failed: %v", err)
		return mcp.NewToolResultErrorFromErr("language listing error", err), nil
	}

	var buf strings.Builder
	for _, lang := range languages {
		kind := "manual"
		if lang.AutoGenerated {
			kind = "auto-generated"
		}
		buf.WriteString(fmt.Sprintf("%s (%s) [%s]\n", lang.Language, lang.Code, kind))
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(buf.String())},
	}, nil
}

// handleGetMetadata implements the get_video_metadata tool
func (s *MCPServer) handleGetMetadata(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url parameter is required and must be a string"), nil
	}

	metadata, err := s.app.Metadata(ctx, url)
	if err != nil {
		MCPLogError("get_video_metadata failed: %v", err)
		return mcp.NewToolResultErrorFromErr("metadata error", err), nil
	}

	var buf strings.Builder
	buf.WriteString(fmt.Sprintf("Title: %s\n", metadata.Title))
	buf.WriteString(fmt.Sprintf("Channel: %s\n", metadata.Channel))
	buf.WriteString(fmt.Sprintf("Duration: %.0f seconds\n", metadata.Duration))
	buf.WriteString(fmt.Sprintf("Has Captions: %t\n", metadata.HasCaptions))
	if metadata.Description != "" {
		buf.WriteString(fmt.Sprintf("Description: %s\n", metadata.Description))
	}
	if len(metadata.Tags) > 0 {
		buf.WriteString(fmt.Sprintf("Tags: %s\n", strings.Join(metadata.Tags, ", ")))
	}
	if len(metadata.Categories) > 0 {
		buf.WriteString(fmt.Sprintf("Categories: %s\n", strings.Join(metadata.Categories, ", ")))
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(buf.String())},
	}, nil
}

// Start starts the MCP server using the specified transport
func (s *MCPServer) Start(ctx context.Context, transport string, port int) error {
	if transport == "http" {
		httpServer := server.NewStreamableHTTPServer(s.mcpServer)
		addr := fmt.Sprintf(":%d", port)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return httpServer.Start(addr)
	}

	// Default to stdio transport
	return server.ServeStdio(s.mcpServer)
}
