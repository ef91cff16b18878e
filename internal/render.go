package internal

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// getTerminalWidth gets terminal width with fallback
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80
	}

	if width > 10 {
		return width - 4
	}

	return width
}

// RenderMarkdown renders markdown content with glamour
func RenderMarkdown(content string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(getTerminalWidth()),
		glamour.WithColorProfile(termenv.EnvColorProfile()),
	)
	if err != nil {
		return "", fmt.Errorf("creating terminal renderer: %w", err)
	}

	rendered, err := r.Render(content)
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}

	return rendered, nil
}

// LanguagesMarkdown builds a markdown table of available caption languages.
func LanguagesMarkdown(languages []CaptionLanguage) string {
	var sb strings.Builder
	sb.WriteString("## Available transcript languages\n\n")
	sb.WriteString("| Language | Code | Type |\n")
	sb.WriteString("| --- | --- | --- |\n")
	for _, lang := range languages {
		kind := "Manual"
		if lang.AutoGenerated {
			kind = "Auto-generated"
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n", lang.Language, lang.Code, kind))
	}
	return sb.String()
}

// LanguagesPlain is the fallback listing when markdown rendering fails.
func LanguagesPlain(languages []CaptionLanguage) string {
	var sb strings.Builder
	sb.WriteString("Available transcript languages:\n")
	sb.WriteString(strings.Repeat("=", 40) + "\n")
	for _, lang := range languages {
		status := "(Manual)"
		if lang.AutoGenerated {
			status = "(Auto-generated)"
		}
		sb.WriteString(fmt.Sprintf("%s (%s) %s\n", lang.Language, lang.Code, status))
	}
	return sb.String()
}
