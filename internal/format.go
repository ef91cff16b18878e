package internal

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Segment is one timed unit of transcript text.
type Segment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// OutputFormat selects how a transcript is rendered.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// ParseOutputFormat validates a format flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(strings.TrimSpace(s))) {
	case FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("invalid format %q (supported: text, json)", s)
}

// Extension returns the file extension for the format.
func (f OutputFormat) Extension() string {
	if f == FormatJSON {
		return "json"
	}
	return "txt"
}

// FormatTimestamp converts a start offset in seconds to MM:SS,
// widening to HH:MM:SS past one hour. Fractions are floored.
func FormatTimestamp(seconds float64) string {
	total := int(seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%02d:%02d", minutes, secs)
}

// Formatter renders an ordered segment list into output bytes.
type Formatter struct {
	Timestamps bool
}

// Text renders one line per segment, optionally prefixed with the
// segment's start timestamp.
func (f Formatter) Text(segments []Segment) string {
	lines := make([]string, 0, len(segments))
	for _, seg := range segments {
		if f.Timestamps {
			lines = append(lines, fmt.Sprintf("[%s] %s", FormatTimestamp(seg.Start), seg.Text))
		} else {
			lines = append(lines, seg.Text)
		}
	}
	return strings.Join(lines, "\n")
}

// JSON serializes the full ordered segment list verbatim.
func (f Formatter) JSON(segments []Segment) ([]byte, error) {
	data, err := json.MarshalIndent(segments, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling transcript: %w", err)
	}
	return data, nil
}

// Render produces the output bytes for the requested format.
func (f Formatter) Render(segments []Segment, format OutputFormat) ([]byte, error) {
	if format == FormatJSON {
		return f.JSON(segments)
	}
	return []byte(f.Text(segments)), nil
}
