package internal

import (
	"strings"
	"testing"
)

func TestParseArg(t *testing.T) {
	tests := []struct {
		arg     string
		wantURL string
		wantID  string
	}{
		{"tAP1eZYEuKA", "https://www.youtube.com/watch?v=tAP1eZYEuKA", "tAP1eZYEuKA"},
		{"https://www.youtube.com/watch?v=tAP1eZYEuKA", "https://www.youtube.com/watch?v=tAP1eZYEuKA", "tAP1eZYEuKA"},
		{"https://youtube.com/watch?v=tAP1eZYEuKA&t=30s", "https://youtube.com/watch?v=tAP1eZYEuKA&t=30s", "tAP1eZYEuKA"},
		{"https://youtu.be/tAP1eZYEuKA", "https://youtu.be/tAP1eZYEuKA", "tAP1eZYEuKA"},
		{"https://m.youtube.com/watch?v=tAP1eZYEuKA", "https://m.youtube.com/watch?v=tAP1eZYEuKA", "tAP1eZYEuKA"},
		{"https://www.youtube.com/embed/tAP1eZYEuKA", "https://www.youtube.com/embed/tAP1eZYEuKA", "tAP1eZYEuKA"},
		{"https://www.youtube.com/shorts/tAP1eZYEuKA", "https://www.youtube.com/shorts/tAP1eZYEuKA", "tAP1eZYEuKA"},
	}

	for _, tt := range tests {
		gotURL, gotID := ParseArg(tt.arg)
		if gotURL != tt.wantURL || gotID != tt.wantID {
			t.Errorf("ParseArg(%q) = (%q, %q), want (%q, %q)", tt.arg, gotURL, gotID, tt.wantURL, tt.wantID)
		}
	}
}

func TestIsValidYouTubeID(t *testing.T) {
	valid := []string{"tAP1eZYEuKA", "dQw4w9WgXcQ", "a-b_c-d_e-f"}
	for _, id := range valid {
		if !IsValidYouTubeID(id) {
			t.Errorf("IsValidYouTubeID(%q) = false, want true", id)
		}
	}

	invalid := []string{"", "short", "waytoolongforanid", "tAP1eZYEuK!", "tAP1eZYEuK "}
	for _, id := range invalid {
		if IsValidYouTubeID(id) {
			t.Errorf("IsValidYouTubeID(%q) = true, want false", id)
		}
	}
}

func TestIsLikelyCommand(t *testing.T) {
	if !IsLikelyCommand("transcrib") {
		t.Error("short non-ID strings should look like commands")
	}
	if IsLikelyCommand("tAP1eZYEuKA") {
		t.Error("valid video IDs are not commands")
	}
	if IsLikelyCommand("https://youtu.be/tAP1eZYEuKA") {
		t.Error("URLs are not commands")
	}
}

func TestSanitizeTitle(t *testing.T) {
	tests := []struct {
		title    string
		expected string
	}{
		{"Hello World", "Hello-World"},
		{"What is Go? | A Tour", "What-is-Go-A-Tour"},
		{"a/b\\c:d*e?f\"g<h>i|j", "abcdefghij"},
		{"  spaced   out  ", "spaced-out"},
		{"---", "untitled"},
		{"", "untitled"},
		{"???", "untitled"},
	}

	for _, tt := range tests {
		if got := SanitizeTitle(tt.title); got != tt.expected {
			t.Errorf("SanitizeTitle(%q) = %q, want %q", tt.title, got, tt.expected)
		}
	}
}

func TestSanitizeTitleCapsLength(t *testing.T) {
	long := strings.Repeat("a", 300)
	got := SanitizeTitle(long)
	if len(got) != 200 {
		t.Errorf("len = %d, want 200", len(got))
	}

	// The cap must not leave a trailing dash behind
	dashAtBoundary := strings.Repeat("a", 199) + "-" + strings.Repeat("b", 100)
	if got := SanitizeTitle(dashAtBoundary); strings.HasSuffix(got, "-") {
		t.Errorf("capped title ends with dash: %q", got)
	}
}
