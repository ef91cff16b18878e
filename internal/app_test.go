package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// fakeFetcher returns canned transcript data without any network access.
type fakeFetcher struct {
	segments  []Segment
	languages []CaptionLanguage
	title     string
	err       error
	titleErr  error
}

func (f *fakeFetcher) Transcript(ctx context.Context, videoID, lang string) ([]Segment, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.segments, nil
}

func (f *fakeFetcher) Languages(ctx context.Context, videoID string) ([]CaptionLanguage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.languages, nil
}

func (f *fakeFetcher) Title(ctx context.Context, videoID string) (string, error) {
	if f.titleErr != nil {
		return "", f.titleErr
	}
	return f.title, nil
}

func testConfig(t *testing.T) *Config {
	t.Helper()
	dir := t.TempDir()
	return &Config{
		Format:         "text",
		Conflict:       "prompt",
		TranscriptsDir: filepath.Join(dir, "transcripts"),
		CacheDir:       filepath.Join(dir, "cache"),
		TempDir:        filepath.Join(dir, "temp"),
		FetchTimeout:   time.Second,
		WhisperTimeout: time.Second,
		Quiet:          true,
	}
}

func testApp(t *testing.T, fetcher TranscriptFetcher, prompter Prompter) *App {
	t.Helper()
	config := testConfig(t)
	return NewApp(config,
		WithFetcher(fetcher),
		WithResolver(NewConflictResolver(prompter)),
		WithUI(NewUIManager(false, true)),
	)
}

// recordingUI captures status output so tests can assert on it.
type recordingUI struct {
	lines []string
}

func (ui *recordingUI) NewProgressBar(int, string) ProgressBar { return nopBar{} }
func (ui *recordingUI) NewSpinner(string) ProgressBar          { return nopBar{} }
func (ui *recordingUI) Verbose(string, ...any)                 {}

func (ui *recordingUI) Printf(format string, args ...any) {
	ui.lines = append(ui.lines, fmt.Sprintf(format, args...))
}

func (ui *recordingUI) Println(args ...any) {
	ui.lines = append(ui.lines, fmt.Sprintln(args...))
}

type nopBar struct{}

func (nopBar) Set(int)         {}
func (nopBar) Describe(string) {}
func (nopBar) Finish()         {}

func defaultSegments() []Segment {
	return []Segment{
		{Text: "Welcome to the talk", Start: 0, Duration: 3},
		{Text: "First point", Start: 75.9, Duration: 4.5},
	}
}

func TestExtractWritesTranscript(t *testing.T) {
	fetcher := &fakeFetcher{segments: defaultSegments(), title: "My Great Video"}
	app := testApp(t, fetcher, nil)

	opts := ExtractOptions{Format: FormatText, Timestamps: true, Conflict: ConflictPrompt}
	if err := app.Extract(context.Background(), "tAP1eZYEuKA", opts); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	path := filepath.Join(app.config.TranscriptsDir, "My-Great-Video.txt")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("transcript not written: %v", err)
	}

	content := string(data)
	if !strings.Contains(content, "[00:00] Welcome to the talk") {
		t.Errorf("missing first line: %q", content)
	}
	if !strings.Contains(content, "[01:15] First point") {
		t.Errorf("missing timestamped second line: %q", content)
	}
}

func TestExtractJSONFormat(t *testing.T) {
	fetcher := &fakeFetcher{segments: defaultSegments(), title: "JSON Talk"}
	app := testApp(t, fetcher, nil)

	opts := ExtractOptions{Format: FormatJSON, Timestamps: true, Conflict: ConflictPrompt}
	if err := app.Extract(context.Background(), "tAP1eZYEuKA", opts); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(app.config.TranscriptsDir, "JSON-Talk.json"))
	if err != nil {
		t.Fatalf("transcript not written: %v", err)
	}

	var decoded []Segment
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded) != 2 || decoded[1].Start != 75.9 {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestExtractRenameOnCollision(t *testing.T) {
	fetcher := &fakeFetcher{segments: defaultSegments(), title: "Busy Title"}
	app := testApp(t, fetcher, nil)

	existing := filepath.Join(app.config.TranscriptsDir, "Busy-Title.txt")
	if err := EnsureDirs(app.config.TranscriptsDir); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(existing, []byte("keep me"), 0644); err != nil {
		t.Fatal(err)
	}

	opts := ExtractOptions{Format: FormatText, Timestamps: true, Conflict: ConflictRename}
	if err := app.Extract(context.Background(), "tAP1eZYEuKA", opts); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	// Original file untouched, new one got the (1) suffix
	original, err := os.ReadFile(existing)
	if err != nil || string(original) != "keep me" {
		t.Errorf("existing file was modified: %q, %v", original, err)
	}
	if _, err := os.Stat(filepath.Join(app.config.TranscriptsDir, "Busy-Title(1).txt")); err != nil {
		t.Errorf("renamed transcript missing: %v", err)
	}
}

func TestExtractAbortWritesNothing(t *testing.T) {
	fetcher := &fakeFetcher{segments: defaultSegments(), title: "Busy Title"}
	ui := &recordingUI{}
	app := NewApp(testConfig(t),
		WithFetcher(fetcher),
		WithResolver(NewConflictResolver(nil)),
		WithUI(ui),
	)

	existing := filepath.Join(app.config.TranscriptsDir, "Busy-Title.txt")
	if err := EnsureDirs(app.config.TranscriptsDir); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(existing, []byte("keep me"), 0644); err != nil {
		t.Fatal(err)
	}

	opts := ExtractOptions{Format: FormatText, Timestamps: true, Conflict: ConflictAbort}
	if err := app.Extract(context.Background(), "tAP1eZYEuKA", opts); err != nil {
		t.Fatalf("abort should not surface an error: %v", err)
	}

	if len(ui.lines) != 1 || strings.TrimSpace(ui.lines[0]) != "Operation aborted." {
		t.Errorf("output = %q, want the abort notice", ui.lines)
	}

	entries, err := os.ReadDir(app.config.TranscriptsDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the pre-existing file, found %d entries", len(entries))
	}
	if data, _ := os.ReadFile(existing); string(data) != "keep me" {
		t.Errorf("existing file was modified: %q", data)
	}
}

func TestExtractPromptReplace(t *testing.T) {
	fetcher := &fakeFetcher{segments: defaultSegments(), title: "Busy Title"}
	app := testApp(t, fetcher, func(string) (string, error) { return "R", nil })

	existing := filepath.Join(app.config.TranscriptsDir, "Busy-Title.txt")
	if err := EnsureDirs(app.config.TranscriptsDir); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(existing, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	opts := ExtractOptions{Format: FormatText, Timestamps: true, Conflict: ConflictPrompt}
	if err := app.Extract(context.Background(), "tAP1eZYEuKA", opts); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	data, err := os.ReadFile(existing)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Welcome to the talk") {
		t.Errorf("file was not replaced: %q", data)
	}
}

func TestExtractCustomOutputPaths(t *testing.T) {
	fetcher := &fakeFetcher{segments: defaultSegments(), title: "Ignored"}
	app := testApp(t, fetcher, nil)

	// Relative output lands inside the transcripts directory
	opts := ExtractOptions{OutputPath: "custom.txt", Format: FormatText, Timestamps: true, Conflict: ConflictPrompt}
	if err := app.Extract(context.Background(), "tAP1eZYEuKA", opts); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(app.config.TranscriptsDir, "custom.txt")); err != nil {
		t.Errorf("relative output not in transcripts dir: %v", err)
	}

	// Absolute output is taken as-is
	absPath := filepath.Join(t.TempDir(), "elsewhere", "talk.txt")
	opts.OutputPath = absPath
	if err := app.Extract(context.Background(), "tAP1eZYEuKA", opts); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if _, err := os.Stat(absPath); err != nil {
		t.Errorf("absolute output not written: %v", err)
	}
}

func TestFilenameStemFallsBackToVideoID(t *testing.T) {
	fetcher := &fakeFetcher{segments: defaultSegments(), titleErr: errors.New("player unavailable")}
	app := testApp(t, fetcher, nil)

	opts := ExtractOptions{Format: FormatText, Timestamps: true, Conflict: ConflictPrompt}
	if err := app.Extract(context.Background(), "tAP1eZYEuKA", opts); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(app.config.TranscriptsDir, "video_tAP1eZYEuKA.txt")); err != nil {
		t.Errorf("fallback filename missing: %v", err)
	}
}

func TestSegmentsNoCaptionsWithoutFallback(t *testing.T) {
	fetcher := &fakeFetcher{err: ErrNoCaptions}
	app := testApp(t, fetcher, nil)

	originalAskUser := AskUser
	AskUser = func(string) bool { return false }
	defer func() { AskUser = originalAskUser }()

	_, err := app.Segments(context.Background(), "tAP1eZYEuKA", ExtractOptions{})
	if !errors.Is(err, ErrNoCaptions) {
		t.Errorf("err = %v, want ErrNoCaptions", err)
	}
}

func TestSegmentsNonInteractiveNeverPrompts(t *testing.T) {
	fetcher := &fakeFetcher{err: ErrNoCaptions}
	app := testApp(t, fetcher, nil)

	originalAskUser := AskUser
	AskUser = func(string) bool {
		t.Fatal("non-interactive mode must not prompt")
		return false
	}
	defer func() { AskUser = originalAskUser }()

	opts := ExtractOptions{NonInteractive: true}
	_, err := app.Segments(context.Background(), "tAP1eZYEuKA", opts)
	if !errors.Is(err, ErrNoCaptions) {
		t.Errorf("err = %v, want ErrNoCaptions", err)
	}
}

func TestFormattedTranscript(t *testing.T) {
	fetcher := &fakeFetcher{segments: defaultSegments()}
	app := testApp(t, fetcher, nil)

	opts := ExtractOptions{Format: FormatText, Timestamps: false}
	transcript, err := app.FormattedTranscript(context.Background(), "https://youtu.be/tAP1eZYEuKA", opts)
	if err != nil {
		t.Fatalf("FormattedTranscript failed: %v", err)
	}
	if transcript != "Welcome to the talk\nFirst point" {
		t.Errorf("transcript = %q", transcript)
	}
}
