package internal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// TranscriptFetcher retrieves caption transcripts and video details.
type TranscriptFetcher interface {
	Transcript(ctx context.Context, videoID, lang string) ([]Segment, error)
	Languages(ctx context.Context, videoID string) ([]CaptionLanguage, error)
	Title(ctx context.Context, videoID string) (string, error)
}

// App holds the application state and dependencies
type App struct {
	youtube    TranscriptFetcher
	downloader *Downloader
	ai         *AI
	resolver   *ConflictResolver
	config     *Config
	ui         UIManager
}

// NewApp initializes the application
func NewApp(config *Config, options ...AppOption) *App {
	audio := NewAudio(&DefaultCommandRunner{}, config.TempDir, config.Verbose)

	app := &App{
		youtube:    NewYouTube(config.CacheDir, config.FetchTimeout, config.Verbose),
		downloader: NewDownloader(config.CacheDir, config.Verbose),
		ai:         NewAIWithKey(config.OpenAIAPIKey, audio, WhisperLimit, config.WhisperTimeout, config.Verbose),
		resolver:   NewConflictResolver(nil),
		config:     config,
		ui:         NewUIManager(config.Verbose, config.Quiet),
	}

	for _, option := range options {
		option(app)
	}

	return app
}

// AppOption customizes App creation
type AppOption func(*App)

// WithFetcher sets a custom transcript fetcher
func WithFetcher(fetcher TranscriptFetcher) AppOption {
	return func(a *App) {
		a.youtube = fetcher
	}
}

// WithAI sets a custom Whisper transcriber
func WithAI(ai *AI) AppOption {
	return func(a *App) {
		a.ai = ai
	}
}

// WithResolver sets a custom conflict resolver
func WithResolver(resolver *ConflictResolver) AppOption {
	return func(a *App) {
		a.resolver = resolver
	}
}

// WithUI sets a custom UI manager
func WithUI(ui UIManager) AppOption {
	return func(a *App) {
		a.ui = ui
	}
}

// AskUser is a variable that holds the function for asking user confirmation
// This allows it to be replaced in tests
var AskUser = func(message string) bool {
	fmt.Printf("%s (y/N): ", message)
	scanner := bufio.NewScanner(os.Stdin)
	if scanner.Scan() {
		response := strings.ToLower(strings.TrimSpace(scanner.Text()))
		return strings.HasPrefix(response, "y")
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
	}
	return false
}

// ExtractOptions controls a single extraction run.
type ExtractOptions struct {
	OutputPath      string
	Format          OutputFormat
	Language        string
	Timestamps      bool
	Conflict        ConflictPolicy
	FallbackWhisper bool

	// NonInteractive suppresses the Whisper confirmation prompt; missing
	// captions become an error. Set by callers with no terminal attached,
	// like the MCP server.
	NonInteractive bool
}

// Segments fetches the transcript segments for a video, falling back
// to Whisper transcription when allowed and no captions exist.
func (app *App) Segments(ctx context.Context, videoID string, opts ExtractOptions) ([]Segment, error) {
	var spinner ProgressBar
	if !app.config.Verbose {
		spinner = app.ui.NewSpinner("Fetching captions...")
	}

	segments, err := app.youtube.Transcript(ctx, videoID, opts.Language)
	if spinner != nil {
		spinner.Finish()
	}
	if err == nil {
		return segments, nil
	}
	if !errors.Is(err, ErrNoCaptions) {
		return nil, err
	}

	if !opts.FallbackWhisper {
		if opts.NonInteractive {
			return nil, err
		}
		if !AskUser(fmt.Sprintf("No captions for %s. Transcribe with OpenAI Whisper ($$$)?", videoID)) {
			return nil, err
		}
	}

	return app.transcribeWithWhisper(ctx, videoID)
}

// transcribeWithWhisper downloads the audio and transcribes it.
func (app *App) transcribeWithWhisper(ctx context.Context, videoID string) ([]Segment, error) {
	if err := ValidateOpenAIAPIKey(app.config.OpenAIAPIKey); err != nil {
		return nil, err
	}

	EnsureYtdlp(ctx)

	var spinner ProgressBar
	if !app.config.Verbose {
		spinner = app.ui.NewSpinner("Downloading audio...")
	}

	audioFile, err := app.downloader.Audio(ctx, "https://www.youtube.com/watch?v="+videoID)
	if err != nil {
		if spinner != nil {
			spinner.Finish()
		}
		return nil, fmt.Errorf("downloading audio: %w", err)
	}

	if spinner != nil {
		spinner.Describe("Transcribing with OpenAI Whisper...")
	}

	segments, err := app.ai.Transcribe(ctx, audioFile)
	if spinner != nil {
		spinner.Finish()
	}
	return segments, err
}

// Extract runs the full workflow: fetch transcript, format it, resolve
// the output path against the conflict policy and write the file.
func (app *App) Extract(ctx context.Context, arg string, opts ExtractOptions) error {
	_, videoID := ParseArg(arg)
	app.ui.Verbose("Video ID: %s\n", videoID)

	segments, err := app.Segments(ctx, videoID, opts)
	if err != nil {
		return err
	}
	app.ui.Verbose("Retrieved %d transcript entries\n", len(segments))

	formatter := Formatter{Timestamps: opts.Timestamps}
	data, err := formatter.Render(segments, opts.Format)
	if err != nil {
		return err
	}

	desiredPath, err := app.outputPath(ctx, videoID, opts)
	if err != nil {
		return err
	}

	if err := EnsureDirs(filepath.Dir(desiredPath)); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	finalPath, err := app.resolver.Resolve(desiredPath, opts.Conflict)
	if errors.Is(err, ErrAborted) {
		app.ui.Println("Operation aborted.")
		return nil
	}
	if err != nil {
		return err
	}
	if finalPath != desiredPath {
		app.ui.Verbose("Using filename: %s\n", filepath.Base(finalPath))
	}

	if err := os.WriteFile(finalPath, data, 0644); err != nil {
		return fmt.Errorf("writing transcript: %w", err)
	}

	app.ui.Printf("Transcript saved to: %s\n", finalPath)
	app.preview(segments)
	return nil
}

// outputPath decides where the transcript should land before conflict
// resolution. Relative --output values stay inside the transcripts
// directory; absolute paths are taken as-is.
func (app *App) outputPath(ctx context.Context, videoID string, opts ExtractOptions) (string, error) {
	if opts.OutputPath != "" {
		if filepath.IsAbs(opts.OutputPath) {
			return opts.OutputPath, nil
		}
		return filepath.Join(app.config.TranscriptsDir, opts.OutputPath), nil
	}

	stem := app.filenameStem(ctx, videoID)
	return filepath.Join(app.config.TranscriptsDir, stem+"."+opts.Format.Extension()), nil
}

// filenameStem derives the default filename from the video title,
// falling back to the video ID when the title is unavailable.
func (app *App) filenameStem(ctx context.Context, videoID string) string {
	title, err := app.youtube.Title(ctx, videoID)
	if err != nil || title == "" {
		app.ui.Verbose("Falling back to video ID for filename\n")
		return "video_" + videoID
	}
	app.ui.Verbose("Video title: %s\n", title)
	return SanitizeTitle(title)
}

// preview prints the first few entries in verbose mode.
func (app *App) preview(segments []Segment) {
	if !app.config.Verbose || len(segments) == 0 {
		return
	}

	fmt.Println("\nPreview (first 3 entries):")
	fmt.Println(strings.Repeat("-", 30))
	for i, seg := range segments {
		if i == 3 {
			break
		}
		fmt.Printf("[%s] %s\n", FormatTimestamp(seg.Start), seg.Text)
	}
	if len(segments) > 3 {
		fmt.Printf("... and %d more entries\n", len(segments)-3)
	}
}

// ListLanguages prints the caption languages available for a video.
func (app *App) ListLanguages(ctx context.Context, arg string) error {
	_, videoID := ParseArg(arg)
	app.ui.Verbose("Fetching available languages for %s...\n", videoID)

	languages, err := app.youtube.Languages(ctx, videoID)
	if err != nil {
		return err
	}

	rendered, err := RenderMarkdown(LanguagesMarkdown(languages))
	if err != nil {
		fmt.Print(LanguagesPlain(languages))
		return nil
	}
	fmt.Print(rendered)
	return nil
}

// FormattedTranscript fetches and renders a transcript without writing
// it anywhere. Used by the cp command and the MCP tools.
func (app *App) FormattedTranscript(ctx context.Context, arg string, opts ExtractOptions) (string, error) {
	_, videoID := ParseArg(arg)

	segments, err := app.Segments(ctx, videoID, opts)
	if err != nil {
		return "", err
	}

	formatter := Formatter{Timestamps: opts.Timestamps}
	data, err := formatter.Render(segments, opts.Format)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Metadata gets video metadata, cached or fresh.
func (app *App) Metadata(ctx context.Context, youtubeURL string) (*VideoMetadata, error) {
	_, videoID := ParseArg(youtubeURL)

	if cached, err := LoadCachedMetadata(videoID, app.config.CacheDir); err == nil {
		app.ui.Verbose("Using cached metadata for %s\n", videoID)
		return cached, nil
	}

	EnsureYtdlp(ctx)

	metadata, err := app.downloader.Metadata(ctx, youtubeURL)
	if err != nil {
		return nil, err
	}

	if err := SaveMetadata(videoID, metadata, app.config.CacheDir); err != nil {
		app.ui.Verbose("Warning: failed to cache metadata: %v\n", err)
	}

	return metadata, nil
}
