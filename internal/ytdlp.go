package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lrstanley/go-ytdlp"
)

// VideoMetadata contains YouTube video information
type VideoMetadata struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Channel     string   `json:"channel"`
	Uploader    string   `json:"uploader"`
	Duration    float64  `json:"duration"`
	Categories  []string `json:"categories"`
	Tags        []string `json:"tags"`
	HasCaptions bool     `json:"has_captions"`
}

// Downloader fetches audio and metadata through yt-dlp. It only backs
// the Whisper fallback and the metadata command; caption fetching goes
// through YouTube directly.
type Downloader struct {
	cacheDir string
	verbose  bool
}

// NewDownloader creates a yt-dlp wrapper writing into cacheDir.
func NewDownloader(cacheDir string, verbose bool) *Downloader {
	return &Downloader{cacheDir: cacheDir, verbose: verbose}
}

// EnsureYtdlp installs the yt-dlp binary if it is missing. Only needed
// before audio or metadata operations.
func EnsureYtdlp(ctx context.Context) {
	ytdlp.MustInstall(ctx, nil)
}

// Metadata fetches video details using yt-dlp's JSON dump.
func (d *Downloader) Metadata(ctx context.Context, youtubeURL string) (*VideoMetadata, error) {
	if d.verbose {
		fmt.Println("Extracting video metadata...")
	}

	dl := ytdlp.New().
		DumpSingleJSON().
		NoPlaylist().
		SkipDownload()

	result, err := dl.Run(ctx, youtubeURL)
	if err != nil {
		if d.verbose && result != nil {
			fmt.Printf("Metadata extraction stderr: %s\n", result.Stderr)
		}
		return nil, fmt.Errorf("extracting video metadata: %w", err)
	}

	// Raw map first to read subtitle availability, then the typed struct
	var rawData map[string]any
	if err := json.Unmarshal([]byte(result.Stdout), &rawData); err != nil {
		return nil, fmt.Errorf("parsing video metadata: %w", err)
	}

	var metadata VideoMetadata
	if err := json.Unmarshal([]byte(result.Stdout), &metadata); err != nil {
		return nil, fmt.Errorf("parsing video metadata: %w", err)
	}

	metadata.HasCaptions = extractSubtitleInfo(rawData)

	if d.verbose {
		fmt.Printf("Title: %s\nChannel: %s\nDuration: %.2f seconds\n",
			metadata.Title, metadata.Channel, metadata.Duration)
	}

	return &metadata, nil
}

// Audio downloads a video's audio track as mp3 and returns the file path.
func (d *Downloader) Audio(ctx context.Context, youtubeURL string) (string, error) {
	if d.verbose {
		fmt.Println("Downloading audio...")
	}

	videoID, err := getVideoID(youtubeURL)
	if err != nil {
		return "", fmt.Errorf("extracting video ID: %w", err)
	}

	if err := EnsureDirs(d.cacheDir); err != nil {
		return "", fmt.Errorf("creating cache directory: %w", err)
	}

	outputPath := filepath.Join(d.cacheDir, "%(id)s.%(ext)s")

	dl := ytdlp.New().
		Format("bestaudio").
		ExtractAudio().
		AudioFormat("mp3").
		AudioQuality("10").
		Output(outputPath)

	result, err := dl.Run(ctx, youtubeURL)
	if err != nil {
		stderr := ""
		if result != nil {
			stderr = result.Stderr
		}
		return "", fmt.Errorf("yt-dlp failed: %w\nOutput: %s", err, stderr)
	}

	return filepath.Join(d.cacheDir, videoID+".mp3"), nil
}

// extractSubtitleInfo extracts subtitle availability from yt-dlp JSON output
func extractSubtitleInfo(rawData map[string]any) bool {
	if subtitles, ok := rawData["subtitles"].(map[string]any); ok && len(subtitles) > 0 {
		return true
	}
	if autoCaptions, ok := rawData["automatic_captions"].(map[string]any); ok && len(autoCaptions) > 0 {
		return true
	}
	return false
}

// cachedVideoMetadata extends VideoMetadata with cache information
type cachedVideoMetadata struct {
	VideoMetadata
	CachedAt time.Time `json:"cached_at"`
}

// metadataCachePath places metadata next to the transcript segment cache.
func metadataCachePath(cacheDir, videoID string) string {
	return filepath.Join(cacheDir, videoID+".meta.json")
}

// SaveMetadata caches video metadata as JSON.
func SaveMetadata(videoID string, metadata *VideoMetadata, cacheDir string) error {
	if err := EnsureDirs(cacheDir); err != nil {
		return err
	}

	cached := cachedVideoMetadata{VideoMetadata: *metadata, CachedAt: time.Now()}
	data, err := json.MarshalIndent(cached, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}

	if err := os.WriteFile(metadataCachePath(cacheDir, videoID), data, 0644); err != nil {
		return fmt.Errorf("saving metadata: %w", err)
	}
	return nil
}

// LoadCachedMetadata loads video metadata from cache.
func LoadCachedMetadata(videoID, cacheDir string) (*VideoMetadata, error) {
	path := metadataCachePath(cacheDir, videoID)
	if !FileExists(path) {
		return nil, fmt.Errorf("metadata cache not found")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading metadata cache: %w", err)
	}

	var cached cachedVideoMetadata
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, fmt.Errorf("parsing metadata cache: %w", err)
	}

	metadata := cached.VideoMetadata
	return &metadata, nil
}
