package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// YouTube caption fetching.
// Primary:  ANDROID Innertube /player → captionTracks → timedtext XML
// Fallback: watch page scrape → ytInitialPlayerResponse → captionTracks

const (
	ytPlayerURL      = "https://www.youtube.com/youtubei/v1/player"
	ytAndroidVersion = "20.10.38"
	ytAndroidUA      = "com.google.android.youtube/" + ytAndroidVersion + " (Linux; U; Android 11) gzip"
	ytWebUA          = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/133.0.0.0 Safari/537.36"
)

// ErrNoCaptions is returned when a video has no caption tracks at all.
var ErrNoCaptions = errors.New("no captions available")

// ErrLanguageNotFound is returned when the requested caption language
// does not exist for the video.
var ErrLanguageNotFound = errors.New("caption language not found")

// CaptionLanguage describes one available caption track.
type CaptionLanguage struct {
	Language      string `json:"language"`
	Code          string `json:"language_code"`
	AutoGenerated bool   `json:"is_generated"`
}

type innertubeReq struct {
	VideoID        string       `json:"videoId"`
	Context        innertubeCtx `json:"context"`
	RacyCheckOk    bool         `json:"racyCheckOk"`
	ContentCheckOk bool         `json:"contentCheckOk"`
}

type innertubeCtx struct {
	Client innertubeClient `json:"client"`
}

type innertubeClient struct {
	ClientName        string `json:"clientName"`
	ClientVersion     string `json:"clientVersion"`
	AndroidSdkVersion int    `json:"androidSdkVersion,omitempty"`
	Hl                string `json:"hl,omitempty"`
	Gl                string `json:"gl,omitempty"`
}

type playerResponse struct {
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
	VideoDetails *struct {
		VideoID string `json:"videoId"`
		Title   string `json:"title"`
		Author  string `json:"author"`
	} `json:"videoDetails"`
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"` // "asr" = auto-generated
	Name         struct {
		SimpleText string `json:"simpleText"`
		Runs       []struct {
			Text string `json:"text"`
		} `json:"runs"`
	} `json:"name"`
}

func (t captionTrack) displayName() string {
	if t.Name.SimpleText != "" {
		return t.Name.SimpleText
	}
	var sb strings.Builder
	for _, run := range t.Name.Runs {
		sb.WriteString(run.Text)
	}
	if sb.Len() == 0 {
		return t.LanguageCode
	}
	return sb.String()
}

// timedtext XML: <text start="7.58" dur="6.13">...</text>
type timedTextDoc struct {
	Lines []timedTextLine `xml:"text"`
}

type timedTextLine struct {
	Start float64 `xml:"start,attr"`
	Dur   float64 `xml:"dur,attr"`
	Text  string  `xml:",chardata"`
}

// YouTube fetches caption transcripts and related video information.
type YouTube struct {
	http     *http.Client
	cacheDir string
	verbose  bool

	// player responses are memoized per video so the transcript,
	// language listing and title share one fetch. Guarded by mu: the
	// MCP HTTP transport serves tool calls concurrently.
	mu      sync.Mutex
	players map[string]*playerResponse
}

// NewYouTube creates a caption fetcher with the given HTTP timeout.
func NewYouTube(cacheDir string, timeout time.Duration, verbose bool) *YouTube {
	return &YouTube{
		http:     &http.Client{Timeout: timeout},
		cacheDir: cacheDir,
		verbose:  verbose,
		players:  make(map[string]*playerResponse),
	}
}

func (yt *YouTube) cachedPlayer(videoID string) (*playerResponse, bool) {
	yt.mu.Lock()
	defer yt.mu.Unlock()
	player, ok := yt.players[videoID]
	return player, ok
}

func (yt *YouTube) storePlayer(videoID string, player *playerResponse) {
	yt.mu.Lock()
	defer yt.mu.Unlock()
	yt.players[videoID] = player
}

// player returns the Innertube player response for a video, fetching
// it via the ANDROID client first and scraping the watch page when
// that is blocked.
func (yt *YouTube) player(ctx context.Context, videoID string) (*playerResponse, error) {
	if cached, ok := yt.cachedPlayer(videoID); ok {
		return cached, nil
	}

	resp, err := yt.playerViaAndroid(ctx, videoID)
	if err != nil || resp.Captions == nil {
		if yt.verbose && err != nil {
			fmt.Printf("Innertube player failed (%v), scraping watch page...\n", err)
		}
		scraped, scrapeErr := yt.playerViaWatchPage(ctx, videoID)
		if scrapeErr == nil && scraped.Captions != nil {
			resp, err = scraped, nil
		} else if err == nil {
			err = scrapeErr
		}
	}
	if err != nil {
		return nil, err
	}

	yt.storePlayer(videoID, resp)
	return resp, nil
}

// playerViaAndroid queries the Innertube /player endpoint with the
// ANDROID client, which serves caption tracks without a PoToken.
func (yt *YouTube) playerViaAndroid(ctx context.Context, videoID string) (*playerResponse, error) {
	reqBody, err := json.Marshal(innertubeReq{
		VideoID: videoID,
		Context: innertubeCtx{
			Client: innertubeClient{
				ClientName:        "ANDROID",
				ClientVersion:     ytAndroidVersion,
				AndroidSdkVersion: 30,
				Hl:                "en",
				Gl:                "US",
			},
		},
		RacyCheckOk:    true,
		ContentCheckOk: true,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ytPlayerURL+"?prettyPrint=false", bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", ytAndroidUA)
	req.Header.Set("X-Youtube-Client-Name", "3")
	req.Header.Set("X-Youtube-Client-Version", ytAndroidVersion)

	resp, err := yt.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("android innertube: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("innertube HTTP %d: %s", resp.StatusCode, snippet)
	}

	var player playerResponse
	if err := json.NewDecoder(resp.Body).Decode(&player); err != nil {
		return nil, fmt.Errorf("decode player: %w", err)
	}
	return &player, nil
}

// ytInitialPlayerResponseMarker marks the start of the player response JSON in watch page HTML.
const ytInitialPlayerResponseMarker = "ytInitialPlayerResponse = "

// playerViaWatchPage scrapes the watch page HTML and extracts
// ytInitialPlayerResponse. Works from IPs where Innertube is blocked.
func (yt *YouTube) playerViaWatchPage(ctx context.Context, videoID string) (*playerResponse, error) {
	watchURL := "https://www.youtube.com/watch?v=" + videoID

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, watchURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", ytWebUA)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := yt.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("watch page: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 6*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("read watch page: %w", err)
	}

	idx := bytes.Index(body, []byte(ytInitialPlayerResponseMarker))
	if idx < 0 {
		return nil, errors.New("ytInitialPlayerResponse not found in watch page")
	}
	jsonData := extractJSON(body[idx+len(ytInitialPlayerResponseMarker):])
	if jsonData == nil {
		return nil, errors.New("failed to extract ytInitialPlayerResponse JSON")
	}

	var player playerResponse
	if err := json.Unmarshal(jsonData, &player); err != nil {
		return nil, fmt.Errorf("decode ytInitialPlayerResponse: %w", err)
	}
	return &player, nil
}

// extractJSON returns the balanced {...} object at the start of data,
// skipping braces inside string literals.
func extractJSON(data []byte) []byte {
	if len(data) == 0 || data[0] != '{' {
		return nil
	}

	depth := 0
	inString := false
	escaped := false
	for i, c := range data {
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			escaped = inString
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return data[:i+1]
				}
			}
		}
	}
	return nil
}

// needsPoToken reports whether a caption track URL requires a PoToken (browser-only).
// Tracks with &exp=xpe cannot be fetched server-side.
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

// pickTrack selects the caption track for the requested language code.
// Manual tracks win over auto-generated; with no language requested the
// preference is manual English, auto English, then the first usable track.
func pickTrack(tracks []captionTrack, lang string) (captionTrack, error) {
	usable := make([]captionTrack, 0, len(tracks))
	for _, t := range tracks {
		if !needsPoToken(t.BaseURL) {
			usable = append(usable, t)
		}
	}
	if len(usable) == 0 {
		return captionTrack{}, errors.New("all caption tracks require PoToken")
	}

	if lang != "" {
		for _, t := range usable {
			if t.LanguageCode == lang && t.Kind != "asr" {
				return t, nil
			}
		}
		for _, t := range usable {
			if t.LanguageCode == lang {
				return t, nil
			}
		}
		codes := make([]string, 0, len(usable))
		for _, t := range usable {
			codes = append(codes, t.LanguageCode)
		}
		return captionTrack{}, fmt.Errorf("%w: %q (available: %s)", ErrLanguageNotFound, lang, strings.Join(codes, ", "))
	}

	for _, t := range usable {
		if strings.HasPrefix(t.LanguageCode, "en") && t.Kind != "asr" {
			return t, nil
		}
	}
	for _, t := range usable {
		if strings.HasPrefix(t.LanguageCode, "en") {
			return t, nil
		}
	}
	return usable[0], nil
}

// fetchTimedText fetches a timedtext caption URL and parses it into
// ordered segments.
func (yt *YouTube) fetchTimedText(ctx context.Context, baseURL string) ([]Segment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", ytWebUA)

	resp, err := yt.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch timedtext: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("timedtext HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2*1024*1024))
	if err != nil {
		return nil, err
	}

	return parseTimedText(body)
}

// parseTimedText converts timedtext XML into segments. YouTube
// double-encodes entities in caption text, so lines are unescaped
// again after XML decoding.
func parseTimedText(data []byte) ([]Segment, error) {
	var doc timedTextDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse timedtext XML: %w", err)
	}

	segments := make([]Segment, 0, len(doc.Lines))
	for _, line := range doc.Lines {
		text := strings.TrimSpace(html.UnescapeString(line.Text))
		if text == "" {
			continue
		}
		text = strings.Join(strings.Fields(text), " ")
		segments = append(segments, Segment{
			Text:     text,
			Start:    line.Start,
			Duration: line.Dur,
		})
	}
	return segments, nil
}

// captionTracks returns the video's caption tracks or ErrNoCaptions.
func (yt *YouTube) captionTracks(ctx context.Context, videoID string) ([]captionTrack, error) {
	player, err := yt.player(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if player.Captions == nil {
		if player.PlayabilityStatus != nil && player.PlayabilityStatus.Reason != "" {
			return nil, fmt.Errorf("%w: %s", ErrNoCaptions, player.PlayabilityStatus.Reason)
		}
		return nil, ErrNoCaptions
	}
	tracks := player.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(tracks) == 0 {
		return nil, ErrNoCaptions
	}
	return tracks, nil
}

// Transcript fetches the ordered caption segments for a video,
// using the local cache when available.
func (yt *YouTube) Transcript(ctx context.Context, videoID, lang string) ([]Segment, error) {
	if segments, err := yt.loadCachedSegments(videoID, lang); err == nil {
		if yt.verbose {
			fmt.Printf("Using cached transcript for %s\n", videoID)
		}
		return segments, nil
	}

	tracks, err := yt.captionTracks(ctx, videoID)
	if err != nil {
		return nil, err
	}

	track, err := pickTrack(tracks, lang)
	if err != nil {
		return nil, err
	}

	if yt.verbose {
		fmt.Printf("Fetching %s captions (%s)\n", track.LanguageCode, track.displayName())
	}

	segments, err := yt.fetchTimedText(ctx, track.BaseURL)
	if err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		return nil, ErrNoCaptions
	}

	if err := yt.saveCachedSegments(videoID, lang, segments); err != nil && yt.verbose {
		fmt.Fprintf(os.Stderr, "Warning: failed to cache transcript: %v\n", err)
	}

	return segments, nil
}

// Languages lists the caption languages available for a video.
func (yt *YouTube) Languages(ctx context.Context, videoID string) ([]CaptionLanguage, error) {
	tracks, err := yt.captionTracks(ctx, videoID)
	if err != nil {
		return nil, err
	}

	languages := make([]CaptionLanguage, 0, len(tracks))
	for _, t := range tracks {
		languages = append(languages, CaptionLanguage{
			Language:      t.displayName(),
			Code:          t.LanguageCode,
			AutoGenerated: t.Kind == "asr",
		})
	}
	return languages, nil
}

// Title returns the video title, or an empty string when the player
// response has no video details.
func (yt *YouTube) Title(ctx context.Context, videoID string) (string, error) {
	player, err := yt.player(ctx, videoID)
	if err != nil {
		return "", err
	}
	if player.VideoDetails == nil {
		return "", nil
	}
	return player.VideoDetails.Title, nil
}

func (yt *YouTube) segmentCachePath(videoID, lang string) string {
	if lang == "" {
		lang = "default"
	}
	return filepath.Join(yt.cacheDir, fmt.Sprintf("%s.%s.segments.json", videoID, lang))
}

func (yt *YouTube) loadCachedSegments(videoID, lang string) ([]Segment, error) {
	data, err := os.ReadFile(yt.segmentCachePath(videoID, lang))
	if err != nil {
		return nil, err
	}
	var segments []Segment
	if err := json.Unmarshal(data, &segments); err != nil {
		return nil, fmt.Errorf("parsing cached transcript: %w", err)
	}
	if len(segments) == 0 {
		return nil, errors.New("empty cached transcript")
	}
	return segments, nil
}

func (yt *YouTube) saveCachedSegments(videoID, lang string, segments []Segment) error {
	if err := EnsureDirs(yt.cacheDir); err != nil {
		return err
	}
	data, err := json.Marshal(segments)
	if err != nil {
		return err
	}
	return os.WriteFile(yt.segmentCachePath(videoID, lang), data, 0644)
}
