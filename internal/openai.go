package internal

import (
	"context"
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// OpenAIClientInterface defines the interface for OpenAI client operations
type OpenAIClientInterface interface {
	CreateTranscription(ctx context.Context, file *os.File) (string, error)
}

// OpenAIClient wraps the official OpenAI Go SDK
type OpenAIClient struct {
	client *openai.Client
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(apiKey string) *OpenAIClient {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIClient{client: &client}
}

// CreateTranscription sends one audio file to the Whisper API.
func (c *OpenAIClient) CreateTranscription(ctx context.Context, file *os.File) (string, error) {
	resp, err := c.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:  file,
		Model: openai.AudioModelWhisper1,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// ValidateOpenAIAPIKey checks the key needed for the Whisper fallback.
func ValidateOpenAIAPIKey(apiKey string) error {
	if apiKey == "" {
		return fmt.Errorf("OpenAI API key is required for Whisper transcription - set it in config.toml or OPENAI_API_KEY environment variable")
	}
	return nil
}

// AI transcribes audio through OpenAI's Whisper API when a video has
// no captions. Each audio chunk becomes one timed segment.
type AI struct {
	client       OpenAIClientInterface
	audio        *Audio
	whisperLimit int64
	timeout      time.Duration
	verbose      bool
	apiKey       string
	clientOnce   sync.Once
}

// NewAI creates a Whisper transcriber with an explicit client (tests).
func NewAI(client OpenAIClientInterface, audio *Audio, whisperLimit int64, timeout time.Duration, verbose bool) *AI {
	return &AI{
		client:       client,
		audio:        audio,
		whisperLimit: whisperLimit,
		timeout:      timeout,
		verbose:      verbose,
	}
}

// NewAIWithKey creates a Whisper transcriber with lazy client initialization.
func NewAIWithKey(apiKey string, audio *Audio, whisperLimit int64, timeout time.Duration, verbose bool) *AI {
	return &AI{
		audio:        audio,
		whisperLimit: whisperLimit,
		timeout:      timeout,
		verbose:      verbose,
		apiKey:       apiKey,
	}
}

// ensureClient initializes the OpenAI client if needed
func (ai *AI) ensureClient() error {
	if ai.client != nil {
		return nil
	}

	if err := ValidateOpenAIAPIKey(ai.apiKey); err != nil {
		return err
	}

	ai.clientOnce.Do(func() {
		ai.client = NewOpenAIClient(ai.apiKey)
	})

	return nil
}

// Transcribe turns an audio file into timed segments. Files above the
// Whisper size limit are split first; chunk offsets carry into the
// resulting segments.
func (ai *AI) Transcribe(ctx context.Context, audioFile string) ([]Segment, error) {
	if err := ai.ensureClient(); err != nil {
		return nil, err
	}

	if ai.verbose {
		fmt.Printf("Transcribing audio file: %s\n", audioFile)
	}

	info, err := os.Stat(audioFile)
	if err != nil {
		return nil, fmt.Errorf("getting audio file info: %w", err)
	}

	numChunks := int(math.Ceil(float64(info.Size()) / float64(ai.whisperLimit)))

	var chunks []AudioChunk
	if numChunks > 1 {
		chunks, err = ai.audio.Split(ctx, audioFile, numChunks)
		if err != nil {
			return nil, fmt.Errorf("splitting audio: %w", err)
		}
	} else {
		duration, err := ai.audio.Duration(ctx, audioFile)
		if err != nil {
			// Duration is only cosmetic for a single chunk
			duration = 0
		}
		chunks = []AudioChunk{{Path: audioFile, Start: 0, Duration: duration}}
	}

	defer func() {
		if len(chunks) > 1 {
			paths := make([]string, 0, len(chunks)+1)
			for _, c := range chunks {
				paths = append(paths, c.Path)
			}
			paths = append(paths, audioFile)
			cleanupFiles(paths...)
		} else {
			cleanupFiles(audioFile)
		}
	}()

	segments, err := ai.transcribeChunks(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("transcribing audio: %w", err)
	}
	return segments, nil
}

// transcribeChunks processes chunks sequentially.
// NOTE: concurrent requests returned a broken transcript for one chunk;
// sequential requests have been reliable.
func (ai *AI) transcribeChunks(ctx context.Context, chunks []AudioChunk) ([]Segment, error) {
	if ai.verbose {
		fmt.Printf("Transcribing chunks (%d)\n", len(chunks))
	}

	segments := make([]Segment, 0, len(chunks))
	for i, chunk := range chunks {
		file, err := os.Open(chunk.Path)
		if err != nil {
			return nil, fmt.Errorf("opening chunk %s: %w", chunk.Path, err)
		}

		reqCtx, cancel := context.WithTimeout(ctx, ai.timeout)
		text, err := ai.client.CreateTranscription(reqCtx, file)
		cancel()
		if closeErr := file.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close file %s: %v\n", chunk.Path, closeErr)
		}
		if err != nil {
			return nil, fmt.Errorf("transcribing chunk %d: %w", i+1, err)
		}

		if text != "" {
			segments = append(segments, Segment{
				Text:     text,
				Start:    chunk.Start,
				Duration: chunk.Duration,
			})
		}

		if ai.verbose {
			fmt.Printf("Transcribed chunk %d/%d\n", i+1, len(chunks))
		}
	}

	return segments, nil
}
