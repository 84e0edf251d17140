package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
	backoff "github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/agent-trainer/pkg/config"
)

// AssemblyAIClient transcribes recordings with the official AssemblyAI SDK
type AssemblyAIClient struct {
	sdk        *aai.Client
	httpClient *http.Client
	logger     *zap.Logger
}

// NewAssemblyAIClient creates an AssemblyAI client using the provided config
func NewAssemblyAIClient(cfg *config.AssemblyAIConfig, logger *zap.Logger) *AssemblyAIClient {
	timeout := 5 * time.Minute
	opts := []aai.ClientOption{}
	if cfg != nil {
		opts = append(opts, aai.WithAPIKey(cfg.APIKey))
		if cfg.BaseURL != "" {
			opts = append(opts, aai.WithBaseURL(cfg.BaseURL))
		}
		if cfg.Timeout > 0 {
			timeout = cfg.Timeout
		}
	}
	return &AssemblyAIClient{
		sdk:        aai.NewClientWithOptions(opts...),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Name returns the provider name
func (c *AssemblyAIClient) Name() string {
	return "assemblyai"
}

// Transcribe downloads the recording, uploads it to AssemblyAI and waits for the transcript.
// Only the upload is retried: it is idempotent and fails transiently on large files.
func (c *AssemblyAIClient) Transcribe(ctx context.Context, audioURL, language string) (*Transcription, error) {
	cleanURL := strings.TrimSpace(audioURL)
	if cleanURL == "" {
		return nil, fmt.Errorf("audio URL is required")
	}

	var uploadURL string
	uploadFn := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, cleanURL, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to build download request: %w", err))
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("failed to download recording: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			err := fmt.Errorf("recording storage returned status %d", resp.StatusCode)
			if resp.StatusCode < 500 {
				return backoff.Permanent(err)
			}
			return err
		}

		uploadURL, err = c.sdk.Upload(ctx, resp.Body)
		if err != nil {
			return fmt.Errorf("failed to upload to AssemblyAI: %w", err)
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 2 * time.Second
	bo.MaxInterval = 10 * time.Second
	bo.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(uploadFn, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}

	if c.logger != nil {
		c.logger.Info("recording uploaded to AssemblyAI",
			zap.String("language", language),
		)
	}

	params := &aai.TranscriptOptionalParams{
		LanguageCode:  aai.TranscriptLanguageCode(language),
		SpeakerLabels: aai.Bool(true),
		Punctuate:     aai.Bool(true),
		FormatText:    aai.Bool(true),
	}

	transcript, err := c.sdk.Transcripts.TranscribeFromURL(ctx, uploadURL, params)
	if err != nil {
		return nil, fmt.Errorf("assemblyai transcription failed: %w", err)
	}
	if transcript.Status == aai.TranscriptStatusError {
		msg := "unknown error"
		if transcript.Error != nil {
			msg = *transcript.Error
		}
		return nil, fmt.Errorf("assemblyai transcription failed: %s", msg)
	}

	return fromAssemblyAI(transcript, language), nil
}

// fromAssemblyAI maps an SDK transcript to a Transcription. Utterances become segments;
// AssemblyAI reports times in milliseconds.
func fromAssemblyAI(t aai.Transcript, requestedLanguage string) *Transcription {
	out := &Transcription{Language: requestedLanguage}

	if t.Text != nil {
		out.Text = *t.Text
	}
	if t.LanguageCode != "" {
		out.Language = string(t.LanguageCode)
	}
	if t.AudioDuration != nil {
		out.Duration = float64(*t.AudioDuration)
	}

	if len(t.Utterances) > 0 {
		segments := make([]Segment, 0, len(t.Utterances))
		for _, utt := range t.Utterances {
			seg := Segment{}
			if utt.Text != nil {
				seg.Text = *utt.Text
			}
			if utt.Start != nil {
				seg.Start = float64(*utt.Start) / 1000.0
			}
			if utt.End != nil {
				seg.End = float64(*utt.End) / 1000.0
			}
			segments = append(segments, seg)
		}
		out.Segments = segments
	}

	return out
}
