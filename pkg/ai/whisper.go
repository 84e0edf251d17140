package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/agent-trainer/pkg/config"
)

// defaultRecordingName is sent when the audio URL carries no usable file name
const defaultRecordingName = "recording.webm"

// WhisperClient calls an OpenAI-compatible /v1/audio/transcriptions endpoint
type WhisperClient struct {
	url    string
	apiKey string
	model  string
	client *http.Client
	logger *zap.Logger
}

// whisperResponse is the verbose_json response body
type whisperResponse struct {
	Text     string           `json:"text"`
	Language string           `json:"language"`
	Duration float64          `json:"duration"`
	Segments []whisperSegment `json:"segments"`
}

type whisperSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// NewWhisperClient creates a Whisper client from config
func NewWhisperClient(cfg *config.WhisperConfig, logger *zap.Logger) *WhisperClient {
	timeout := 2 * time.Minute
	if cfg.Timeout > 0 {
		timeout = cfg.Timeout
	}
	return &WhisperClient{
		url:    cfg.URL,
		apiKey: cfg.APIKey,
		model:  cfg.Model,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Name returns the provider name
func (wc *WhisperClient) Name() string {
	return "whisper"
}

// Transcribe downloads the recording and sends it to the Whisper API as multipart/form-data.
// Segment-level timestamps are requested so pauses can be measured.
func (wc *WhisperClient) Transcribe(ctx context.Context, audioURL, language string) (*Transcription, error) {
	cleanURL := strings.TrimSpace(audioURL)
	if cleanURL == "" {
		return nil, fmt.Errorf("audio URL is required")
	}

	audio, err := wc.download(ctx, cleanURL)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", fileNameFromURL(cleanURL))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return nil, fmt.Errorf("copy audio data: %w", err)
	}

	if wc.model != "" {
		w.WriteField("model", wc.model)
	}
	if language != "" {
		w.WriteField("language", language)
	}
	w.WriteField("temperature", "0")
	w.WriteField("response_format", "verbose_json")
	w.WriteField("timestamp_granularities[]", "segment")
	w.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, wc.url, &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if wc.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+wc.apiKey)
	}

	resp, err := wc.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("whisper request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("whisper API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result whisperResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if wc.logger != nil {
		wc.logger.Debug("whisper transcription received",
			zap.Int("segments", len(result.Segments)),
			zap.Float64("duration", result.Duration),
		)
	}

	return result.toTranscription(language), nil
}

func (wc *WhisperClient) download(ctx context.Context, audioURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, audioURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create download request: %w", err)
	}
	resp, err := wc.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download recording: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("recording storage returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (r whisperResponse) toTranscription(requestedLanguage string) *Transcription {
	out := &Transcription{
		Text:     strings.TrimSpace(r.Text),
		Language: requestedLanguage,
		Duration: r.Duration,
	}
	if r.Language != "" {
		out.Language = r.Language
	}
	if len(r.Segments) > 0 {
		out.Segments = make([]Segment, 0, len(r.Segments))
		for _, s := range r.Segments {
			out.Segments = append(out.Segments, Segment{
				Start: s.Start,
				End:   s.End,
				Text:  strings.TrimSpace(s.Text),
			})
		}
	}
	return out
}

func fileNameFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return defaultRecordingName
	}
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return defaultRecordingName
	}
	return name
}
