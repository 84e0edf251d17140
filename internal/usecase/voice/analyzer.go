package voice

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/agent-trainer/internal/domain/entities"
	usecaseErrors "github.com/johnquangdev/agent-trainer/internal/usecase/errors"
	"github.com/johnquangdev/agent-trainer/pkg/ai"
	"github.com/johnquangdev/agent-trainer/pkg/metrics"
)

// Analyzer runs the voice analysis pipeline for one recording at a time.
// It holds no per-call state and may be shared across goroutines.
type Analyzer struct {
	transcriber Transcriber
	tone        *ToneScorer
	detector    *KeywordDetector
	rules       Rules
	language    string
	logger      *zap.Logger
}

// NewAnalyzer creates an analyzer. rules must already be validated.
func NewAnalyzer(transcriber Transcriber, scorer RubricScorer, rules Rules, language string, logger *zap.Logger) *Analyzer {
	return &Analyzer{
		transcriber: transcriber,
		tone:        NewToneScorer(scorer),
		detector:    NewKeywordDetector(rules.Vocabularies),
		rules:       rules,
		language:    language,
		logger:      logger,
	}
}

// Provider returns the name of the transcription provider
func (a *Analyzer) Provider() string {
	return a.transcriber.Name()
}

// Analyze transcribes the recording and computes speech metrics, tone, the overall score,
// insights and keywords. A transcription failure aborts with ErrVoiceAnalysisFailed; a tone
// scoring failure degrades to neutral scores.
func (a *Analyzer) Analyze(ctx context.Context, audioURL string) (*entities.VoiceAnalysisResult, error) {
	start := time.Now()
	transcription, err := a.transcriber.Transcribe(ctx, audioURL, a.language)
	metrics.ObserveProvider(a.transcriber.Name(), "transcribe", start)
	if err != nil {
		if a.logger != nil {
			a.logger.Error("transcription failed",
				zap.String("provider", a.transcriber.Name()),
				zap.Error(err),
			)
		}
		return nil, usecaseErrors.ErrVoiceAnalysisFailed
	}
	if transcription == nil {
		if a.logger != nil {
			a.logger.Error("transcription returned no result",
				zap.String("provider", a.transcriber.Name()),
			)
		}
		return nil, usecaseErrors.ErrVoiceAnalysisFailed
	}

	text := strings.TrimSpace(transcription.Text)
	segments := a.toSegments(transcription.Segments)

	speech := CalculateSpeechMetrics(text, segments, a.rules.PauseThreshold)
	tone := a.AnalyzeSentiment(ctx, text)
	overall := a.rules.OverallVoiceScore(speech, tone)
	insights := a.rules.GenerateInsights(speech, tone)
	detection := a.detector.Detect(text)

	language := transcription.Language
	if language == "" {
		language = a.language
	}

	return &entities.VoiceAnalysisResult{
		Transcript:     text,
		Language:       language,
		Segments:       segments,
		Keywords:       detection.Keywords,
		KeywordMatches: detection.Matches,
		Metrics: entities.VoiceMetrics{
			SpeechMetrics:     speech,
			Tone:              tone,
			OverallVoiceScore: overall,
			Insights:          insights,
		},
	}, nil
}

// AnalyzeSentiment scores the transcript's tone. Any scoring failure is logged and
// replaced by neutral scores; it never returns an error.
func (a *Analyzer) AnalyzeSentiment(ctx context.Context, transcript string) entities.ToneScores {
	start := time.Now()
	tone, err := a.tone.Score(ctx, transcript)
	if !errors.Is(err, errScorerNotConfigured) {
		metrics.ObserveProvider("llm", "score_tone", start)
	}
	if err == nil {
		return tone
	}

	metrics.ToneFallbacksTotal.WithLabelValues(fallbackReason(err)).Inc()
	if a.logger != nil {
		a.logger.Warn("tone scoring unavailable, using neutral scores",
			zap.Error(err),
		)
	}
	return entities.NeutralToneScores()
}

// toSegments keeps well-formed provider segments in start order
func (a *Analyzer) toSegments(in []ai.Segment) []entities.TranscriptSegment {
	segments := make([]entities.TranscriptSegment, 0, len(in))
	for _, s := range in {
		seg := entities.TranscriptSegment{Start: s.Start, End: s.End, Text: strings.TrimSpace(s.Text)}
		if err := seg.Validate(); err != nil {
			if a.logger != nil {
				a.logger.Warn("dropping malformed segment",
					zap.Float64("start", s.Start),
					zap.Float64("end", s.End),
					zap.Error(err),
				)
			}
			continue
		}
		segments = append(segments, seg)
	}
	sort.SliceStable(segments, func(i, j int) bool {
		return segments[i].Start < segments[j].Start
	})
	return segments
}

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, errScorerNotConfigured):
		return "not_configured"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "timeout"
	case errors.Is(err, errMalformedTone):
		return "malformed_response"
	default:
		return "provider_error"
	}
}
