package voice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/agent-trainer/internal/domain/entities"
	"github.com/johnquangdev/agent-trainer/internal/domain/repositories"
	usecaseErrors "github.com/johnquangdev/agent-trainer/internal/usecase/errors"
	"github.com/johnquangdev/agent-trainer/pkg/jobcontext"
	"github.com/johnquangdev/agent-trainer/pkg/metrics"
)

const jobTypeVoiceAnalysis = "voice_analysis"

// Cache is the key-value cache used for finished analyses
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}

// RecordingStorage stores uploaded recordings and hands out temporary download URLs
type RecordingStorage interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error
	GetFileURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
	RemoveFile(ctx context.Context, objectName string) error
}

// ServiceConfig holds the timing settings of the service
type ServiceConfig struct {
	AnalysisTimeout time.Duration // overall deadline of one analysis
	CacheTTL        time.Duration
	URLExpiry       time.Duration // lifetime of presigned recording URLs
	PersistTimeout  time.Duration
}

// Service grades simulation recordings and keeps their analyses
type Service struct {
	analyzer *Analyzer
	repo     repositories.VoiceAnalysisRepository
	cache    Cache
	storage  RecordingStorage
	cfg      ServiceConfig
	logger   *zap.Logger
}

// NewService creates a new voice analysis service. storage may be nil, which disables uploads.
func NewService(
	analyzer *Analyzer,
	repo repositories.VoiceAnalysisRepository,
	cache Cache,
	storage RecordingStorage,
	cfg ServiceConfig,
	logger *zap.Logger,
) *Service {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Hour
	}
	if cfg.URLExpiry <= 0 {
		cfg.URLExpiry = time.Hour
	}
	if cfg.PersistTimeout <= 0 {
		cfg.PersistTimeout = 15 * time.Second
	}
	return &Service{
		analyzer: analyzer,
		repo:     repo,
		cache:    cache,
		storage:  storage,
		cfg:      cfg,
		logger:   logger,
	}
}

// AnalyzeRequest represents input for analyzing a recording already reachable by URL
type AnalyzeRequest struct {
	SimulationID uuid.UUID
	AgentID      *uuid.UUID
	AudioURL     string
	ObjectKey    string
}

// UploadRequest represents input for uploading and analyzing a recording
type UploadRequest struct {
	SimulationID uuid.UUID
	AgentID      *uuid.UUID
	Filename     string
	ContentType  string
	Size         int64
	Body         io.Reader
}

// AnalyzeRecording runs the analysis pipeline under an overall deadline, stores the result
// and caches it. A failed analysis returns ErrVoiceAnalysisFailed and stores nothing.
func (s *Service) AnalyzeRecording(ctx context.Context, req AnalyzeRequest) (*entities.VoiceAnalysis, error) {
	if err := validateAudioURL(req.AudioURL); err != nil {
		return nil, err
	}

	analysisID := uuid.New()
	jobCtx, cancel := jobcontext.JobBegin(ctx, analysisID, jobTypeVoiceAnalysis, req.SimulationID, s.cfg.AnalysisTimeout)
	defer cancel()

	var result *entities.VoiceAnalysisResult
	err := jobcontext.JobRun(jobCtx, func(ctx context.Context) error {
		var err error
		result, err = s.analyzer.Analyze(ctx, req.AudioURL)
		return err
	})
	elapsed := jobcontext.Elapsed(jobCtx)
	metrics.VoiceAnalysisDuration.Observe(elapsed.Seconds())

	if err != nil {
		metrics.VoiceAnalysesTotal.WithLabelValues("failed").Inc()
		if s.logger != nil && !errors.Is(err, usecaseErrors.ErrVoiceAnalysisFailed) {
			s.logger.Error("voice analysis aborted", append(jobcontext.Fields(jobCtx), zap.Error(err))...)
		}
		return nil, usecaseErrors.ErrVoiceAnalysisFailed
	}

	record := entities.NewVoiceAnalysis(req.SimulationID, req.AgentID, req.AudioURL, result)
	record.ID = analysisID
	record.ObjectKey = req.ObjectKey
	record.Provider = s.analyzer.Provider()
	record.ProcessingTimeMs = elapsed.Milliseconds()

	// The analysis deadline may be nearly spent; saving gets its own budget.
	persistCtx, cancelPersist := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.PersistTimeout)
	defer cancelPersist()

	if err := s.persist(persistCtx, record); err != nil {
		metrics.VoiceAnalysesTotal.WithLabelValues("persist_failed").Inc()
		if s.logger != nil {
			s.logger.Error("failed to save voice analysis", append(jobcontext.Fields(jobCtx), zap.Error(err))...)
		}
		return nil, fmt.Errorf("failed to save voice analysis: %w", err)
	}
	metrics.VoiceAnalysesTotal.WithLabelValues("succeeded").Inc()

	s.cacheAnalysis(persistCtx, record)

	if s.logger != nil {
		s.logger.Info("voice analysis completed", append(jobcontext.Fields(jobCtx),
			zap.String("provider", record.Provider),
			zap.Int("overall_voice_score", record.OverallVoiceScore),
			zap.Int("speech_rate", record.SpeechRate),
			zap.Int64("processing_time_ms", record.ProcessingTimeMs),
		)...)
	}

	return record, nil
}

// UploadAndAnalyze stores the recording in object storage and analyzes it through a presigned URL
func (s *Service) UploadAndAnalyze(ctx context.Context, req UploadRequest) (*entities.VoiceAnalysis, error) {
	if req.Body == nil || req.Size <= 0 {
		return nil, usecaseErrors.ErrMissingAudio
	}
	if !IsSupportedAudio(req.ContentType) {
		return nil, usecaseErrors.ErrUnsupportedAudio
	}
	if s.storage == nil {
		return nil, fmt.Errorf("%w: storage not configured", usecaseErrors.ErrRecordingStorage)
	}

	objectKey := fmt.Sprintf("recordings/%s/%s%s", req.SimulationID, uuid.New(), path.Ext(req.Filename))
	if err := s.storage.UploadFile(ctx, objectKey, req.Body, req.Size, req.ContentType); err != nil {
		return nil, fmt.Errorf("%w: %v", usecaseErrors.ErrRecordingStorage, err)
	}

	audioURL, err := s.storage.GetFileURL(ctx, objectKey, s.cfg.URLExpiry)
	if err != nil {
		s.removeRecording(ctx, objectKey)
		return nil, fmt.Errorf("%w: %v", usecaseErrors.ErrRecordingStorage, err)
	}

	record, err := s.AnalyzeRecording(ctx, AnalyzeRequest{
		SimulationID: req.SimulationID,
		AgentID:      req.AgentID,
		AudioURL:     audioURL,
		ObjectKey:    objectKey,
	})
	if err != nil {
		s.removeRecording(ctx, objectKey)
		return nil, err
	}
	return record, nil
}

// GetAnalysis returns a stored analysis, cache first
func (s *Service) GetAnalysis(ctx context.Context, id uuid.UUID) (*entities.VoiceAnalysis, error) {
	if record, ok := s.cachedAnalysis(ctx, id); ok {
		return record, nil
	}

	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get voice analysis: %w", err)
	}
	if record == nil {
		return nil, usecaseErrors.ErrAnalysisNotFound
	}

	s.cacheAnalysis(ctx, record)
	return record, nil
}

// ListBySimulation lists the analyses of a simulation, newest first
func (s *Service) ListBySimulation(ctx context.Context, simulationID uuid.UUID) ([]*entities.VoiceAnalysis, error) {
	records, err := s.repo.FindBySimulationID(ctx, simulationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list voice analyses: %w", err)
	}
	return records, nil
}

// TopKeywords returns the n most frequent keyword matches of a stored analysis
func (s *Service) TopKeywords(ctx context.Context, id uuid.UUID, n int) ([]entities.KeywordMatch, error) {
	record, err := s.GetAnalysis(ctx, id)
	if err != nil {
		return nil, err
	}
	return TopKeywords(record.KeywordMatches, n), nil
}

// persist saves the record, retrying transient database failures
func (s *Service) persist(ctx context.Context, record *entities.VoiceAnalysis) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxInterval = 2 * time.Second
	bo.MaxElapsedTime = s.cfg.PersistTimeout

	return backoff.Retry(func() error {
		err := s.repo.Create(ctx, record)
		if err != nil && !jobcontext.IsRetryableError(err) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(bo, ctx))
}

func cacheKey(id uuid.UUID) string {
	return "voice_analysis:" + id.String()
}

func (s *Service) cacheAnalysis(ctx context.Context, record *entities.VoiceAnalysis) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(record)
	if err == nil {
		err = s.cache.Set(ctx, cacheKey(record.ID), string(data), s.cfg.CacheTTL)
	}
	if err != nil && s.logger != nil {
		s.logger.Warn("failed to cache voice analysis",
			zap.String("analysis_id", record.ID.String()),
			zap.Error(err),
		)
	}
}

func (s *Service) cachedAnalysis(ctx context.Context, id uuid.UUID) (*entities.VoiceAnalysis, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, ok, err := s.cache.Get(ctx, cacheKey(id))
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("voice analysis cache read failed",
				zap.String("analysis_id", id.String()),
				zap.Error(err),
			)
		}
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var record entities.VoiceAnalysis
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		_ = s.cache.Delete(ctx, cacheKey(id))
		return nil, false
	}
	return &record, true
}

func (s *Service) removeRecording(ctx context.Context, objectKey string) {
	if err := s.storage.RemoveFile(context.WithoutCancel(ctx), objectKey); err != nil && s.logger != nil {
		s.logger.Warn("failed to remove recording",
			zap.String("object_key", objectKey),
			zap.Error(err),
		)
	}
}

func validateAudioURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return entities.ErrInvalidAudioReference
	}
	return nil
}

// IsSupportedAudio reports whether a recording with this content type can be analyzed
func IsSupportedAudio(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	switch {
	case strings.HasPrefix(ct, "audio/"):
		return true
	case ct == "video/webm", ct == "video/mp4", ct == "application/ogg":
		return true
	}
	return false
}
