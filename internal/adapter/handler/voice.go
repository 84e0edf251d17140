package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/agent-trainer/errors"
	voiceDTO "github.com/johnquangdev/agent-trainer/internal/adapter/dto/voice"
	"github.com/johnquangdev/agent-trainer/internal/adapter/presenter"
	"github.com/johnquangdev/agent-trainer/internal/domain/entities"
	voiceUsecase "github.com/johnquangdev/agent-trainer/internal/usecase/voice"
)

const defaultTopKeywords = 5

// VoiceService is the voice analysis usecase consumed by the handler
type VoiceService interface {
	AnalyzeRecording(ctx context.Context, req voiceUsecase.AnalyzeRequest) (*entities.VoiceAnalysis, error)
	UploadAndAnalyze(ctx context.Context, req voiceUsecase.UploadRequest) (*entities.VoiceAnalysis, error)
	GetAnalysis(ctx context.Context, id uuid.UUID) (*entities.VoiceAnalysis, error)
	ListBySimulation(ctx context.Context, simulationID uuid.UUID) ([]*entities.VoiceAnalysis, error)
	TopKeywords(ctx context.Context, id uuid.UUID, n int) ([]entities.KeywordMatch, error)
}

var _ VoiceService = (*voiceUsecase.Service)(nil)

// Voice handles voice analysis HTTP requests
type Voice struct {
	svc            VoiceService
	logger         *zap.Logger
	maxUploadBytes int64
}

// NewVoiceHandler creates a new voice handler
func NewVoiceHandler(svc VoiceService, maxUploadBytes int64, logger *zap.Logger) *Voice {
	return &Voice{
		svc:            svc,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
	}
}

// AnalyzeRecording handles POST /simulations/:id/voice-analyses
// @Summary      Analyze a simulation recording
// @Description  Transcribes the recording at audio_url and grades the agent's voice performance
// @Tags         Voice
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                                true  "Simulation ID (UUID)"
// @Param        request  body      voice.AnalyzeRecordingRequest         true  "Recording to analyze"
// @Success      201      {object}  voice.VoiceAnalysisResponse           "Analysis completed"
// @Failure      400      {object}  map[string]interface{}                "Invalid request"
// @Failure      401      {object}  map[string]interface{}                "User not authenticated"
// @Failure      503      {object}  map[string]interface{}                "Analysis unavailable"
// @Router       /simulations/{id}/voice-analyses [post]
func (h *Voice) AnalyzeRecording(c echo.Context) error {
	simulationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("simulation ID must be a valid UUID"))
	}

	var req voiceDTO.AnalyzeRecordingRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	record, err := h.svc.AnalyzeRecording(c.Request().Context(), voiceUsecase.AnalyzeRequest{
		SimulationID: simulationID,
		AgentID:      agentID(c),
		AudioURL:     req.AudioURL,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleCreated(h.logger, c, presenter.ToVoiceAnalysisResponse(record))
}

// UploadRecording handles POST /simulations/:id/recordings
// @Summary      Upload and analyze a recording
// @Description  Stores the multipart "audio" file and grades the agent's voice performance
// @Tags         Voice
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      string                       true  "Simulation ID (UUID)"
// @Param        audio  formData  file                         true  "Recording"
// @Success      201    {object}  voice.VoiceAnalysisResponse  "Analysis completed"
// @Failure      400    {object}  map[string]interface{}       "Missing audio"
// @Failure      413    {object}  map[string]interface{}       "Recording too large"
// @Failure      415    {object}  map[string]interface{}       "Unsupported audio format"
// @Failure      503    {object}  map[string]interface{}       "Analysis unavailable"
// @Router       /simulations/{id}/recordings [post]
func (h *Voice) UploadRecording(c echo.Context) error {
	simulationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("simulation ID must be a valid UUID"))
	}

	file, err := c.FormFile("audio")
	if err != nil {
		return HandleError(h.logger, c, errors.ErrMissingAudio())
	}
	if h.maxUploadBytes > 0 && file.Size > h.maxUploadBytes {
		return HandleError(h.logger, c, errors.ErrRecordingTooLarge(h.maxUploadBytes))
	}

	contentType := file.Header.Get(echo.HeaderContentType)
	if !voiceUsecase.IsSupportedAudio(contentType) {
		return HandleError(h.logger, c, errors.ErrUnsupportedAudio(contentType))
	}

	src, err := file.Open()
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	defer src.Close()

	record, err := h.svc.UploadAndAnalyze(c.Request().Context(), voiceUsecase.UploadRequest{
		SimulationID: simulationID,
		AgentID:      agentID(c),
		Filename:     file.Filename,
		ContentType:  contentType,
		Size:         file.Size,
		Body:         src,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleCreated(h.logger, c, presenter.ToVoiceAnalysisResponse(record))
}

// ListAnalyses handles GET /simulations/:id/voice-analyses
// @Summary      List the analyses of a simulation
// @Tags         Voice
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string                           true  "Simulation ID (UUID)"
// @Success      200  {object}  voice.VoiceAnalysisListResponse  "Analyses, newest first"
// @Router       /simulations/{id}/voice-analyses [get]
func (h *Voice) ListAnalyses(c echo.Context) error {
	simulationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("simulation ID must be a valid UUID"))
	}

	records, err := h.svc.ListBySimulation(c.Request().Context(), simulationID)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrDBQueryFailed("list voice analyses", err))
	}

	return HandleSuccess(h.logger, c, presenter.ToVoiceAnalysisListResponse(simulationID.String(), records))
}

// GetAnalysis handles GET /voice-analyses/:id
// @Summary      Get a voice analysis
// @Tags         Voice
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string                       true  "Analysis ID (UUID)"
// @Success      200  {object}  voice.VoiceAnalysisResponse  "Analysis"
// @Failure      404  {object}  map[string]interface{}       "Analysis not found"
// @Router       /voice-analyses/{id} [get]
func (h *Voice) GetAnalysis(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("analysis ID must be a valid UUID"))
	}

	record, err := h.svc.GetAnalysis(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, presenter.ToVoiceAnalysisResponse(record))
}

// TopKeywords handles GET /voice-analyses/:id/keywords/top
// @Summary      Most frequent keywords of an analysis
// @Tags         Voice
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string                     true   "Analysis ID (UUID)"
// @Param        n    query     int                        false  "Number of keywords (1-50, default 5)"
// @Success      200  {object}  voice.TopKeywordsResponse  "Top keywords"
// @Failure      404  {object}  map[string]interface{}     "Analysis not found"
// @Router       /voice-analyses/{id}/keywords/top [get]
func (h *Voice) TopKeywords(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("analysis ID must be a valid UUID"))
	}

	var query voiceDTO.TopKeywordsQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &query); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("n must be an integer"))
	}
	if err := c.Validate(&query); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}
	if query.N == 0 {
		query.N = defaultTopKeywords
	}

	matches, err := h.svc.TopKeywords(c.Request().Context(), id, query.N)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, voiceDTO.TopKeywordsResponse{
		AnalysisID: id.String(),
		Keywords:   presenter.ToKeywordMatchResponses(matches),
	})
}

// agentID returns the authenticated user, who is the agent being graded
func agentID(c echo.Context) *uuid.UUID {
	id, ok := c.Get("user_id").(uuid.UUID)
	if !ok || id == uuid.Nil {
		return nil
	}
	return &id
}
