package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	appErrors "github.com/johnquangdev/agent-trainer/errors"
	"github.com/johnquangdev/agent-trainer/internal/domain/entities"
	usecaseErrors "github.com/johnquangdev/agent-trainer/internal/usecase/errors"
	voiceUsecase "github.com/johnquangdev/agent-trainer/internal/usecase/voice"
	"github.com/johnquangdev/agent-trainer/pkg/config"
	pkgvalidator "github.com/johnquangdev/agent-trainer/pkg/validator"
)

type fakeVoiceService struct {
	record     *entities.VoiceAnalysis
	records    []*entities.VoiceAnalysis
	matches    []entities.KeywordMatch
	err        error
	analyzeReq voiceUsecase.AnalyzeRequest
	uploadReq  voiceUsecase.UploadRequest
	uploadBody []byte
	topN       int
}

func (f *fakeVoiceService) AnalyzeRecording(ctx context.Context, req voiceUsecase.AnalyzeRequest) (*entities.VoiceAnalysis, error) {
	f.analyzeReq = req
	return f.record, f.err
}

func (f *fakeVoiceService) UploadAndAnalyze(ctx context.Context, req voiceUsecase.UploadRequest) (*entities.VoiceAnalysis, error) {
	f.uploadReq = req
	if req.Body != nil {
		f.uploadBody, _ = io.ReadAll(req.Body)
	}
	return f.record, f.err
}

func (f *fakeVoiceService) GetAnalysis(ctx context.Context, id uuid.UUID) (*entities.VoiceAnalysis, error) {
	return f.record, f.err
}

func (f *fakeVoiceService) ListBySimulation(ctx context.Context, simulationID uuid.UUID) ([]*entities.VoiceAnalysis, error) {
	return f.records, f.err
}

func (f *fakeVoiceService) TopKeywords(ctx context.Context, id uuid.UUID, n int) ([]entities.KeywordMatch, error) {
	f.topN = n
	return f.matches, f.err
}

var testAgentID = uuid.MustParse("6f1c2f43-5a4b-4a7e-9b8a-2d9c1f0e3b11")

func sampleRecord(simulationID uuid.UUID) *entities.VoiceAnalysis {
	return &entities.VoiceAnalysis{
		ID:                uuid.New(),
		SimulationID:      simulationID,
		AgentID:           &testAgentID,
		AudioURL:          "https://storage.example.com/rec.webm",
		Provider:          "fake",
		Transcript:        "Buenos días, entiendo su situación",
		Segments:          []entities.TranscriptSegment{{Start: 0, End: 3, Text: "Buenos días"}},
		Keywords:          []string{"entiendo", "buenos días"},
		SpeechRate:        62,
		Tone:              datatypes.NewJSONType(entities.NeutralToneScores()),
		OverallVoiceScore: 55,
		CreatedAt:         time.Now(),
	}
}

func newTestServer(svc VoiceService, checks map[string]HealthCheck) *echo.Echo {
	e := echo.New()
	e.Validator = pkgvalidator.New()

	setUser := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("user_id", testAgentID)
			return next(c)
		}
	}

	cfg := &config.Config{Server: config.ServerConfig{Environment: "test"}}
	NewRouter(cfg, NewVoiceHandler(svc, 1024, zap.NewNop()), setUser, checks).Setup(e)
	return e
}

func doJSON(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestVoice_AnalyzeRecording(t *testing.T) {
	simulationID := uuid.New()
	target := "/v1/simulations/" + simulationID.String() + "/voice-analyses"

	t.Run("created", func(t *testing.T) {
		svc := &fakeVoiceService{record: sampleRecord(simulationID)}
		e := newTestServer(svc, nil)

		rec := doJSON(e, http.MethodPost, target, `{"audio_url":"https://storage.example.com/rec.webm"}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		assert.Equal(t, simulationID, svc.analyzeReq.SimulationID)
		require.NotNil(t, svc.analyzeReq.AgentID)
		assert.Equal(t, testAgentID, *svc.analyzeReq.AgentID)

		data := decodeBody(t, rec)["data"].(map[string]interface{})
		metrics := data["metrics"].(map[string]interface{})
		assert.EqualValues(t, 55, metrics["overall_voice_score"])
		assert.EqualValues(t, 62, metrics["speech_rate"])
		assert.Equal(t, []interface{}{}, metrics["insights"])
		assert.EqualValues(t, 50, metrics["tone"].(map[string]interface{})["empathy"])
	})

	t.Run("invalid_simulation_id", func(t *testing.T) {
		e := newTestServer(&fakeVoiceService{}, nil)
		rec := doJSON(e, http.MethodPost, "/v1/simulations/nope/voice-analyses", `{"audio_url":"https://x.example.com/a.wav"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing_audio_url", func(t *testing.T) {
		e := newTestServer(&fakeVoiceService{}, nil)
		rec := doJSON(e, http.MethodPost, target, `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.EqualValues(t, appErrors.ErrorCode_INVALID_ARGUMENT, decodeBody(t, rec)["code"])
	})

	t.Run("non_http_audio_url", func(t *testing.T) {
		svc := &fakeVoiceService{}
		e := newTestServer(svc, nil)
		rec := doJSON(e, http.MethodPost, target, `{"audio_url":"ftp://storage.example.com/rec.webm"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.EqualValues(t, appErrors.ErrorCode_INVALID_ARGUMENT, decodeBody(t, rec)["code"])
	})

	t.Run("analysis_failure_hides_provider_detail", func(t *testing.T) {
		e := newTestServer(&fakeVoiceService{err: usecaseErrors.ErrVoiceAnalysisFailed}, nil)
		rec := doJSON(e, http.MethodPost, target, `{"audio_url":"https://storage.example.com/rec.webm"}`)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		body := decodeBody(t, rec)
		assert.EqualValues(t, appErrors.ErrorCode_VOICE_ANALYSIS_UNAVAILABLE, body["code"])
		assert.NotContains(t, body, "info")
	})

	t.Run("unexpected_error_is_internal", func(t *testing.T) {
		e := newTestServer(&fakeVoiceService{err: errors.New("failed to save voice analysis: pq: boom")}, nil)
		rec := doJSON(e, http.MethodPost, target, `{"audio_url":"https://storage.example.com/rec.webm"}`)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "pq: boom")
	})
}

func multipartRequest(t *testing.T, target, contentType string, payload []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if payload != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="audio"; filename="call.webm"`)
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(payload)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func TestVoice_UploadRecording(t *testing.T) {
	simulationID := uuid.New()
	target := "/v1/simulations/" + simulationID.String() + "/recordings"
	payload := []byte("webm-bytes")

	t.Run("created", func(t *testing.T) {
		svc := &fakeVoiceService{record: sampleRecord(simulationID)}
		e := newTestServer(svc, nil)

		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, multipartRequest(t, target, "audio/webm", payload))

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "call.webm", svc.uploadReq.Filename)
		assert.Equal(t, "audio/webm", svc.uploadReq.ContentType)
		assert.Equal(t, int64(len(payload)), svc.uploadReq.Size)
		assert.Equal(t, payload, svc.uploadBody)
	})

	t.Run("missing_file", func(t *testing.T) {
		e := newTestServer(&fakeVoiceService{}, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, multipartRequest(t, target, "", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.EqualValues(t, appErrors.ErrorCode_VOICE_MISSING_AUDIO, decodeBody(t, rec)["code"])
	})

	t.Run("unsupported_type", func(t *testing.T) {
		e := newTestServer(&fakeVoiceService{}, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, multipartRequest(t, target, "image/png", payload))

		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	})

	t.Run("too_large", func(t *testing.T) {
		e := newTestServer(&fakeVoiceService{}, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, multipartRequest(t, target, "audio/webm", bytes.Repeat([]byte("a"), 2048)))

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})
}

func TestVoice_GetAnalysis(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		record := sampleRecord(uuid.New())
		e := newTestServer(&fakeVoiceService{record: record}, nil)

		rec := doJSON(e, http.MethodGet, "/v1/voice-analyses/"+record.ID.String(), "")
		require.Equal(t, http.StatusOK, rec.Code)
		data := decodeBody(t, rec)["data"].(map[string]interface{})
		assert.Equal(t, record.ID.String(), data["id"])
		assert.Equal(t, testAgentID.String(), data["agent_id"])
	})

	t.Run("not_found", func(t *testing.T) {
		id := uuid.New()
		e := newTestServer(&fakeVoiceService{err: usecaseErrors.ErrAnalysisNotFound}, nil)

		rec := doJSON(e, http.MethodGet, "/v1/voice-analyses/"+id.String(), "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		body := decodeBody(t, rec)
		assert.EqualValues(t, appErrors.ErrorCode_VOICE_ANALYSIS_NOT_FOUND, body["code"])
		assert.Equal(t, id.String(), body["details"].(map[string]interface{})["analysis_id"])
	})
}

func TestVoice_ListAnalyses(t *testing.T) {
	simulationID := uuid.New()
	svc := &fakeVoiceService{records: []*entities.VoiceAnalysis{sampleRecord(simulationID), sampleRecord(simulationID)}}
	e := newTestServer(svc, nil)

	rec := doJSON(e, http.MethodGet, "/v1/simulations/"+simulationID.String()+"/voice-analyses", "")
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeBody(t, rec)["data"].(map[string]interface{})
	assert.EqualValues(t, 2, data["total"])
	assert.Len(t, data["analyses"], 2)
}

func TestVoice_TopKeywords(t *testing.T) {
	id := uuid.New()
	matches := []entities.KeywordMatch{
		{Word: "entiendo", Category: entities.KeywordCategoryEmotional, Count: 3},
		{Word: "cuenta", Category: entities.KeywordCategoryBanking, Count: 1},
	}

	tests := []struct {
		name     string
		query    string
		wantCode int
		wantN    int
	}{
		{name: "default", query: "", wantCode: http.StatusOK, wantN: defaultTopKeywords},
		{name: "explicit", query: "?n=2", wantCode: http.StatusOK, wantN: 2},
		{name: "not_a_number", query: "?n=abc", wantCode: http.StatusBadRequest},
		{name: "out_of_range", query: "?n=100", wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeVoiceService{matches: matches}
			e := newTestServer(svc, nil)

			rec := doJSON(e, http.MethodGet, fmt.Sprintf("/v1/voice-analyses/%s/keywords/top%s", id, tt.query), "")
			require.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode != http.StatusOK {
				return
			}

			assert.Equal(t, tt.wantN, svc.topN)
			data := decodeBody(t, rec)["data"].(map[string]interface{})
			assert.Equal(t, id.String(), data["analysis_id"])
			keywords := data["keywords"].([]interface{})
			require.Len(t, keywords, 2)
			assert.Equal(t, "entiendo", keywords[0].(map[string]interface{})["word"])
		})
	}
}

func TestRouter_Health(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		e := newTestServer(&fakeVoiceService{}, map[string]HealthCheck{
			"database": func(ctx context.Context) error { return nil },
		})
		rec := doJSON(e, http.MethodGet, "/health", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ok", decodeBody(t, rec)["status"])
	})

	t.Run("degraded", func(t *testing.T) {
		e := newTestServer(&fakeVoiceService{}, map[string]HealthCheck{
			"database": func(ctx context.Context) error { return nil },
			"cache":    func(ctx context.Context) error { return errors.New("connection refused") },
		})
		rec := doJSON(e, http.MethodGet, "/health", "")

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "degraded", body["status"])
		deps := body["dependencies"].(map[string]interface{})
		assert.Equal(t, "ok", deps["database"])
		assert.Contains(t, deps["cache"], "connection refused")
	})
}

func TestRouter_Metrics(t *testing.T) {
	e := newTestServer(&fakeVoiceService{}, nil)
	rec := doJSON(e, http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "agent_trainer_voice_analysis_duration_seconds")
}
