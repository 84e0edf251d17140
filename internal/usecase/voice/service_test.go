package voice

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/johnquangdev/agent-trainer/internal/domain/entities"
	"github.com/johnquangdev/agent-trainer/internal/infrastructure/cache"
	usecaseErrors "github.com/johnquangdev/agent-trainer/internal/usecase/errors"
)

type fakeRepo struct {
	mu        sync.Mutex
	records   map[uuid.UUID]*entities.VoiceAnalysis
	createErr []error
	creates   int
	finds     int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{records: make(map[uuid.UUID]*entities.VoiceAnalysis)}
}

func (r *fakeRepo) Create(ctx context.Context, analysis *entities.VoiceAnalysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	if len(r.createErr) > 0 {
		err := r.createErr[0]
		r.createErr = r.createErr[1:]
		if err != nil {
			return err
		}
	}
	r.records[analysis.ID] = analysis
	return nil
}

func (r *fakeRepo) FindByID(ctx context.Context, id uuid.UUID) (*entities.VoiceAnalysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finds++
	return r.records[id], nil
}

func (r *fakeRepo) FindBySimulationID(ctx context.Context, simulationID uuid.UUID) ([]*entities.VoiceAnalysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.VoiceAnalysis
	for _, rec := range r.records {
		if rec.SimulationID == simulationID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *fakeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, id)
	return nil
}

type fakeStorage struct {
	objects   map[string][]byte
	uploadErr error
	removed   []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (s *fakeStorage) UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error {
	if s.uploadErr != nil {
		return s.uploadErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.objects[objectName] = data
	return nil
}

func (s *fakeStorage) GetFileURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	return "https://files.example.com/agent-recordings/" + objectName + "?sig=abc", nil
}

func (s *fakeStorage) RemoveFile(ctx context.Context, objectName string) error {
	s.removed = append(s.removed, objectName)
	delete(s.objects, objectName)
	return nil
}

func newTestService(t *testing.T, transcriber *fakeTranscriber, repo *fakeRepo, storage RecordingStorage) *Service {
	t.Helper()
	scorer := &fakeScorer{content: `{"confidence":90,"empathy":85,"professionalism":70,"clarity":75,"enthusiasm":40}`}
	analyzer := NewAnalyzer(transcriber, scorer, DefaultRules(), "es", zap.NewNop())

	store := cache.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })

	return NewService(analyzer, repo, store, storage, ServiceConfig{
		AnalysisTimeout: 5 * time.Second,
		CacheTTL:        time.Minute,
		PersistTimeout:  2 * time.Second,
	}, zap.NewNop())
}

func TestService_AnalyzeRecording(t *testing.T) {
	simulationID := uuid.New()

	t.Run("stores_and_caches_result", func(t *testing.T) {
		repo := newFakeRepo()
		svc := newTestService(t, &fakeTranscriber{result: scenarioTranscription()}, repo, nil)

		record, err := svc.AnalyzeRecording(context.Background(), AnalyzeRequest{
			SimulationID: simulationID,
			AudioURL:     "https://storage.example.com/rec.webm",
		})
		require.NoError(t, err)

		assert.Equal(t, simulationID, record.SimulationID)
		assert.Equal(t, "fake", record.Provider)
		assert.Equal(t, 62, record.SpeechRate)
		assert.Equal(t, 55, record.OverallVoiceScore)
		assert.GreaterOrEqual(t, record.ProcessingTimeMs, int64(0))
		assert.Contains(t, repo.records, record.ID)

		got, err := svc.GetAnalysis(context.Background(), record.ID)
		require.NoError(t, err)
		assert.Equal(t, record.ID, got.ID)
		assert.Equal(t, 0, repo.finds, "cached record must not hit the repository")
		assert.Equal(t, record.Tone.Data(), got.Tone.Data())
	})

	t.Run("invalid_url", func(t *testing.T) {
		transcriber := &fakeTranscriber{result: scenarioTranscription()}
		svc := newTestService(t, transcriber, newFakeRepo(), nil)

		for _, raw := range []string{"", "not a url", "ftp://host/rec.wav", "/local/rec.wav"} {
			_, err := svc.AnalyzeRecording(context.Background(), AnalyzeRequest{SimulationID: simulationID, AudioURL: raw})
			assert.ErrorIs(t, err, entities.ErrInvalidAudioReference, raw)
		}
		assert.Zero(t, transcriber.calls)
	})

	t.Run("transcription_failure_stores_nothing", func(t *testing.T) {
		repo := newFakeRepo()
		svc := newTestService(t, &fakeTranscriber{err: errors.New("upstream down")}, repo, nil)

		record, err := svc.AnalyzeRecording(context.Background(), AnalyzeRequest{
			SimulationID: simulationID,
			AudioURL:     "https://storage.example.com/rec.webm",
		})
		assert.Nil(t, record)
		assert.ErrorIs(t, err, usecaseErrors.ErrVoiceAnalysisFailed)
		assert.Zero(t, repo.creates)
	})

	t.Run("retries_transient_persist_failure", func(t *testing.T) {
		repo := newFakeRepo()
		repo.createErr = []error{errors.New("connection reset by peer")}
		svc := newTestService(t, &fakeTranscriber{result: scenarioTranscription()}, repo, nil)

		record, err := svc.AnalyzeRecording(context.Background(), AnalyzeRequest{
			SimulationID: simulationID,
			AudioURL:     "https://storage.example.com/rec.webm",
		})
		require.NoError(t, err)
		assert.Equal(t, 2, repo.creates)
		assert.Contains(t, repo.records, record.ID)
	})

	t.Run("permanent_persist_failure", func(t *testing.T) {
		repo := newFakeRepo()
		repo.createErr = []error{errors.New("duplicate key value violates unique constraint")}
		svc := newTestService(t, &fakeTranscriber{result: scenarioTranscription()}, repo, nil)

		_, err := svc.AnalyzeRecording(context.Background(), AnalyzeRequest{
			SimulationID: simulationID,
			AudioURL:     "https://storage.example.com/rec.webm",
		})
		require.Error(t, err)
		assert.NotErrorIs(t, err, usecaseErrors.ErrVoiceAnalysisFailed)
		assert.Equal(t, 1, repo.creates)
	})
}

func TestService_UploadAndAnalyze(t *testing.T) {
	simulationID := uuid.New()
	body := []byte("RIFF....WAVEfmt ")

	t.Run("uploads_then_analyzes_presigned_url", func(t *testing.T) {
		transcriber := &fakeTranscriber{result: scenarioTranscription()}
		storage := newFakeStorage()
		svc := newTestService(t, transcriber, newFakeRepo(), storage)

		record, err := svc.UploadAndAnalyze(context.Background(), UploadRequest{
			SimulationID: simulationID,
			Filename:     "call.wav",
			ContentType:  "audio/wav",
			Size:         int64(len(body)),
			Body:         bytes.NewReader(body),
		})
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(record.ObjectKey, "recordings/"+simulationID.String()+"/"))
		assert.True(t, strings.HasSuffix(record.ObjectKey, ".wav"))
		assert.Equal(t, body, storage.objects[record.ObjectKey])
		assert.Equal(t, transcriber.gotURL, record.AudioURL)
		assert.Contains(t, record.AudioURL, record.ObjectKey)
	})

	t.Run("rejects_missing_and_unsupported_audio", func(t *testing.T) {
		svc := newTestService(t, &fakeTranscriber{result: scenarioTranscription()}, newFakeRepo(), newFakeStorage())

		_, err := svc.UploadAndAnalyze(context.Background(), UploadRequest{SimulationID: simulationID, ContentType: "audio/wav"})
		assert.ErrorIs(t, err, usecaseErrors.ErrMissingAudio)

		_, err = svc.UploadAndAnalyze(context.Background(), UploadRequest{
			SimulationID: simulationID,
			ContentType:  "image/png",
			Size:         int64(len(body)),
			Body:         bytes.NewReader(body),
		})
		assert.ErrorIs(t, err, usecaseErrors.ErrUnsupportedAudio)
	})

	t.Run("storage_not_configured", func(t *testing.T) {
		svc := newTestService(t, &fakeTranscriber{result: scenarioTranscription()}, newFakeRepo(), nil)

		_, err := svc.UploadAndAnalyze(context.Background(), UploadRequest{
			SimulationID: simulationID,
			ContentType:  "audio/webm",
			Size:         int64(len(body)),
			Body:         bytes.NewReader(body),
		})
		assert.ErrorIs(t, err, usecaseErrors.ErrRecordingStorage)
	})

	t.Run("failed_analysis_removes_recording", func(t *testing.T) {
		storage := newFakeStorage()
		svc := newTestService(t, &fakeTranscriber{err: errors.New("boom")}, newFakeRepo(), storage)

		_, err := svc.UploadAndAnalyze(context.Background(), UploadRequest{
			SimulationID: simulationID,
			Filename:     "call.webm",
			ContentType:  "audio/webm",
			Size:         int64(len(body)),
			Body:         bytes.NewReader(body),
		})
		assert.ErrorIs(t, err, usecaseErrors.ErrVoiceAnalysisFailed)
		assert.Len(t, storage.removed, 1)
		assert.Empty(t, storage.objects)
	})
}

func TestService_GetAnalysis(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, &fakeTranscriber{result: scenarioTranscription()}, repo, nil)

	_, err := svc.GetAnalysis(context.Background(), uuid.New())
	assert.ErrorIs(t, err, usecaseErrors.ErrAnalysisNotFound)
	assert.Equal(t, 1, repo.finds)
	repo.finds = 0

	stored := entities.NewVoiceAnalysis(uuid.New(), nil, "https://storage.example.com/rec.webm", &entities.VoiceAnalysisResult{
		Transcript: "hola",
		KeywordMatches: []entities.KeywordMatch{
			{Word: "cuenta", Category: entities.KeywordCategoryBanking, Count: 1},
			{Word: "entiendo", Category: entities.KeywordCategoryEmotional, Count: 3},
		},
	})
	repo.records[stored.ID] = stored

	got, err := svc.GetAnalysis(context.Background(), stored.ID)
	require.NoError(t, err)
	assert.Equal(t, "hola", got.Transcript)
	assert.Equal(t, 1, repo.finds)

	_, err = svc.GetAnalysis(context.Background(), stored.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.finds, "second read is served from cache")

	top, err := svc.TopKeywords(context.Background(), stored.ID, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "entiendo", top[0].Word)
}

func TestService_ListBySimulation(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, &fakeTranscriber{result: scenarioTranscription()}, repo, nil)
	simulationID := uuid.New()

	for i := 0; i < 2; i++ {
		_, err := svc.AnalyzeRecording(context.Background(), AnalyzeRequest{
			SimulationID: simulationID,
			AudioURL:     "https://storage.example.com/rec.webm",
		})
		require.NoError(t, err)
	}

	records, err := svc.ListBySimulation(context.Background(), simulationID)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	records, err = svc.ListBySimulation(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestIsSupportedAudio(t *testing.T) {
	assert.True(t, IsSupportedAudio("audio/webm;codecs=opus"))
	assert.True(t, IsSupportedAudio("Audio/MPEG"))
	assert.True(t, IsSupportedAudio("video/webm"))
	assert.False(t, IsSupportedAudio("image/png"))
	assert.False(t, IsSupportedAudio(""))
}
