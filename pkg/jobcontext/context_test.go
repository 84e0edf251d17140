package jobcontext

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobBegin(t *testing.T) {
	jobID := uuid.New()
	simulationID := uuid.New()

	ctx, cancel := JobBegin(context.Background(), jobID, "voice_analysis", simulationID, time.Minute)
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)

	meta := GetJobMetadata(ctx)
	assert.Equal(t, jobID, meta.JobID)
	assert.Equal(t, "voice_analysis", meta.JobType)
	assert.Equal(t, simulationID, meta.SimulationID)
	assert.False(t, meta.StartTime.IsZero())
	assert.Len(t, Fields(ctx), 3)
}

func TestJobBegin_DefaultTimeout(t *testing.T) {
	ctx, cancel := JobBegin(context.Background(), uuid.New(), "voice_analysis", uuid.Nil, 0)
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(DefaultTimeout), deadline, 5*time.Second)
	assert.Len(t, Fields(ctx), 2)
}

func TestJobRun(t *testing.T) {
	t.Run("returns_job_error", func(t *testing.T) {
		boom := errors.New("boom")
		err := JobRun(context.Background(), func(context.Context) error { return boom })
		assert.ErrorIs(t, err, boom)
	})

	t.Run("recovers_panic", func(t *testing.T) {
		err := JobRun(context.Background(), func(context.Context) error { panic("nil map") })
		assert.ErrorContains(t, err, "panic recovered: nil map")
	})

	t.Run("cancelled_context_skips_job", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		called := false
		err := JobRun(ctx, func(context.Context) error {
			called = true
			return nil
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, called)
	})
}

func TestElapsed_OutsideJob(t *testing.T) {
	assert.Zero(t, Elapsed(context.Background()))
}

func TestIsRetryableError(t *testing.T) {
	assert.True(t, IsRetryableError(errors.New("dial tcp: connection refused")))
	assert.True(t, IsRetryableError(errors.New("ERROR: deadlock detected (SQLSTATE 40P01)")))
	assert.False(t, IsRetryableError(errors.New("duplicate key value violates unique constraint")))
	assert.False(t, IsRetryableError(nil))
}
