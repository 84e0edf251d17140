package errors

import (
	stdErrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError(t *testing.T) {
	raw := stdErrors.New("bucket missing")
	err := ErrStorageFailed("upload recording", raw)

	assert.Equal(t, http.StatusInternalServerError, err.HTTPCode)
	assert.ErrorIs(t, err, raw)
	assert.Equal(t, "[INTEGRATION_STORAGE_FAILED] Storage operation failed: upload recording: bucket missing", err.Error())

	var appErr AppError
	assert.True(t, stdErrors.As(error(err), &appErr))
	assert.Equal(t, ErrorCode_INTEGRATION_STORAGE_FAILED, appErr.Code)
}

func TestAppError_Details(t *testing.T) {
	assert.Equal(t, "42", ErrVoiceAnalysisNotFound("42").Details["analysis_id"])
	assert.Equal(t, "1024", ErrRecordingTooLarge(1024).Details["max_bytes"])
	assert.Nil(t, ErrUnsupportedAudio("").Details)
	assert.Equal(t, "image/png", ErrUnsupportedAudio("image/png").Details["content_type"])

	a := ErrInvalidArgument("x").WithDetail("k", "v")
	b := ErrInvalidArgument("x")
	assert.Nil(t, b.Details)
	assert.Equal(t, "v", a.Details["k"])
}

func TestErrorCode_String(t *testing.T) {
	assert.Equal(t, "VOICE_ANALYSIS_UNAVAILABLE", ErrorCode_VOICE_ANALYSIS_UNAVAILABLE.String())
	assert.Equal(t, "UNKNOWN", ErrorCode(9999).String())
}
