package errors

import "errors"

// Voice analysis errors
var (
	// ErrVoiceAnalysisFailed is the only error the analyzer returns; provider detail is logged, not wrapped.
	ErrVoiceAnalysisFailed = errors.New("voice analysis failed")
	ErrAnalysisNotFound    = errors.New("voice analysis not found")
	ErrMissingAudio        = errors.New("audio recording is required")
	ErrUnsupportedAudio    = errors.New("unsupported audio format")
	ErrRecordingStorage    = errors.New("recording storage failed")
)

// Rule configuration errors
var (
	ErrInvalidRules = errors.New("invalid voice rules")
)
