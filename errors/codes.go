package errors

// ErrorCode identifies an application error in API responses
type ErrorCode int32

const (
	ErrorCode_UNSPECIFIED ErrorCode = 0
	ErrorCode_HTTP_OK     ErrorCode = 200

	// General
	ErrorCode_INTERNAL         ErrorCode = 1000
	ErrorCode_INVALID_ARGUMENT ErrorCode = 1001
	ErrorCode_UNAUTHENTICATED  ErrorCode = 1003
	ErrorCode_INVALID_PAYLOAD  ErrorCode = 1005

	// Authentication
	ErrorCode_AUTH_INVALID_TOKEN ErrorCode = 2001
	ErrorCode_AUTH_TOKEN_EXPIRED ErrorCode = 2002

	// Voice analysis
	ErrorCode_VOICE_ANALYSIS_NOT_FOUND   ErrorCode = 3001
	ErrorCode_VOICE_ANALYSIS_UNAVAILABLE ErrorCode = 3002
	ErrorCode_VOICE_MISSING_AUDIO        ErrorCode = 3003
	ErrorCode_VOICE_UNSUPPORTED_AUDIO    ErrorCode = 3004
	ErrorCode_VOICE_RECORDING_TOO_LARGE  ErrorCode = 3005

	// Integrations
	ErrorCode_INTEGRATION_STORAGE_FAILED ErrorCode = 4001
	ErrorCode_DB_QUERY_FAILED            ErrorCode = 4003
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCode_UNSPECIFIED:                "UNSPECIFIED",
	ErrorCode_HTTP_OK:                    "HTTP_OK",
	ErrorCode_INTERNAL:                   "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:           "INVALID_ARGUMENT",
	ErrorCode_UNAUTHENTICATED:            "UNAUTHENTICATED",
	ErrorCode_INVALID_PAYLOAD:            "INVALID_PAYLOAD",
	ErrorCode_AUTH_INVALID_TOKEN:         "AUTH_INVALID_TOKEN",
	ErrorCode_AUTH_TOKEN_EXPIRED:         "AUTH_TOKEN_EXPIRED",
	ErrorCode_VOICE_ANALYSIS_NOT_FOUND:   "VOICE_ANALYSIS_NOT_FOUND",
	ErrorCode_VOICE_ANALYSIS_UNAVAILABLE: "VOICE_ANALYSIS_UNAVAILABLE",
	ErrorCode_VOICE_MISSING_AUDIO:        "VOICE_MISSING_AUDIO",
	ErrorCode_VOICE_UNSUPPORTED_AUDIO:    "VOICE_UNSUPPORTED_AUDIO",
	ErrorCode_VOICE_RECORDING_TOO_LARGE:  "VOICE_RECORDING_TOO_LARGE",
	ErrorCode_INTEGRATION_STORAGE_FAILED: "INTEGRATION_STORAGE_FAILED",
	ErrorCode_DB_QUERY_FAILED:            "DB_QUERY_FAILED",
}

// String returns the symbolic name of the code
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
