package voice

// AnalyzeRecordingRequest represents the request to analyze a recording reachable by URL
type AnalyzeRecordingRequest struct {
	AudioURL string `json:"audio_url" validate:"required,max=2048,audio_url"`
}

// TopKeywordsQuery represents the query of the top keywords endpoint
type TopKeywordsQuery struct {
	N int `query:"n" validate:"omitempty,min=1,max=50"`
}
