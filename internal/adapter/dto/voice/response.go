package voice

import "time"

// SegmentResponse represents a timed span of speech
type SegmentResponse struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// KeywordMatchResponse represents a vocabulary term found in the transcript
type KeywordMatchResponse struct {
	Word     string `json:"word"`
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// ToneResponse represents the 0-100 tone scores
type ToneResponse struct {
	Confidence      int `json:"confidence"`
	Empathy         int `json:"empathy"`
	Professionalism int `json:"professionalism"`
	Clarity         int `json:"clarity"`
	Enthusiasm      int `json:"enthusiasm"`
}

// MetricsResponse represents the voice metrics of an analysis
type MetricsResponse struct {
	SpeechRate           int          `json:"speech_rate"`
	AveragePauseDuration float64      `json:"average_pause_duration"`
	TotalSpeakingTime    float64      `json:"total_speaking_time"`
	Tone                 ToneResponse `json:"tone"`
	OverallVoiceScore    int          `json:"overall_voice_score"`
	Insights             []string     `json:"insights"`
}

// VoiceAnalysisResponse represents a stored voice analysis
type VoiceAnalysisResponse struct {
	ID               string                 `json:"id"`
	SimulationID     string                 `json:"simulation_id"`
	AgentID          *string                `json:"agent_id,omitempty"`
	AudioURL         string                 `json:"audio_url"`
	Provider         string                 `json:"provider,omitempty"`
	Language         string                 `json:"language,omitempty"`
	Transcript       string                 `json:"transcript"`
	Segments         []SegmentResponse      `json:"segments"`
	Keywords         []string               `json:"keywords"`
	KeywordMatches   []KeywordMatchResponse `json:"keyword_matches"`
	Metrics          MetricsResponse        `json:"metrics"`
	ProcessingTimeMs int64                  `json:"processing_time_ms"`
	CreatedAt        time.Time              `json:"created_at"`
}

// VoiceAnalysisSummaryResponse represents an analysis in a list, without transcript detail
type VoiceAnalysisSummaryResponse struct {
	ID                string    `json:"id"`
	SimulationID      string    `json:"simulation_id"`
	Provider          string    `json:"provider,omitempty"`
	SpeechRate        int       `json:"speech_rate"`
	OverallVoiceScore int       `json:"overall_voice_score"`
	CreatedAt         time.Time `json:"created_at"`
}

// VoiceAnalysisListResponse represents the analyses of a simulation
type VoiceAnalysisListResponse struct {
	SimulationID string                          `json:"simulation_id"`
	Analyses     []*VoiceAnalysisSummaryResponse `json:"analyses"`
	Total        int                             `json:"total"`
}

// TopKeywordsResponse represents the most frequent keyword matches of an analysis
type TopKeywordsResponse struct {
	AnalysisID string                 `json:"analysis_id"`
	Keywords   []KeywordMatchResponse `json:"keywords"`
}
