package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// VoiceAnalysis is the stored record of a graded simulation recording
type VoiceAnalysis struct {
	ID                   uuid.UUID                      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	SimulationID         uuid.UUID                      `json:"simulation_id" gorm:"type:uuid;not null;index"`
	AgentID              *uuid.UUID                     `json:"agent_id,omitempty" gorm:"type:uuid;index"`
	AudioURL             string                         `json:"audio_url" gorm:"type:text;not null"`
	ObjectKey            string                         `json:"object_key,omitempty" gorm:"type:varchar(512)"`
	Provider             string                         `json:"provider,omitempty" gorm:"type:varchar(50)"`
	Language             string                         `json:"language,omitempty" gorm:"type:varchar(20)"`
	Transcript           string                         `json:"transcript" gorm:"type:text"`
	Segments             []TranscriptSegment            `json:"segments,omitempty" gorm:"type:jsonb;serializer:json"`
	Keywords             []string                       `json:"keywords,omitempty" gorm:"type:jsonb;serializer:json"`
	KeywordMatches       []KeywordMatch                 `json:"keyword_matches,omitempty" gorm:"type:jsonb;serializer:json"`
	SpeechRate           int                            `json:"speech_rate"`
	AveragePauseDuration float64                        `json:"average_pause_duration"`
	TotalSpeakingTime    float64                        `json:"total_speaking_time"`
	Tone                 datatypes.JSONType[ToneScores] `json:"tone" gorm:"type:jsonb"`
	OverallVoiceScore    int                            `json:"overall_voice_score"`
	Insights             []string                       `json:"insights,omitempty" gorm:"type:jsonb;serializer:json"`
	ProcessingTimeMs     int64                          `json:"processing_time_ms,omitempty"`
	CreatedAt            time.Time                      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt            time.Time                      `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (VoiceAnalysis) TableName() string {
	return "voice_analyses"
}

// NewVoiceAnalysis builds a stored record from an analysis result
func NewVoiceAnalysis(simulationID uuid.UUID, agentID *uuid.UUID, audioURL string, result *VoiceAnalysisResult) *VoiceAnalysis {
	now := time.Now()
	va := &VoiceAnalysis{
		ID:           uuid.New(),
		SimulationID: simulationID,
		AgentID:      agentID,
		AudioURL:     audioURL,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if result == nil {
		return va
	}

	va.Language = result.Language
	va.Transcript = result.Transcript
	va.Segments = result.Segments
	va.Keywords = result.Keywords
	va.KeywordMatches = result.KeywordMatches
	va.SpeechRate = result.Metrics.SpeechRate
	va.AveragePauseDuration = result.Metrics.AveragePauseDuration
	va.TotalSpeakingTime = result.Metrics.TotalSpeakingTime
	va.Tone = datatypes.NewJSONType(result.Metrics.Tone)
	va.OverallVoiceScore = result.Metrics.OverallVoiceScore
	va.Insights = result.Metrics.Insights
	return va
}

// Result rebuilds the analysis result carried by the record
func (va *VoiceAnalysis) Result() *VoiceAnalysisResult {
	return &VoiceAnalysisResult{
		Transcript:     va.Transcript,
		Language:       va.Language,
		Segments:       va.Segments,
		Keywords:       va.Keywords,
		KeywordMatches: va.KeywordMatches,
		Metrics: VoiceMetrics{
			SpeechMetrics: SpeechMetrics{
				SpeechRate:           va.SpeechRate,
				AveragePauseDuration: va.AveragePauseDuration,
				TotalSpeakingTime:    va.TotalSpeakingTime,
			},
			Tone:              va.Tone.Data(),
			OverallVoiceScore: va.OverallVoiceScore,
			Insights:          va.Insights,
		},
	}
}
