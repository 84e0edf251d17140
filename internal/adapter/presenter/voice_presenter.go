package presenter

import (
	"github.com/johnquangdev/agent-trainer/internal/adapter/dto/voice"
	"github.com/johnquangdev/agent-trainer/internal/domain/entities"
)

// ToVoiceAnalysisResponse converts a VoiceAnalysis entity to VoiceAnalysisResponse DTO
func ToVoiceAnalysisResponse(va *entities.VoiceAnalysis) *voice.VoiceAnalysisResponse {
	if va == nil {
		return nil
	}

	tone := va.Tone.Data()
	response := &voice.VoiceAnalysisResponse{
		ID:             va.ID.String(),
		SimulationID:   va.SimulationID.String(),
		AudioURL:       va.AudioURL,
		Provider:       va.Provider,
		Language:       va.Language,
		Transcript:     va.Transcript,
		Segments:       make([]voice.SegmentResponse, len(va.Segments)),
		Keywords:       va.Keywords,
		KeywordMatches: ToKeywordMatchResponses(va.KeywordMatches),
		Metrics: voice.MetricsResponse{
			SpeechRate:           va.SpeechRate,
			AveragePauseDuration: va.AveragePauseDuration,
			TotalSpeakingTime:    va.TotalSpeakingTime,
			Tone: voice.ToneResponse{
				Confidence:      tone.Confidence,
				Empathy:         tone.Empathy,
				Professionalism: tone.Professionalism,
				Clarity:         tone.Clarity,
				Enthusiasm:      tone.Enthusiasm,
			},
			OverallVoiceScore: va.OverallVoiceScore,
			Insights:          va.Insights,
		},
		ProcessingTimeMs: va.ProcessingTimeMs,
		CreatedAt:        va.CreatedAt,
	}

	for i, s := range va.Segments {
		response.Segments[i] = voice.SegmentResponse{Start: s.Start, End: s.End, Text: s.Text}
	}

	// Clients iterate these; never send null
	if response.Keywords == nil {
		response.Keywords = []string{}
	}
	if response.Metrics.Insights == nil {
		response.Metrics.Insights = []string{}
	}

	if va.AgentID != nil {
		agentID := va.AgentID.String()
		response.AgentID = &agentID
	}

	return response
}

// ToKeywordMatchResponses converts keyword matches to their DTOs
func ToKeywordMatchResponses(matches []entities.KeywordMatch) []voice.KeywordMatchResponse {
	out := make([]voice.KeywordMatchResponse, len(matches))
	for i, m := range matches {
		out[i] = voice.KeywordMatchResponse{
			Word:     m.Word,
			Category: string(m.Category),
			Count:    m.Count,
		}
	}
	return out
}

// ToVoiceAnalysisListResponse converts the analyses of a simulation to VoiceAnalysisListResponse
func ToVoiceAnalysisListResponse(simulationID string, analyses []*entities.VoiceAnalysis) *voice.VoiceAnalysisListResponse {
	summaries := make([]*voice.VoiceAnalysisSummaryResponse, 0, len(analyses))
	for _, va := range analyses {
		if va == nil {
			continue
		}
		summaries = append(summaries, &voice.VoiceAnalysisSummaryResponse{
			ID:                va.ID.String(),
			SimulationID:      va.SimulationID.String(),
			Provider:          va.Provider,
			SpeechRate:        va.SpeechRate,
			OverallVoiceScore: va.OverallVoiceScore,
			CreatedAt:         va.CreatedAt,
		})
	}

	return &voice.VoiceAnalysisListResponse{
		SimulationID: simulationID,
		Analyses:     summaries,
		Total:        len(summaries),
	}
}
