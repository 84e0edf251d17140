package voice

import (
	"math"

	"github.com/johnquangdev/agent-trainer/internal/domain/entities"
)

// SpeechRateScore rates words-per-minute against the band on a 0-100 scale.
// The ideal band scores 100, the acceptable ramps are linear down to EdgeScore, and beyond
// them every wpm costs one point, floored at 0.
func (r Rules) SpeechRateScore(rate float64) float64 {
	b := r.RateBand
	switch {
	case rate >= b.IdealMin && rate <= b.IdealMax:
		return 100
	case rate >= b.AcceptableMin && rate < b.IdealMin:
		return b.EdgeScore + (rate-b.AcceptableMin)*(100-b.EdgeScore)/(b.IdealMin-b.AcceptableMin)
	case rate > b.IdealMax && rate <= b.AcceptableMax:
		return 100 - (rate-b.IdealMax)*(100-b.EdgeScore)/(b.AcceptableMax-b.IdealMax)
	case rate < b.AcceptableMin:
		return math.Max(0, b.EdgeScore-(b.AcceptableMin-rate))
	default:
		return math.Max(0, b.EdgeScore-(rate-b.AcceptableMax))
	}
}

// ToneComposite is the weighted sum of the five tone dimensions
func (r Rules) ToneComposite(t entities.ToneScores) float64 {
	w := r.ToneWeights
	return float64(t.Confidence)*w.Confidence +
		float64(t.Empathy)*w.Empathy +
		float64(t.Professionalism)*w.Professionalism +
		float64(t.Clarity)*w.Clarity +
		float64(t.Enthusiasm)*w.Enthusiasm
}

// OverallVoiceScore fuses tone and pacing into a single integer in [0,100]
func (r Rules) OverallVoiceScore(speech entities.SpeechMetrics, tone entities.ToneScores) int {
	score := r.ToneComposite(tone)*r.ToneShare + r.SpeechRateScore(float64(speech.SpeechRate))*(1-r.ToneShare)
	overall := int(math.Round(score))
	if overall < 0 {
		return 0
	}
	if overall > 100 {
		return 100
	}
	return overall
}
