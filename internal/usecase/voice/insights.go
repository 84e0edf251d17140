package voice

import (
	"github.com/johnquangdev/agent-trainer/internal/domain/entities"
)

// GenerateInsights evaluates every insight rule in order and returns the triggered messages
func (r Rules) GenerateInsights(speech entities.SpeechMetrics, tone entities.ToneScores) []string {
	insights := []string{}
	for _, rule := range r.Insights {
		value, ok := metricValue(rule.Metric, speech, tone)
		if !ok {
			continue
		}
		if rule.matches(value) {
			insights = append(insights, rule.Message)
		}
	}
	return insights
}

func (ir InsightRule) matches(v float64) bool {
	switch ir.Op {
	case OpLessThan:
		return v < ir.Value
	case OpGreaterThan:
		return v > ir.Value
	case OpAtLeast:
		return v >= ir.Value
	case OpAtMost:
		return v <= ir.Value
	case OpBetween:
		return v >= ir.Value && v <= ir.Upper
	}
	return false
}

func metricValue(metric string, speech entities.SpeechMetrics, tone entities.ToneScores) (float64, bool) {
	switch metric {
	case MetricSpeechRate:
		return float64(speech.SpeechRate), true
	case MetricConfidence:
		return float64(tone.Confidence), true
	case MetricEmpathy:
		return float64(tone.Empathy), true
	case MetricProfessionalism:
		return float64(tone.Professionalism), true
	case MetricClarity:
		return float64(tone.Clarity), true
	case MetricEnthusiasm:
		return float64(tone.Enthusiasm), true
	}
	return 0, false
}
