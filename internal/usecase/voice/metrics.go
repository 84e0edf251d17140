package voice

import (
	"math"
	"strings"

	"github.com/johnquangdev/agent-trainer/internal/domain/entities"
)

// gapEpsilon absorbs float noise when comparing a gap to the pause threshold
const gapEpsilon = 1e-9

// CalculateSpeechMetrics derives speech rate, average pause and speaking time from a transcript and
// its ordered segments. Without segments every metric is zero.
func CalculateSpeechMetrics(transcript string, segments []entities.TranscriptSegment, pauseThreshold float64) entities.SpeechMetrics {
	if len(segments) == 0 {
		return entities.SpeechMetrics{}
	}

	wordCount := len(strings.Fields(transcript))

	var speaking float64
	for _, seg := range segments {
		speaking += seg.Duration()
	}

	var pauseSum float64
	pauses := 0
	for i := 1; i < len(segments); i++ {
		gap := segments[i].Start - segments[i-1].End
		if gap > pauseThreshold+gapEpsilon {
			pauseSum += gap
			pauses++
		}
	}

	metrics := entities.SpeechMetrics{
		TotalSpeakingTime: round2(speaking),
	}
	if speaking > 0 {
		metrics.SpeechRate = int(math.Round(float64(wordCount) / speaking * 60))
	}
	if pauses > 0 {
		metrics.AveragePauseDuration = round2(pauseSum / float64(pauses))
	}
	return metrics
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
