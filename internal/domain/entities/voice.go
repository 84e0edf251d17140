package entities

// TranscriptSegment is a contiguous span of transcribed speech
type TranscriptSegment struct {
	Start float64 `json:"start"` // seconds
	End   float64 `json:"end"`   // seconds
	Text  string  `json:"text"`
}

// Duration returns the length of the segment in seconds
func (s TranscriptSegment) Duration() float64 {
	return s.End - s.Start
}

// Validate rejects segments that end before they start
func (s TranscriptSegment) Validate() error {
	if s.End < s.Start {
		return ErrInvalidSegment
	}
	return nil
}

// SpeechMetrics holds the timing metrics derived from a transcript and its segments
type SpeechMetrics struct {
	SpeechRate           int     `json:"speech_rate"`            // words per minute
	AveragePauseDuration float64 `json:"average_pause_duration"` // seconds
	TotalSpeakingTime    float64 `json:"total_speaking_time"`    // seconds
}

// ToneScores holds the five subjective tone dimensions, each in [0,100]
type ToneScores struct {
	Confidence      int `json:"confidence"`
	Empathy         int `json:"empathy"`
	Professionalism int `json:"professionalism"`
	Clarity         int `json:"clarity"`
	Enthusiasm      int `json:"enthusiasm"`
}

// NeutralToneScore is substituted for every dimension when tone scoring is unavailable
const NeutralToneScore = 50

// NeutralToneScores returns the fallback tone scores
func NeutralToneScores() ToneScores {
	return ToneScores{
		Confidence:      NeutralToneScore,
		Empathy:         NeutralToneScore,
		Professionalism: NeutralToneScore,
		Clarity:         NeutralToneScore,
		Enthusiasm:      NeutralToneScore,
	}
}

// KeywordCategory identifies the vocabulary a keyword belongs to
type KeywordCategory string

const (
	KeywordCategoryBanking   KeywordCategory = "banking"
	KeywordCategoryEmotional KeywordCategory = "emotional"
	KeywordCategoryProtocol  KeywordCategory = "protocol"
)

// IsValid checks if the keyword category is one of the known vocabularies
func (c KeywordCategory) IsValid() bool {
	switch c {
	case KeywordCategoryBanking, KeywordCategoryEmotional, KeywordCategoryProtocol:
		return true
	}
	return false
}

// KeywordMatch is a vocabulary term found in a transcript
type KeywordMatch struct {
	Word     string          `json:"word"`
	Category KeywordCategory `json:"category"`
	Count    int             `json:"count"`
}

// KeywordStats aggregates keyword occurrences (sum of counts, not distinct words)
type KeywordStats struct {
	Total      int                     `json:"total"`
	ByCategory map[KeywordCategory]int `json:"by_category"`
}

// VoiceMetrics combines objective and subjective metrics with the fused score
type VoiceMetrics struct {
	SpeechMetrics
	Tone              ToneScores `json:"tone"`
	OverallVoiceScore int        `json:"overall_voice_score"`
	Insights          []string   `json:"insights"`
}

// VoiceAnalysisResult is the outcome of a single voice analysis
type VoiceAnalysisResult struct {
	Transcript     string              `json:"transcript"`
	Language       string              `json:"language,omitempty"`
	Segments       []TranscriptSegment `json:"segments"`
	Keywords       []string            `json:"keywords"`
	KeywordMatches []KeywordMatch      `json:"keyword_matches"`
	Metrics        VoiceMetrics        `json:"metrics"`
}
