package ai

// Transcription is the common result returned by every speech-to-text client
type Transcription struct {
	Text     string
	Language string
	Duration float64   // audio duration in seconds
	Segments []Segment // nil when the provider returned no timing data
}

// Segment is a timed span of speech in seconds
type Segment struct {
	Start float64
	End   float64
	Text  string
}
