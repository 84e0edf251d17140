package voice

import (
	"context"
	"encoding/json"

	"github.com/johnquangdev/agent-trainer/pkg/ai"
)

// Transcriber turns a recording into timed text
type Transcriber interface {
	Name() string
	Transcribe(ctx context.Context, audioURL, language string) (*ai.Transcription, error)
}

// RubricScorer grades text against a fixed rubric and returns the raw structured output
type RubricScorer interface {
	ScoreRubric(ctx context.Context, instruction, text string, schema json.RawMessage) (string, error)
}

var (
	_ Transcriber  = (*ai.AssemblyAIClient)(nil)
	_ Transcriber  = (*ai.WhisperClient)(nil)
	_ RubricScorer = (*ai.GroqClient)(nil)
)
