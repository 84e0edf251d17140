package voice

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/johnquangdev/agent-trainer/internal/domain/entities"
)

// toneResponse mirrors toneSchema. Pointers distinguish a missing field from a zero score.
type toneResponse struct {
	Confidence      *float64 `json:"confidence" validate:"required,min=0,max=100"`
	Empathy         *float64 `json:"empathy" validate:"required,min=0,max=100"`
	Professionalism *float64 `json:"professionalism" validate:"required,min=0,max=100"`
	Clarity         *float64 `json:"clarity" validate:"required,min=0,max=100"`
	Enthusiasm      *float64 `json:"enthusiasm" validate:"required,min=0,max=100"`
}

var toneValidator = validator.New()

var errMalformedTone = errors.New("malformed tone response")

// ParseToneScores decodes and validates the scorer's JSON output. Unknown fields, missing
// fields and out-of-range values are errors; each score is rounded to the nearest integer.
func ParseToneScores(content string) (entities.ToneScores, error) {
	content = extractJSON(content)
	if content == "" {
		return entities.ToneScores{}, fmt.Errorf("%w: empty content", errMalformedTone)
	}

	dec := json.NewDecoder(strings.NewReader(content))
	dec.DisallowUnknownFields()

	var resp toneResponse
	if err := dec.Decode(&resp); err != nil {
		return entities.ToneScores{}, fmt.Errorf("%w: %w", errMalformedTone, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return entities.ToneScores{}, fmt.Errorf("%w: unexpected trailing data", errMalformedTone)
	}
	if err := toneValidator.Struct(resp); err != nil {
		return entities.ToneScores{}, fmt.Errorf("%w: %w", errMalformedTone, err)
	}

	return entities.ToneScores{
		Confidence:      roundScore(*resp.Confidence),
		Empathy:         roundScore(*resp.Empathy),
		Professionalism: roundScore(*resp.Professionalism),
		Clarity:         roundScore(*resp.Clarity),
		Enthusiasm:      roundScore(*resp.Enthusiasm),
	}, nil
}

func roundScore(v float64) int {
	return int(math.Round(v))
}

// extractJSON strips markdown code fences the model may wrap around its JSON
func extractJSON(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	}

	return strings.TrimSpace(content)
}
