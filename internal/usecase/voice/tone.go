package voice

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/johnquangdev/agent-trainer/internal/domain/entities"
)

const toneInstruction = `Eres un evaluador experto en atención al cliente de un centro de llamadas bancario.
Analiza la transcripción de la intervención del agente y califica cada dimensión de 0 a 100:
- confidence: seguridad y firmeza al comunicar.
- empathy: reconocimiento de la situación y las emociones del cliente.
- professionalism: cortesía, lenguaje adecuado y apego al protocolo.
- clarity: facilidad para entender el mensaje.
- enthusiasm: energía y disposición positiva.
Responde únicamente con un objeto JSON con esas cinco claves numéricas.`

var toneSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "confidence": {"type": "number", "minimum": 0, "maximum": 100},
    "empathy": {"type": "number", "minimum": 0, "maximum": 100},
    "professionalism": {"type": "number", "minimum": 0, "maximum": 100},
    "clarity": {"type": "number", "minimum": 0, "maximum": 100},
    "enthusiasm": {"type": "number", "minimum": 0, "maximum": 100}
  },
  "required": ["confidence", "empathy", "professionalism", "clarity", "enthusiasm"],
  "additionalProperties": false
}`)

var errScorerNotConfigured = errors.New("tone scorer not configured")

// ToneScorer grades a transcript on the five tone dimensions with one rubric call
type ToneScorer struct {
	scorer RubricScorer
}

// NewToneScorer creates a tone scorer. A nil scorer makes every call fail.
func NewToneScorer(scorer RubricScorer) *ToneScorer {
	return &ToneScorer{scorer: scorer}
}

// Score returns the parsed tone scores or the reason they are unavailable
func (t *ToneScorer) Score(ctx context.Context, transcript string) (entities.ToneScores, error) {
	if t == nil || t.scorer == nil {
		return entities.ToneScores{}, errScorerNotConfigured
	}
	content, err := t.scorer.ScoreRubric(ctx, toneInstruction, transcript, toneSchema)
	if err != nil {
		return entities.ToneScores{}, err
	}
	return ParseToneScores(content)
}
