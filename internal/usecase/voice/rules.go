package voice

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/johnquangdev/agent-trainer/internal/domain/entities"
	usecaseErrors "github.com/johnquangdev/agent-trainer/internal/usecase/errors"
)

// Rules is the tunable data behind keyword detection, speech metrics, scoring and insights.
// Defaults target Spanish-speaking call centers; a YAML file can override any section.
type Rules struct {
	Vocabularies   []Vocabulary  `yaml:"vocabularies"`
	PauseThreshold float64       `yaml:"pause_threshold"` // seconds; shorter gaps are not pauses
	RateBand       RateBand      `yaml:"rate_band"`
	ToneWeights    ToneWeights   `yaml:"tone_weights"`
	ToneShare      float64       `yaml:"tone_share"` // weight of the tone composite in the overall score
	Insights       []InsightRule `yaml:"insights"`
}

// Vocabulary is one keyword category and its terms. Terms may span several words.
type Vocabulary struct {
	Category entities.KeywordCategory `yaml:"category"`
	Terms    []string                 `yaml:"terms"`
}

// RateBand describes the speech-rate adequacy curve in words per minute
type RateBand struct {
	AcceptableMin float64 `yaml:"acceptable_min"`
	IdealMin      float64 `yaml:"ideal_min"`
	IdealMax      float64 `yaml:"ideal_max"`
	AcceptableMax float64 `yaml:"acceptable_max"`
	EdgeScore     float64 `yaml:"edge_score"` // score at the acceptable limits
}

// ToneWeights are the tone composite weights; they sum to 1
type ToneWeights struct {
	Confidence      float64 `yaml:"confidence"`
	Empathy         float64 `yaml:"empathy"`
	Professionalism float64 `yaml:"professionalism"`
	Clarity         float64 `yaml:"clarity"`
	Enthusiasm      float64 `yaml:"enthusiasm"`
}

// Metric names usable in insight rules
const (
	MetricSpeechRate      = "speech_rate"
	MetricConfidence      = "confidence"
	MetricEmpathy         = "empathy"
	MetricProfessionalism = "professionalism"
	MetricClarity         = "clarity"
	MetricEnthusiasm      = "enthusiasm"
)

// Comparison operators usable in insight rules
const (
	OpLessThan    = "lt"
	OpGreaterThan = "gt"
	OpAtLeast     = "gte"
	OpAtMost      = "lte"
	OpBetween     = "between" // inclusive [Value, Upper]
)

// InsightRule appends Message when Metric compares true against Value
type InsightRule struct {
	Metric  string  `yaml:"metric"`
	Op      string  `yaml:"op"`
	Value   float64 `yaml:"value"`
	Upper   float64 `yaml:"upper,omitempty"`
	Message string  `yaml:"message"`
}

// DefaultRules returns the built-in rules
func DefaultRules() Rules {
	return Rules{
		Vocabularies: []Vocabulary{
			{
				Category: entities.KeywordCategoryBanking,
				Terms: []string{
					"cuenta", "tarjeta", "crédito", "débito", "préstamo", "transferencia",
					"saldo", "interés", "hipoteca", "depósito", "retiro", "cajero",
					"comisión", "banca en línea", "estado de cuenta", "tasa",
				},
			},
			{
				Category: entities.KeywordCategoryEmotional,
				Terms: []string{
					"entiendo", "comprendo", "lamento", "lo siento", "disculpe",
					"tranquilo", "tranquila", "no se preocupe", "con gusto", "claro",
					"por supuesto", "me imagino",
				},
			},
			{
				Category: entities.KeywordCategoryProtocol,
				Terms: []string{
					"buenos días", "buenas tardes", "buenas noches", "bienvenido",
					"mi nombre es", "verificar", "confirmar", "identificación",
					"número de cliente", "gracias por", "algo más", "que tenga",
				},
			},
		},
		PauseThreshold: 0.1,
		RateBand: RateBand{
			AcceptableMin: 120,
			IdealMin:      140,
			IdealMax:      160,
			AcceptableMax: 180,
			EdgeScore:     80,
		},
		ToneWeights: ToneWeights{
			Confidence:      0.25,
			Empathy:         0.25,
			Professionalism: 0.20,
			Clarity:         0.20,
			Enthusiasm:      0.10,
		},
		ToneShare: 0.6,
		Insights: []InsightRule{
			{Metric: MetricSpeechRate, Op: OpLessThan, Value: 120,
				Message: "Hablas demasiado lento. Intenta aumentar el ritmo para mantener la atención del cliente."},
			{Metric: MetricSpeechRate, Op: OpGreaterThan, Value: 180,
				Message: "Hablas demasiado rápido. Reduce el ritmo para que el cliente pueda seguirte."},
			{Metric: MetricSpeechRate, Op: OpBetween, Value: 140, Upper: 160,
				Message: "Excelente ritmo de conversación, ideal para la atención al cliente."},
			{Metric: MetricConfidence, Op: OpLessThan, Value: 60,
				Message: "Transmite más seguridad: evita dudas y usa afirmaciones claras."},
			{Metric: MetricEmpathy, Op: OpLessThan, Value: 60,
				Message: "Muestra más empatía reconociendo la situación y los sentimientos del cliente."},
			{Metric: MetricClarity, Op: OpLessThan, Value: 60,
				Message: "Mejora la claridad: usa frases cortas y evita tecnicismos innecesarios."},
			{Metric: MetricEnthusiasm, Op: OpLessThan, Value: 50,
				Message: "Aporta más energía y entusiasmo a la conversación."},
			{Metric: MetricConfidence, Op: OpAtLeast, Value: 80,
				Message: "Gran nivel de confianza en tu comunicación."},
			{Metric: MetricEmpathy, Op: OpAtLeast, Value: 80,
				Message: "Excelente empatía con el cliente."},
		},
	}
}

// LoadRules returns the default rules overlaid with the YAML file at path.
// Sections present in the file replace the defaults; an empty path keeps the defaults.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()
	if path == "" {
		return rules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("failed to read voice rules file: %w", err)
	}
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return Rules{}, fmt.Errorf("failed to parse voice rules file: %w", err)
	}
	if err := rules.Validate(); err != nil {
		return Rules{}, err
	}
	return rules, nil
}

// Validate checks that the rules are internally consistent
func (r Rules) Validate() error {
	seen := make(map[string]entities.KeywordCategory)
	for _, v := range r.Vocabularies {
		if !v.Category.IsValid() {
			return fmt.Errorf("%w: %w %q", usecaseErrors.ErrInvalidRules, entities.ErrUnknownKeywordCategory, v.Category)
		}
		for _, term := range v.Terms {
			key := normalizeTerm(term)
			if key == "" {
				return fmt.Errorf("%w: empty term in %s vocabulary", usecaseErrors.ErrInvalidRules, v.Category)
			}
			if other, ok := seen[key]; ok && other != v.Category {
				return fmt.Errorf("%w: %w: %q is in both %s and %s",
					usecaseErrors.ErrInvalidRules, entities.ErrOverlappingVocabulary, term, other, v.Category)
			}
			seen[key] = v.Category
		}
	}

	if r.PauseThreshold < 0 {
		return fmt.Errorf("%w: pause_threshold must not be negative", usecaseErrors.ErrInvalidRules)
	}

	b := r.RateBand
	if !(b.AcceptableMin < b.IdealMin && b.IdealMin <= b.IdealMax && b.IdealMax < b.AcceptableMax) {
		return fmt.Errorf("%w: rate_band must satisfy acceptable_min < ideal_min <= ideal_max < acceptable_max",
			usecaseErrors.ErrInvalidRules)
	}
	if b.EdgeScore < 0 || b.EdgeScore > 100 {
		return fmt.Errorf("%w: rate_band.edge_score must be within [0,100]", usecaseErrors.ErrInvalidRules)
	}

	w := r.ToneWeights
	for _, weight := range []float64{w.Confidence, w.Empathy, w.Professionalism, w.Clarity, w.Enthusiasm} {
		if weight < 0 {
			return fmt.Errorf("%w: tone weights must not be negative", usecaseErrors.ErrInvalidRules)
		}
	}
	if sum := w.Confidence + w.Empathy + w.Professionalism + w.Clarity + w.Enthusiasm; math.Abs(sum-1) > 1e-6 {
		return fmt.Errorf("%w: tone weights must sum to 1, got %.4f", usecaseErrors.ErrInvalidRules, sum)
	}
	if r.ToneShare < 0 || r.ToneShare > 1 {
		return fmt.Errorf("%w: tone_share must be within [0,1]", usecaseErrors.ErrInvalidRules)
	}

	for i, rule := range r.Insights {
		if err := rule.validate(); err != nil {
			return fmt.Errorf("%w: insight %d: %v", usecaseErrors.ErrInvalidRules, i, err)
		}
	}
	return nil
}

func (ir InsightRule) validate() error {
	switch ir.Metric {
	case MetricSpeechRate, MetricConfidence, MetricEmpathy, MetricProfessionalism, MetricClarity, MetricEnthusiasm:
	default:
		return fmt.Errorf("unknown metric %q", ir.Metric)
	}
	switch ir.Op {
	case OpLessThan, OpGreaterThan, OpAtLeast, OpAtMost:
	case OpBetween:
		if ir.Upper < ir.Value {
			return fmt.Errorf("upper bound %.2f below lower bound %.2f", ir.Upper, ir.Value)
		}
	default:
		return fmt.Errorf("unknown operator %q", ir.Op)
	}
	if ir.Message == "" {
		return fmt.Errorf("message is required")
	}
	return nil
}
