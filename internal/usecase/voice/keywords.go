package voice

import (
	"sort"
	"strings"
	"unicode"

	"github.com/johnquangdev/agent-trainer/internal/domain/entities"
)

// KeywordDetection is the outcome of scanning one transcript
type KeywordDetection struct {
	Keywords []string
	Matches  []entities.KeywordMatch
	Stats    entities.KeywordStats
}

type compiledTerm struct {
	word     string
	tokens   []string
	category entities.KeywordCategory
}

// KeywordDetector finds vocabulary terms in transcripts. It is immutable and safe for concurrent use.
type KeywordDetector struct {
	terms []compiledTerm
}

// NewKeywordDetector compiles the vocabularies. Terms keep vocabulary order, then term order.
func NewKeywordDetector(vocabularies []Vocabulary) *KeywordDetector {
	d := &KeywordDetector{}
	for _, v := range vocabularies {
		for _, term := range v.Terms {
			word := normalizeTerm(term)
			if word == "" {
				continue
			}
			d.terms = append(d.terms, compiledTerm{
				word:     word,
				tokens:   strings.Fields(word),
				category: v.Category,
			})
		}
	}
	return d
}

// Detect counts whole-word, case-insensitive occurrences of every vocabulary term
func (d *KeywordDetector) Detect(transcript string) KeywordDetection {
	result := KeywordDetection{
		Keywords: []string{},
		Matches:  []entities.KeywordMatch{},
		Stats: entities.KeywordStats{
			ByCategory: make(map[entities.KeywordCategory]int),
		},
	}

	tokens := tokenize(transcript)
	if len(tokens) == 0 {
		return result
	}

	for _, term := range d.terms {
		count := countSequence(tokens, term.tokens)
		if count == 0 {
			continue
		}
		result.Keywords = append(result.Keywords, term.word)
		result.Matches = append(result.Matches, entities.KeywordMatch{
			Word:     term.word,
			Category: term.category,
			Count:    count,
		})
		result.Stats.Total += count
		result.Stats.ByCategory[term.category] += count
	}
	return result
}

// TopKeywords returns the n matches with the highest count. Equal counts keep their order in matches.
func TopKeywords(matches []entities.KeywordMatch, n int) []entities.KeywordMatch {
	if n <= 0 || len(matches) == 0 {
		return []entities.KeywordMatch{}
	}

	sorted := make([]entities.KeywordMatch, len(matches))
	copy(sorted, matches)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Count > sorted[j].Count
	})

	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

// tokenize lowercases s and splits it on anything that is not a letter or digit
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && !unicode.Is(unicode.Mn, r)
	})
}

// normalizeTerm is the canonical form of a vocabulary term, shared by the detector and rule validation
func normalizeTerm(term string) string {
	return strings.Join(tokenize(term), " ")
}

func countSequence(tokens, seq []string) int {
	count := 0
	for i := 0; i+len(seq) <= len(tokens); i++ {
		matched := true
		for j, t := range seq {
			if tokens[i+j] != t {
				matched = false
				break
			}
		}
		if matched {
			count++
		}
	}
	return count
}
