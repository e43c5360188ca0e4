package skills

import (
	"context"
	"strings"
	"unicode"

	"github.com/spigell/jobfit/internal/ai"
	"github.com/spigell/jobfit/internal/lexicon"
	"github.com/spigell/jobfit/internal/resume"
	"go.uber.org/zap"
)

const (
	// DefaultThreshold is the minimal confidence for tagger-sourced skills.
	DefaultThreshold = 0.7

	lexicalConfidence = 1.0
	maxChunkTokens    = 3
)

var candidateLabels = map[string]struct{}{
	ai.LabelProduct:   {},
	ai.LabelOrg:       {},
	ai.LabelWorkOfArt: {},
}

// Extractor finds skills in free text by lexicon matching and, when a tagger is
// configured, by tagged entities and short noun chunks.
type Extractor struct {
	lexicon   *lexicon.Lexicon
	tagger    ai.Tagger
	threshold float64
	logger    *zap.Logger
}

// New returns an extractor. A nil tagger disables the tagger path; a non-positive
// threshold selects DefaultThreshold.
func New(lex *lexicon.Lexicon, tagger ai.Tagger, threshold float64, logger *zap.Logger) *Extractor {
	if lex == nil {
		lex = lexicon.Default()
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Extractor{
		lexicon:   lex,
		tagger:    tagger,
		threshold: threshold,
		logger:    logger,
	}
}

// Extract returns the skills mentioned in text. Tagger failures are logged and the
// lexical result is returned.
func (e *Extractor) Extract(ctx context.Context, text string) []resume.Skill {
	var entities []ai.Entity

	if e.tagger != nil {
		tagged, err := e.tagger.Tag(ctx, text)
		if err != nil {
			e.logger.Warn("tagger failed, falling back to lexicon", zap.Error(err))
		} else {
			entities = tagged
		}
	}

	return e.FromEntities(text, entities)
}

// FromEntities merges lexicon matches with tagger entities already computed for text.
// Names are unique by lower case. Lexicon matches always win over tagged candidates,
// among candidates the higher confidence wins.
func (e *Extractor) FromEntities(text string, entities []ai.Entity) []resume.Skill {
	found := e.Lexical(text)

	index := make(map[string]int, len(found))
	for i, s := range found {
		index[strings.ToLower(s.Name)] = i
	}

	for _, entity := range entities {
		if !e.isCandidate(entity) {
			continue
		}

		name := Title(strings.TrimSpace(entity.Text))
		key := strings.ToLower(name)
		confidence := entity.Confidence

		if i, ok := index[key]; ok {
			existing := found[i]
			if existing.Confidence != nil && *existing.Confidence >= confidence {
				continue
			}
			found[i].Confidence = &confidence
			continue
		}

		index[key] = len(found)
		found = append(found, resume.Skill{
			Name:       name,
			Category:   e.lexicon.CategoryOf(key),
			Confidence: &confidence,
		})
	}

	return found
}

// Lexical returns lexicon matches in declaration order with confidence 1.0.
func (e *Extractor) Lexical(text string) []resume.Skill {
	var found []resume.Skill

	for _, term := range e.lexicon.Terms() {
		if !term.Matches(text) {
			continue
		}

		confidence := lexicalConfidence
		found = append(found, resume.Skill{
			Name:       Title(term.Keyword),
			Category:   term.Category,
			Confidence: &confidence,
		})
	}

	return found
}

func (e *Extractor) isCandidate(entity ai.Entity) bool {
	text := strings.TrimSpace(entity.Text)
	if text == "" || entity.Confidence < e.threshold || entity.Confidence > 1 {
		return false
	}

	if entity.Label == ai.LabelNounChunk {
		return len(strings.Fields(text)) <= maxChunkTokens
	}

	_, ok := candidateLabels[entity.Label]
	return ok
}

// Title upper-cases the first letter of every letter run and lower-cases the rest,
// so "ci/cd" becomes "Ci/Cd" and "scikit-learn" becomes "Scikit-Learn".
func Title(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		b.WriteRune(r)
		prevLetter = false
	}

	return b.String()
}
