package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/spigell/jobfit/internal/ai"
	"github.com/spigell/jobfit/internal/utils"
	"go.uber.org/zap"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

//go:embed tagger_prompt.md
var promptTemplate string

const defaultMaxLogLength = 200

var knownLabels = map[string]struct{}{
	ai.LabelPerson:    {},
	ai.LabelProduct:   {},
	ai.LabelOrg:       {},
	ai.LabelWorkOfArt: {},
	ai.LabelNounChunk: {},
}

// Tagger asks a Gemini model to tag entities in resume text.
type Tagger struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

// NewTagger returns a tagger on top of generator.
func NewTagger(generator contentGenerator, maxLogLength int, logger *zap.Logger) *Tagger {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Tagger{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

// Tag returns the entities recognized in text.
func (t *Tagger) Tag(ctx context.Context, text string) ([]ai.Entity, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	prompt := buildPrompt(text)

	t.logger.Debug("gemini tag request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, t.maxLogLen)),
	)

	raw, err := t.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	t.logger.Debug("gemini tag response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, t.maxLogLen)),
	)

	return parseResponse(raw)
}

func buildPrompt(text string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Resume:\n{{RESUME_TEXT}}\n\nJSON Response:"
	}
	return strings.ReplaceAll(template, "{{RESUME_TEXT}}", text)
}

func parseResponse(raw string) ([]ai.Entity, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	items, _ := data["entities"].([]any)
	entities := make([]ai.Entity, 0, len(items))

	for _, item := range items {
		fields, ok := item.(map[string]any)
		if !ok {
			continue
		}

		text := coerceString(fields["text"])
		label := strings.ToUpper(coerceString(fields["label"]))
		if text == "" {
			continue
		}
		if _, ok := knownLabels[label]; !ok {
			continue
		}

		confidence := coerceFloat(fields["confidence"])
		if math.IsNaN(confidence) {
			confidence = 0
		}
		confidence = math.Max(0, math.Min(1, confidence))

		entities = append(entities, ai.Entity{Text: text, Label: label, Confidence: confidence})
	}

	return entities, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}
