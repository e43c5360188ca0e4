package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	maxBatchSize       = 100
	similarityTaskType = "SEMANTIC_SIMILARITY"
)

// Embedder produces text embeddings with a Gemini embedding model.
type Embedder struct {
	models     embedModels
	model      string
	maxRetries int
	logger     *zap.Logger
}

// NewEmbedder returns an embedder backed by client.
func NewEmbedder(client *genai.Client, model string, maxRetries int, logger *zap.Logger) (*Embedder, error) {
	if client == nil || client.Models == nil {
		return nil, errors.New("genai client is required")
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultEmbedModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Embedder{models: client.Models, model: model, maxRetries: maxRetries, logger: logger}, nil
}

// Embed returns the embedding of a single text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds texts in chunks accepted by the API. Results keep input order.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += maxBatchSize {
		end := min(start+maxBatchSize, len(texts))

		contents := make([]*genai.Content, 0, end-start)
		for _, text := range texts[start:end] {
			contents = append(contents, &genai.Content{
				Role:  genai.RoleUser,
				Parts: []*genai.Part{{Text: text}},
			})
		}

		var resp *genai.EmbedContentResponse
		err := withRetry(ctx, e.maxRetries, e.logger, func() error {
			var err error
			resp, err = e.models.EmbedContent(ctx, e.model, contents, &genai.EmbedContentConfig{TaskType: similarityTaskType})
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("embed content: %w", err)
		}

		if resp == nil || len(resp.Embeddings) != len(contents) {
			return nil, fmt.Errorf("gemini api returned %d embeddings for %d texts", embeddingsLen(resp), len(contents))
		}

		for _, emb := range resp.Embeddings {
			if emb == nil || len(emb.Values) == 0 {
				return nil, errors.New("gemini api returned an empty embedding")
			}
			out = append(out, emb.Values)
		}

		e.logger.Debug("gemini embeddings received", zap.Int("count", len(contents)))
	}

	return out, nil
}

// Model returns the embedding model name.
func (e *Embedder) Model() string { return e.model }

func embeddingsLen(resp *genai.EmbedContentResponse) int {
	if resp == nil {
		return 0
	}
	return len(resp.Embeddings)
}
