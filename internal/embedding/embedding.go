package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// Embedder maps text to a dense vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// BatchEmbedder embeds several texts in one call. Results are in input order.
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// ErrDimensionMismatch is returned when two vectors have different lengths.
var ErrDimensionMismatch = errors.New("embedding dimensions do not match")

// Similarity is the cosine similarity of a and b clamped to [0, 1]. Zero vectors and
// vectors of different length have similarity 0.
func Similarity(a, b []float32) float64 {
	cos, err := Cosine(a, b)
	if err != nil {
		return 0
	}
	return math.Max(0, math.Min(1, cos))
}

// Cosine returns the raw cosine similarity of a and b.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}

	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}

	if na == 0 || nb == 0 {
		return 0, nil
	}

	return dot / math.Sqrt(na*nb), nil
}

// EmbedAll embeds texts with a single batch call when e supports it, one by one otherwise.
func EmbedAll(ctx context.Context, e Embedder, texts []string) ([][]float32, error) {
	if batch, ok := e.(BatchEmbedder); ok {
		vectors, err := batch.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, err
		}
		if len(vectors) != len(texts) {
			return nil, fmt.Errorf("batch embedder returned %d vectors for %d texts", len(vectors), len(texts))
		}
		return vectors, nil
	}

	vectors := make([][]float32, 0, len(texts))
	for _, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, v)
	}
	return vectors, nil
}
