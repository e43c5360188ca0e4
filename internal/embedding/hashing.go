package embedding

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// DefaultDimensions is the vector size of the hashing embedder.
const DefaultDimensions = 384

// Hashing is a deterministic offline embedder: lower-cased word tokens and their
// bigrams are hashed into a fixed number of buckets and the vector is L2-normalized.
type Hashing struct {
	dims int
}

// NewHashing returns a hashing embedder with dims buckets.
func NewHashing(dims int) (*Hashing, error) {
	if dims <= 0 {
		return nil, fmt.Errorf("embedding dimensions must be positive, got %d", dims)
	}
	return &Hashing{dims: dims}, nil
}

// Dimensions returns the vector size.
func (h *Hashing) Dimensions() int { return h.dims }

// Embed returns the normalized bag-of-words vector of text.
func (h *Hashing) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vec := make([]float64, h.dims)
	tokens := tokenize(text)

	for i, tok := range tokens {
		h.add(vec, tok, 1)
		if i > 0 {
			h.add(vec, tokens[i-1]+" "+tok, 0.5)
		}
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	out := make([]float32, h.dims)
	if norm == 0 {
		return out, nil
	}
	for i, v := range vec {
		out[i] = float32(v / norm)
	}
	return out, nil
}

// EmbedBatch embeds texts in order.
func (h *Hashing) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		v, err := h.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (h *Hashing) add(vec []float64, token string, weight float64) {
	hasher := fnv.New64a()
	_, _ = hasher.Write([]byte(token))
	sum := hasher.Sum64()

	// the top bit decides the sign so collisions tend to cancel out
	if sum>>63 == 1 {
		weight = -weight
	}
	vec[sum%uint64(h.dims)] += weight
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
	})
}
