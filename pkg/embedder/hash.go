// Package embedder provides text embedding providers: a deterministic
// offline variant for tests and demos, and an OpenAI-compatible variant for
// real backends.
package embedder

import (
	"context"
	"math"
	"strings"
	"unicode"
)

// HashDimension is the fixed vector dimension of the offline provider,
// matching the common embedding model width so stores can swap providers
// without reconfiguration.
const HashDimension = 1536

// HashEmbedder derives a pseudo-embedding by hashing character codes into a
// fixed-dimension accumulator and L2-normalizing the result. The same text
// always produces the same vector, which makes exact-overlap retrieval work
// without any backend. Empty text yields the zero vector; stores score a
// zero vector as 0 rather than dividing by zero.
type HashEmbedder struct {
	dimension int
}

func NewHashEmbedder() *HashEmbedder {
	return &HashEmbedder{dimension: HashDimension}
}

func (e *HashEmbedder) Dimension() int { return e.dimension }

func (e *HashEmbedder) EmbedOne(_ context.Context, text string) ([]float32, error) {
	return e.hash(text), nil
}

func (e *HashEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, t := range texts {
		vectors[i] = e.hash(t)
	}
	return vectors, nil
}

func (e *HashEmbedder) hash(text string) []float32 {
	vector := make([]float32, e.dimension)

	// The position index restarts at every word boundary, so the same word
	// bumps the same accumulator slots wherever it appears in the text.
	// That is what lets a short query line up with a long stored chunk.
	j := 0
	for _, r := range strings.ToLower(text) {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			j = 0
			continue
		}
		idx := (int(r)*7 + j*13) % e.dimension
		vector[idx]++
		j++
	}

	var norm float64
	for _, v := range vector {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vector {
			vector[i] = float32(float64(vector[i]) / norm)
		}
	}

	return vector
}
