// internal/similarity/provider.go
package similarity

import (
	"context"
	"math"

	apperrors "match-engine/internal/common/errors"
)

// Provider yields the semantic similarity of two embedding vectors, in [0,1].
// Embedding generation itself happens elsewhere; only the scalar is consumed.
type Provider interface {
	Similarity(ctx context.Context, a, b []float64) (float64, error)
}

// LocalProvider computes cosine similarity over stored vectors without any
// network dependency.
type LocalProvider struct{}

func NewLocalProvider() *LocalProvider {
	return &LocalProvider{}
}

func (p *LocalProvider) Similarity(_ context.Context, a, b []float64) (float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, apperrors.NewMissingEmbeddingError("")
	}
	if len(a) != len(b) {
		return 0, apperrors.NewMissingEmbeddingError("dimension mismatch")
	}
	return Cosine(a, b), nil
}

// Cosine returns the cosine similarity of two equal-length vectors, clamped
// to [0,1]. Vectors with zero magnitude yield 0.
func Cosine(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}
