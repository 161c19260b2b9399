// Package voiceprint implements speaker verification over voice embeddings.
//
// Embeddings are produced externally (an ECAPA-TDNN speaker model emitting
// 192-dimensional vectors); this package stores enrolled prints and compares
// a login embedding against them with cosine similarity.
package voiceprint

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// EmbeddingDim is the expected dimension of speaker embeddings.
const EmbeddingDim = 192

// DefaultThreshold is the minimum cosine similarity accepted as the same
// speaker.
const DefaultThreshold = 0.75

// ErrNotEnrolled is returned when a user has no stored voiceprint.
var ErrNotEnrolled = errors.New("voiceprint: user not enrolled")

// Store persists enrolled voiceprints keyed by user IC.
type Store interface {
	Save(ctx context.Context, ic string, embedding []float32) error
	// Load returns the enrolled embedding for ic, or [ErrNotEnrolled].
	Load(ctx context.Context, ic string) ([]float32, error)
}

// Result is the outcome of one verification.
type Result struct {
	Authenticated bool
	Similarity    float64
	// Margin is Similarity minus the threshold; negative when rejected.
	Margin float64
}

// Matcher verifies login embeddings against enrolled voiceprints.
type Matcher struct {
	store     Store
	threshold float64
}

// NewMatcher builds a Matcher over store. A non-positive threshold selects
// [DefaultThreshold].
func NewMatcher(store Store, threshold float64) *Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Matcher{store: store, threshold: threshold}
}

// Enroll stores embedding as the voiceprint for ic, replacing any previous
// enrollment.
func (m *Matcher) Enroll(ctx context.Context, ic string, embedding []float32) error {
	if len(embedding) != EmbeddingDim {
		return fmt.Errorf("voiceprint: embedding has %d dimensions, want %d", len(embedding), EmbeddingDim)
	}
	return m.store.Save(ctx, ic, embedding)
}

// Verify compares embedding against the enrolled print for ic.
func (m *Matcher) Verify(ctx context.Context, ic string, embedding []float32) (Result, error) {
	if len(embedding) != EmbeddingDim {
		return Result{}, fmt.Errorf("voiceprint: embedding has %d dimensions, want %d", len(embedding), EmbeddingDim)
	}
	enrolled, err := m.store.Load(ctx, ic)
	if err != nil {
		return Result{}, err
	}

	similarity := CosineSimilarity(enrolled, embedding)
	return Result{
		Authenticated: similarity >= m.threshold,
		Similarity:    similarity,
		Margin:        similarity - m.threshold,
	}, nil
}

// CosineSimilarity returns the cosine similarity of a and b clamped to
// [0, 1]. Mismatched lengths and zero vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	similarity := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return math.Max(0, math.Min(1, similarity))
}
