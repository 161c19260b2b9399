package voiceprint

import (
	"context"
	"errors"
	"math"
	"testing"
)

// memStore is an in-memory voiceprint store for tests.
type memStore struct {
	prints map[string][]float32
}

func (m *memStore) Save(_ context.Context, ic string, embedding []float32) error {
	if m.prints == nil {
		m.prints = make(map[string][]float32)
	}
	m.prints[ic] = embedding
	return nil
}

func (m *memStore) Load(_ context.Context, ic string) ([]float32, error) {
	p, ok := m.prints[ic]
	if !ok {
		return nil, ErrNotEnrolled
	}
	return p, nil
}

func testEmbedding(seed float32) []float32 {
	e := make([]float32, EmbeddingDim)
	for i := range e {
		e[i] = seed + float32(i)*0.01
	}
	return e
}

func TestCosineSimilarity(t *testing.T) {
	t.Parallel()

	a := []float32{1, 0, 0}
	if got := CosineSimilarity(a, a); math.Abs(got-1) > 1e-9 {
		t.Errorf("identical vectors similarity = %v, want 1", got)
	}
	if got := CosineSimilarity(a, []float32{0, 1, 0}); got != 0 {
		t.Errorf("orthogonal vectors similarity = %v, want 0", got)
	}
	// Opposed vectors clamp to 0 rather than going negative.
	if got := CosineSimilarity(a, []float32{-1, 0, 0}); got != 0 {
		t.Errorf("opposed vectors similarity = %v, want clamped 0", got)
	}
	if got := CosineSimilarity(a, []float32{0, 0}); got != 0 {
		t.Errorf("mismatched lengths similarity = %v, want 0", got)
	}
	if got := CosineSimilarity([]float32{0, 0, 0}, a); got != 0 {
		t.Errorf("zero vector similarity = %v, want 0", got)
	}
}

func TestMatcher_EnrollAndVerify(t *testing.T) {
	t.Parallel()

	m := NewMatcher(&memStore{}, 0)
	ctx := context.Background()
	enrolled := testEmbedding(1)

	if err := m.Enroll(ctx, "900101012345", enrolled); err != nil {
		t.Fatalf("Enroll: %v", err)
	}

	res, err := m.Verify(ctx, "900101012345", enrolled)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !res.Authenticated {
		t.Errorf("identical embedding rejected, similarity %v", res.Similarity)
	}
	if res.Margin <= 0 {
		t.Errorf("Margin = %v, want positive", res.Margin)
	}
}

func TestMatcher_RejectsDissimilarSpeaker(t *testing.T) {
	t.Parallel()

	m := NewMatcher(&memStore{}, 0)
	ctx := context.Background()
	if err := m.Enroll(ctx, "900101012345", testEmbedding(1)); err != nil {
		t.Fatalf("Enroll: %v", err)
	}

	// An embedding concentrated on different components scores low.
	other := make([]float32, EmbeddingDim)
	for i := range other {
		if i%2 == 0 {
			other[i] = -1
		}
	}
	res, err := m.Verify(ctx, "900101012345", other)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if res.Authenticated {
		t.Errorf("dissimilar embedding accepted, similarity %v", res.Similarity)
	}
}

func TestMatcher_NotEnrolled(t *testing.T) {
	t.Parallel()

	m := NewMatcher(&memStore{}, 0)
	_, err := m.Verify(context.Background(), "nobody", testEmbedding(1))
	if !errors.Is(err, ErrNotEnrolled) {
		t.Errorf("Verify error = %v, want ErrNotEnrolled", err)
	}
}

func TestMatcher_RejectsWrongDimension(t *testing.T) {
	t.Parallel()

	m := NewMatcher(&memStore{}, 0)
	if err := m.Enroll(context.Background(), "x", []float32{1, 2, 3}); err == nil {
		t.Error("Enroll accepted wrong-dimension embedding")
	}
	if _, err := m.Verify(context.Background(), "x", []float32{1, 2, 3}); err == nil {
		t.Error("Verify accepted wrong-dimension embedding")
	}
}
