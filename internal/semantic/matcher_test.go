package semantic

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockEmbedder returns canned unit vectors per text, so similarity scores
// in tests are exact.
type mockEmbedder struct {
	vectors map[string][]float32
	calls   int
}

func (m *mockEmbedder) GenerateEmbedding(ctx context.Context, req EmbeddingRequest) (*Embedding, error) {
	resp, err := m.GenerateBatch(ctx, BatchEmbeddingRequest{Texts: []string{req.Text}})
	if err != nil {
		return nil, err
	}
	return resp.Embeddings[0], nil
}

func (m *mockEmbedder) GenerateBatch(ctx context.Context, req BatchEmbeddingRequest) (*BatchEmbeddingResponse, error) {
	if err := ValidateBatchRequest(req); err != nil {
		return nil, err
	}
	m.calls++
	embeddings := make([]*Embedding, len(req.Texts))
	for i, text := range req.Texts {
		vec, ok := m.vectors[text]
		if !ok {
			vec = []float32{0, 0, 1}
		}
		embeddings[i] = &Embedding{Vector: vec, Dimension: len(vec), Provider: "mock"}
	}
	return &BatchEmbeddingResponse{Embeddings: embeddings, Provider: "mock"}, nil
}

func (m *mockEmbedder) Dimension() int   { return 3 }
func (m *mockEmbedder) Provider() string { return "mock" }
func (m *mockEmbedder) Model() string    { return "mock" }
func (m *mockEmbedder) Close() error     { return nil }

func TestMatcher_FindMatches(t *testing.T) {
	// "joyful" aligns with the keyword, "glad" partially, "rock" not at all.
	emb := &mockEmbedder{vectors: map[string][]float32{
		"happy":  {1, 0, 0},
		"joyful": {0.95, 0.3, 0},
		"glad":   {0.6, 0.8, 0},
		"rock":   {0, 0, 1},
	}}
	matcher := NewMatcher(emb)

	matches, err := matcher.FindMatches(context.Background(), "a joyful glad rock", "happy", 10)
	require.NoError(t, err)
	require.Len(t, matches, 2, "rock scores 0 and is dropped, 'a' is a stopword")

	assert.Equal(t, "joyful", matches[0].Word)
	assert.Equal(t, "glad", matches[1].Word)
	assert.Greater(t, matches[0].Similarity, matches[1].Similarity)
	for _, m := range matches {
		assert.GreaterOrEqual(t, m.Similarity, SimilarityThreshold)
	}
}

func TestMatcher_TopNTruncates(t *testing.T) {
	emb := &mockEmbedder{vectors: map[string][]float32{
		"happy":  {1, 0, 0},
		"joyful": {0.95, 0.3, 0},
		"merry":  {0.9, 0.4, 0},
		"glad":   {0.6, 0.8, 0},
	}}
	matcher := NewMatcher(emb)

	matches, err := matcher.FindMatches(context.Background(), "joyful merry glad", "happy", 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "joyful", matches[0].Word)
	assert.Equal(t, "merry", matches[1].Word)
}

func TestMatcher_SingleBatchCall(t *testing.T) {
	emb := &mockEmbedder{vectors: map[string][]float32{}}
	matcher := NewMatcher(emb)

	_, err := matcher.FindMatches(context.Background(), "one two three four", "five", 3)
	require.NoError(t, err)
	assert.Equal(t, 1, emb.calls, "keyword and candidates embed in one batch")
}

func TestMatcher_InputValidation(t *testing.T) {
	matcher := NewMatcher(&mockEmbedder{})

	t.Run("empty keyword", func(t *testing.T) {
		_, err := matcher.FindMatches(context.Background(), "some text", "  ", 5)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("text with no candidates", func(t *testing.T) {
		matches, err := matcher.FindMatches(context.Background(), "a 12 %% !", "happy", 5)
		require.NoError(t, err)
		assert.Empty(t, matches)
	})
}

func TestExtractWords(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			"lowercases and dedupes in first-seen order",
			"Sunny sunny DAY day",
			[]string{"sunny", "day"},
		},
		{
			"drops stopwords and short tokens",
			"the cat is on a mat",
			[]string{"cat", "mat"},
		},
		{
			"splits on punctuation and digits",
			"joy2joy, re-run!",
			[]string{"joy", "re", "run"},
		},
		{
			"unicode letters survive",
			"crème brûlée",
			[]string{"crème", "brûlée"},
		},
		{
			"empty text",
			"  \n\t ",
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractWords(tt.text))
		})
	}
}
