package semantic

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/vivekkdagar/deepgrep/pkg/types"
)

const (
	// SimilarityThreshold is the minimum cosine similarity for a word to
	// count as a semantic match.
	SimilarityThreshold = 0.45

	// DefaultTopN is the number of matches returned when the caller does
	// not specify a limit.
	DefaultTopN = 5

	// minWordLen filters out single-letter tokens before embedding
	minWordLen = 2
)

// stopwords are never offered as match candidates
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "but": {}, "by": {}, "for": {}, "if": {}, "in": {},
	"into": {}, "is": {}, "it": {}, "no": {}, "not": {}, "of": {},
	"on": {}, "or": {}, "such": {}, "that": {}, "the": {}, "their": {},
	"then": {}, "there": {}, "these": {}, "they": {}, "this": {},
	"to": {}, "was": {}, "will": {}, "with": {},
}

// Matcher ranks the words of a text by embedding similarity to a keyword.
type Matcher struct {
	embedder Embedder
}

// NewMatcher creates a matcher backed by the given embedder
func NewMatcher(embedder Embedder) *Matcher {
	return &Matcher{embedder: embedder}
}

// FindMatches returns the words of text most similar to keyword, best first.
// At most topN results are returned (DefaultTopN when topN <= 0) and every
// result scores at or above SimilarityThreshold.
func (m *Matcher) FindMatches(ctx context.Context, text, keyword string, topN int) ([]types.SemanticMatch, error) {
	if strings.TrimSpace(keyword) == "" {
		return nil, fmt.Errorf("%w: keyword is empty", ErrInvalidInput)
	}
	if topN <= 0 {
		topN = DefaultTopN
	}

	words := ExtractWords(text)
	if len(words) == 0 {
		return []types.SemanticMatch{}, nil
	}

	// One batch for the keyword plus every candidate word
	texts := make([]string, 0, len(words)+1)
	texts = append(texts, strings.ToLower(keyword))
	texts = append(texts, words...)

	resp, err := m.embedder.GenerateBatch(ctx, BatchEmbeddingRequest{Texts: texts})
	if err != nil {
		return nil, fmt.Errorf("embed candidates: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d texts", ErrProviderFailed, len(resp.Embeddings), len(texts))
	}

	keywordVec := resp.Embeddings[0].Vector

	matches := make([]types.SemanticMatch, 0, len(words))
	for i, word := range words {
		score := cosineSimilarity(keywordVec, resp.Embeddings[i+1].Vector)
		if score < SimilarityThreshold {
			continue
		}
		matches = append(matches, types.SemanticMatch{
			Word:       word,
			Similarity: score,
		})
	}

	// Best first; ties resolve alphabetically so output is stable
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].Word < matches[j].Word
	})

	if len(matches) > topN {
		matches = matches[:topN]
	}

	return matches, nil
}

// Close releases the underlying embedder
func (m *Matcher) Close() error {
	return m.embedder.Close()
}

// ExtractWords returns the unique candidate words of text in first-seen
// order: lowercased alphabetic runs of at least minWordLen runes, with
// stopwords removed.
func ExtractWords(text string) []string {
	seen := make(map[string]struct{})
	var words []string

	var current []rune
	flush := func() {
		if len(current) >= minWordLen {
			word := strings.ToLower(string(current))
			if _, stop := stopwords[word]; !stop {
				if _, dup := seen[word]; !dup {
					seen[word] = struct{}{}
					words = append(words, word)
				}
			}
		}
		current = current[:0]
	}

	for _, r := range text {
		if unicode.IsLetter(r) {
			current = append(current, r)
			continue
		}
		flush()
	}
	flush()

	return words
}
