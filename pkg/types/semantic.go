package types

import "errors"

// SemanticMatch pairs a word from the searched text with its similarity to
// the query keyword, in the range [0, 1].
type SemanticMatch struct {
	Word       string  `json:"word"`
	Similarity float64 `json:"similarity"`
}

// Validate checks the semantic match invariants.
func (s *SemanticMatch) Validate() error {
	if s.Word == "" {
		return errors.New("semantic match word cannot be empty")
	}
	if s.Similarity < 0 || s.Similarity > 1 {
		return errors.New("similarity must be between 0 and 1")
	}
	return nil
}
