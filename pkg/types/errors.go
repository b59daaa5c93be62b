package types

import (
	"errors"
	"fmt"
)

// Domain errors shared across the engine and its callers
var (
	// ErrStepLimit is returned when a match attempt exceeds its instruction
	// budget. It marks an aborted search, not a negative one.
	ErrStepLimit = errors.New("match aborted: step limit exceeded")

	// ErrInvalidSpan indicates inconsistent match offsets
	ErrInvalidSpan = errors.New("invalid match span")

	// ErrEmptyPattern is returned for an empty pattern string
	ErrEmptyPattern = errors.New("empty pattern")
)

// SyntaxError describes a malformed pattern. Pos is the rune offset into
// the pattern string where parsing failed.
type SyntaxError struct {
	Pos int
	Msg string
}

// Error implements the error interface
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("pattern syntax error at position %d: %s", e.Pos, e.Msg)
}

// AsSyntaxError unwraps err as a *SyntaxError if it is one.
func AsSyntaxError(err error) (*SyntaxError, bool) {
	var se *SyntaxError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
