package regex

import (
	"unicode/utf8"

	"github.com/vivekkdagar/deepgrep/pkg/types"
)

// Iterator enumerates the non-overlapping matches of a program over a
// text, left to right. Iteration state is private to the Iterator, so a
// fresh Iterator over the same inputs replays the same sequence.
type Iterator struct {
	prog     *Program
	text     string
	maxSteps int
	offset   int
	done     bool
}

// NewIterator returns an iterator positioned before the first match.
// maxSteps bounds each individual match attempt, not the whole scan.
func NewIterator(prog *Program, text string, maxSteps int) *Iterator {
	return &Iterator{prog: prog, text: text, maxSteps: maxSteps}
}

// Next returns the next match, or (nil, nil) when the text is exhausted.
// After a failure or exhaustion the iterator stays done.
func (it *Iterator) Next() (*types.Match, error) {
	for !it.done && it.offset <= len(it.text) {
		m, err := Run(it.prog, it.text, it.offset, it.maxSteps)
		if err != nil {
			it.done = true
			return nil, err
		}
		if m == nil {
			it.offset = advanceRune(it.text, it.offset)
			continue
		}
		// Progress past the match; an empty match still advances one rune
		// so the scan always terminates.
		if m.End == m.Start {
			it.offset = advanceRune(it.text, m.End)
		} else {
			it.offset = m.End
		}
		return m, nil
	}
	it.done = true
	return nil, nil
}

// advanceRune moves a byte offset forward by one rune (or one byte past
// the end of text, which terminates the scan).
func advanceRune(text string, offset int) int {
	if offset >= len(text) {
		return offset + 1
	}
	_, width := utf8.DecodeRuneInString(text[offset:])
	return offset + width
}

// FindAll collects every match of prog over text in order. A text with no
// matches yields an empty slice, not an error. Re-running FindAll on the
// same inputs yields identical results.
func FindAll(prog *Program, text string, maxSteps int) ([]types.Match, error) {
	it := NewIterator(prog, text, maxSteps)
	matches := []types.Match{}
	for {
		m, err := it.Next()
		if err != nil {
			return nil, err
		}
		if m == nil {
			return matches, nil
		}
		matches = append(matches, *m)
	}
}
