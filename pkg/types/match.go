package types

// Span is a half-open [Start, End) byte range into the searched text.
// Both offsets are -1 when the span is unset.
type Span struct {
	Start int
	End   int
}

// UnsetSpan is the sentinel value for a capture group that did not
// participate in the match.
var UnsetSpan = Span{Start: -1, End: -1}

// IsSet reports whether the span records a captured range.
func (s Span) IsSet() bool {
	return s.Start >= 0 && s.End >= 0
}

// Len returns the span length in bytes, or 0 for an unset span.
func (s Span) Len() int {
	if !s.IsSet() {
		return 0
	}
	return s.End - s.Start
}

// Match is the result of one successful match attempt.
//
// Groups holds one span per capturing group, ordered by group index
// starting at group 1 (the whole match is Start/End, not a group entry).
type Match struct {
	Start  int
	End    int
	Groups []Span
}

// Text returns the matched substring of the input the match was produced
// from.
func (m *Match) Text(input string) string {
	return input[m.Start:m.End]
}

// GroupText returns the substring captured by group index (1-based) and
// whether that group participated in the match. Index 0 returns the whole
// match.
func (m *Match) GroupText(input string, index int) (string, bool) {
	if index == 0 {
		return m.Text(input), true
	}
	if index < 1 || index > len(m.Groups) {
		return "", false
	}
	g := m.Groups[index-1]
	if !g.IsSet() {
		return "", false
	}
	return input[g.Start:g.End], true
}

// IsEmpty reports whether the match consumed no input.
func (m *Match) IsEmpty() bool {
	return m.Start == m.End
}

// Validate checks internal consistency of the match offsets.
func (m *Match) Validate() error {
	if m.Start < 0 || m.End < m.Start {
		return ErrInvalidSpan
	}
	for _, g := range m.Groups {
		if !g.IsSet() {
			continue
		}
		if g.Start > g.End {
			return ErrInvalidSpan
		}
	}
	return nil
}
