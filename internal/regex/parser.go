package regex

import (
	"fmt"

	"github.com/vivekkdagar/deepgrep/pkg/types"
)

// maxRepeatCount bounds counted repetitions like a{2,100}. Counted repeats
// are expanded during lowering, so an unchecked bound would let a short
// pattern compile into an enormous program.
const maxRepeatCount = 1000

// parser is a recursive-descent parser over the pattern grammar:
// alternation > concatenation > repetition > atom.
type parser struct {
	pattern   []rune
	pos       int
	numGroups int
}

// Parse parses a pattern string into its AST root and reports the number
// of capturing groups. Malformed patterns produce a *types.SyntaxError
// carrying the rune position of the problem.
func Parse(pattern string) (Node, int, error) {
	if pattern == "" {
		return nil, 0, types.ErrEmptyPattern
	}
	p := &parser{pattern: []rune(pattern)}
	node, err := p.parseAlternate()
	if err != nil {
		return nil, 0, err
	}
	if p.pos < len(p.pattern) {
		// parseConcat stops at ')' it has no opening partner for.
		return nil, 0, p.errorf("unexpected %q", p.peek())
	}
	return node, p.numGroups, nil
}

func (p *parser) peek() rune {
	if p.pos >= len(p.pattern) {
		return -1
	}
	return p.pattern[p.pos]
}

func (p *parser) advance() rune {
	r := p.peek()
	if r >= 0 {
		p.pos++
	}
	return r
}

func (p *parser) eof() bool {
	return p.pos >= len(p.pattern)
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return &types.SyntaxError{Pos: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) errorAt(pos int, format string, args ...interface{}) error {
	return &types.SyntaxError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// parseAlternate parses '|'-separated branches.
func (p *parser) parseAlternate() (Node, error) {
	first, err := p.parseConcat()
	if err != nil {
		return nil, err
	}
	if p.peek() != '|' {
		return first, nil
	}
	branches := []Node{first}
	for p.peek() == '|' {
		p.advance()
		branch, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		branches = append(branches, branch)
	}
	return &Alternate{Nodes: branches}, nil
}

// parseConcat parses a sequence of repeated atoms up to ')', '|' or the
// end of the pattern.
func (p *parser) parseConcat() (Node, error) {
	var nodes []Node
	for !p.eof() && p.peek() != ')' && p.peek() != '|' {
		n, err := p.parseRepeat()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	if len(nodes) == 0 {
		return nil, p.errorf("expected expression")
	}
	if len(nodes) == 1 {
		return nodes[0], nil
	}
	return &Concat{Nodes: nodes}, nil
}

// parseRepeat parses an atom and an optional quantifier, with an optional
// trailing '?' turning the quantifier lazy.
func (p *parser) parseRepeat() (Node, error) {
	atom, err := p.parseAtom()
	if err != nil {
		return nil, err
	}

	var min, max int
	switch p.peek() {
	case '?':
		p.advance()
		min, max = 0, 1
	case '+':
		p.advance()
		min, max = 1, InfiniteRepeat
	case '*':
		p.advance()
		min, max = 0, InfiniteRepeat
	case '{':
		min, max, err = p.parseCountedRepeat()
		if err != nil {
			return nil, err
		}
	default:
		return atom, nil
	}

	greedy := true
	if p.peek() == '?' {
		p.advance()
		greedy = false
	}
	if r := p.peek(); r == '?' || r == '+' || r == '*' || r == '{' {
		return nil, p.errorf("nested quantifier %q", r)
	}
	return &Repeat{Node: atom, Min: min, Max: max, Greedy: greedy}, nil
}

// parseCountedRepeat parses {n}, {n,} or {n,m}. The opening '{' has not
// been consumed yet.
func (p *parser) parseCountedRepeat() (int, int, error) {
	open := p.pos
	p.advance() // '{'

	min, ok := p.parseInt()
	if !ok {
		return 0, 0, p.errorAt(open, "malformed repetition count")
	}
	max := min
	if p.peek() == ',' {
		p.advance()
		if p.peek() == '}' {
			max = InfiniteRepeat
		} else {
			max, ok = p.parseInt()
			if !ok {
				return 0, 0, p.errorAt(open, "malformed repetition count")
			}
		}
	}
	if p.advance() != '}' {
		return 0, 0, p.errorAt(open, "missing closing '}' in repetition")
	}
	if min > maxRepeatCount || max > maxRepeatCount {
		return 0, 0, p.errorAt(open, "repetition count exceeds %d", maxRepeatCount)
	}
	if max != InfiniteRepeat && min > max {
		return 0, 0, p.errorAt(open, "repetition minimum %d exceeds maximum %d", min, max)
	}
	return min, max, nil
}

func (p *parser) parseInt() (int, bool) {
	start := p.pos
	n := 0
	for r := p.peek(); r >= '0' && r <= '9'; r = p.peek() {
		// Stop accumulating once over the cap so huge counts cannot
		// overflow, but keep consuming digits: the caller should see the
		// closing '}' and report the oversized count, not a parse error.
		if n <= maxRepeatCount {
			n = n*10 + int(r-'0')
		}
		p.advance()
	}
	return n, p.pos > start
}

// parseAtom parses the smallest pattern unit: anchors, dot, escapes,
// character classes, groups, and literal runes.
func (p *parser) parseAtom() (Node, error) {
	switch r := p.peek(); r {
	case '^':
		p.advance()
		return &Anchor{K: AnchorStart}, nil
	case '$':
		p.advance()
		return &Anchor{K: AnchorEnd}, nil
	case '.':
		p.advance()
		return &AnyChar{}, nil
	case '\\':
		return p.parseEscape()
	case '[':
		return p.parseCharClass()
	case '(':
		return p.parseGroup()
	case '?', '+', '*':
		return nil, p.errorf("dangling quantifier %q", r)
	case '{':
		return nil, p.errorf("dangling repetition")
	default:
		return &Literal{Ch: p.advance()}, nil
	}
}

// parseEscape handles '\' followed by a class shorthand, a backreference
// digit, a control escape, or an escaped literal.
func (p *parser) parseEscape() (Node, error) {
	slash := p.pos
	p.advance() // '\'
	if p.eof() {
		return nil, p.errorAt(slash, "dangling backslash")
	}
	r := p.advance()

	if r >= '1' && r <= '9' {
		index := int(r - '1' + 1)
		if index > p.numGroups {
			return nil, p.errorAt(slash, "backreference \\%d to undefined group", index)
		}
		return &Backref{Index: index}, nil
	}

	switch r {
	case '0':
		return nil, p.errorAt(slash, "backreference \\0 is not valid")
	case 'd':
		return &CharClass{Ranges: digitRanges}, nil
	case 'D':
		return &CharClass{Ranges: digitRanges, Negated: true}, nil
	case 'w':
		return &CharClass{Ranges: wordRanges}, nil
	case 'W':
		return &CharClass{Ranges: wordRanges, Negated: true}, nil
	case 's':
		return &CharClass{Ranges: spaceRanges}, nil
	case 'S':
		return &CharClass{Ranges: spaceRanges, Negated: true}, nil
	case 'n':
		return &Literal{Ch: '\n'}, nil
	case 't':
		return &Literal{Ch: '\t'}, nil
	case 'r':
		return &Literal{Ch: '\r'}, nil
	default:
		return &Literal{Ch: r}, nil
	}
}

// Shorthand class contents, shared by escapes inside and outside classes.
var (
	digitRanges = []RuneRange{{'0', '9'}}
	wordRanges  = []RuneRange{{'0', '9'}, {'A', 'Z'}, {'_', '_'}, {'a', 'z'}}
	spaceRanges = []RuneRange{{'\t', '\n'}, {'\v', '\r'}, {' ', ' '}}
)

// parseCharClass parses [...] and [^...] with ranges, escapes, and class
// shorthands.
func (p *parser) parseCharClass() (Node, error) {
	open := p.pos
	p.advance() // '['

	negated := false
	if p.peek() == '^' {
		negated = true
		p.advance()
	}

	var ranges []RuneRange
	for {
		if p.eof() {
			return nil, p.errorAt(open, "unterminated character class")
		}
		if p.peek() == ']' {
			p.advance()
			break
		}

		rr, literal, err := p.parseClassItem()
		if err != nil {
			return nil, err
		}
		if !literal {
			ranges = append(ranges, rr...)
			continue
		}

		lo := rr[0].Lo
		// A '-' forms a range unless it closes the class.
		if p.peek() == '-' && p.pos+1 < len(p.pattern) && p.pattern[p.pos+1] != ']' {
			dash := p.pos
			p.advance()
			hiItem, hiLiteral, err := p.parseClassItem()
			if err != nil {
				return nil, err
			}
			if !hiLiteral {
				return nil, p.errorAt(dash, "class shorthand cannot bound a range")
			}
			hi := hiItem[0].Lo
			if lo > hi {
				return nil, p.errorAt(dash, "invalid range %q-%q", lo, hi)
			}
			ranges = append(ranges, RuneRange{Lo: lo, Hi: hi})
			continue
		}
		ranges = append(ranges, RuneRange{Lo: lo, Hi: lo})
	}

	if len(ranges) == 0 {
		return nil, p.errorAt(open, "empty character class")
	}
	return &CharClass{Ranges: ranges, Negated: negated}, nil
}

// parseClassItem parses one class element: a literal rune (possibly
// escaped) or a \d \w \s shorthand. literal reports whether the result is
// a single rune usable as a range bound.
func (p *parser) parseClassItem() ([]RuneRange, bool, error) {
	r := p.advance()
	if r != '\\' {
		return []RuneRange{{Lo: r, Hi: r}}, true, nil
	}
	if p.eof() {
		return nil, false, p.errorAt(p.pos-1, "dangling backslash in character class")
	}
	e := p.advance()
	switch e {
	case 'd':
		return digitRanges, false, nil
	case 'w':
		return wordRanges, false, nil
	case 's':
		return spaceRanges, false, nil
	case 'D', 'W', 'S':
		return nil, false, p.errorAt(p.pos-2, "negated shorthand \\%c not allowed in character class", e)
	case 'n':
		return []RuneRange{{Lo: '\n', Hi: '\n'}}, true, nil
	case 't':
		return []RuneRange{{Lo: '\t', Hi: '\t'}}, true, nil
	case 'r':
		return []RuneRange{{Lo: '\r', Hi: '\r'}}, true, nil
	default:
		return []RuneRange{{Lo: e, Hi: e}}, true, nil
	}
}

// parseGroup parses (...) capturing and (?:...) non-capturing groups.
// Capture indices are assigned at the opening parenthesis, so nesting and
// later backreferences see strictly increasing numbers.
func (p *parser) parseGroup() (Node, error) {
	open := p.pos
	p.advance() // '('

	index := 0
	if p.peek() == '?' {
		p.advance()
		if p.advance() != ':' {
			return nil, p.errorAt(open, "unsupported group flag")
		}
	} else {
		p.numGroups++
		index = p.numGroups
	}

	body, err := p.parseAlternate()
	if err != nil {
		return nil, err
	}
	if p.advance() != ')' {
		return nil, p.errorAt(open, "missing closing parenthesis")
	}
	return &Group{Node: body, Index: index}, nil
}
