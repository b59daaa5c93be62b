package regex

import (
	"fmt"
	"strings"
)

// NodeKind identifies the kind of an AST node.
type NodeKind int

const (
	KindLiteral NodeKind = iota
	KindCharClass
	KindAnyChar
	KindConcat
	KindAlternate
	KindRepeat
	KindGroup
	KindBackref
	KindAnchor
)

// Node is an AST node. The node set is closed: the compiler and the dumper
// switch exhaustively over NodeKind.
type Node interface {
	Kind() NodeKind
}

// Literal matches a single rune.
type Literal struct {
	Ch rune
}

func (n *Literal) Kind() NodeKind { return KindLiteral }

// RuneRange is an inclusive range of runes inside a character class.
type RuneRange struct {
	Lo, Hi rune
}

// CharClass matches one rune against a set of ranges, or its complement.
type CharClass struct {
	Ranges  []RuneRange
	Negated bool
}

func (n *CharClass) Kind() NodeKind { return KindCharClass }

// Contains reports whether r is accepted by the class.
func (n *CharClass) Contains(r rune) bool {
	in := false
	for _, rr := range n.Ranges {
		if r >= rr.Lo && r <= rr.Hi {
			in = true
			break
		}
	}
	return in != n.Negated
}

// AnyChar matches any single rune.
type AnyChar struct{}

func (n *AnyChar) Kind() NodeKind { return KindAnyChar }

// Concat matches its children in sequence.
type Concat struct {
	Nodes []Node
}

func (n *Concat) Kind() NodeKind { return KindConcat }

// Alternate matches one of its branches, tried left to right.
type Alternate struct {
	Nodes []Node
}

func (n *Alternate) Kind() NodeKind { return KindAlternate }

// InfiniteRepeat marks an unbounded repetition maximum.
const InfiniteRepeat = -1

// Repeat matches its child between Min and Max times. Max is
// InfiniteRepeat for unbounded repetition. Greedy repetition prefers more
// iterations, lazy prefers fewer.
type Repeat struct {
	Node   Node
	Min    int
	Max    int
	Greedy bool
}

func (n *Repeat) Kind() NodeKind { return KindRepeat }

// Group wraps a sub-pattern. Index is the 1-based capture index, or 0 for
// a non-capturing group.
type Group struct {
	Node  Node
	Index int
}

func (n *Group) Kind() NodeKind { return KindGroup }

// Capturing reports whether the group records its matched span.
func (n *Group) Capturing() bool { return n.Index > 0 }

// Backref matches the text previously captured by group Index.
type Backref struct {
	Index int
}

func (n *Backref) Kind() NodeKind { return KindBackref }

// AnchorKind distinguishes the two zero-width anchors.
type AnchorKind int

const (
	AnchorStart AnchorKind = iota // ^  start of text
	AnchorEnd                     // $  end of text
)

// Anchor matches a position without consuming input.
type Anchor struct {
	K AnchorKind
}

func (n *Anchor) Kind() NodeKind { return KindAnchor }

// Dump renders the AST as an indented tree, for debugging and tests.
func Dump(n Node) string {
	var b strings.Builder
	dumpNode(&b, n, 0)
	return b.String()
}

func dumpNode(b *strings.Builder, n Node, depth int) {
	indent := strings.Repeat("  ", depth)
	switch v := n.(type) {
	case *Literal:
		fmt.Fprintf(b, "%slit %q\n", indent, v.Ch)
	case *CharClass:
		neg := ""
		if v.Negated {
			neg = "^"
		}
		fmt.Fprintf(b, "%sclass %s%v\n", indent, neg, v.Ranges)
	case *AnyChar:
		fmt.Fprintf(b, "%sany\n", indent)
	case *Concat:
		fmt.Fprintf(b, "%scat\n", indent)
		for _, c := range v.Nodes {
			dumpNode(b, c, depth+1)
		}
	case *Alternate:
		fmt.Fprintf(b, "%salt\n", indent)
		for _, c := range v.Nodes {
			dumpNode(b, c, depth+1)
		}
	case *Repeat:
		mode := "lazy"
		if v.Greedy {
			mode = "greedy"
		}
		fmt.Fprintf(b, "%srepeat{%d,%d} %s\n", indent, v.Min, v.Max, mode)
		dumpNode(b, v.Node, depth+1)
	case *Group:
		if v.Capturing() {
			fmt.Fprintf(b, "%sgroup %d\n", indent, v.Index)
		} else {
			fmt.Fprintf(b, "%sgroup\n", indent)
		}
		dumpNode(b, v.Node, depth+1)
	case *Backref:
		fmt.Fprintf(b, "%sbackref %d\n", indent, v.Index)
	case *Anchor:
		if v.K == AnchorStart {
			fmt.Fprintf(b, "%sanchor ^\n", indent)
		} else {
			fmt.Fprintf(b, "%sanchor $\n", indent)
		}
	default:
		fmt.Fprintf(b, "%s?unknown\n", indent)
	}
}
