package regex

import (
	"fmt"
	"strings"
)

// OpCode identifies a program instruction.
type OpCode uint8

const (
	OpChar    OpCode = iota // match one specific rune
	OpClass                 // match one rune against a range set
	OpAny                   // match any single rune
	OpJmp                   // unconditional jump to X
	OpSplit                 // try X first, fall back to Y
	OpSave                  // record current offset in capture slot
	OpBackref               // match the text captured by a group
	OpAssert                // zero-width anchor check
	OpProgress              // exit a loop whose last iteration consumed nothing
	OpMatch                 // accept
)

// Inst is a single program instruction. Field use depends on Op:
//
//	OpChar     Ch
//	OpClass    Ranges, Negated
//	OpJmp      X
//	OpSplit    X (preferred), Y (backtrack alternative)
//	OpSave     Slot
//	OpBackref  Group
//	OpAssert   Assert
//	OpProgress Slot (position at loop entry), X (loop exit)
type Inst struct {
	Op      OpCode
	Ch      rune
	Ranges  []RuneRange
	Negated bool
	X, Y    int
	Slot    int
	Group   int
	Assert  AnchorKind
}

// Program is a compiled pattern: an immutable instruction sequence starting
// at instruction 0. It is safe to share across concurrent match attempts;
// all mutable state lives in the VM threads.
type Program struct {
	Insts     []Inst
	NumGroups int
	NumMarks  int
	Pattern   string
}

// NumSlots returns the size of a register array for this program:
// start/end pairs for the whole match plus every capturing group, followed
// by one mark slot per guarded loop.
func (p *Program) NumSlots() int {
	return 2*(p.NumGroups+1) + p.NumMarks
}

// matchesRune reports whether a rune-consuming instruction accepts r.
func (i *Inst) matchesRune(r rune) bool {
	switch i.Op {
	case OpChar:
		return r == i.Ch
	case OpAny:
		return true
	case OpClass:
		in := false
		for _, rr := range i.Ranges {
			if r >= rr.Lo && r <= rr.Hi {
				in = true
				break
			}
		}
		return in != i.Negated
	default:
		return false
	}
}

// String disassembles the program, one instruction per line.
func (p *Program) String() string {
	var b strings.Builder
	for pc, inst := range p.Insts {
		fmt.Fprintf(&b, "%3d  %s\n", pc, inst.String())
	}
	return b.String()
}

// String renders a single instruction in disassembly form.
func (i Inst) String() string {
	switch i.Op {
	case OpChar:
		return fmt.Sprintf("char %q", i.Ch)
	case OpClass:
		neg := ""
		if i.Negated {
			neg = "^"
		}
		var parts []string
		for _, rr := range i.Ranges {
			if rr.Lo == rr.Hi {
				parts = append(parts, fmt.Sprintf("%q", rr.Lo))
			} else {
				parts = append(parts, fmt.Sprintf("%q-%q", rr.Lo, rr.Hi))
			}
		}
		return fmt.Sprintf("class %s[%s]", neg, strings.Join(parts, " "))
	case OpAny:
		return "any"
	case OpJmp:
		return fmt.Sprintf("jmp %d", i.X)
	case OpSplit:
		return fmt.Sprintf("split %d, %d", i.X, i.Y)
	case OpSave:
		return fmt.Sprintf("save %d", i.Slot)
	case OpBackref:
		return fmt.Sprintf("backref %d", i.Group)
	case OpAssert:
		if i.Assert == AnchorStart {
			return "assert ^"
		}
		return "assert $"
	case OpProgress:
		return fmt.Sprintf("progress %d, exit %d", i.Slot, i.X)
	case OpMatch:
		return "match"
	}
	return "?"
}
