package regex

import (
	"strings"
	"unicode/utf8"

	"github.com/vivekkdagar/deepgrep/pkg/types"
)

// DefaultMaxSteps is the default instruction budget for one match attempt.
// Backtracking over an ambiguous pattern can revisit instructions an
// exponential number of times, so the budget is what keeps a single
// attempt bounded; no automaton-style bound exists once backreferences are
// in play.
const DefaultMaxSteps = 1 << 20

// thread is one saved execution alternative: where to resume in the
// program, where in the input, and the capture registers at the time the
// alternative was deferred.
type thread struct {
	pc   int
	pos  int
	caps []int
}

// Run executes a compiled program against text, anchored at byte offset
// start. It returns the match (leftmost-first: the first accepting path
// wins), nil when the attempt fails, or types.ErrStepLimit when the
// attempt exceeds maxSteps instruction executions. maxSteps <= 0 selects
// DefaultMaxSteps.
//
// Backtracking uses an explicit heap stack of saved threads, never native
// recursion, so adversarial patterns cannot overflow the call stack.
func Run(prog *Program, text string, start, maxSteps int) (*types.Match, error) {
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}

	caps := make([]int, prog.NumSlots())
	for i := range caps {
		caps[i] = -1
	}

	var stack []thread
	pc, pos := 0, start
	steps := 0

	for {
		steps++
		if steps > maxSteps {
			return nil, types.ErrStepLimit
		}

		inst := &prog.Insts[pc]
		switch inst.Op {
		case OpMatch:
			return buildMatch(prog, caps), nil

		case OpJmp:
			pc = inst.X
			continue

		case OpSplit:
			// Defer the lower-priority branch with a private snapshot of
			// the capture registers, then follow the preferred branch.
			snapshot := make([]int, len(caps))
			copy(snapshot, caps)
			stack = append(stack, thread{pc: inst.Y, pos: pos, caps: snapshot})
			pc = inst.X
			continue

		case OpSave:
			caps[inst.Slot] = pos
			pc++
			continue

		case OpProgress:
			// Loop guard: an iteration that consumed no input exits the
			// loop at X instead of spinning at the same position.
			if pos == caps[inst.Slot] {
				pc = inst.X
			} else {
				pc++
			}
			continue

		case OpAssert:
			if (inst.Assert == AnchorStart && pos == 0) ||
				(inst.Assert == AnchorEnd && pos == len(text)) {
				pc++
				continue
			}

		case OpBackref:
			// A group that has not captured yet fails the backreference
			// outright; it does not match the empty string.
			s, e := caps[2*inst.Group], caps[2*inst.Group+1]
			if s >= 0 && e >= 0 && strings.HasPrefix(text[pos:], text[s:e]) {
				pos += e - s
				pc++
				continue
			}

		case OpChar, OpClass, OpAny:
			if pos < len(text) {
				r, width := utf8.DecodeRuneInString(text[pos:])
				if inst.matchesRune(r) {
					pos += width
					pc++
					continue
				}
			}
		}

		// The current path failed; resume the most recent alternative.
		if len(stack) == 0 {
			return nil, nil
		}
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		pc, pos, caps = top.pc, top.pos, top.caps
	}
}

// buildMatch converts capture registers into a Match. Slots 0/1 hold the
// whole match; each group's pair follows.
func buildMatch(prog *Program, caps []int) *types.Match {
	m := &types.Match{
		Start:  caps[0],
		End:    caps[1],
		Groups: make([]types.Span, prog.NumGroups),
	}
	for g := 1; g <= prog.NumGroups; g++ {
		s, e := caps[2*g], caps[2*g+1]
		if s >= 0 && e >= 0 {
			m.Groups[g-1] = types.Span{Start: s, End: e}
		} else {
			m.Groups[g-1] = types.UnsetSpan
		}
	}
	return m
}
