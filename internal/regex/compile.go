package regex

// Compile parses and lowers a pattern into an executable Program.
//
// Compilation is a pure function of the pattern string: two calls with the
// same pattern produce programs with identical instructions.
func Compile(pattern string) (*Program, error) {
	root, numGroups, err := Parse(pattern)
	if err != nil {
		return nil, err
	}

	c := &compiler{markBase: 2 * (numGroups + 1)}
	// Slot 0/1 bracket the whole match.
	c.emit(Inst{Op: OpSave, Slot: 0})
	c.compileNode(root)
	c.emit(Inst{Op: OpSave, Slot: 1})
	c.emit(Inst{Op: OpMatch})

	return &Program{
		Insts:     c.insts,
		NumGroups: numGroups,
		NumMarks:  c.numMarks,
		Pattern:   pattern,
	}, nil
}

// MustCompile compiles a pattern known to be valid and panics otherwise.
func MustCompile(pattern string) *Program {
	prog, err := Compile(pattern)
	if err != nil {
		panic("regex: Compile(`" + pattern + "`): " + err.Error())
	}
	return prog
}

// compiler lowers an AST depth-first into a linear instruction sequence.
// Loops around a nullable body get a mark slot past the capture slots; see
// compileStar.
type compiler struct {
	insts    []Inst
	markBase int
	numMarks int
}

func (c *compiler) emit(i Inst) int {
	c.insts = append(c.insts, i)
	return len(c.insts) - 1
}

func (c *compiler) next() int {
	return len(c.insts)
}

func (c *compiler) newMark() int {
	slot := c.markBase + c.numMarks
	c.numMarks++
	return slot
}

func (c *compiler) compileNode(n Node) {
	switch v := n.(type) {
	case *Literal:
		c.emit(Inst{Op: OpChar, Ch: v.Ch})

	case *CharClass:
		c.emit(Inst{Op: OpClass, Ranges: v.Ranges, Negated: v.Negated})

	case *AnyChar:
		c.emit(Inst{Op: OpAny})

	case *Concat:
		for _, child := range v.Nodes {
			c.compileNode(child)
		}

	case *Alternate:
		c.compileAlternate(v)

	case *Repeat:
		c.compileRepeat(v)

	case *Group:
		if v.Capturing() {
			c.emit(Inst{Op: OpSave, Slot: 2 * v.Index})
			c.compileNode(v.Node)
			c.emit(Inst{Op: OpSave, Slot: 2*v.Index + 1})
		} else {
			c.compileNode(v.Node)
		}

	case *Backref:
		c.emit(Inst{Op: OpBackref, Group: v.Index})

	case *Anchor:
		c.emit(Inst{Op: OpAssert, Assert: v.K})
	}
}

// compileAlternate chains one split per branch boundary. Branch order in
// the split targets is what gives leftmost-first semantics: the VM explores
// X before the pushed Y alternative.
func (c *compiler) compileAlternate(alt *Alternate) {
	var jmps []int
	for i, branch := range alt.Nodes {
		last := i == len(alt.Nodes)-1
		if last {
			c.compileNode(branch)
			break
		}
		split := c.emit(Inst{Op: OpSplit})
		c.insts[split].X = c.next()
		c.compileNode(branch)
		jmps = append(jmps, c.emit(Inst{Op: OpJmp}))
		c.insts[split].Y = c.next()
	}
	end := c.next()
	for _, j := range jmps {
		c.insts[j].X = end
	}
}

// compileRepeat lowers quantifiers. Greedy repetition compiles splits that
// prefer the body branch (longer repetition explored first); lazy prefers
// the exit branch. Counted repeats expand into copies of the body.
func (c *compiler) compileRepeat(rep *Repeat) {
	switch {
	case rep.Min == 0 && rep.Max == InfiniteRepeat:
		c.compileStar(rep.Node, rep.Greedy)

	case rep.Min == 1 && rep.Max == InfiniteRepeat:
		c.compilePlus(rep.Node, rep.Greedy)

	default:
		for i := 0; i < rep.Min; i++ {
			c.compileNode(rep.Node)
		}
		if rep.Max == InfiniteRepeat {
			c.compileStar(rep.Node, rep.Greedy)
			return
		}
		// Optional tail: each split can bail straight to the end, since
		// skipping iteration i forfeits all later iterations too.
		var splits []int
		for i := rep.Min; i < rep.Max; i++ {
			split := c.emit(Inst{Op: OpSplit})
			if rep.Greedy {
				c.insts[split].X = c.next()
			} else {
				c.insts[split].Y = c.next()
			}
			c.compileNode(rep.Node)
			splits = append(splits, split)
		}
		end := c.next()
		for _, s := range splits {
			if rep.Greedy {
				c.insts[s].Y = end
			} else {
				c.insts[s].X = end
			}
		}
	}
}

// compileStar emits a zero-or-more loop around the body.
//
// A body that can match empty would loop forever at one position, each
// pass pushing another backtrack entry until the step budget dies. Such
// loops get a guard: the iteration records its entry position in a mark
// slot (a plain save past the capture slots, so backtracking restores it),
// and a progress check after the body exits the loop instead of
// re-entering when nothing was consumed.
func (c *compiler) compileStar(body Node, greedy bool) {
	split := c.emit(Inst{Op: OpSplit})
	bodyStart := c.next()

	var progress int
	guarded := nullable(body)
	if guarded {
		mark := c.newMark()
		c.emit(Inst{Op: OpSave, Slot: mark})
		c.compileNode(body)
		progress = c.emit(Inst{Op: OpProgress, Slot: mark})
	} else {
		c.compileNode(body)
	}
	c.emit(Inst{Op: OpJmp, X: split})

	end := c.next()
	if guarded {
		c.insts[progress].X = end
	}
	if greedy {
		c.insts[split].X, c.insts[split].Y = bodyStart, end
	} else {
		c.insts[split].X, c.insts[split].Y = end, bodyStart
	}
}

// compilePlus emits a one-or-more loop. The first iteration is mandatory
// and may legitimately consume nothing; the guard only refuses to go
// around again after an empty pass.
func (c *compiler) compilePlus(body Node, greedy bool) {
	bodyStart := c.next()

	var progress int
	guarded := nullable(body)
	if guarded {
		mark := c.newMark()
		c.emit(Inst{Op: OpSave, Slot: mark})
		c.compileNode(body)
		progress = c.emit(Inst{Op: OpProgress, Slot: mark})
	} else {
		c.compileNode(body)
	}

	split := c.emit(Inst{Op: OpSplit})
	end := c.next()
	if guarded {
		c.insts[progress].X = end
	}
	if greedy {
		c.insts[split].X, c.insts[split].Y = bodyStart, end
	} else {
		c.insts[split].X, c.insts[split].Y = end, bodyStart
	}
}

// nullable reports whether a node can match the empty string. Backrefs
// count as nullable since the referenced group may have captured "".
func nullable(n Node) bool {
	switch v := n.(type) {
	case *Literal, *CharClass, *AnyChar:
		return false
	case *Anchor, *Backref:
		return true
	case *Concat:
		for _, child := range v.Nodes {
			if !nullable(child) {
				return false
			}
		}
		return true
	case *Alternate:
		for _, child := range v.Nodes {
			if nullable(child) {
				return true
			}
		}
		return false
	case *Repeat:
		return v.Min == 0 || nullable(v.Node)
	case *Group:
		return nullable(v.Node)
	}
	return false
}
