// Package regex implements the pattern-matching engine: a from-scratch
// backtracking regular-expression implementation with capturing groups and
// backreferences.
//
// The pipeline has three stages:
//
//  1. Parse: a recursive-descent parser turns the pattern string into an
//     AST (see ast.go). Capturing groups are numbered from 1 in order of
//     their opening parenthesis.
//  2. Compile: a lowering pass walks the AST depth-first and emits a linear
//     Program of matching instructions (char, class, split, save, backref,
//     assert, match). Split instructions order their targets by priority,
//     which is what realizes greedy vs lazy quantifiers under backtracking.
//  3. Run: a virtual machine executes the Program against an input string
//     with an explicit stack of saved threads instead of native recursion,
//     so backtracking depth is bounded and inspectable. Every executed
//     instruction counts against a step budget; exceeding it aborts the
//     attempt with types.ErrStepLimit.
//
// Basic usage:
//
//	prog, err := regex.Compile(`(\w+) \1`)
//	if err != nil {
//	    // *types.SyntaxError with the failing position
//	}
//	matches, err := regex.FindAll(prog, "hello hello", regex.DefaultMaxSteps)
//
// A compiled Program is immutable and safe for concurrent matching; each
// Run call owns its own thread state.
//
// Matching is leftmost-first, Perl style: the first accepting path wins,
// alternatives are tried left to right, and greedy quantifiers prefer the
// longer repetition. Backreferences make the language non-regular, which is
// why the engine backtracks rather than simulating a finite automaton; the
// step budget contains the pathological cases that come with that choice.
// A backreference to a group that has not captured yet fails to match
// rather than matching the empty string. Loops whose body can match empty
// carry a progress guard so patterns like (a*)* terminate instead of
// spinning the budget away at one position.
package regex
