// Package types defines the shared value types exchanged between the
// pattern engine, the semantic matcher, the history store, and the MCP
// request layer.
//
// The central type is Match, the result of a single pattern match:
//
//	m := types.Match{Start: 4, End: 9}
//	text[m.Start:m.End] // the matched substring
//
// Capture groups are recorded as Spans; a group that never participated in
// the match has an unset span (both offsets -1).
//
// The package also carries the engine error taxonomy. A pattern that fails
// to parse produces a *SyntaxError with the rune position of the problem.
// A match attempt that exhausts its step budget fails with ErrStepLimit,
// which is deliberately distinct from "no match": an aborted search must
// never be reported as a negative one.
package types
