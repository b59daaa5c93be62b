package regex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_Deterministic(t *testing.T) {
	patterns := []string{
		"abc",
		`(\w+) \1`,
		"a{2,5}?",
		"(?:cat|dog)+",
		`^[a-z]+\d*$`,
	}

	for _, pattern := range patterns {
		t.Run(pattern, func(t *testing.T) {
			first, err := Compile(pattern)
			require.NoError(t, err)
			second, err := Compile(pattern)
			require.NoError(t, err)

			assert.Equal(t, first.Insts, second.Insts)
			assert.Equal(t, first.NumGroups, second.NumGroups)
		})
	}
}

func TestCompile_LiteralProgram(t *testing.T) {
	prog, err := Compile("ab")
	require.NoError(t, err)

	// save 0, char a, char b, save 1, match
	require.Len(t, prog.Insts, 5)
	assert.Equal(t, OpSave, prog.Insts[0].Op)
	assert.Equal(t, 0, prog.Insts[0].Slot)
	assert.Equal(t, OpChar, prog.Insts[1].Op)
	assert.Equal(t, 'a', prog.Insts[1].Ch)
	assert.Equal(t, OpChar, prog.Insts[2].Op)
	assert.Equal(t, 'b', prog.Insts[2].Ch)
	assert.Equal(t, OpSave, prog.Insts[3].Op)
	assert.Equal(t, 1, prog.Insts[3].Slot)
	assert.Equal(t, OpMatch, prog.Insts[4].Op)
}

func TestCompile_SplitPriority(t *testing.T) {
	t.Run("greedy star prefers the body", func(t *testing.T) {
		prog, err := Compile("a*")
		require.NoError(t, err)

		// save 0, split, char a, jmp, save 1, match
		require.Len(t, prog.Insts, 6)
		split := prog.Insts[1]
		require.Equal(t, OpSplit, split.Op)
		assert.Equal(t, 2, split.X, "preferred branch enters the body")
		assert.Equal(t, 4, split.Y, "fallback branch exits the loop")
	})

	t.Run("lazy star prefers the exit", func(t *testing.T) {
		prog, err := Compile("a*?")
		require.NoError(t, err)

		require.Len(t, prog.Insts, 6)
		split := prog.Insts[1]
		require.Equal(t, OpSplit, split.Op)
		assert.Equal(t, 4, split.X, "preferred branch exits the loop")
		assert.Equal(t, 2, split.Y, "fallback branch enters the body")
	})
}

func TestCompile_GroupSlots(t *testing.T) {
	prog, err := Compile("(a)(?:b)(c)")
	require.NoError(t, err)

	assert.Equal(t, 2, prog.NumGroups)
	assert.Equal(t, 6, prog.NumSlots())

	var slots []int
	for _, inst := range prog.Insts {
		if inst.Op == OpSave {
			slots = append(slots, inst.Slot)
		}
	}
	// Whole match brackets plus one pair per capturing group; the
	// non-capturing group emits no saves.
	assert.Equal(t, []int{0, 2, 3, 4, 5, 1}, slots)
}

func TestCompile_NullableLoopGuard(t *testing.T) {
	t.Run("nullable body gets a guard", func(t *testing.T) {
		prog, err := Compile("(a*)*")
		require.NoError(t, err)

		var progress int
		for _, inst := range prog.Insts {
			if inst.Op == OpProgress {
				progress++
			}
		}
		// Only the outer loop can iterate without consuming input; the
		// inner loop's body always eats a rune.
		assert.Equal(t, 1, progress)
		assert.Equal(t, 1, prog.NumMarks)
		assert.Equal(t, 5, prog.NumSlots(), "capture slots plus one mark")
	})

	t.Run("consuming body stays unguarded", func(t *testing.T) {
		prog, err := Compile("a*")
		require.NoError(t, err)

		for _, inst := range prog.Insts {
			assert.NotEqual(t, OpProgress, inst.Op)
		}
		assert.Equal(t, 0, prog.NumMarks)
	})
}

func TestCompile_CountedRepeatExpansion(t *testing.T) {
	prog, err := Compile("a{2,4}")
	require.NoError(t, err)

	var chars, splits int
	for _, inst := range prog.Insts {
		switch inst.Op {
		case OpChar:
			chars++
		case OpSplit:
			splits++
		}
	}
	// Two mandatory copies plus two optional ones, each guarded by a split.
	assert.Equal(t, 4, chars)
	assert.Equal(t, 2, splits)
}

func TestCompile_ErrorsPropagate(t *testing.T) {
	_, err := Compile("(abc")
	assert.Error(t, err)

	_, err = Compile("")
	assert.Error(t, err)
}

func TestMustCompile_PanicsOnInvalid(t *testing.T) {
	assert.Panics(t, func() {
		MustCompile("(abc")
	})
	assert.NotPanics(t, func() {
		MustCompile("abc")
	})
}
