package regex

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vivekkdagar/deepgrep/pkg/types"
)

// runAt is a test helper: run prog at start with the default budget.
func runAt(t *testing.T, pattern, text string, start int) (*types.Match, error) {
	t.Helper()
	prog, err := Compile(pattern)
	require.NoError(t, err)
	return Run(prog, text, start, DefaultMaxSteps)
}

func TestRun_Basics(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		text    string
		start   int
		want    string // matched text, "" with wantNil for no match
		wantNil bool
	}{
		{"literal hit", "abc", "abcdef", 0, "abc", false},
		{"literal miss", "abc", "abxdef", 0, "", true},
		{"anchored start offset", "abc", "xabc", 1, "abc", false},
		{"dot matches any rune", "a.c", "axc", 0, "axc", false},
		{"dot does not match past end", "a.", "a", 0, "", true},
		{"class hit", "[a-c]x", "bx", 0, "bx", false},
		{"negated class", "[^0-9]", "q", 0, "q", false},
		{"negated class miss", "[^0-9]", "7", 0, "", true},
		{"alternation first branch", "cat|car", "cat", 0, "cat", false},
		{"alternation later branch", "cat|dog", "dog", 0, "dog", false},
		{"greedy star takes all", "a*", "aaab", 0, "aaa", false},
		{"lazy star takes none", "a*?", "aaab", 0, "", false},
		{"greedy plus", "a+", "aaa", 0, "aaa", false},
		{"lazy plus takes one", "a+?", "aaa", 0, "a", false},
		{"counted exact", "a{3}", "aaaa", 0, "aaa", false},
		{"counted too few", "a{3}", "aa", 0, "", true},
		{"counted range greedy", "a{1,3}", "aaaa", 0, "aaa", false},
		{"optional present", "ab?c", "abc", 0, "abc", false},
		{"optional absent", "ab?c", "ac", 0, "ac", false},
		{"empty match from star", "a*", "bb", 0, "", false},
		{"start anchor at zero", "^ab", "ab", 0, "ab", false},
		{"start anchor off zero", "^ab", "xab", 1, "", true},
		{"end anchor", "ab$", "ab", 0, "ab", false},
		{"end anchor miss", "ab$", "abc", 0, "", true},
		{"unicode rune", "é+", "ééx", 0, "éé", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := runAt(t, tt.pattern, tt.text, tt.start)
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, m)
				return
			}
			require.NotNil(t, m)
			assert.Equal(t, tt.want, m.Text(tt.text))
		})
	}
}

func TestRun_Captures(t *testing.T) {
	t.Run("single group", func(t *testing.T) {
		m, err := runAt(t, `(\d+)px`, "42px", 0)
		require.NoError(t, err)
		require.NotNil(t, m)
		require.Len(t, m.Groups, 1)
		text, ok := m.GroupText("42px", 1)
		require.True(t, ok)
		assert.Equal(t, "42", text)
	})

	t.Run("backreference", func(t *testing.T) {
		text := "say hello hello world"
		m, err := runAt(t, `(\w+) \1`, text, 4)
		require.NoError(t, err)
		require.NotNil(t, m)
		assert.Equal(t, "hello hello", m.Text(text))
		group, ok := m.GroupText(text, 1)
		require.True(t, ok)
		assert.Equal(t, "hello", group)
	})

	t.Run("unmatched branch leaves group unset", func(t *testing.T) {
		m, err := runAt(t, "(a)|(b)", "b", 0)
		require.NoError(t, err)
		require.NotNil(t, m)
		require.Len(t, m.Groups, 2)
		assert.False(t, m.Groups[0].IsSet())
		assert.True(t, m.Groups[1].IsSet())
	})

	t.Run("backreference to unset group fails", func(t *testing.T) {
		// Group 1 never participates when the second branch matches, so
		// the trailing \1 cannot succeed.
		m, err := runAt(t, `(?:(a)x|b)\1`, "b", 0)
		require.NoError(t, err)
		assert.Nil(t, m)
	})

	t.Run("repeated group keeps last capture", func(t *testing.T) {
		text := "ab"
		m, err := runAt(t, "(.)+", text, 0)
		require.NoError(t, err)
		require.NotNil(t, m)
		group, ok := m.GroupText(text, 1)
		require.True(t, ok)
		assert.Equal(t, "b", group)
	})
}

func TestRun_NullableLoopBodies(t *testing.T) {
	// Loops whose body can match empty must terminate instead of spinning
	// at one position until the step budget dies.
	tests := []struct {
		name    string
		pattern string
		text    string
		want    string
	}{
		{"star of nullable group", "(a*)*", "bb", ""},
		{"star of nullable group consumes", "(a*)*", "aaa", "aaa"},
		{"plus of nullable group", "(a*)+", "bb", ""},
		{"optional in star then literal", "(a?)*x", "aax", "aax"},
		{"optional in star no prefix", "(a?)*x", "x", "x"},
		{"lazy nullable loop", "(a*)*?b", "aab", "aab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := runAt(t, tt.pattern, tt.text, 0)
			require.NoError(t, err)
			require.NotNil(t, m)
			assert.Equal(t, tt.want, m.Text(tt.text))
		})
	}
}

func TestRun_LeftmostFirst(t *testing.T) {
	// The first branch wins even when a later branch would match more.
	text := "abc"
	m, err := runAt(t, "a|abc", text, 0)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "a", m.Text(text))
}

func TestRun_StepLimit(t *testing.T) {
	t.Run("catastrophic backtracking hits the budget", func(t *testing.T) {
		text := strings.Repeat("a", 40) + "!"
		prog, err := Compile("(a+)+$")
		require.NoError(t, err)

		_, err = Run(prog, text, 0, DefaultMaxSteps)
		assert.ErrorIs(t, err, types.ErrStepLimit)
	})

	t.Run("tiny budget fails fast", func(t *testing.T) {
		prog, err := Compile("abc")
		require.NoError(t, err)

		_, err = Run(prog, "abc", 0, 2)
		assert.ErrorIs(t, err, types.ErrStepLimit)
	})

	t.Run("zero budget selects the default", func(t *testing.T) {
		prog, err := Compile("abc")
		require.NoError(t, err)

		m, err := Run(prog, "abc", 0, 0)
		require.NoError(t, err)
		assert.NotNil(t, m)
	})
}

func TestRun_Idempotent(t *testing.T) {
	prog := MustCompile(`(\w+)@(\w+)`)
	text := "mail me at dev@example please"

	first, err := Run(prog, text, 11, DefaultMaxSteps)
	require.NoError(t, err)
	second, err := Run(prog, text, 11, DefaultMaxSteps)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
