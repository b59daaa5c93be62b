package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vivekkdagar/deepgrep/pkg/types"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	eng, err := New(DefaultConfig())
	require.NoError(t, err)
	return eng
}

func TestEngine_Search(t *testing.T) {
	eng := newTestEngine(t)

	tests := []struct {
		name    string
		pattern string
		text    string
		want    []string
	}{
		{"digit runs", `\d+`, "a14 b32 c404", []string{"14", "32", "404"}},
		{"doubled word", `(\w+) \1`, "say hello hello world", []string{"hello hello"}},
		{"no matches is empty not nil", "z+", "abc", []string{}},
		{"greedy vs text", "a+", "aaa bb aa", []string{"aaa", "aa"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := eng.Search(tt.pattern, tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEngine_SearchErrors(t *testing.T) {
	eng := newTestEngine(t)

	t.Run("syntax error carries position", func(t *testing.T) {
		_, err := eng.Search("(abc", "whatever")
		require.Error(t, err)

		var syntaxErr *types.SyntaxError
		require.True(t, errors.As(err, &syntaxErr))
		assert.Equal(t, 0, syntaxErr.Pos)
	})

	t.Run("empty pattern", func(t *testing.T) {
		_, err := eng.Search("", "text")
		assert.ErrorIs(t, err, types.ErrEmptyPattern)
	})

	t.Run("step limit surfaces", func(t *testing.T) {
		_, err := eng.Search("(a+)+$", strings.Repeat("a", 40)+"!")
		assert.ErrorIs(t, err, types.ErrStepLimit)
	})
}

func TestEngine_CompiledCache(t *testing.T) {
	eng := newTestEngine(t)

	first, err := eng.Compiled(`\d+`)
	require.NoError(t, err)
	second, err := eng.Compiled(`\d+`)
	require.NoError(t, err)

	assert.Same(t, first, second, "cache hit must return the same program")
	assert.Equal(t, 1, eng.CacheLen())

	_, err = eng.Compiled(`\w+`)
	require.NoError(t, err)
	assert.Equal(t, 2, eng.CacheLen())
}

func TestEngine_BadPatternsNeverCached(t *testing.T) {
	eng := newTestEngine(t)

	for i := 0; i < 3; i++ {
		_, err := eng.Compiled("(abc")
		require.Error(t, err)
	}
	assert.Equal(t, 0, eng.CacheLen())
}

func TestEngine_CacheEviction(t *testing.T) {
	eng, err := New(Config{CacheSize: 2})
	require.NoError(t, err)

	for _, p := range []string{"a", "b", "c"} {
		_, err := eng.Compiled(p)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, eng.CacheLen())

	// "a" was evicted; recompiling it works and evicts the next oldest.
	_, err = eng.Compiled("a")
	require.NoError(t, err)
	assert.Equal(t, 2, eng.CacheLen())
}

func TestEngine_Match(t *testing.T) {
	eng := newTestEngine(t)

	ok, err := eng.Match(`\d+`, "order 66")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = eng.Match(`\d+`, "no digits here")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEngine_FindAll_Groups(t *testing.T) {
	eng := newTestEngine(t)

	text := "width=42 height=7"
	matches, err := eng.FindAll(`(\w+)=(\d+)`, text)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	for i, want := range [][2]string{{"width", "42"}, {"height", "7"}} {
		key, ok := matches[i].GroupText(text, 1)
		require.True(t, ok)
		assert.Equal(t, want[0], key)
		value, ok := matches[i].GroupText(text, 2)
		require.True(t, ok)
		assert.Equal(t, want[1], value)
	}
}

func TestEngine_SearchLines(t *testing.T) {
	eng := newTestEngine(t)

	t.Run("results keep line order", func(t *testing.T) {
		text := "a1\nno digits\nb22 c3\nd4"
		got, err := eng.SearchLines(context.Background(), `\d+`, text)
		require.NoError(t, err)
		assert.Equal(t, []string{"1", "22", "3", "4"}, got)
	})

	t.Run("no matches is empty not nil", func(t *testing.T) {
		got, err := eng.SearchLines(context.Background(), "z+", "abc\ndef")
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("line errors identify the line", func(t *testing.T) {
		text := "fine\n" + strings.Repeat("a", 40) + "!"
		_, err := eng.SearchLines(context.Background(), "(a+)+$", text)
		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrStepLimit)
		assert.Contains(t, err.Error(), "line 2")
	})

	t.Run("cancelled context stops the search", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := eng.SearchLines(ctx, `\d+`, strings.Repeat("line\n", 100))
		assert.Error(t, err)
	})
}

func TestEngine_ConcurrentSearches(t *testing.T) {
	eng := newTestEngine(t)

	// Hammer one shared pattern from many goroutines; the race detector
	// covers the cache and the shared program.
	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 50; j++ {
				got, err := eng.Search(`\d+`, "a14 b32 c404")
				if err != nil || len(got) != 3 {
					t.Errorf("Search failed: %v %v", got, err)
					return
				}
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
