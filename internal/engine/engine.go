// Package engine exposes the public contract of the pattern engine: take a
// raw pattern and a text, return the matched substrings in order.
//
// The Engine owns the only shared mutable state in the matching path, a
// bounded LRU cache of compiled programs keyed by pattern string. Programs
// themselves are immutable, so concurrent searches may share them freely;
// racing cache misses at worst compile the same pattern twice before the
// cache converges on one entry.
package engine

import (
	"context"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/vivekkdagar/deepgrep/internal/regex"
	"github.com/vivekkdagar/deepgrep/pkg/types"
)

// Config tunes an Engine.
type Config struct {
	// CacheSize bounds the compiled-pattern LRU cache.
	CacheSize int
	// MaxSteps bounds the instructions executed per match attempt.
	MaxSteps int
	// LineWorkers bounds the goroutines used by SearchLines.
	LineWorkers int
}

// DefaultConfig returns the standard engine tuning.
func DefaultConfig() Config {
	return Config{
		CacheSize:   512,
		MaxSteps:    regex.DefaultMaxSteps,
		LineWorkers: 8,
	}
}

// Engine compiles patterns on demand, caches the programs, and drives the
// match iterator over subject texts.
type Engine struct {
	cache       *lru.Cache[string, *regex.Program]
	maxSteps    int
	lineWorkers int
}

// New creates an Engine with the given configuration. Zero config fields
// fall back to DefaultConfig values.
func New(cfg Config) (*Engine, error) {
	def := DefaultConfig()
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = def.CacheSize
	}
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = def.MaxSteps
	}
	if cfg.LineWorkers <= 0 {
		cfg.LineWorkers = def.LineWorkers
	}

	cache, err := lru.New[string, *regex.Program](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create pattern cache: %w", err)
	}
	return &Engine{
		cache:       cache,
		maxSteps:    cfg.MaxSteps,
		lineWorkers: cfg.LineWorkers,
	}, nil
}

// Compiled returns the cached program for pattern, compiling and caching
// it on a miss. Compilation failures are never cached; a bad pattern fails
// identically on every call.
func (e *Engine) Compiled(pattern string) (*regex.Program, error) {
	if prog, ok := e.cache.Get(pattern); ok {
		return prog, nil
	}
	prog, err := regex.Compile(pattern)
	if err != nil {
		return nil, err
	}
	e.cache.Add(pattern, prog)
	return prog, nil
}

// Search returns the substrings of text matched by pattern, in match
// order. An empty result means "no match", not an error; errors are a
// *types.SyntaxError or types.ErrStepLimit.
func (e *Engine) Search(pattern, text string) ([]string, error) {
	matches, err := e.FindAll(pattern, text)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(matches))
	for i := range matches {
		out[i] = matches[i].Text(text)
	}
	return out, nil
}

// FindAll returns the full match results, including capture group spans.
func (e *Engine) FindAll(pattern, text string) ([]types.Match, error) {
	prog, err := e.Compiled(pattern)
	if err != nil {
		return nil, err
	}
	return regex.FindAll(prog, text, e.maxSteps)
}

// Match reports whether pattern matches anywhere in line.
func (e *Engine) Match(pattern, line string) (bool, error) {
	prog, err := e.Compiled(pattern)
	if err != nil {
		return false, err
	}
	m, err := regex.NewIterator(prog, line, e.maxSteps).Next()
	if err != nil {
		return false, err
	}
	return m != nil, nil
}

// SearchLines splits text on newlines and searches each line, preserving
// line order in the flattened result. Lines are processed concurrently
// with a bounded worker count; the compiled program is shared across
// workers.
func (e *Engine) SearchLines(ctx context.Context, pattern, text string) ([]string, error) {
	prog, err := e.Compiled(pattern)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(text, "\n")
	perLine := make([][]string, len(lines))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.lineWorkers)
	for i, line := range lines {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			matches, err := regex.FindAll(prog, line, e.maxSteps)
			if err != nil {
				return fmt.Errorf("line %d: %w", i+1, err)
			}
			out := make([]string, len(matches))
			for j := range matches {
				out[j] = matches[j].Text(line)
			}
			perLine[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var flat []string
	for _, lineMatches := range perLine {
		flat = append(flat, lineMatches...)
	}
	if flat == nil {
		flat = []string{}
	}
	return flat, nil
}

// CacheLen reports the number of cached compiled patterns.
func (e *Engine) CacheLen() int {
	return e.cache.Len()
}
