package integration

import (
	"strings"
	"testing"

	"github.com/vivekkdagar/deepgrep/internal/engine"
	"github.com/vivekkdagar/deepgrep/internal/regex"
)

var benchText = strings.Repeat("error id=14 warn id=32 info plain text here\n", 200)

func BenchmarkCompile(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := regex.Compile(`(\w+)=(\d+)`); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkFindAll(b *testing.B) {
	prog := regex.MustCompile(`id=\d+`)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := regex.FindAll(prog, benchText, regex.DefaultMaxSteps); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEngineSearchCached(b *testing.B) {
	eng, err := engine.New(engine.DefaultConfig())
	if err != nil {
		b.Fatal(err)
	}
	// Warm the compiled-pattern cache so iterations measure matching only.
	if _, err := eng.Search(`id=\d+`, benchText); err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := eng.Search(`id=\d+`, benchText); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkBacktrackingBackref(b *testing.B) {
	prog := regex.MustCompile(`(\w+) \1`)
	text := strings.Repeat("alpha beta gamma gamma delta\n", 50)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := regex.FindAll(prog, text, regex.DefaultMaxSteps); err != nil {
			b.Fatal(err)
		}
	}
}
