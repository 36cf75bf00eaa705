package charkov

import (
	"go/build"
	"math/rand/v2"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
)

// newTestRand returns a deterministic random source for tests.
func newTestRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// compileWords feeds words into a fresh Counter and compiles it.
func compileWords(t testing.TB, words ...string) *Chain {
	t.Helper()
	c := NewCounter()
	for _, w := range words {
		c.Feed(w)
	}
	ch, err := Compile(c)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	return ch
}

// scriptedRand replays fixed draws, letting tests visit every alias bucket.
type scriptedRand struct {
	bucket int
	draw   uint64
}

func (s *scriptedRand) IntN(int) int          { return s.bucket }
func (s *scriptedRand) Uint64N(uint64) uint64 { return s.draw }

var (
	benchmarkWords []string
	wordsOnce      sync.Once
)

// createBenchmarkWords harvests lowercase identifiers from Go source files to
// use as a training wordlist for benchmarks.
func createBenchmarkWords() []string {
	wordsOnce.Do(func() {
		goRoot := build.Default.GOROOT
		filesToRead := []string{
			filepath.Join(goRoot, "src/net/http/server.go"),
			filepath.Join(goRoot, "src/go/parser/parser.go"),
			filepath.Join(goRoot, "src/encoding/json/encode.go"),
		}

		wordRegex := regexp.MustCompile(`\b[a-z]{3,}\b`)
		seen := make(map[string]struct{})
		for _, file := range filesToRead {
			content, err := os.ReadFile(file)
			if err != nil {
				continue
			}
			for _, w := range wordRegex.FindAllString(string(content), -1) {
				if _, ok := seen[w]; !ok {
					seen[w] = struct{}{}
					benchmarkWords = append(benchmarkWords, w)
				}
			}
		}
		if len(benchmarkWords) == 0 {
			benchmarkWords = strings.Fields("this is a fallback wordlist for benchmarking which is not very long but will prevent a crash")
		}
	})
	return benchmarkWords
}
