// Package names generates adjective-noun display names.
package names

import (
	"embed"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"sync"
	"time"
)

//go:embed data/*.txt
var bundled embed.FS

type Generator struct {
	mu         sync.Mutex
	adjectives []string
	nouns      []string
	rng        *rand.Rand
}

func New(adjectives, nouns []string, seed int64) (*Generator, error) {
	if len(adjectives) == 0 {
		return nil, fmt.Errorf("names: adjective list is empty")
	}
	if len(nouns) == 0 {
		return nil, fmt.Errorf("names: noun list is empty")
	}
	return &Generator{
		adjectives: adjectives,
		nouns:      nouns,
		rng:        rand.New(rand.NewSource(seed)),
	}, nil
}

// Load reads one word per line from each file. Blank lines are skipped.
func Load(nounsPath, adjectivesPath string) (*Generator, error) {
	nouns, err := readLines(nounsPath)
	if err != nil {
		return nil, err
	}
	adjectives, err := readLines(adjectivesPath)
	if err != nil {
		return nil, err
	}
	return New(adjectives, nouns, time.Now().UnixNano())
}

// Default uses the word lists compiled into the binary.
func Default() *Generator {
	nouns, _ := bundled.ReadFile("data/animals.txt")
	adjectives, _ := bundled.ReadFile("data/adjectives.txt")
	g, err := New(splitLines(string(adjectives)), splitLines(string(nouns)), time.Now().UnixNano())
	if err != nil {
		panic(err)
	}
	return g
}

// Next returns a name like "swift-otter". Names may repeat.
func (g *Generator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	adj := g.adjectives[g.rng.Intn(len(g.adjectives))]
	noun := g.nouns[g.rng.Intn(len(g.nouns))]
	return adj + "-" + noun
}

func readLines(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("names: read %s: %w", path, err)
	}
	return splitLines(string(raw)), nil
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
