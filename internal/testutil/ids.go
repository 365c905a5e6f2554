package testutil

import (
	"fmt"
	"sync"
)

// SequenceGenerator is a domain.IDGenerator that numbers ids in call order.
//
// NewID("sp") returns "sp_1", then "sp_2", and so on; the counter is shared
// across prefixes so every id in a run is unique. An empty prefix yields
// "id_N".
type SequenceGenerator struct {
	mu sync.Mutex
	n  int
}

// NewSequenceGenerator creates a generator whose first id ends in 1.
func NewSequenceGenerator() *SequenceGenerator {
	return &SequenceGenerator{}
}

func (g *SequenceGenerator) NewID(prefix string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	if prefix == "" {
		prefix = "id"
	}
	return fmt.Sprintf("%s_%d", prefix, g.n)
}

// Reset restarts numbering at 1.
func (g *SequenceGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n = 0
}

// FixedGenerator returns predetermined ids in order, ignoring the prefix.
//
// Panics once all ids are consumed, which catches tests that create more
// entities than they expect.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedGenerator creates a generator that returns ids in order.
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

func (g *FixedGenerator) NewID(string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.idx >= len(g.ids) {
		panic("FixedGenerator: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
