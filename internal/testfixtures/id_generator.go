package testfixtures

import (
	"fmt"
	"sync"
)

// IDGenerator hands out sequential identifiers like "res-1", "res-2" so test
// assertions can name the rows they expect instead of matching UUIDs.
type IDGenerator struct {
	mu     sync.Mutex
	prefix string
	next   uint64
}

// NewIDGenerator returns a generator using prefix, defaulting to "id".
func NewIDGenerator(prefix string) *IDGenerator {
	if prefix == "" {
		prefix = "id"
	}
	return &IDGenerator{prefix: prefix}
}

// Next returns the following identifier in the sequence.
func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("%s-%d", g.prefix, g.next)
}

// NextFunc adapts the generator to the func() string shape services expect.
func (g *IDGenerator) NextFunc() func() string {
	if g == nil {
		return func() string { return "" }
	}
	return g.Next
}

// SetPrefix changes the prefix for subsequent identifiers.
func (g *IDGenerator) SetPrefix(prefix string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prefix = prefix
}

// SetCounter rewinds or fast-forwards the sequence. SetCounter(0) restarts it.
func (g *IDGenerator) SetCounter(counter uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next = counter
}
