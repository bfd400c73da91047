package formdata

import (
	"math/rand"
	"sync"
	"time"
)

const (
	boundaryLen      = 16
	boundaryAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// BoundarySource supplies boundary tokens for prepared bodies.
type BoundarySource interface {
	Boundary() string
}

// Generator produces random alphanumeric boundary tokens.
// It is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewGenerator creates a generator drawing from src.
func NewGenerator(src rand.Source) *Generator {
	return &Generator{rnd: rand.New(src)}
}

// Boundary returns a fresh token.
func (g *Generator) Boundary() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	buf := make([]byte, boundaryLen)
	for i := range buf {
		buf[i] = boundaryAlphabet[g.rnd.Intn(len(boundaryAlphabet))]
	}
	return string(buf)
}

// defaultGenerator backs every Form created without WithBoundarySource.
var defaultGenerator = NewGenerator(rand.NewSource(time.Now().UnixNano()))

// NewBoundary returns a token from the process-wide generator.
func NewBoundary() string {
	return defaultGenerator.Boundary()
}
