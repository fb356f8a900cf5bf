package delivery

import (
	"sync"

	"github.com/google/uuid"
)

// BatchTokenGenerator produces identifiers that correlate one flush attempt
// across log lines and the collector's records.
// Implemented by UUIDv7Generator (production) and FixedGenerator (tests).
type BatchTokenGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 batch tokens, so tokens
// sort by flush time when grepping collector logs.
//
// Stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate returns a new hyphenated UUIDv7 string.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined tokens for deterministic tests.
// Once the supplied tokens are exhausted it keeps returning the last one,
// since the number of flushes in a test is timing-dependent.
type FixedGenerator struct {
	mu     sync.Mutex
	tokens []string
	idx    int
}

// NewFixedGenerator creates a generator that returns tokens in order.
func NewFixedGenerator(tokens ...string) *FixedGenerator {
	return &FixedGenerator{tokens: tokens}
}

// Generate returns the next predetermined token.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.tokens) == 0 {
		return ""
	}
	token := g.tokens[g.idx]
	if g.idx < len(g.tokens)-1 {
		g.idx++
	}
	return token
}
