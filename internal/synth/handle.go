package synth

import "github.com/google/uuid"

// HandleGenerator mints module handles. Implemented by UUIDv7Generator
// (production) and FixedGenerator (tests).
type HandleGenerator interface {
	Generate() uuid.UUID
}

// UUIDv7Generator generates time-sortable UUIDv7 handles.
//
// UUIDv7 embeds a timestamp in the most significant bits, so handles sort by
// creation time - convenient when dumping a patch for diagnostics.
//
// Thread-safety: stateless, safe for concurrent use.
type UUIDv7Generator struct{}

// Generate mints a new UUIDv7 handle.
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}

// FixedGenerator returns predetermined handles for testing.
//
// This enables deterministic tests and golden snapshot comparison: tests
// provide a known sequence of handles and verify exact introspection output.
type FixedGenerator struct {
	handles []uuid.UUID
	idx     int
}

// NewFixedGenerator creates a generator that returns handles in order.
// Handles are given as canonical UUID strings; invalid strings panic, which
// is fine for test fixtures.
func NewFixedGenerator(handles ...string) *FixedGenerator {
	g := &FixedGenerator{handles: make([]uuid.UUID, len(handles))}
	for i, h := range handles {
		g.handles[i] = uuid.MustParse(h)
	}
	return g
}

// Generate returns the next predetermined handle.
// Panics if all handles have been consumed - a fail-fast signal that the
// test created more modules than it declared handles for.
func (g *FixedGenerator) Generate() uuid.UUID {
	if g.idx >= len(g.handles) {
		panic("synth: FixedGenerator exhausted")
	}
	h := g.handles[g.idx]
	g.idx++
	return h
}
