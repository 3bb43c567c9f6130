package placeholder

import (
	"github.com/google/uuid"
)

// IDLength is the length of a generated identifier: the first 12 characters
// of a v4 UUID ("xxxxxxxx-xxx").
const IDLength = 12

// IDGenerator issues identifiers that are unique within one extraction run.
type IDGenerator struct {
	issued map[string]struct{}
	source func() string
}

// NewIDGenerator creates a generator backed by random UUIDs.
func NewIDGenerator() *IDGenerator {
	return newIDGenerator(func() string { return uuid.NewString() })
}

func newIDGenerator(source func() string) *IDGenerator {
	return &IDGenerator{
		issued: make(map[string]struct{}),
		source: source,
	}
}

// Next returns a fresh identifier. A truncated UUID that collides with one
// already issued in this run is discarded and redrawn.
func (g *IDGenerator) Next() string {
	for {
		id := g.source()
		if len(id) > IDLength {
			id = id[:IDLength]
		}
		if _, dup := g.issued[id]; dup {
			continue
		}
		g.issued[id] = struct{}{}
		return id
	}
}

// Issued reports whether id was produced by this generator.
func (g *IDGenerator) Issued(id string) bool {
	_, ok := g.issued[id]
	return ok
}

// Count returns how many identifiers were issued.
func (g *IDGenerator) Count() int {
	return len(g.issued)
}
