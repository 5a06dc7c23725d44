package testutil

// DefaultRunID is what FixedRunID returns for an empty id.
const DefaultRunID = "test-run-default"

// FixedRunID hands out the same run identifier every time, so repeated
// harness runs produce identical results.
type FixedRunID struct {
	id string
}

// NewFixedRunID creates a generator for id, or DefaultRunID when id is
// empty.
func NewFixedRunID(id string) *FixedRunID {
	if id == "" {
		id = DefaultRunID
	}
	return &FixedRunID{id: id}
}

// Generate returns the fixed id.
func (g *FixedRunID) Generate() string {
	return g.id
}
