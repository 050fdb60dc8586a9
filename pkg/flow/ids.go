package flow

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// Id prefixes passed to [IDGenerator.NewID].
const (
	KindNode       = "node"
	KindConnection = "conn"
)

// IDGenerator allocates opaque ids for nodes and connections.
// kind is [KindNode] or [KindConnection]. The graph retries on collision,
// so generators only need to be unlikely to repeat.
type IDGenerator interface {
	NewID(kind string) string
}

// UUIDGenerator produces ids of the form "<kind>-<uuid v4>".
type UUIDGenerator struct{}

// NewID implements [IDGenerator].
func (UUIDGenerator) NewID(kind string) string {
	return kind + "-" + uuid.NewString()
}

// Sequence produces monotonic ids of the form "<kind>-<n>", shared across
// kinds. It is deterministic and intended for tests and reproducible exports.
type Sequence struct {
	next atomic.Int64
}

// NewSequence returns a Sequence starting at 1.
func NewSequence() *Sequence { return &Sequence{} }

// NewID implements [IDGenerator].
func (s *Sequence) NewID(kind string) string {
	return kind + "-" + strconv.FormatInt(s.next.Add(1), 10)
}

var (
	_ IDGenerator = UUIDGenerator{}
	_ IDGenerator = (*Sequence)(nil)
)
