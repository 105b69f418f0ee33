package ledger

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDAllocator hands out identifiers for new accounts and transactions.
// Implementations must be safe for concurrent use.
type IDAllocator interface {
	NewID(prefix string) string
}

// UUIDAllocator produces ids of the form "<prefix>-<uuid>".
type UUIDAllocator struct{}

func (UUIDAllocator) NewID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

// CounterAllocator produces ids of the form "<prefix>-<n>" from a monotonic
// counter. Start it above the largest persisted counter to avoid re-draws.
type CounterAllocator struct {
	next atomic.Int64
}

// NewCounterAllocator returns an allocator whose first id uses start+1.
func NewCounterAllocator(start int64) *CounterAllocator {
	c := &CounterAllocator{}
	c.next.Store(start)
	return c
}

func (c *CounterAllocator) NewID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, c.next.Add(1))
}

// uniqueID draws from ids until it gets one that is not in taken, then
// reserves it.
func uniqueID(ids IDAllocator, prefix string, taken map[string]struct{}) string {
	for {
		id := ids.NewID(prefix)
		if _, ok := taken[id]; !ok {
			taken[id] = struct{}{}
			return id
		}
	}
}
