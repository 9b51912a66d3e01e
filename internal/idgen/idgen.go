// Package idgen hands out record identifiers derived from the wall clock.
package idgen

import (
	"sync"
	"time"
)

// Generator returns millisecond timestamps that never repeat: when two calls
// land in the same millisecond (or the clock steps back) the previous value is
// bumped by one.
type Generator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func New() *Generator {
	return &Generator{now: time.Now}
}

// NewWithClock is used by tests to pin the clock.
func NewWithClock(now func() time.Time) *Generator {
	return &Generator{now: now}
}

func (g *Generator) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}
