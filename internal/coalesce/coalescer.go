// Package coalesce deduplicates concurrent identical fetches: bursts of
// calls for the same key within a short window collapse onto one execution
// and share its outcome.
package coalesce

import (
	"context"
	"sync"
	"time"
)

// DefaultTTL bounds how long an in-flight entry may be joined.
const DefaultTTL = time.Second

type entry struct {
	done      chan struct{}
	value     interface{}
	err       error
	createdAt time.Time
}

// Coalescer is a process-wide keyed cache of in-flight operations. Entries
// are evicted when the operation settles or when their age exceeds the TTL,
// whichever comes first; eviction races at worst cost one duplicate
// execution.
type Coalescer struct {
	mu       sync.Mutex
	ttl      time.Duration
	inflight map[string]*entry
	now      func() time.Time
}

func New(ttl time.Duration) *Coalescer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Coalescer{
		ttl:      ttl,
		inflight: map[string]*entry{},
		now:      time.Now,
	}
}

// Do returns the shared outcome of the in-flight operation for key, starting
// one if none is pending. All callers that joined the same execution observe
// the identical value or error. A caller whose context expires while waiting
// gets its context error; the shared execution keeps running for the others.
func (c *Coalescer) Do(ctx context.Context, key string, op func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	c.mu.Lock()
	c.sweep()
	if pending, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		select {
		case <-pending.done:
			return pending.value, pending.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	current := &entry{done: make(chan struct{}), createdAt: c.now()}
	c.inflight[key] = current
	c.mu.Unlock()

	current.value, current.err = op(ctx)
	close(current.done)

	c.mu.Lock()
	// Only remove our own entry; a TTL sweep may already have replaced it.
	if c.inflight[key] == current {
		delete(c.inflight, key)
	}
	c.mu.Unlock()

	return current.value, current.err
}

// sweep drops expired entries. Lazy, runs under the lock on each call rather
// than on a background timer.
func (c *Coalescer) sweep() {
	cutoff := c.now().Add(-c.ttl)
	for key, pending := range c.inflight {
		if pending.createdAt.Before(cutoff) {
			delete(c.inflight, key)
		}
	}
}
