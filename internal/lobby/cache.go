// Package lobby keeps the shared visitor list current and runs the lobby
// desk's bulk check-in, check-out and no-show actions against it.
package lobby

import (
	"context"
	"sync"
	"time"

	"github.com/evcraddock/gatepass/internal/visit"
)

// Cache holds the most recently fetched visitor list.
type Cache struct {
	mu      sync.RWMutex
	visits  []*visit.Visit
	updated time.Time
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{}
}

// Set replaces the cached list.
func (c *Cache) Set(visits []*visit.Visit, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.visits = copyVisits(visits)
	c.updated = at
}

// List returns a copy of the cached list.
func (c *Cache) List() []*visit.Visit {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return copyVisits(c.visits)
}

// Updated returns when the list was last replaced.
func (c *Cache) Updated() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.updated
}

// Get returns a copy of one visit.
func (c *Cache) Get(visitID int64) (*visit.Visit, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, v := range c.visits {
		if v.ID == visitID {
			cp := *v
			return &cp, true
		}
	}
	return nil, false
}

// Update applies patch to the cached visit with visitID and reports whether
// it was found.
func (c *Cache) Update(visitID int64, patch func(*visit.Visit)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, v := range c.visits {
		if v.ID == visitID {
			patch(v)
			return true
		}
	}
	return false
}

// Visitors serves the cached list to readers that would otherwise poll the
// API themselves.
func (c *Cache) Visitors(ctx context.Context) ([]*visit.Visit, error) {
	return c.List(), nil
}

func copyVisits(visits []*visit.Visit) []*visit.Visit {
	if visits == nil {
		return nil
	}
	out := make([]*visit.Visit, len(visits))
	for i, v := range visits {
		cp := *v
		out[i] = &cp
	}
	return out
}
