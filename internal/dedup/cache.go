package dedup

import (
	"fmt"
	"sync"
	"time"

	"github.com/hexlight/portal-notifier/internal/domain"
)

// Cache suppresses repeat notifications: at most one message per
// (recipient, bug, kind) triple within the cooldown window.
//
// The window is anchored to the first send — a blocked attempt does not
// refresh the timestamp, so bursty retries cannot extend suppression past
// firstSend + cooldown.
//
// Eviction is coarse, not an LRU: once the map grows past maxEntries the
// whole map is cleared, the just-recorded key included. A burst of many
// distinct keys therefore wipes history and can let a near-simultaneous
// duplicate through; the cost is one extra chat message.
//
// The cache is process-local and lost on restart; it only protects against
// duplicates raised within one running process.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]time.Time
	cooldown   time.Duration
	maxEntries int
	now        func() time.Time
}

// NewCache returns a cache with the given cooldown and size bound.
func NewCache(cooldown time.Duration, maxEntries int) *Cache {
	return NewCacheWithClock(cooldown, maxEntries, time.Now)
}

// NewCacheWithClock injects the clock; tests use it to advance time
// without sleeping.
func NewCacheWithClock(cooldown time.Duration, maxEntries int, now func() time.Time) *Cache {
	return &Cache{
		entries:    make(map[string]time.Time),
		cooldown:   cooldown,
		maxEntries: maxEntries,
		now:        now,
	}
}

// ShouldSuppress reports whether a notification with this triple was
// already sent within the cooldown. When it returns false the attempt is
// recorded, so the caller must only ask for sends it is about to make.
func (c *Cache) ShouldSuppress(endpointID string, bugID int, kind domain.EventKind) bool {
	key := fmt.Sprintf("%s|%d|%s", endpointID, bugID, kind)

	c.mu.Lock()
	defer c.mu.Unlock()

	if last, ok := c.entries[key]; ok && c.now().Sub(last) < c.cooldown {
		return true
	}

	c.entries[key] = c.now()
	if len(c.entries) > c.maxEntries {
		c.entries = make(map[string]time.Time)
	}
	return false
}

// Len returns the number of tracked triples, for observability.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
