package dedup_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/hexlight/portal-notifier/internal/dedup"
	"github.com/hexlight/portal-notifier/internal/domain"
)

// fakeClock lets tests advance time deterministically.
type fakeClock struct {
	current time.Time
}

func (f *fakeClock) now() time.Time          { return f.current }
func (f *fakeClock) advance(d time.Duration) { f.current = f.current.Add(d) }

func newCache(cooldown time.Duration, maxEntries int) (*dedup.Cache, *fakeClock) {
	clock := &fakeClock{current: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	return dedup.NewCacheWithClock(cooldown, maxEntries, clock.now), clock
}

func TestCache_CooldownSuppression(t *testing.T) {
	c, clock := newCache(5*time.Second, 100)

	if c.ShouldSuppress("U1", 42, domain.KindStatusChanged) {
		t.Fatal("first attempt must be allowed")
	}
	if !c.ShouldSuppress("U1", 42, domain.KindStatusChanged) {
		t.Fatal("repeat within cooldown must be suppressed")
	}

	clock.advance(5*time.Second + time.Millisecond)
	if c.ShouldSuppress("U1", 42, domain.KindStatusChanged) {
		t.Fatal("attempt after cooldown elapsed must be allowed")
	}
}

func TestCache_BlockedAttemptsDoNotExtendWindow(t *testing.T) {
	c, clock := newCache(5*time.Second, 100)

	if c.ShouldSuppress("U1", 42, domain.KindCommentAdded) {
		t.Fatal("first attempt must be allowed")
	}

	// Two blocked attempts late in the window.
	clock.advance(3 * time.Second)
	if !c.ShouldSuppress("U1", 42, domain.KindCommentAdded) {
		t.Fatal("attempt at +3s must be suppressed")
	}
	clock.advance(1 * time.Second)
	if !c.ShouldSuppress("U1", 42, domain.KindCommentAdded) {
		t.Fatal("attempt at +4s must be suppressed")
	}

	// +5s+1ms from the FIRST send: the blocked attempts above must not
	// have refreshed the anchor.
	clock.advance(1*time.Second + time.Millisecond)
	if c.ShouldSuppress("U1", 42, domain.KindCommentAdded) {
		t.Fatal("window must end at firstSend+cooldown, not be extended by blocked attempts")
	}
}

func TestCache_KeyIndependence(t *testing.T) {
	c, _ := newCache(5*time.Second, 100)

	if c.ShouldSuppress("U1", 42, domain.KindStatusChanged) {
		t.Fatal("first kind must be allowed")
	}
	if c.ShouldSuppress("U1", 42, domain.KindCommentAdded) {
		t.Fatal("different kind for same recipient/bug must not be suppressed")
	}
	if c.ShouldSuppress("U2", 42, domain.KindStatusChanged) {
		t.Fatal("different recipient must not be suppressed")
	}
	if c.ShouldSuppress("U1", 43, domain.KindStatusChanged) {
		t.Fatal("different bug must not be suppressed")
	}
}

func TestCache_FullClearEviction(t *testing.T) {
	c, _ := newCache(5*time.Second, 100)

	// 101 distinct keys: recording the 101st pushes the map past the bound
	// and wipes everything, including the key just recorded.
	for i := 0; i < 101; i++ {
		if c.ShouldSuppress(fmt.Sprintf("U%d", i), 1, domain.KindNewBug) {
			t.Fatalf("key %d: fresh key must be allowed", i)
		}
	}

	if c.Len() != 0 {
		t.Fatalf("expected full clear past the bound, %d entries remain", c.Len())
	}

	// Earlier keys now behave as fresh even though no time has passed.
	if c.ShouldSuppress("U0", 1, domain.KindNewBug) {
		t.Fatal("after the clear, an old key must behave as fresh")
	}
}

func TestCache_LenTracksEntries(t *testing.T) {
	c, _ := newCache(5*time.Second, 100)

	c.ShouldSuppress("U1", 1, domain.KindUpdated)
	c.ShouldSuppress("U1", 2, domain.KindUpdated)
	c.ShouldSuppress("U1", 1, domain.KindUpdated) // suppressed, no new entry

	if got := c.Len(); got != 2 {
		t.Fatalf("expected 2 entries, got %d", got)
	}
}
