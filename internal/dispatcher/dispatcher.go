package dispatcher

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hexlight/portal-notifier/internal/dedup"
	"github.com/hexlight/portal-notifier/internal/domain"
	"github.com/hexlight/portal-notifier/internal/ratelimiter"
	"github.com/hexlight/portal-notifier/internal/relay"
	"github.com/hexlight/portal-notifier/internal/resolver"
	"github.com/hexlight/portal-notifier/internal/store"
)

// Hooks carries the metric callback functions injected by main.
// All are optional (nil = no-op).
type Hooks struct {
	OnSent       func(kind domain.EventKind, latency time.Duration)
	OnFailed     func(kind domain.EventKind)
	OnSuppressed func(kind domain.EventKind)
}

// Dispatcher turns a tracker event into zero or more direct messages.
//
// Contract with callers: the triggering row write must already be
// committed before an entry point is invoked, so messages never describe a
// state the store does not reflect. Entry points never return an error;
// the count/bool result is informational and must not be treated as a
// signal to retry or roll back the domain change.
type Dispatcher struct {
	resolver   *resolver.Resolver
	cache      *dedup.Cache
	messenger  relay.Messenger
	deliveries store.DeliveryRepository
	limiter    *ratelimiter.RelayLimiter
	portalURL  string
	logger     *zap.Logger
	hooks      Hooks
}

func New(
	res *resolver.Resolver,
	cache *dedup.Cache,
	messenger relay.Messenger,
	deliveries store.DeliveryRepository,
	limiter *ratelimiter.RelayLimiter,
	portalURL string,
	logger *zap.Logger,
	hooks Hooks,
) *Dispatcher {
	if hooks.OnSent == nil {
		hooks.OnSent = func(domain.EventKind, time.Duration) {}
	}
	if hooks.OnFailed == nil {
		hooks.OnFailed = func(domain.EventKind) {}
	}
	if hooks.OnSuppressed == nil {
		hooks.OnSuppressed = func(domain.EventKind) {}
	}
	return &Dispatcher{
		resolver:   res,
		cache:      cache,
		messenger:  messenger,
		deliveries: deliveries,
		limiter:    limiter,
		portalURL:  portalURL,
		logger:     logger,
		hooks:      hooks,
	}
}

// candidate is one recipient surviving the build step, carrying its own
// dedup kind and formatted message. The new-bug path mixes kinds: the
// assignee is recorded under "assigned" so a later standalone assignment
// of the same bug dedupes correctly, while the team loop uses "new_bug".
type candidate struct {
	endpointID string
	kind       domain.EventKind
	msg        relay.Message
}

// NotifyNewBug messages the assignee (if set and not the filer) plus every
// resolvable member of the bug's project team. The actor exclusion applies
// to the assignee slot only: a filer who is on the roster still gets the
// team message. Returns the number of successful sends.
func (d *Dispatcher) NotifyNewBug(ctx context.Context, bug domain.Bug, actor string) int {
	var candidates []candidate
	seen := make(map[string]bool)

	if bug.AssignedTo != "" && bug.AssignedTo != actor {
		if id, ok := d.resolver.ResolveByName(ctx, bug.AssignedTo); ok {
			seen[id] = true
			candidates = append(candidates, candidate{
				endpointID: id,
				kind:       domain.KindAssigned,
				msg:        formatMessage(domain.KindAssigned, bug, "", d.portalURL),
			})
		}
	}

	for _, member := range d.resolver.ResolveProjectTeam(ctx, bug.Project) {
		id, ok := d.resolver.ResolveProfile(ctx, member)
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		candidates = append(candidates, candidate{
			endpointID: id,
			kind:       domain.KindNewBug,
			msg:        formatMessage(domain.KindNewBug, bug, "filed by "+actor, d.portalURL),
		})
	}

	return d.dispatch(ctx, bug, candidates)
}

// NotifyReassignment messages the new assignee only. The previous assignee
// appears in the message text but is deliberately not notified.
func (d *Dispatcher) NotifyReassignment(ctx context.Context, bug domain.Bug, previousAssignee string) bool {
	id, ok := d.resolver.ResolveByName(ctx, bug.AssignedTo)
	if !ok {
		return false
	}

	detail := "reassigned to you"
	if previousAssignee != "" {
		detail = "reassigned to you from " + previousAssignee
	}
	sent := d.dispatch(ctx, bug, []candidate{{
		endpointID: id,
		kind:       domain.KindReassigned,
		msg:        formatMessage(domain.KindReassigned, bug, detail, d.portalURL),
	}})
	return sent > 0
}

// NotifyStatusChange messages the current assignee, and the reporter when
// they are a different person.
func (d *Dispatcher) NotifyStatusChange(ctx context.Context, bug domain.Bug, previousStatus string) int {
	detail := "status is now " + bug.Status
	if previousStatus != "" {
		detail = "status changed from " + previousStatus + " to " + bug.Status
	}
	names := []string{bug.AssignedTo}
	if bug.Reporter != "" && bug.Reporter != bug.AssignedTo {
		names = append(names, bug.Reporter)
	}

	return d.dispatch(ctx, bug, d.resolveAll(ctx, names, domain.KindStatusChanged,
		formatMessage(domain.KindStatusChanged, bug, detail, d.portalURL)))
}

// NotifyComment messages the assignee and the reporter, excluding the
// comment author.
func (d *Dispatcher) NotifyComment(ctx context.Context, bug domain.Bug, author string) int {
	var names []string
	if bug.AssignedTo != "" && bug.AssignedTo != author {
		names = append(names, bug.AssignedTo)
	}
	if bug.Reporter != "" && bug.Reporter != author && bug.Reporter != bug.AssignedTo {
		names = append(names, bug.Reporter)
	}

	return d.dispatch(ctx, bug, d.resolveAll(ctx, names, domain.KindCommentAdded,
		formatMessage(domain.KindCommentAdded, bug, "comment by "+author, d.portalURL)))
}

// NotifyUpdate messages the current assignee only.
func (d *Dispatcher) NotifyUpdate(ctx context.Context, bug domain.Bug) bool {
	id, ok := d.resolver.ResolveByName(ctx, bug.AssignedTo)
	if !ok {
		return false
	}
	sent := d.dispatch(ctx, bug, []candidate{{
		endpointID: id,
		kind:       domain.KindUpdated,
		msg:        formatMessage(domain.KindUpdated, bug, "", d.portalURL),
	}})
	return sent > 0
}

// resolveAll resolves a list of display names into candidates sharing one
// kind and message, dropping unresolvable names and duplicate endpoints.
// Within a single event no recipient gets two messages, even when they
// qualify under two rules (e.g. assignee who is also the reporter).
func (d *Dispatcher) resolveAll(ctx context.Context, names []string, kind domain.EventKind, msg relay.Message) []candidate {
	var candidates []candidate
	seen := make(map[string]bool)
	for _, name := range names {
		id, ok := d.resolver.ResolveByName(ctx, name)
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		candidates = append(candidates, candidate{endpointID: id, kind: kind, msg: msg})
	}
	return candidates
}

// dispatch filters candidates through the dedup cache and fans the
// survivors out concurrently, one relay call each. A failed send never
// affects its siblings and nothing propagates to the caller; the return
// value is the number of sends the relay accepted.
func (d *Dispatcher) dispatch(ctx context.Context, bug domain.Bug, candidates []candidate) int {
	var survivors []candidate
	for _, c := range candidates {
		if d.cache.ShouldSuppress(c.endpointID, bug.ID, c.kind) {
			d.hooks.OnSuppressed(c.kind)
			d.logger.Warn("duplicate notification suppressed",
				zap.Int("bug_id", bug.ID),
				zap.String("kind", string(c.kind)),
				zap.String("endpoint_id", c.endpointID),
			)
			continue
		}
		survivors = append(survivors, c)
	}
	if len(survivors) == 0 {
		return 0
	}

	results := make([]bool, len(survivors))
	var wg sync.WaitGroup
	for i, c := range survivors {
		wg.Add(1)
		go func(i int, c candidate) {
			defer wg.Done()
			results[i] = d.send(ctx, bug, c)
		}(i, c)
	}
	wg.Wait()

	sent := 0
	for _, ok := range results {
		if ok {
			sent++
		}
	}
	return sent
}

func (d *Dispatcher) send(ctx context.Context, bug domain.Bug, c candidate) bool {
	if err := d.limiter.Wait(ctx); err != nil {
		// ctx cancelled while waiting for a token.
		d.hooks.OnFailed(c.kind)
		return false
	}

	start := time.Now()
	err := d.messenger.SendDirectMessage(ctx, c.endpointID, c.msg)
	latency := time.Since(start)

	if err != nil {
		d.logger.Warn("relay send failed",
			zap.Int("bug_id", bug.ID),
			zap.String("kind", string(c.kind)),
			zap.String("endpoint_id", c.endpointID),
			zap.Error(err),
		)
		d.hooks.OnFailed(c.kind)
		d.record(ctx, bug, c, domain.DeliveryFailed, err)
		return false
	}

	d.hooks.OnSent(c.kind, latency)
	d.record(ctx, bug, c, domain.DeliverySent, nil)
	return true
}

// record appends to the delivery trail best-effort. A logging failure here
// must never turn a delivered message into a reported failure.
func (d *Dispatcher) record(ctx context.Context, bug domain.Bug, c candidate, outcome domain.DeliveryOutcome, sendErr error) {
	delivery := &domain.Delivery{
		ID:         uuid.New().String(),
		BugID:      bug.ID,
		Kind:       c.kind,
		EndpointID: c.endpointID,
		Outcome:    outcome,
		CreatedAt:  time.Now().UTC(),
	}
	if sendErr != nil {
		msg := sendErr.Error()
		delivery.ErrorMessage = &msg
	}
	if err := d.deliveries.Create(ctx, delivery); err != nil {
		d.logger.Warn("failed to record delivery",
			zap.Int("bug_id", bug.ID),
			zap.Error(err),
		)
	}
}
