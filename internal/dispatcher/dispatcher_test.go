package dispatcher_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hexlight/portal-notifier/internal/dedup"
	"github.com/hexlight/portal-notifier/internal/dispatcher"
	"github.com/hexlight/portal-notifier/internal/domain"
	"github.com/hexlight/portal-notifier/internal/ratelimiter"
	"github.com/hexlight/portal-notifier/internal/relay"
	"github.com/hexlight/portal-notifier/internal/resolver"
	"github.com/hexlight/portal-notifier/internal/store"
)

// mockMessenger records every send and can be told to fail for specific
// endpoints (or for all of them).
type mockMessenger struct {
	mu      sync.Mutex
	sent    []string // endpoint IDs, in attempt-completion order
	failFor map[string]error
	failAll error
}

func newMockMessenger() *mockMessenger {
	return &mockMessenger{failFor: make(map[string]error)}
}

func (m *mockMessenger) SendDirectMessage(_ context.Context, endpointID string, _ relay.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, endpointID)
	if m.failAll != nil {
		return m.failAll
	}
	if err, ok := m.failFor[endpointID]; ok {
		return err
	}
	return nil
}

func (m *mockMessenger) attempts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.sent...)
}

type stubDirectory struct{ err error }

func (s *stubDirectory) LookupByEmail(context.Context, string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "", domain.ErrNotFound
}

type fixture struct {
	d          *dispatcher.Dispatcher
	profiles   *store.MockProfileRepository
	projects   *store.MockProjectRepository
	deliveries *store.MockDeliveryRepository
	messenger  *mockMessenger
}

func strptr(s string) *string { return &s }

// newFixture wires a dispatcher over in-memory collaborators with three
// team members whose endpoint IDs are already cached on their profiles.
func newFixture() *fixture {
	profiles := store.NewMockProfileRepository()
	profiles.Add(domain.Profile{ID: "p1", Name: "Mira Holt", Email: "mira@studio.test", EndpointID: strptr("U-MIRA")})
	profiles.Add(domain.Profile{ID: "p2", Name: "Jonas Veld", Email: "jonas@studio.test", EndpointID: strptr("U-JONAS")})
	profiles.Add(domain.Profile{ID: "p3", Name: "Rhea Okafor", Email: "rhea@studio.test", EndpointID: strptr("U-RHEA")})

	projects := store.NewMockProjectRepository()
	projects.Add(domain.Project{ID: "pr1", Name: "Dungeon Crawler", MemberIDs: []string{"p1", "p2", "p3"}})

	deliveries := store.NewMockDeliveryRepository()
	messenger := newMockMessenger()

	res := resolver.New(profiles, projects, &stubDirectory{}, zap.NewNop(), resolver.Hooks{})
	d := dispatcher.New(
		res,
		dedup.NewCache(5*time.Second, 100),
		messenger,
		deliveries,
		ratelimiter.New(1000),
		"http://portal.local",
		zap.NewNop(),
		dispatcher.Hooks{},
	)

	return &fixture{d: d, profiles: profiles, projects: projects, deliveries: deliveries, messenger: messenger}
}

var bug = domain.Bug{
	ID:         42,
	Title:      "Crash when opening inventory",
	Priority:   "high",
	Status:     "open",
	Project:    "Dungeon Crawler",
	AssignedTo: "Mira Holt",
	Reporter:   "Jonas Veld",
}

func contains(attempts []string, id string) bool {
	for _, a := range attempts {
		if a == id {
			return true
		}
	}
	return false
}

func TestDispatcher_NewBug_ActorStillGetsTeamMessage(t *testing.T) {
	f := newFixture()

	// Jonas files the bug, assigned to Mira. The filer exclusion covers the
	// assignee slot only: Jonas is on the roster, so he still gets the team
	// message alongside Mira (assigned) and Rhea (team).
	sent := f.d.NotifyNewBug(context.Background(), bug, "Jonas Veld")
	if sent != 3 {
		t.Fatalf("expected 3 sends, got %d", sent)
	}

	attempts := f.messenger.attempts()
	for _, id := range []string{"U-MIRA", "U-JONAS", "U-RHEA"} {
		if !contains(attempts, id) {
			t.Fatalf("expected %s to be messaged, got %v", id, attempts)
		}
	}
}

func TestDispatcher_NewBug_SelfAssignedFilerSkipsAssigneeSlot(t *testing.T) {
	f := newFixture()

	// Mira files a bug assigned to herself: no "assigned to you" message,
	// but she is on the roster and gets the team message like everyone else.
	sent := f.d.NotifyNewBug(context.Background(), bug, "Mira Holt")
	if sent != 3 {
		t.Fatalf("expected 3 sends, got %d", sent)
	}

	mira := 0
	for _, a := range f.messenger.attempts() {
		if a == "U-MIRA" {
			mira++
		}
	}
	if mira != 1 {
		t.Fatalf("expected exactly one message to the self-assigned filer, got %d", mira)
	}
}

func TestDispatcher_NewBug_AssigneeNotMessagedTwice(t *testing.T) {
	f := newFixture()

	// Mira is both the assignee and a team member: one message only.
	sent := f.d.NotifyNewBug(context.Background(), bug, "Rhea Okafor")
	if sent != 3 { // Mira (once) + Jonas + Rhea
		t.Fatalf("expected 3 sends, got %d", sent)
	}

	mira := 0
	for _, a := range f.messenger.attempts() {
		if a == "U-MIRA" {
			mira++
		}
	}
	if mira != 1 {
		t.Fatalf("expected exactly one message to the assignee, got %d", mira)
	}
}

func TestDispatcher_Reassignment_OnlyNewAssignee(t *testing.T) {
	f := newFixture()

	ok := f.d.NotifyReassignment(context.Background(), bug, "Rhea Okafor")
	if !ok {
		t.Fatal("expected the reassignment notification to be sent")
	}

	attempts := f.messenger.attempts()
	if len(attempts) != 1 || attempts[0] != "U-MIRA" {
		t.Fatalf("expected only the new assignee to be messaged, got %v", attempts)
	}
}

func TestDispatcher_StatusChange_AssigneeAndReporter(t *testing.T) {
	f := newFixture()

	sent := f.d.NotifyStatusChange(context.Background(), bug, "open")
	if sent != 2 {
		t.Fatalf("expected 2 sends, got %d", sent)
	}
	attempts := f.messenger.attempts()
	if !contains(attempts, "U-MIRA") || !contains(attempts, "U-JONAS") {
		t.Fatalf("expected assignee and reporter, got %v", attempts)
	}
}

func TestDispatcher_StatusChange_SharedEndpointGetsOneMessage(t *testing.T) {
	f := newFixture()

	// The reporter's display name differs from the assignee's but resolves
	// to the same chat endpoint.
	f.profiles.Add(domain.Profile{ID: "p9", Name: "M. Holt", Email: "mira@studio.test", EndpointID: strptr("U-MIRA")})
	b := bug
	b.Reporter = "M. Holt"

	sent := f.d.NotifyStatusChange(context.Background(), b, "open")
	if sent != 1 {
		t.Fatalf("expected 1 send to the shared endpoint, got %d", sent)
	}
	if attempts := f.messenger.attempts(); len(attempts) != 1 {
		t.Fatalf("expected a single relay call, got %v", attempts)
	}
}

func TestDispatcher_Comment_ExcludesAuthor(t *testing.T) {
	f := newFixture()

	// The assignee comments: only the reporter is notified.
	sent := f.d.NotifyComment(context.Background(), bug, "Mira Holt")
	if sent != 1 {
		t.Fatalf("expected 1 send, got %d", sent)
	}
	attempts := f.messenger.attempts()
	if len(attempts) != 1 || attempts[0] != "U-JONAS" {
		t.Fatalf("expected only the reporter, got %v", attempts)
	}
}

func TestDispatcher_Update_AssigneeOnly(t *testing.T) {
	f := newFixture()

	ok := f.d.NotifyUpdate(context.Background(), bug)
	if !ok {
		t.Fatal("expected the update notification to be sent")
	}
	attempts := f.messenger.attempts()
	if len(attempts) != 1 || attempts[0] != "U-MIRA" {
		t.Fatalf("expected only the assignee, got %v", attempts)
	}
}

func TestDispatcher_FanOutIsolation(t *testing.T) {
	f := newFixture()
	f.messenger.failFor["U-JONAS"] = errors.New("channel archived")

	b := bug
	b.AssignedTo = "" // pure team fan-out: Mira, Jonas, Rhea

	sent := f.d.NotifyNewBug(context.Background(), b, "")
	if sent != 2 {
		t.Fatalf("expected success count 2 when one of three sends fails, got %d", sent)
	}

	attempts := f.messenger.attempts()
	if len(attempts) != 3 {
		t.Fatalf("expected all three sends attempted, got %v", attempts)
	}

	// The failed attempt is in the delivery trail with its error.
	failed := 0
	for _, d := range f.deliveries.All() {
		if d.Outcome == domain.DeliveryFailed {
			failed++
			if d.EndpointID != "U-JONAS" || d.ErrorMessage == nil {
				t.Fatalf("unexpected failed delivery: %+v", d)
			}
		}
	}
	if failed != 1 {
		t.Fatalf("expected 1 failed delivery recorded, got %d", failed)
	}
}

func TestDispatcher_DuplicateSuppressedWithinCooldown(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if ok := f.d.NotifyUpdate(ctx, bug); !ok {
		t.Fatal("first update must send")
	}
	if ok := f.d.NotifyUpdate(ctx, bug); ok {
		t.Fatal("immediate repeat must be suppressed")
	}
	if attempts := f.messenger.attempts(); len(attempts) != 1 {
		t.Fatalf("expected a single relay call, got %v", attempts)
	}
}

func TestDispatcher_SuppressionIsPerKind(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if ok := f.d.NotifyUpdate(ctx, bug); !ok {
		t.Fatal("update must send")
	}
	// Same recipient and bug, different kind: not a duplicate.
	if sent := f.d.NotifyStatusChange(ctx, bug, "open"); sent != 2 {
		t.Fatalf("expected status change to send to both recipients, got %d", sent)
	}
}

func TestDispatcher_NeverFails(t *testing.T) {
	f := newFixture()
	boom := errors.New("backend down")
	f.profiles.GetByNameErr = boom
	f.profiles.GetByIDsErr = boom
	f.projects.GetByNameErr = boom
	f.deliveries.CreateErr = boom
	f.messenger.failAll = boom

	ctx := context.Background()

	if sent := f.d.NotifyNewBug(ctx, bug, "Jonas Veld"); sent != 0 {
		t.Fatalf("NotifyNewBug: expected 0, got %d", sent)
	}
	if ok := f.d.NotifyReassignment(ctx, bug, "Rhea Okafor"); ok {
		t.Fatal("NotifyReassignment: expected false")
	}
	if sent := f.d.NotifyStatusChange(ctx, bug, "open"); sent != 0 {
		t.Fatalf("NotifyStatusChange: expected 0, got %d", sent)
	}
	if sent := f.d.NotifyComment(ctx, bug, "Mira Holt"); sent != 0 {
		t.Fatalf("NotifyComment: expected 0, got %d", sent)
	}
	if ok := f.d.NotifyUpdate(ctx, bug); ok {
		t.Fatal("NotifyUpdate: expected false")
	}
}

func TestDispatcher_RecordsSentDeliveries(t *testing.T) {
	f := newFixture()

	f.d.NotifyUpdate(context.Background(), bug)

	all := f.deliveries.All()
	if len(all) != 1 {
		t.Fatalf("expected 1 delivery recorded, got %d", len(all))
	}
	d := all[0]
	if d.BugID != 42 || d.Kind != domain.KindUpdated || d.Outcome != domain.DeliverySent {
		t.Fatalf("unexpected delivery: %+v", d)
	}
}

func TestDispatcher_UnresolvableRecipientsDropped(t *testing.T) {
	f := newFixture()

	b := bug
	b.AssignedTo = "Ghost Writer" // no such profile

	if ok := f.d.NotifyUpdate(context.Background(), b); ok {
		t.Fatal("unresolvable assignee must yield no send")
	}
	if attempts := f.messenger.attempts(); len(attempts) != 0 {
		t.Fatalf("expected no relay calls, got %v", attempts)
	}
}
