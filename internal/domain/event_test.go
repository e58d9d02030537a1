package domain_test

import (
	"testing"

	"github.com/hexlight/portal-notifier/internal/domain"
)

func TestBug_Validate(t *testing.T) {
	valid := domain.Bug{
		ID:       42,
		Title:    "Crash when opening inventory",
		Priority: "high",
		Status:   "open",
		Project:  "Dungeon Crawler",
	}

	t.Run("valid bug passes", func(t *testing.T) {
		if err := valid.Validate(); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("zero id", func(t *testing.T) {
		b := valid
		b.ID = 0
		if err := b.Validate(); err != domain.ErrInvalidBugID {
			t.Fatalf("expected ErrInvalidBugID, got %v", err)
		}
	})

	t.Run("negative id", func(t *testing.T) {
		b := valid
		b.ID = -7
		if err := b.Validate(); err != domain.ErrInvalidBugID {
			t.Fatalf("expected ErrInvalidBugID, got %v", err)
		}
	})

	t.Run("empty title", func(t *testing.T) {
		b := valid
		b.Title = ""
		if err := b.Validate(); err != domain.ErrEmptyTitle {
			t.Fatalf("expected ErrEmptyTitle, got %v", err)
		}
	})
}

func TestBugReassignedRequest_Validate(t *testing.T) {
	req := domain.BugReassignedRequest{
		Bug: domain.Bug{
			ID:         42,
			Title:      "Crash when opening inventory",
			AssignedTo: "Mira Holt",
		},
		PreviousAssignee: "Jonas Veld",
	}

	t.Run("valid request passes", func(t *testing.T) {
		if err := req.Validate(); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("missing assignee", func(t *testing.T) {
		r := req
		r.Bug.AssignedTo = ""
		if err := r.Validate(); err != domain.ErrEmptyAssignee {
			t.Fatalf("expected ErrEmptyAssignee, got %v", err)
		}
	})

	t.Run("invalid bug propagates", func(t *testing.T) {
		r := req
		r.Bug.ID = 0
		if err := r.Validate(); err != domain.ErrInvalidBugID {
			t.Fatalf("expected ErrInvalidBugID, got %v", err)
		}
	})
}

func TestEventKind_IsValid(t *testing.T) {
	for _, k := range []domain.EventKind{
		domain.KindNewBug, domain.KindAssigned, domain.KindReassigned,
		domain.KindStatusChanged, domain.KindCommentAdded, domain.KindUpdated,
	} {
		if !k.IsValid() {
			t.Fatalf("kind %q: expected valid", k)
		}
	}
	if domain.EventKind("bug_deleted").IsValid() {
		t.Fatal("expected bug_deleted to be invalid")
	}
}
