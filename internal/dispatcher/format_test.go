package dispatcher

import (
	"strings"
	"testing"

	"github.com/hexlight/portal-notifier/internal/domain"
)

func TestFormatMessage(t *testing.T) {
	bug := domain.Bug{
		ID:       42,
		Title:    "Crash when opening inventory",
		Priority: "high",
		Status:   "open",
	}

	msg := formatMessage(domain.KindStatusChanged, bug, "status changed from open to fixed", "http://portal.local")

	if msg.Title != "Bug status changed" {
		t.Fatalf("unexpected title %q", msg.Title)
	}
	for _, want := range []string{"#42", "Crash when opening inventory", "high", "open"} {
		if !strings.Contains(msg.Text, want) {
			t.Fatalf("message text missing %q: %q", want, msg.Text)
		}
	}
	if !strings.Contains(msg.Text, "status changed from open to fixed") {
		t.Fatalf("detail line missing: %q", msg.Text)
	}
	if msg.Link != "http://portal.local/bugs/42" {
		t.Fatalf("unexpected deep link %q", msg.Link)
	}
	if msg.Color == "" {
		t.Fatal("expected a colour for a known kind")
	}
}

func TestFormatMessage_NoDetail(t *testing.T) {
	bug := domain.Bug{ID: 7, Title: "Typo in credits", Priority: "low", Status: "open"}

	msg := formatMessage(domain.KindUpdated, bug, "", "http://portal.local")
	if strings.Contains(msg.Text, "\n") {
		t.Fatalf("empty detail must not add a line: %q", msg.Text)
	}
}
