package dispatcher

import (
	"fmt"

	"github.com/hexlight/portal-notifier/internal/domain"
	"github.com/hexlight/portal-notifier/internal/relay"
)

// Sidebar colours match the tracker's priority badges so a message is
// recognisable at a glance in the chat client.
const (
	colorRed    = "#d7263d"
	colorBlue   = "#1982c4"
	colorYellow = "#ffca3a"
	colorGreen  = "#8ac926"
	colorPurple = "#6a4c93"
)

var kindTitles = map[domain.EventKind]string{
	domain.KindNewBug:        "New bug filed",
	domain.KindAssigned:      "Bug assigned to you",
	domain.KindReassigned:    "Bug reassigned to you",
	domain.KindStatusChanged: "Bug status changed",
	domain.KindCommentAdded:  "New comment on bug",
	domain.KindUpdated:       "Bug updated",
}

var kindColors = map[domain.EventKind]string{
	domain.KindNewBug:        colorRed,
	domain.KindAssigned:      colorBlue,
	domain.KindReassigned:    colorBlue,
	domain.KindStatusChanged: colorYellow,
	domain.KindCommentAdded:  colorGreen,
	domain.KindUpdated:       colorPurple,
}

// formatMessage builds the styled summary for one event kind. Every
// message carries the bug's id, title, priority and status plus a deep
// link to its detail view; detail is an optional kind-specific line.
func formatMessage(kind domain.EventKind, bug domain.Bug, detail string, portalURL string) relay.Message {
	text := fmt.Sprintf("#%d %s (priority: %s, status: %s)",
		bug.ID, bug.Title, bug.Priority, bug.Status)
	if detail != "" {
		text += "\n" + detail
	}

	return relay.Message{
		Title: kindTitles[kind],
		Text:  text,
		Color: kindColors[kind],
		Link:  fmt.Sprintf("%s/bugs/%d", portalURL, bug.ID),
	}
}
