package domain

// EventKind classifies the tracker change that triggered a notification.
type EventKind string

const (
	KindNewBug        EventKind = "new_bug"
	KindAssigned      EventKind = "assigned"
	KindReassigned    EventKind = "reassigned"
	KindStatusChanged EventKind = "status_changed"
	KindCommentAdded  EventKind = "comment_added"
	KindUpdated       EventKind = "updated"
)

func (k EventKind) IsValid() bool {
	switch k {
	case KindNewBug, KindAssigned, KindReassigned, KindStatusChanged, KindCommentAdded, KindUpdated:
		return true
	}
	return false
}

// Bug is the snapshot of a tracker row at the moment the event fired.
// The portal commits the row write first and posts the event after, so the
// snapshot never describes a state the store does not already reflect.
//
// AssignedTo and Reporter are display names, not profile IDs — the tracker
// stores free-text names and the resolver matches them against the profile
// directory. Duplicate display names collide; see resolver.Resolver.
type Bug struct {
	ID         int    `json:"id"`
	Title      string `json:"title"`
	Priority   string `json:"priority"`
	Status     string `json:"status"`
	Project    string `json:"project"`
	AssignedTo string `json:"assigned_to,omitempty"`
	Reporter   string `json:"reporter,omitempty"`
}

func (b *Bug) Validate() error {
	if b.ID <= 0 {
		return ErrInvalidBugID
	}
	if b.Title == "" {
		return ErrEmptyTitle
	}
	return nil
}

// BugCreatedRequest is the inbound payload for a bug-created event.
// Actor is the display name of the user who filed the bug; they are
// excluded from their own notification.
type BugCreatedRequest struct {
	Bug   Bug    `json:"bug"`
	Actor string `json:"actor,omitempty"`
}

func (r *BugCreatedRequest) Validate() error {
	return r.Bug.Validate()
}

// BugReassignedRequest carries the new snapshot plus the previous assignee.
// The previous assignee is used only for message text, never notified.
type BugReassignedRequest struct {
	Bug              Bug    `json:"bug"`
	PreviousAssignee string `json:"previous_assignee,omitempty"`
}

func (r *BugReassignedRequest) Validate() error {
	if err := r.Bug.Validate(); err != nil {
		return err
	}
	if r.Bug.AssignedTo == "" {
		return ErrEmptyAssignee
	}
	return nil
}

// StatusChangedRequest carries the new snapshot plus the prior status.
type StatusChangedRequest struct {
	Bug            Bug    `json:"bug"`
	PreviousStatus string `json:"previous_status,omitempty"`
}

func (r *StatusChangedRequest) Validate() error {
	return r.Bug.Validate()
}

// CommentAddedRequest carries the snapshot plus the comment author, who is
// excluded from the recipient set.
type CommentAddedRequest struct {
	Bug    Bug    `json:"bug"`
	Author string `json:"author,omitempty"`
}

func (r *CommentAddedRequest) Validate() error {
	return r.Bug.Validate()
}

// BugUpdatedRequest is the generic catch-all edit event.
type BugUpdatedRequest struct {
	Bug Bug `json:"bug"`
}

func (r *BugUpdatedRequest) Validate() error {
	return r.Bug.Validate()
}
