package domain

import "time"

// DeliveryOutcome records how a relay send attempt ended.
type DeliveryOutcome string

const (
	DeliverySent   DeliveryOutcome = "sent"
	DeliveryFailed DeliveryOutcome = "failed"
)

// Delivery is one attempted relay send, kept as a support-debugging trail.
// Suppressed duplicates never reach the relay and are not recorded here.
type Delivery struct {
	ID           string          `json:"id"`
	BugID        int             `json:"bug_id"`
	Kind         EventKind       `json:"kind"`
	EndpointID   string          `json:"endpoint_id"`
	Outcome      DeliveryOutcome `json:"outcome"`
	ErrorMessage *string         `json:"error_message,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}
