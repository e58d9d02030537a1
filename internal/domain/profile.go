package domain

import "time"

// Profile is a row in the studio's team directory.
// EndpointID is the opaque chat-system identifier for the person, resolved
// lazily through the relay's email lookup and written back so subsequent
// resolutions are cache hits.
type Profile struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	EndpointID *string   `json:"messaging_endpoint_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Project is a row in the portal's project tracker. MemberIDs references
// profiles by ID, unlike bugs which reference people by display name.
type Project struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	MemberIDs []string `json:"member_ids"`
}
