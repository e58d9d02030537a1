package store

import (
	"context"
	"time"

	"github.com/hexlight/portal-notifier/internal/domain"
)

// ProfileRepository defines the reads and the single write the notifier
// performs against the team directory. The directory itself is owned by
// account provisioning; this service only caches resolved endpoint IDs
// back onto it. The pgx implementation is in pg_profile_repo.go; tests use
// a hand-written mock (mock_repos.go).
type ProfileRepository interface {
	// GetByName matches the display name exactly (case-sensitive).
	GetByName(ctx context.Context, name string) (*domain.Profile, error)
	GetByIDs(ctx context.Context, ids []string) ([]*domain.Profile, error)
	// SetEndpointID persists a freshly resolved chat endpoint ID onto the
	// profile so later resolutions skip the relay's email lookup.
	SetEndpointID(ctx context.Context, profileID, endpointID string) error
}

// ProjectRepository reads the project roster used for new-bug fan-out.
type ProjectRepository interface {
	GetByName(ctx context.Context, name string) (*domain.Project, error)
}

// DeliveryRepository owns the send-attempt trail.
type DeliveryRepository interface {
	Create(ctx context.Context, d *domain.Delivery) error
	ListByBug(ctx context.Context, bugID int) ([]*domain.Delivery, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
