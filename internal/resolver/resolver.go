package resolver

import (
	"context"

	"go.uber.org/zap"

	"github.com/hexlight/portal-notifier/internal/domain"
	"github.com/hexlight/portal-notifier/internal/relay"
	"github.com/hexlight/portal-notifier/internal/store"
)

// Hooks carries the metric callback functions injected by main.
// Both are optional (nil = no-op).
type Hooks struct {
	OnEndpointCacheHit  func()
	OnEndpointCacheMiss func()
}

// Resolver turns the free-text display names stored on tracker rows into
// chat endpoint IDs.
//
// Matching is by exact, case-sensitive display name. Two people sharing a
// name collide and a renamed person becomes unreachable; the tracker only
// stores names, so fixing this means migrating bugs to stable profile IDs
// first. TODO: revisit once the tracker's assigned_to column carries
// profile IDs.
//
// Every lookup failure degrades to "no recipient": notification plumbing
// must never block or fail the domain action that triggered it.
type Resolver struct {
	profiles  store.ProfileRepository
	projects  store.ProjectRepository
	directory relay.Directory
	logger    *zap.Logger
	hooks     Hooks
}

func New(
	profiles store.ProfileRepository,
	projects store.ProjectRepository,
	directory relay.Directory,
	logger *zap.Logger,
	hooks Hooks,
) *Resolver {
	if hooks.OnEndpointCacheHit == nil {
		hooks.OnEndpointCacheHit = func() {}
	}
	if hooks.OnEndpointCacheMiss == nil {
		hooks.OnEndpointCacheMiss = func() {}
	}
	return &Resolver{
		profiles:  profiles,
		projects:  projects,
		directory: directory,
		logger:    logger,
		hooks:     hooks,
	}
}

// ResolveByName returns the endpoint ID for a display name, or ok=false if
// the person cannot be resolved. The endpoint ID cached on the profile row
// is preferred; otherwise the relay's email lookup runs once and the result
// is written back best-effort so the next resolution is a cache hit.
func (r *Resolver) ResolveByName(ctx context.Context, name string) (string, bool) {
	if name == "" {
		return "", false
	}

	p, err := r.profiles.GetByName(ctx, name)
	if err != nil {
		r.logger.Warn("profile lookup failed", zap.String("name", name), zap.Error(err))
		return "", false
	}

	return r.resolveProfile(ctx, p)
}

// ResolveProfile resolves an already-fetched profile, using the same
// cached-then-lookup path as ResolveByName.
func (r *Resolver) ResolveProfile(ctx context.Context, p *domain.Profile) (string, bool) {
	return r.resolveProfile(ctx, p)
}

func (r *Resolver) resolveProfile(ctx context.Context, p *domain.Profile) (string, bool) {
	if p.EndpointID != nil && *p.EndpointID != "" {
		r.hooks.OnEndpointCacheHit()
		return *p.EndpointID, true
	}
	r.hooks.OnEndpointCacheMiss()

	endpointID, err := r.directory.LookupByEmail(ctx, p.Email)
	if err != nil {
		r.logger.Warn("endpoint lookup failed",
			zap.String("profile_id", p.ID),
			zap.String("email", p.Email),
			zap.Error(err),
		)
		return "", false
	}

	// Best-effort write-back: the ID is still good for this call even if
	// persisting it fails.
	if err := r.profiles.SetEndpointID(ctx, p.ID, endpointID); err != nil {
		r.logger.Warn("failed to cache endpoint id on profile",
			zap.String("profile_id", p.ID),
			zap.Error(err),
		)
	}

	return endpointID, true
}

// ResolveProjectTeam returns the profiles on a project's roster. Endpoint
// resolution stays lazy; callers resolve each member via ResolveProfile as
// needed. Missing project or empty roster yields an empty slice.
func (r *Resolver) ResolveProjectTeam(ctx context.Context, projectName string) []*domain.Profile {
	if projectName == "" {
		return nil
	}

	proj, err := r.projects.GetByName(ctx, projectName)
	if err != nil {
		r.logger.Warn("project lookup failed", zap.String("project", projectName), zap.Error(err))
		return nil
	}
	if len(proj.MemberIDs) == 0 {
		return nil
	}

	members, err := r.profiles.GetByIDs(ctx, proj.MemberIDs)
	if err != nil {
		r.logger.Warn("team profiles lookup failed", zap.String("project", projectName), zap.Error(err))
		return nil
	}
	return members
}
