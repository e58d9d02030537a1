package store

import (
	"context"
	"sync"
	"time"

	"github.com/hexlight/portal-notifier/internal/domain"
)

// MockProfileRepository is a hand-written, in-memory implementation of
// ProfileRepository used in unit tests. No mock-generation library needed.
type MockProfileRepository struct {
	mu       sync.RWMutex
	profiles map[string]*domain.Profile // keyed by ID

	// Optional error overrides — set in tests to simulate failure paths.
	GetByNameErr     error
	GetByIDsErr      error
	SetEndpointIDErr error

	// Call counters for asserting caching behaviour.
	SetEndpointIDCalls int
}

func NewMockProfileRepository() *MockProfileRepository {
	return &MockProfileRepository{profiles: make(map[string]*domain.Profile)}
}

// Add seeds a profile, cloning it so tests can mutate their copy freely.
func (m *MockProfileRepository) Add(p domain.Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.ID] = &p
}

func (m *MockProfileRepository) GetByName(_ context.Context, name string) (*domain.Profile, error) {
	if m.GetByNameErr != nil {
		return nil, m.GetByNameErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.profiles {
		if p.Name == name {
			clone := *p
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockProfileRepository) GetByIDs(_ context.Context, ids []string) ([]*domain.Profile, error) {
	if m.GetByIDsErr != nil {
		return nil, m.GetByIDsErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Profile
	for _, id := range ids {
		if p, ok := m.profiles[id]; ok {
			clone := *p
			result = append(result, &clone)
		}
	}
	return result, nil
}

func (m *MockProfileRepository) SetEndpointID(_ context.Context, profileID, endpointID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetEndpointIDCalls++
	if m.SetEndpointIDErr != nil {
		return m.SetEndpointIDErr
	}
	p, ok := m.profiles[profileID]
	if !ok {
		return domain.ErrNotFound
	}
	p.EndpointID = &endpointID
	return nil
}

// MockProjectRepository is the in-memory test double for ProjectRepository.
type MockProjectRepository struct {
	mu       sync.RWMutex
	projects map[string]*domain.Project // keyed by name

	GetByNameErr error
}

func NewMockProjectRepository() *MockProjectRepository {
	return &MockProjectRepository{projects: make(map[string]*domain.Project)}
}

func (m *MockProjectRepository) Add(p domain.Project) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects[p.Name] = &p
}

func (m *MockProjectRepository) GetByName(_ context.Context, name string) (*domain.Project, error) {
	if m.GetByNameErr != nil {
		return nil, m.GetByNameErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.projects[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

// MockDeliveryRepository records deliveries in memory.
type MockDeliveryRepository struct {
	mu         sync.RWMutex
	deliveries []*domain.Delivery

	CreateErr error
}

func NewMockDeliveryRepository() *MockDeliveryRepository {
	return &MockDeliveryRepository{}
}

func (m *MockDeliveryRepository) Create(_ context.Context, d *domain.Delivery) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *d
	m.deliveries = append(m.deliveries, &clone)
	return nil
}

func (m *MockDeliveryRepository) ListByBug(_ context.Context, bugID int) ([]*domain.Delivery, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Delivery
	for _, d := range m.deliveries {
		if d.BugID == bugID {
			clone := *d
			result = append(result, &clone)
		}
	}
	return result, nil
}

func (m *MockDeliveryRepository) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []*domain.Delivery
	var removed int64
	for _, d := range m.deliveries {
		if d.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, d)
	}
	m.deliveries = kept
	return removed, nil
}

// All counts every recorded delivery regardless of bug.
func (m *MockDeliveryRepository) All() []*domain.Delivery {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Delivery, 0, len(m.deliveries))
	for _, d := range m.deliveries {
		clone := *d
		result = append(result, &clone)
	}
	return result
}
