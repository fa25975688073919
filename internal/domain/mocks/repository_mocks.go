package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/V4T54L/dealer-portal/internal/domain"
	"github.com/google/uuid"
)

// MockBackend is an in-memory implementation of domain.Backend for testing.
// Setting one of the *Err fields makes the matching call fail.
type MockBackend struct {
	mu      sync.Mutex
	Users   []domain.User
	Dealers []domain.Dealer
	Notes   []domain.Note
	Tasks   []domain.Task
	Regions domain.RegionsCatalog
	Routes  []domain.RouteStop

	ReadErr        error
	SaveUserErr    error
	SaveDealerErr  error
	DeleteErr      error
	InsertNoteErr  error
	SaveTaskErr    error
	RegionErr      error
	SaveRouteErr   error
	DeleteRouteErr error

	Calls int
}

func (m *MockBackend) ListUsers(ctx context.Context) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	return append([]domain.User(nil), m.Users...), nil
}

func (m *MockBackend) SaveUser(ctx context.Context, u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.SaveUserErr != nil {
		return m.SaveUserErr
	}
	for i := range m.Users {
		if m.Users[i].ID == u.ID {
			m.Users[i] = u
			return nil
		}
	}
	m.Users = append(m.Users, u)
	return nil
}

func (m *MockBackend) ListDealers(ctx context.Context) ([]domain.Dealer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	return append([]domain.Dealer(nil), m.Dealers...), nil
}

func (m *MockBackend) SaveDealer(ctx context.Context, d domain.Dealer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.SaveDealerErr != nil {
		return m.SaveDealerErr
	}
	for i := range m.Dealers {
		if m.Dealers[i].ID == d.ID {
			m.Dealers[i] = d
			return nil
		}
	}
	m.Dealers = append(m.Dealers, d)
	return nil
}

func (m *MockBackend) DeleteDealer(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	for i := range m.Dealers {
		if m.Dealers[i].ID == id {
			m.Dealers = append(m.Dealers[:i], m.Dealers[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *MockBackend) ListNotes(ctx context.Context) ([]domain.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	return append([]domain.Note(nil), m.Notes...), nil
}

func (m *MockBackend) InsertNote(ctx context.Context, n domain.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.InsertNoteErr != nil {
		return m.InsertNoteErr
	}
	m.Notes = append(m.Notes, n)
	return nil
}

func (m *MockBackend) ListTasks(ctx context.Context) ([]domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	return append([]domain.Task(nil), m.Tasks...), nil
}

func (m *MockBackend) SaveTask(ctx context.Context, t domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.SaveTaskErr != nil {
		return m.SaveTaskErr
	}
	for i := range m.Tasks {
		if m.Tasks[i].ID == t.ID {
			m.Tasks[i] = t
			return nil
		}
	}
	m.Tasks = append(m.Tasks, t)
	return nil
}

func (m *MockBackend) ListRegions(ctx context.Context) (domain.RegionsCatalog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	if m.Regions == nil {
		return domain.RegionsCatalog{}, nil
	}
	return m.Regions.Clone(), nil
}

func (m *MockBackend) AddRegion(ctx context.Context, state, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.RegionErr != nil {
		return m.RegionErr
	}
	if m.Regions == nil {
		m.Regions = domain.RegionsCatalog{}
	}
	if m.Regions.Has(state, name) {
		return domain.ErrDuplicate
	}
	m.Regions[state] = append(m.Regions[state], name)
	return nil
}

func (m *MockBackend) DeleteRegion(ctx context.Context, state, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.RegionErr != nil {
		return m.RegionErr
	}
	for _, d := range m.Dealers {
		if d.State == state && d.Region == name {
			return domain.ErrRegionInUse
		}
	}
	regions := m.Regions[state]
	for i, r := range regions {
		if r == name {
			m.Regions[state] = append(regions[:i], regions[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *MockBackend) ListRouteStops(ctx context.Context) ([]domain.RouteStop, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	return append([]domain.RouteStop(nil), m.Routes...), nil
}

func (m *MockBackend) SaveRouteStop(ctx context.Context, s domain.RouteStop) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.SaveRouteErr != nil {
		return m.SaveRouteErr
	}
	idx := -1
	for i, r := range m.Routes {
		if r.ID == s.ID {
			idx = i
			continue
		}
		if r.Username == s.Username && r.Date == s.Date && r.DealerID == s.DealerID {
			return fmt.Errorf("route stop for dealer %s: %w", s.DealerID, domain.ErrDuplicate)
		}
	}
	if idx >= 0 {
		m.Routes[idx] = s
		return nil
	}
	m.Routes = append(m.Routes, s)
	return nil
}

func (m *MockBackend) DeleteRouteStop(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.DeleteRouteErr != nil {
		return m.DeleteRouteErr
	}
	for i := range m.Routes {
		if m.Routes[i].ID == id {
			m.Routes = append(m.Routes[:i], m.Routes[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// MockSnapshotMirror is an in-memory domain.SnapshotMirror.
type MockSnapshotMirror struct {
	mu      sync.Mutex
	Saved   *domain.Snapshot
	Saves   int
	SaveErr error
	LoadErr error
}

func (m *MockSnapshotMirror) SaveSnapshot(ctx context.Context, s *domain.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Saved = s
	m.Saves++
	return nil
}

func (m *MockSnapshotMirror) LoadSnapshot(ctx context.Context) (*domain.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	if m.Saved == nil {
		return nil, domain.ErrNotFound
	}
	return m.Saved, nil
}

// MockExportSink records uploaded exports.
type MockExportSink struct {
	mu     sync.Mutex
	Keys   []string
	Bodies map[string][]byte
	PutErr error
}

func (m *MockExportSink) Put(ctx context.Context, key, contentType string, body []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PutErr != nil {
		return "", m.PutErr
	}
	if m.Bodies == nil {
		m.Bodies = make(map[string][]byte)
	}
	m.Keys = append(m.Keys, key)
	m.Bodies[key] = body
	return "mock://" + key, nil
}
