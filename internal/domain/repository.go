package domain

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository persists portal users and their coverage.
type UserRepository interface {
	ListUsers(ctx context.Context) ([]User, error)
	// SaveUser inserts or replaces the user, including coverage rows.
	SaveUser(ctx context.Context, u User) error
}

// DealerRepository persists dealer accounts.
type DealerRepository interface {
	ListDealers(ctx context.Context) ([]Dealer, error)
	SaveDealer(ctx context.Context, d Dealer) error
	DeleteDealer(ctx context.Context, id uuid.UUID) error
}

// NoteRepository persists notes. Notes are insert-only.
type NoteRepository interface {
	ListNotes(ctx context.Context) ([]Note, error)
	InsertNote(ctx context.Context, n Note) error
}

// TaskRepository persists tasks.
type TaskRepository interface {
	ListTasks(ctx context.Context) ([]Task, error)
	SaveTask(ctx context.Context, t Task) error
}

// RegionRepository persists the regions catalog.
type RegionRepository interface {
	ListRegions(ctx context.Context) (RegionsCatalog, error)
	AddRegion(ctx context.Context, state, name string) error
	// DeleteRegion removes a region. Implementations must return
	// ErrRegionInUse while any dealer references it.
	DeleteRegion(ctx context.Context, state, name string) error
}

// RouteRepository persists planned route stops.
type RouteRepository interface {
	ListRouteStops(ctx context.Context) ([]RouteStop, error)
	SaveRouteStop(ctx context.Context, s RouteStop) error
	DeleteRouteStop(ctx context.Context, id uuid.UUID) error
}

// Backend is the hosted row store behind the portal.
type Backend interface {
	UserRepository
	DealerRepository
	NoteRepository
	TaskRepository
	RegionRepository
	RouteRepository
}

// SnapshotMirror keeps the last good snapshot outside the process so a
// restart can serve data while the row store is unreachable.
type SnapshotMirror interface {
	SaveSnapshot(ctx context.Context, s *Snapshot) error
	LoadSnapshot(ctx context.Context) (*Snapshot, error)
}

// ExportSink stores a rendered export and returns its location.
type ExportSink interface {
	Put(ctx context.Context, key, contentType string, body []byte) (string, error)
}
