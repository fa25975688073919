// Package store keeps the portal's working set in memory as immutable
// snapshots and applies writes optimistically against the row store.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/V4T54L/dealer-portal/internal/adapter/metrics"
	"github.com/V4T54L/dealer-portal/internal/domain"
)

// Store publishes snapshots of the row store. Readers call Snapshot and
// never lock; writers are serialized.
type Store struct {
	backend domain.Backend
	mirror  domain.SnapshotMirror
	logger  *slog.Logger
	metrics *metrics.PortalMetrics

	current atomic.Pointer[domain.Snapshot]
	writeMu sync.Mutex
	group   singleflight.Group
	now     func() time.Time
}

// New creates a Store holding an empty snapshot. The mirror and metrics
// are optional.
func New(backend domain.Backend, mirror domain.SnapshotMirror, logger *slog.Logger, m *metrics.PortalMetrics) *Store {
	s := &Store{
		backend: backend,
		mirror:  mirror,
		logger:  logger.With("component", "store"),
		metrics: m,
		now:     time.Now,
	}
	s.current.Store(domain.EmptySnapshot())
	return s
}

// Snapshot returns the published snapshot. Callers must not modify it.
func (s *Store) Snapshot() *domain.Snapshot {
	return s.current.Load()
}

// Refresh reloads every collection from the row store. Concurrent calls
// share one load. On failure the prior snapshot is kept; if nothing has
// been loaded yet the mirror is tried instead.
func (s *Store) Refresh(ctx context.Context) error {
	_, err, _ := s.group.Do("refresh", func() (interface{}, error) {
		snap, err := s.load(ctx)
		if err != nil {
			s.countRefresh("error")
			s.logger.Error("failed to load snapshot from row store, keeping prior state", "error", err)
			s.fallbackToMirror(ctx)
			return nil, err
		}

		s.writeMu.Lock()
		s.current.Store(snap)
		s.writeMu.Unlock()

		s.countRefresh("ok")
		if s.metrics != nil {
			s.metrics.SnapshotDealers.Set(float64(len(snap.Dealers)))
		}
		s.logger.Debug("snapshot refreshed", "dealers", len(snap.Dealers), "users", len(snap.Users), "notes", len(snap.Notes))

		if s.mirror != nil {
			if err := s.mirror.SaveSnapshot(ctx, snap); err != nil {
				s.logger.Warn("failed to mirror snapshot", "error", err)
			}
		}
		return nil, nil
	})
	return err
}

func (s *Store) load(ctx context.Context) (*domain.Snapshot, error) {
	users, err := s.backend.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	dealers, err := s.backend.ListDealers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list dealers: %w", err)
	}
	notes, err := s.backend.ListNotes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	tasks, err := s.backend.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	regions, err := s.backend.ListRegions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list regions: %w", err)
	}
	routes, err := s.backend.ListRouteStops(ctx)
	if err != nil {
		return nil, fmt.Errorf("list route stops: %w", err)
	}
	if regions == nil {
		regions = domain.RegionsCatalog{}
	}
	return &domain.Snapshot{
		Users:    users,
		Dealers:  dealers,
		Notes:    notes,
		Tasks:    tasks,
		Regions:  regions,
		Routes:   routes,
		LoadedAt: s.now().UTC(),
	}, nil
}

func (s *Store) fallbackToMirror(ctx context.Context) {
	if s.mirror == nil || !s.Snapshot().LoadedAt.IsZero() {
		return
	}
	snap, err := s.mirror.LoadSnapshot(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("failed to load mirrored snapshot", "error", err)
		}
		return
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if !s.Snapshot().LoadedAt.IsZero() {
		return
	}
	s.current.Store(snap)
	if s.metrics != nil {
		s.metrics.MirrorFallbacks.Inc()
	}
	s.logger.Warn("serving mirrored snapshot", "loaded_at", snap.LoadedAt)
}

// StartRefresher reloads the snapshot every interval until ctx is done.
func (s *Store) StartRefresher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("starting snapshot refresher", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("stopping snapshot refresher")
			return
		case <-ticker.C:
			_ = s.Refresh(ctx)
		}
	}
}

// Apply runs primary and then each followup. Every change is first
// published to the snapshot and then persisted; a failed persist restores
// the snapshot as it was before that change.
//
// An error from a change's local apply step (validation, duplicate,
// missing record) aborts before anything is written and is returned as
// err. A failed primary persist yields WriteRolledBack. A failed followup
// yields WriteWarning; the primary stays written. A change whose apply
// step finds nothing to write is skipped and counts as written.
func (s *Store) Apply(ctx context.Context, primary Change, followups ...Change) (domain.WriteResult, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	err := s.applyOne(ctx, primary)
	if errors.Is(err, errUnchanged) {
		s.countWrite(domain.WriteOK)
		return domain.Written(), nil
	}
	if err != nil {
		var pe *persistError
		if !errors.As(err, &pe) {
			return domain.WriteResult{}, err
		}
		s.logger.Error("write failed, rolled back", "change", primary.name, "error", pe.err)
		s.countWrite(domain.WriteRolledBack)
		return domain.RolledBack(primary.name+" failed", pe.err), nil
	}

	for _, f := range followups {
		err := s.applyOne(ctx, f)
		if errors.Is(err, errUnchanged) {
			continue
		}
		if err != nil {
			cause := err
			var pe *persistError
			if errors.As(err, &pe) {
				cause = pe.err
			}
			s.logger.Warn("dependent write failed", "change", f.name, "after", primary.name, "error", cause)
			s.countWrite(domain.WriteWarning)
			return domain.WrittenWithWarning(f.name+" failed", cause), nil
		}
	}

	s.countWrite(domain.WriteOK)
	return domain.Written(), nil
}

type persistError struct{ err error }

func (e *persistError) Error() string { return e.err.Error() }
func (e *persistError) Unwrap() error { return e.err }

// applyOne must be called with writeMu held.
func (s *Store) applyOne(ctx context.Context, c Change) error {
	prev := s.current.Load()
	next := prev.Clone()
	if err := c.apply(next); err != nil {
		return err
	}

	s.current.Store(next)
	if err := c.persist(ctx, s.backend); err != nil {
		s.current.Store(prev)
		return &persistError{err: err}
	}
	return nil
}

func (s *Store) countWrite(outcome domain.WriteOutcome) {
	if s.metrics != nil {
		s.metrics.WritesTotal.WithLabelValues(string(outcome)).Inc()
	}
}

func (s *Store) countRefresh(result string) {
	if s.metrics != nil {
		s.metrics.RefreshTotal.WithLabelValues(result).Inc()
	}
}
