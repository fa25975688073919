package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/V4T54L/dealer-portal/internal/domain"
)

// SnapshotRepository mirrors the last good snapshot into a single Redis
// key. While Redis is unreachable the newest unsaved snapshot is held in
// memory and written on recovery.
type SnapshotRepository struct {
	client      *redis.Client
	logger      *slog.Logger
	key         string
	ttl         time.Duration
	isAvailable atomic.Bool

	mu      sync.Mutex
	pending *domain.Snapshot
}

var _ domain.SnapshotMirror = (*SnapshotRepository)(nil)

// NewSnapshotRepository creates a Redis-backed snapshot mirror. A ttl of
// zero keeps the key forever.
func NewSnapshotRepository(client *redis.Client, logger *slog.Logger, key string, ttl time.Duration) *SnapshotRepository {
	repo := &SnapshotRepository{
		client: client,
		logger: logger.With("component", "redis_mirror"),
		key:    key,
		ttl:    ttl,
	}
	repo.isAvailable.Store(true) // Assume available initially
	return repo
}

// SaveSnapshot writes s as JSON under the mirror key.
func (r *SnapshotRepository) SaveSnapshot(ctx context.Context, s *domain.Snapshot) error {
	if !r.isAvailable.Load() {
		r.hold(s)
		return errors.New("redis is unavailable, snapshot held for replay")
	}
	if err := r.write(ctx, s); err != nil {
		r.hold(s)
		return err
	}
	return nil
}

func (r *SnapshotRepository) write(ctx context.Context, s *domain.Snapshot) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := r.client.Set(ctx, r.key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write snapshot to redis: %w", err)
	}
	return nil
}

func (r *SnapshotRepository) hold(s *domain.Snapshot) {
	r.mu.Lock()
	r.pending = s
	r.mu.Unlock()
}

// LoadSnapshot reads the mirrored snapshot. It returns domain.ErrNotFound
// when nothing has been mirrored or the key expired.
func (r *SnapshotRepository) LoadSnapshot(ctx context.Context) (*domain.Snapshot, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("mirrored snapshot: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read snapshot from redis: %w", err)
	}

	var s domain.Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	if s.Regions == nil {
		s.Regions = domain.RegionsCatalog{}
	}
	return &s, nil
}

// StartHealthCheck pings Redis every interval and flushes a held snapshot
// once the connection recovers.
func (r *SnapshotRepository) StartHealthCheck(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.logger.Info("starting redis health check")

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("stopping redis health check")
			return
		case <-ticker.C:
			r.check(ctx)
		}
	}
}

func (r *SnapshotRepository) check(ctx context.Context) {
	if err := r.client.Ping(ctx).Err(); err != nil {
		if r.isAvailable.CompareAndSwap(true, false) {
			r.logger.Error("redis connection lost", "error", err)
		}
		return
	}
	if r.isAvailable.CompareAndSwap(false, true) {
		r.logger.Info("redis connection recovered")
	}
	if err := r.ReplayPending(ctx); err != nil {
		r.logger.Error("failed to replay held snapshot", "error", err)
		r.isAvailable.Store(false)
	}
}

// ReplayPending writes the held snapshot, if any.
func (r *SnapshotRepository) ReplayPending(ctx context.Context) error {
	r.mu.Lock()
	s := r.pending
	r.pending = nil
	r.mu.Unlock()
	if s == nil {
		return nil
	}

	if err := r.write(ctx, s); err != nil {
		r.mu.Lock()
		if r.pending == nil {
			r.pending = s
		}
		r.mu.Unlock()
		return err
	}
	r.logger.Info("held snapshot mirrored", "loaded_at", s.LoadedAt)
	return nil
}
