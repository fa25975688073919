package redis

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/V4T54L/dealer-portal/internal/domain"
)

// newTestClient connects to REDIS_TEST_ADDR (a redis:// URL) or skips.
func newTestClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set, skipping redis tests")
	}
	opts, err := redis.ParseURL(addr)
	if err != nil {
		t.Fatalf("failed to parse redis url: %v", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis not reachable: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestSnapshotRepository_RoundTrip(t *testing.T) {
	client := newTestClient(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	key := "dealer-portal:test:" + uuid.NewString()
	t.Cleanup(func() { client.Del(context.Background(), key) })

	repo := NewSnapshotRepository(client, logger, key, time.Minute)
	ctx := context.Background()

	if _, err := repo.LoadSnapshot(ctx); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound before any save, got %v", err)
	}

	lv := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	snap := &domain.Snapshot{
		Dealers: []domain.Dealer{{
			ID: uuid.New(), Name: "Acme Motors", State: "IL", Region: "Chicago-North",
			Status: domain.DealerActive, LastVisited: &lv, SendingDeals: domain.No,
			NoDealReasons: domain.NoDealReasons{Funding: true, Other: "x"},
		}},
		Regions:  domain.RegionsCatalog{"IL": {"Chicago-North"}},
		LoadedAt: time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC),
	}
	if err := repo.SaveSnapshot(ctx, snap); err != nil {
		t.Fatalf("SaveSnapshot returned error: %v", err)
	}

	got, err := repo.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("LoadSnapshot returned error: %v", err)
	}
	if len(got.Dealers) != 1 || got.Dealers[0].Name != "Acme Motors" {
		t.Fatalf("unexpected dealers: %+v", got.Dealers)
	}
	if got.Dealers[0].SendingDeals != domain.No || !got.Dealers[0].NoDealReasons.Funding {
		t.Errorf("sending-deals state not preserved: %+v", got.Dealers[0])
	}
	if !got.LoadedAt.Equal(snap.LoadedAt) {
		t.Errorf("LoadedAt = %v, want %v", got.LoadedAt, snap.LoadedAt)
	}
}

func TestSnapshotRepository_HoldsWhileUnavailable(t *testing.T) {
	client := newTestClient(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	key := "dealer-portal:test:" + uuid.NewString()
	t.Cleanup(func() { client.Del(context.Background(), key) })

	repo := NewSnapshotRepository(client, logger, key, time.Minute)
	repo.isAvailable.Store(false)
	ctx := context.Background()

	snap := &domain.Snapshot{Regions: domain.RegionsCatalog{}, LoadedAt: time.Now().UTC()}
	if err := repo.SaveSnapshot(ctx, snap); err == nil {
		t.Fatal("expected an error while marked unavailable")
	}
	if _, err := repo.LoadSnapshot(ctx); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("nothing should be written while unavailable, got %v", err)
	}

	repo.check(ctx)
	if _, err := repo.LoadSnapshot(ctx); err != nil {
		t.Fatalf("held snapshot was not replayed: %v", err)
	}
}
