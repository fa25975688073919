package usecase

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/V4T54L/dealer-portal/internal/domain"
	"github.com/V4T54L/dealer-portal/internal/domain/mocks"
	"github.com/V4T54L/dealer-portal/internal/store"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func fixedNow() time.Time { return mocks.SeedTime }

type fixture struct {
	backend *mocks.MockBackend
	store   *store.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	backend := mocks.NewSeededBackend()
	s := store.New(backend, nil, discard, nil)
	require.NoError(t, s.Refresh(context.Background()))
	return &fixture{backend: backend, store: s}
}

func (f *fixture) user(t *testing.T, username string) domain.User {
	t.Helper()
	u, ok := f.store.Snapshot().UserByUsername(username)
	require.True(t, ok, "seeded user %q", username)
	return u
}

func (f *fixture) dealer(t *testing.T, name string) domain.Dealer {
	t.Helper()
	for _, d := range f.store.Snapshot().Dealers {
		if d.Name == name {
			return d
		}
	}
	t.Fatalf("dealer %q not in snapshot", name)
	return domain.Dealer{}
}

func TestResolveActor(t *testing.T) {
	f := newFixture(t)
	snap := f.store.Snapshot()

	u, err := ResolveActor(snap, "alice")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleRep, u.Role)

	_, err = ResolveActor(snap, "carol")
	assert.ErrorIs(t, err, domain.ErrPermission)

	_, err = ResolveActor(snap, "nobody")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestValidateInput(t *testing.T) {
	err := validateInput(NoteInput{Category: "Gossip", Body: "hi"})
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "Category")

	assert.NoError(t, validateInput(NoteInput{Category: "Visit", Body: "hi"}))
}
