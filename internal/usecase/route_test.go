package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/V4T54L/dealer-portal/internal/domain"
	"github.com/V4T54L/dealer-portal/internal/domain/mocks"
)

const routeDate = "2024-06-20"

func stopNames(stops []PlannedStop) []string {
	out := make([]string, len(stops))
	for i, s := range stops {
		out[i] = s.DealerName
	}
	return out
}

func TestRoute_AvailableOnlyCoveredDealers(t *testing.T) {
	f := newFixture(t)
	uc := NewRouteUseCase(f.store)
	alice := f.user(t, "alice")

	available, err := uc.Available(alice, routeDate, "")
	require.NoError(t, err)
	require.Len(t, available, 2)
	assert.Equal(t, "Midway Trucks", available[0].Name)
	assert.Equal(t, "North Shore Motors", available[1].Name)

	available, err = uc.Available(alice, routeDate, "evanston")
	require.NoError(t, err)
	require.Len(t, available, 1)

	// Admins bypass coverage for editing, not for routes.
	available, err = uc.Available(f.user(t, "admin"), routeDate, "")
	require.NoError(t, err)
	assert.Empty(t, available)

	_, err = uc.Available(alice, "20-06-2024", "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRoute_AddStop(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	uc := NewRouteUseCase(f.store)
	alice := f.user(t, "alice")

	first, res, err := uc.AddStop(ctx, alice, routeDate, mocks.NorthDealerID)
	require.NoError(t, err)
	assert.Equal(t, domain.WriteOK, res.Outcome)
	assert.Equal(t, 1, first.Position)

	again, _, err := uc.AddStop(ctx, alice, routeDate, mocks.NorthDealerID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID, "adding a planned dealer returns the existing stop")

	second, _, err := uc.AddStop(ctx, alice, routeDate, mocks.OverrideDealerID)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Position)

	_, _, err = uc.AddStop(ctx, alice, routeDate, mocks.SouthDealerID)
	assert.ErrorIs(t, err, domain.ErrPermission)

	_, _, err = uc.AddStop(ctx, f.user(t, "manny"), routeDate, mocks.NorthDealerID)
	assert.ErrorIs(t, err, domain.ErrPermission)

	_, _, err = uc.AddStop(ctx, alice, routeDate, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	stops, err := uc.Stops(alice, routeDate)
	require.NoError(t, err)
	assert.Equal(t, []string{"North Shore Motors", "Midway Trucks"}, stopNames(stops))

	available, err := uc.Available(alice, routeDate, "")
	require.NoError(t, err)
	assert.Empty(t, available)

	other, err := uc.Stops(alice, "2024-06-21")
	require.NoError(t, err)
	assert.Empty(t, other, "routes are keyed by date")

	bobs, err := uc.Stops(f.user(t, "bob"), routeDate)
	require.NoError(t, err)
	assert.Empty(t, bobs, "routes are keyed by user")
}

func TestRoute_ConcurrentAddStopWritesOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	uc := NewRouteUseCase(f.store)
	alice := f.user(t, "alice")

	const workers = 8
	var wg sync.WaitGroup
	stops := make([]domain.RouteStop, workers)
	results := make([]domain.WriteResult, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			stops[i], results[i], errs[i] = uc.AddStop(ctx, alice, routeDate, mocks.NorthDealerID)
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, domain.WriteOK, results[i].Outcome)
		assert.Equal(t, stops[0].ID, stops[i].ID, "every caller sees the same stop")
		assert.Equal(t, 1, stops[i].Position)
	}

	planned, err := uc.Stops(alice, routeDate)
	require.NoError(t, err)
	assert.Len(t, planned, 1)
	assert.Len(t, f.backend.Routes, 1)
}

func TestRoute_MoveStop(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	uc := NewRouteUseCase(f.store)
	bob := f.user(t, "bob")

	a, _, err := uc.AddStop(ctx, bob, routeDate, mocks.NorthDealerID)
	require.NoError(t, err)
	b, _, err := uc.AddStop(ctx, bob, routeDate, mocks.SouthDealerID)
	require.NoError(t, err)

	res, err := uc.MoveStop(ctx, bob, routeDate, b.ID, MoveUp)
	require.NoError(t, err)
	assert.Equal(t, domain.WriteOK, res.Outcome)

	stops, _ := uc.Stops(bob, routeDate)
	assert.Equal(t, []string{"South Side Auto", "North Shore Motors"}, stopNames(stops))

	calls := f.backend.Calls
	res, err = uc.MoveStop(ctx, bob, routeDate, b.ID, MoveUp)
	require.NoError(t, err)
	assert.Equal(t, domain.WriteOK, res.Outcome)
	assert.Equal(t, calls, f.backend.Calls, "moving the first stop up does not write")

	_, err = uc.MoveStop(ctx, bob, routeDate, a.ID, MoveDown)
	require.NoError(t, err)
	stops, _ = uc.Stops(bob, routeDate)
	assert.Equal(t, []string{"South Side Auto", "North Shore Motors"}, stopNames(stops))

	_, err = uc.MoveStop(ctx, bob, routeDate, a.ID, "sideways")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = uc.MoveStop(ctx, bob, routeDate, uuid.New(), MoveUp)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRoute_RemoveStop(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	uc := NewRouteUseCase(f.store)
	bob := f.user(t, "bob")

	stop, _, err := uc.AddStop(ctx, bob, routeDate, mocks.NorthDealerID)
	require.NoError(t, err)

	_, err = uc.RemoveStop(ctx, f.user(t, "alice"), stop.ID)
	assert.ErrorIs(t, err, domain.ErrPermission)

	res, err := uc.RemoveStop(ctx, bob, stop.ID)
	require.NoError(t, err)
	assert.True(t, res.OK())

	stops, _ := uc.Stops(bob, routeDate)
	assert.Empty(t, stops)

	_, err = uc.RemoveStop(ctx, bob, stop.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRoute_AddStopRollsBack(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	uc := NewRouteUseCase(f.store)
	bob := f.user(t, "bob")
	f.backend.SaveRouteErr = errors.New("write timeout")

	_, res, err := uc.AddStop(ctx, bob, routeDate, mocks.NorthDealerID)
	require.NoError(t, err)
	assert.Equal(t, domain.WriteRolledBack, res.Outcome)

	stops, _ := uc.Stops(bob, routeDate)
	assert.Empty(t, stops)
}
