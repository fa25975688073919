package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/V4T54L/dealer-portal/internal/domain"
	"github.com/V4T54L/dealer-portal/internal/domain/mocks"
)

func ptr[T any](v T) *T { return &v }

func newDealerUseCase(f *fixture) *DealerUseCase {
	uc := NewDealerUseCase(f.store, discard)
	uc.now = fixedNow
	return uc
}

func TestDealer_Get(t *testing.T) {
	f := newFixture(t)
	f.backend.Notes = []domain.Note{
		{ID: uuid.New(), DealerID: mocks.NorthDealerID, Category: domain.NoteOther, CreatedAt: mocks.SeedTime.Add(-time.Hour)},
		{ID: uuid.New(), DealerID: mocks.NorthDealerID, Category: domain.NoteVisit, CreatedAt: mocks.SeedTime},
	}
	require.NoError(t, f.store.Refresh(context.Background()))
	uc := newDealerUseCase(f)

	detail, err := uc.Get(f.user(t, "carol"), mocks.NorthDealerID)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, detail.Reps)
	assert.False(t, detail.Permissions.CanEdit, "reading is open, editing is not")
	require.Len(t, detail.Notes, 2)
	assert.Equal(t, domain.NoteVisit, detail.Notes[0].Category, "newest note first")

	_, err = uc.Get(f.user(t, "carol"), uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDealer_Create(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	uc := newDealerUseCase(f)

	d, res, err := uc.Create(ctx, f.user(t, "bob"), DealerInput{Name: " Lakeview Autos ", State: "IL", Region: "Chicago-South"})
	require.NoError(t, err)
	assert.Equal(t, domain.WriteOK, res.Outcome)
	assert.Equal(t, "Lakeview Autos", d.Name)
	assert.Equal(t, domain.DealerProspect, d.Status)
	assert.Equal(t, domain.Unknown, d.SendingDeals)
	_, ok := f.store.Snapshot().DealerByID(d.ID)
	assert.True(t, ok)

	_, _, err = uc.Create(ctx, f.user(t, "alice"), DealerInput{Name: "Out Of Area", State: "IL", Region: "Chicago-South"})
	assert.ErrorIs(t, err, domain.ErrPermission)

	_, _, err = uc.Create(ctx, f.user(t, "admin"), DealerInput{Name: "Nowhere", State: "IL", Region: "Peoria"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, _, err = uc.Create(ctx, f.user(t, "admin"), DealerInput{State: "IL", Region: "Chicago-South"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, _, err = uc.Create(ctx, f.user(t, "admin"), DealerInput{Name: "Bad", State: "IL", Region: "Chicago-South", Status: "Dormant"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDealer_Update(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	uc := newDealerUseCase(f)

	_, _, err := uc.Update(ctx, f.user(t, "alice"), mocks.SouthDealerID, DealerUpdate{City: ptr("Cicero")})
	assert.ErrorIs(t, err, domain.ErrPermission)

	d, res, err := uc.Update(ctx, f.user(t, "manny"), mocks.SouthDealerID, DealerUpdate{
		City:        ptr("Cicero"),
		Status:      ptr("Inactive"),
		LastVisited: ptr("2024-06-01"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.WriteOK, res.Outcome)
	assert.Equal(t, "Cicero", d.City)
	assert.Equal(t, "South Side Auto", d.Name, "nil fields are left alone")
	assert.Equal(t, domain.DealerInactive, d.Status)
	assert.Equal(t, "2024-06-01", d.LastVisited.Format(domain.DateLayout))

	_, _, err = uc.Update(ctx, f.user(t, "manny"), mocks.SouthDealerID, DealerUpdate{LastVisited: ptr("June 1")})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDealer_UpdateToUncataloguedRegion(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	uc := newDealerUseCase(f)

	d, res, err := uc.Update(ctx, f.user(t, "manny"), mocks.SouthDealerID, DealerUpdate{Region: ptr("Peoria")})
	require.NoError(t, err)
	assert.Equal(t, domain.WriteOK, res.Outcome)
	assert.Equal(t, "Peoria", d.Region)

	snap := f.store.Snapshot()
	assert.False(t, snap.Regions.Has("IL", "Peoria"), "updates do not touch the catalog")
	assert.Contains(t, RegionOptions(snap, ""), "Peoria", "dealer-observed region is offered")
	assert.NotContains(t, RegionOptions(snap, "IL"), "Peoria")
}

func TestDealer_UpdateRollsBack(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	uc := newDealerUseCase(f)
	f.backend.SaveDealerErr = errors.New("write timeout")

	_, res, err := uc.Update(ctx, f.user(t, "bob"), mocks.SouthDealerID, DealerUpdate{City: ptr("Cicero")})
	require.NoError(t, err)
	assert.Equal(t, domain.WriteRolledBack, res.Outcome)

	d := f.dealer(t, "South Side Auto")
	assert.Equal(t, "Chicago", d.City, "snapshot restored after failed write")
}

func TestDealer_Reassign(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	uc := newDealerUseCase(f)

	_, _, err := uc.Reassign(ctx, f.user(t, "bob"), mocks.SouthDealerID, "alice")
	assert.ErrorIs(t, err, domain.ErrPermission)

	_, _, err = uc.Reassign(ctx, f.user(t, "manny"), mocks.SouthDealerID, "manny")
	assert.ErrorIs(t, err, domain.ErrValidation)

	d, _, err := uc.Reassign(ctx, f.user(t, "manny"), mocks.SouthDealerID, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", d.AssignedRepUsername)

	// The override is exclusive: bob no longer covers the dealer.
	search := NewSearchUseCase(f.store)
	rows := search.Filtered(f.user(t, "bob"), DealerFilter{Rep: "bob"})
	for _, r := range rows {
		assert.NotEqual(t, mocks.SouthDealerID, r.ID)
	}

	d, _, err = uc.Reassign(ctx, f.user(t, "admin"), mocks.SouthDealerID, "")
	require.NoError(t, err)
	assert.False(t, d.HasOverride())
}

func TestDealer_SetSendingDeals(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	uc := newDealerUseCase(f)
	bob := f.user(t, "bob")

	d, _, err := uc.SetSendingDeals(ctx, bob, mocks.NorthDealerID, domain.No, domain.NoDealReasons{Pricing: true, Other: "  slow payouts "})
	require.NoError(t, err)
	assert.Equal(t, domain.No, d.SendingDeals)
	assert.Equal(t, domain.NoDealReasons{Pricing: true, Other: "slow payouts"}, d.NoDealReasons)

	d, _, err = uc.SetSendingDeals(ctx, bob, mocks.NorthDealerID, domain.Yes, domain.NoDealReasons{Pricing: true})
	require.NoError(t, err)
	assert.Equal(t, domain.NoDealReasons{}, d.NoDealReasons, "reasons only kept for no")

	_, _, err = uc.SetSendingDeals(ctx, f.user(t, "alice"), mocks.SouthDealerID, domain.Yes, domain.NoDealReasons{})
	assert.ErrorIs(t, err, domain.ErrPermission)
}

func TestDealer_Delete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	uc := newDealerUseCase(f)
	alice := f.user(t, "alice")

	_, err := uc.Delete(ctx, alice, mocks.OverrideDealerID, "midway trucks")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = uc.Delete(ctx, alice, mocks.SouthDealerID, "South Side Auto")
	assert.ErrorIs(t, err, domain.ErrPermission)

	res, err := uc.Delete(ctx, alice, mocks.OverrideDealerID, "Midway Trucks")
	require.NoError(t, err)
	assert.Equal(t, domain.WriteOK, res.Outcome)
	_, ok := f.store.Snapshot().DealerByID(mocks.OverrideDealerID)
	assert.False(t, ok)
}
