package scope

import (
	"testing"

	"github.com/V4T54L/dealer-portal/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rep(username string, coverage map[string][]string) domain.User {
	u := domain.User{Username: username, Role: domain.RoleRep, Status: domain.UserActive, RegionsByState: coverage}
	u.NormalizeCoverage()
	return u
}

func usernames(users []domain.User) []string {
	out := make([]string, len(users))
	for i, u := range users {
		out[i] = u.Username
	}
	return out
}

func TestCovers(t *testing.T) {
	alice := rep("alice", map[string][]string{"IL": {"Chicago-North"}})

	tests := []struct {
		name   string
		dealer domain.Dealer
		want   bool
	}{
		{"state and region match", domain.Dealer{State: "IL", Region: "Chicago-North"}, true},
		{"region in other state", domain.Dealer{State: "WI", Region: "Chicago-North"}, false},
		{"region not covered", domain.Dealer{State: "IL", Region: "Chicago-South"}, false},
		{"override to user", domain.Dealer{State: "TX", Region: "Austin", AssignedRepUsername: "alice"}, true},
		{"override to someone else wins over region", domain.Dealer{State: "IL", Region: "Chicago-North", AssignedRepUsername: "bob"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Covers(alice, tt.dealer))
		})
	}
}

func TestCovers_RegionsIgnoredWithoutState(t *testing.T) {
	u := domain.User{
		Username:       "carol",
		Role:           domain.RoleRep,
		States:         []string{"IL"},
		RegionsByState: map[string][]string{"WI": {"Madison"}},
	}
	assert.False(t, Covers(u, domain.Dealer{State: "WI", Region: "Madison"}))
	assert.False(t, Covers(u, domain.Dealer{State: "IL", Region: "Madison"}))
}

func TestRepsFor_SingleRegionOverlap(t *testing.T) {
	a := rep("a", map[string][]string{"IL": {"Chicago-North"}})
	b := rep("b", map[string][]string{"IL": {"Chicago-North", "Chicago-South"}})
	users := SortUsers([]domain.User{b, a})

	north := domain.Dealer{State: "IL", Region: "Chicago-North"}
	assert.Equal(t, []string{"a", "b"}, usernames(RepsFor(north, users)))

	south := north
	south.Region = "Chicago-South"
	assert.Equal(t, []string{"b"}, usernames(RepsFor(south, users)))
}

func TestRepsFor_OverrideExclusive(t *testing.T) {
	a := rep("a", map[string][]string{"IL": {"Chicago-North"}})
	b := rep("b", map[string][]string{"IL": {"Chicago-North"}})
	x := rep("x", nil)
	users := SortUsers([]domain.User{a, b, x})

	dealer := domain.Dealer{State: "IL", Region: "Chicago-North", AssignedRepUsername: "x"}
	assert.Equal(t, []string{"x"}, usernames(RepsFor(dealer, users)))

	dealer.AssignedRepUsername = "ghost"
	assert.Empty(t, RepsFor(dealer, users), "orphaned override resolves to nobody")
	_, ok := PrimaryRep(dealer, users)
	assert.False(t, ok)
}

func TestRepsFor_SkipsNonReps(t *testing.T) {
	mgr := domain.User{Username: "mgr", Role: domain.RoleManager, RegionsByState: map[string][]string{"IL": {"Chicago-North"}}}
	mgr.NormalizeCoverage()
	dealer := domain.Dealer{State: "IL", Region: "Chicago-North"}
	assert.Empty(t, RepsFor(dealer, []domain.User{mgr}))
}

func TestPrimaryRep_UsesSortedOrder(t *testing.T) {
	z := rep("zed", map[string][]string{"IL": {"Chicago-North"}})
	m := rep("mia", map[string][]string{"IL": {"Chicago-North"}})
	dealer := domain.Dealer{State: "IL", Region: "Chicago-North"}

	primary, ok := PrimaryRep(dealer, SortUsers([]domain.User{z, m}))
	require.True(t, ok)
	assert.Equal(t, "mia", primary.Username)
}

func TestRepNames(t *testing.T) {
	a := rep("a", map[string][]string{"IL": {"Chicago-North"}})
	a.DisplayName = "Ann"
	b := rep("b", map[string][]string{"IL": {"Chicago-North"}})
	dealer := domain.Dealer{State: "IL", Region: "Chicago-North"}
	assert.Equal(t, "Ann, b", RepNames(dealer, []domain.User{a, b}))
}

func TestPermissionsFor(t *testing.T) {
	dealer := domain.Dealer{State: "IL", Region: "Chicago-North"}
	admin := domain.User{Username: "root", Role: domain.RoleAdmin}
	covering := rep("a", map[string][]string{"IL": {"Chicago-North"}})
	outsider := rep("b", map[string][]string{"IL": {"Chicago-South"}})

	assert.Equal(t, Permissions{true, true, true, true}, PermissionsFor(admin, dealer))
	assert.Equal(t, Permissions{CanEdit: true, CanDelete: true}, PermissionsFor(covering, dealer))
	assert.Equal(t, Permissions{}, PermissionsFor(outsider, dealer))

	assigned := dealer
	assigned.AssignedRepUsername = "b"
	assert.True(t, PermissionsFor(outsider, assigned).CanEdit)
	assert.False(t, PermissionsFor(covering, assigned).CanEdit)
	assert.False(t, PermissionsFor(outsider, assigned).CanReassignRep)
}
