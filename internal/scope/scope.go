// Package scope decides which users cover which dealers. Every access,
// search, report and route decision in the portal goes through Covers.
package scope

import (
	"sort"
	"strings"

	"github.com/V4T54L/dealer-portal/internal/domain"
)

// Covers reports whether user covers dealer. An explicit override is
// exclusive: the dealer is covered by exactly the assigned username and by
// nobody else, whatever their state/region coverage says.
func Covers(user domain.User, dealer domain.Dealer) bool {
	if dealer.HasOverride() {
		return dealer.AssignedRepUsername == user.Username
	}
	return user.CoversRegion(dealer.State, dealer.Region)
}

// CanAccess reports whether user may view and edit dealer. Admins and
// managers bypass coverage.
func CanAccess(user domain.User, dealer domain.Dealer) bool {
	return user.Role.Privileged() || Covers(user, dealer)
}

// RepsFor returns the reps attributed to dealer, in the order of users.
// An override that does not resolve to a known user yields an empty slice.
func RepsFor(dealer domain.Dealer, users []domain.User) []domain.User {
	if dealer.HasOverride() {
		for _, u := range users {
			if u.Username == dealer.AssignedRepUsername {
				return []domain.User{u}
			}
		}
		return nil
	}

	var reps []domain.User
	for _, u := range users {
		if u.Role == domain.RoleRep && Covers(u, dealer) {
			reps = append(reps, u)
		}
	}
	return reps
}

// PrimaryRep returns the single rep a dealer is attributed to when only one
// can be shown: the override if it resolves, else the first covering rep.
// Pass users through SortUsers first so the choice is reproducible.
func PrimaryRep(dealer domain.Dealer, users []domain.User) (domain.User, bool) {
	reps := RepsFor(dealer, users)
	if len(reps) == 0 {
		return domain.User{}, false
	}
	return reps[0], true
}

// RepNames returns the comma-joined display names of every attributed rep.
func RepNames(dealer domain.Dealer, users []domain.User) string {
	reps := RepsFor(dealer, users)
	names := make([]string, len(reps))
	for i, r := range reps {
		names[i] = r.Name()
	}
	return strings.Join(names, ", ")
}

// HasRep reports whether username is among the reps attributed to dealer.
func HasRep(dealer domain.Dealer, users []domain.User, username string) bool {
	for _, r := range RepsFor(dealer, users) {
		if r.Username == username {
			return true
		}
	}
	return false
}

// SortUsers returns a copy of users ordered by username. This is the
// enumeration order every tie-break in the portal relies on.
func SortUsers(users []domain.User) []domain.User {
	sorted := append([]domain.User(nil), users...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Username < sorted[j].Username
	})
	return sorted
}

// CoveredDealers filters dealers down to those user covers.
func CoveredDealers(user domain.User, dealers []domain.Dealer) []domain.Dealer {
	var out []domain.Dealer
	for _, d := range dealers {
		if Covers(user, d) {
			out = append(out, d)
		}
	}
	return out
}
