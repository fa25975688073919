package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// UserRole defines the permission level of a user.
type UserRole string

const (
	RoleAdmin   UserRole = "Admin"
	RoleManager UserRole = "Manager"
	RoleRep     UserRole = "Rep"
)

// Valid reports whether r is one of the known roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleRep:
		return true
	}
	return false
}

// Privileged reports whether the role bypasses coverage checks.
func (r UserRole) Privileged() bool {
	return r == RoleAdmin || r == RoleManager
}

// UserStatus marks whether an account may sign in.
type UserStatus string

const (
	UserActive   UserStatus = "Active"
	UserInactive UserStatus = "Inactive"
)

// User represents a portal account together with its rep coverage.
type User struct {
	ID          uuid.UUID  `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	DisplayName string     `json:"display_name"`
	Role        UserRole   `json:"role"`
	Status      UserStatus `json:"status"`

	// States is the set of covered state codes. RegionsByState is only
	// consulted for a state that is also present in States.
	States         []string            `json:"states"`
	RegionsByState map[string][]string `json:"regions_by_state"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Name returns the display name, falling back to the username.
func (u User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// HasState reports whether state is in the user's covered state set.
func (u User) HasState(state string) bool {
	for _, s := range u.States {
		if s == state {
			return true
		}
	}
	return false
}

// CoversRegion reports whether region is covered within state. An absent
// state key is the same as empty coverage.
func (u User) CoversRegion(state, region string) bool {
	if !u.HasState(state) {
		return false
	}
	for _, r := range u.RegionsByState[state] {
		if r == region {
			return true
		}
	}
	return false
}

// NormalizeCoverage drops empty and duplicate entries from RegionsByState
// and rebuilds States as exactly the key set of non-empty entries.
func (u *User) NormalizeCoverage() {
	clean := make(map[string][]string, len(u.RegionsByState))
	for state, regions := range u.RegionsByState {
		if state == "" {
			continue
		}
		seen := make(map[string]struct{}, len(regions))
		var kept []string
		for _, r := range regions {
			if r == "" {
				continue
			}
			if _, dup := seen[r]; dup {
				continue
			}
			seen[r] = struct{}{}
			kept = append(kept, r)
		}
		if len(kept) > 0 {
			sort.Strings(kept)
			clean[state] = kept
		}
	}

	states := make([]string, 0, len(clean))
	for state := range clean {
		states = append(states, state)
	}
	sort.Strings(states)

	u.RegionsByState = clean
	u.States = states
}

// Clone returns a deep copy of the user.
func (u User) Clone() User {
	c := u
	c.States = append([]string(nil), u.States...)
	if u.RegionsByState != nil {
		c.RegionsByState = make(map[string][]string, len(u.RegionsByState))
		for k, v := range u.RegionsByState {
			c.RegionsByState[k] = append([]string(nil), v...)
		}
	}
	return c
}
