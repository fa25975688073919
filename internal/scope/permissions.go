package scope

import "github.com/V4T54L/dealer-portal/internal/domain"

// Permissions is the set of dealer affordances open to a user.
type Permissions struct {
	CanEdit           bool `json:"can_edit"`
	CanReassignRep    bool `json:"can_reassign_rep"`
	CanAddManagerNote bool `json:"can_add_manager_note"`
	CanDelete         bool `json:"can_delete"`
}

// PermissionsFor derives the affordances of user on dealer. CanDelete
// shares the CanEdit predicate, so any covering rep may delete.
func PermissionsFor(user domain.User, dealer domain.Dealer) Permissions {
	canEdit := CanAccess(user, dealer)
	privileged := user.Role.Privileged()
	return Permissions{
		CanEdit:           canEdit,
		CanReassignRep:    privileged,
		CanAddManagerNote: privileged,
		CanDelete:         canEdit,
	}
}
