package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/V4T54L/dealer-portal/internal/domain"
	"github.com/V4T54L/dealer-portal/internal/store"
)

// SnapshotStore is the part of the store the use cases depend on.
type SnapshotStore interface {
	Snapshot() *domain.Snapshot
	Apply(ctx context.Context, primary store.Change, followups ...store.Change) (domain.WriteResult, error)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateInput runs struct tag validation and reports failures as
// ErrValidation.
func validateInput(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, len(verrs))
		for i, fe := range verrs {
			fields[i] = fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag())
		}
		return fmt.Errorf("%w: invalid %s", domain.ErrValidation, strings.Join(fields, ", "))
	}
	return fmt.Errorf("%w: %v", domain.ErrValidation, err)
}

// ResolveActor loads the acting user by username from the snapshot.
// Unknown and inactive accounts are rejected.
func ResolveActor(snap *domain.Snapshot, username string) (domain.User, error) {
	u, ok := snap.UserByUsername(username)
	if !ok {
		return domain.User{}, fmt.Errorf("user %q: %w", username, domain.ErrNotFound)
	}
	if u.Status == domain.UserInactive {
		return domain.User{}, fmt.Errorf("user %q is inactive: %w", username, domain.ErrPermission)
	}
	return u, nil
}

func requirePrivileged(actor domain.User, action string) error {
	if !actor.Role.Privileged() {
		return fmt.Errorf("%s requires admin or manager: %w", action, domain.ErrPermission)
	}
	return nil
}

func requireAdmin(actor domain.User, action string) error {
	if actor.Role != domain.RoleAdmin {
		return fmt.Errorf("%s requires admin: %w", action, domain.ErrPermission)
	}
	return nil
}

// matchesText is the free-text predicate shared by search and route
// planning: a case-insensitive substring over name, city, state and region.
func matchesText(d domain.Dealer, text string) bool {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return true
	}
	haystack := strings.ToLower(strings.Join([]string{d.Name, d.City, d.State, d.Region}, " "))
	return strings.Contains(haystack, text)
}
