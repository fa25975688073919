package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/V4T54L/dealer-portal/internal/domain"
	"github.com/V4T54L/dealer-portal/internal/store"
)

// UserInput is the payload for creating or updating a user.
type UserInput struct {
	Username       string              `json:"username" validate:"required,min=2,max=64,excludesall= "`
	Email          string              `json:"email" validate:"omitempty,email"`
	DisplayName    string              `json:"display_name" validate:"max=120"`
	Role           string              `json:"role" validate:"required,oneof=Admin Manager Rep"`
	Status         string              `json:"status" validate:"omitempty,oneof=Active Inactive"`
	RegionsByState map[string][]string `json:"regions_by_state"`
}

// DirectoryUseCase manages users and the regions catalog. Every write is
// admin-only.
type DirectoryUseCase struct {
	store  SnapshotStore
	logger *slog.Logger
	now    func() time.Time
}

func NewDirectoryUseCase(s SnapshotStore, logger *slog.Logger) *DirectoryUseCase {
	return &DirectoryUseCase{store: s, logger: logger, now: time.Now}
}

// Users lists every user sorted by username.
func (uc *DirectoryUseCase) Users() []domain.User {
	users := append([]domain.User(nil), uc.store.Snapshot().Users...)
	sort.SliceStable(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users
}

// CreateUser adds a user. A taken username is rejected.
func (uc *DirectoryUseCase) CreateUser(ctx context.Context, actor domain.User, in UserInput) (domain.User, domain.WriteResult, error) {
	if err := requireAdmin(actor, "create user"); err != nil {
		return domain.User{}, domain.WriteResult{}, err
	}
	now := uc.now().UTC()
	u, err := uc.buildUser(in, domain.User{ID: uuid.New(), CreatedAt: now})
	if err != nil {
		return domain.User{}, domain.WriteResult{}, err
	}
	u.UpdatedAt = now

	res, err := uc.store.Apply(ctx, store.PutUser(u))
	if err == nil && res.OK() {
		uc.logger.Info("user created", "username", u.Username, "email", u.Email, "role", u.Role, "by", actor.Username)
	}
	return u, res, err
}

// UpdateUser replaces the role, status, profile and coverage of a user.
// The username is fixed: dealer overrides, notes, tasks, routes and tokens
// all refer to it.
func (uc *DirectoryUseCase) UpdateUser(ctx context.Context, actor domain.User, username string, in UserInput) (domain.User, domain.WriteResult, error) {
	if err := requireAdmin(actor, "update user"); err != nil {
		return domain.User{}, domain.WriteResult{}, err
	}
	existing, ok := uc.store.Snapshot().UserByUsername(username)
	if !ok {
		return domain.User{}, domain.WriteResult{}, fmt.Errorf("user %q: %w", username, domain.ErrNotFound)
	}
	if strings.TrimSpace(in.Username) != existing.Username {
		return domain.User{}, domain.WriteResult{}, fmt.Errorf("%w: username %q cannot be changed", domain.ErrValidation, existing.Username)
	}
	u, err := uc.buildUser(in, existing)
	if err != nil {
		return domain.User{}, domain.WriteResult{}, err
	}
	u.UpdatedAt = uc.now().UTC()

	res, err := uc.store.Apply(ctx, store.PutUser(u))
	return u, res, err
}

func (uc *DirectoryUseCase) buildUser(in UserInput, base domain.User) (domain.User, error) {
	if err := validateInput(in); err != nil {
		return domain.User{}, err
	}
	catalog := uc.store.Snapshot().Regions
	for state, regions := range in.RegionsByState {
		for _, r := range regions {
			if r != "" && !catalog.Has(state, r) {
				return domain.User{}, fmt.Errorf("%w: region %s/%s is not in the catalog", domain.ErrValidation, state, r)
			}
		}
	}

	u := base.Clone()
	u.Username = strings.TrimSpace(in.Username)
	u.Email = strings.TrimSpace(in.Email)
	u.DisplayName = strings.TrimSpace(in.DisplayName)
	u.Role = domain.UserRole(in.Role)
	u.Status = domain.UserStatus(in.Status)
	if u.Status == "" {
		u.Status = domain.UserActive
	}
	u.RegionsByState = in.RegionsByState
	u.NormalizeCoverage()
	return u, nil
}

// Regions returns the catalog.
func (uc *DirectoryUseCase) Regions() domain.RegionsCatalog {
	return uc.store.Snapshot().Regions
}

// AddRegion appends a region to a state's catalog.
func (uc *DirectoryUseCase) AddRegion(ctx context.Context, actor domain.User, state, name string) (domain.WriteResult, error) {
	if err := requireAdmin(actor, "add region"); err != nil {
		return domain.WriteResult{}, err
	}
	state, name = strings.TrimSpace(state), strings.TrimSpace(name)
	if state == "" || name == "" {
		return domain.WriteResult{}, fmt.Errorf("%w: state and region name are required", domain.ErrValidation)
	}
	return uc.store.Apply(ctx, store.AddRegion(state, name))
}

// DeleteRegion removes a region that no dealer references.
func (uc *DirectoryUseCase) DeleteRegion(ctx context.Context, actor domain.User, state, name string) (domain.WriteResult, error) {
	if err := requireAdmin(actor, "delete region"); err != nil {
		return domain.WriteResult{}, err
	}
	res, err := uc.store.Apply(ctx, store.RemoveRegion(state, name))
	if err == nil && res.OK() {
		uc.logger.Info("region deleted", "state", state, "region", name, "by", actor.Username)
	}
	return res, err
}
