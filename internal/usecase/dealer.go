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
	"github.com/V4T54L/dealer-portal/internal/scope"
	"github.com/V4T54L/dealer-portal/internal/store"
)

// DealerInput is the payload for creating a dealer.
type DealerInput struct {
	Name        string `json:"name" validate:"required,max=200"`
	City        string `json:"city" validate:"max=120"`
	State       string `json:"state" validate:"required"`
	Region      string `json:"region" validate:"required"`
	Type        string `json:"type" validate:"max=60"`
	Status      string `json:"status" validate:"omitempty,oneof=Active Pending Prospect Inactive 'Black Listed'"`
	Phone       string `json:"phone" validate:"max=40"`
	ContactName string `json:"contact_name" validate:"max=120"`
}

// DealerUpdate carries the fields to change; nil fields are left alone.
type DealerUpdate struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	City        *string `json:"city" validate:"omitempty,max=120"`
	State       *string `json:"state" validate:"omitempty,min=1"`
	Region      *string `json:"region" validate:"omitempty,min=1"`
	Type        *string `json:"type" validate:"omitempty,max=60"`
	Status      *string `json:"status" validate:"omitempty,oneof=Active Pending Prospect Inactive 'Black Listed'"`
	Phone       *string `json:"phone" validate:"omitempty,max=40"`
	ContactName *string `json:"contact_name" validate:"omitempty,max=120"`
	LastVisited *string `json:"last_visited" validate:"omitempty,datetime=2006-01-02"`
}

// DealerDetail is a dealer with everything its detail view shows.
type DealerDetail struct {
	Dealer      domain.Dealer     `json:"dealer"`
	Reps        []string          `json:"reps"`
	Permissions scope.Permissions `json:"permissions"`
	Notes       []domain.Note     `json:"notes"`
	OpenTasks   []domain.Task     `json:"open_tasks"`
}

// DealerUseCase handles dealer reads and writes behind the permission gate.
type DealerUseCase struct {
	store  SnapshotStore
	logger *slog.Logger
	now    func() time.Time
}

func NewDealerUseCase(s SnapshotStore, logger *slog.Logger) *DealerUseCase {
	return &DealerUseCase{store: s, logger: logger, now: time.Now}
}

// Get returns the detail view of a dealer. Reading is not restricted.
func (uc *DealerUseCase) Get(actor domain.User, id uuid.UUID) (DealerDetail, error) {
	snap := uc.store.Snapshot()
	d, ok := snap.DealerByID(id)
	if !ok {
		return DealerDetail{}, fmt.Errorf("dealer %s: %w", id, domain.ErrNotFound)
	}

	users := scope.SortUsers(snap.Users)
	reps := scope.RepsFor(d, users)
	names := make([]string, len(reps))
	for i, r := range reps {
		names[i] = r.Name()
	}

	detail := DealerDetail{
		Dealer:      d,
		Reps:        names,
		Permissions: scope.PermissionsFor(actor, d),
		Notes:       dealerNotes(snap, id),
	}
	for _, t := range snap.Tasks {
		if t.DealerID == id && t.Open() {
			detail.OpenTasks = append(detail.OpenTasks, t)
		}
	}
	return detail, nil
}

// Create adds a dealer. State and region must exist in the catalog; a rep
// may only create dealers inside their own coverage.
func (uc *DealerUseCase) Create(ctx context.Context, actor domain.User, in DealerInput) (domain.Dealer, domain.WriteResult, error) {
	if err := validateInput(in); err != nil {
		return domain.Dealer{}, domain.WriteResult{}, err
	}
	snap := uc.store.Snapshot()
	if !snap.Regions.Has(in.State, in.Region) {
		return domain.Dealer{}, domain.WriteResult{}, fmt.Errorf("%w: region %s/%s is not in the catalog", domain.ErrValidation, in.State, in.Region)
	}

	status := domain.DealerStatus(in.Status)
	if status == "" {
		status = domain.DealerProspect
	}
	now := uc.now().UTC()
	d := domain.Dealer{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(in.Name),
		City:        strings.TrimSpace(in.City),
		State:       in.State,
		Region:      in.Region,
		Type:        in.Type,
		Status:      status,
		Phone:       in.Phone,
		ContactName: in.ContactName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if !scope.CanAccess(actor, d) {
		return domain.Dealer{}, domain.WriteResult{}, fmt.Errorf("dealer region is outside your coverage: %w", domain.ErrPermission)
	}

	res, err := uc.store.Apply(ctx, store.PutDealer(d))
	if err == nil && res.OK() {
		uc.logger.Info("dealer created", "dealer_id", d.ID, "contact_name", d.ContactName, "phone", d.Phone, "by", actor.Username)
	}
	return d, res, err
}

// Update changes dealer fields. Requires CanEdit.
func (uc *DealerUseCase) Update(ctx context.Context, actor domain.User, id uuid.UUID, in DealerUpdate) (domain.Dealer, domain.WriteResult, error) {
	if err := validateInput(in); err != nil {
		return domain.Dealer{}, domain.WriteResult{}, err
	}
	d, err := uc.editable(actor, id, func(p scope.Permissions) bool { return p.CanEdit }, "edit")
	if err != nil {
		return domain.Dealer{}, domain.WriteResult{}, err
	}

	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&d.Name, in.Name)
	set(&d.City, in.City)
	set(&d.State, in.State)
	set(&d.Region, in.Region)
	set(&d.Type, in.Type)
	set(&d.Phone, in.Phone)
	set(&d.ContactName, in.ContactName)
	if in.Status != nil {
		d.Status = domain.DealerStatus(*in.Status)
	}
	if in.LastVisited != nil {
		lv, _ := time.Parse(domain.DateLayout, *in.LastVisited)
		d.LastVisited = &lv
	}
	d.UpdatedAt = uc.now().UTC()

	res, err := uc.store.Apply(ctx, store.PutDealer(d))
	return d, res, err
}

// Reassign sets or clears the explicit rep override. Only admins and
// managers may do this; the target must be an existing rep.
func (uc *DealerUseCase) Reassign(ctx context.Context, actor domain.User, id uuid.UUID, username string) (domain.Dealer, domain.WriteResult, error) {
	d, err := uc.editable(actor, id, func(p scope.Permissions) bool { return p.CanReassignRep }, "reassign rep")
	if err != nil {
		return domain.Dealer{}, domain.WriteResult{}, err
	}
	if username != "" {
		u, ok := uc.store.Snapshot().UserByUsername(username)
		if !ok || u.Role != domain.RoleRep {
			return domain.Dealer{}, domain.WriteResult{}, fmt.Errorf("%w: %q is not a rep", domain.ErrValidation, username)
		}
	}

	d.AssignedRepUsername = username
	d.UpdatedAt = uc.now().UTC()
	res, err := uc.store.Apply(ctx, store.PutDealer(d))
	if err == nil && res.OK() {
		uc.logger.Info("dealer rep override changed", "dealer_id", id, "rep", username, "by", actor.Username)
	}
	return d, res, err
}

// SetSendingDeals records whether the dealer sends deals. Reasons are kept
// only for No.
func (uc *DealerUseCase) SetSendingDeals(ctx context.Context, actor domain.User, id uuid.UUID, value domain.TriState, reasons domain.NoDealReasons) (domain.Dealer, domain.WriteResult, error) {
	d, err := uc.editable(actor, id, func(p scope.Permissions) bool { return p.CanEdit }, "edit")
	if err != nil {
		return domain.Dealer{}, domain.WriteResult{}, err
	}

	d.SendingDeals = value
	d.NoDealReasons = domain.NoDealReasons{}
	if value == domain.No {
		reasons.Other = strings.TrimSpace(reasons.Other)
		d.NoDealReasons = reasons
	}
	d.UpdatedAt = uc.now().UTC()

	res, err := uc.store.Apply(ctx, store.PutDealer(d))
	return d, res, err
}

// Delete removes a dealer. confirmation must repeat the dealer's name.
func (uc *DealerUseCase) Delete(ctx context.Context, actor domain.User, id uuid.UUID, confirmation string) (domain.WriteResult, error) {
	d, err := uc.editable(actor, id, func(p scope.Permissions) bool { return p.CanDelete }, "delete")
	if err != nil {
		return domain.WriteResult{}, err
	}
	if strings.TrimSpace(confirmation) != d.Name {
		return domain.WriteResult{}, fmt.Errorf("%w: confirmation text does not match dealer name", domain.ErrValidation)
	}

	res, err := uc.store.Apply(ctx, store.RemoveDealer(id))
	if err == nil && res.OK() {
		uc.logger.Info("dealer deleted", "dealer_id", id, "by", actor.Username)
	}
	return res, err
}

func (uc *DealerUseCase) editable(actor domain.User, id uuid.UUID, allowed func(scope.Permissions) bool, action string) (domain.Dealer, error) {
	d, ok := uc.store.Snapshot().DealerByID(id)
	if !ok {
		return domain.Dealer{}, fmt.Errorf("dealer %s: %w", id, domain.ErrNotFound)
	}
	if !allowed(scope.PermissionsFor(actor, d)) {
		return domain.Dealer{}, fmt.Errorf("%s dealer %q: %w", action, d.Name, domain.ErrPermission)
	}
	return d.Clone(), nil
}

func dealerNotes(snap *domain.Snapshot, dealerID uuid.UUID) []domain.Note {
	var notes []domain.Note
	for _, n := range snap.Notes {
		if n.DealerID == dealerID {
			notes = append(notes, n)
		}
	}
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].CreatedAt.After(notes[j].CreatedAt)
	})
	return notes
}
