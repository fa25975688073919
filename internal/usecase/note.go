package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/V4T54L/dealer-portal/internal/domain"
	"github.com/V4T54L/dealer-portal/internal/scope"
	"github.com/V4T54L/dealer-portal/internal/store"
)

// NoteInput is the payload for logging a note.
type NoteInput struct {
	Category string `json:"category" validate:"required,oneof=Visit Problem Other Manager"`
	Body     string `json:"body" validate:"required,max=5000"`
	// Assignee overrides the rep a Manager note's task goes to.
	Assignee string `json:"assignee"`
}

// NoteUseCase logs notes and their side effects.
type NoteUseCase struct {
	store  SnapshotStore
	logger *slog.Logger
	now    func() time.Time
}

func NewNoteUseCase(s SnapshotStore, logger *slog.Logger) *NoteUseCase {
	return &NoteUseCase{store: s, logger: logger, now: time.Now}
}

// List returns a dealer's notes, newest first.
func (uc *NoteUseCase) List(dealerID uuid.UUID) ([]domain.Note, error) {
	snap := uc.store.Snapshot()
	if _, ok := snap.DealerByID(dealerID); !ok {
		return nil, fmt.Errorf("dealer %s: %w", dealerID, domain.ErrNotFound)
	}
	return dealerNotes(snap, dealerID), nil
}

// Create logs a note against a dealer.
//
// A Visit note also moves the dealer's last-visited date forward. A
// Manager note also creates a task for the assignee (by default the
// dealer's primary rep). Both are separate writes: if one fails the note
// stays and the result carries a warning.
func (uc *NoteUseCase) Create(ctx context.Context, actor domain.User, dealerID uuid.UUID, in NoteInput) (domain.Note, *domain.Task, domain.WriteResult, error) {
	if err := validateInput(in); err != nil {
		return domain.Note{}, nil, domain.WriteResult{}, err
	}
	snap := uc.store.Snapshot()
	dealer, ok := snap.DealerByID(dealerID)
	if !ok {
		return domain.Note{}, nil, domain.WriteResult{}, fmt.Errorf("dealer %s: %w", dealerID, domain.ErrNotFound)
	}

	category := domain.NoteCategory(in.Category)
	perms := scope.PermissionsFor(actor, dealer)
	if category == domain.NoteManager && !perms.CanAddManagerNote {
		return domain.Note{}, nil, domain.WriteResult{}, fmt.Errorf("manager notes: %w", domain.ErrPermission)
	}
	if category != domain.NoteManager && !perms.CanEdit {
		return domain.Note{}, nil, domain.WriteResult{}, fmt.Errorf("add note to %q: %w", dealer.Name, domain.ErrPermission)
	}

	now := uc.now().UTC()
	note := domain.Note{
		ID:             uuid.New(),
		DealerID:       dealerID,
		AuthorUsername: actor.Username,
		Category:       category,
		Body:           strings.TrimSpace(in.Body),
		CreatedAt:      now,
	}

	var (
		followups []store.Change
		task      *domain.Task
		warning   string
	)
	switch category {
	case domain.NoteVisit:
		visited := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		if dealer.LastVisited == nil || dealer.LastVisited.Before(visited) {
			updated := dealer.Clone()
			updated.LastVisited = &visited
			updated.UpdatedAt = now
			followups = append(followups, store.PutDealer(updated))
		}
	case domain.NoteManager:
		assignee, err := uc.assignee(snap, dealer, in.Assignee)
		if err != nil {
			return domain.Note{}, nil, domain.WriteResult{}, err
		}
		if assignee == "" {
			warning = "no rep covers this dealer; no task was created"
			break
		}
		task = &domain.Task{
			ID:               uuid.New(),
			DealerID:         dealerID,
			NoteID:           note.ID,
			AssigneeUsername: assignee,
			CreatedBy:        actor.Username,
			Body:             note.Body,
			CreatedAt:        now,
		}
		followups = append(followups, store.PutTask(*task))
	}

	res, err := uc.store.Apply(ctx, store.AddNote(note), followups...)
	if err != nil {
		return domain.Note{}, nil, res, err
	}
	if res.Outcome == domain.WriteWarning {
		task = nil
	}
	if res.Outcome == domain.WriteOK && warning != "" {
		res = domain.WrittenWithWarning(warning, nil)
	}
	if res.OK() {
		uc.logger.Info("note created", "note_id", note.ID, "dealer_id", dealerID, "category", category, "by", actor.Username)
	}
	return note, task, res, nil
}

func (uc *NoteUseCase) assignee(snap *domain.Snapshot, dealer domain.Dealer, requested string) (string, error) {
	if requested != "" {
		u, ok := snap.UserByUsername(requested)
		if !ok || u.Role != domain.RoleRep {
			return "", fmt.Errorf("%w: %q is not a rep", domain.ErrValidation, requested)
		}
		return u.Username, nil
	}
	rep, ok := scope.PrimaryRep(dealer, scope.SortUsers(snap.Users))
	if !ok {
		return "", nil
	}
	return rep.Username, nil
}
