package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/V4T54L/dealer-portal/internal/domain"
	"github.com/V4T54L/dealer-portal/internal/store"
)

// TaskUseCase lists and completes follow-up tasks.
type TaskUseCase struct {
	store SnapshotStore
	now   func() time.Time
}

func NewTaskUseCase(s SnapshotStore) *TaskUseCase {
	return &TaskUseCase{store: s, now: time.Now}
}

// ListOpen returns the open tasks assigned to assignee, oldest first. An
// empty assignee means the actor. Reps only see their own tasks.
func (uc *TaskUseCase) ListOpen(actor domain.User, assignee string) ([]domain.Task, error) {
	if assignee == "" {
		assignee = actor.Username
	}
	if assignee != actor.Username && !actor.Role.Privileged() {
		return nil, fmt.Errorf("tasks of another user: %w", domain.ErrPermission)
	}

	var out []domain.Task
	for _, t := range uc.store.Snapshot().Tasks {
		if t.AssigneeUsername == assignee && t.Open() {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Complete marks a task done. Only the assignee, a manager or an admin
// may complete it; completing a done task is a no-op.
func (uc *TaskUseCase) Complete(ctx context.Context, actor domain.User, id uuid.UUID) (domain.Task, domain.WriteResult, error) {
	t, ok := uc.store.Snapshot().TaskByID(id)
	if !ok {
		return domain.Task{}, domain.WriteResult{}, fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
	}
	if t.AssigneeUsername != actor.Username && !actor.Role.Privileged() {
		return domain.Task{}, domain.WriteResult{}, fmt.Errorf("complete task: %w", domain.ErrPermission)
	}
	if !t.Open() {
		return t, domain.Written(), nil
	}

	done := uc.now().UTC()
	t.CompletedAt = &done
	res, err := uc.store.Apply(ctx, store.PutTask(t))
	if err != nil || !res.OK() {
		t.CompletedAt = nil
	}
	return t, res, err
}
