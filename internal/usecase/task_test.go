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

func seedTasks(t *testing.T, f *fixture) (older, newer domain.Task) {
	t.Helper()
	older = domain.Task{ID: uuid.New(), DealerID: mocks.NorthDealerID, AssigneeUsername: "alice", CreatedAt: mocks.SeedTime.Add(-2 * time.Hour)}
	newer = domain.Task{ID: uuid.New(), DealerID: mocks.NorthDealerID, AssigneeUsername: "alice", CreatedAt: mocks.SeedTime.Add(-time.Hour)}
	done := mocks.SeedTime
	f.backend.Tasks = []domain.Task{
		newer,
		older,
		{ID: uuid.New(), AssigneeUsername: "alice", CompletedAt: &done},
		{ID: uuid.New(), AssigneeUsername: "bob"},
	}
	require.NoError(t, f.store.Refresh(context.Background()))
	return older, newer
}

func TestTask_ListOpen(t *testing.T) {
	f := newFixture(t)
	older, newer := seedTasks(t, f)
	uc := NewTaskUseCase(f.store)

	tasks, err := uc.ListOpen(f.user(t, "alice"), "")
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, older.ID, tasks[0].ID)
	assert.Equal(t, newer.ID, tasks[1].ID)

	_, err = uc.ListOpen(f.user(t, "bob"), "alice")
	assert.ErrorIs(t, err, domain.ErrPermission)

	tasks, err = uc.ListOpen(f.user(t, "manny"), "alice")
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}

func TestTask_Complete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	older, _ := seedTasks(t, f)
	uc := NewTaskUseCase(f.store)
	uc.now = fixedNow

	_, _, err := uc.Complete(ctx, f.user(t, "bob"), older.ID)
	assert.ErrorIs(t, err, domain.ErrPermission)

	done, res, err := uc.Complete(ctx, f.user(t, "alice"), older.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.WriteOK, res.Outcome)
	require.NotNil(t, done.CompletedAt)
	assert.Equal(t, mocks.SeedTime, *done.CompletedAt)

	calls := f.backend.Calls
	_, res, err = uc.Complete(ctx, f.user(t, "alice"), older.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.WriteOK, res.Outcome)
	assert.Equal(t, calls, f.backend.Calls, "completing a done task does not write")

	tasks, _ := uc.ListOpen(f.user(t, "alice"), "")
	assert.Len(t, tasks, 1)

	_, _, err = uc.Complete(ctx, f.user(t, "alice"), uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTask_CompleteRollsBack(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	older, _ := seedTasks(t, f)
	uc := NewTaskUseCase(f.store)
	f.backend.SaveTaskErr = errors.New("write timeout")

	task, res, err := uc.Complete(ctx, f.user(t, "manny"), older.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.WriteRolledBack, res.Outcome)
	assert.Nil(t, task.CompletedAt)

	stored, _ := f.store.Snapshot().TaskByID(older.ID)
	assert.True(t, stored.Open())
}
