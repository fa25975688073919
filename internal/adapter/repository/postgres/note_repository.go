package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/V4T54L/dealer-portal/internal/domain"
)

type noteRow struct {
	ID             uuid.UUID `db:"id"`
	DealerID       uuid.UUID `db:"dealer_id"`
	AuthorUsername string    `db:"author_username"`
	Category       string    `db:"category"`
	Body           string    `db:"body"`
	CreatedAt      time.Time `db:"created_at"`
}

type taskRow struct {
	ID               uuid.UUID     `db:"id"`
	DealerID         uuid.UUID     `db:"dealer_id"`
	NoteID           uuid.NullUUID `db:"note_id"`
	AssigneeUsername string        `db:"assignee_username"`
	CreatedBy        string        `db:"created_by"`
	Body             string        `db:"body"`
	CreatedAt        time.Time     `db:"created_at"`
	CompletedAt      sql.NullTime  `db:"completed_at"`
}

// ListNotes loads every note, oldest first.
func (r *Repository) ListNotes(ctx context.Context) ([]domain.Note, error) {
	var rows []noteRow
	if err := r.db.SelectContext(ctx, &rows, `
		SELECT id, dealer_id, author_username, category, body, created_at
		FROM notes ORDER BY created_at`); err != nil {
		return nil, fmt.Errorf("select notes: %w", err)
	}
	notes := make([]domain.Note, len(rows))
	for i, row := range rows {
		notes[i] = domain.Note{
			ID:             row.ID,
			DealerID:       row.DealerID,
			AuthorUsername: row.AuthorUsername,
			Category:       domain.NoteCategory(row.Category),
			Body:           row.Body,
			CreatedAt:      row.CreatedAt,
		}
	}
	return notes, nil
}

// InsertNote stores a note. Notes are never updated.
func (r *Repository) InsertNote(ctx context.Context, n domain.Note) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO notes (id, dealer_id, author_username, category, body, created_at)
		VALUES (:id, :dealer_id, :author_username, :category, :body, :created_at)`,
		noteRow{
			ID:             n.ID,
			DealerID:       n.DealerID,
			AuthorUsername: n.AuthorUsername,
			Category:       string(n.Category),
			Body:           n.Body,
			CreatedAt:      n.CreatedAt,
		})
	if err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

// ListTasks loads every task, oldest first.
func (r *Repository) ListTasks(ctx context.Context) ([]domain.Task, error) {
	var rows []taskRow
	if err := r.db.SelectContext(ctx, &rows, `
		SELECT id, dealer_id, note_id, assignee_username, created_by, body, created_at, completed_at
		FROM tasks ORDER BY created_at`); err != nil {
		return nil, fmt.Errorf("select tasks: %w", err)
	}
	tasks := make([]domain.Task, len(rows))
	for i, row := range rows {
		tasks[i] = domain.Task{
			ID:               row.ID,
			DealerID:         row.DealerID,
			NoteID:           row.NoteID.UUID,
			AssigneeUsername: row.AssigneeUsername,
			CreatedBy:        row.CreatedBy,
			Body:             row.Body,
			CreatedAt:        row.CreatedAt,
		}
		if row.CompletedAt.Valid {
			done := row.CompletedAt.Time
			tasks[i].CompletedAt = &done
		}
	}
	return tasks, nil
}

// SaveTask upserts a task.
func (r *Repository) SaveTask(ctx context.Context, t domain.Task) error {
	row := taskRow{
		ID:               t.ID,
		DealerID:         t.DealerID,
		NoteID:           uuid.NullUUID{UUID: t.NoteID, Valid: t.NoteID != uuid.Nil},
		AssigneeUsername: t.AssigneeUsername,
		CreatedBy:        t.CreatedBy,
		Body:             t.Body,
		CreatedAt:        t.CreatedAt,
	}
	if t.CompletedAt != nil {
		row.CompletedAt = sql.NullTime{Time: *t.CompletedAt, Valid: true}
	}
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO tasks (id, dealer_id, note_id, assignee_username, created_by, body, created_at, completed_at)
		VALUES (:id, :dealer_id, :note_id, :assignee_username, :created_by, :body, :created_at, :completed_at)
		ON CONFLICT (id) DO UPDATE SET
			assignee_username = EXCLUDED.assignee_username,
			body = EXCLUDED.body,
			completed_at = EXCLUDED.completed_at`, row)
	if err != nil {
		return fmt.Errorf("upsert task: %w", err)
	}
	return nil
}
