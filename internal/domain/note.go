package domain

import (
	"time"

	"github.com/google/uuid"
)

// NoteCategory classifies a dealer note.
type NoteCategory string

const (
	NoteVisit   NoteCategory = "Visit"
	NoteProblem NoteCategory = "Problem"
	NoteOther   NoteCategory = "Other"
	NoteManager NoteCategory = "Manager"
)

func (c NoteCategory) Valid() bool {
	switch c {
	case NoteVisit, NoteProblem, NoteOther, NoteManager:
		return true
	}
	return false
}

// Note is an immutable entry logged against a dealer.
type Note struct {
	ID             uuid.UUID    `json:"id"`
	DealerID       uuid.UUID    `json:"dealer_id"`
	AuthorUsername string       `json:"author_username"`
	Category       NoteCategory `json:"category"`
	Body           string       `json:"body"`
	CreatedAt      time.Time    `json:"created_at"`
}

// Task is a follow-up for a rep, created from a Manager note.
type Task struct {
	ID               uuid.UUID  `json:"id"`
	DealerID         uuid.UUID  `json:"dealer_id"`
	NoteID           uuid.UUID  `json:"note_id"`
	AssigneeUsername string     `json:"assignee_username"`
	CreatedBy        string     `json:"created_by"`
	Body             string     `json:"body"`
	CreatedAt        time.Time  `json:"created_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}

// Open reports whether the task has not been completed.
func (t Task) Open() bool {
	return t.CompletedAt == nil
}

// RouteStop is one dealer visit planned for a user on a calendar date.
type RouteStop struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Date     string    `json:"date"` // YYYY-MM-DD
	DealerID uuid.UUID `json:"dealer_id"`
	Position int       `json:"position"`
}

// DateLayout is the ISO calendar date format used for route keys and
// visit dates.
const DateLayout = "2006-01-02"
