package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/V4T54L/dealer-portal/internal/domain"
)

type userRow struct {
	ID          uuid.UUID      `db:"id"`
	Username    string         `db:"username"`
	Email       string         `db:"email"`
	DisplayName string         `db:"display_name"`
	Role        string         `db:"role"`
	Status      string         `db:"status"`
	States      pq.StringArray `db:"states"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

type userRegionRow struct {
	UserID uuid.UUID `db:"user_id"`
	State  string    `db:"state"`
	Region string    `db:"region"`
}

// ListUsers loads every user with their region coverage.
func (r *Repository) ListUsers(ctx context.Context) ([]domain.User, error) {
	var rows []userRow
	if err := r.db.SelectContext(ctx, &rows, `
		SELECT id, username, email, display_name, role, status, states, created_at, updated_at
		FROM users ORDER BY username`); err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}

	var regions []userRegionRow
	if err := r.db.SelectContext(ctx, &regions, `
		SELECT user_id, state, region FROM user_regions ORDER BY state, region`); err != nil {
		return nil, fmt.Errorf("select user regions: %w", err)
	}
	byUser := make(map[uuid.UUID]map[string][]string)
	for _, rr := range regions {
		m, ok := byUser[rr.UserID]
		if !ok {
			m = make(map[string][]string)
			byUser[rr.UserID] = m
		}
		m[rr.State] = append(m[rr.State], rr.Region)
	}

	users := make([]domain.User, len(rows))
	for i, row := range rows {
		users[i] = domain.User{
			ID:             row.ID,
			Username:       row.Username,
			Email:          row.Email,
			DisplayName:    row.DisplayName,
			Role:           domain.UserRole(row.Role),
			Status:         domain.UserStatus(row.Status),
			States:         []string(row.States),
			RegionsByState: byUser[row.ID],
			CreatedAt:      row.CreatedAt,
			UpdatedAt:      row.UpdatedAt,
		}
		if users[i].RegionsByState == nil {
			users[i].RegionsByState = map[string][]string{}
		}
	}
	return users, nil
}

// SaveUser upserts the user and replaces its coverage rows in one
// transaction.
func (r *Repository) SaveUser(ctx context.Context, u domain.User) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() // Rollback is a no-op if Commit() is called

	row := userRow{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        string(u.Role),
		Status:      string(u.Status),
		States:      pq.StringArray(u.States),
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
	if row.States == nil {
		row.States = pq.StringArray{}
	}
	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO users (id, username, email, display_name, role, status, states, created_at, updated_at)
		VALUES (:id, :username, :email, :display_name, :role, :status, :states, :created_at, :updated_at)
		ON CONFLICT (id) DO UPDATE SET
			username = EXCLUDED.username,
			email = EXCLUDED.email,
			display_name = EXCLUDED.display_name,
			role = EXCLUDED.role,
			status = EXCLUDED.status,
			states = EXCLUDED.states,
			updated_at = EXCLUDED.updated_at`, row)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("username %q: %w", u.Username, domain.ErrDuplicate)
		}
		return fmt.Errorf("upsert user: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_regions WHERE user_id = $1`, u.ID); err != nil {
		return fmt.Errorf("clear user regions: %w", err)
	}
	for state, regions := range u.RegionsByState {
		for _, region := range regions {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO user_regions (user_id, state, region) VALUES ($1, $2, $3)`,
				u.ID, state, region); err != nil {
				return fmt.Errorf("insert user region: %w", err)
			}
		}
	}

	return tx.Commit()
}

func isUniqueViolation(err error) bool {
	pqErr, ok := err.(*pq.Error)
	return ok && pqErr.Code == "23505"
}
