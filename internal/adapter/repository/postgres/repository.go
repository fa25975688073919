package postgres

import (
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/V4T54L/dealer-portal/internal/domain"
)

// Repository implements domain.Backend on PostgreSQL.
type Repository struct {
	db     *sqlx.DB
	logger *slog.Logger
}

var _ domain.Backend = (*Repository)(nil)

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *sqlx.DB, logger *slog.Logger) *Repository {
	return &Repository{db: db, logger: logger.With("component", "postgres")}
}
