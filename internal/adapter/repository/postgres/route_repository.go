package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/V4T54L/dealer-portal/internal/domain"
)

type routeStopRow struct {
	ID        uuid.UUID `db:"id"`
	Username  string    `db:"username"`
	RouteDate time.Time `db:"route_date"`
	DealerID  uuid.UUID `db:"dealer_id"`
	Position  int       `db:"position"`
}

// ListRouteStops loads every planned stop.
func (r *Repository) ListRouteStops(ctx context.Context) ([]domain.RouteStop, error) {
	var rows []routeStopRow
	if err := r.db.SelectContext(ctx, &rows, `
		SELECT id, username, route_date, dealer_id, position
		FROM route_stops ORDER BY username, route_date, position`); err != nil {
		return nil, fmt.Errorf("select route stops: %w", err)
	}
	stops := make([]domain.RouteStop, len(rows))
	for i, row := range rows {
		stops[i] = domain.RouteStop{
			ID:       row.ID,
			Username: row.Username,
			Date:     row.RouteDate.UTC().Format(domain.DateLayout),
			DealerID: row.DealerID,
			Position: row.Position,
		}
	}
	return stops, nil
}

// SaveRouteStop upserts a stop. A dealer appears at most once per user and
// date; inserting it again fails with ErrDuplicate.
func (r *Repository) SaveRouteStop(ctx context.Context, s domain.RouteStop) error {
	date, err := time.Parse(domain.DateLayout, s.Date)
	if err != nil {
		return fmt.Errorf("%w: route date %q", domain.ErrValidation, s.Date)
	}
	_, err = r.db.NamedExecContext(ctx, `
		INSERT INTO route_stops (id, username, route_date, dealer_id, position)
		VALUES (:id, :username, :route_date, :dealer_id, :position)
		ON CONFLICT (id) DO UPDATE SET position = EXCLUDED.position`,
		routeStopRow{
			ID:        s.ID,
			Username:  s.Username,
			RouteDate: date,
			DealerID:  s.DealerID,
			Position:  s.Position,
		})
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("dealer already on route: %w", domain.ErrDuplicate)
		}
		return fmt.Errorf("upsert route stop: %w", err)
	}
	return nil
}

// DeleteRouteStop removes a stop.
func (r *Repository) DeleteRouteStop(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM route_stops WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete route stop: %w", err)
	}
	return nil
}
