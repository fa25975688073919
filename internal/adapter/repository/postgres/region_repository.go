package postgres

import (
	"context"
	"fmt"

	"github.com/V4T54L/dealer-portal/internal/domain"
)

// ListRegions loads the catalog, each state's regions in catalog order.
func (r *Repository) ListRegions(ctx context.Context) (domain.RegionsCatalog, error) {
	var rows []domain.Region
	if err := r.db.SelectContext(ctx, &rows, `
		SELECT state, name, position FROM regions ORDER BY state, position, name`); err != nil {
		return nil, fmt.Errorf("select regions: %w", err)
	}
	catalog := make(domain.RegionsCatalog)
	for _, row := range rows {
		catalog[row.State] = append(catalog[row.State], row.Name)
	}
	return catalog, nil
}

// AddRegion appends a region at the end of its state's list.
func (r *Repository) AddRegion(ctx context.Context, state, name string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO regions (state, name, position)
		VALUES ($1, $2, (SELECT COALESCE(MAX(position), 0) + 1 FROM regions WHERE state = $1))`,
		state, name)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("region %s/%s: %w", state, name, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert region: %w", err)
	}
	return nil
}

// DeleteRegion removes a region only if no dealer references it. The guard
// and the delete run as one statement.
func (r *Repository) DeleteRegion(ctx context.Context, state, name string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM regions
		WHERE state = $1 AND name = $2
		  AND NOT EXISTS (SELECT 1 FROM dealers WHERE state = $1 AND region = $2)`,
		state, name)
	if err != nil {
		return fmt.Errorf("delete region: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}

	var inUse bool
	if err := r.db.GetContext(ctx, &inUse,
		`SELECT EXISTS(SELECT 1 FROM dealers WHERE state = $1 AND region = $2)`, state, name); err != nil {
		return fmt.Errorf("check region usage: %w", err)
	}
	if inUse {
		return fmt.Errorf("region %s/%s: %w", state, name, domain.ErrRegionInUse)
	}
	return fmt.Errorf("region %s/%s: %w", state, name, domain.ErrNotFound)
}
