package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/V4T54L/dealer-portal/internal/domain"
)

type dealerRow struct {
	ID                  uuid.UUID      `db:"id"`
	Name                string         `db:"name"`
	City                string         `db:"city"`
	State               string         `db:"state"`
	Region              string         `db:"region"`
	Type                string         `db:"type"`
	Status              string         `db:"status"`
	Phone               string         `db:"phone"`
	ContactName         string         `db:"contact_name"`
	AssignedRepUsername sql.NullString `db:"assigned_rep_username"`
	LastVisited         sql.NullTime   `db:"last_visited"`
	SendingDeals        sql.NullBool   `db:"sending_deals"`
	ReasonFunding       bool           `db:"reason_funding"`
	ReasonPricing       bool           `db:"reason_pricing"`
	ReasonCompetitor    bool           `db:"reason_competitor"`
	ReasonInventory     bool           `db:"reason_inventory"`
	ReasonRelationship  bool           `db:"reason_relationship"`
	ReasonProcess       bool           `db:"reason_process"`
	ReasonOther         string         `db:"reason_other"`
	CreatedAt           time.Time      `db:"created_at"`
	UpdatedAt           time.Time      `db:"updated_at"`
}

func (row dealerRow) toDomain() domain.Dealer {
	d := domain.Dealer{
		ID:                  row.ID,
		Name:                row.Name,
		City:                row.City,
		State:               row.State,
		Region:              row.Region,
		Type:                row.Type,
		Status:              domain.DealerStatus(row.Status),
		Phone:               row.Phone,
		ContactName:         row.ContactName,
		AssignedRepUsername: row.AssignedRepUsername.String,
		NoDealReasons: domain.NoDealReasons{
			Funding:      row.ReasonFunding,
			Pricing:      row.ReasonPricing,
			Competitor:   row.ReasonCompetitor,
			Inventory:    row.ReasonInventory,
			Relationship: row.ReasonRelationship,
			Process:      row.ReasonProcess,
			Other:        row.ReasonOther,
		},
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if row.LastVisited.Valid {
		lv := row.LastVisited.Time.UTC()
		d.LastVisited = &lv
	}
	if row.SendingDeals.Valid {
		d.SendingDeals = domain.TriFromBool(&row.SendingDeals.Bool)
	}
	return d
}

func dealerToRow(d domain.Dealer) dealerRow {
	row := dealerRow{
		ID:                  d.ID,
		Name:                d.Name,
		City:                d.City,
		State:               d.State,
		Region:              d.Region,
		Type:                d.Type,
		Status:              string(d.Status),
		Phone:               d.Phone,
		ContactName:         d.ContactName,
		AssignedRepUsername: sql.NullString{String: d.AssignedRepUsername, Valid: d.AssignedRepUsername != ""},
		ReasonFunding:       d.NoDealReasons.Funding,
		ReasonPricing:       d.NoDealReasons.Pricing,
		ReasonCompetitor:    d.NoDealReasons.Competitor,
		ReasonInventory:     d.NoDealReasons.Inventory,
		ReasonRelationship:  d.NoDealReasons.Relationship,
		ReasonProcess:       d.NoDealReasons.Process,
		ReasonOther:         d.NoDealReasons.Other,
		CreatedAt:           d.CreatedAt,
		UpdatedAt:           d.UpdatedAt,
	}
	if d.LastVisited != nil {
		row.LastVisited = sql.NullTime{Time: *d.LastVisited, Valid: true}
	}
	if b := d.SendingDeals.Bool(); b != nil {
		row.SendingDeals = sql.NullBool{Bool: *b, Valid: true}
	}
	return row
}

const dealerColumns = `id, name, city, state, region, type, status, phone, contact_name,
	assigned_rep_username, last_visited, sending_deals,
	reason_funding, reason_pricing, reason_competitor, reason_inventory,
	reason_relationship, reason_process, reason_other, created_at, updated_at`

// ListDealers loads every dealer.
func (r *Repository) ListDealers(ctx context.Context) ([]domain.Dealer, error) {
	var rows []dealerRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT `+dealerColumns+` FROM dealers ORDER BY name`); err != nil {
		return nil, fmt.Errorf("select dealers: %w", err)
	}
	dealers := make([]domain.Dealer, len(rows))
	for i, row := range rows {
		dealers[i] = row.toDomain()
	}
	return dealers, nil
}

// SaveDealer upserts a dealer. Last write wins on every field.
func (r *Repository) SaveDealer(ctx context.Context, d domain.Dealer) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO dealers (`+dealerColumns+`)
		VALUES (:id, :name, :city, :state, :region, :type, :status, :phone, :contact_name,
			:assigned_rep_username, :last_visited, :sending_deals,
			:reason_funding, :reason_pricing, :reason_competitor, :reason_inventory,
			:reason_relationship, :reason_process, :reason_other, :created_at, :updated_at)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			city = EXCLUDED.city,
			state = EXCLUDED.state,
			region = EXCLUDED.region,
			type = EXCLUDED.type,
			status = EXCLUDED.status,
			phone = EXCLUDED.phone,
			contact_name = EXCLUDED.contact_name,
			assigned_rep_username = EXCLUDED.assigned_rep_username,
			last_visited = EXCLUDED.last_visited,
			sending_deals = EXCLUDED.sending_deals,
			reason_funding = EXCLUDED.reason_funding,
			reason_pricing = EXCLUDED.reason_pricing,
			reason_competitor = EXCLUDED.reason_competitor,
			reason_inventory = EXCLUDED.reason_inventory,
			reason_relationship = EXCLUDED.reason_relationship,
			reason_process = EXCLUDED.reason_process,
			reason_other = EXCLUDED.reason_other,
			updated_at = EXCLUDED.updated_at`, dealerToRow(d))
	if err != nil {
		return fmt.Errorf("upsert dealer: %w", err)
	}
	return nil
}

// DeleteDealer removes a dealer; notes, tasks and route stops cascade.
func (r *Repository) DeleteDealer(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM dealers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete dealer: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("dealer %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
