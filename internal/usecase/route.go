package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/V4T54L/dealer-portal/internal/domain"
	"github.com/V4T54L/dealer-portal/internal/scope"
	"github.com/V4T54L/dealer-portal/internal/store"
)

// Move directions for route reordering.
const (
	MoveUp   = "up"
	MoveDown = "down"
)

// PlannedStop is a route stop joined with its dealer.
type PlannedStop struct {
	domain.RouteStop
	DealerName string `json:"dealer_name"`
	City       string `json:"city"`
	State      string `json:"state"`
	Region     string `json:"region"`
}

// RouteUseCase plans per-user, per-date dealer visits.
type RouteUseCase struct {
	store SnapshotStore
}

func NewRouteUseCase(s SnapshotStore) *RouteUseCase {
	return &RouteUseCase{store: s}
}

func parseRouteDate(date string) error {
	if _, err := time.Parse(domain.DateLayout, date); err != nil {
		return fmt.Errorf("%w: route date %q must be YYYY-MM-DD", domain.ErrValidation, date)
	}
	return nil
}

// routeStops returns the user's stops for date ordered by position.
func routeStops(snap *domain.Snapshot, username, date string) []domain.RouteStop {
	var stops []domain.RouteStop
	for _, r := range snap.Routes {
		if r.Username == username && r.Date == date {
			stops = append(stops, r)
		}
	}
	sort.SliceStable(stops, func(i, j int) bool {
		return stops[i].Position < stops[j].Position
	})
	return stops
}

// Stops lists actor's route for date.
func (uc *RouteUseCase) Stops(actor domain.User, date string) ([]PlannedStop, error) {
	if err := parseRouteDate(date); err != nil {
		return nil, err
	}
	snap := uc.store.Snapshot()
	stops := routeStops(snap, actor.Username, date)
	out := make([]PlannedStop, 0, len(stops))
	for _, s := range stops {
		ps := PlannedStop{RouteStop: s}
		if d, ok := snap.DealerByID(s.DealerID); ok {
			ps.DealerName, ps.City, ps.State, ps.Region = d.Name, d.City, d.State, d.Region
		}
		out = append(out, ps)
	}
	return out, nil
}

// Available lists the dealers actor covers that are not yet on the route
// for date, optionally narrowed by free text.
func (uc *RouteUseCase) Available(actor domain.User, date, text string) ([]domain.Dealer, error) {
	if err := parseRouteDate(date); err != nil {
		return nil, err
	}
	snap := uc.store.Snapshot()

	planned := make(map[uuid.UUID]struct{})
	for _, s := range routeStops(snap, actor.Username, date) {
		planned[s.DealerID] = struct{}{}
	}

	var out []domain.Dealer
	for _, d := range scope.CoveredDealers(actor, snap.Dealers) {
		if _, ok := planned[d.ID]; ok {
			continue
		}
		if !matchesText(d, text) {
			continue
		}
		out = append(out, d)
	}
	sort.SliceStable(out, func(i, j int) bool { return lessByName(out[i], out[j]) })
	return out, nil
}

// AddStop appends dealer to actor's route for date. Adding a dealer that
// is already planned returns the existing stop without writing.
func (uc *RouteUseCase) AddStop(ctx context.Context, actor domain.User, date string, dealerID uuid.UUID) (domain.RouteStop, domain.WriteResult, error) {
	if err := parseRouteDate(date); err != nil {
		return domain.RouteStop{}, domain.WriteResult{}, err
	}
	snap := uc.store.Snapshot()

	dealer, ok := snap.DealerByID(dealerID)
	if !ok {
		return domain.RouteStop{}, domain.WriteResult{}, fmt.Errorf("dealer %s: %w", dealerID, domain.ErrNotFound)
	}
	if !scope.Covers(actor, dealer) {
		return domain.RouteStop{}, domain.WriteResult{}, fmt.Errorf("dealer %q is outside your coverage: %w", dealer.Name, domain.ErrPermission)
	}

	stop := domain.RouteStop{
		ID:       uuid.New(),
		Username: actor.Username,
		Date:     date,
		DealerID: dealerID,
	}
	res, err := uc.store.Apply(ctx, store.AddRouteStop(&stop))
	return stop, res, err
}

// MoveStop swaps a stop's position with its neighbour in direction. At
// either end of the route it does nothing.
func (uc *RouteUseCase) MoveStop(ctx context.Context, actor domain.User, date string, stopID uuid.UUID, direction string) (domain.WriteResult, error) {
	if err := parseRouteDate(date); err != nil {
		return domain.WriteResult{}, err
	}
	if direction != MoveUp && direction != MoveDown {
		return domain.WriteResult{}, fmt.Errorf("%w: direction must be %q or %q", domain.ErrValidation, MoveUp, MoveDown)
	}

	stops := routeStops(uc.store.Snapshot(), actor.Username, date)
	idx := -1
	for i, s := range stops {
		if s.ID == stopID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.WriteResult{}, fmt.Errorf("route stop %s: %w", stopID, domain.ErrNotFound)
	}

	other := idx - 1
	if direction == MoveDown {
		other = idx + 1
	}
	if other < 0 || other >= len(stops) {
		return domain.Written(), nil
	}
	return uc.store.Apply(ctx, store.SwapRouteStops(stops[idx], stops[other]))
}

// RemoveStop deletes one of actor's stops.
func (uc *RouteUseCase) RemoveStop(ctx context.Context, actor domain.User, stopID uuid.UUID) (domain.WriteResult, error) {
	for _, r := range uc.store.Snapshot().Routes {
		if r.ID != stopID {
			continue
		}
		if r.Username != actor.Username {
			return domain.WriteResult{}, fmt.Errorf("route stop belongs to another user: %w", domain.ErrPermission)
		}
		return uc.store.Apply(ctx, store.RemoveRouteStop(stopID))
	}
	return domain.WriteResult{}, fmt.Errorf("route stop %s: %w", stopID, domain.ErrNotFound)
}
