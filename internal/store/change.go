package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/V4T54L/dealer-portal/internal/domain"
	"github.com/google/uuid"
)

// errUnchanged is returned by an apply step that found nothing to write.
var errUnchanged = errors.New("nothing to write")

// Change is one entity write: how it alters the local snapshot and how it
// is persisted to the row store.
type Change struct {
	name    string
	apply   func(s *domain.Snapshot) error
	persist func(ctx context.Context, b domain.Backend) error
}

// Name describes the change for logs and write results.
func (c Change) Name() string { return c.name }

// PutUser inserts or replaces a user. A different user holding the same
// username is rejected with ErrDuplicate.
func PutUser(u domain.User) Change {
	return Change{
		name: "save user " + u.Username,
		apply: func(s *domain.Snapshot) error {
			idx := -1
			for i, existing := range s.Users {
				if existing.Username == u.Username && existing.ID != u.ID {
					return fmt.Errorf("username %q: %w", u.Username, domain.ErrDuplicate)
				}
				if existing.ID == u.ID {
					idx = i
				}
			}
			if idx >= 0 {
				s.Users[idx] = u.Clone()
			} else {
				s.Users = append(s.Users, u.Clone())
			}
			return nil
		},
		persist: func(ctx context.Context, b domain.Backend) error {
			return b.SaveUser(ctx, u)
		},
	}
}

// PutDealer inserts or replaces a dealer.
func PutDealer(d domain.Dealer) Change {
	return Change{
		name: "save dealer " + d.Name,
		apply: func(s *domain.Snapshot) error {
			for i := range s.Dealers {
				if s.Dealers[i].ID == d.ID {
					s.Dealers[i] = d.Clone()
					return nil
				}
			}
			s.Dealers = append(s.Dealers, d.Clone())
			return nil
		},
		persist: func(ctx context.Context, b domain.Backend) error {
			return b.SaveDealer(ctx, d)
		},
	}
}

// RemoveDealer deletes a dealer together with its notes, tasks and route
// stops, mirroring the cascade in the row store.
func RemoveDealer(id uuid.UUID) Change {
	return Change{
		name: "delete dealer " + id.String(),
		apply: func(s *domain.Snapshot) error {
			idx := -1
			for i := range s.Dealers {
				if s.Dealers[i].ID == id {
					idx = i
					break
				}
			}
			if idx < 0 {
				return fmt.Errorf("dealer %s: %w", id, domain.ErrNotFound)
			}
			s.Dealers = append(s.Dealers[:idx], s.Dealers[idx+1:]...)

			notes := s.Notes[:0]
			for _, n := range s.Notes {
				if n.DealerID != id {
					notes = append(notes, n)
				}
			}
			s.Notes = notes

			tasks := s.Tasks[:0]
			for _, t := range s.Tasks {
				if t.DealerID != id {
					tasks = append(tasks, t)
				}
			}
			s.Tasks = tasks

			routes := s.Routes[:0]
			for _, r := range s.Routes {
				if r.DealerID != id {
					routes = append(routes, r)
				}
			}
			s.Routes = routes
			return nil
		},
		persist: func(ctx context.Context, b domain.Backend) error {
			return b.DeleteDealer(ctx, id)
		},
	}
}

// AddNote appends an immutable note.
func AddNote(n domain.Note) Change {
	return Change{
		name: "create note",
		apply: func(s *domain.Snapshot) error {
			s.Notes = append(s.Notes, n)
			return nil
		},
		persist: func(ctx context.Context, b domain.Backend) error {
			return b.InsertNote(ctx, n)
		},
	}
}

// PutTask inserts or replaces a task.
func PutTask(t domain.Task) Change {
	return Change{
		name: "save task",
		apply: func(s *domain.Snapshot) error {
			for i := range s.Tasks {
				if s.Tasks[i].ID == t.ID {
					s.Tasks[i] = t
					return nil
				}
			}
			s.Tasks = append(s.Tasks, t)
			return nil
		},
		persist: func(ctx context.Context, b domain.Backend) error {
			return b.SaveTask(ctx, t)
		},
	}
}

// AddRegion appends a region to a state's catalog.
func AddRegion(state, name string) Change {
	return Change{
		name: "add region " + state + "/" + name,
		apply: func(s *domain.Snapshot) error {
			if s.Regions.Has(state, name) {
				return fmt.Errorf("region %s/%s: %w", state, name, domain.ErrDuplicate)
			}
			if s.Regions == nil {
				s.Regions = domain.RegionsCatalog{}
			}
			s.Regions[state] = append(s.Regions[state], name)
			return nil
		},
		persist: func(ctx context.Context, b domain.Backend) error {
			return b.AddRegion(ctx, state, name)
		},
	}
}

// RemoveRegion deletes a region. It fails with ErrRegionInUse while any
// dealer references the region.
func RemoveRegion(state, name string) Change {
	return Change{
		name: "delete region " + state + "/" + name,
		apply: func(s *domain.Snapshot) error {
			if n := s.DealersInRegion(state, name); n > 0 {
				return fmt.Errorf("region %s/%s has %d dealers: %w", state, name, n, domain.ErrRegionInUse)
			}
			regions := s.Regions[state]
			for i, r := range regions {
				if r == name {
					s.Regions[state] = append(regions[:i:i], regions[i+1:]...)
					return nil
				}
			}
			return fmt.Errorf("region %s/%s: %w", state, name, domain.ErrNotFound)
		},
		persist: func(ctx context.Context, b domain.Backend) error {
			return b.DeleteRegion(ctx, state, name)
		},
	}
}

// AddRouteStop appends r to its route at the next free position. When the
// dealer is already planned for that user and date, r is set to the
// existing stop and nothing is written.
func AddRouteStop(r *domain.RouteStop) Change {
	return Change{
		name: "add route stop",
		apply: func(s *domain.Snapshot) error {
			maxPos := 0
			for _, existing := range s.Routes {
				if existing.Username != r.Username || existing.Date != r.Date {
					continue
				}
				if existing.DealerID == r.DealerID {
					*r = existing
					return errUnchanged
				}
				if existing.Position > maxPos {
					maxPos = existing.Position
				}
			}
			r.Position = maxPos + 1
			s.Routes = append(s.Routes, *r)
			return nil
		},
		persist: func(ctx context.Context, b domain.Backend) error {
			return b.SaveRouteStop(ctx, *r)
		},
	}
}

// RemoveRouteStop deletes a route stop.
func RemoveRouteStop(id uuid.UUID) Change {
	return Change{
		name: "delete route stop",
		apply: func(s *domain.Snapshot) error {
			for i := range s.Routes {
				if s.Routes[i].ID == id {
					s.Routes = append(s.Routes[:i], s.Routes[i+1:]...)
					return nil
				}
			}
			return fmt.Errorf("route stop %s: %w", id, domain.ErrNotFound)
		},
		persist: func(ctx context.Context, b domain.Backend) error {
			return b.DeleteRouteStop(ctx, id)
		},
	}
}

// SwapRouteStops exchanges the positions of two stops of the same route.
func SwapRouteStops(a, b domain.RouteStop) Change {
	a.Position, b.Position = b.Position, a.Position
	return Change{
		name: "reorder route",
		apply: func(s *domain.Snapshot) error {
			found := 0
			for i := range s.Routes {
				switch s.Routes[i].ID {
				case a.ID:
					s.Routes[i] = a
					found++
				case b.ID:
					s.Routes[i] = b
					found++
				}
			}
			if found != 2 {
				return fmt.Errorf("route stops: %w", domain.ErrNotFound)
			}
			return nil
		},
		persist: func(ctx context.Context, be domain.Backend) error {
			if err := be.SaveRouteStop(ctx, a); err != nil {
				return err
			}
			return be.SaveRouteStop(ctx, b)
		},
	}
}
