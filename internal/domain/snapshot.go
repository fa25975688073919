package domain

import (
	"time"

	"github.com/google/uuid"
)

// Snapshot is a point-in-time copy of every shared collection. A published
// snapshot is never mutated; writers build a new one with the Clone
// helpers and publish it whole.
type Snapshot struct {
	Users    []User         `json:"users"`
	Dealers  []Dealer       `json:"dealers"`
	Notes    []Note         `json:"notes"`
	Tasks    []Task         `json:"tasks"`
	Regions  RegionsCatalog `json:"regions"`
	Routes   []RouteStop    `json:"routes"`
	LoadedAt time.Time      `json:"loaded_at"`
}

// EmptySnapshot returns a snapshot with no records.
func EmptySnapshot() *Snapshot {
	return &Snapshot{Regions: RegionsCatalog{}}
}

// Clone returns a copy whose slices and maps can be modified freely.
func (s *Snapshot) Clone() *Snapshot {
	c := &Snapshot{
		Users:    make([]User, len(s.Users)),
		Dealers:  make([]Dealer, len(s.Dealers)),
		Notes:    append([]Note(nil), s.Notes...),
		Tasks:    make([]Task, len(s.Tasks)),
		Regions:  s.Regions.Clone(),
		Routes:   append([]RouteStop(nil), s.Routes...),
		LoadedAt: s.LoadedAt,
	}
	for i, u := range s.Users {
		c.Users[i] = u.Clone()
	}
	for i, d := range s.Dealers {
		c.Dealers[i] = d.Clone()
	}
	for i, t := range s.Tasks {
		c.Tasks[i] = t
		if t.CompletedAt != nil {
			at := *t.CompletedAt
			c.Tasks[i].CompletedAt = &at
		}
	}
	return c
}

func (s *Snapshot) UserByUsername(username string) (User, bool) {
	for _, u := range s.Users {
		if u.Username == username {
			return u, true
		}
	}
	return User{}, false
}

func (s *Snapshot) DealerByID(id uuid.UUID) (Dealer, bool) {
	for _, d := range s.Dealers {
		if d.ID == id {
			return d, true
		}
	}
	return Dealer{}, false
}

func (s *Snapshot) TaskByID(id uuid.UUID) (Task, bool) {
	for _, t := range s.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}

// DealersInRegion counts dealers that reference state/region.
func (s *Snapshot) DealersInRegion(state, region string) int {
	n := 0
	for _, d := range s.Dealers {
		if d.State == state && d.Region == region {
			n++
		}
	}
	return n
}
