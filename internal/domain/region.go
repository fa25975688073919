package domain

import "sort"

// RegionsCatalog maps a state code to its ordered region names.
type RegionsCatalog map[string][]string

// Has reports whether region is catalogued under state.
func (c RegionsCatalog) Has(state, region string) bool {
	for _, r := range c[state] {
		if r == region {
			return true
		}
	}
	return false
}

// HasState reports whether the state has a catalog entry.
func (c RegionsCatalog) HasState(state string) bool {
	_, ok := c[state]
	return ok
}

// States returns the catalogued state codes, sorted.
func (c RegionsCatalog) States() []string {
	states := make([]string, 0, len(c))
	for s := range c {
		states = append(states, s)
	}
	sort.Strings(states)
	return states
}

// Clone returns a deep copy.
func (c RegionsCatalog) Clone() RegionsCatalog {
	out := make(RegionsCatalog, len(c))
	for k, v := range c {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// Region is a single catalog row.
type Region struct {
	State    string `json:"state" db:"state"`
	Name     string `json:"name" db:"name"`
	Position int    `json:"position" db:"position"`
}
