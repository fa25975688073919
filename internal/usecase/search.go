package usecase

import (
	"sort"
	"strings"

	"github.com/V4T54L/dealer-portal/internal/domain"
	"github.com/V4T54L/dealer-portal/internal/scope"
)

const (
	// PageSize is the number of filtered results per page.
	PageSize = 10
	// DefaultViewSize is the number of recently visited dealers shown when
	// no filter is active.
	DefaultViewSize = 10
)

// DealerFilter holds the optional search predicates. Every field except
// Text is an exact match.
type DealerFilter struct {
	Text   string `json:"q"`
	Rep    string `json:"rep"`
	State  string `json:"state"`
	Region string `json:"region"`
	Type   string `json:"type"`
	Status string `json:"status"`
	Page   int    `json:"page"`
}

// Active reports whether any predicate is set.
func (f DealerFilter) Active() bool {
	return strings.TrimSpace(f.Text) != "" || f.Rep != "" || f.State != "" ||
		f.Region != "" || f.Type != "" || f.Status != ""
}

// DealerRow is a dealer as listed to a particular user.
type DealerRow struct {
	domain.Dealer
	Reps        string            `json:"reps"`
	Permissions scope.Permissions `json:"permissions"`
}

// SearchResult is either the default view (recently visited, unpaginated)
// or one page of filtered results.
type SearchResult struct {
	DefaultView bool        `json:"default_view"`
	Rows        []DealerRow `json:"rows"`
	Page        int         `json:"page,omitempty"`
	TotalPages  int         `json:"total_pages,omitempty"`
	Total       int         `json:"total"`
}

// SearchUseCase lists dealers for browsing. Browsing is not restricted by
// coverage; only the per-row permissions are.
type SearchUseCase struct {
	store SnapshotStore
}

func NewSearchUseCase(s SnapshotStore) *SearchUseCase {
	return &SearchUseCase{store: s}
}

// Search runs the filter against the current snapshot.
func (uc *SearchUseCase) Search(actor domain.User, f DealerFilter) SearchResult {
	return SearchDealers(uc.store.Snapshot(), actor, f)
}

// Filtered returns every dealer matching f, sorted by name, without
// pagination. It backs the CSV export of a search.
func (uc *SearchUseCase) Filtered(actor domain.User, f DealerFilter) []DealerRow {
	snap := uc.store.Snapshot()
	users := scope.SortUsers(snap.Users)
	return toRows(actor, FilterDealers(snap, users, f), users)
}

// RegionOptions returns the regions offered for the region filter.
func (uc *SearchUseCase) RegionOptions(state string) []string {
	return RegionOptions(uc.store.Snapshot(), state)
}

// SearchDealers applies f to the snapshot on behalf of actor.
func SearchDealers(snap *domain.Snapshot, actor domain.User, f DealerFilter) SearchResult {
	users := scope.SortUsers(snap.Users)

	if !f.Active() {
		dealers := append([]domain.Dealer(nil), snap.Dealers...)
		sort.SliceStable(dealers, func(i, j int) bool {
			return visitedBefore(dealers[i], dealers[j])
		})
		if len(dealers) > DefaultViewSize {
			dealers = dealers[:DefaultViewSize]
		}
		return SearchResult{
			DefaultView: true,
			Rows:        toRows(actor, dealers, users),
			Total:       len(dealers),
		}
	}

	matched := FilterDealers(snap, users, f)
	total := len(matched)
	totalPages := (total + PageSize - 1) / PageSize

	page := f.Page
	if page < 1 {
		page = 1
	}
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}

	start := (page - 1) * PageSize
	end := start + PageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return SearchResult{
		Rows:       toRows(actor, matched[start:end], users),
		Page:       page,
		TotalPages: totalPages,
		Total:      total,
	}
}

// FilterDealers returns the dealers matching f sorted by name. users must
// be in the deterministic order produced by scope.SortUsers.
func FilterDealers(snap *domain.Snapshot, users []domain.User, f DealerFilter) []domain.Dealer {
	region := f.Region
	if f.State != "" && region != "" && !snap.Regions.Has(f.State, region) {
		// The region list is narrowed to the chosen state; a region from
		// another state is reset.
		region = ""
	}

	var out []domain.Dealer
	for _, d := range snap.Dealers {
		if f.State != "" && d.State != f.State {
			continue
		}
		if region != "" && d.Region != region {
			continue
		}
		if f.Type != "" && d.Type != f.Type {
			continue
		}
		if f.Status != "" && string(d.Status) != f.Status {
			continue
		}
		if f.Rep != "" && !scope.HasRep(d, users, f.Rep) {
			continue
		}
		if !matchesText(d, f.Text) {
			continue
		}
		out = append(out, d)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return lessByName(out[i], out[j])
	})
	return out
}

// RegionOptions returns the region choices for a state: that state's
// catalog when state is set, else the sorted union of every catalogued
// and dealer-observed region.
func RegionOptions(snap *domain.Snapshot, state string) []string {
	if state != "" {
		return append([]string(nil), snap.Regions[state]...)
	}

	seen := make(map[string]struct{})
	for _, regions := range snap.Regions {
		for _, r := range regions {
			seen[r] = struct{}{}
		}
	}
	for _, d := range snap.Dealers {
		if d.Region != "" {
			seen[d.Region] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for r := range seen {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

func toRows(actor domain.User, dealers []domain.Dealer, users []domain.User) []DealerRow {
	rows := make([]DealerRow, len(dealers))
	for i, d := range dealers {
		rows[i] = DealerRow{
			Dealer:      d,
			Reps:        scope.RepNames(d, users),
			Permissions: scope.PermissionsFor(actor, d),
		}
	}
	return rows
}

// visitedBefore orders by most recent visit first; never-visited dealers
// go last and ties fall back to name.
func visitedBefore(a, b domain.Dealer) bool {
	switch {
	case a.LastVisited == nil && b.LastVisited == nil:
		return lessByName(a, b)
	case a.LastVisited == nil:
		return false
	case b.LastVisited == nil:
		return true
	case !a.LastVisited.Equal(*b.LastVisited):
		return a.LastVisited.After(*b.LastVisited)
	}
	return lessByName(a, b)
}

func lessByName(a, b domain.Dealer) bool {
	la, lb := strings.ToLower(a.Name), strings.ToLower(b.Name)
	if la != lb {
		return la < lb
	}
	return a.Name < b.Name
}
