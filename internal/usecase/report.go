package usecase

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/V4T54L/dealer-portal/internal/domain"
	"github.com/V4T54L/dealer-portal/internal/scope"
)

const (
	// ScopeAll selects every dealer and note.
	ScopeAll = "ALL"
	// Unassigned names the per-rep bucket for dealers with no resolvable
	// rep. The bucket's Username is empty, so it never collides with a user.
	Unassigned = "unassigned"

	visitWindowDays   = 30
	overdueAfterDays  = 30
	timelineMonths    = 6
	timelineKeyLayout = "2006-01"
)

// Not-visited sort modes.
const (
	SortOverdue = "overdue"
	SortRecent  = "recent"
)

type StatusCount struct {
	Status domain.DealerStatus `json:"status"`
	Count  int                 `json:"count"`
}

type RepVisits struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Count    int    `json:"count"`
}

type MonthBucket struct {
	Month string `json:"month"` // YYYY-MM
	Count int    `json:"count"`
}

// Delta is the change from the previous month to the current one.
type Delta struct {
	Value     int    `json:"value"`
	Direction string `json:"direction"` // up, down, flat
}

func (d Delta) String() string {
	switch d.Direction {
	case "up":
		return fmt.Sprintf("▲ %d", d.Value)
	case "down":
		return fmt.Sprintf("▼ %d", -d.Value)
	}
	return "– 0"
}

// OverdueDealer is an active dealer that has not been visited recently.
// DaysSince is nil for a dealer that was never visited.
type OverdueDealer struct {
	Dealer    domain.Dealer `json:"dealer"`
	Reps      string        `json:"reps"`
	DaysSince *int          `json:"days_since"`
}

type ReasonCount struct {
	Reason string `json:"reason"`
	Count  int    `json:"count"`
}

type RepDealsRow struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Yes      int    `json:"yes"`
	No       int    `json:"no"`
	Unknown  int    `json:"unknown"`
}

type SendingDeals struct {
	Yes     int           `json:"yes"`
	No      int           `json:"no"`
	Unknown int           `json:"unknown"`
	Reasons []ReasonCount `json:"reasons"`
	ByRep   []RepDealsRow `json:"by_rep"`
}

// Report is the activity report for one scope.
type Report struct {
	Scope        string          `json:"scope"`
	GeneratedAt  time.Time       `json:"generated_at"`
	StatusCounts []StatusCount   `json:"status_counts"`
	VisitsLast30 []RepVisits     `json:"visits_last_30_days"`
	Timeline     []MonthBucket   `json:"timeline"`
	Delta        Delta           `json:"delta"`
	NotVisited   []OverdueDealer `json:"not_visited"`
	SendingDeals SendingDeals    `json:"sending_deals"`
}

// ReportUseCase builds activity reports from the current snapshot.
type ReportUseCase struct {
	store SnapshotStore
	now   func() time.Time
}

func NewReportUseCase(s SnapshotStore) *ReportUseCase {
	return &ReportUseCase{store: s, now: time.Now}
}

// Build produces the report for scopeSel (ScopeAll or a rep username).
// Reps may only report on themselves.
func (uc *ReportUseCase) Build(actor domain.User, scopeSel, sortMode string) (Report, error) {
	if scopeSel == "" {
		scopeSel = ScopeAll
		if actor.Role == domain.RoleRep {
			scopeSel = actor.Username
		}
	}
	if actor.Role == domain.RoleRep && scopeSel != actor.Username {
		return Report{}, fmt.Errorf("reps can only report on their own activity: %w", domain.ErrPermission)
	}
	return BuildReport(uc.store.Snapshot(), scopeSel, sortMode, uc.now())
}

// BuildReport aggregates the snapshot for scopeSel as of now.
func BuildReport(snap *domain.Snapshot, scopeSel, sortMode string, now time.Time) (Report, error) {
	now = now.UTC()
	users := scope.SortUsers(snap.Users)

	dealers, notes, err := scoped(snap, users, scopeSel)
	if err != nil {
		return Report{}, err
	}

	timeline := MonthlyTimeline(notes, now)
	return Report{
		Scope:        scopeSel,
		GeneratedAt:  now,
		StatusCounts: StatusKPIs(dealers),
		VisitsLast30: VisitsLast30Days(notes, users, scopeSel, now),
		Timeline:     timeline,
		Delta:        TimelineDelta(timeline),
		NotVisited:   NotVisited(dealers, users, sortMode, now),
		SendingDeals: SendingDealsBreakdown(dealers, users),
	}, nil
}

// scoped narrows dealers by coverage and notes by authorship.
func scoped(snap *domain.Snapshot, users []domain.User, scopeSel string) ([]domain.Dealer, []domain.Note, error) {
	if scopeSel == ScopeAll {
		return snap.Dealers, snap.Notes, nil
	}

	rep, ok := snap.UserByUsername(scopeSel)
	if !ok {
		return nil, nil, fmt.Errorf("rep %q: %w", scopeSel, domain.ErrNotFound)
	}

	dealers := scope.CoveredDealers(rep, snap.Dealers)
	var notes []domain.Note
	for _, n := range snap.Notes {
		if n.AuthorUsername == rep.Username {
			notes = append(notes, n)
		}
	}
	return dealers, notes, nil
}

// StatusKPIs counts dealers per status. All five statuses are always
// present.
func StatusKPIs(dealers []domain.Dealer) []StatusCount {
	counts := make(map[domain.DealerStatus]int, len(domain.DealerStatuses))
	for _, d := range dealers {
		counts[d.Status]++
	}
	out := make([]StatusCount, len(domain.DealerStatuses))
	for i, s := range domain.DealerStatuses {
		out[i] = StatusCount{Status: s, Count: counts[s]}
	}
	return out
}

// VisitsLast30Days counts Visit notes in [now-30d, now] per author. For a
// single-rep scope exactly one row is returned.
func VisitsLast30Days(notes []domain.Note, users []domain.User, scopeSel string, now time.Time) []RepVisits {
	from := now.AddDate(0, 0, -visitWindowDays)
	counts := make(map[string]int)
	for _, n := range notes {
		if n.Category != domain.NoteVisit {
			continue
		}
		if n.CreatedAt.Before(from) || n.CreatedAt.After(now) {
			continue
		}
		counts[n.AuthorUsername]++
	}

	name := func(username string) string {
		for _, u := range users {
			if u.Username == username {
				return u.Name()
			}
		}
		return username
	}

	if scopeSel != ScopeAll {
		return []RepVisits{{Username: scopeSel, Name: name(scopeSel), Count: counts[scopeSel]}}
	}

	rows := make([]RepVisits, 0, len(counts))
	for username, c := range counts {
		rows = append(rows, RepVisits{Username: username, Name: name(username), Count: c})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Username < rows[j].Username
	})
	return rows
}

// MonthlyTimeline buckets Visit notes by calendar month for the current
// month and the five before it, oldest first. Empty months count zero.
func MonthlyTimeline(notes []domain.Note, now time.Time) []MonthBucket {
	now = now.UTC()
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	buckets := make([]MonthBucket, timelineMonths)
	index := make(map[string]int, timelineMonths)
	for i := 0; i < timelineMonths; i++ {
		key := current.AddDate(0, i-(timelineMonths-1), 0).Format(timelineKeyLayout)
		buckets[i] = MonthBucket{Month: key}
		index[key] = i
	}

	for _, n := range notes {
		if n.Category != domain.NoteVisit {
			continue
		}
		if i, ok := index[n.CreatedAt.UTC().Format(timelineKeyLayout)]; ok {
			buckets[i].Count++
		}
	}
	return buckets
}

// TimelineDelta returns current-month minus previous-month.
func TimelineDelta(timeline []MonthBucket) Delta {
	if len(timeline) < 2 {
		return Delta{Direction: "flat"}
	}
	v := timeline[len(timeline)-1].Count - timeline[len(timeline)-2].Count
	switch {
	case v > 0:
		return Delta{Value: v, Direction: "up"}
	case v < 0:
		return Delta{Value: v, Direction: "down"}
	}
	return Delta{Direction: "flat"}
}

// DaysSince counts whole calendar days between the visit date and now.
func DaysSince(visited, now time.Time) int {
	v := time.Date(visited.Year(), visited.Month(), visited.Day(), 0, 0, 0, 0, time.UTC)
	n := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return int(n.Sub(v).Hours() / 24)
}

// NotVisited lists Active dealers never visited or visited more than 30
// days ago. SortOverdue puts never-visited first, then longest overdue;
// SortRecent is the reverse.
func NotVisited(dealers []domain.Dealer, users []domain.User, sortMode string, now time.Time) []OverdueDealer {
	var out []OverdueDealer
	for _, d := range dealers {
		if d.Status != domain.DealerActive {
			continue
		}
		row := OverdueDealer{Dealer: d, Reps: scope.RepNames(d, users)}
		if d.LastVisited != nil {
			days := DaysSince(d.LastVisited.UTC(), now)
			if days <= overdueAfterDays {
				continue
			}
			row.DaysSince = &days
		}
		out = append(out, row)
	}

	// Never visited sorts as infinitely overdue.
	overdue := func(r OverdueDealer) int {
		if r.DaysSince == nil {
			return int(^uint(0) >> 1)
		}
		return *r.DaysSince
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := overdue(out[i]), overdue(out[j])
		if a != b {
			if sortMode == SortRecent {
				return a < b
			}
			return a > b
		}
		return lessByName(out[i].Dealer, out[j].Dealer)
	})
	return out
}

// SendingDealsBreakdown tallies the tri-state, the reasons behind "no",
// and one row per attributable rep plus an unassigned bucket.
func SendingDealsBreakdown(dealers []domain.Dealer, users []domain.User) SendingDeals {
	var out SendingDeals
	reasons := make(map[string]int, len(domain.ReasonKeys))
	byRep := make(map[string]*RepDealsRow)

	for _, d := range dealers {
		key, name := "", Unassigned
		if rep, ok := scope.PrimaryRep(d, users); ok {
			key, name = rep.Username, rep.Name()
		}
		row, ok := byRep[key]
		if !ok {
			row = &RepDealsRow{Username: key, Name: name}
			byRep[key] = row
		}

		switch d.SendingDeals {
		case domain.Yes:
			out.Yes++
			row.Yes++
		case domain.No:
			out.No++
			row.No++
			for _, r := range presentReasons(d.NoDealReasons) {
				reasons[r]++
			}
		default:
			out.Unknown++
			row.Unknown++
		}
	}

	out.Reasons = make([]ReasonCount, len(domain.ReasonKeys))
	for i, k := range domain.ReasonKeys {
		out.Reasons[i] = ReasonCount{Reason: k, Count: reasons[k]}
	}

	out.ByRep = make([]RepDealsRow, 0, len(byRep))
	for _, row := range byRep {
		out.ByRep = append(out.ByRep, *row)
	}
	sort.Slice(out.ByRep, func(i, j int) bool {
		a, b := out.ByRep[i].Username, out.ByRep[j].Username
		if (a == "") != (b == "") {
			return b == ""
		}
		return a < b
	})
	return out
}

func presentReasons(r domain.NoDealReasons) []string {
	r.Other = strings.TrimSpace(r.Other)
	return r.Present()
}
