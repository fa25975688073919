package usecase

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/V4T54L/dealer-portal/internal/domain"
	"github.com/V4T54L/dealer-portal/internal/domain/mocks"
)

func visit(author string, at time.Time) domain.Note {
	return domain.Note{ID: uuid.New(), AuthorUsername: author, Category: domain.NoteVisit, CreatedAt: at}
}

func daysAgo(n int) *time.Time {
	t := mocks.SeedTime.AddDate(0, 0, -n)
	return &t
}

func TestReport_ScopeRules(t *testing.T) {
	f := newFixture(t)
	uc := NewReportUseCase(f.store)
	uc.now = fixedNow

	rep, err := uc.Build(f.user(t, "alice"), "", "")
	require.NoError(t, err)
	assert.Equal(t, "alice", rep.Scope, "reps default to their own scope")

	_, err = uc.Build(f.user(t, "alice"), "bob", "")
	assert.ErrorIs(t, err, domain.ErrPermission)

	_, err = uc.Build(f.user(t, "alice"), ScopeAll, "")
	assert.ErrorIs(t, err, domain.ErrPermission)

	rep, err = uc.Build(f.user(t, "manny"), "", "")
	require.NoError(t, err)
	assert.Equal(t, ScopeAll, rep.Scope)

	_, err = uc.Build(f.user(t, "manny"), "ghost", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReport_StatusKPIs(t *testing.T) {
	f := newFixture(t)
	uc := NewReportUseCase(f.store)
	uc.now = fixedNow

	rep, err := uc.Build(f.user(t, "admin"), ScopeAll, "")
	require.NoError(t, err)
	assert.Equal(t, []StatusCount{
		{domain.DealerActive, 3},
		{domain.DealerPending, 1},
		{domain.DealerProspect, 0},
		{domain.DealerInactive, 0},
		{domain.DealerBlackListed, 0},
	}, rep.StatusCounts)

	// bob covers North Shore and South Side; Midway is overridden to alice.
	rep, err = uc.Build(f.user(t, "admin"), "bob", "")
	require.NoError(t, err)
	assert.Equal(t, 2, rep.StatusCounts[0].Count)
	assert.Equal(t, 0, rep.StatusCounts[1].Count)
	assert.Len(t, rep.StatusCounts, 5)
}

func TestVisitsLast30Days(t *testing.T) {
	now := mocks.SeedTime
	notes := []domain.Note{
		visit("alice", now.AddDate(0, 0, -1)),
		visit("alice", now.AddDate(0, 0, -30)),
		visit("alice", now.AddDate(0, 0, -31)),
		visit("bob", now.AddDate(0, 0, -2)),
		{AuthorUsername: "bob", Category: domain.NoteProblem, CreatedAt: now},
	}
	users := []domain.User{{Username: "alice", DisplayName: "Alice A"}, {Username: "bob"}}

	rows := VisitsLast30Days(notes, users, ScopeAll, now)
	assert.Equal(t, []RepVisits{
		{Username: "alice", Name: "Alice A", Count: 2},
		{Username: "bob", Name: "bob", Count: 1},
	}, rows)

	rows = VisitsLast30Days(nil, users, "bob", now)
	assert.Equal(t, []RepVisits{{Username: "bob", Name: "bob", Count: 0}}, rows, "single-rep scope always has one row")
}

func TestMonthlyTimeline(t *testing.T) {
	now := mocks.SeedTime
	notes := []domain.Note{
		visit("alice", time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)),
		visit("alice", time.Date(2024, time.June, 14, 0, 0, 0, 0, time.UTC)),
		visit("alice", time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC)),
		visit("alice", time.Date(2024, time.May, 3, 0, 0, 0, 0, time.UTC)),
		visit("alice", time.Date(2024, time.May, 31, 23, 59, 0, 0, time.UTC)),
		visit("alice", time.Date(2024, time.January, 9, 0, 0, 0, 0, time.UTC)),
		visit("alice", time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC)),
	}

	timeline := MonthlyTimeline(notes, now)
	require.Len(t, timeline, 6)
	assert.Equal(t, []MonthBucket{
		{"2024-01", 1}, {"2024-02", 0}, {"2024-03", 0},
		{"2024-04", 0}, {"2024-05", 3}, {"2024-06", 2},
	}, timeline)

	delta := TimelineDelta(timeline)
	assert.Equal(t, Delta{Value: -1, Direction: "down"}, delta)
	assert.Equal(t, "▼ 1", delta.String())
}

func TestMonthlyTimeline_CrossesYearBoundary(t *testing.T) {
	timeline := MonthlyTimeline(nil, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "2023-09", timeline[0].Month)
	assert.Equal(t, "2024-02", timeline[5].Month)
}

func TestTimelineDelta(t *testing.T) {
	up := TimelineDelta([]MonthBucket{{"2024-05", 1}, {"2024-06", 4}})
	assert.Equal(t, Delta{Value: 3, Direction: "up"}, up)
	assert.Equal(t, "▲ 3", up.String())

	flat := TimelineDelta([]MonthBucket{{"2024-05", 2}, {"2024-06", 2}})
	assert.Equal(t, "flat", flat.Direction)
	assert.Equal(t, "– 0", flat.String())
}

func TestNotVisited(t *testing.T) {
	now := mocks.SeedTime
	dealers := []domain.Dealer{
		{Name: "Thirty", Status: domain.DealerActive, LastVisited: daysAgo(30)},
		{Name: "ThirtyOne", Status: domain.DealerActive, LastVisited: daysAgo(31)},
		{Name: "Ninety", Status: domain.DealerActive, LastVisited: daysAgo(90)},
		{Name: "Never", Status: domain.DealerActive},
		{Name: "Pending Never", Status: domain.DealerPending},
	}

	overdue := NotVisited(dealers, nil, SortOverdue, now)
	require.Len(t, overdue, 3)
	assert.Equal(t, "Never", overdue[0].Dealer.Name)
	assert.Nil(t, overdue[0].DaysSince)
	assert.Equal(t, "Ninety", overdue[1].Dealer.Name)
	assert.Equal(t, 90, *overdue[1].DaysSince)
	assert.Equal(t, "ThirtyOne", overdue[2].Dealer.Name)
	assert.Equal(t, 31, *overdue[2].DaysSince)

	recent := NotVisited(dealers, nil, SortRecent, now)
	assert.Equal(t, "ThirtyOne", recent[0].Dealer.Name)
	assert.Equal(t, "Never", recent[2].Dealer.Name)
}

func TestDaysSince_CalendarDays(t *testing.T) {
	visited := time.Date(2024, time.June, 14, 23, 59, 0, 0, time.UTC)
	now := time.Date(2024, time.June, 15, 0, 1, 0, 0, time.UTC)
	assert.Equal(t, 1, DaysSince(visited, now))
}

func TestSendingDealsBreakdown(t *testing.T) {
	f := newFixture(t)
	snap := f.store.Snapshot()

	rep, err := BuildReport(snap, ScopeAll, "", mocks.SeedTime)
	require.NoError(t, err)

	sd := rep.SendingDeals
	assert.Equal(t, 1, sd.Yes)
	assert.Equal(t, 1, sd.No)
	assert.Equal(t, 2, sd.Unknown)

	require.Len(t, sd.Reasons, len(domain.ReasonKeys))
	counts := make(map[string]int)
	for _, r := range sd.Reasons {
		counts[r.Reason] = r.Count
	}
	assert.Equal(t, 1, counts[domain.ReasonFunding])
	assert.Equal(t, 1, counts[domain.ReasonOther])
	assert.Equal(t, 0, counts[domain.ReasonPricing])

	assert.Equal(t, []RepDealsRow{
		{Username: "alice", Name: "alice", Yes: 1, Unknown: 1},
		{Username: "bob", Name: "bob", No: 1},
		{Username: "carol", Name: "carol", Unknown: 1},
	}, sd.ByRep)
}

func TestSendingDealsBreakdown_UnassignedLast(t *testing.T) {
	dealers := []domain.Dealer{
		{Name: "Orphan", AssignedRepUsername: "ghost", SendingDeals: domain.No, NoDealReasons: domain.NoDealReasons{Other: "   "}},
		{Name: "Nobody", State: "TX", Region: "Austin", SendingDeals: domain.Yes},
		{Name: "Zed's", AssignedRepUsername: "zed"},
	}
	users := []domain.User{{Username: "zed", Role: domain.RoleRep}}

	sd := SendingDealsBreakdown(dealers, users)
	require.Len(t, sd.ByRep, 2)
	assert.Equal(t, "zed", sd.ByRep[0].Username)
	assert.Equal(t, RepDealsRow{Username: "", Name: Unassigned, Yes: 1, No: 1}, sd.ByRep[1])
	for _, r := range sd.Reasons {
		assert.Zero(t, r.Count, "blank other text is not a reason: %s", r.Reason)
	}
}

func TestSendingDealsBreakdown_RepNamedUnassigned(t *testing.T) {
	dealers := []domain.Dealer{
		{Name: "Theirs", AssignedRepUsername: "unassigned", SendingDeals: domain.Yes},
		{Name: "Orphan", AssignedRepUsername: "ghost", SendingDeals: domain.No},
	}
	users := []domain.User{{Username: "unassigned", Role: domain.RoleRep}}

	sd := SendingDealsBreakdown(dealers, users)
	require.Len(t, sd.ByRep, 2, "a user called unassigned keeps its own row")
	assert.Equal(t, RepDealsRow{Username: "unassigned", Name: "unassigned", Yes: 1}, sd.ByRep[0])
	assert.Equal(t, RepDealsRow{Username: "", Name: Unassigned, No: 1}, sd.ByRep[1])
}
