package mocks

import (
	"time"

	"github.com/google/uuid"

	"github.com/V4T54L/dealer-portal/internal/domain"
)

// Fixed IDs of the seeded dealers.
var (
	NorthDealerID    = uuid.MustParse("00000000-0000-0000-0000-0000000000a1")
	SouthDealerID    = uuid.MustParse("00000000-0000-0000-0000-0000000000a2")
	OverrideDealerID = uuid.MustParse("00000000-0000-0000-0000-0000000000a3")
	OhioDealerID     = uuid.MustParse("00000000-0000-0000-0000-0000000000a4")
)

// SeedTime is the reference "now" for the seeded data.
var SeedTime = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

// NewSeededBackend returns a backend with a small, deterministic data set:
//
//   - admin (Admin), manny (Manager)
//   - alice (Rep) covering IL/Chicago-North
//   - bob (Rep) covering IL/Chicago-North and IL/Chicago-South
//   - carol (Rep, Inactive) covering OH/Columbus
//   - dealers in each region plus one IL/Chicago-South dealer overridden to alice
func NewSeededBackend() *MockBackend {
	day := func(daysAgo int) *time.Time {
		t := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -daysAgo)
		return &t
	}
	user := func(name string, role domain.UserRole, regions map[string][]string) domain.User {
		u := domain.User{
			ID:             uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)),
			Username:       name,
			Email:          name + "@example.com",
			Role:           role,
			Status:         domain.UserActive,
			RegionsByState: regions,
			CreatedAt:      SeedTime,
			UpdatedAt:      SeedTime,
		}
		u.NormalizeCoverage()
		return u
	}

	carol := user("carol", domain.RoleRep, map[string][]string{"OH": {"Columbus"}})
	carol.Status = domain.UserInactive

	return &MockBackend{
		Users: []domain.User{
			user("admin", domain.RoleAdmin, nil),
			user("manny", domain.RoleManager, nil),
			user("bob", domain.RoleRep, map[string][]string{"IL": {"Chicago-North", "Chicago-South"}}),
			user("alice", domain.RoleRep, map[string][]string{"IL": {"Chicago-North"}}),
			carol,
		},
		Regions: domain.RegionsCatalog{
			"IL": {"Chicago-North", "Chicago-South"},
			"OH": {"Columbus"},
		},
		Dealers: []domain.Dealer{
			{
				ID: NorthDealerID, Name: "North Shore Motors", City: "Evanston", State: "IL", Region: "Chicago-North",
				Type: "Franchise", Status: domain.DealerActive, LastVisited: day(10), SendingDeals: domain.Yes,
				CreatedAt: SeedTime, UpdatedAt: SeedTime,
			},
			{
				ID: SouthDealerID, Name: "South Side Auto", City: "Chicago", State: "IL", Region: "Chicago-South",
				Type: "Independent", Status: domain.DealerActive, LastVisited: day(45), SendingDeals: domain.No,
				NoDealReasons: domain.NoDealReasons{Funding: true, Other: "x"},
				CreatedAt:     SeedTime, UpdatedAt: SeedTime,
			},
			{
				ID: OverrideDealerID, Name: "Midway Trucks", City: "Chicago", State: "IL", Region: "Chicago-South",
				Type: "Independent", Status: domain.DealerPending, AssignedRepUsername: "alice",
				CreatedAt: SeedTime, UpdatedAt: SeedTime,
			},
			{
				ID: OhioDealerID, Name: "Buckeye Cars", City: "Columbus", State: "OH", Region: "Columbus",
				Type: "Franchise", Status: domain.DealerActive,
				CreatedAt: SeedTime, UpdatedAt: SeedTime,
			},
		},
	}
}
