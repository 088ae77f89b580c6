// Package discovery implements the candidate feed: given a viewer it
// selects, filters, orders, and pages the profiles the viewer may act on
// next. Set filters run in SQL; distance math and distance ordering run on
// the bounded candidate slice so ordering semantics stay portable across
// database engines.
package discovery

import (
	"context"
	"sort"
	"time"

	"github.com/amora-app/amora-server/internal/app"
	"github.com/amora-app/amora-server/internal/db"
	"github.com/amora-app/amora-server/internal/repository"
	"github.com/amora-app/amora-server/internal/utils/agecalc"
	"github.com/amora-app/amora-server/internal/utils/geo"
	"github.com/amora-app/amora-server/internal/utils/pagination"
)

const (
	DefaultLimit = 10
	maxLimit     = 100
)

// Options tune feed behavior; zero values are replaced with defaults.
type Options struct {
	// RediscoverUnmatched re-admits unmatched pairs whose hidden window
	// elapsed. Default false: once matched, never shown again.
	RediscoverUnmatched bool
	// CountCap bounds the Count scan.
	CountCap int
}

// Candidate is one feed entry. Distance is nil when either side lacks
// coordinates or location filtering is off.
type Candidate struct {
	Profile  db.Profile
	Distance *float64 // km, rounded to one decimal
}

// Result is a page of the feed plus the overfetch-derived has-more flag.
type Result struct {
	Profiles []Candidate
	Total    int
	HasMore  bool
}

type Service struct {
	appCtx       *app.AppContext
	profileRepo  *repository.ProfileRepository
	interactRepo *repository.InteractionRepository
	matchRepo    *repository.MatchRepository
	opts         Options

	// now is swappable for tests
	now func() time.Time
}

func NewService(appCtx *app.AppContext, opts Options) *Service {
	if opts.CountCap <= 0 {
		opts.CountCap = 1000
	}
	return &Service{
		appCtx:       appCtx,
		profileRepo:  repository.NewProfileRepository(appCtx.DB),
		interactRepo: repository.NewInteractionRepository(appCtx.DB),
		matchRepo:    repository.NewMatchRepository(appCtx.DB),
		opts:         opts,
		now:          time.Now,
	}
}

// Discover returns the viewer's next page of candidates.
//
// Exclusions: self, unexpired interactions, matched pairs per policy, plus
// the client-supplied profile-id hint. Filters: onboarded, visible,
// reciprocal gender preference (unset is permissive on either side),
// birth-date bounds from the viewer's age range (unknown birth date passes),
// then the location policy. A viewer with no profile gets an empty result.
func (s *Service) Discover(ctx context.Context, userID string, limit, offset int, excludeIDs []string) (Result, error) {
	return s.discover(ctx, userID, pagination.Clamp(limit, offset, DefaultLimit, maxLimit), excludeIDs)
}

// discover runs the feed for an already-sanitized page. Count enters here
// directly so the client page cap does not bound its scan.
func (s *Service) discover(ctx context.Context, userID string, page pagination.Page, excludeIDs []string) (Result, error) {
	now := s.now()

	viewer, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return Result{}, err
	}
	if viewer == nil {
		s.appCtx.Logger.Debug("discover: viewer has no profile", "user", userID)
		return Result{}, nil
	}

	excludedUsers, err := s.exclusionSet(ctx, userID, now)
	if err != nil {
		return Result{}, err
	}

	q := repository.CandidateQuery{
		ViewerUserID:      userID,
		ExcludeUserIDs:    excludedUsers,
		ExcludeProfileIDs: excludeIDs,
	}

	// what the viewer wants to see
	if viewer.LookingFor != "" && viewer.LookingFor != db.LookingForBoth {
		q.Gender = viewer.LookingFor
	}
	// what candidates must be looking for
	if viewer.Gender != "" {
		term := viewer.Gender
		if term == db.GenderOther {
			term = db.LookingForBoth
		}
		q.ViewerGenderTerm = term
	}

	if viewer.MinAge > 0 {
		max := agecalc.MaxBirthDateFor(viewer.MinAge, now)
		q.MaxBirthDate = &max
	}
	if viewer.MaxAge > 0 {
		min := agecalc.MinBirthDateFor(viewer.MaxAge, now)
		q.MinBirthDate = &min
	}

	// Location policy, in priority order.
	showAnywhere := viewer.AnyLocation ||
		(viewer.City == "" && viewer.Latitude == nil && viewer.Longitude == nil)

	switch {
	case showAnywhere:
		q.Limit = page.Limit + 1
		q.Offset = page.Offset
		candidates, err := s.profileRepo.FindCandidates(ctx, q)
		if err != nil {
			return Result{}, err
		}
		return paged(withoutDistance(candidates), page.Limit), nil

	case viewer.Latitude != nil && viewer.Longitude != nil:
		// fetch the whole filtered pool, then sort and page around distance
		q.Limit = s.opts.CountCap
		candidates, err := s.profileRepo.FindCandidates(ctx, q)
		if err != nil {
			return Result{}, err
		}
		ranked := s.rankByDistance(viewer, candidates)
		return slicePage(ranked, page), nil

	default: // city set, no coordinates
		q.City = viewer.City
		q.Limit = page.Limit + 1
		q.Offset = page.Offset
		candidates, err := s.profileRepo.FindCandidates(ctx, q)
		if err != nil {
			return Result{}, err
		}
		return paged(withoutDistance(candidates), page.Limit), nil
	}
}

// Count re-runs the feed filter with a high cap and returns the number of
// remaining candidates. Fine for a bounded pool; a real count query would
// replace this at scale.
func (s *Service) Count(ctx context.Context, userID string) (int, error) {
	res, err := s.discover(ctx, userID, pagination.Page{Limit: s.opts.CountCap}, nil)
	if err != nil {
		return 0, err
	}
	return len(res.Profiles), nil
}

// exclusionSet is the union of unexpired interaction targets and excluded
// match partners.
func (s *Service) exclusionSet(ctx context.Context, userID string, now time.Time) ([]string, error) {
	interacted, err := s.interactRepo.ActiveTargetIDs(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	matched, err := s.matchRepo.ExcludedPartnerIDs(ctx, userID, now, s.opts.RediscoverUnmatched)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(interacted)+len(matched))
	out := make([]string, 0, len(interacted)+len(matched))
	for _, id := range append(interacted, matched...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}

// rankByDistance computes haversine distance from the viewer to every
// candidate with coordinates, drops candidates beyond the viewer's max
// distance, and orders ascending with null-coordinate candidates last.
func (s *Service) rankByDistance(viewer *db.Profile, candidates []db.Profile) []Candidate {
	ranked := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Latitude == nil || c.Longitude == nil {
			// never excluded by the distance filter alone
			ranked = append(ranked, Candidate{Profile: c})
			continue
		}
		d := geo.Haversine(*viewer.Latitude, *viewer.Longitude, *c.Latitude, *c.Longitude)
		if viewer.MaxDistance > 0 && d > float64(viewer.MaxDistance) {
			continue
		}
		rounded := geo.RoundKm(d)
		ranked = append(ranked, Candidate{Profile: c, Distance: &rounded})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		di, dj := ranked[i].Distance, ranked[j].Distance
		switch {
		case di == nil:
			return false
		case dj == nil:
			return true
		default:
			return *di < *dj
		}
	})
	return ranked
}

func withoutDistance(profiles []db.Profile) []Candidate {
	out := make([]Candidate, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, Candidate{Profile: p})
	}
	return out
}

// paged trims a slice already SQL-paged with limit+1.
func paged(items []Candidate, limit int) Result {
	trimmed, more := pagination.TrimOverfetch(items, limit)
	return Result{Profiles: trimmed, Total: len(trimmed), HasMore: more}
}

// slicePage applies offset/limit in memory after distance ordering.
func slicePage(items []Candidate, page pagination.Page) Result {
	if page.Offset >= len(items) {
		return Result{Profiles: []Candidate{}}
	}
	rest := items[page.Offset:]
	trimmed, more := pagination.TrimOverfetch(rest, page.Limit)
	return Result{Profiles: trimmed, Total: len(trimmed), HasMore: more}
}
