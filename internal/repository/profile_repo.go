package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/amora-app/amora-server/internal/db"
)

// ProfileRepository provides data access for Profile rows, including the
// discovery candidate query.
type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(database *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: database}
}

// GetByUserID returns a user's profile, or nil when absent.
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (*db.Profile, error) {
	var p db.Profile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByID returns a profile by its row id, or nil when absent.
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*db.Profile, error) {
	var p db.Profile
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByUserIDs loads profiles for a set of user ids, keyed by user id.
func (r *ProfileRepository) ListByUserIDs(ctx context.Context, userIDs []string) (map[string]db.Profile, error) {
	out := make(map[string]db.Profile, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	var profiles []db.Profile
	if err := r.db.WithContext(ctx).Where("user_id IN ?", userIDs).Find(&profiles).Error; err != nil {
		return nil, err
	}
	for _, p := range profiles {
		out[p.UserID] = p
	}
	return out, nil
}

func (r *ProfileRepository) Create(ctx context.Context, p *db.Profile) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *ProfileRepository) Save(ctx context.Context, p *db.Profile) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// CandidateQuery captures every SQL-side discovery filter. Distance math and
// distance ordering happen in the discovery service on the returned slice.
type CandidateQuery struct {
	ViewerUserID string

	// ExcludeUserIDs removes already-interacted and already-matched users.
	ExcludeUserIDs []string
	// ExcludeProfileIDs is the client-supplied dedup hint (profile row ids).
	ExcludeProfileIDs []string

	// Gender restricts candidate gender; empty means no restriction.
	Gender string
	// ViewerGenderTerm is the looking_for value candidates must accept
	// (viewer's gender, "both" for "other"); empty skips the filter.
	// Unset candidate preferences are permissive.
	ViewerGenderTerm string

	// Birth-date bounds derived from the viewer's age range. Candidates with
	// no recorded birth date always pass.
	MinBirthDate *time.Time
	MaxBirthDate *time.Time

	// City filters to an exact city-name match when non-empty.
	City string

	// RequireVisible and completed onboarding are always applied; these two
	// knobs exist only for admin tooling.
	Limit  int
	Offset int
}

// FindCandidates applies the set filters of the discovery algorithm: not
// self, onboarded, visible, not excluded, preference-compatible, inside the
// birth-date bounds, and optionally in the viewer's city.
func (r *ProfileRepository) FindCandidates(ctx context.Context, q CandidateQuery) ([]db.Profile, error) {
	query := r.db.WithContext(ctx).
		Model(&db.Profile{}).
		Where("user_id <> ?", q.ViewerUserID).
		Where("onboarding_completed = ?", true).
		Where("is_visible = ?", true)

	if len(q.ExcludeUserIDs) > 0 {
		query = query.Where("user_id NOT IN ?", q.ExcludeUserIDs)
	}
	if len(q.ExcludeProfileIDs) > 0 {
		query = query.Where("id NOT IN ?", q.ExcludeProfileIDs)
	}

	if q.Gender != "" {
		query = query.Where("gender = ?", q.Gender)
	}
	if q.ViewerGenderTerm != "" {
		query = query.Where(
			"(looking_for = ? OR looking_for = ? OR looking_for = '' OR looking_for IS NULL)",
			q.ViewerGenderTerm, db.LookingForBoth,
		)
	}

	if q.MaxBirthDate != nil {
		query = query.Where("(birth_date <= ? OR birth_date IS NULL)", *q.MaxBirthDate)
	}
	if q.MinBirthDate != nil {
		query = query.Where("(birth_date >= ? OR birth_date IS NULL)", *q.MinBirthDate)
	}

	if q.City != "" {
		query = query.Where("city = ?", q.City)
	}

	query = query.Order("created_at ASC, id ASC")

	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	if q.Offset > 0 {
		query = query.Offset(q.Offset)
	}

	var candidates []db.Profile
	if err := query.Find(&candidates).Error; err != nil {
		return nil, err
	}
	return candidates, nil
}
