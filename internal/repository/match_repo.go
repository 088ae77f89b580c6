package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/amora-app/amora-server/internal/db"
)

// MatchRepository provides data access for canonical match pairs. Callers
// must pass user ids already in canonical order (user1 < user2); the match
// service owns that ordering.
type MatchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(database *gorm.DB) *MatchRepository {
	return &MatchRepository{db: database}
}

// Upsert creates or reactivates the match row for a canonical pair in one
// conditional write. On conflict with the (user1_id, user2_id) unique index
// the existing row is revived: active again, fresh hidden window, both
// notification flags cleared. Two users liking each other in the same
// instant therefore converge on a single row.
func (r *MatchRepository) Upsert(ctx context.Context, m *db.Match) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user1_id"}, {Name: "user2_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"is_active", "hidden_until", "user1_notified", "user2_notified", "updated_at"}),
		}).
		Create(m).Error
}

// FindPair returns the row for a canonical pair, or nil when absent.
func (r *MatchRepository) FindPair(ctx context.Context, user1ID, user2ID string) (*db.Match, error) {
	var m db.Match
	err := r.db.WithContext(ctx).
		Where("user1_id = ? AND user2_id = ?", user1ID, user2ID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetByID returns a match by row id, or nil when absent.
func (r *MatchRepository) GetByID(ctx context.Context, id string) (*db.Match, error) {
	var m db.Match
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ActiveByUser lists a user's active matches, newest first.
func (r *MatchRepository) ActiveByUser(ctx context.Context, userID string) ([]db.Match, error) {
	var out []db.Match
	err := r.db.WithContext(ctx).
		Where("(user1_id = ? OR user2_id = ?) AND is_active = ?", userID, userID, true).
		Order("updated_at DESC").
		Find(&out).Error
	return out, err
}

// ExcludedPartnerIDs returns the partners a user's discovery feed must not
// show. With rediscoverUnmatched false every match row excludes its partner
// forever; otherwise only active matches and pairs still inside their hidden
// window do.
func (r *MatchRepository) ExcludedPartnerIDs(ctx context.Context, userID string, now time.Time, rediscoverUnmatched bool) ([]string, error) {
	query := r.db.WithContext(ctx).
		Model(&db.Match{}).
		Where("user1_id = ? OR user2_id = ?", userID, userID)

	if rediscoverUnmatched {
		query = query.Where("(is_active = ? OR hidden_until >= ?)", true, now)
	}

	var matches []db.Match
	if err := query.Find(&matches).Error; err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		if m.User1ID == userID {
			ids = append(ids, m.User2ID)
		} else {
			ids = append(ids, m.User1ID)
		}
	}
	return ids, nil
}

// SetInactive soft-deletes a match. Terminal: nothing reactivates it except
// a fresh mutual like flowing through Upsert.
func (r *MatchRepository) SetInactive(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&db.Match{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_active": false, "updated_at": time.Now()}).Error
}

// SetNotified records successful notification dispatch for one side.
func (r *MatchRepository) SetNotified(ctx context.Context, id string, firstSide bool) error {
	col := "user2_notified"
	if firstSide {
		col = "user1_notified"
	}
	return r.db.WithContext(ctx).
		Model(&db.Match{}).
		Where("id = ?", id).
		Update(col, true).Error
}
