package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/amora-app/amora-server/internal/db"
)

// InteractionRepository provides data access for the directional
// like/super-like/skip ledger.
type InteractionRepository struct {
	db *gorm.DB
}

func NewInteractionRepository(database *gorm.DB) *InteractionRepository {
	return &InteractionRepository{db: database}
}

// Upsert inserts or updates the (from_user_id, to_user_id) row in a single
// conditional write. The unique pair index makes repeat actions overwrite
// instead of duplicate, which is the entire concurrency story for the
// ledger: no read-check-then-insert anywhere.
//
// The message column is only overwritten when the incoming row carries one,
// so a plain like over an expired super-like keeps the old message in place.
func (r *InteractionRepository) Upsert(ctx context.Context, in *db.Interaction) error {
	assign := []string{"type", "is_read", "like_count", "expires_at", "created_at"}
	if in.Message != "" {
		assign = append(assign, "message")
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "from_user_id"}, {Name: "to_user_id"}},
			DoUpdates: clause.AssignmentColumns(assign),
		}).
		Create(in).Error
}

// Find returns the directional row for (from, to), or nil when absent.
func (r *InteractionRepository) Find(ctx context.Context, fromUserID, toUserID string) (*db.Interaction, error) {
	var in db.Interaction
	err := r.db.WithContext(ctx).
		Where("from_user_id = ? AND to_user_id = ?", fromUserID, toUserID).
		First(&in).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &in, nil
}

// ActiveTargetIDs returns the users the actor has an unexpired interaction
// toward. These are excluded from the actor's discovery feed.
func (r *InteractionRepository) ActiveTargetIDs(ctx context.Context, fromUserID string, now time.Time) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&db.Interaction{}).
		Where("from_user_id = ? AND expires_at >= ?", fromUserID, now).
		Pluck("to_user_id", &ids).Error
	return ids, err
}

// LatestByActor returns the actor's most recent interaction, or nil.
func (r *InteractionRepository) LatestByActor(ctx context.Context, fromUserID string) (*db.Interaction, error) {
	var in db.Interaction
	err := r.db.WithContext(ctx).
		Where("from_user_id = ?", fromUserID).
		Order("created_at DESC, id DESC").
		First(&in).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &in, nil
}

// Delete removes an interaction row. Only the undo operation does this.
func (r *InteractionRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&db.Interaction{}, "id = ?", id).Error
}

// ResetLikeCount zeroes the accumulation counter for a directional pair,
// called when the pair matches.
func (r *InteractionRepository) ResetLikeCount(ctx context.Context, fromUserID, toUserID string) error {
	return r.db.WithContext(ctx).
		Model(&db.Interaction{}).
		Where("from_user_id = ? AND to_user_id = ?", fromUserID, toUserID).
		Update("like_count", 0).Error
}

// ReceivedOfTypes lists interactions toward a user restricted to the given
// types, oldest first.
func (r *InteractionRepository) ReceivedOfTypes(ctx context.Context, toUserID string, types []string) ([]db.Interaction, error) {
	var out []db.Interaction
	err := r.db.WithContext(ctx).
		Where("to_user_id = ? AND type IN ?", toUserID, types).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

// MarkRead flags a super-like as read. Returns false when no row matched.
func (r *InteractionRepository) MarkRead(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&db.Interaction{}).
		Where("id = ?", id).
		Update("is_read", true)
	return res.RowsAffected > 0, res.Error
}

// CountUnreadSuperLikes counts unread super-likes in a user's inbox.
func (r *InteractionRepository) CountUnreadSuperLikes(ctx context.Context, toUserID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Interaction{}).
		Where("to_user_id = ? AND type = ? AND is_read = ?", toUserID, db.InteractionSuperLike, false).
		Count(&count).Error
	return count, err
}
