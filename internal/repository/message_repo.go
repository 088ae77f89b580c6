package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/amora-app/amora-server/internal/db"
)

// MessageRepository provides data access for per-match message threads.
type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(database *gorm.DB) *MessageRepository {
	return &MessageRepository{db: database}
}

func (r *MessageRepository) Create(ctx context.Context, m *db.Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// ListByMatch returns a match's thread, oldest first.
func (r *MessageRepository) ListByMatch(ctx context.Context, matchID string) ([]db.Message, error) {
	var out []db.Message
	err := r.db.WithContext(ctx).
		Where("match_id = ?", matchID).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

// MarkReadForReader flags every message in the match not authored by the
// reader as read.
func (r *MessageRepository) MarkReadForReader(ctx context.Context, matchID, readerID string) error {
	return r.db.WithContext(ctx).
		Model(&db.Message{}).
		Where("match_id = ? AND sender_id <> ? AND is_read = ?", matchID, readerID, false).
		Update("is_read", true).Error
}

// CountUnread counts messages in the match awaiting the reader.
func (r *MessageRepository) CountUnread(ctx context.Context, matchID, readerID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Message{}).
		Where("match_id = ? AND sender_id <> ? AND is_read = ?", matchID, readerID, false).
		Count(&count).Error
	return count, err
}
