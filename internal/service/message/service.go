// Package message implements match-gated message threads. Deliberately thin:
// the interesting guarantee is the gate, not the CRUD.
package message

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/amora-app/amora-server/internal/app"
	"github.com/amora-app/amora-server/internal/apperr"
	"github.com/amora-app/amora-server/internal/db"
	"github.com/amora-app/amora-server/internal/repository"
)

type Service struct {
	appCtx      *app.AppContext
	messageRepo *repository.MessageRepository
	matchRepo   *repository.MatchRepository

	now func() time.Time
}

func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:      appCtx,
		messageRepo: repository.NewMessageRepository(appCtx.DB),
		matchRepo:   repository.NewMatchRepository(appCtx.DB),
		now:         time.Now,
	}
}

// Send stores a message. The match must exist, be active, and the sender
// must be one of its two users.
func (s *Service) Send(ctx context.Context, matchID, senderID, content string) (*db.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.Validation("message content must not be empty")
	}

	m, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, apperr.Map(err)
	}
	if m == nil {
		return nil, apperr.NotFound("match not found")
	}
	if !m.IsActive {
		return nil, apperr.Validation("match is no longer active")
	}
	if senderID != m.User1ID && senderID != m.User2ID {
		return nil, apperr.Validation("sender is not part of this match")
	}

	msg := &db.Message{
		ID:        uuid.NewString(),
		MatchID:   matchID,
		SenderID:  senderID,
		Content:   content,
		CreatedAt: s.now(),
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, apperr.Map(err)
	}
	return msg, nil
}

// List returns a match's thread, oldest first.
func (s *Service) List(ctx context.Context, matchID string) ([]db.Message, error) {
	out, err := s.messageRepo.ListByMatch(ctx, matchID)
	if err != nil {
		return nil, apperr.Map(err)
	}
	return out, nil
}

// MarkRead flags everything addressed to the reader in the match as read.
func (s *Service) MarkRead(ctx context.Context, matchID, readerID string) error {
	return apperr.Map(s.messageRepo.MarkReadForReader(ctx, matchID, readerID))
}

// UnreadCount counts messages awaiting the reader in the match.
func (s *Service) UnreadCount(ctx context.Context, matchID, readerID string) (int, error) {
	n, err := s.messageRepo.CountUnread(ctx, matchID, readerID)
	if err != nil {
		return 0, apperr.Map(err)
	}
	return int(n), nil
}
