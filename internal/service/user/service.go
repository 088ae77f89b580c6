// Package user manages account rows keyed by the Telegram identity.
package user

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/amora-app/amora-server/internal/app"
	"github.com/amora-app/amora-server/internal/apperr"
	"github.com/amora-app/amora-server/internal/db"
	"github.com/amora-app/amora-server/internal/repository"
	"github.com/amora-app/amora-server/internal/service/profile"
)

// TelegramIdentity is what the client learns about a user from the platform.
type TelegramIdentity struct {
	TelegramID   int64
	Username     string
	FirstName    string
	LastName     string
	LanguageCode string
	IsPremium    bool
}

type Service struct {
	appCtx   *app.AppContext
	userRepo *repository.UserRepository
	profiles *profile.Service

	now func() time.Time
}

func NewService(appCtx *app.AppContext, profiles *profile.Service) *Service {
	return &Service{
		appCtx:   appCtx,
		userRepo: repository.NewUserRepository(appCtx.DB),
		profiles: profiles,
		now:      time.Now,
	}
}

// Get returns a user by id, nil when absent.
func (s *Service) Get(ctx context.Context, id string) (*db.User, error) {
	u, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Map(err)
	}
	return u, nil
}

// FindOrCreate resolves a platform identity to an account. Revisits refresh
// the identity fields and last-active time; first contact creates the user
// and its empty profile row.
func (s *Service) FindOrCreate(ctx context.Context, id TelegramIdentity) (*db.User, error) {
	if id.TelegramID == 0 {
		return nil, apperr.Validation("telegramId is required")
	}
	if id.FirstName == "" {
		return nil, apperr.Validation("firstName is required")
	}

	now := s.now()

	existing, err := s.userRepo.GetByTelegramID(ctx, id.TelegramID)
	if err != nil {
		return nil, apperr.Map(err)
	}
	if existing != nil {
		existing.Username = id.Username
		existing.FirstName = id.FirstName
		existing.LastName = id.LastName
		if id.LanguageCode != "" {
			existing.LanguageCode = id.LanguageCode
		}
		existing.IsPremium = id.IsPremium
		existing.LastActiveAt = now
		if err := s.userRepo.Save(ctx, existing); err != nil {
			return nil, apperr.Map(err)
		}
		return existing, nil
	}

	u := &db.User{
		ID:           uuid.NewString(),
		TelegramID:   id.TelegramID,
		Username:     id.Username,
		FirstName:    id.FirstName,
		LastName:     id.LastName,
		LanguageCode: id.LanguageCode,
		IsPremium:    id.IsPremium,
		IsActive:     true,
		LastActiveAt: now,
	}
	if u.LanguageCode == "" {
		u.LanguageCode = "en"
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, apperr.Map(err)
	}

	if _, err := s.profiles.EnsureExists(ctx, u.ID); err != nil {
		return nil, err
	}

	s.appCtx.Logger.Info("user created", "user", u.ID, "telegram", u.TelegramID)
	return u, nil
}
