// Package match owns the match lifecycle: reciprocity-triggered creation or
// reactivation under the canonical-pair uniqueness invariant, the post-match
// hidden window, best-effort notification dispatch, and unmatch.
package match

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/amora-app/amora-server/internal/app"
	"github.com/amora-app/amora-server/internal/apperr"
	"github.com/amora-app/amora-server/internal/db"
	"github.com/amora-app/amora-server/internal/notify"
	"github.com/amora-app/amora-server/internal/repository"
)

// Options tune match behavior; zero values are replaced with defaults.
type Options struct {
	// HiddenWindow keeps a fresh match out of both discovery feeds while
	// still showing it in the match list ("let them chat first").
	HiddenWindow time.Duration
}

type Service struct {
	appCtx      *app.AppContext
	matchRepo   *repository.MatchRepository
	userRepo    *repository.UserRepository
	profileRepo *repository.ProfileRepository
	opts        Options

	now func() time.Time
}

func NewService(appCtx *app.AppContext, opts Options) *Service {
	if opts.HiddenWindow <= 0 {
		opts.HiddenWindow = 48 * time.Hour
	}
	return &Service{
		appCtx:      appCtx,
		matchRepo:   repository.NewMatchRepository(appCtx.DB),
		userRepo:    repository.NewUserRepository(appCtx.DB),
		profileRepo: repository.NewProfileRepository(appCtx.DB),
		opts:        opts,
		now:         time.Now,
	}
}

// canonicalPair orders two user ids so (A,B) and (B,A) address the same row.
// Every read and write site goes through this; unordered pairs are never
// stored or compared.
func canonicalPair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

// CreateOrReactivate upserts the match row for a pair and notifies both
// sides before returning. The canonical ordering plus the unique (user1,
// user2) index make concurrent mutual-like triggers from both sides converge
// on one row in a single conditional write. Notification failures are
// swallowed per side and recorded via the notified flags.
func (s *Service) CreateOrReactivate(ctx context.Context, userAID, userBID string) (*db.Match, error) {
	if userAID == userBID {
		return nil, apperr.Validation("cannot match a user with themselves")
	}

	first, second := canonicalPair(userAID, userBID)
	now := s.now()

	m := &db.Match{
		ID:          uuid.NewString(),
		User1ID:     first,
		User2ID:     second,
		IsActive:    true,
		HiddenUntil: now.Add(s.opts.HiddenWindow),
	}
	if err := s.matchRepo.Upsert(ctx, m); err != nil {
		return nil, apperr.Map(err)
	}

	// re-read: on reactivation the stored row keeps its original id
	stored, err := s.matchRepo.FindPair(ctx, first, second)
	if err != nil {
		return nil, apperr.Map(err)
	}
	if stored == nil {
		return nil, apperr.Internal(errors.New("match row missing after upsert"))
	}

	s.notifyBoth(ctx, stored)

	s.appCtx.Logger.Info("match created",
		"match", stored.ID, "user1", stored.User1ID, "user2", stored.User2ID,
		"hidden_until", stored.HiddenUntil)

	// return the row with fresh notification flags
	return s.matchRepo.GetByID(ctx, stored.ID)
}

// Find performs the canonical-order lookup; nil when the pair never matched.
func (s *Service) Find(ctx context.Context, userAID, userBID string) (*db.Match, error) {
	first, second := canonicalPair(userAID, userBID)
	m, err := s.matchRepo.FindPair(ctx, first, second)
	if err != nil {
		return nil, apperr.Map(err)
	}
	return m, nil
}

// Get returns a match by id, nil when absent.
func (s *Service) Get(ctx context.Context, matchID string) (*db.Match, error) {
	m, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, apperr.Map(err)
	}
	return m, nil
}

// ByUser lists the user's active matches.
func (s *Service) ByUser(ctx context.Context, userID string) ([]db.Match, error) {
	out, err := s.matchRepo.ActiveByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Map(err)
	}
	return out, nil
}

// Unmatch soft-deletes a match. Terminal; history stays for audit.
func (s *Service) Unmatch(ctx context.Context, matchID string) (*db.Match, error) {
	m, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, apperr.Map(err)
	}
	if m == nil {
		return nil, apperr.NotFound("match not found")
	}

	if err := s.matchRepo.SetInactive(ctx, matchID); err != nil {
		return nil, apperr.Map(err)
	}

	s.appCtx.Logger.Info("unmatched", "match", matchID)
	return s.matchRepo.GetByID(ctx, matchID)
}

// notifyBoth dispatches both sides concurrently and waits for completion so
// the notified flags are settled before the mutation returns. Failures are
// logged and leave the flag false; they never fail the match.
func (s *Service) notifyBoth(ctx context.Context, m *db.Match) {
	var wg sync.WaitGroup
	for _, side := range []struct {
		recipient string
		other     string
		first     bool
	}{
		{m.User1ID, m.User2ID, true},
		{m.User2ID, m.User1ID, false},
	} {
		side := side
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.notifyOne(ctx, m, side.recipient, side.other, side.first); err != nil {
				s.appCtx.Logger.Warn("match notification not delivered",
					"match", m.ID, "recipient", side.recipient, "err", err)
			}
		}()
	}
	wg.Wait()
}

func (s *Service) notifyOne(ctx context.Context, m *db.Match, recipientID, otherID string, firstSide bool) error {
	recipient, err := s.userRepo.GetByID(ctx, recipientID)
	if err != nil {
		return err
	}
	if recipient == nil {
		return apperr.NotFound("recipient user missing")
	}

	other, err := s.userRepo.GetByID(ctx, otherID)
	if err != nil {
		return err
	}

	name := ""
	username := ""
	if other != nil {
		name = other.FirstName
		username = other.Username
	}
	if p, err := s.profileRepo.GetByUserID(ctx, otherID); err == nil && p != nil && p.Name != "" {
		name = p.Name
	}

	if err := s.appCtx.Notifier.NotifyMatch(ctx, notify.MatchNotification{
		RecipientTelegramID: recipient.TelegramID,
		MatchedName:         name,
		MatchedUsername:     username,
	}); err != nil {
		return err
	}

	return s.matchRepo.SetNotified(ctx, m.ID, firstSide)
}
