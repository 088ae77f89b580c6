// Package interaction owns the directional ledger: recording like /
// super-like / skip actions under the per-pair cooldown, mutual-like
// detection, the super-like inbox, and the quota-limited undo.
package interaction

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/amora-app/amora-server/internal/app"
	"github.com/amora-app/amora-server/internal/apperr"
	"github.com/amora-app/amora-server/internal/db"
	"github.com/amora-app/amora-server/internal/repository"
)

// UnlimitedUndos is the sentinel "remaining" value for premium accounts.
const UnlimitedUndos = -1

// Options tune ledger behavior; zero values are replaced with defaults.
type Options struct {
	// Cooldown is the window during which a repeat action on the same
	// target is rejected.
	Cooldown time.Duration
	// UndoDailyLimit caps undo uses per non-premium user per local day.
	UndoDailyLimit int
}

type Service struct {
	appCtx       *app.AppContext
	interactRepo *repository.InteractionRepository
	profileRepo  *repository.ProfileRepository
	userRepo     *repository.UserRepository
	opts         Options

	now func() time.Time
}

func NewService(appCtx *app.AppContext, opts Options) *Service {
	if opts.Cooldown <= 0 {
		opts.Cooldown = 24 * time.Hour
	}
	if opts.UndoDailyLimit <= 0 {
		opts.UndoDailyLimit = 10
	}
	return &Service{
		appCtx:       appCtx,
		interactRepo: repository.NewInteractionRepository(appCtx.DB),
		profileRepo:  repository.NewProfileRepository(appCtx.DB),
		userRepo:     repository.NewUserRepository(appCtx.DB),
		opts:         opts,
		now:          time.Now,
	}
}

// Record writes the (from, to) interaction.
//
// Rules: no self-interaction; super_like requires a message; an unexpired
// existing row is a cooldown violation carrying the expiry as the only retry
// guidance. The write is a single upsert on the pair's unique index. When a
// like or super-like replaces an expired row, the accumulation counter is
// bumped instead of reset; a super-like overwrites the stored message and
// clears the read flag.
func (s *Service) Record(ctx context.Context, fromUserID, toUserID, interactionType, message string) (*db.Interaction, error) {
	if fromUserID == toUserID {
		return nil, apperr.Validation("cannot interact with yourself")
	}

	switch interactionType {
	case db.InteractionLike, db.InteractionSuperLike, db.InteractionSkip:
	default:
		return nil, apperr.Validation("unknown interaction type %q", interactionType)
	}
	if interactionType == db.InteractionSuperLike && message == "" {
		return nil, apperr.Validation("super like requires a message")
	}

	now := s.now()

	existing, err := s.interactRepo.Find(ctx, fromUserID, toUserID)
	if err != nil {
		return nil, apperr.Map(err)
	}
	if existing != nil && existing.ExpiresAt.After(now) {
		return nil, apperr.Cooldown(existing.ExpiresAt)
	}

	likeCount := 1
	if existing != nil && (interactionType == db.InteractionLike || interactionType == db.InteractionSuperLike) {
		likeCount = existing.LikeCount + 1
	}

	in := &db.Interaction{
		ID:         uuid.NewString(),
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		Type:       interactionType,
		IsRead:     false,
		LikeCount:  likeCount,
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.opts.Cooldown),
	}
	if interactionType == db.InteractionSuperLike {
		in.Message = message
	}

	if err := s.interactRepo.Upsert(ctx, in); err != nil {
		return nil, apperr.Map(err)
	}

	// re-read: on conflict the stored row keeps its original id
	stored, err := s.interactRepo.Find(ctx, fromUserID, toUserID)
	if err != nil {
		return nil, apperr.Map(err)
	}

	s.appCtx.Logger.Debug("interaction recorded",
		"from", fromUserID, "to", toUserID, "type", interactionType, "like_count", likeCount)

	return stored, nil
}

// IsMutual reports whether both directional rows exist and both are likes or
// super-likes. Cooldown state is deliberately ignored: a stale like still
// represents intent that counts once the counterpart reciprocates.
func (s *Service) IsMutual(ctx context.Context, userAID, userBID string) (bool, error) {
	ab, err := s.interactRepo.Find(ctx, userAID, userBID)
	if err != nil {
		return false, apperr.Map(err)
	}
	ba, err := s.interactRepo.Find(ctx, userBID, userAID)
	if err != nil {
		return false, apperr.Map(err)
	}
	return isPositive(ab) && isPositive(ba), nil
}

// ResetLikeCounts zeroes the accumulation counters in both directions,
// called once a pair matches.
func (s *Service) ResetLikeCounts(ctx context.Context, userAID, userBID string) error {
	if err := s.interactRepo.ResetLikeCount(ctx, userAID, userBID); err != nil {
		return apperr.Map(err)
	}
	return apperr.Map(s.interactRepo.ResetLikeCount(ctx, userBID, userAID))
}

// UndoResult carries the re-presentable target profile and the remaining
// daily quota (UnlimitedUndos for premium).
type UndoResult struct {
	Profile   *db.Profile
	Remaining int
}

// Undo deletes the user's most recent interaction and returns its target's
// profile. Non-premium users consume one unit of the daily quota; the quota
// is never decremented for premium accounts.
func (s *Service) Undo(ctx context.Context, userID string) (*UndoResult, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, apperr.Map(err)
	}
	if user == nil {
		return nil, apperr.NotFound("user not found")
	}

	now := s.now()
	limit := int64(s.opts.UndoDailyLimit)

	if !user.IsPremium {
		used, err := s.appCtx.RedisCache.UndoUsed(ctx, userID, now)
		if err != nil {
			return nil, apperr.Map(err)
		}
		if used >= limit {
			return nil, apperr.QuotaExhausted("daily undo limit reached")
		}
	}

	last, err := s.interactRepo.LatestByActor(ctx, userID)
	if err != nil {
		return nil, apperr.Map(err)
	}
	if last == nil {
		return nil, apperr.Validation("no interaction to undo")
	}

	target, err := s.profileRepo.GetByUserID(ctx, last.ToUserID)
	if err != nil {
		return nil, apperr.Map(err)
	}

	if err := s.interactRepo.Delete(ctx, last.ID); err != nil {
		return nil, apperr.Map(err)
	}

	remaining := UnlimitedUndos
	if !user.IsPremium {
		used, err := s.appCtx.RedisCache.IncrUndoUsed(ctx, userID, now)
		if err != nil {
			return nil, apperr.Map(err)
		}
		remaining = int(limit - used)
		if remaining < 0 {
			remaining = 0
		}
	}

	s.appCtx.Logger.Info("interaction undone", "user", userID, "target", last.ToUserID, "remaining", remaining)

	return &UndoResult{Profile: target, Remaining: remaining}, nil
}

// UndoStatus reports whether an undo would currently succeed.
type UndoStatus struct {
	CanUndo   bool
	Remaining int
	IsPremium bool
}

func (s *Service) CanUndo(ctx context.Context, userID string) (*UndoStatus, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, apperr.Map(err)
	}
	if user == nil {
		return nil, apperr.NotFound("user not found")
	}

	last, err := s.interactRepo.LatestByActor(ctx, userID)
	if err != nil {
		return nil, apperr.Map(err)
	}
	hasPrior := last != nil

	if user.IsPremium {
		return &UndoStatus{CanUndo: hasPrior, Remaining: UnlimitedUndos, IsPremium: true}, nil
	}

	used, err := s.appCtx.RedisCache.UndoUsed(ctx, userID, s.now())
	if err != nil {
		return nil, apperr.Map(err)
	}
	remaining := s.opts.UndoDailyLimit - int(used)
	if remaining < 0 {
		remaining = 0
	}
	return &UndoStatus{CanUndo: hasPrior && remaining > 0, Remaining: remaining}, nil
}

// LikeReceived is an inbox entry joining the interaction with the sender's
// profile.
type LikeReceived struct {
	ID          string
	FromProfile db.Profile
	LikeCount   int
	CreatedAt   time.Time
}

// SuperLikeReceived additionally carries the attached message and read flag.
type SuperLikeReceived struct {
	ID          string
	FromProfile db.Profile
	Message     string
	IsRead      bool
	CreatedAt   time.Time
}

// LikesReceived lists likes and super-likes toward the user, oldest first.
// Entries whose sender has no profile are dropped.
func (s *Service) LikesReceived(ctx context.Context, userID string) ([]LikeReceived, error) {
	rows, err := s.interactRepo.ReceivedOfTypes(ctx, userID, []string{db.InteractionLike, db.InteractionSuperLike})
	if err != nil {
		return nil, apperr.Map(err)
	}
	profiles, err := s.senderProfiles(ctx, rows)
	if err != nil {
		return nil, err
	}

	out := make([]LikeReceived, 0, len(rows))
	for _, row := range rows {
		p, ok := profiles[row.FromUserID]
		if !ok {
			continue
		}
		out = append(out, LikeReceived{
			ID:          row.ID,
			FromProfile: p,
			LikeCount:   row.LikeCount,
			CreatedAt:   row.CreatedAt,
		})
	}
	return out, nil
}

// SuperLikesReceived lists the super-like inbox, oldest first.
func (s *Service) SuperLikesReceived(ctx context.Context, userID string) ([]SuperLikeReceived, error) {
	rows, err := s.interactRepo.ReceivedOfTypes(ctx, userID, []string{db.InteractionSuperLike})
	if err != nil {
		return nil, apperr.Map(err)
	}
	profiles, err := s.senderProfiles(ctx, rows)
	if err != nil {
		return nil, err
	}

	out := make([]SuperLikeReceived, 0, len(rows))
	for _, row := range rows {
		p, ok := profiles[row.FromUserID]
		if !ok {
			continue
		}
		out = append(out, SuperLikeReceived{
			ID:          row.ID,
			FromProfile: p,
			Message:     row.Message,
			IsRead:      row.IsRead,
			CreatedAt:   row.CreatedAt,
		})
	}
	return out, nil
}

// MarkSuperLikeRead flags an inbox super-like as read.
func (s *Service) MarkSuperLikeRead(ctx context.Context, interactionID string) (bool, error) {
	ok, err := s.interactRepo.MarkRead(ctx, interactionID)
	if err != nil {
		return false, apperr.Map(err)
	}
	return ok, nil
}

// UnreadSuperLikeCount counts unread inbox super-likes.
func (s *Service) UnreadSuperLikeCount(ctx context.Context, userID string) (int, error) {
	n, err := s.interactRepo.CountUnreadSuperLikes(ctx, userID)
	if err != nil {
		return 0, apperr.Map(err)
	}
	return int(n), nil
}

func (s *Service) senderProfiles(ctx context.Context, rows []db.Interaction) (map[string]db.Profile, error) {
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.FromUserID)
	}
	profiles, err := s.profileRepo.ListByUserIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Map(err)
	}
	return profiles, nil
}

func isPositive(in *db.Interaction) bool {
	return in != nil && (in.Type == db.InteractionLike || in.Type == db.InteractionSuperLike)
}
