package match

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/amora-app/amora-server/internal/app"
	"github.com/amora-app/amora-server/internal/apperr"
	"github.com/amora-app/amora-server/internal/db"
	"github.com/amora-app/amora-server/internal/notify"
)

// recordingNotifier captures deliveries; set fail to simulate an outage.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []notify.MatchNotification
	fail bool
}

func (n *recordingNotifier) NotifyMatch(_ context.Context, msg notify.MatchNotification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errors.New("bot api unavailable")
	}
	n.sent = append(n.sent, msg)
	return nil
}

func setupService(t *testing.T, notifier notify.MatchNotifier, opts Options) (*Service, *gorm.DB) {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	appCtx := app.New(gdb, nil, log, notifier, nil)
	return NewService(appCtx, opts), gdb
}

func seedUser(t *testing.T, gdb *gorm.DB, id string, telegramID int64, profileName string) {
	t.Helper()
	require.NoError(t, gdb.Create(&db.User{
		ID: id, TelegramID: telegramID, FirstName: "tg-" + id, Username: "u_" + id, IsActive: true,
	}).Error)
	require.NoError(t, gdb.Create(&db.Profile{
		ID: "prof-" + id, UserID: id, Name: profileName,
		MinAge: 18, MaxAge: 100, MaxDistance: 50,
		IsVisible: true, OnboardingCompleted: true,
	}).Error)
}

func TestCreateOrReactivate_CanonicalOrderAndNotifications(t *testing.T) {
	notifier := &recordingNotifier{}
	svc, gdb := setupService(t, notifier, Options{HiddenWindow: 48 * time.Hour})
	ctx := context.Background()
	seedUser(t, gdb, "bob", 200, "Bob")
	seedUser(t, gdb, "alice", 100, "Alice")

	// arguments in non-canonical order
	m, err := svc.CreateOrReactivate(ctx, "bob", "alice")
	require.NoError(t, err)

	assert.Equal(t, "alice", m.User1ID)
	assert.Equal(t, "bob", m.User2ID)
	assert.True(t, m.IsActive)
	assert.True(t, m.User1Notified)
	assert.True(t, m.User2Notified)
	assert.True(t, m.HiddenUntil.After(time.Now().Add(47*time.Hour)))

	require.Len(t, notifier.sent, 2)
	byRecipient := map[int64]notify.MatchNotification{}
	for _, msg := range notifier.sent {
		byRecipient[msg.RecipientTelegramID] = msg
	}
	assert.Equal(t, "Bob", byRecipient[100].MatchedName)
	assert.Equal(t, "u_bob", byRecipient[100].MatchedUsername)
	assert.Equal(t, "Alice", byRecipient[200].MatchedName)
}

func TestCreateOrReactivate_NotifierFailureDoesNotFailMatch(t *testing.T) {
	notifier := &recordingNotifier{fail: true}
	svc, gdb := setupService(t, notifier, Options{})
	ctx := context.Background()
	seedUser(t, gdb, "a", 1, "A")
	seedUser(t, gdb, "b", 2, "B")

	m, err := svc.CreateOrReactivate(ctx, "a", "b")
	require.NoError(t, err)
	assert.True(t, m.IsActive)
	assert.False(t, m.User1Notified)
	assert.False(t, m.User2Notified)
}

func TestCreateOrReactivate_ReactivationKeepsRow(t *testing.T) {
	svc, gdb := setupService(t, &recordingNotifier{}, Options{HiddenWindow: time.Hour})
	ctx := context.Background()
	seedUser(t, gdb, "a", 1, "A")
	seedUser(t, gdb, "b", 2, "B")

	first, err := svc.CreateOrReactivate(ctx, "a", "b")
	require.NoError(t, err)

	ended, err := svc.Unmatch(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, ended.IsActive)

	time.Sleep(2 * time.Millisecond)
	again, err := svc.CreateOrReactivate(ctx, "b", "a")
	require.NoError(t, err)

	assert.Equal(t, first.ID, again.ID, "the pair always addresses the same row")
	assert.True(t, again.IsActive)
	assert.True(t, again.HiddenUntil.After(first.HiddenUntil))

	var count int64
	require.NoError(t, gdb.Model(&db.Match{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCreateOrReactivate_SelfRejected(t *testing.T) {
	svc, _ := setupService(t, &recordingNotifier{}, Options{})
	_, err := svc.CreateOrReactivate(context.Background(), "a", "a")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestFind_EitherOrder(t *testing.T) {
	svc, gdb := setupService(t, &recordingNotifier{}, Options{})
	ctx := context.Background()
	seedUser(t, gdb, "a", 1, "A")
	seedUser(t, gdb, "b", 2, "B")

	created, err := svc.CreateOrReactivate(ctx, "a", "b")
	require.NoError(t, err)

	m, err := svc.Find(ctx, "b", "a")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, created.ID, m.ID)

	m, err = svc.Find(ctx, "a", "nobody")
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestByUser_ListsOnlyActive(t *testing.T) {
	svc, gdb := setupService(t, &recordingNotifier{}, Options{})
	ctx := context.Background()
	for i, id := range []string{"me", "x", "y", "z"} {
		seedUser(t, gdb, id, int64(i+1), id)
	}

	mx, err := svc.CreateOrReactivate(ctx, "me", "x")
	require.NoError(t, err)
	_, err = svc.CreateOrReactivate(ctx, "me", "y")
	require.NoError(t, err)
	_, err = svc.CreateOrReactivate(ctx, "x", "z")
	require.NoError(t, err)

	_, err = svc.Unmatch(ctx, mx.ID)
	require.NoError(t, err)

	mine, err := svc.ByUser(ctx, "me")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "y", mine[0].User2ID)
}

func TestUnmatch_UnknownMatch(t *testing.T) {
	svc, _ := setupService(t, &recordingNotifier{}, Options{})
	_, err := svc.Unmatch(context.Background(), "no-such-match")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
