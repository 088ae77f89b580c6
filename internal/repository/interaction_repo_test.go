package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/amora-app/amora-server/internal/db"
	"github.com/amora-app/amora-server/internal/repository"
)

// setup in-memory DB
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.Migrate(database); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return database
}

func TestInteractionUpsert_NoDuplicateRows(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewInteractionRepository(dbase)

	now := time.Now().UTC()
	first := &db.Interaction{
		ID: "i1", FromUserID: "a", ToUserID: "b",
		Type: db.InteractionLike, LikeCount: 1,
		CreatedAt: now, ExpiresAt: now.Add(24 * time.Hour),
	}
	require.NoError(t, repo.Upsert(ctx, first))

	second := &db.Interaction{
		ID: "i2", FromUserID: "a", ToUserID: "b",
		Type: db.InteractionSkip, LikeCount: 1,
		CreatedAt: now.Add(time.Hour), ExpiresAt: now.Add(25 * time.Hour),
	}
	require.NoError(t, repo.Upsert(ctx, second))

	var count int64
	require.NoError(t, dbase.Model(&db.Interaction{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	got, err := repo.Find(ctx, "a", "b")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "i1", got.ID) // row id survives the overwrite
	assert.Equal(t, db.InteractionSkip, got.Type)
}

func TestInteractionUpsert_KeepsMessageOnPlainLike(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewInteractionRepository(dbase)

	now := time.Now().UTC()
	require.NoError(t, repo.Upsert(ctx, &db.Interaction{
		ID: "i1", FromUserID: "a", ToUserID: "b",
		Type: db.InteractionSuperLike, Message: "hey there", LikeCount: 1,
		CreatedAt: now, ExpiresAt: now.Add(24 * time.Hour),
	}))
	require.NoError(t, repo.Upsert(ctx, &db.Interaction{
		ID: "i2", FromUserID: "a", ToUserID: "b",
		Type: db.InteractionLike, LikeCount: 2,
		CreatedAt: now.Add(25 * time.Hour), ExpiresAt: now.Add(49 * time.Hour),
	}))

	got, err := repo.Find(ctx, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, db.InteractionLike, got.Type)
	assert.Equal(t, "hey there", got.Message)
	assert.Equal(t, 2, got.LikeCount)
}

func TestActiveTargetIDs_SkipsExpired(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewInteractionRepository(dbase)

	now := time.Now().UTC()
	require.NoError(t, repo.Upsert(ctx, &db.Interaction{
		ID: "i1", FromUserID: "a", ToUserID: "fresh",
		Type: db.InteractionLike, LikeCount: 1,
		CreatedAt: now, ExpiresAt: now.Add(time.Hour),
	}))
	require.NoError(t, repo.Upsert(ctx, &db.Interaction{
		ID: "i2", FromUserID: "a", ToUserID: "stale",
		Type: db.InteractionLike, LikeCount: 1,
		CreatedAt: now.Add(-48 * time.Hour), ExpiresAt: now.Add(-24 * time.Hour),
	}))

	ids, err := repo.ActiveTargetIDs(ctx, "a", now)
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, ids)
}

func TestLatestByActorAndDelete(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewInteractionRepository(dbase)

	now := time.Now().UTC()
	require.NoError(t, repo.Upsert(ctx, &db.Interaction{
		ID: "old", FromUserID: "a", ToUserID: "x",
		Type: db.InteractionLike, LikeCount: 1,
		CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(22 * time.Hour),
	}))
	require.NoError(t, repo.Upsert(ctx, &db.Interaction{
		ID: "new", FromUserID: "a", ToUserID: "y",
		Type: db.InteractionSkip, LikeCount: 1,
		CreatedAt: now, ExpiresAt: now.Add(24 * time.Hour),
	}))

	latest, err := repo.LatestByActor(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "new", latest.ID)

	require.NoError(t, repo.Delete(ctx, latest.ID))

	latest, err = repo.LatestByActor(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "old", latest.ID)
}

func TestUnreadSuperLikes(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewInteractionRepository(dbase)

	now := time.Now().UTC()
	require.NoError(t, repo.Upsert(ctx, &db.Interaction{
		ID: "s1", FromUserID: "a", ToUserID: "me",
		Type: db.InteractionSuperLike, Message: "hi", LikeCount: 1,
		CreatedAt: now, ExpiresAt: now.Add(24 * time.Hour),
	}))
	require.NoError(t, repo.Upsert(ctx, &db.Interaction{
		ID: "l1", FromUserID: "b", ToUserID: "me",
		Type: db.InteractionLike, LikeCount: 1,
		CreatedAt: now, ExpiresAt: now.Add(24 * time.Hour),
	}))

	count, err := repo.CountUnreadSuperLikes(ctx, "me")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	ok, err := repo.MarkRead(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, ok)

	count, err = repo.CountUnreadSuperLikes(ctx, "me")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	ok, err = repo.MarkRead(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}
