package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amora-app/amora-server/internal/db"
	"github.com/amora-app/amora-server/internal/repository"
)

func TestMatchUpsert_SingleRowPerPair(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewMatchRepository(dbase)

	now := time.Now().UTC()
	require.NoError(t, repo.Upsert(ctx, &db.Match{
		ID: "m1", User1ID: "a", User2ID: "b",
		IsActive: true, HiddenUntil: now.Add(48 * time.Hour),
	}))
	// second trigger from the other side lands on the same canonical row
	require.NoError(t, repo.Upsert(ctx, &db.Match{
		ID: "m2", User1ID: "a", User2ID: "b",
		IsActive: true, HiddenUntil: now.Add(48 * time.Hour),
	}))

	var count int64
	require.NoError(t, dbase.Model(&db.Match{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	got, err := repo.FindPair(ctx, "a", "b")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "m1", got.ID)
}

func TestMatchUpsert_ReactivatesAndClearsFlags(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewMatchRepository(dbase)

	now := time.Now().UTC()
	require.NoError(t, repo.Upsert(ctx, &db.Match{
		ID: "m1", User1ID: "a", User2ID: "b",
		IsActive: true, HiddenUntil: now.Add(48 * time.Hour),
	}))
	require.NoError(t, repo.SetNotified(ctx, "m1", true))
	require.NoError(t, repo.SetInactive(ctx, "m1"))

	later := now.Add(96 * time.Hour)
	require.NoError(t, repo.Upsert(ctx, &db.Match{
		ID: "m-ignored", User1ID: "a", User2ID: "b",
		IsActive: true, HiddenUntil: later.Add(48 * time.Hour),
	}))

	got, err := repo.FindPair(ctx, "a", "b")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "m1", got.ID)
	assert.True(t, got.IsActive)
	assert.False(t, got.User1Notified)
	assert.False(t, got.User2Notified)
	assert.WithinDuration(t, later.Add(48*time.Hour), got.HiddenUntil, time.Second)
}

func TestExcludedPartnerIDs_Policy(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewMatchRepository(dbase)

	now := time.Now().UTC()

	// active match
	require.NoError(t, repo.Upsert(ctx, &db.Match{
		ID: "m1", User1ID: "me", User2ID: "active",
		IsActive: true, HiddenUntil: now.Add(-time.Hour),
	}))
	// unmatched but still inside hidden window
	require.NoError(t, repo.Upsert(ctx, &db.Match{
		ID: "m2", User1ID: "hidden", User2ID: "me",
		IsActive: true, HiddenUntil: now.Add(time.Hour),
	}))
	require.NoError(t, repo.SetInactive(ctx, "m2"))
	// unmatched, hidden window elapsed
	require.NoError(t, repo.Upsert(ctx, &db.Match{
		ID: "m3", User1ID: "gone", User2ID: "me",
		IsActive: true, HiddenUntil: now.Add(-time.Hour),
	}))
	require.NoError(t, repo.SetInactive(ctx, "m3"))

	// default policy: every match row excludes its partner
	ids, err := repo.ExcludedPartnerIDs(ctx, "me", now, false)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"active", "hidden", "gone"}, ids)

	// rediscovery policy: dead pairs past their hidden window come back
	ids, err = repo.ExcludedPartnerIDs(ctx, "me", now, true)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"active", "hidden"}, ids)
}

func TestSetNotifiedSides(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewMatchRepository(dbase)

	now := time.Now().UTC()
	require.NoError(t, repo.Upsert(ctx, &db.Match{
		ID: "m1", User1ID: "a", User2ID: "b",
		IsActive: true, HiddenUntil: now,
	}))

	require.NoError(t, repo.SetNotified(ctx, "m1", false))

	got, err := repo.GetByID(ctx, "m1")
	require.NoError(t, err)
	assert.False(t, got.User1Notified)
	assert.True(t, got.User2Notified)
}
