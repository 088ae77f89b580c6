package graph

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/amora-app/amora-server/internal/app"
	"github.com/amora-app/amora-server/internal/cache"
	"github.com/amora-app/amora-server/internal/db"
	"github.com/amora-app/amora-server/internal/notify"
	"github.com/amora-app/amora-server/internal/service/discovery"
	"github.com/amora-app/amora-server/internal/service/interaction"
	"github.com/amora-app/amora-server/internal/service/match"
	"github.com/amora-app/amora-server/internal/service/message"
	"github.com/amora-app/amora-server/internal/service/profile"
	"github.com/amora-app/amora-server/internal/service/user"
)

func setupSchema(t *testing.T) (graphql.Schema, *gorm.DB) {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	mr := miniredis.RunT(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	appCtx := app.New(gdb, cache.NewRedisCacheForAddr(mr.Addr()), log, notify.Disabled{}, nil)

	profiles := profile.NewService(appCtx, nil)
	resolver := NewResolver(appCtx,
		discovery.NewService(appCtx, discovery.Options{}),
		interaction.NewService(appCtx, interaction.Options{}),
		match.NewService(appCtx, match.Options{}),
		message.NewService(appCtx),
		profiles,
		user.NewService(appCtx, profiles),
	)
	schema, err := NewSchema(resolver)
	require.NoError(t, err)
	return schema, gdb
}

func seedPair(t *testing.T, gdb *gorm.DB) {
	t.Helper()
	for i, id := range []string{"alice", "bob"} {
		require.NoError(t, gdb.Create(&db.User{
			ID: id, TelegramID: int64(100 + i), FirstName: id, IsActive: true,
		}).Error)
		require.NoError(t, gdb.Create(&db.Profile{
			ID: "prof-" + id, UserID: id, Name: id,
			MinAge: 18, MaxAge: 100, MaxDistance: 50,
			IsVisible: true, OnboardingCompleted: true,
		}).Error)
	}
}

func exec(t *testing.T, schema graphql.Schema, query string) *graphql.Result {
	t.Helper()
	return graphql.Do(graphql.Params{
		Schema:        schema,
		RequestString: query,
		Context:       context.Background(),
	})
}

func data(t *testing.T, res *graphql.Result, field string) map[string]interface{} {
	t.Helper()
	require.Empty(t, res.Errors, "unexpected errors: %v", res.Errors)
	root, ok := res.Data.(map[string]interface{})
	require.True(t, ok)
	out, ok := root[field].(map[string]interface{})
	require.True(t, ok, "field %s missing or not an object", field)
	return out
}

func TestCreateInteraction_MutualLikeCreatesMatch(t *testing.T) {
	schema, gdb := setupSchema(t)
	seedPair(t, gdb)

	res := exec(t, schema, `mutation {
		createInteraction(fromUserId: "alice", toUserId: "bob", type: LIKE) {
			isMatch
			interaction { type likeCount }
			match { id }
		}
	}`)
	first := data(t, res, "createInteraction")
	assert.Equal(t, false, first["isMatch"])
	assert.Nil(t, first["match"])
	in := first["interaction"].(map[string]interface{})
	assert.Equal(t, "LIKE", in["type"])
	assert.Equal(t, 1, in["likeCount"])

	res = exec(t, schema, `mutation {
		createInteraction(fromUserId: "bob", toUserId: "alice", type: SUPER_LIKE, message: "hey!") {
			isMatch
			match { id user1Id user2Id isActive }
		}
	}`)
	second := data(t, res, "createInteraction")
	assert.Equal(t, true, second["isMatch"])
	m := second["match"].(map[string]interface{})
	assert.Equal(t, "alice", m["user1Id"], "stored pair is canonically ordered")
	assert.Equal(t, "bob", m["user2Id"])
	assert.Equal(t, true, m["isActive"])

	// both accumulation counters reset on match
	var rows []db.Interaction
	require.NoError(t, gdb.Find(&rows).Error)
	for _, row := range rows {
		assert.Equal(t, 0, row.LikeCount)
	}

	res = exec(t, schema, `query { checkMutualLike(userId1: "bob", userId2: "alice") }`)
	require.Empty(t, res.Errors)
	assert.Equal(t, true, res.Data.(map[string]interface{})["checkMutualLike"])
}

func TestCreateInteraction_CooldownErrorCarriesCode(t *testing.T) {
	schema, gdb := setupSchema(t)
	seedPair(t, gdb)

	q := `mutation {
		createInteraction(fromUserId: "alice", toUserId: "bob", type: LIKE) { isMatch }
	}`
	res := exec(t, schema, q)
	require.Empty(t, res.Errors)

	res = exec(t, schema, q)
	require.NotEmpty(t, res.Errors)
	assert.Equal(t, "COOLDOWN", res.Errors[0].Extensions["code"])
}

func TestCreateInteraction_ExistingActiveMatchIsReused(t *testing.T) {
	schema, gdb := setupSchema(t)
	seedPair(t, gdb)

	res := exec(t, schema, `mutation {
		createInteraction(fromUserId: "alice", toUserId: "bob", type: LIKE) { isMatch }
	}`)
	require.Empty(t, res.Errors)
	res = exec(t, schema, `mutation {
		createInteraction(fromUserId: "bob", toUserId: "alice", type: LIKE) { isMatch match { id } }
	}`)
	matched := data(t, res, "createInteraction")
	matchID := matched["match"].(map[string]interface{})["id"]

	// a later super-like against an already-matched pair reports the same match
	var inRow db.Interaction
	require.NoError(t, gdb.Where("from_user_id = ?", "bob").First(&inRow).Error)
	require.NoError(t, gdb.Model(&inRow).Update("expires_at", time.Now().Add(-time.Minute)).Error)

	res = exec(t, schema, `mutation {
		createInteraction(fromUserId: "bob", toUserId: "alice", type: LIKE) { isMatch match { id } }
	}`)
	again := data(t, res, "createInteraction")
	assert.Equal(t, true, again["isMatch"])
	assert.Equal(t, matchID, again["match"].(map[string]interface{})["id"])

	var count int64
	require.NoError(t, gdb.Model(&db.Match{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestMatchLookups(t *testing.T) {
	schema, gdb := setupSchema(t)
	seedPair(t, gdb)

	for _, q := range []string{
		`mutation { createInteraction(fromUserId: "alice", toUserId: "bob", type: LIKE) { isMatch } }`,
		`mutation { createInteraction(fromUserId: "bob", toUserId: "alice", type: LIKE) { isMatch } }`,
	} {
		res := exec(t, schema, q)
		require.Empty(t, res.Errors)
	}

	// pair lookup works regardless of argument order
	res := exec(t, schema, `query { match(user1Id: "bob", user2Id: "alice") { id user1Id user2Id } }`)
	byPair := data(t, res, "match")
	assert.Equal(t, "alice", byPair["user1Id"])
	assert.Equal(t, "bob", byPair["user2Id"])

	res = exec(t, schema, fmt.Sprintf(`query { matchById(id: %q) { id } }`, byPair["id"]))
	byID := data(t, res, "matchById")
	assert.Equal(t, byPair["id"], byID["id"])

	res = exec(t, schema, `query { match(user1Id: "alice", user2Id: "nobody") { id } }`)
	require.Empty(t, res.Errors)
	assert.Nil(t, res.Data.(map[string]interface{})["match"])
}

func TestUndoAndCanUseUndo(t *testing.T) {
	schema, gdb := setupSchema(t)
	seedPair(t, gdb)

	res := exec(t, schema, `mutation {
		createInteraction(fromUserId: "alice", toUserId: "bob", type: SKIP) { isMatch }
	}`)
	require.Empty(t, res.Errors)

	res = exec(t, schema, `query { canUseUndo(userId: "alice") { canUndo remaining isPremium } }`)
	status := data(t, res, "canUseUndo")
	assert.Equal(t, true, status["canUndo"])
	assert.Equal(t, 10, status["remaining"])

	res = exec(t, schema, `mutation {
		undoLastInteraction(userId: "alice") { remaining profile { userId name } }
	}`)
	undo := data(t, res, "undoLastInteraction")
	assert.Equal(t, 9, undo["remaining"])
	assert.Equal(t, "bob", undo["profile"].(map[string]interface{})["userId"])
}

func TestDiscoverQuery(t *testing.T) {
	schema, gdb := setupSchema(t)
	seedPair(t, gdb)

	res := exec(t, schema, `query {
		discover(userId: "alice", limit: 10) {
			total
			hasMore
			profiles { profile { userId } distance }
		}
	}`)
	feed := data(t, res, "discover")
	assert.Equal(t, false, feed["hasMore"])
	profiles := feed["profiles"].([]interface{})
	require.Len(t, profiles, 1)
	entry := profiles[0].(map[string]interface{})
	assert.Equal(t, "bob", entry["profile"].(map[string]interface{})["userId"])
	assert.Nil(t, entry["distance"])
}

func TestFindOrCreateUserAndProfileFlow(t *testing.T) {
	schema, gdb := setupSchema(t)

	res := exec(t, schema, `mutation {
		findOrCreateUser(input: {telegramId: "777000111", firstName: "Nora", username: "nora"}) {
			id telegramId firstName isPremium
		}
	}`)
	created := data(t, res, "findOrCreateUser")
	assert.Equal(t, "777000111", created["telegramId"])
	assert.Equal(t, "Nora", created["firstName"])
	userID := created["id"].(string)

	// empty profile row exists at first contact
	var p db.Profile
	require.NoError(t, gdb.Where("user_id = ?", userID).First(&p).Error)
	assert.False(t, p.OnboardingCompleted)

	res = exec(t, schema, fmt.Sprintf(`mutation {
		updateProfile(userId: %q, input: {name: "Nora", gender: "female", birthDate: "1996-04-02T00:00:00Z", minAge: 25, maxAge: 35}) {
			name gender minAge maxAge age
		}
	}`, userID))
	updated := data(t, res, "updateProfile")
	assert.Equal(t, "female", updated["gender"])
	assert.Equal(t, 25, updated["minAge"])

	res = exec(t, schema, fmt.Sprintf(`mutation {
		completeOnboarding(userId: %q) { onboardingCompleted }
	}`, userID))
	done := data(t, res, "completeOnboarding")
	assert.Equal(t, true, done["onboardingCompleted"])
}

func TestSendMessageFlow(t *testing.T) {
	schema, gdb := setupSchema(t)
	seedPair(t, gdb)

	for _, q := range []string{
		`mutation { createInteraction(fromUserId: "alice", toUserId: "bob", type: LIKE) { isMatch } }`,
		`mutation { createInteraction(fromUserId: "bob", toUserId: "alice", type: LIKE) { isMatch } }`,
	} {
		res := exec(t, schema, q)
		require.Empty(t, res.Errors)
	}

	var m db.Match
	require.NoError(t, gdb.First(&m).Error)

	res := exec(t, schema, fmt.Sprintf(`mutation {
		sendMessage(matchId: %q, senderId: "alice", content: "hi bob") { content senderId isRead }
	}`, m.ID))
	msg := data(t, res, "sendMessage")
	assert.Equal(t, "hi bob", msg["content"])

	res = exec(t, schema, fmt.Sprintf(`query {
		messagesByMatch(matchId: %q) { content }
		unreadMessagesCount(matchId: %q, userId: "bob")
	}`, m.ID, m.ID))
	require.Empty(t, res.Errors)
	root := res.Data.(map[string]interface{})
	assert.Len(t, root["messagesByMatch"].([]interface{}), 1)
	assert.Equal(t, 1, root["unreadMessagesCount"])

	res = exec(t, schema, fmt.Sprintf(`mutation {
		markMessagesAsRead(matchId: %q, userId: "bob")
	}`, m.ID))
	require.Empty(t, res.Errors)
	assert.Equal(t, true, res.Data.(map[string]interface{})["markMessagesAsRead"])
}
