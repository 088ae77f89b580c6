package db

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedDemoData wipes the tables and loads a small deterministic dataset for
// local development: five onboarded Moscow-area profiles with varied
// preferences, a pending super-like, and one already-matched pair.
func SeedDemoData(ctx context.Context, gdb *gorm.DB, log *slog.Logger) error {
	now := time.Now().UTC()

	for _, model := range []interface{}{&Message{}, &Match{}, &Interaction{}, &Profile{}, &User{}} {
		if err := gdb.WithContext(ctx).Where("1 = 1").Delete(model).Error; err != nil {
			return err
		}
	}

	type demo struct {
		id         string
		telegramID int64
		name       string
		birthYear  int
		gender     string
		lookingFor string
		city       string
		lat, lon   float64
		premium    bool
	}

	people := []demo{
		{"seed-anna", 9001, "Anna", 1997, GenderFemale, LookingForMale, "Moscow", 55.7558, 37.6173, false},
		{"seed-boris", 9002, "Boris", 1993, GenderMale, LookingForFemale, "Moscow", 55.7600, 37.6200, true},
		{"seed-clara", 9003, "Clara", 1999, GenderFemale, LookingForBoth, "Moscow", 55.7400, 37.6000, false},
		{"seed-dmitri", 9004, "Dmitri", 1990, GenderMale, LookingForFemale, "Zelenograd", 55.9825, 37.1814, false},
		{"seed-elena", 9005, "Elena", 1995, GenderFemale, LookingForMale, "Kazan", 55.7963, 49.1088, false},
	}

	for _, d := range people {
		u := &User{
			ID:           d.id,
			TelegramID:   d.telegramID,
			Username:     d.name,
			FirstName:    d.name,
			IsPremium:    d.premium,
			IsActive:     true,
			LastActiveAt: now,
		}
		if err := gdb.WithContext(ctx).Create(u).Error; err != nil {
			return err
		}

		birth := time.Date(d.birthYear, 5, 15, 0, 0, 0, 0, time.UTC)
		lat, lon := d.lat, d.lon
		p := &Profile{
			ID:                  uuid.NewString(),
			UserID:              d.id,
			Name:                d.name,
			Bio:                 "Demo profile for " + d.name,
			BirthDate:           &birth,
			Gender:              d.gender,
			LookingFor:          d.lookingFor,
			Purpose:             "dating",
			City:                d.city,
			Latitude:            &lat,
			Longitude:           &lon,
			Photos:              datatypes.JSONSlice[string]{"https://picsum.photos/seed/" + d.id + "/600/800"},
			Interests:           datatypes.JSONSlice[string]{"travel", "music"},
			MinAge:              18,
			MaxAge:              45,
			MaxDistance:         100,
			IsVisible:           true,
			OnboardingCompleted: true,
		}
		if err := gdb.WithContext(ctx).Create(p).Error; err != nil {
			return err
		}
	}

	interactions := []*Interaction{
		// mutual pair: anna <-> boris
		{
			ID: uuid.NewString(), FromUserID: "seed-anna", ToUserID: "seed-boris",
			Type: InteractionLike, LikeCount: 1,
			CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(22 * time.Hour),
		},
		{
			ID: uuid.NewString(), FromUserID: "seed-boris", ToUserID: "seed-anna",
			Type: InteractionLike, LikeCount: 1,
			CreatedAt: now.Add(-1 * time.Hour), ExpiresAt: now.Add(23 * time.Hour),
		},
		// pending super-like toward clara
		{
			ID: uuid.NewString(), FromUserID: "seed-dmitri", ToUserID: "seed-clara",
			Type: InteractionSuperLike, Message: "Your playlist looks great, coffee?",
			LikeCount: 1,
			CreatedAt: now.Add(-30 * time.Minute), ExpiresAt: now.Add(23*time.Hour + 30*time.Minute),
		},
	}
	for _, in := range interactions {
		if err := gdb.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(in).Error; err != nil {
			return err
		}
	}

	m := &Match{
		ID:            uuid.NewString(),
		User1ID:       "seed-anna",
		User2ID:       "seed-boris",
		IsActive:      true,
		User1Notified: true,
		User2Notified: true,
		HiddenUntil:   now.Add(48 * time.Hour),
	}
	if err := gdb.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}

	msg := &Message{
		ID:        uuid.NewString(),
		MatchID:   m.ID,
		SenderID:  "seed-anna",
		Content:   "Hey! Nice to match with you",
		CreatedAt: now.Add(-30 * time.Minute),
	}
	if err := gdb.WithContext(ctx).Create(msg).Error; err != nil {
		return err
	}

	log.Info("demo data seeded", "users", len(people), "interactions", len(interactions))
	return nil
}
