package db

import (
	"time"

	"gorm.io/datatypes"
)

// User is the account record, keyed to the Telegram identity the client
// authenticates with. Exactly one Profile exists per User.
type User struct {
	ID           string `gorm:"primaryKey;size:36"`
	TelegramID   int64  `gorm:"uniqueIndex;not null"`
	Username     string `gorm:"size:64"`
	FirstName    string `gorm:"size:64;not null"`
	LastName     string `gorm:"size:64"`
	LanguageCode string `gorm:"size:8;default:en"`
	IsPremium    bool   `gorm:"default:false"`
	IsBot        bool   `gorm:"default:false"`
	IsActive     bool   `gorm:"default:true"`
	LastActiveAt time.Time
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// Gender / looking-for / purpose enum values. Stored as strings; empty means
// unset, which discovery treats as permissive.
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"

	LookingForMale   = "male"
	LookingForFemale = "female"
	LookingForBoth   = "both"
)

// Profile holds everything discovery filters on. Created empty at first
// contact and populated during onboarding; gender is immutable once
// OnboardingCompleted is set.
type Profile struct {
	ID     string `gorm:"primaryKey;size:36"`
	UserID string `gorm:"uniqueIndex;size:36;not null"`

	Name      string `gorm:"size:64"`
	Bio       string `gorm:"size:1024"`
	BirthDate *time.Time

	Gender     string `gorm:"size:16"`
	LookingFor string `gorm:"size:16"`
	Purpose    string `gorm:"size:16"`

	City        string `gorm:"size:128"`
	Latitude    *float64
	Longitude   *float64
	AnyLocation bool `gorm:"default:false"`

	Photos    datatypes.JSONSlice[string]
	Interests datatypes.JSONSlice[string]

	MinAge      int `gorm:"default:18"`
	MaxAge      int `gorm:"default:100"`
	MaxDistance int `gorm:"default:50"` // km

	IsVisible           bool `gorm:"default:true"`
	OnboardingCompleted bool `gorm:"default:false"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// Interaction type values.
const (
	InteractionLike      = "like"
	InteractionSuperLike = "super_like"
	InteractionSkip      = "skip"
)

// Interaction is a directional action from one user toward another.
//
// Unique index on (from_user_id, to_user_id): repeat actions upsert the row
// instead of inserting a duplicate. ExpiresAt is the cooldown end; while it
// is in the future the target stays out of the actor's feed and repeat
// actions are rejected.
type Interaction struct {
	ID         string `gorm:"primaryKey;size:36"`
	FromUserID string `gorm:"size:36;not null;uniqueIndex:idx_interactions_from_to,priority:1"`
	ToUserID   string `gorm:"size:36;not null;uniqueIndex:idx_interactions_from_to,priority:2;index:idx_interactions_to_user"`
	Type       string `gorm:"size:16;not null"`
	Message    string `gorm:"size:1024"` // super_like only
	IsRead     bool   `gorm:"default:false"`
	LikeCount  int    `gorm:"not null;default:1"` // times liked without reciprocation
	CreatedAt  time.Time
	ExpiresAt  time.Time `gorm:"not null;index:idx_interactions_expires_at"`
}

// Match is the undirected pairing created on mutual like. User1ID always
// sorts below User2ID, so (A,B) and (B,A) land on the same row and the unique
// index turns concurrent creation from both sides into a single upsert.
// Unmatch flips IsActive; rows are never hard-deleted.
type Match struct {
	ID            string `gorm:"primaryKey;size:36"`
	User1ID       string `gorm:"size:36;not null;uniqueIndex:idx_matches_pair,priority:1"`
	User2ID       string `gorm:"size:36;not null;uniqueIndex:idx_matches_pair,priority:2"`
	IsActive      bool   `gorm:"default:true"`
	User1Notified bool   `gorm:"default:false"`
	User2Notified bool   `gorm:"default:false"`
	HiddenUntil   time.Time `gorm:"not null"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

// Message belongs to exactly one Match; the sender must be one of the
// match's two users (enforced by the message service).
type Message struct {
	ID        string `gorm:"primaryKey;size:36"`
	MatchID   string `gorm:"size:36;not null;index:idx_messages_match"`
	SenderID  string `gorm:"size:36;not null"`
	Content   string `gorm:"size:4096;not null"`
	IsRead    bool   `gorm:"default:false"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}
