package graph

import (
	"time"

	"github.com/graphql-go/graphql"

	"github.com/amora-app/amora-server/internal/db"
	"github.com/amora-app/amora-server/internal/utils/agecalc"
)

// Output types. Field resolution relies on the default resolver matching
// exported struct fields case-insensitively; only computed fields get
// explicit resolvers.

var interactionTypeEnum = graphql.NewEnum(graphql.EnumConfig{
	Name: "InteractionType",
	Values: graphql.EnumValueConfigMap{
		"LIKE":       &graphql.EnumValueConfig{Value: db.InteractionLike},
		"SUPER_LIKE": &graphql.EnumValueConfig{Value: db.InteractionSuperLike},
		"SKIP":       &graphql.EnumValueConfig{Value: db.InteractionSkip},
	},
})

var userType = graphql.NewObject(graphql.ObjectConfig{
	Name: "User",
	Fields: graphql.Fields{
		"id":           &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"telegramId":   &graphql.Field{Type: graphql.NewNonNull(graphql.String), Resolve: resolveTelegramID},
		"username":     &graphql.Field{Type: graphql.String},
		"firstName":    &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"lastName":     &graphql.Field{Type: graphql.String},
		"languageCode": &graphql.Field{Type: graphql.String},
		"isPremium":    &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"isActive":     &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"lastActiveAt": &graphql.Field{Type: graphql.DateTime},
		"createdAt":    &graphql.Field{Type: graphql.DateTime},
	},
})

// telegram ids exceed what 32-bit GraphQL Int can carry, so they travel as
// strings
func resolveTelegramID(p graphql.ResolveParams) (interface{}, error) {
	u, ok := p.Source.(*db.User)
	if !ok {
		return nil, nil
	}
	return formatInt64(u.TelegramID), nil
}

var profileType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Profile",
	Fields: graphql.Fields{
		"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"userId":      &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"name":        &graphql.Field{Type: graphql.String},
		"bio":         &graphql.Field{Type: graphql.String},
		"birthDate":   &graphql.Field{Type: graphql.DateTime},
		"age":         &graphql.Field{Type: graphql.Int, Resolve: resolveAge},
		"gender":      &graphql.Field{Type: graphql.String},
		"lookingFor":  &graphql.Field{Type: graphql.String},
		"purpose":     &graphql.Field{Type: graphql.String},
		"city":        &graphql.Field{Type: graphql.String},
		"latitude":    &graphql.Field{Type: graphql.Float},
		"longitude":   &graphql.Field{Type: graphql.Float},
		"anyLocation": &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"photos":      &graphql.Field{Type: graphql.NewList(graphql.String)},
		"interests":   &graphql.Field{Type: graphql.NewList(graphql.String)},
		"minAge":      &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"maxAge":      &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"maxDistance": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"isVisible":   &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"onboardingCompleted": &graphql.Field{
			Type: graphql.NewNonNull(graphql.Boolean),
		},
		"createdAt": &graphql.Field{Type: graphql.DateTime},
	},
})

func resolveAge(p graphql.ResolveParams) (interface{}, error) {
	var birth *time.Time
	switch src := p.Source.(type) {
	case *db.Profile:
		birth = src.BirthDate
	case db.Profile:
		birth = src.BirthDate
	}
	if birth == nil {
		return nil, nil
	}
	return agecalc.Age(*birth, time.Now()), nil
}

var interactionType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Interaction",
	Fields: graphql.Fields{
		"id":         &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"fromUserId": &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"toUserId":   &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"type":       &graphql.Field{Type: graphql.NewNonNull(interactionTypeEnum)},
		"message":    &graphql.Field{Type: graphql.String},
		"isRead":     &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"likeCount":  &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"createdAt":  &graphql.Field{Type: graphql.DateTime},
		"expiresAt":  &graphql.Field{Type: graphql.DateTime},
	},
})

var matchType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Match",
	Fields: graphql.Fields{
		"id":            &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"user1Id":       &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"user2Id":       &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"isActive":      &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"user1Notified": &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"user2Notified": &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"hiddenUntil":   &graphql.Field{Type: graphql.DateTime},
		"createdAt":     &graphql.Field{Type: graphql.DateTime},
	},
})

var messageType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Message",
	Fields: graphql.Fields{
		"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"matchId":   &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"senderId":  &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"content":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"isRead":    &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"createdAt": &graphql.Field{Type: graphql.DateTime},
	},
})

var discoveredProfileType = graphql.NewObject(graphql.ObjectConfig{
	Name: "DiscoveredProfile",
	Fields: graphql.Fields{
		"profile":  &graphql.Field{Type: graphql.NewNonNull(profileType)},
		"distance": &graphql.Field{Type: graphql.Float}, // km
	},
})

var discoverResultType = graphql.NewObject(graphql.ObjectConfig{
	Name: "DiscoverResult",
	Fields: graphql.Fields{
		"profiles": &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(discoveredProfileType))},
		"total":    &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"hasMore":  &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
	},
})

var likeReceivedType = graphql.NewObject(graphql.ObjectConfig{
	Name: "LikeReceived",
	Fields: graphql.Fields{
		"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"fromProfile": &graphql.Field{Type: graphql.NewNonNull(profileType)},
		"likeCount":   &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"createdAt":   &graphql.Field{Type: graphql.DateTime},
	},
})

var superLikeReceivedType = graphql.NewObject(graphql.ObjectConfig{
	Name: "SuperLikeReceived",
	Fields: graphql.Fields{
		"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"fromProfile": &graphql.Field{Type: graphql.NewNonNull(profileType)},
		"message":     &graphql.Field{Type: graphql.String},
		"isRead":      &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"createdAt":   &graphql.Field{Type: graphql.DateTime},
	},
})

var createInteractionResultType = graphql.NewObject(graphql.ObjectConfig{
	Name: "CreateInteractionResult",
	Fields: graphql.Fields{
		"interaction": &graphql.Field{Type: graphql.NewNonNull(interactionType)},
		"isMatch":     &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"match":       &graphql.Field{Type: matchType},
	},
})

var undoResultType = graphql.NewObject(graphql.ObjectConfig{
	Name: "UndoResult",
	Fields: graphql.Fields{
		"profile":   &graphql.Field{Type: profileType},
		"remaining": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
	},
})

var canUndoType = graphql.NewObject(graphql.ObjectConfig{
	Name: "CanUndoResult",
	Fields: graphql.Fields{
		"canUndo":   &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"remaining": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"isPremium": &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
	},
})

// Input types.

var telegramUserInputType = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "TelegramUserInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"telegramId":   &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"username":     &graphql.InputObjectFieldConfig{Type: graphql.String},
		"firstName":    &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"lastName":     &graphql.InputObjectFieldConfig{Type: graphql.String},
		"languageCode": &graphql.InputObjectFieldConfig{Type: graphql.String},
		"isPremium":    &graphql.InputObjectFieldConfig{Type: graphql.Boolean},
	},
})

var updateProfileInputType = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "UpdateProfileInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"name":        &graphql.InputObjectFieldConfig{Type: graphql.String},
		"bio":         &graphql.InputObjectFieldConfig{Type: graphql.String},
		"birthDate":   &graphql.InputObjectFieldConfig{Type: graphql.DateTime},
		"gender":      &graphql.InputObjectFieldConfig{Type: graphql.String},
		"lookingFor":  &graphql.InputObjectFieldConfig{Type: graphql.String},
		"purpose":     &graphql.InputObjectFieldConfig{Type: graphql.String},
		"city":        &graphql.InputObjectFieldConfig{Type: graphql.String},
		"latitude":    &graphql.InputObjectFieldConfig{Type: graphql.Float},
		"longitude":   &graphql.InputObjectFieldConfig{Type: graphql.Float},
		"anyLocation": &graphql.InputObjectFieldConfig{Type: graphql.Boolean},
		"interests":   &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.String)},
		"minAge":      &graphql.InputObjectFieldConfig{Type: graphql.Int},
		"maxAge":      &graphql.InputObjectFieldConfig{Type: graphql.Int},
		"maxDistance": &graphql.InputObjectFieldConfig{Type: graphql.Int},
		"isVisible":   &graphql.InputObjectFieldConfig{Type: graphql.Boolean},
	},
})
