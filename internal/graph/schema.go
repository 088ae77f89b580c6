// Package graph exposes the application over GraphQL: type definitions, the
// root query/mutation objects, and the resolver glue onto the services. The
// one piece of orchestration that lives here rather than in a service is the
// createInteraction flow, which chains the ledger write, mutual-like check,
// and match creation.
package graph

import (
	"strconv"

	"github.com/graphql-go/graphql"

	"github.com/amora-app/amora-server/internal/app"
	"github.com/amora-app/amora-server/internal/apperr"
	"github.com/amora-app/amora-server/internal/db"
	"github.com/amora-app/amora-server/internal/service/discovery"
	"github.com/amora-app/amora-server/internal/service/interaction"
	"github.com/amora-app/amora-server/internal/service/match"
	"github.com/amora-app/amora-server/internal/service/message"
	"github.com/amora-app/amora-server/internal/service/profile"
	"github.com/amora-app/amora-server/internal/service/user"
)

// Resolver bundles the services the GraphQL fields delegate to.
type Resolver struct {
	appCtx       *app.AppContext
	Discovery    *discovery.Service
	Interactions *interaction.Service
	Matches      *match.Service
	Messages     *message.Service
	Profiles     *profile.Service
	Users        *user.Service
}

func NewResolver(appCtx *app.AppContext, d *discovery.Service, i *interaction.Service,
	m *match.Service, msg *message.Service, p *profile.Service, u *user.Service) *Resolver {
	return &Resolver{
		appCtx:       appCtx,
		Discovery:    d,
		Interactions: i,
		Matches:      m,
		Messages:     msg,
		Profiles:     p,
		Users:        u,
	}
}

// CreateInteractionResult is the createInteraction payload: the stored
// interaction plus whether it completed a match.
type CreateInteractionResult struct {
	Interaction db.Interaction
	IsMatch     bool
	Match       *db.Match
}

// NewSchema builds the executable schema.
func NewSchema(r *Resolver) (graphql.Schema, error) {
	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    r.queryType(),
		Mutation: r.mutationType(),
	})
}

func (r *Resolver) queryType() *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"discover": &graphql.Field{
				Type: graphql.NewNonNull(discoverResultType),
				Args: graphql.FieldConfigArgument{
					"userId":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"limit":      &graphql.ArgumentConfig{Type: graphql.Int},
					"offset":     &graphql.ArgumentConfig{Type: graphql.Int},
					"excludeIds": &graphql.ArgumentConfig{Type: graphql.NewList(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					res, err := r.Discovery.Discover(p.Context, argString(p, "userId"),
						argInt(p, "limit", 0), argInt(p, "offset", 0), argStringList(p, "excludeIds"))
					if err != nil {
						return nil, apperr.Map(err)
					}
					return res, nil
				},
			},
			"discoveryCount": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Args: graphql.FieldConfigArgument{
					"userId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					n, err := r.Discovery.Count(p.Context, argString(p, "userId"))
					if err != nil {
						return nil, apperr.Map(err)
					}
					return n, nil
				},
			},
			"canUseUndo": &graphql.Field{
				Type: graphql.NewNonNull(canUndoType),
				Args: graphql.FieldConfigArgument{
					"userId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.Interactions.CanUndo(p.Context, argString(p, "userId"))
				},
			},
			"checkMutualLike": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Boolean),
				Args: graphql.FieldConfigArgument{
					"userId1": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"userId2": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.Interactions.IsMutual(p.Context, argString(p, "userId1"), argString(p, "userId2"))
				},
			},
			"likesReceived": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(likeReceivedType)),
				Args: graphql.FieldConfigArgument{
					"userId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.Interactions.LikesReceived(p.Context, argString(p, "userId"))
				},
			},
			"superLikesReceived": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(superLikeReceivedType)),
				Args: graphql.FieldConfigArgument{
					"userId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.Interactions.SuperLikesReceived(p.Context, argString(p, "userId"))
				},
			},
			"unreadSuperLikesCount": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Args: graphql.FieldConfigArgument{
					"userId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.Interactions.UnreadSuperLikeCount(p.Context, argString(p, "userId"))
				},
			},
			"matchesByUser": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(matchType)),
				Args: graphql.FieldConfigArgument{
					"userId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.Matches.ByUser(p.Context, argString(p, "userId"))
				},
			},
			"match": &graphql.Field{
				Type: matchType,
				Args: graphql.FieldConfigArgument{
					"user1Id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"user2Id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.Matches.Find(p.Context, argString(p, "user1Id"), argString(p, "user2Id"))
				},
			},
			"matchById": &graphql.Field{
				Type: matchType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.Matches.Get(p.Context, argString(p, "id"))
				},
			},
			"profile": &graphql.Field{
				Type: profileType,
				Args: graphql.FieldConfigArgument{
					"userId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.Profiles.GetByUser(p.Context, argString(p, "userId"))
				},
			},
			"messagesByMatch": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(messageType)),
				Args: graphql.FieldConfigArgument{
					"matchId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.Messages.List(p.Context, argString(p, "matchId"))
				},
			},
			"unreadMessagesCount": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Args: graphql.FieldConfigArgument{
					"matchId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"userId":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.Messages.UnreadCount(p.Context, argString(p, "matchId"), argString(p, "userId"))
				},
			},
		},
	})
}

func (r *Resolver) mutationType() *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createInteraction": &graphql.Field{
				Type: graphql.NewNonNull(createInteractionResultType),
				Args: graphql.FieldConfigArgument{
					"fromUserId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"toUserId":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"type":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(interactionTypeEnum)},
					"message":    &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: r.createInteraction,
			},
			"undoLastInteraction": &graphql.Field{
				Type: graphql.NewNonNull(undoResultType),
				Args: graphql.FieldConfigArgument{
					"userId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.Interactions.Undo(p.Context, argString(p, "userId"))
				},
			},
			"unmatch": &graphql.Field{
				Type: graphql.NewNonNull(matchType),
				Args: graphql.FieldConfigArgument{
					"matchId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.Matches.Unmatch(p.Context, argString(p, "matchId"))
				},
			},
			"markSuperLikeAsRead": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Boolean),
				Args: graphql.FieldConfigArgument{
					"interactionId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.Interactions.MarkSuperLikeRead(p.Context, argString(p, "interactionId"))
				},
			},
			"findOrCreateUser": &graphql.Field{
				Type: graphql.NewNonNull(userType),
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(telegramUserInputType)},
				},
				Resolve: r.findOrCreateUser,
			},
			"updateProfile": &graphql.Field{
				Type: graphql.NewNonNull(profileType),
				Args: graphql.FieldConfigArgument{
					"userId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"input":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(updateProfileInputType)},
				},
				Resolve: r.updateProfile,
			},
			"completeOnboarding": &graphql.Field{
				Type: graphql.NewNonNull(profileType),
				Args: graphql.FieldConfigArgument{
					"userId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.Profiles.CompleteOnboarding(p.Context, argString(p, "userId"))
				},
			},
			"addPhoto": &graphql.Field{
				Type: graphql.NewNonNull(profileType),
				Args: graphql.FieldConfigArgument{
					"userId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"url":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.Profiles.AddPhoto(p.Context, argString(p, "userId"), argString(p, "url"))
				},
			},
			"removePhoto": &graphql.Field{
				Type: graphql.NewNonNull(profileType),
				Args: graphql.FieldConfigArgument{
					"userId":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"position": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.Profiles.RemovePhoto(p.Context, argString(p, "userId"), argInt(p, "position", -1))
				},
			},
			"reorderPhotos": &graphql.Field{
				Type: graphql.NewNonNull(profileType),
				Args: graphql.FieldConfigArgument{
					"userId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"from":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"to":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.Profiles.ReorderPhotos(p.Context, argString(p, "userId"),
						argInt(p, "from", -1), argInt(p, "to", -1))
				},
			},
			"setProfileVisibility": &graphql.Field{
				Type: graphql.NewNonNull(profileType),
				Args: graphql.FieldConfigArgument{
					"userId":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"isVisible": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Boolean)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.Profiles.SetVisibility(p.Context, argString(p, "userId"), argBool(p, "isVisible", true))
				},
			},
			"sendMessage": &graphql.Field{
				Type: graphql.NewNonNull(messageType),
				Args: graphql.FieldConfigArgument{
					"matchId":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"senderId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"content":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.Messages.Send(p.Context, argString(p, "matchId"),
						argString(p, "senderId"), argString(p, "content"))
				},
			},
			"markMessagesAsRead": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Boolean),
				Args: graphql.FieldConfigArgument{
					"matchId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"userId":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if err := r.Messages.MarkRead(p.Context, argString(p, "matchId"), argString(p, "userId")); err != nil {
						return false, err
					}
					return true, nil
				},
			},
		},
	})
}

// createInteraction records the action and, on a mutual like, creates or
// reactivates the match and resets both accumulation counters. A pair with an
// already-active match skips creation and reports the existing match.
func (r *Resolver) createInteraction(p graphql.ResolveParams) (interface{}, error) {
	from := argString(p, "fromUserId")
	to := argString(p, "toUserId")
	interactionType := argString(p, "type")

	in, err := r.Interactions.Record(p.Context, from, to, interactionType, argString(p, "message"))
	if err != nil {
		return nil, err
	}
	out := &CreateInteractionResult{Interaction: *in}

	if interactionType == db.InteractionSkip {
		return out, nil
	}

	mutual, err := r.Interactions.IsMutual(p.Context, from, to)
	if err != nil {
		return nil, err
	}
	if !mutual {
		return out, nil
	}

	existing, err := r.Matches.Find(p.Context, from, to)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.IsActive {
		out.IsMatch = true
		out.Match = existing
		return out, nil
	}

	m, err := r.Matches.CreateOrReactivate(p.Context, from, to)
	if err != nil {
		return nil, err
	}
	if err := r.Interactions.ResetLikeCounts(p.Context, from, to); err != nil {
		return nil, err
	}

	out.IsMatch = true
	out.Match = m
	return out, nil
}

func (r *Resolver) findOrCreateUser(p graphql.ResolveParams) (interface{}, error) {
	input, _ := p.Args["input"].(map[string]interface{})
	if input == nil {
		return nil, apperr.Validation("input is required")
	}

	telegramID, err := parseInt64(inputString(input, "telegramId"))
	if err != nil {
		return nil, apperr.Validation("telegramId must be numeric")
	}

	return r.Users.FindOrCreate(p.Context, user.TelegramIdentity{
		TelegramID:   telegramID,
		Username:     inputString(input, "username"),
		FirstName:    inputString(input, "firstName"),
		LastName:     inputString(input, "lastName"),
		LanguageCode: inputString(input, "languageCode"),
		IsPremium:    inputBool(input, "isPremium"),
	})
}

func (r *Resolver) updateProfile(p graphql.ResolveParams) (interface{}, error) {
	input, _ := p.Args["input"].(map[string]interface{})
	if input == nil {
		return nil, apperr.Validation("input is required")
	}

	in := profile.UpdateInput{
		Name:        inputStringPtr(input, "name"),
		Bio:         inputStringPtr(input, "bio"),
		BirthDate:   inputTimePtr(input, "birthDate"),
		Gender:      inputStringPtr(input, "gender"),
		LookingFor:  inputStringPtr(input, "lookingFor"),
		Purpose:     inputStringPtr(input, "purpose"),
		City:        inputStringPtr(input, "city"),
		Latitude:    inputFloatPtr(input, "latitude"),
		Longitude:   inputFloatPtr(input, "longitude"),
		AnyLocation: inputBoolPtr(input, "anyLocation"),
		Interests:   inputStringList(input, "interests"),
		MinAge:      inputIntPtr(input, "minAge"),
		MaxAge:      inputIntPtr(input, "maxAge"),
		MaxDistance: inputIntPtr(input, "maxDistance"),
		IsVisible:   inputBoolPtr(input, "isVisible"),
	}

	return r.Profiles.Update(p.Context, argString(p, "userId"), in)
}

func formatInt64(n int64) string { return strconv.FormatInt(n, 10) }

func parseInt64(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) }
