// Package profile manages profile reads and writes outside the discovery
// path: incremental onboarding, ordered photo lists, visibility, and the
// gender-immutability rule.
package profile

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/amora-app/amora-server/internal/app"
	"github.com/amora-app/amora-server/internal/apperr"
	"github.com/amora-app/amora-server/internal/db"
	"github.com/amora-app/amora-server/internal/geocode"
	"github.com/amora-app/amora-server/internal/repository"
)

// MaxPhotos caps the ordered photo list.
const MaxPhotos = 6

type Service struct {
	appCtx      *app.AppContext
	profileRepo *repository.ProfileRepository
	geocoder    geocode.Reverser
	validate    *validator.Validate
}

func NewService(appCtx *app.AppContext, geocoder geocode.Reverser) *Service {
	return &Service{
		appCtx:      appCtx,
		profileRepo: repository.NewProfileRepository(appCtx.DB),
		geocoder:    geocoder,
		validate:    validator.New(),
	}
}

// GetByUser returns a user's profile, nil when absent.
func (s *Service) GetByUser(ctx context.Context, userID string) (*db.Profile, error) {
	p, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperr.Map(err)
	}
	return p, nil
}

// UpdateInput carries the mutable profile fields; nil means "leave as is".
type UpdateInput struct {
	Name        *string  `validate:"omitempty,min=1,max=64"`
	Bio         *string  `validate:"omitempty,max=1024"`
	BirthDate   *time.Time
	Gender      *string  `validate:"omitempty,oneof=male female other"`
	LookingFor  *string  `validate:"omitempty,oneof=male female both"`
	Purpose     *string  `validate:"omitempty,oneof=dating relationship friendship chatting adult"`
	City        *string  `validate:"omitempty,max=128"`
	Latitude    *float64 `validate:"omitempty,gte=-90,lte=90"`
	Longitude   *float64 `validate:"omitempty,gte=-180,lte=180"`
	AnyLocation *bool
	Interests   []string `validate:"omitempty,max=20,dive,min=1,max=32"`
	MinAge      *int     `validate:"omitempty,gte=18,lte=100"`
	MaxAge      *int     `validate:"omitempty,gte=18,lte=100"`
	MaxDistance *int     `validate:"omitempty,gte=1,lte=20000"`
	IsVisible   *bool
}

// Update applies partial changes. Gender is rejected once onboarding is
// complete, and the resulting age range must stay ordered.
func (s *Service) Update(ctx context.Context, userID string, in UpdateInput) (*db.Profile, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, apperr.Validation("invalid profile input: %v", err)
	}

	p, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperr.Map(err)
	}
	if p == nil {
		return nil, apperr.NotFound("profile not found")
	}

	if in.Gender != nil && p.OnboardingCompleted && *in.Gender != p.Gender {
		return nil, apperr.Validation("gender cannot be changed after onboarding")
	}

	minAge, maxAge := p.MinAge, p.MaxAge
	if in.MinAge != nil {
		minAge = *in.MinAge
	}
	if in.MaxAge != nil {
		maxAge = *in.MaxAge
	}
	if minAge > maxAge {
		return nil, apperr.Validation("minAge must not exceed maxAge")
	}

	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Bio != nil {
		p.Bio = *in.Bio
	}
	if in.BirthDate != nil {
		p.BirthDate = in.BirthDate
	}
	if in.Gender != nil {
		p.Gender = *in.Gender
	}
	if in.LookingFor != nil {
		p.LookingFor = *in.LookingFor
	}
	if in.Purpose != nil {
		p.Purpose = *in.Purpose
	}
	if in.City != nil {
		p.City = *in.City
	}
	if in.Latitude != nil {
		p.Latitude = in.Latitude
	}
	if in.Longitude != nil {
		p.Longitude = in.Longitude
	}
	if in.AnyLocation != nil {
		p.AnyLocation = *in.AnyLocation
	}
	if in.Interests != nil {
		p.Interests = datatypes.JSONSlice[string](in.Interests)
	}
	p.MinAge = minAge
	p.MaxAge = maxAge
	if in.MaxDistance != nil {
		p.MaxDistance = *in.MaxDistance
	}
	if in.IsVisible != nil {
		p.IsVisible = *in.IsVisible
	}

	if err := s.profileRepo.Save(ctx, p); err != nil {
		return nil, apperr.Map(err)
	}
	return p, nil
}

// CompleteOnboarding marks the profile complete. Name, birth date, and
// gender must be present by then. If coordinates exist but no city, the city
// is reverse-geocoded; a failed lookup leaves it unset and does not fail the
// step.
func (s *Service) CompleteOnboarding(ctx context.Context, userID string) (*db.Profile, error) {
	p, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperr.Map(err)
	}
	if p == nil {
		return nil, apperr.NotFound("profile not found")
	}
	if p.Name == "" || p.BirthDate == nil || p.Gender == "" {
		return nil, apperr.Validation("name, birth date, and gender are required to complete onboarding")
	}

	if p.City == "" && p.Latitude != nil && p.Longitude != nil && s.geocoder != nil {
		city, err := s.geocoder.ReverseCity(ctx, *p.Latitude, *p.Longitude)
		if err != nil {
			s.appCtx.Logger.Warn("reverse geocode failed, leaving city unset", "user", userID, "err", err)
		} else {
			p.City = city
		}
	}

	p.OnboardingCompleted = true
	if err := s.profileRepo.Save(ctx, p); err != nil {
		return nil, apperr.Map(err)
	}

	s.appCtx.Logger.Info("onboarding completed", "user", userID)
	return p, nil
}

// AddPhoto appends a photo URL to the ordered list.
func (s *Service) AddPhoto(ctx context.Context, userID, url string) (*db.Profile, error) {
	if url == "" {
		return nil, apperr.Validation("photo url must not be empty")
	}
	p, err := s.mustGet(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(p.Photos) >= MaxPhotos {
		return nil, apperr.Validation("photo limit of %d reached", MaxPhotos)
	}
	p.Photos = append(p.Photos, url)
	if err := s.profileRepo.Save(ctx, p); err != nil {
		return nil, apperr.Map(err)
	}
	return p, nil
}

// RemovePhoto deletes the photo at position, preserving order.
func (s *Service) RemovePhoto(ctx context.Context, userID string, position int) (*db.Profile, error) {
	p, err := s.mustGet(ctx, userID)
	if err != nil {
		return nil, err
	}
	if position < 0 || position >= len(p.Photos) {
		return nil, apperr.Validation("invalid photo position %d", position)
	}
	p.Photos = append(p.Photos[:position], p.Photos[position+1:]...)
	if err := s.profileRepo.Save(ctx, p); err != nil {
		return nil, apperr.Map(err)
	}
	return p, nil
}

// ReorderPhotos moves the photo at from to position to.
func (s *Service) ReorderPhotos(ctx context.Context, userID string, from, to int) (*db.Profile, error) {
	p, err := s.mustGet(ctx, userID)
	if err != nil {
		return nil, err
	}
	n := len(p.Photos)
	if from < 0 || from >= n || to < 0 || to >= n {
		return nil, apperr.Validation("invalid photo position")
	}
	photo := p.Photos[from]
	rest := append(append([]string{}, p.Photos[:from]...), p.Photos[from+1:]...)
	reordered := append(append(append([]string{}, rest[:to]...), photo), rest[to:]...)
	p.Photos = datatypes.JSONSlice[string](reordered)
	if err := s.profileRepo.Save(ctx, p); err != nil {
		return nil, apperr.Map(err)
	}
	return p, nil
}

// SetVisibility toggles whether the profile appears in discovery.
func (s *Service) SetVisibility(ctx context.Context, userID string, visible bool) (*db.Profile, error) {
	p, err := s.mustGet(ctx, userID)
	if err != nil {
		return nil, err
	}
	p.IsVisible = visible
	if err := s.profileRepo.Save(ctx, p); err != nil {
		return nil, apperr.Map(err)
	}
	return p, nil
}

// EnsureExists creates the empty profile row at first contact.
func (s *Service) EnsureExists(ctx context.Context, userID string) (*db.Profile, error) {
	p, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperr.Map(err)
	}
	if p != nil {
		return p, nil
	}
	p = &db.Profile{
		ID:          uuid.NewString(),
		UserID:      userID,
		MinAge:      18,
		MaxAge:      100,
		MaxDistance: 50,
		IsVisible:   true,
	}
	if err := s.profileRepo.Create(ctx, p); err != nil {
		return nil, apperr.Map(err)
	}
	return p, nil
}

func (s *Service) mustGet(ctx context.Context, userID string) (*db.Profile, error) {
	p, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperr.Map(err)
	}
	if p == nil {
		return nil, apperr.NotFound("profile not found")
	}
	return p, nil
}
