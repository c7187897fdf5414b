package service

import (
	"context"

	"hamrosewa/internal/domain"
	"hamrosewa/internal/models"

	"github.com/rs/zerolog"
)

// PreferenceService remembers contact details to pre-fill forms. Failures
// are logged and never block the visitor.
type PreferenceService struct {
	repo   domain.PreferenceRepository
	logger *zerolog.Logger
}

func NewPreferenceService(repo domain.PreferenceRepository, logger *zerolog.Logger) *PreferenceService {
	return &PreferenceService{
		repo:   repo,
		logger: logger,
	}
}

// Get returns the stored preferences, or empty ones.
func (s *PreferenceService) Get(ctx context.Context, visitorID string) models.Preferences {
	prefs, err := s.repo.GetPreferences(ctx, visitorID)
	if err != nil {
		s.logger.Error().Err(err).Str("visitor_id", visitorID).Msg("failed to get preferences")
		return models.Preferences{}
	}
	if prefs == nil {
		return models.Preferences{}
	}
	return *prefs
}

// Update merges the non-empty fields of update into the stored preferences.
func (s *PreferenceService) Update(ctx context.Context, visitorID string, update models.Preferences) (models.Preferences, error) {
	merged := s.Get(ctx, visitorID).Merge(update)
	if err := s.repo.SetPreferences(ctx, visitorID, &merged); err != nil {
		s.logger.Error().Err(err).Str("visitor_id", visitorID).Msg("failed to set preferences")
		return merged, err
	}
	return merged, nil
}

// ContactPrefill builds the booking form defaults.
func (s *PreferenceService) ContactPrefill(ctx context.Context, visitorID string) models.ContactDetails {
	prefs := s.Get(ctx, visitorID)
	return models.ContactDetails{
		Name:    prefs.Name,
		Email:   prefs.Email,
		Phone:   prefs.Phone,
		Address: prefs.Location,
	}
}

// RememberContact keeps the details of a confirmed booking for next time.
func (s *PreferenceService) RememberContact(ctx context.Context, visitorID string, details models.ContactDetails) {
	_, _ = s.Update(ctx, visitorID, models.Preferences{
		Name:  details.Name,
		Email: details.Email,
		Phone: details.Phone,
	})
}
