package service

import (
	"context"
	"fmt"

	"boxoffice/internal/database"
	apperrors "boxoffice/internal/errors"
	"boxoffice/internal/models"
)

type SettingsService struct {
	settings SettingsStore
}

func NewSettingsService(settings SettingsStore) *SettingsService {
	return &SettingsService{settings: settings}
}

// Get returns the current settings, the seeded default when the row is missing
func (s *SettingsService) Get(ctx context.Context) (*models.Settings, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	if settings == nil {
		return &models.Settings{ID: 1, TicketPrice: database.DefaultTicketPrice}, nil
	}
	return settings, nil
}

// UpdateTicketPrice affects only sales committed after the change
func (s *SettingsService) UpdateTicketPrice(ctx context.Context, price int64) (*models.Settings, error) {
	if price < 0 {
		return nil, fmt.Errorf("%w: ticket_price must be >= 0", apperrors.ErrInvalidInput)
	}

	settings, err := s.settings.UpdateTicketPrice(ctx, price)
	if err != nil {
		return nil, fmt.Errorf("failed to update settings: %w", err)
	}
	return settings, nil
}
