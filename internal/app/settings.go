package app

import (
	"context"

	"github.com/xavion03/openings-tierlist/internal/domain"
	"github.com/xavion03/openings-tierlist/internal/ports"
)

type SettingsService struct {
	repo ports.SettingsRepository
}

func NewSettingsService(repo ports.SettingsRepository) *SettingsService {
	return &SettingsService{repo: repo}
}

func (s *SettingsService) Get(ctx context.Context) (domain.Settings, error) {
	return s.repo.Get(ctx)
}

func (s *SettingsService) Put(ctx context.Context, settings domain.Settings) (domain.Settings, error) {
	// Validation légère V1.
	def := domain.DefaultSettings()
	if settings.PageSize <= 0 {
		settings.PageSize = def.PageSize
	}
	if settings.EnrichDelayMs < 0 {
		settings.EnrichDelayMs = def.EnrichDelayMs
	}
	if settings.ImageDelayMs < 0 {
		settings.ImageDelayMs = def.ImageDelayMs
	}
	return s.repo.Put(ctx, settings)
}
