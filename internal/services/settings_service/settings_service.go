package services

import (
	"context"
	"fmt"
	"log/slog"

	"portfolio_gallery/internal/domain/models"
	"portfolio_gallery/internal/domain/schema"
	"portfolio_gallery/internal/lib/logger/sl"
	"portfolio_gallery/internal/repository"
)

const (
	DefaultChunkSize = 50
	MaxChunkSize     = 500
)

type SettingsService struct {
	log              *slog.Logger
	store            repository.SettingsStore
	defaultChunkSize int
}

func NewSettingsService(log *slog.Logger, store repository.SettingsStore, defaultChunkSize int) *SettingsService {
	if defaultChunkSize <= 0 || defaultChunkSize > MaxChunkSize {
		defaultChunkSize = DefaultChunkSize
	}
	return &SettingsService{log: log, store: store, defaultChunkSize: defaultChunkSize}
}

func (s *SettingsService) Get(ctx context.Context) (models.PluginSettings, error) {
	const op = "service.SettingsService.Get"

	ps, err := s.store.PluginSettings(ctx)
	if err != nil {
		return models.PluginSettings{}, fmt.Errorf("%s: %w", op, err)
	}

	if ps.ChunkSize <= 0 {
		ps.ChunkSize = s.defaultChunkSize
	}
	if ps.DefaultSettingsOverrides == nil {
		ps.DefaultSettingsOverrides = map[string]any{}
	}

	return ps, nil
}

// Update меняет размер порции и переопределения настроек по умолчанию.
// Счётчики миграции меняет только MigrationService.
func (s *SettingsService) Update(ctx context.Context, chunkSize *int, overrides map[string]any) (models.PluginSettings, error) {
	const op = "service.SettingsService.Update"
	log := s.log.With(slog.String("op", op))

	ps, err := s.Get(ctx)
	if err != nil {
		return models.PluginSettings{}, err
	}

	if chunkSize != nil {
		if *chunkSize < 1 || *chunkSize > MaxChunkSize {
			return models.PluginSettings{}, fmt.Errorf("%s: chunk size %d: %w", op, *chunkSize, models.ErrValidation)
		}
		ps.ChunkSize = *chunkSize
	}

	if overrides != nil {
		clean := make(map[string]any, len(overrides))
		for key, raw := range overrides {
			v, err := schema.Coerce(key, raw)
			if err != nil {
				return models.PluginSettings{}, fmt.Errorf("%s: %s: %w", op, key, models.ErrValidation)
			}
			clean[key] = v
		}
		ps.DefaultSettingsOverrides = clean
	}

	if err := s.store.SavePluginSettings(ctx, ps); err != nil {
		log.Error("failed to save plugin settings", sl.Err(err))
		return models.PluginSettings{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("plugin settings updated", slog.Int("chunk_size", ps.ChunkSize))
	return ps, nil
}
