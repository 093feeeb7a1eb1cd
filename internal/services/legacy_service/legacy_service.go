package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"portfolio_gallery/internal/domain/models"
	"portfolio_gallery/internal/lib/logger/sl"
	"portfolio_gallery/internal/repository"
	"portfolio_gallery/internal/storage"
)

// LegacyService поддерживает копию галереи в старом формате.
// Копия производная: каждая запись текущих данных пересобирает её целиком.
type LegacyService struct {
	log     *slog.Logger
	meta    repository.GalleryMetaStore
	filters repository.FilterRegistryStore
}

func NewLegacyService(log *slog.Logger, meta repository.GalleryMetaStore, filters repository.FilterRegistryStore) *LegacyService {
	return &LegacyService{
		log:     log,
		meta:    meta,
		filters: filters,
	}
}

// Sync пересобирает и сохраняет запись старого формата для галереи.
func (s *LegacyService) Sync(ctx context.Context, g *models.Gallery) error {
	const op = "service.LegacyService.Sync"
	log := s.log.With(
		slog.String("op", op),
		slog.Int64("gallery_id", g.ID),
	)

	filters, err := s.filters.Filters(ctx)
	if err != nil {
		log.Error("failed to load filters", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	rec := Build(g.ID, g.Settings, g.Images, filters)

	if err := s.meta.SaveLegacy(ctx, g.ID, rec); err != nil {
		log.Error("failed to save legacy record", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Debug("legacy record regenerated", slog.Int("images", len(rec.ImageIDs)))
	return nil
}

// Legacy возвращает запись старого формата или nil, если её нет.
func (s *LegacyService) Legacy(ctx context.Context, galleryID int64) (*models.LegacyRecord, error) {
	const op = "service.LegacyService.Legacy"

	rec, err := s.meta.Legacy(ctx, galleryID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return rec, nil
}

// Restore переводит запись старого формата в текущий формат.
func (s *LegacyService) Restore(ctx context.Context, rec *models.LegacyRecord) (map[string]any, []models.Image, error) {
	const op = "service.LegacyService.Restore"

	filters, err := s.filters.Filters(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	settings, images := Reverse(rec, filters)
	return settings, images, nil
}
