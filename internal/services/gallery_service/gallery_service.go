package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"portfolio_gallery/internal/domain/models"
	"portfolio_gallery/internal/domain/schema"
	"portfolio_gallery/internal/lib/logger/sl"
	"portfolio_gallery/internal/metrics"
	"portfolio_gallery/internal/repository"
	"portfolio_gallery/internal/storage"

	"github.com/samber/lo"
)

// LegacySyncer пересобирает копию галереи в старом формате.
type LegacySyncer interface {
	Sync(ctx context.Context, g *models.Gallery) error
}

type GalleryService struct {
	log    *slog.Logger
	repo   repository.GalleryRepository
	meta   repository.GalleryMetaStore
	legacy LegacySyncer
}

func NewGalleryService(log *slog.Logger, repo repository.GalleryRepository, meta repository.GalleryMetaStore, legacy LegacySyncer) *GalleryService {
	return &GalleryService{
		log:    log,
		repo:   repo,
		meta:   meta,
		legacy: legacy,
	}
}

// CreateGallery создает галерею и сохраняет для неё настройки по умолчанию
func (s *GalleryService) CreateGallery(ctx context.Context, title, author, status string) (models.GalleryRecord, error) {
	const op = "service.GalleryService.CreateGallery"
	log := s.log.With(
		slog.String("op", op),
		slog.String("title", title),
	)

	title = strings.TrimSpace(title)
	if title == "" {
		log.Warn("title is required")
		return models.GalleryRecord{}, fmt.Errorf("%s: title is required: %w", op, models.ErrValidation)
	}

	switch status {
	case "":
		status = models.GalleryStatusDraft
	case models.GalleryStatusDraft, models.GalleryStatusPublished, models.GalleryStatusArchived:
	default:
		return models.GalleryRecord{}, fmt.Errorf("%s: invalid status %q: %w", op, status, models.ErrValidation)
	}

	rec := models.GalleryRecord{Title: title, Author: author, Status: status}

	id, err := s.repo.CreateGallery(ctx, rec)
	if err != nil {
		log.Error("failed to create gallery", sl.Err(err))
		return models.GalleryRecord{}, fmt.Errorf("%s: %w", op, err)
	}
	rec.ID = id

	if err := s.Save(ctx, models.NewGallery(id)); err != nil {
		return models.GalleryRecord{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("gallery created", slog.Int64("id", id))
	return rec, nil
}

// GetGallery возвращает запись галереи или models.ErrGalleryNotFound
func (s *GalleryService) GetGallery(ctx context.Context, id int64) (models.GalleryRecord, error) {
	const op = "service.GalleryService.GetGallery"

	rec, err := s.repo.GetGallery(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrGalleryNotFound) {
			return models.GalleryRecord{}, fmt.Errorf("%s: %w", op, models.ErrGalleryNotFound)
		}
		return models.GalleryRecord{}, fmt.Errorf("%s: %w", op, err)
	}

	return rec, nil
}

func (s *GalleryService) ListGalleries(ctx context.Context, status string, page, perPage int) ([]models.GalleryRecord, int, error) {
	const op = "service.GalleryService.ListGalleries"

	var statuses []string
	switch status {
	case "", "all":
	case models.GalleryStatusDraft, models.GalleryStatusPublished, models.GalleryStatusArchived:
		statuses = []string{status}
	default:
		return nil, 0, fmt.Errorf("%s: invalid status filter %q: %w", op, status, models.ErrValidation)
	}

	list, total, err := s.repo.ListGalleries(ctx, statuses, page, perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	if list == nil {
		list = []models.GalleryRecord{}
	}

	return list, total, nil
}

func (s *GalleryService) DeleteGallery(ctx context.Context, id int64) error {
	const op = "service.GalleryService.DeleteGallery"
	log := s.log.With(
		slog.String("op", op),
		slog.Int64("gallery_id", id),
	)

	if err := s.repo.DeleteGallery(ctx, id); err != nil {
		if errors.Is(err, storage.ErrGalleryNotFound) {
			return fmt.Errorf("%s: %w", op, models.ErrGalleryNotFound)
		}
		log.Error("failed to delete gallery", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("gallery deleted")
	return nil
}

// Load читает настройки и изображения. Недостающие ключи схемы заполняются
// значениями по умолчанию. Для несуществующей галереи возвращается галерея
// по умолчанию без ошибки.
func (s *GalleryService) Load(ctx context.Context, id int64) (*models.Gallery, error) {
	const op = "service.GalleryService.Load"
	log := s.log.With(
		slog.String("op", op),
		slog.Int64("gallery_id", id),
	)

	g := models.NewGallery(id)

	stored, err := s.meta.Settings(ctx, id)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		log.Error("failed to load settings", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for key, raw := range stored {
		f, ok := schema.Lookup(key)
		if !ok {
			continue
		}
		if v, err := f.Coerce(raw); err == nil {
			g.Settings[key] = v
		} else {
			log.Warn("stored setting replaced by default", slog.String("key", key), sl.Err(err))
		}
	}

	images, err := s.meta.Images(ctx, id)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		log.Error("failed to load images", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if images != nil {
		g.Images = images
	}

	return g, nil
}

// Save сохраняет настройки и изображения целиком, затем пересобирает
// копию в старом формате. Повторный вызов с тем же состоянием даёт тот же результат.
func (s *GalleryService) Save(ctx context.Context, g *models.Gallery) error {
	return s.persist(ctx, g, true)
}

func (s *GalleryService) persist(ctx context.Context, g *models.Gallery, withImages bool) error {
	const op = "service.GalleryService.Save"
	log := s.log.With(
		slog.String("op", op),
		slog.Int64("gallery_id", g.ID),
	)

	settings := schema.Defaults()
	for key, v := range g.Settings {
		if _, ok := settings[key]; ok {
			settings[key] = v
		}
	}
	g.Settings = settings

	if err := s.meta.SaveSettings(ctx, g.ID, g.Settings); err != nil {
		log.Error("failed to save settings", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if withImages {
		if g.Images == nil {
			g.Images = []models.Image{}
		}
		if err := s.meta.SaveImages(ctx, g.ID, g.Images); err != nil {
			log.Error("failed to save images", sl.Err(err))
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := s.legacy.Sync(ctx, g); err != nil {
		log.Error("legacy sync failed after save", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Debug("gallery saved", slog.Int("images", len(g.Images)), slog.Bool("with_images", withImages))
	return nil
}

// ApplySettings записывает набор настроек. form = true означает отправку
// формы целиком: отсутствующие булевы поля становятся false.
// Некорректные значения заменяются значениями по умолчанию и только логируются.
func (s *GalleryService) ApplySettings(ctx context.Context, id int64, raw map[string]any, form bool) (*models.Gallery, error) {
	const op = "service.GalleryService.ApplySettings"

	if _, err := s.GetGallery(ctx, id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	g, err := s.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.applySettings(g, raw, form)

	if err := s.persist(ctx, g, false); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	metrics.GallerySaves.WithLabelValues("settings").Inc()
	return g, nil
}

func (s *GalleryService) applySettings(g *models.Gallery, raw map[string]any, form bool) {
	const op = "service.GalleryService.applySettings"
	log := s.log.With(
		slog.String("op", op),
		slog.Int64("gallery_id", g.ID),
	)

	if form {
		raw = schema.FillMissingBools(raw)
	}

	for key, v := range raw {
		err := g.SetSetting(key, v)
		switch {
		case err == nil:
		case errors.Is(err, schema.ErrUnknownKey):
			log.Debug("unknown setting ignored", slog.String("key", key))
		default:
			metrics.SettingCoercions.WithLabelValues(key).Inc()
			log.Warn("setting coerced to default", slog.String("key", key), sl.Err(err))
		}
	}
}

// SaveFull сохранение галереи из редактора: настройки формы и, если не
// передан служебный маркер, полный список изображений.
func (s *GalleryService) SaveFull(ctx context.Context, id int64, raw map[string]any, images models.ImagesUpdate) (*models.Gallery, error) {
	const op = "service.GalleryService.SaveFull"
	log := s.log.With(
		slog.String("op", op),
		slog.Int64("gallery_id", id),
	)

	if _, err := s.GetGallery(ctx, id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	g, err := s.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.applySettings(g, raw, true)

	if images.Skip {
		log.Debug("images left untouched", slog.String("reason", images.Reason))
	} else {
		g.Images = uniqueImages(images.Images)
	}

	if err := s.persist(ctx, g, !images.Skip); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	metrics.GallerySaves.WithLabelValues("full").Inc()
	log.Info("gallery saved", slog.Int("images", len(g.Images)))
	return g, nil
}

// ReplaceImages заменяет список изображений целиком. Повторяющиеся id
// отбрасываются, остаётся первое вхождение.
func (s *GalleryService) ReplaceImages(ctx context.Context, id int64, images []models.Image) (*models.Gallery, error) {
	const op = "service.GalleryService.ReplaceImages"

	return s.mutate(ctx, op, id, "images", func(g *models.Gallery) error {
		g.Images = uniqueImages(images)
		return nil
	})
}

func (s *GalleryService) AddImages(ctx context.Context, id int64, images []models.Image) (*models.Gallery, int, error) {
	const op = "service.GalleryService.AddImages"

	var added int
	g, err := s.mutate(ctx, op, id, "images", func(g *models.Gallery) error {
		added = g.AddImages(images...)
		return nil
	})

	return g, added, err
}

func (s *GalleryService) RemoveImages(ctx context.Context, id int64, imageIDs []int64) (*models.Gallery, int, error) {
	const op = "service.GalleryService.RemoveImages"

	var removed int
	g, err := s.mutate(ctx, op, id, "images", func(g *models.Gallery) error {
		removed = g.RemoveImages(imageIDs...)
		return nil
	})

	return g, removed, err
}

func (s *GalleryService) ReorderImages(ctx context.Context, id int64, imageIDs []int64) (*models.Gallery, error) {
	const op = "service.GalleryService.ReorderImages"

	return s.mutate(ctx, op, id, "images", func(g *models.Gallery) error {
		g.ReorderImages(imageIDs)
		return nil
	})
}

func (s *GalleryService) UpdateImage(ctx context.Context, id, imageID int64, patch models.ImagePatch) (models.Image, error) {
	const op = "service.GalleryService.UpdateImage"

	var img models.Image
	_, err := s.mutate(ctx, op, id, "images", func(g *models.Gallery) error {
		var err error
		img, err = g.UpdateImage(imageID, patch)
		return err
	})

	return img, err
}

// Duplicate копирует настройки и изображения в новую галерею.
func (s *GalleryService) Duplicate(ctx context.Context, id int64, author string) (models.GalleryRecord, error) {
	const op = "service.GalleryService.Duplicate"
	log := s.log.With(
		slog.String("op", op),
		slog.Int64("gallery_id", id),
	)

	src, err := s.GetGallery(ctx, id)
	if err != nil {
		return models.GalleryRecord{}, fmt.Errorf("%s: %w", op, err)
	}

	g, err := s.Load(ctx, id)
	if err != nil {
		return models.GalleryRecord{}, fmt.Errorf("%s: %w", op, err)
	}

	rec := models.GalleryRecord{
		Title:  src.Title + " (copy)",
		Status: models.GalleryStatusDraft,
		Author: lo.Ternary(author != "", author, src.Author),
	}

	newID, err := s.repo.CreateGallery(ctx, rec)
	if err != nil {
		log.Error("failed to create copy", sl.Err(err))
		return models.GalleryRecord{}, fmt.Errorf("%s: %w", op, err)
	}
	rec.ID = newID

	if err := s.Save(ctx, g.Clone(newID)); err != nil {
		return models.GalleryRecord{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("gallery duplicated", slog.Int64("new_id", newID))
	return rec, nil
}

func (s *GalleryService) mutate(ctx context.Context, op string, id int64, kind string, fn func(g *models.Gallery) error) (*models.Gallery, error) {
	if _, err := s.GetGallery(ctx, id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	g, err := s.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := fn(g); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.Save(ctx, g); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	metrics.GallerySaves.WithLabelValues(kind).Inc()
	return g, nil
}

func uniqueImages(images []models.Image) []models.Image {
	out := make([]models.Image, 0, len(images))
	seen := make(map[int64]bool, len(images))
	for _, img := range images {
		if img.ID <= 0 || seen[img.ID] {
			continue
		}
		seen[img.ID] = true
		out = append(out, img.Normalize())
	}
	return out
}
