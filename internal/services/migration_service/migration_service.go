package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"portfolio_gallery/internal/domain/models"
	"portfolio_gallery/internal/domain/schema"
	"portfolio_gallery/internal/lib/logger/sl"
	"portfolio_gallery/internal/metrics"
	"portfolio_gallery/internal/repository"
	"portfolio_gallery/internal/storage"
)

type GalleryStore interface {
	GetGallery(ctx context.Context, id int64) (models.GalleryRecord, error)
	Load(ctx context.Context, id int64) (*models.Gallery, error)
	Save(ctx context.Context, g *models.Gallery) error
}

type LegacyReader interface {
	Legacy(ctx context.Context, galleryID int64) (*models.LegacyRecord, error)
	Restore(ctx context.Context, rec *models.LegacyRecord) (map[string]any, []models.Image, error)
}

// MigrationService переносит галереи, у которых есть только данные в
// старом формате, в текущий формат. Перед перезаписью сохраняет резервную копию.
type MigrationService struct {
	log       *slog.Logger
	galleries repository.GalleryRepository
	meta      repository.GalleryMetaStore
	backups   repository.BackupStore
	settings  repository.SettingsStore
	store     GalleryStore
	legacy    LegacyReader
	now       func() time.Time
}

func NewMigrationService(
	log *slog.Logger,
	galleries repository.GalleryRepository,
	meta repository.GalleryMetaStore,
	backups repository.BackupStore,
	settings repository.SettingsStore,
	store GalleryStore,
	legacy LegacyReader,
) *MigrationService {
	return &MigrationService{
		log:       log,
		galleries: galleries,
		meta:      meta,
		backups:   backups,
		settings:  settings,
		store:     store,
		legacy:    legacy,
		now:       time.Now,
	}
}

// Detect true, если у галереи есть данные старого формата, а текущих
// настроек нет или они пустые (по умолчанию и без изображений).
func (s *MigrationService) Detect(ctx context.Context, id int64) (bool, error) {
	const op = "service.MigrationService.Detect"

	rec, err := s.legacy.Legacy(ctx, id)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if rec.Empty() {
		return false, nil
	}

	if _, err := s.meta.Settings(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return true, nil
		}
		return false, fmt.Errorf("%s: %w", op, err)
	}

	g, err := s.store.Load(ctx, id)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	current := len(g.Images) > 0 || !reflect.DeepEqual(g.Settings, schema.Defaults())

	return !current && len(rec.ImageIDs) > 0, nil
}

// Migrate переводит галерею из старого формата. Без force галерея,
// для которой Detect false, пропускается. Возвращает true, если данные перезаписаны.
func (s *MigrationService) Migrate(ctx context.Context, id int64, force bool) (bool, error) {
	const op = "service.MigrationService.Migrate"
	log := s.log.With(
		slog.String("op", op),
		slog.Int64("gallery_id", id),
		slog.Bool("force", force),
	)

	if _, err := s.store.GetGallery(ctx, id); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	rec, err := s.legacy.Legacy(ctx, id)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if rec.Empty() {
		return false, fmt.Errorf("%s: %w", op, models.ErrNothingToMigrate)
	}

	if !force {
		needed, err := s.Detect(ctx, id)
		if err != nil {
			return false, fmt.Errorf("%s: %w", op, err)
		}
		if !needed {
			log.Debug("gallery already in current format")
			return false, nil
		}
	}

	key, err := s.backup(ctx, id, rec)
	if err != nil {
		log.Error("failed to back up gallery", sl.Err(err))
		return false, fmt.Errorf("%s: backup: %w", op, err)
	}

	settings, images, err := s.legacy.Restore(ctx, rec)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.store.Save(ctx, &models.Gallery{ID: id, Settings: settings, Images: images}); err != nil {
		log.Error("failed to save migrated gallery", sl.Err(err))
		return false, fmt.Errorf("%s: %w", op, err)
	}

	metrics.GalleriesMigrated.Inc()
	log.Info("gallery migrated", slog.String("backup", key), slog.Int("images", len(images)))
	return true, nil
}

func (s *MigrationService) backup(ctx context.Context, id int64, rec *models.LegacyRecord) (string, error) {
	now := s.now().UTC()
	b := models.Backup{
		Key:       repository.BackupKey(id, now.UnixNano()),
		GalleryID: id,
		CreatedAt: now,
		Legacy:    rec,
	}

	settings, err := s.meta.Settings(ctx, id)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return "", err
	}
	b.Settings = settings

	images, err := s.meta.Images(ctx, id)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return "", err
	}
	b.Images = images

	if err := s.backups.SaveBackup(ctx, b); err != nil {
		return "", err
	}

	return b.Key, nil
}

// Restore возвращает галерею к состоянию из резервной копии. Если в копии
// не было текущих настроек, они восстанавливаются из сохранённой записи старого формата.
func (s *MigrationService) Restore(ctx context.Context, key string) (*models.Gallery, error) {
	const op = "service.MigrationService.Restore"
	log := s.log.With(
		slog.String("op", op),
		slog.String("backup", key),
	)

	b, err := s.backups.Backup(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrBackupNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.store.GetGallery(ctx, b.GalleryID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	g := &models.Gallery{ID: b.GalleryID, Settings: b.Settings, Images: b.Images}
	if g.Settings == nil && b.Legacy != nil {
		g.Settings, g.Images, err = s.legacy.Restore(ctx, b.Legacy)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	if g.Settings == nil {
		g.Settings = schema.Defaults()
	}

	if err := s.store.Save(ctx, g); err != nil {
		log.Error("failed to restore gallery", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("gallery restored", slog.Int64("gallery_id", g.ID))
	return s.store.Load(ctx, g.ID)
}

// RunBatch мигрирует все галереи, которым это нужно (или все со старыми
// данными при force). Ошибки по отдельным галереям не прерывают обход.
func (s *MigrationService) RunBatch(ctx context.Context, force bool) (int, error) {
	const op = "service.MigrationService.RunBatch"
	log := s.log.With(
		slog.String("op", op),
		slog.Bool("force", force),
	)

	ids, err := s.galleries.GalleryIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var (
		migrated int
		errs     []error
	)
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		ok, err := s.Migrate(ctx, id, force)
		if err != nil {
			if errors.Is(err, models.ErrNothingToMigrate) {
				continue
			}
			log.Error("gallery migration failed", slog.Int64("gallery_id", id), sl.Err(err))
			errs = append(errs, err)
			continue
		}
		if ok {
			migrated++
		}
	}

	ps, err := s.settings.PluginSettings(ctx)
	if err != nil {
		errs = append(errs, err)
	} else {
		now := s.now().UTC()
		ps.MigrationCompletedAt = &now
		ps.MigratedCount += migrated
		if err := s.settings.SavePluginSettings(ctx, ps); err != nil {
			errs = append(errs, err)
		}
	}

	log.Info("batch migration finished", slog.Int("galleries", len(ids)), slog.Int("migrated", migrated))

	if err := errors.Join(errs...); err != nil {
		return migrated, fmt.Errorf("%s: %w", op, err)
	}
	return migrated, nil
}

func (s *MigrationService) Status(ctx context.Context) (models.MigrationStatus, error) {
	const op = "service.MigrationService.Status"

	ids, err := s.galleries.GalleryIDs(ctx)
	if err != nil {
		return models.MigrationStatus{}, fmt.Errorf("%s: %w", op, err)
	}

	status := models.MigrationStatus{Total: len(ids)}
	for _, id := range ids {
		needed, err := s.Detect(ctx, id)
		if err != nil {
			return models.MigrationStatus{}, fmt.Errorf("%s: %w", op, err)
		}
		if needed {
			status.LegacyOnly++
		}
	}

	ps, err := s.settings.PluginSettings(ctx)
	if err != nil {
		return models.MigrationStatus{}, fmt.Errorf("%s: %w", op, err)
	}
	status.Migrated = ps.MigratedCount
	status.CompletedAt = ps.MigrationCompletedAt

	status.Backups, err = s.backups.BackupKeys(ctx, 0)
	if err != nil {
		return models.MigrationStatus{}, fmt.Errorf("%s: %w", op, err)
	}
	if status.Backups == nil {
		status.Backups = []string{}
	}

	return status, nil
}

func (s *MigrationService) Backups(ctx context.Context, galleryID int64) ([]string, error) {
	const op = "service.MigrationService.Backups"

	keys, err := s.backups.BackupKeys(ctx, galleryID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if keys == nil {
		keys = []string{}
	}

	return keys, nil
}
