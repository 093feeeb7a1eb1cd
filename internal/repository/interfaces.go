package repository

import (
	"context"
	"time"

	"portfolio_gallery/internal/domain/models"
)

type GalleryRepository interface {
	CreateGallery(ctx context.Context, rec models.GalleryRecord) (int64, error)
	GetGallery(ctx context.Context, id int64) (models.GalleryRecord, error)
	ListGalleries(ctx context.Context, statuses []string, page, perPage int) ([]models.GalleryRecord, int, error)
	GalleryIDs(ctx context.Context) ([]int64, error)
	DeleteGallery(ctx context.Context, id int64) error
}

// MetaRepository мета-поля галереи, значение хранится целиком (JSON).
type MetaRepository interface {
	GetMeta(ctx context.Context, galleryID int64, key string) ([]byte, error)
	SetMeta(ctx context.Context, galleryID int64, key string, value []byte) error
	DeleteMeta(ctx context.Context, galleryID int64, key string) error
}

// OptionRepository глобальные именованные значения (JSON).
type OptionRepository interface {
	GetOption(ctx context.Context, name string) ([]byte, error)
	SetOption(ctx context.Context, name string, value []byte) error
	DeleteOption(ctx context.Context, name string) error
	OptionNames(ctx context.Context, prefix string) ([]string, error)
}

// TransientRepository значения с ограниченным временем жизни.
type TransientRepository interface {
	GetTransient(ctx context.Context, key string) ([]byte, error)
	SetTransient(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteTransient(ctx context.Context, key string) error
}

type GalleryMetaStore interface {
	Settings(ctx context.Context, galleryID int64) (map[string]any, error)
	SaveSettings(ctx context.Context, galleryID int64, settings map[string]any) error
	Images(ctx context.Context, galleryID int64) ([]models.Image, error)
	SaveImages(ctx context.Context, galleryID int64, images []models.Image) error
	Legacy(ctx context.Context, galleryID int64) (*models.LegacyRecord, error)
	SaveLegacy(ctx context.Context, galleryID int64, rec *models.LegacyRecord) error
}

type FilterRegistryStore interface {
	Filters(ctx context.Context) ([]models.Filter, error)
	SaveFilters(ctx context.Context, filters []models.Filter) error
	LegacyFilterMap(ctx context.Context) (map[string]string, error)
	SaveLegacyFilterMap(ctx context.Context, names map[string]string) error
}

type SettingsStore interface {
	PluginSettings(ctx context.Context) (models.PluginSettings, error)
	SavePluginSettings(ctx context.Context, s models.PluginSettings) error
}

type BackupStore interface {
	SaveBackup(ctx context.Context, b models.Backup) error
	Backup(ctx context.Context, key string) (models.Backup, error)
	BackupKeys(ctx context.Context, galleryID int64) ([]string, error)
}
