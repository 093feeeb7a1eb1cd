package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"portfolio_gallery/internal/domain/models"
	"portfolio_gallery/internal/storage"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// MetaStore типизированный доступ к мета-полям галереи.
// Отсутствующее значение возвращается как storage.ErrNotFound.
type MetaStore struct {
	repo MetaRepository
}

func NewMetaStore(repo MetaRepository) *MetaStore {
	return &MetaStore{repo: repo}
}

func (s *MetaStore) Settings(ctx context.Context, galleryID int64) (map[string]any, error) {
	var out map[string]any
	if err := s.get(ctx, galleryID, MetaSettings, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MetaStore) SaveSettings(ctx context.Context, galleryID int64, settings map[string]any) error {
	return s.set(ctx, galleryID, MetaSettings, settings)
}

func (s *MetaStore) Images(ctx context.Context, galleryID int64) ([]models.Image, error) {
	var out []models.Image
	if err := s.get(ctx, galleryID, MetaImages, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MetaStore) SaveImages(ctx context.Context, galleryID int64, images []models.Image) error {
	if images == nil {
		images = []models.Image{}
	}
	return s.set(ctx, galleryID, MetaImages, images)
}

func (s *MetaStore) Legacy(ctx context.Context, galleryID int64) (*models.LegacyRecord, error) {
	var out models.LegacyRecord
	if err := s.get(ctx, galleryID, MetaLegacy, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *MetaStore) SaveLegacy(ctx context.Context, galleryID int64, rec *models.LegacyRecord) error {
	return s.set(ctx, galleryID, MetaLegacy, rec)
}

func (s *MetaStore) get(ctx context.Context, galleryID int64, key string, dst any) error {
	b, err := s.repo.GetMeta(ctx, galleryID, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("decode meta %s: %w", key, err)
	}
	return nil
}

func (s *MetaStore) set(ctx context.Context, galleryID int64, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode meta %s: %w", key, err)
	}
	return s.repo.SetMeta(ctx, galleryID, key, b)
}

// OptionStore реестр фильтров, настройки плагина и резервные копии поверх опций.
type OptionStore struct {
	repo OptionRepository
}

func NewOptionStore(repo OptionRepository) *OptionStore {
	return &OptionStore{repo: repo}
}

// Filters возвращает пустой список, если реестр ещё не создан.
func (s *OptionStore) Filters(ctx context.Context) ([]models.Filter, error) {
	var out []models.Filter
	if err := s.get(ctx, OptionFilters, &out); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return []models.Filter{}, nil
		}
		return nil, err
	}
	return out, nil
}

func (s *OptionStore) SaveFilters(ctx context.Context, filters []models.Filter) error {
	if filters == nil {
		filters = []models.Filter{}
	}
	return s.set(ctx, OptionFilters, filters)
}

func (s *OptionStore) LegacyFilterMap(ctx context.Context) (map[string]string, error) {
	out := map[string]string{}
	if err := s.get(ctx, OptionLegacyFilters, &out); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	return out, nil
}

func (s *OptionStore) SaveLegacyFilterMap(ctx context.Context, names map[string]string) error {
	return s.set(ctx, OptionLegacyFilters, names)
}

func (s *OptionStore) PluginSettings(ctx context.Context) (models.PluginSettings, error) {
	var out models.PluginSettings
	if err := s.get(ctx, OptionPluginSettings, &out); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return models.PluginSettings{}, err
	}
	return out, nil
}

func (s *OptionStore) SavePluginSettings(ctx context.Context, ps models.PluginSettings) error {
	return s.set(ctx, OptionPluginSettings, ps)
}

func (s *OptionStore) SaveBackup(ctx context.Context, b models.Backup) error {
	return s.set(ctx, b.Key, b)
}

func (s *OptionStore) Backup(ctx context.Context, key string) (models.Backup, error) {
	var out models.Backup
	if _, ok := BackupGalleryID(key); !ok {
		return out, fmt.Errorf("backup %q: %w", key, storage.ErrNotFound)
	}
	if err := s.get(ctx, key, &out); err != nil {
		return out, err
	}
	out.Key = key
	return out, nil
}

// BackupKeys ключи резервных копий галереи, старые первыми.
// galleryID == 0 возвращает копии всех галерей.
func (s *OptionStore) BackupKeys(ctx context.Context, galleryID int64) ([]string, error) {
	prefix := OptionBackupPrefix
	if galleryID > 0 {
		prefix = fmt.Sprintf("%s%d_", OptionBackupPrefix, galleryID)
	}

	names, err := s.repo.OptionNames(ctx, prefix)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(names, func(i, j int) bool {
		return backupStamp(names[i]) < backupStamp(names[j])
	})

	return names, nil
}

func backupStamp(key string) string {
	for i := len(key) - 1; i >= 0; i-- {
		if key[i] == '_' {
			return fmt.Sprintf("%020s", key[i+1:])
		}
	}
	return key
}

func (s *OptionStore) get(ctx context.Context, name string, dst any) error {
	b, err := s.repo.GetOption(ctx, name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("decode option %s: %w", name, err)
	}
	return nil
}

func (s *OptionStore) set(ctx context.Context, name string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode option %s: %w", name, err)
	}
	return s.repo.SetOption(ctx, name, b)
}
