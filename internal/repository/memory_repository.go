package repository

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"portfolio_gallery/internal/domain/models"
	"portfolio_gallery/internal/storage"
	"portfolio_gallery/internal/storage/memory"

	"github.com/samber/lo"
)

const (
	memGalleryPrefix   = "gallery:"
	memMetaPrefix      = "meta:"
	memOptionPrefix    = "option:"
	memTransientPrefix = "transient:"
)

// MemoryRepo реализует все репозитории поверх memory.Store.
type MemoryRepo struct {
	store *memory.Store
}

func NewMemoryRepo(store *memory.Store) *MemoryRepo {
	return &MemoryRepo{store: store}
}

func (r *MemoryRepo) CreateGallery(ctx context.Context, rec models.GalleryRecord) (int64, error) {
	const op = "repository.MemoryRepo.CreateGallery"

	rec.ID = r.store.NextID()
	now := time.Now().UTC()
	rec.CreatedAt, rec.UpdatedAt = now, now

	b, err := json.Marshal(rec)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	r.store.Set(memory.IDKey(memGalleryPrefix, rec.ID), b, 0)

	return rec.ID, nil
}

func (r *MemoryRepo) GetGallery(ctx context.Context, id int64) (models.GalleryRecord, error) {
	const op = "repository.MemoryRepo.GetGallery"

	b, ok := r.store.Get(memory.IDKey(memGalleryPrefix, id))
	if !ok {
		return models.GalleryRecord{}, fmt.Errorf("%s: %w", op, storage.ErrGalleryNotFound)
	}

	var rec models.GalleryRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return models.GalleryRecord{}, fmt.Errorf("%s: %w", op, err)
	}

	return rec, nil
}

func (r *MemoryRepo) ListGalleries(ctx context.Context, statuses []string, page, perPage int) ([]models.GalleryRecord, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	ids, err := r.GalleryIDs(ctx)
	if err != nil {
		return nil, 0, err
	}

	var all []models.GalleryRecord
	for i := len(ids) - 1; i >= 0; i-- {
		rec, err := r.GetGallery(ctx, ids[i])
		if err != nil {
			continue
		}
		if len(statuses) > 0 && !lo.Contains(statuses, rec.Status) {
			continue
		}
		all = append(all, rec)
	}

	return lo.Subset(all, (page-1)*perPage, uint(perPage)), len(all), nil
}

func (r *MemoryRepo) GalleryIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	for _, k := range r.store.Keys() {
		rest, ok := strings.CutPrefix(k, memGalleryPrefix)
		if !ok {
			continue
		}
		if id, err := strconv.ParseInt(rest, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids, nil
}

func (r *MemoryRepo) DeleteGallery(ctx context.Context, id int64) error {
	const op = "repository.MemoryRepo.DeleteGallery"

	key := memory.IDKey(memGalleryPrefix, id)
	if _, ok := r.store.Get(key); !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrGalleryNotFound)
	}
	r.store.Delete(key)

	prefix := memMetaPrefix + strconv.FormatInt(id, 10) + ":"
	for _, k := range r.store.Keys() {
		if strings.HasPrefix(k, prefix) {
			r.store.Delete(k)
		}
	}

	return nil
}

func metaKey(galleryID int64, key string) string {
	return memMetaPrefix + strconv.FormatInt(galleryID, 10) + ":" + key
}

func (r *MemoryRepo) GetMeta(ctx context.Context, galleryID int64, key string) ([]byte, error) {
	b, ok := r.store.Get(metaKey(galleryID, key))
	if !ok {
		return nil, fmt.Errorf("repository.MemoryRepo.GetMeta: %w", storage.ErrNotFound)
	}
	return b, nil
}

func (r *MemoryRepo) SetMeta(ctx context.Context, galleryID int64, key string, value []byte) error {
	r.store.Set(metaKey(galleryID, key), value, 0)
	return nil
}

func (r *MemoryRepo) DeleteMeta(ctx context.Context, galleryID int64, key string) error {
	r.store.Delete(metaKey(galleryID, key))
	return nil
}

func (r *MemoryRepo) GetOption(ctx context.Context, name string) ([]byte, error) {
	b, ok := r.store.Get(memOptionPrefix + name)
	if !ok {
		return nil, fmt.Errorf("repository.MemoryRepo.GetOption: %w", storage.ErrNotFound)
	}
	return b, nil
}

func (r *MemoryRepo) SetOption(ctx context.Context, name string, value []byte) error {
	r.store.Set(memOptionPrefix+name, value, 0)
	return nil
}

func (r *MemoryRepo) DeleteOption(ctx context.Context, name string) error {
	r.store.Delete(memOptionPrefix + name)
	return nil
}

func (r *MemoryRepo) OptionNames(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	for _, k := range r.store.Keys() {
		if name, ok := strings.CutPrefix(k, memOptionPrefix); ok && strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	return names, nil
}

func (r *MemoryRepo) GetTransient(ctx context.Context, key string) ([]byte, error) {
	b, ok := r.store.Get(memTransientPrefix + key)
	if !ok {
		return nil, fmt.Errorf("repository.MemoryRepo.GetTransient: %w", storage.ErrNotFound)
	}
	return b, nil
}

func (r *MemoryRepo) SetTransient(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	r.store.Set(memTransientPrefix+key, value, ttl)
	return nil
}

func (r *MemoryRepo) DeleteTransient(ctx context.Context, key string) error {
	r.store.Delete(memTransientPrefix + key)
	return nil
}
