package models

import (
	"errors"
	"time"

	"portfolio_gallery/internal/domain/schema"

	"github.com/samber/lo"
)

var ErrImageNotFound = errors.New("image not found")

const (
	GalleryStatusDraft     = "draft"
	GalleryStatusPublished = "published"
	GalleryStatusArchived  = "archived"
)

// GalleryRecord запись галереи (id, заголовок, автор). Настройки и
// изображения хранятся отдельно в мета-полях.
type GalleryRecord struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Gallery настройки и упорядоченный список изображений одной галереи.
type Gallery struct {
	ID       int64          `json:"id"`
	Settings map[string]any `json:"settings"`
	Images   []Image        `json:"images"`
}

// NewGallery возвращает галерею со значениями настроек по умолчанию.
func NewGallery(id int64) *Gallery {
	return &Gallery{
		ID:       id,
		Settings: schema.Defaults(),
		Images:   []Image{},
	}
}

func (g *Gallery) Setting(key string) any {
	return g.Settings[key]
}

// SetSetting приводит значение по схеме и записывает его.
// Неизвестный ключ игнорируется (возвращается schema.ErrUnknownKey).
// При ошибке приведения записывается значение по умолчанию, а ошибка
// возвращается только для логирования.
func (g *Gallery) SetSetting(key string, raw any) error {
	v, err := schema.Coerce(key, raw)
	if errors.Is(err, schema.ErrUnknownKey) {
		return err
	}

	if g.Settings == nil {
		g.Settings = schema.Defaults()
	}
	g.Settings[key] = v

	return err
}

func (g *Gallery) ImageIDs() []int64 {
	return lo.Map(g.Images, func(img Image, _ int) int64 { return img.ID })
}

func (g *Gallery) HasImage(id int64) bool {
	return lo.ContainsBy(g.Images, func(img Image) bool { return img.ID == id })
}

// AddImages добавляет изображения в конец списка. Изображения без id и
// с уже существующим id пропускаются. Возвращает число добавленных.
func (g *Gallery) AddImages(images ...Image) int {
	added := 0
	for _, img := range images {
		if img.ID <= 0 || g.HasImage(img.ID) {
			continue
		}
		g.Images = append(g.Images, img.Normalize())
		added++
	}
	return added
}

// RemoveImages удаляет изображения с указанными id и возвращает число удалённых.
func (g *Gallery) RemoveImages(ids ...int64) int {
	before := len(g.Images)
	g.Images = lo.Reject(g.Images, func(img Image, _ int) bool {
		return lo.Contains(ids, img.ID)
	})
	return before - len(g.Images)
}

// ReorderImages ставит изображения в порядке ids. Изображения, которых нет
// в ids, остаются в конце в прежнем относительном порядке.
func (g *Gallery) ReorderImages(ids []int64) {
	byID := lo.KeyBy(g.Images, func(img Image) int64 { return img.ID })
	placed := make(map[int64]bool, len(ids))

	out := make([]Image, 0, len(g.Images))
	for _, id := range ids {
		img, ok := byID[id]
		if !ok || placed[id] {
			continue
		}
		out = append(out, img)
		placed[id] = true
	}

	for _, img := range g.Images {
		if !placed[img.ID] {
			out = append(out, img)
		}
	}

	g.Images = out
}

// UpdateImage применяет patch к изображению с данным id.
func (g *Gallery) UpdateImage(id int64, patch ImagePatch) (Image, error) {
	_, idx, ok := lo.FindIndexOf(g.Images, func(img Image) bool { return img.ID == id })
	if !ok {
		return Image{}, ErrImageNotFound
	}

	g.Images[idx] = patch.Apply(g.Images[idx]).Normalize()

	return g.Images[idx], nil
}

// Clone глубокая копия для дублирования галереи.
func (g *Gallery) Clone(newID int64) *Gallery {
	settings := make(map[string]any, len(g.Settings))
	for k, v := range g.Settings {
		settings[k] = v
	}

	images := make([]Image, len(g.Images))
	for i, img := range g.Images {
		img.Filters = append([]string(nil), img.Filters...)
		images[i] = img
	}

	return &Gallery{ID: newID, Settings: settings, Images: images}
}
