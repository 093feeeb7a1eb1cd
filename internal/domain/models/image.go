package models

import (
	"strings"

	"portfolio_gallery/internal/lib/sanitize"

	"github.com/samber/lo"
)

type ImageType string

const (
	ImageTypeImage ImageType = "image"
	ImageTypeVideo ImageType = "video"
	ImageTypeURL   ImageType = "url"
)

// Image элемент галереи. ID ссылается на медиафайл, OriginalID на файл,
// к которому изображение вернётся при сбросе (по умолчанию совпадает с ID).
type Image struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Alt         string    `json:"alt"`
	Description string    `json:"description"`
	Link        string    `json:"link"`
	Type        ImageType `json:"type"`
	Filters     []string  `json:"filters"`
	ProductID   int64     `json:"product_id,omitempty"`
	ProductName string    `json:"product_name,omitempty"`
	OriginalID  int64     `json:"original_id"`
}

// Normalize очищает поля и проставляет значения по умолчанию.
// Одинаково применяется при обычном и при порционном сохранении.
func (img Image) Normalize() Image {
	img.Title = sanitize.Text(img.Title)
	img.Alt = sanitize.Text(img.Alt)
	img.Description = sanitize.Textarea(img.Description)
	img.Link = sanitize.URL(img.Link)
	img.ProductName = sanitize.Text(img.ProductName)

	switch img.Type {
	case ImageTypeImage, ImageTypeVideo, ImageTypeURL:
	default:
		img.Type = ImageTypeImage
	}

	if img.ProductID < 0 {
		img.ProductID = 0
	}
	if img.OriginalID <= 0 {
		img.OriginalID = img.ID
	}

	img.Filters = normalizeFilters(img.Filters)

	return img
}

// фильтры изображения бывают и slug-ами, и id фильтров
func normalizeFilters(filters []string) []string {
	out := make([]string, 0, len(filters))
	for _, f := range filters {
		f = strings.TrimSpace(sanitize.Text(f))
		if f != "" {
			out = append(out, f)
		}
	}
	return lo.Uniq(out)
}

// ImagePatch частичное обновление изображения: nil означает "не менять".
type ImagePatch struct {
	Title       *string    `json:"title,omitempty"`
	Alt         *string    `json:"alt,omitempty"`
	Description *string    `json:"description,omitempty"`
	Link        *string    `json:"link,omitempty"`
	Type        *ImageType `json:"type,omitempty"`
	Filters     *[]string  `json:"filters,omitempty"`
	ProductID   *int64     `json:"product_id,omitempty"`
	ProductName *string    `json:"product_name,omitempty"`
}

func (p ImagePatch) Apply(img Image) Image {
	if p.Title != nil {
		img.Title = *p.Title
	}
	if p.Alt != nil {
		img.Alt = *p.Alt
	}
	if p.Description != nil {
		img.Description = *p.Description
	}
	if p.Link != nil {
		img.Link = *p.Link
	}
	if p.Type != nil {
		img.Type = *p.Type
	}
	if p.Filters != nil {
		img.Filters = append([]string(nil), (*p.Filters)...)
	}
	if p.ProductID != nil {
		img.ProductID = *p.ProductID
	}
	if p.ProductName != nil {
		img.ProductName = *p.ProductName
	}
	return img
}

// Служебные значения поля images при полном сохранении галереи.
const (
	ImagesUnchanged   = "__UNCHANGED__"
	ImagesChunkedSave = "__CHUNKED_SAVE__"
)

// ImagesUpdate изображения из запроса полного сохранения. Skip означает,
// что список изображений не трогается (не менялся или уже сохранён порциями).
type ImagesUpdate struct {
	Skip   bool
	Reason string
	Images []Image
}
