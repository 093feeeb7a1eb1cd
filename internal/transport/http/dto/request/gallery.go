package request

import (
	"bytes"
	stdjson "encoding/json"
	"fmt"

	"portfolio_gallery/internal/domain/models"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type CreateGalleryRequest struct {
	Title  string `json:"title" validate:"required,max=200"`
	Status string `json:"status" validate:"omitempty,oneof=draft published archived"`
}

// SettingsRequest частичное обновление настроек. При Form=true
// отсутствующие флажки считаются выключенными.
type SettingsRequest struct {
	Settings map[string]any `json:"settings" validate:"required"`
	Form     bool           `json:"form"`
}

// SaveRequest сохранение из редактора. Images может быть массивом,
// JSON-строкой с массивом или служебным маркером.
type SaveRequest struct {
	Settings map[string]any     `json:"settings"`
	Images   stdjson.RawMessage `json:"images"`
}

type ImagesRequest struct {
	Images []models.Image `json:"images" validate:"required,min=1"`
}

type ImageIDsRequest struct {
	ImageIDs []int64 `json:"image_ids" validate:"required,min=1,dive,gt=0"`
}

type ImageOrderRequest struct {
	ImageIDs []int64 `json:"image_ids" validate:"required"`
}

type ChunkRequest struct {
	ChunkIndex  int                `json:"chunk_index" validate:"gte=0"`
	TotalChunks int                `json:"total_chunks" validate:"gte=1"`
	Images      stdjson.RawMessage `json:"images" validate:"required"`
}

// Payload возвращает порцию изображений как JSON-массив. Клиенты
// редактора присылают её строкой.
func (r ChunkRequest) Payload() []byte {
	var s string
	if err := json.Unmarshal(r.Images, &s); err == nil {
		return []byte(s)
	}
	return r.Images
}

// ParseImages разбирает поле images запроса сохранения.
func ParseImages(raw stdjson.RawMessage) (models.ImagesUpdate, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return models.ImagesUpdate{Skip: true, Reason: "absent"}, nil
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return models.ImagesUpdate{}, fmt.Errorf("images: %w", models.ErrValidation)
		}
		switch s {
		case models.ImagesUnchanged, models.ImagesChunkedSave:
			return models.ImagesUpdate{Skip: true, Reason: s}, nil
		case "":
			return models.ImagesUpdate{Images: []models.Image{}}, nil
		}
		raw = []byte(s)
	}

	var images []models.Image
	if err := json.Unmarshal(raw, &images); err != nil {
		return models.ImagesUpdate{}, fmt.Errorf("images: %w", models.ErrValidation)
	}
	if images == nil {
		images = []models.Image{}
	}

	return models.ImagesUpdate{Images: images}, nil
}
