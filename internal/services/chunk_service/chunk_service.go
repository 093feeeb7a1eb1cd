package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"portfolio_gallery/internal/domain/models"
	"portfolio_gallery/internal/lib/logger/sl"
	"portfolio_gallery/internal/metrics"
	"portfolio_gallery/internal/repository"
	"portfolio_gallery/internal/storage"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const DefaultTTL = 5 * time.Minute

// ImageCommitter записывает накопленный список изображений в галерею.
type ImageCommitter interface {
	GetGallery(ctx context.Context, id int64) (models.GalleryRecord, error)
	ReplaceImages(ctx context.Context, id int64, images []models.Image) (*models.Gallery, error)
}

// ChunkService принимает список изображений порциями. Порции копятся во
// временной записи и попадают в галерею одной записью после последней порции.
// Порция 0 всегда начинает накопление заново. Повторная отправка средней
// порции дублирует её изображения в накоплении; при записи в галерею
// дубликаты по id отбрасываются.
type ChunkService struct {
	log        *slog.Logger
	transients repository.TransientRepository
	gallery    ImageCommitter
	ttl        time.Duration
}

func NewChunkService(log *slog.Logger, transients repository.TransientRepository, gallery ImageCommitter, ttl time.Duration) *ChunkService {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &ChunkService{
		log:        log,
		transients: transients,
		gallery:    gallery,
		ttl:        ttl,
	}
}

// SaveChunk обрабатывает порцию chunkIndex из totalChunks. payload JSON-массив изображений.
func (s *ChunkService) SaveChunk(ctx context.Context, galleryID int64, chunkIndex, totalChunks int, payload []byte) (models.ChunkResult, error) {
	const op = "service.ChunkService.SaveChunk"
	log := s.log.With(
		slog.String("op", op),
		slog.Int64("gallery_id", galleryID),
		slog.Int("chunk", chunkIndex),
		slog.Int("total", totalChunks),
	)

	result := models.ChunkResult{GalleryID: galleryID, ChunkIndex: chunkIndex, TotalChunks: totalChunks}

	if galleryID <= 0 || totalChunks < 1 || chunkIndex < 0 {
		return result, fmt.Errorf("%s: invalid chunk position: %w", op, models.ErrValidation)
	}

	if _, err := s.gallery.GetGallery(ctx, galleryID); err != nil {
		return result, fmt.Errorf("%s: %w", op, err)
	}

	images, err := decodeImages(payload)
	if err != nil {
		log.Warn("bad chunk payload", sl.Err(err))
		return result, fmt.Errorf("%s: %w: %w", op, models.ErrValidation, err)
	}

	key := repository.ChunksKey(galleryID)

	var acc []models.Image
	if chunkIndex > 0 {
		acc, err = s.accumulated(ctx, key)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				metrics.ChunksReceived.WithLabelValues("expired").Inc()
				log.Warn("no accumulation state for chunk")
				return result, fmt.Errorf("%s: %w", op, models.ErrChunkSequenceExpired)
			}
			log.Error("failed to read accumulation state", sl.Err(err))
			return result, fmt.Errorf("%s: %w", op, err)
		}
	}
	acc = append(acc, images...)
	result.Received = len(acc)

	if chunkIndex < totalChunks-1 {
		b, err := json.Marshal(acc)
		if err != nil {
			return result, fmt.Errorf("%s: %w", op, err)
		}
		if err := s.transients.SetTransient(ctx, key, b, s.ttl); err != nil {
			log.Error("failed to store accumulation state", sl.Err(err))
			return result, fmt.Errorf("%s: %w", op, err)
		}

		metrics.ChunksReceived.WithLabelValues("accumulated").Inc()
		log.Debug("chunk accumulated", slog.Int("received", result.Received))
		return result, nil
	}

	g, err := s.gallery.ReplaceImages(ctx, galleryID, acc)
	if err != nil {
		log.Error("failed to commit chunked images", sl.Err(err))
		return result, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.transients.DeleteTransient(ctx, key); err != nil {
		// изображения уже записаны, оставшаяся запись истечёт сама
		log.Warn("failed to delete accumulation state", sl.Err(err))
	}

	result.Committed = true
	result.Received = len(g.Images)

	metrics.ChunksReceived.WithLabelValues("committed").Inc()
	metrics.GallerySaves.WithLabelValues("chunk").Inc()
	log.Info("chunked images committed", slog.Int("images", len(g.Images)))

	return result, nil
}

// Pending число изображений в незавершённом накоплении, 0 если его нет.
func (s *ChunkService) Pending(ctx context.Context, galleryID int64) (int, error) {
	acc, err := s.accumulated(ctx, repository.ChunksKey(galleryID))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return len(acc), nil
}

func (s *ChunkService) accumulated(ctx context.Context, key string) ([]models.Image, error) {
	b, err := s.transients.GetTransient(ctx, key)
	if err != nil {
		return nil, err
	}

	var acc []models.Image
	if err := json.Unmarshal(b, &acc); err != nil {
		return nil, fmt.Errorf("decode accumulation state: %w", err)
	}

	return acc, nil
}

func decodeImages(payload []byte) ([]models.Image, error) {
	var images []models.Image
	if err := json.Unmarshal(payload, &images); err != nil {
		return nil, err
	}

	out := make([]models.Image, 0, len(images))
	for _, img := range images {
		if img.ID <= 0 {
			continue
		}
		out = append(out, img.Normalize())
	}

	return out, nil
}
