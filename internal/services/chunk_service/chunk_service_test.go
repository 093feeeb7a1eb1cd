package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"portfolio_gallery/internal/domain/models"
	"portfolio_gallery/internal/lib/logger/handlers/slogdiscard"
	"portfolio_gallery/internal/repository"
	gallery "portfolio_gallery/internal/services/gallery_service"
	legacy "portfolio_gallery/internal/services/legacy_service"
	"portfolio_gallery/internal/storage/memory"
	redisapp "portfolio_gallery/internal/storage/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockImageCommitter struct {
	mock.Mock
}

func (m *MockImageCommitter) GetGallery(ctx context.Context, id int64) (models.GalleryRecord, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.GalleryRecord), args.Error(1)
}

func (m *MockImageCommitter) ReplaceImages(ctx context.Context, id int64, images []models.Image) (*models.Gallery, error) {
	args := m.Called(ctx, id, images)
	g, _ := args.Get(0).(*models.Gallery)
	return g, args.Error(1)
}

type env struct {
	mr        *miniredis.Miniredis
	chunks    *ChunkService
	galleries *gallery.GalleryService
	id        int64
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	log := slogdiscard.NewDiscardLogger()

	mr := miniredis.RunT(t)
	client := redisapp.NewClient(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = client.Close() })

	repo := repository.NewMemoryRepo(memory.New())
	meta := repository.NewMetaStore(repo)
	options := repository.NewOptionStore(repo)
	galleries := gallery.NewGalleryService(log, repo, meta, legacy.NewLegacyService(log, meta, options))

	rec, err := galleries.CreateGallery(ctx, "Big", "ann", "")
	require.NoError(t, err)

	return &env{
		mr:        mr,
		chunks:    NewChunkService(log, repository.NewRedisTransientRepo(client), galleries, DefaultTTL),
		galleries: galleries,
		id:        rec.ID,
	}
}

func imagesJSON(from, count int) []byte {
	parts := make([]string, 0, count)
	for i := 0; i < count; i++ {
		parts = append(parts, fmt.Sprintf(`{"id":%d,"title":"Image %d","type":"image"}`, from+i, from+i))
	}
	return []byte("[" + strings.Join(parts, ",") + "]")
}

func TestChunkService_AccumulatesAndCommits(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	sizes := []int{50, 50, 20}
	next := 1
	for i, size := range sizes {
		res, err := e.chunks.SaveChunk(ctx, e.id, i, len(sizes), imagesJSON(next, size))
		require.NoError(t, err)
		next += size

		if i < len(sizes)-1 {
			assert.False(t, res.Committed)
			assert.True(t, e.mr.Exists(repository.ChunksKey(e.id)))
		} else {
			assert.True(t, res.Committed)
			assert.Equal(t, 120, res.Received)
		}
	}

	g, err := e.galleries.Load(ctx, e.id)
	require.NoError(t, err)
	require.Len(t, g.Images, 120)
	for i, img := range g.Images {
		assert.Equal(t, int64(i+1), img.ID)
	}
	assert.False(t, e.mr.Exists(repository.ChunksKey(e.id)))

	pending, err := e.chunks.Pending(ctx, e.id)
	require.NoError(t, err)
	assert.Zero(t, pending)
}

func TestChunkService_AbandonedSequenceLeavesImages(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	_, err := e.galleries.ReplaceImages(ctx, e.id, []models.Image{{ID: 900}, {ID: 901}})
	require.NoError(t, err)

	_, err = e.chunks.SaveChunk(ctx, e.id, 0, 3, imagesJSON(1, 50))
	require.NoError(t, err)
	assert.Equal(t, DefaultTTL, e.mr.TTL(repository.ChunksKey(e.id)))

	e.mr.FastForward(DefaultTTL + time.Second)

	_, err = e.chunks.SaveChunk(ctx, e.id, 1, 3, imagesJSON(51, 50))
	assert.ErrorIs(t, err, models.ErrChunkSequenceExpired)

	g, err := e.galleries.Load(ctx, e.id)
	require.NoError(t, err)
	assert.Equal(t, []int64{900, 901}, g.ImageIDs())
}

func TestChunkService_ChunkZeroRestarts(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	_, err := e.chunks.SaveChunk(ctx, e.id, 0, 2, imagesJSON(1, 3))
	require.NoError(t, err)
	_, err = e.chunks.SaveChunk(ctx, e.id, 0, 2, imagesJSON(10, 2))
	require.NoError(t, err)

	pending, err := e.chunks.Pending(ctx, e.id)
	require.NoError(t, err)
	assert.Equal(t, 2, pending)

	res, err := e.chunks.SaveChunk(ctx, e.id, 1, 2, imagesJSON(20, 1))
	require.NoError(t, err)
	assert.True(t, res.Committed)

	g, err := e.galleries.Load(ctx, e.id)
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 11, 20}, g.ImageIDs())
}

func TestChunkService_ResentMiddleChunk(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	_, err := e.chunks.SaveChunk(ctx, e.id, 0, 3, imagesJSON(1, 2))
	require.NoError(t, err)
	_, err = e.chunks.SaveChunk(ctx, e.id, 1, 3, imagesJSON(3, 2))
	require.NoError(t, err)
	res, err := e.chunks.SaveChunk(ctx, e.id, 1, 3, imagesJSON(3, 2))
	require.NoError(t, err)

	// накопление дублирует повторную порцию
	assert.Equal(t, 6, res.Received)

	res, err = e.chunks.SaveChunk(ctx, e.id, 2, 3, imagesJSON(5, 1))
	require.NoError(t, err)
	assert.Equal(t, 5, res.Received)

	g, err := e.galleries.Load(ctx, e.id)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, g.ImageIDs())
}

func TestChunkService_SingleChunkCommitsImmediately(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	res, err := e.chunks.SaveChunk(ctx, e.id, 0, 1, []byte(`[{"id":7,"title":"<b>x</b>","link":"javascript:1"}]`))
	require.NoError(t, err)
	assert.True(t, res.Committed)

	g, err := e.galleries.Load(ctx, e.id)
	require.NoError(t, err)
	require.Len(t, g.Images, 1)
	assert.Equal(t, "x", g.Images[0].Title)
	assert.Equal(t, "", g.Images[0].Link)
	assert.False(t, e.mr.Exists(repository.ChunksKey(e.id)))
}

func TestChunkService_Validation(t *testing.T) {
	ctx := context.Background()
	committer := new(MockImageCommitter)
	committer.On("GetGallery", mock.Anything, int64(1)).Return(models.GalleryRecord{ID: 1}, nil)
	committer.On("GetGallery", mock.Anything, int64(2)).Return(models.GalleryRecord{}, models.ErrGalleryNotFound)

	svc := NewChunkService(slogdiscard.NewDiscardLogger(), repository.NewMemoryRepo(memory.New()), committer, 0)

	tests := []struct {
		name    string
		gallery int64
		index   int
		total   int
		payload string
		wantErr error
	}{
		{name: "zero total", gallery: 1, index: 0, total: 0, payload: `[]`, wantErr: models.ErrValidation},
		{name: "negative index", gallery: 1, index: -1, total: 2, payload: `[]`, wantErr: models.ErrValidation},
		{name: "missing gallery id", gallery: 0, index: 0, total: 2, payload: `[]`, wantErr: models.ErrValidation},
		{name: "bad json", gallery: 1, index: 0, total: 2, payload: `{"id":1}`, wantErr: models.ErrValidation},
		{name: "unknown gallery", gallery: 2, index: 0, total: 2, payload: `[]`, wantErr: models.ErrGalleryNotFound},
		{name: "middle chunk without start", gallery: 1, index: 1, total: 3, payload: `[]`, wantErr: models.ErrChunkSequenceExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SaveChunk(ctx, tt.gallery, tt.index, tt.total, []byte(tt.payload))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	committer.AssertNotCalled(t, "ReplaceImages", mock.Anything, mock.Anything, mock.Anything)
}

func TestChunkService_CommitFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	committer := new(MockImageCommitter)
	committer.On("GetGallery", mock.Anything, int64(1)).Return(models.GalleryRecord{ID: 1}, nil)
	committer.On("ReplaceImages", mock.Anything, int64(1), mock.Anything).Return(nil, errors.New("db down"))

	store := repository.NewMemoryRepo(memory.New())
	svc := NewChunkService(slogdiscard.NewDiscardLogger(), store, committer, time.Minute)

	_, err := svc.SaveChunk(ctx, 1, 0, 2, imagesJSON(1, 2))
	require.NoError(t, err)

	_, err = svc.SaveChunk(ctx, 1, 1, 2, imagesJSON(3, 1))
	assert.ErrorContains(t, err, "db down")

	pending, err := svc.Pending(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, pending)
}
