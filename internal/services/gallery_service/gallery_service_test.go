package services

import (
	"context"
	"errors"
	"testing"

	"portfolio_gallery/internal/domain/models"
	"portfolio_gallery/internal/domain/schema"
	"portfolio_gallery/internal/lib/logger/handlers/slogdiscard"
	"portfolio_gallery/internal/repository"
	"portfolio_gallery/internal/storage/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockLegacySyncer struct {
	mock.Mock
}

func (m *MockLegacySyncer) Sync(ctx context.Context, g *models.Gallery) error {
	args := m.Called(ctx, g)
	return args.Error(0)
}

type fixture struct {
	svc    *GalleryService
	repo   *repository.MemoryRepo
	legacy *MockLegacySyncer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo := repository.NewMemoryRepo(memory.New())
	legacy := new(MockLegacySyncer)
	legacy.On("Sync", mock.Anything, mock.Anything).Return(nil)

	return &fixture{
		svc:    NewGalleryService(slogdiscard.NewDiscardLogger(), repo, repository.NewMetaStore(repo), legacy),
		repo:   repo,
		legacy: legacy,
	}
}

func (f *fixture) create(t *testing.T) int64 {
	t.Helper()
	rec, err := f.svc.CreateGallery(context.Background(), "Portfolio", "ann", "")
	require.NoError(t, err)
	return rec.ID
}

func (f *fixture) rawMeta(t *testing.T, id int64, key string) []byte {
	t.Helper()
	b, err := f.repo.GetMeta(context.Background(), id, key)
	require.NoError(t, err)
	return b
}

func TestGalleryService_CreateGallery(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		title   string
		status  string
		wantErr error
	}{
		{name: "successful creation", title: "Portfolio"},
		{name: "published", title: "Portfolio", status: models.GalleryStatusPublished},
		{name: "missing title", title: "   ", wantErr: models.ErrValidation},
		{name: "bad status", title: "Portfolio", status: "deleted", wantErr: models.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			rec, err := f.svc.CreateGallery(ctx, tt.title, "ann", tt.status)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				f.legacy.AssertNotCalled(t, "Sync", mock.Anything, mock.Anything)
				return
			}

			require.NoError(t, err)
			assert.NotZero(t, rec.ID)
			f.legacy.AssertNumberOfCalls(t, "Sync", 1)
		})
	}
}

func TestGalleryService_Load_FillsDefaults(t *testing.T) {
	f := newFixture(t)

	g, err := f.svc.Load(context.Background(), 999)
	require.NoError(t, err)

	assert.Equal(t, schema.Defaults(), g.Settings)
	assert.Empty(t, g.Images)
}

func TestGalleryService_Load_MergesPartialSettings(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.create(t)

	require.NoError(t, f.repo.SetMeta(ctx, id, repository.MetaSettings, []byte(`{"columns_lg": 5, "lightbox": "bogus", "retired_key": 1}`)))

	g, err := f.svc.Load(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, 5, g.Settings["columns_lg"])
	assert.Equal(t, "built-in", g.Settings["lightbox"])
	assert.NotContains(t, g.Settings, "retired_key")
	assert.Len(t, g.Settings, len(schema.Fields()))
}

func TestGalleryService_Save_Idempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.create(t)

	g, err := f.svc.Load(ctx, id)
	require.NoError(t, err)
	require.NoError(t, g.SetSetting("gap", 30))
	g.AddImages(models.Image{ID: 1, Title: "One"}, models.Image{ID: 2})

	require.NoError(t, f.svc.Save(ctx, g))
	settingsOnce := f.rawMeta(t, id, repository.MetaSettings)
	imagesOnce := f.rawMeta(t, id, repository.MetaImages)

	require.NoError(t, f.svc.Save(ctx, g))

	assert.Equal(t, settingsOnce, f.rawMeta(t, id, repository.MetaSettings))
	assert.Equal(t, imagesOnce, f.rawMeta(t, id, repository.MetaImages))
}

func TestGalleryService_LoadSaveCycle_KeepsStoredValues(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.create(t)

	_, err := f.svc.ApplySettings(ctx, id, map[string]any{
		"all_button_text": "&amp;lt;b&amp;gt;All",
		"custom_css":      "a > b {}\n&lt;style&gt;x",
	}, false)
	require.NoError(t, err)
	_, err = f.svc.ReplaceImages(ctx, id, []models.Image{
		{ID: 1, Title: "&amp;lt;i&amp;gt;One", Description: "&lt;b&gt;bold&lt;/b&gt;\nnext", Filters: []string{"&lt;em&gt;nature"}},
	})
	require.NoError(t, err)

	settingsBefore := f.rawMeta(t, id, repository.MetaSettings)
	imagesBefore := f.rawMeta(t, id, repository.MetaImages)

	for i := 0; i < 3; i++ {
		g, err := f.svc.Load(ctx, id)
		require.NoError(t, err)
		require.NoError(t, f.svc.Save(ctx, g))

		assert.Equal(t, settingsBefore, f.rawMeta(t, id, repository.MetaSettings))
		assert.Equal(t, imagesBefore, f.rawMeta(t, id, repository.MetaImages))
	}

	g, err := f.svc.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "All", g.Settings["all_button_text"])
	assert.Equal(t, "One", g.Images[0].Title)
	assert.Equal(t, []string{"nature"}, g.Images[0].Filters)

	alt := "alt"
	img, err := f.svc.UpdateImage(ctx, id, 1, models.ImagePatch{Alt: &alt})
	require.NoError(t, err)
	assert.Equal(t, g.Images[0].Title, img.Title)
	assert.Equal(t, g.Images[0].Description, img.Description)
}

func TestGalleryService_ApplySettings(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.create(t)

	t.Run("form submit maps missing checkboxes to false", func(t *testing.T) {
		g, err := f.svc.ApplySettings(ctx, id, map[string]any{"columns_lg": "4", "lightbox": "nope", "unknown": "x"}, true)
		require.NoError(t, err)

		assert.Equal(t, 4, g.Settings["columns_lg"])
		assert.Equal(t, "built-in", g.Settings["lightbox"])
		assert.Equal(t, false, g.Settings["lazy_load"])
		assert.NotContains(t, g.Settings, "unknown")
	})

	t.Run("partial update keeps other booleans", func(t *testing.T) {
		_, err := f.svc.ApplySettings(ctx, id, map[string]any{"lazy_load": "1"}, false)
		require.NoError(t, err)

		g, err := f.svc.ApplySettings(ctx, id, map[string]any{"gap": 5}, false)
		require.NoError(t, err)
		assert.Equal(t, true, g.Settings["lazy_load"])
		assert.Equal(t, 5, g.Settings["gap"])
	})

	t.Run("missing gallery", func(t *testing.T) {
		_, err := f.svc.ApplySettings(ctx, 12345, map[string]any{"gap": 5}, false)
		assert.ErrorIs(t, err, models.ErrGalleryNotFound)
	})
}

func TestGalleryService_Images(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.create(t)

	_, added, err := f.svc.AddImages(ctx, id, []models.Image{{ID: 10}, {ID: 20}, {ID: 30}})
	require.NoError(t, err)
	assert.Equal(t, 3, added)

	g, added, err := f.svc.AddImages(ctx, id, []models.Image{{ID: 20}})
	require.NoError(t, err)
	assert.Zero(t, added)
	assert.Len(t, g.Images, 3)

	g, err = f.svc.ReorderImages(ctx, id, []int64{30})
	require.NoError(t, err)
	assert.Equal(t, []int64{30, 10, 20}, g.ImageIDs())

	title := "Renamed"
	img, err := f.svc.UpdateImage(ctx, id, 10, models.ImagePatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", img.Title)

	_, err = f.svc.UpdateImage(ctx, id, 77, models.ImagePatch{Title: &title})
	assert.ErrorIs(t, err, models.ErrImageNotFound)

	g, removed, err := f.svc.RemoveImages(ctx, id, []int64{20})
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, []int64{30, 10}, g.ImageIDs())

	loaded, err := f.svc.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, g.Images, loaded.Images)
}

func TestGalleryService_SaveFull_Sentinels(t *testing.T) {
	ctx := context.Background()

	for _, reason := range []string{models.ImagesUnchanged, models.ImagesChunkedSave} {
		t.Run(reason, func(t *testing.T) {
			f := newFixture(t)
			id := f.create(t)

			_, err := f.svc.ReplaceImages(ctx, id, []models.Image{{ID: 1, Title: "keep"}, {ID: 2}})
			require.NoError(t, err)
			before := f.rawMeta(t, id, repository.MetaImages)

			g, err := f.svc.SaveFull(ctx, id, map[string]any{"columns_lg": 2}, models.ImagesUpdate{Skip: true, Reason: reason})
			require.NoError(t, err)

			assert.Equal(t, 2, g.Settings["columns_lg"])
			assert.Equal(t, before, f.rawMeta(t, id, repository.MetaImages))
		})
	}
}

func TestGalleryService_SaveFull_ReplacesImages(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.create(t)

	g, err := f.svc.SaveFull(ctx, id, map[string]any{}, models.ImagesUpdate{
		Images: []models.Image{{ID: 5}, {ID: 6}, {ID: 5, Title: "dup"}},
	})
	require.NoError(t, err)

	assert.Equal(t, []int64{5, 6}, g.ImageIDs())
}

func TestGalleryService_LegacySyncFailure(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryRepo(memory.New())
	legacy := new(MockLegacySyncer)
	legacy.On("Sync", mock.Anything, mock.Anything).Return(errors.New("disk full"))
	svc := NewGalleryService(slogdiscard.NewDiscardLogger(), repo, repository.NewMetaStore(repo), legacy)

	_, err := svc.CreateGallery(ctx, "Portfolio", "ann", "")
	assert.ErrorContains(t, err, "disk full")
}

func TestGalleryService_Duplicate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.create(t)

	_, err := f.svc.ApplySettings(ctx, id, map[string]any{"columns_lg": 6}, false)
	require.NoError(t, err)
	_, _, err = f.svc.AddImages(ctx, id, []models.Image{{ID: 3, Filters: []string{"a"}}})
	require.NoError(t, err)

	copyRec, err := f.svc.Duplicate(ctx, id, "")
	require.NoError(t, err)
	assert.NotEqual(t, id, copyRec.ID)
	assert.Equal(t, "Portfolio (copy)", copyRec.Title)
	assert.Equal(t, "ann", copyRec.Author)

	orig, err := f.svc.Load(ctx, id)
	require.NoError(t, err)
	dup, err := f.svc.Load(ctx, copyRec.ID)
	require.NoError(t, err)
	assert.Equal(t, orig.Settings, dup.Settings)
	assert.Equal(t, orig.Images, dup.Images)

	_, err = f.svc.Duplicate(ctx, 4242, "")
	assert.ErrorIs(t, err, models.ErrGalleryNotFound)
}

func TestGalleryService_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.create(t)

	list, total, err := f.svc.ListGalleries(ctx, "all", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, list, 1)

	_, _, err = f.svc.ListGalleries(ctx, "trash", 1, 10)
	assert.ErrorIs(t, err, models.ErrValidation)

	require.NoError(t, f.svc.DeleteGallery(ctx, id))
	assert.ErrorIs(t, f.svc.DeleteGallery(ctx, id), models.ErrGalleryNotFound)
}
