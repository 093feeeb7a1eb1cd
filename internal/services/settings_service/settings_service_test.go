package services

import (
	"context"
	"errors"
	"testing"

	"portfolio_gallery/internal/domain/models"
	"portfolio_gallery/internal/lib/logger/handlers/slogdiscard"
	"portfolio_gallery/internal/repository"
	"portfolio_gallery/internal/storage/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSettingsStore struct {
	mock.Mock
}

func (m *MockSettingsStore) PluginSettings(ctx context.Context) (models.PluginSettings, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.PluginSettings), args.Error(1)
}

func (m *MockSettingsStore) SavePluginSettings(ctx context.Context, ps models.PluginSettings) error {
	args := m.Called(ctx, ps)
	return args.Error(0)
}

func newService() *SettingsService {
	repo := repository.NewMemoryRepo(memory.New())
	return NewSettingsService(slogdiscard.NewDiscardLogger(), repository.NewOptionStore(repo), 0)
}

func TestSettingsService_GetDefaults(t *testing.T) {
	ps, err := newService().Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, DefaultChunkSize, ps.ChunkSize)
	assert.Empty(t, ps.DefaultSettingsOverrides)
	assert.Nil(t, ps.MigrationCompletedAt)
}

func TestSettingsService_Update(t *testing.T) {
	ctx := context.Background()

	size := func(n int) *int { return &n }

	tests := []struct {
		name      string
		chunkSize *int
		overrides map[string]any
		want      int
		wantErr   error
	}{
		{name: "chunk size", chunkSize: size(100), want: 100},
		{name: "keeps chunk size", overrides: map[string]any{"gap": "20"}, want: DefaultChunkSize},
		{name: "zero chunk size", chunkSize: size(0), wantErr: models.ErrValidation},
		{name: "too large chunk size", chunkSize: size(MaxChunkSize + 1), wantErr: models.ErrValidation},
		{name: "unknown override", overrides: map[string]any{"nope": 1}, wantErr: models.ErrValidation},
		{name: "bad override", overrides: map[string]any{"lightbox": "magnific"}, wantErr: models.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newService()

			ps, err := svc.Update(ctx, tt.chunkSize, tt.overrides)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ps.ChunkSize)

			stored, err := svc.Get(ctx)
			require.NoError(t, err)
			assert.Equal(t, ps.ChunkSize, stored.ChunkSize)
		})
	}
}

func TestSettingsService_UpdateCoercesOverrides(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	ps, err := svc.Update(ctx, nil, map[string]any{"gap": "20", "rtl": "1"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"gap": 20, "rtl": true}, ps.DefaultSettingsOverrides)
}

func TestSettingsService_StoreError(t *testing.T) {
	ctx := context.Background()
	store := new(MockSettingsStore)
	store.On("PluginSettings", ctx).Return(models.PluginSettings{ChunkSize: 20}, nil)
	store.On("SavePluginSettings", ctx, mock.Anything).Return(errors.New("db down"))

	svc := NewSettingsService(slogdiscard.NewDiscardLogger(), store, 30)

	ps, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, ps.ChunkSize)

	_, err = svc.Update(ctx, nil, nil)
	assert.Error(t, err)
	store.AssertExpectations(t)
}
