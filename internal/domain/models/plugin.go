package models

import "time"

// PluginSettings общие настройки плагина.
type PluginSettings struct {
	ChunkSize                int            `json:"chunk_size"`
	MigrationCompletedAt     *time.Time     `json:"migration_completed_at,omitempty"`
	MigratedCount            int            `json:"migrated_count"`
	DefaultSettingsOverrides map[string]any `json:"default_settings_overrides,omitempty"`
}

// Backup снимок галереи перед миграцией.
type Backup struct {
	Key       string         `json:"key"`
	GalleryID int64          `json:"gallery_id"`
	CreatedAt time.Time      `json:"created_at"`
	Settings  map[string]any `json:"settings"`
	Images    []Image        `json:"images"`
	Legacy    *LegacyRecord  `json:"legacy,omitempty"`
}

// MigrationStatus сводка по миграции всех галерей.
type MigrationStatus struct {
	Total       int        `json:"total"`
	LegacyOnly  int        `json:"legacy_only"`
	Migrated    int        `json:"migrated"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Backups     []string   `json:"backups"`
}

// ChunkResult ответ на приём очередной порции изображений.
type ChunkResult struct {
	GalleryID   int64 `json:"gallery_id"`
	ChunkIndex  int   `json:"chunk_index"`
	TotalChunks int   `json:"total_chunks"`
	Received    int   `json:"received"`
	Committed   bool  `json:"committed"`
}
