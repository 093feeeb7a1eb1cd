package request

type MigrateRequest struct {
	Force bool `json:"force"`
}

type RestoreRequest struct {
	Key string `json:"key" validate:"required"`
}

type PluginSettingsRequest struct {
	ChunkSize                *int           `json:"chunk_size" validate:"omitempty,min=1,max=500"`
	DefaultSettingsOverrides map[string]any `json:"default_settings_overrides"`
}
