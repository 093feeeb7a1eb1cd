package http

import (
	"log/slog"
	"net/http"

	"portfolio_gallery/internal/transport/http/dto/request"
	"portfolio_gallery/internal/transport/http/dto/response"

	"github.com/labstack/echo/v4"
)

// MigrationStatus godoc
// @Summary Состояние миграции
// @Tags migration
// @Produce json
// @Success 200 {object} response.Response{data=models.MigrationStatus}
// @Failure 403 {object} response.Response
// @Router /api/v1/migration/status [get]
func (r *Routers) MigrationStatus(c echo.Context) error {
	const op = "http.routers.MigrationStatus"

	status, err := r.MigrationService.Status(c.Request().Context())
	if err != nil {
		return r.fail(c, r.log.With(slog.String("op", op)), err)
	}

	return c.JSON(http.StatusOK, response.OK(status))
}

// RunMigration godoc
// @Summary Мигрировать все галереи
// @Tags migration
// @Accept json
// @Produce json
// @Param request body request.MigrateRequest false "force мигрирует и уже перенесённые галереи"
// @Success 200 {object} response.Response{data=response.BatchResult}
// @Failure 403 {object} response.Response
// @Router /api/v1/migration/run [post]
func (r *Routers) RunMigration(c echo.Context) error {
	const op = "http.routers.RunMigration"

	log := r.log.With(
		slog.String("op", op),
	)

	var req request.MigrateRequest
	if ok, err := r.bind(c, &req); !ok {
		return err
	}

	n, err := r.MigrationService.RunBatch(c.Request().Context(), req.Force)
	if err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusOK, response.OK(response.BatchResult{
		Migrated: n,
		Message:  "Migration completed",
	}))
}

// MigrateGallery godoc
// @Summary Мигрировать одну галерею
// @Tags migration
// @Accept json
// @Produce json
// @Param id path int true "ID галереи"
// @Param request body request.MigrateRequest false "force"
// @Success 200 {object} response.Response{data=map[string]bool}
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/migration/galleries/{id} [post]
func (r *Routers) MigrateGallery(c echo.Context) error {
	const op = "http.routers.MigrateGallery"

	log := r.log.With(
		slog.String("op", op),
	)

	id, err := galleryID(c)
	if err != nil {
		return r.fail(c, log, err)
	}

	var req request.MigrateRequest
	if ok, err := r.bind(c, &req); !ok {
		return err
	}

	migrated, err := r.MigrationService.Migrate(c.Request().Context(), id, req.Force)
	if err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusOK, response.OK(map[string]bool{"migrated": migrated}))
}

// GalleryBackups godoc
// @Summary Резервные копии галереи
// @Tags migration
// @Produce json
// @Param id path int true "ID галереи"
// @Success 200 {object} response.Response{data=[]string}
// @Router /api/v1/migration/galleries/{id}/backups [get]
func (r *Routers) GalleryBackups(c echo.Context) error {
	const op = "http.routers.GalleryBackups"

	log := r.log.With(
		slog.String("op", op),
	)

	id, err := galleryID(c)
	if err != nil {
		return r.fail(c, log, err)
	}

	keys, err := r.MigrationService.Backups(c.Request().Context(), id)
	if err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusOK, response.OK(keys))
}

// RestoreBackup godoc
// @Summary Восстановить галерею из резервной копии
// @Tags migration
// @Accept json
// @Produce json
// @Param request body request.RestoreRequest true "Ключ копии"
// @Success 200 {object} response.Response{data=models.Gallery}
// @Failure 404 {object} response.Response
// @Router /api/v1/migration/restore [post]
func (r *Routers) RestoreBackup(c echo.Context) error {
	const op = "http.routers.RestoreBackup"

	log := r.log.With(
		slog.String("op", op),
	)

	var req request.RestoreRequest
	if ok, err := r.bind(c, &req); !ok {
		return err
	}

	g, err := r.MigrationService.Restore(c.Request().Context(), req.Key)
	if err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusOK, response.OK(g))
}

// GetPluginSettings godoc
// @Summary Настройки плагина
// @Tags settings
// @Produce json
// @Success 200 {object} response.Response{data=models.PluginSettings}
// @Router /api/v1/settings [get]
func (r *Routers) GetPluginSettings(c echo.Context) error {
	const op = "http.routers.GetPluginSettings"

	ps, err := r.SettingsService.Get(c.Request().Context())
	if err != nil {
		return r.fail(c, r.log.With(slog.String("op", op)), err)
	}

	return c.JSON(http.StatusOK, response.OK(ps))
}

// UpdatePluginSettings godoc
// @Summary Изменить настройки плагина
// @Tags settings
// @Accept json
// @Produce json
// @Param request body request.PluginSettingsRequest true "Настройки"
// @Success 200 {object} response.Response{data=models.PluginSettings}
// @Failure 400 {object} response.Response
// @Router /api/v1/settings [put]
func (r *Routers) UpdatePluginSettings(c echo.Context) error {
	const op = "http.routers.UpdatePluginSettings"

	log := r.log.With(
		slog.String("op", op),
	)

	var req request.PluginSettingsRequest
	if ok, err := r.bind(c, &req); !ok {
		return err
	}

	ps, err := r.SettingsService.Update(c.Request().Context(), req.ChunkSize, req.DefaultSettingsOverrides)
	if err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusOK, response.OK(ps))
}
