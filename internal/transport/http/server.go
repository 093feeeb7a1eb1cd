package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"portfolio_gallery/internal/domain/models"
	"portfolio_gallery/internal/domain/schema"
	"portfolio_gallery/internal/lib/logger/sl"
	mw "portfolio_gallery/internal/middleware"
	"portfolio_gallery/internal/transport/http/dto/request"
	"portfolio_gallery/internal/transport/http/dto/response"

	"github.com/labstack/echo/v4"

	_ "portfolio_gallery/docs"
)

type GalleryService interface {
	CreateGallery(ctx context.Context, title, author, status string) (models.GalleryRecord, error)
	GetGallery(ctx context.Context, id int64) (models.GalleryRecord, error)
	ListGalleries(ctx context.Context, status string, page, perPage int) ([]models.GalleryRecord, int, error)
	DeleteGallery(ctx context.Context, id int64) error
	Load(ctx context.Context, id int64) (*models.Gallery, error)
	ApplySettings(ctx context.Context, id int64, raw map[string]any, form bool) (*models.Gallery, error)
	SaveFull(ctx context.Context, id int64, raw map[string]any, images models.ImagesUpdate) (*models.Gallery, error)
	AddImages(ctx context.Context, id int64, images []models.Image) (*models.Gallery, int, error)
	RemoveImages(ctx context.Context, id int64, imageIDs []int64) (*models.Gallery, int, error)
	ReorderImages(ctx context.Context, id int64, imageIDs []int64) (*models.Gallery, error)
	UpdateImage(ctx context.Context, id, imageID int64, patch models.ImagePatch) (models.Image, error)
	Duplicate(ctx context.Context, id int64, author string) (models.GalleryRecord, error)
}

type LegacyService interface {
	Legacy(ctx context.Context, galleryID int64) (*models.LegacyRecord, error)
}

type ChunkService interface {
	SaveChunk(ctx context.Context, galleryID int64, chunkIndex, totalChunks int, payload []byte) (models.ChunkResult, error)
	Pending(ctx context.Context, galleryID int64) (int, error)
}

type FilterService interface {
	List(ctx context.Context) ([]models.Filter, error)
	Tree(ctx context.Context) ([]*models.FilterNode, error)
	Add(ctx context.Context, name, parent, color string) (models.Filter, error)
	Update(ctx context.Context, id string, upd models.FilterUpdate) (models.Filter, error)
	SetParent(ctx context.Context, id, parent string) (models.Filter, error)
	SetColor(ctx context.Context, id, color string) (models.Filter, error)
	SetSlug(ctx context.Context, id, value string) (models.Filter, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) (int, error)
	Reorder(ctx context.Context, ids []string) ([]models.Filter, error)
}

type MigrationService interface {
	Status(ctx context.Context) (models.MigrationStatus, error)
	RunBatch(ctx context.Context, force bool) (int, error)
	Migrate(ctx context.Context, id int64, force bool) (bool, error)
	Restore(ctx context.Context, key string) (*models.Gallery, error)
	Backups(ctx context.Context, galleryID int64) ([]string, error)
}

type SettingsService interface {
	Get(ctx context.Context) (models.PluginSettings, error)
	Update(ctx context.Context, chunkSize *int, overrides map[string]any) (models.PluginSettings, error)
}

type UserService interface {
	Login(ctx context.Context, name, password string) (models.User, error)
}

type NonceIssuer interface {
	Create(user, action string) (string, error)
}

type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type Routers struct {
	log              *slog.Logger
	GalleryService   GalleryService
	LegacyService    LegacyService
	ChunkService     ChunkService
	FilterService    FilterService
	MigrationService MigrationService
	SettingsService  SettingsService
	UserService      UserService
	Nonces           NonceIssuer
	Health           map[string]HealthChecker
}

func NewRouter(log *slog.Logger, routers Routers) *Routers {
	routers.log = log
	if routers.Health == nil {
		routers.Health = map[string]HealthChecker{}
	}
	return &routers
}

var nonceActions = map[string]bool{
	mw.ActionGallery:   true,
	mw.ActionFilters:   true,
	mw.ActionMigration: true,
	mw.ActionSettings:  true,
}

type errorMapping struct {
	err     error
	status  int
	code    string
	message string
}

var errorMappings = []errorMapping{
	{models.ErrValidation, http.StatusBadRequest, response.CodeInvalidRequest, "Invalid request data"},
	{models.ErrFilterCycle, http.StatusBadRequest, response.CodeInvalidRequest, "A filter cannot be moved under its own descendant"},
	{schema.ErrUnknownKey, http.StatusBadRequest, response.CodeInvalidRequest, "Unknown setting"},
	{models.ErrForbidden, http.StatusForbidden, response.CodeForbidden, "You do not have permission to do this"},
	{models.ErrGalleryNotFound, http.StatusNotFound, response.CodeNotFound, "Gallery not found"},
	{models.ErrFilterNotFound, http.StatusNotFound, response.CodeNotFound, "Filter not found"},
	{models.ErrBackupNotFound, http.StatusNotFound, response.CodeNotFound, "Backup not found"},
	{models.ErrImageNotFound, http.StatusNotFound, response.CodeNotFound, "Image not found"},
	{models.ErrSlugTaken, http.StatusConflict, response.CodeConflict, "Slug is already used by another filter"},
	{models.ErrChunkSequenceExpired, http.StatusConflict, response.CodeConflict, "Upload session expired, please save again"},
	{models.ErrNothingToMigrate, http.StatusConflict, response.CodeConflict, "Gallery has no legacy data to migrate"},
}

// fail отвечает конвертом ошибки со статусом по доменной ошибке.
func (r *Routers) fail(c echo.Context, log *slog.Logger, err error) error {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			log.Warn("request rejected", slog.Int("status", m.status), sl.Err(err))
			return c.JSON(m.status, response.Fail(m.code, m.message))
		}
	}

	log.Error("request failed", sl.Err(err))
	return c.JSON(http.StatusInternalServerError, response.ErrInternal)
}

// bind разбирает и проверяет тело запроса. При false ответ уже отправлен.
func (r *Routers) bind(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, response.Fail(response.CodeInvalidRequest, err.Error()))
	}
	return true, nil
}

func galleryID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, models.ErrValidation
	}
	return id, nil
}

func currentUser(c echo.Context) models.User {
	user, _ := mw.CurrentUser(c)
	return user
}

// Login godoc
// @Summary Вход в админку
// @Description Проверяет пароль и открывает cookie-сессию.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body request.LoginRequest true "Данные для входа"
// @Success 200 {object} response.Response{data=response.Login}
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /api/v1/login [post]
func (r *Routers) Login(c echo.Context) error {
	const op = "http.routers.Login"

	log := r.log.With(
		slog.String("op", op),
	)

	var req request.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if err := c.Validate(req); err != nil {
		log.Warn("invalid format request", slog.String("username", req.Username))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	user, err := r.UserService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
	}

	if err := mw.StartSession(c, user); err != nil {
		log.Error("failed to save session", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.OK(response.Login{User: user.Name, Role: string(user.Role)}))
}

// Logout godoc
// @Summary Выход
// @Tags auth
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/logout [post]
func (r *Routers) Logout(c echo.Context) error {
	if err := mw.EndSession(c); err != nil {
		r.log.Error("failed to end session", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}
	return c.JSON(http.StatusOK, response.OK(nil))
}

// Nonce godoc
// @Summary Токен действия
// @Description Выдаёт токен для заголовка X-PFG-Nonce. Действия: pfg_gallery, pfg_filters, pfg_migration, pfg_settings.
// @Tags auth
// @Produce json
// @Param action query string true "Действие"
// @Success 200 {object} response.Response{data=response.Nonce}
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /api/v1/nonce [get]
func (r *Routers) Nonce(c echo.Context) error {
	const op = "http.routers.Nonce"

	log := r.log.With(
		slog.String("op", op),
	)

	action := c.QueryParam("action")
	if !nonceActions[action] {
		return c.JSON(http.StatusBadRequest, response.Fail(response.CodeInvalidRequest, "Unknown action"))
	}

	token, err := r.Nonces.Create(currentUser(c).Name, action)
	if err != nil {
		log.Error("failed to create nonce", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.OK(response.Nonce{Action: action, Nonce: token}))
}

// HealthCheck godoc
// @Summary Проверка состояния
// @Tags health
// @Produce json
// @Success 200 {object} response.Health
// @Failure 503 {object} response.Health
// @Router /health [get]
func (r *Routers) HealthCheck(c echo.Context) error {
	ctx := c.Request().Context()

	status := http.StatusOK
	out := response.Health{Status: "ok", Services: make(map[string]string, len(r.Health))}
	for name, checker := range r.Health {
		if err := checker.HealthCheck(ctx); err != nil {
			r.log.Error("health check failed", slog.String("service", name), sl.Err(err))
			out.Services[name] = "unavailable"
			out.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		out.Services[name] = "ok"
	}

	return c.JSON(status, out)
}
