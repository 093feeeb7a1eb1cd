package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"portfolio_gallery/internal/domain/models"
	"portfolio_gallery/internal/transport/http/dto/request"
	"portfolio_gallery/internal/transport/http/dto/response"

	"github.com/labstack/echo/v4"
)

func galleryView(rec models.GalleryRecord, g *models.Gallery) response.Gallery {
	images := g.Images
	if images == nil {
		images = []models.Image{}
	}
	return response.Gallery{Gallery: rec, Settings: g.Settings, Images: images}
}

// ListGalleries godoc
// @Summary Список галерей
// @Tags galleries
// @Produce json
// @Param status query string false "draft, published, archived или all"
// @Param page query int false "Страница" default(1)
// @Param per_page query int false "Размер страницы" default(20)
// @Success 200 {object} response.Response{data=response.GalleryList}
// @Failure 400 {object} response.Response
// @Router /api/v1/galleries [get]
func (r *Routers) ListGalleries(c echo.Context) error {
	const op = "http.routers.ListGalleries"

	log := r.log.With(
		slog.String("op", op),
	)

	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(c.QueryParam("per_page"))
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	items, total, err := r.GalleryService.ListGalleries(c.Request().Context(), c.QueryParam("status"), page, perPage)
	if err != nil {
		return r.fail(c, log, err)
	}
	if items == nil {
		items = []models.GalleryRecord{}
	}

	return c.JSON(http.StatusOK, response.OK(response.GalleryList{
		Galleries: items,
		Total:     total,
		Page:      page,
		PerPage:   perPage,
	}))
}

// CreateGallery godoc
// @Summary Создать галерею
// @Description Создаёт галерею с настройками по умолчанию. Автор текущий пользователь.
// @Tags galleries
// @Accept json
// @Produce json
// @Param request body request.CreateGalleryRequest true "Галерея"
// @Success 201 {object} response.Response{data=response.Gallery}
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /api/v1/galleries [post]
func (r *Routers) CreateGallery(c echo.Context) error {
	const op = "http.routers.CreateGallery"

	log := r.log.With(
		slog.String("op", op),
	)

	var req request.CreateGalleryRequest
	if ok, err := r.bind(c, &req); !ok {
		return err
	}

	ctx := c.Request().Context()

	rec, err := r.GalleryService.CreateGallery(ctx, req.Title, currentUser(c).Name, req.Status)
	if err != nil {
		return r.fail(c, log, err)
	}

	g, err := r.GalleryService.Load(ctx, rec.ID)
	if err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusCreated, response.OK(galleryView(rec, g)))
}

// GetGallery godoc
// @Summary Галерея с настройками и изображениями
// @Tags galleries
// @Produce json
// @Param id path int true "ID галереи"
// @Success 200 {object} response.Response{data=response.Gallery}
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/galleries/{id} [get]
func (r *Routers) GetGallery(c echo.Context) error {
	const op = "http.routers.GetGallery"

	log := r.log.With(
		slog.String("op", op),
	)

	id, err := galleryID(c)
	if err != nil {
		return r.fail(c, log, err)
	}

	ctx := c.Request().Context()

	rec, err := r.GalleryService.GetGallery(ctx, id)
	if err != nil {
		return r.fail(c, log, err)
	}

	g, err := r.GalleryService.Load(ctx, id)
	if err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusOK, response.OK(galleryView(rec, g)))
}

// DeleteGallery godoc
// @Summary Удалить галерею
// @Tags galleries
// @Produce json
// @Param id path int true "ID галереи"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/galleries/{id} [delete]
func (r *Routers) DeleteGallery(c echo.Context) error {
	const op = "http.routers.DeleteGallery"

	log := r.log.With(
		slog.String("op", op),
	)

	id, err := galleryID(c)
	if err != nil {
		return r.fail(c, log, err)
	}

	if err := r.GalleryService.DeleteGallery(c.Request().Context(), id); err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusOK, response.OK(nil))
}

// UpdateSettings godoc
// @Summary Изменить настройки галереи
// @Description Значения приводятся к типам схемы. Ошибки приведения не отклоняют запрос.
// @Tags galleries
// @Accept json
// @Produce json
// @Param id path int true "ID галереи"
// @Param request body request.SettingsRequest true "Настройки"
// @Success 200 {object} response.Response{data=response.Gallery}
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/galleries/{id}/settings [put]
func (r *Routers) UpdateSettings(c echo.Context) error {
	const op = "http.routers.UpdateSettings"

	log := r.log.With(
		slog.String("op", op),
	)

	id, err := galleryID(c)
	if err != nil {
		return r.fail(c, log, err)
	}

	var req request.SettingsRequest
	if ok, err := r.bind(c, &req); !ok {
		return err
	}

	ctx := c.Request().Context()

	g, err := r.GalleryService.ApplySettings(ctx, id, req.Settings, req.Form)
	if err != nil {
		return r.fail(c, log, err)
	}

	rec, err := r.GalleryService.GetGallery(ctx, id)
	if err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusOK, response.OK(galleryView(rec, g)))
}

// SaveGallery godoc
// @Summary Сохранить галерею из редактора
// @Description Настройки формы (отсутствующие флажки = false) и список изображений. images = "__UNCHANGED__" или "__CHUNKED_SAVE__" оставляет изображения как есть.
// @Tags galleries
// @Accept json
// @Produce json
// @Param id path int true "ID галереи"
// @Param request body request.SaveRequest true "Данные редактора"
// @Success 200 {object} response.Response{data=response.Gallery}
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/galleries/{id}/save [post]
func (r *Routers) SaveGallery(c echo.Context) error {
	const op = "http.routers.SaveGallery"

	log := r.log.With(
		slog.String("op", op),
	)

	id, err := galleryID(c)
	if err != nil {
		return r.fail(c, log, err)
	}

	var req request.SaveRequest
	if ok, err := r.bind(c, &req); !ok {
		return err
	}

	images, err := request.ParseImages(req.Images)
	if err != nil {
		return r.fail(c, log, err)
	}

	ctx := c.Request().Context()

	g, err := r.GalleryService.SaveFull(ctx, id, req.Settings, images)
	if err != nil {
		return r.fail(c, log, err)
	}

	rec, err := r.GalleryService.GetGallery(ctx, id)
	if err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusOK, response.OK(galleryView(rec, g)))
}

// AddImages godoc
// @Summary Добавить изображения
// @Description Изображения с уже существующими id пропускаются.
// @Tags images
// @Accept json
// @Produce json
// @Param id path int true "ID галереи"
// @Param request body request.ImagesRequest true "Изображения"
// @Success 200 {object} response.Response{data=response.Images}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/galleries/{id}/images [post]
func (r *Routers) AddImages(c echo.Context) error {
	const op = "http.routers.AddImages"

	log := r.log.With(
		slog.String("op", op),
	)

	id, err := galleryID(c)
	if err != nil {
		return r.fail(c, log, err)
	}

	var req request.ImagesRequest
	if ok, err := r.bind(c, &req); !ok {
		return err
	}

	g, added, err := r.GalleryService.AddImages(c.Request().Context(), id, req.Images)
	if err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusOK, response.OK(response.Images{Count: added, Images: g.Images}))
}

// RemoveImages godoc
// @Summary Удалить изображения из галереи
// @Tags images
// @Accept json
// @Produce json
// @Param id path int true "ID галереи"
// @Param request body request.ImageIDsRequest true "ID изображений"
// @Success 200 {object} response.Response{data=response.Images}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/galleries/{id}/images/remove [post]
func (r *Routers) RemoveImages(c echo.Context) error {
	const op = "http.routers.RemoveImages"

	log := r.log.With(
		slog.String("op", op),
	)

	id, err := galleryID(c)
	if err != nil {
		return r.fail(c, log, err)
	}

	var req request.ImageIDsRequest
	if ok, err := r.bind(c, &req); !ok {
		return err
	}

	g, removed, err := r.GalleryService.RemoveImages(c.Request().Context(), id, req.ImageIDs)
	if err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusOK, response.OK(response.Images{Count: removed, Images: g.Images}))
}

// ReorderImages godoc
// @Summary Изменить порядок изображений
// @Description Не упомянутые изображения остаются в конце в прежнем порядке.
// @Tags images
// @Accept json
// @Produce json
// @Param id path int true "ID галереи"
// @Param request body request.ImageOrderRequest true "Новый порядок"
// @Success 200 {object} response.Response{data=response.Images}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/galleries/{id}/images/order [put]
func (r *Routers) ReorderImages(c echo.Context) error {
	const op = "http.routers.ReorderImages"

	log := r.log.With(
		slog.String("op", op),
	)

	id, err := galleryID(c)
	if err != nil {
		return r.fail(c, log, err)
	}

	var req request.ImageOrderRequest
	if ok, err := r.bind(c, &req); !ok {
		return err
	}

	g, err := r.GalleryService.ReorderImages(c.Request().Context(), id, req.ImageIDs)
	if err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusOK, response.OK(response.Images{Count: len(g.Images), Images: g.Images}))
}

// UpdateImage godoc
// @Summary Изменить поля одного изображения
// @Tags images
// @Accept json
// @Produce json
// @Param id path int true "ID галереи"
// @Param image_id path int true "ID изображения"
// @Param request body models.ImagePatch true "Изменяемые поля"
// @Success 200 {object} response.Response{data=models.Image}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/galleries/{id}/images/{image_id} [patch]
func (r *Routers) UpdateImage(c echo.Context) error {
	const op = "http.routers.UpdateImage"

	log := r.log.With(
		slog.String("op", op),
	)

	id, err := galleryID(c)
	if err != nil {
		return r.fail(c, log, err)
	}

	imageID, err := strconv.ParseInt(c.Param("image_id"), 10, 64)
	if err != nil || imageID <= 0 {
		return r.fail(c, log, models.ErrValidation)
	}

	var patch models.ImagePatch
	if err := c.Bind(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	img, err := r.GalleryService.UpdateImage(c.Request().Context(), id, imageID, patch)
	if err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusOK, response.OK(img))
}

// SaveChunk godoc
// @Summary Порция изображений при сохранении большой галереи
// @Description Порции 0..total-1 отправляются по порядку. Последняя заменяет список изображений целиком.
// @Tags images
// @Accept json
// @Produce json
// @Param id path int true "ID галереи"
// @Param request body request.ChunkRequest true "Порция"
// @Success 200 {object} response.Response{data=models.ChunkResult}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/galleries/{id}/chunks [post]
func (r *Routers) SaveChunk(c echo.Context) error {
	const op = "http.routers.SaveChunk"

	log := r.log.With(
		slog.String("op", op),
	)

	id, err := galleryID(c)
	if err != nil {
		return r.fail(c, log, err)
	}

	var req request.ChunkRequest
	if ok, err := r.bind(c, &req); !ok {
		return err
	}

	res, err := r.ChunkService.SaveChunk(c.Request().Context(), id, req.ChunkIndex, req.TotalChunks, req.Payload())
	if err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusOK, response.OK(res))
}

// ChunkStatus godoc
// @Summary Состояние порционного сохранения
// @Description Сколько изображений накоплено из уже полученных порций. После записи последней порции или истечения срока накопление пустое.
// @Tags images
// @Produce json
// @Param id path int true "ID галереи"
// @Success 200 {object} response.Response{data=response.ChunkStatus}
// @Failure 404 {object} response.Response
// @Router /api/v1/galleries/{id}/chunks [get]
func (r *Routers) ChunkStatus(c echo.Context) error {
	const op = "http.routers.ChunkStatus"

	log := r.log.With(
		slog.String("op", op),
	)

	id, err := galleryID(c)
	if err != nil {
		return r.fail(c, log, err)
	}

	pending, err := r.ChunkService.Pending(c.Request().Context(), id)
	if err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusOK, response.OK(response.ChunkStatus{
		InProgress: pending > 0,
		Pending:    pending,
	}))
}

// DuplicateGallery godoc
// @Summary Копия галереи
// @Description Новая галерея-черновик с теми же настройками и изображениями.
// @Tags galleries
// @Produce json
// @Param id path int true "ID галереи"
// @Success 201 {object} response.Response{data=models.GalleryRecord}
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/galleries/{id}/duplicate [post]
func (r *Routers) DuplicateGallery(c echo.Context) error {
	const op = "http.routers.DuplicateGallery"

	log := r.log.With(
		slog.String("op", op),
	)

	id, err := galleryID(c)
	if err != nil {
		return r.fail(c, log, err)
	}

	rec, err := r.GalleryService.Duplicate(c.Request().Context(), id, currentUser(c).Name)
	if err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusCreated, response.OK(rec))
}

// GetLegacy godoc
// @Summary Запись галереи в старом формате
// @Tags galleries
// @Produce json
// @Param id path int true "ID галереи"
// @Success 200 {object} response.Response{data=models.LegacyRecord}
// @Failure 404 {object} response.Response
// @Router /api/v1/galleries/{id}/legacy [get]
func (r *Routers) GetLegacy(c echo.Context) error {
	const op = "http.routers.GetLegacy"

	log := r.log.With(
		slog.String("op", op),
	)

	id, err := galleryID(c)
	if err != nil {
		return r.fail(c, log, err)
	}

	rec, err := r.LegacyService.Legacy(c.Request().Context(), id)
	if err != nil {
		return r.fail(c, log, err)
	}
	if rec == nil {
		return c.JSON(http.StatusNotFound, response.Fail(response.CodeNotFound, "Gallery has no legacy record"))
	}

	return c.JSON(http.StatusOK, response.OK(rec))
}
