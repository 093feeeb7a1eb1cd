package http

import (
	"log/slog"
	"net/http"

	"portfolio_gallery/internal/domain/models"
	"portfolio_gallery/internal/transport/http/dto/request"
	"portfolio_gallery/internal/transport/http/dto/response"

	"github.com/labstack/echo/v4"
)

// ListFilters godoc
// @Summary Все фильтры
// @Tags filters
// @Produce json
// @Success 200 {object} response.Response{data=[]models.Filter}
// @Router /api/v1/filters [get]
func (r *Routers) ListFilters(c echo.Context) error {
	const op = "http.routers.ListFilters"

	filters, err := r.FilterService.List(c.Request().Context())
	if err != nil {
		return r.fail(c, r.log.With(slog.String("op", op)), err)
	}

	return c.JSON(http.StatusOK, response.OK(filters))
}

// FilterTree godoc
// @Summary Фильтры деревом
// @Tags filters
// @Produce json
// @Success 200 {object} response.Response{data=[]models.FilterNode}
// @Router /api/v1/filters/tree [get]
func (r *Routers) FilterTree(c echo.Context) error {
	const op = "http.routers.FilterTree"

	tree, err := r.FilterService.Tree(c.Request().Context())
	if err != nil {
		return r.fail(c, r.log.With(slog.String("op", op)), err)
	}

	return c.JSON(http.StatusOK, response.OK(tree))
}

// AddFilter godoc
// @Summary Добавить фильтр
// @Tags filters
// @Accept json
// @Produce json
// @Param request body request.CreateFilterRequest true "Фильтр"
// @Success 201 {object} response.Response{data=models.Filter}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/filters [post]
func (r *Routers) AddFilter(c echo.Context) error {
	const op = "http.routers.AddFilter"

	log := r.log.With(
		slog.String("op", op),
	)

	var req request.CreateFilterRequest
	if ok, err := r.bind(c, &req); !ok {
		return err
	}

	f, err := r.FilterService.Add(c.Request().Context(), req.Name, req.Parent, req.Color)
	if err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusCreated, response.OK(f))
}

// UpdateFilter godoc
// @Summary Изменить фильтр
// @Description Переименование не меняет slug.
// @Tags filters
// @Accept json
// @Produce json
// @Param id path string true "ID фильтра"
// @Param request body request.UpdateFilterRequest true "Изменяемые поля"
// @Success 200 {object} response.Response{data=models.Filter}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/filters/{id} [patch]
func (r *Routers) UpdateFilter(c echo.Context) error {
	const op = "http.routers.UpdateFilter"

	log := r.log.With(
		slog.String("op", op),
		slog.String("filter_id", c.Param("id")),
	)

	var req request.UpdateFilterRequest
	if ok, err := r.bind(c, &req); !ok {
		return err
	}

	f, err := r.FilterService.Update(c.Request().Context(), c.Param("id"), models.FilterUpdate{
		Name:   req.Name,
		Slug:   req.Slug,
		Parent: req.Parent,
		Color:  req.Color,
	})
	if err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusOK, response.OK(f))
}

// SetFilterParent godoc
// @Summary Переместить фильтр
// @Description Пустой parent делает фильтр корневым. Цикл отклоняется.
// @Tags filters
// @Accept json
// @Produce json
// @Param id path string true "ID фильтра"
// @Param request body request.FilterParentRequest true "Родитель"
// @Success 200 {object} response.Response{data=models.Filter}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/filters/{id}/parent [put]
func (r *Routers) SetFilterParent(c echo.Context) error {
	const op = "http.routers.SetFilterParent"

	log := r.log.With(
		slog.String("op", op),
		slog.String("filter_id", c.Param("id")),
	)

	var req request.FilterParentRequest
	if ok, err := r.bind(c, &req); !ok {
		return err
	}

	f, err := r.FilterService.SetParent(c.Request().Context(), c.Param("id"), req.Parent)
	if err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusOK, response.OK(f))
}

// SetFilterColor godoc
// @Summary Цвет фильтра
// @Tags filters
// @Accept json
// @Produce json
// @Param id path string true "ID фильтра"
// @Param request body request.FilterColorRequest true "Цвет #rrggbb"
// @Success 200 {object} response.Response{data=models.Filter}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/filters/{id}/color [put]
func (r *Routers) SetFilterColor(c echo.Context) error {
	const op = "http.routers.SetFilterColor"

	log := r.log.With(
		slog.String("op", op),
		slog.String("filter_id", c.Param("id")),
	)

	var req request.FilterColorRequest
	if ok, err := r.bind(c, &req); !ok {
		return err
	}

	f, err := r.FilterService.SetColor(c.Request().Context(), c.Param("id"), req.Color)
	if err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusOK, response.OK(f))
}

// SetFilterSlug godoc
// @Summary Slug фильтра
// @Tags filters
// @Accept json
// @Produce json
// @Param id path string true "ID фильтра"
// @Param request body request.FilterSlugRequest true "Slug"
// @Success 200 {object} response.Response{data=models.Filter}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/filters/{id}/slug [put]
func (r *Routers) SetFilterSlug(c echo.Context) error {
	const op = "http.routers.SetFilterSlug"

	log := r.log.With(
		slog.String("op", op),
		slog.String("filter_id", c.Param("id")),
	)

	var req request.FilterSlugRequest
	if ok, err := r.bind(c, &req); !ok {
		return err
	}

	f, err := r.FilterService.SetSlug(c.Request().Context(), c.Param("id"), req.Slug)
	if err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusOK, response.OK(f))
}

// DeleteFilter godoc
// @Summary Удалить фильтр
// @Description Дочерние фильтры переходят к родителю удалённого.
// @Tags filters
// @Produce json
// @Param id path string true "ID фильтра"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/filters/{id} [delete]
func (r *Routers) DeleteFilter(c echo.Context) error {
	const op = "http.routers.DeleteFilter"

	log := r.log.With(
		slog.String("op", op),
		slog.String("filter_id", c.Param("id")),
	)

	if err := r.FilterService.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusOK, response.OK(nil))
}

// DeleteAllFilters godoc
// @Summary Удалить все фильтры
// @Tags filters
// @Produce json
// @Success 200 {object} response.Response{data=map[string]int}
// @Router /api/v1/filters [delete]
func (r *Routers) DeleteAllFilters(c echo.Context) error {
	const op = "http.routers.DeleteAllFilters"

	n, err := r.FilterService.DeleteAll(c.Request().Context())
	if err != nil {
		return r.fail(c, r.log.With(slog.String("op", op)), err)
	}

	return c.JSON(http.StatusOK, response.OK(map[string]int{"deleted": n}))
}

// ReorderFilters godoc
// @Summary Порядок фильтров
// @Description Порядок задаётся внутри каждого уровня. Не упомянутые фильтры сохраняют свой порядок.
// @Tags filters
// @Accept json
// @Produce json
// @Param request body request.FilterOrderRequest true "ID фильтров"
// @Success 200 {object} response.Response{data=[]models.Filter}
// @Failure 400 {object} response.Response
// @Router /api/v1/filters/order [put]
func (r *Routers) ReorderFilters(c echo.Context) error {
	const op = "http.routers.ReorderFilters"

	log := r.log.With(
		slog.String("op", op),
	)

	var req request.FilterOrderRequest
	if ok, err := r.bind(c, &req); !ok {
		return err
	}

	filters, err := r.FilterService.Reorder(c.Request().Context(), req.IDs)
	if err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusOK, response.OK(filters))
}
