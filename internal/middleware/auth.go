package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"portfolio_gallery/internal/domain/models"
	"portfolio_gallery/internal/lib/logger/sl"
	"portfolio_gallery/internal/transport/http/dto/response"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

const (
	SessionName = "pfg_session"
	NonceHeader = "X-PFG-Nonce"

	sessionUserKey = "user"
	userContextKey = "pfg.user"
)

// Действия, к которым привязываются токены запросов.
const (
	ActionGallery   = "pfg_gallery"
	ActionFilters   = "pfg_filters"
	ActionMigration = "pfg_migration"
	ActionSettings  = "pfg_settings"
)

type UserLookup interface {
	User(ctx context.Context, name string) (models.User, error)
}

type GalleryLookup interface {
	GetGallery(ctx context.Context, id int64) (models.GalleryRecord, error)
}

type NonceVerifier interface {
	Verify(token, user, action string) error
}

// SessionUser кладёт в контекст пользователя из cookie-сессии, если он есть.
func SessionUser(log *slog.Logger, users UserLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess, err := session.Get(SessionName, c)
			if err != nil {
				log.Debug("session unavailable", sl.Err(err))
				return next(c)
			}

			name, _ := sess.Values[sessionUserKey].(string)
			if name == "" {
				return next(c)
			}

			user, err := users.User(c.Request().Context(), name)
			if err != nil {
				log.Warn("session user rejected", slog.String("user", name), sl.Err(err))
				return next(c)
			}

			c.Set(userContextKey, user)
			return next(c)
		}
	}
}

func CurrentUser(c echo.Context) (models.User, bool) {
	user, ok := c.Get(userContextKey).(models.User)
	return user, ok
}

func StartSession(c echo.Context, user models.User) error {
	sess, err := session.Get(SessionName, c)
	if err != nil {
		return err
	}
	sess.Values[sessionUserKey] = user.Name
	return sess.Save(c.Request(), c.Response())
}

func EndSession(c echo.Context) error {
	sess, err := session.Get(SessionName, c)
	if err != nil {
		return err
	}
	delete(sess.Values, sessionUserKey)
	sess.Options.MaxAge = -1
	return sess.Save(c.Request(), c.Response())
}

func RequireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := CurrentUser(c); !ok {
			return c.JSON(http.StatusForbidden, response.ErrLoginRequired)
		}
		return next(c)
	}
}

// VerifyNonce проверяет токен действия до любого чтения или записи.
func VerifyNonce(v NonceVerifier, action string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := CurrentUser(c)
			if !ok {
				return c.JSON(http.StatusForbidden, response.ErrLoginRequired)
			}

			token := c.Request().Header.Get(NonceHeader)
			if token == "" {
				token = c.QueryParam("nonce")
			}

			if err := v.Verify(token, user.Name, action); err != nil {
				return c.JSON(http.StatusForbidden, response.ErrInvalidNonce)
			}
			return next(c)
		}
	}
}

func RequireCapability(check func(models.User) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := CurrentUser(c)
			if !ok {
				return c.JSON(http.StatusForbidden, response.ErrLoginRequired)
			}
			if !check(user) {
				return c.JSON(http.StatusForbidden, response.ErrPermissionDenied)
			}
			return next(c)
		}
	}
}

// RequireGalleryEditor проверяет право на редактирование галереи из параметра :id.
func RequireGalleryEditor(galleries GalleryLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := CurrentUser(c)
			if !ok {
				return c.JSON(http.StatusForbidden, response.ErrLoginRequired)
			}

			id, err := strconv.ParseInt(c.Param("id"), 10, 64)
			if err != nil || id <= 0 {
				return c.JSON(http.StatusBadRequest, response.Fail(response.CodeInvalidRequest, "Invalid gallery id"))
			}

			g, err := galleries.GetGallery(c.Request().Context(), id)
			if err != nil {
				if errors.Is(err, models.ErrGalleryNotFound) {
					return c.JSON(http.StatusNotFound, response.Fail(response.CodeNotFound, "Gallery not found"))
				}
				return c.JSON(http.StatusInternalServerError, response.ErrInternal)
			}

			if !user.CanEditGallery(g) {
				return c.JSON(http.StatusForbidden, response.ErrPermissionDenied)
			}
			return next(c)
		}
	}
}
