package httpapp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"portfolio_gallery/internal/domain/models"
	mw "portfolio_gallery/internal/middleware"
	httprouters "portfolio_gallery/internal/transport/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// Guards зависимости проверок доступа.
type Guards struct {
	Users     mw.UserLookup
	Galleries mw.GalleryLookup
	Nonces    mw.NonceVerifier
}

type Server struct {
	log     *slog.Logger
	e       *echo.Echo
	routers *httprouters.Routers
	guards  Guards
	host    string
	port    string
}

func New(log *slog.Logger, sessionSecret string, host, port string, routers *httprouters.Routers, guards Guards) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = jsonSerializer{}

	validate := validator.New()
	e.Validator = &CustomValidator{validator: validate}

	store := sessions.NewCookieStore([]byte(sessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 2,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	e.Use(session.Middleware(store))

	e.Use(middleware.CORS())
	e.Use(middleware.Recover())
	e.Use(mw.PrometheusMetrics)

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogRemoteIP: true,
		LogMethod:   true,
		LogLatency:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("request",
				slog.String("method", v.Method),
				slog.String("URI", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("remote ip", v.RemoteIP),
			)

			return nil
		},
	}))

	e.Use(mw.SessionUser(log, guards.Users))

	return &Server{
		log:     log,
		e:       e,
		routers: routers,
		guards:  guards,
		host:    host,
		port:    port,
	}
}

func (s *Server) Echo() *echo.Echo {
	return s.e
}

func (s *Server) MustRun() {
	const op = "http.Server.MustRun"

	s.log.Info(op, slog.String("Start", "server"), slog.String("addr", s.addr()))

	if err := s.Start(); err != nil {
		panic(err)
	}
}

func (s *Server) addr() string {
	return fmt.Sprintf("%s:%s", s.host, s.port)
}

func (s *Server) Start() error {
	const op = "http.Server.Start"

	if err := s.e.Start(s.addr()); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("%s server stopped: %w", op, err)
	}

	return nil
}

func (s *Server) Stop() error {
	const op = "http.Server.Stop"

	optCtx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	s.log.Info("stopping", slog.String("op", op))

	if err := s.e.Shutdown(optCtx); err != nil {
		return fmt.Errorf("%s could not shutdown server gracefuly: %w", op, err)
	}

	return nil
}

// Порядок проверок: сессия, токен действия, права. Всё до обращения к данным.
func (s *Server) BuildRouters() {
	r := s.routers
	nonce := func(action string) echo.MiddlewareFunc {
		return mw.VerifyNonce(s.guards.Nonces, action)
	}
	canEdit := mw.RequireGalleryEditor(s.guards.Galleries)
	canManage := mw.RequireCapability(models.User.CanManageGalleries)
	canDelete := mw.RequireCapability(models.User.CanDeleteGalleries)
	admin := mw.RequireCapability(models.User.IsAdministrator)

	s.e.GET("/health", r.HealthCheck)
	s.e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	s.e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := s.e.Group("/api/v1")
	{
		api.POST("/login", r.Login)
		api.POST("/logout", r.Logout)
		api.GET("/nonce", r.Nonce, mw.RequireUser)

		galleries := api.Group("/galleries", mw.RequireUser)
		{
			galleries.GET("", r.ListGalleries)
			galleries.POST("", r.CreateGallery, nonce(mw.ActionGallery))
			galleries.GET("/:id", r.GetGallery, canEdit)
			galleries.GET("/:id/legacy", r.GetLegacy, canEdit)
			galleries.DELETE("/:id", r.DeleteGallery, nonce(mw.ActionGallery), canDelete, canEdit)
			galleries.PUT("/:id/settings", r.UpdateSettings, nonce(mw.ActionGallery), canEdit)
			galleries.POST("/:id/save", r.SaveGallery, nonce(mw.ActionGallery), canEdit)
			galleries.POST("/:id/duplicate", r.DuplicateGallery, nonce(mw.ActionGallery), canEdit)
			galleries.POST("/:id/images", r.AddImages, nonce(mw.ActionGallery), canEdit)
			galleries.POST("/:id/images/remove", r.RemoveImages, nonce(mw.ActionGallery), canEdit)
			galleries.PUT("/:id/images/order", r.ReorderImages, nonce(mw.ActionGallery), canEdit)
			galleries.PATCH("/:id/images/:image_id", r.UpdateImage, nonce(mw.ActionGallery), canEdit)
			galleries.GET("/:id/chunks", r.ChunkStatus, canEdit)
			galleries.POST("/:id/chunks", r.SaveChunk, nonce(mw.ActionGallery), canEdit)
		}

		filters := api.Group("/filters", mw.RequireUser)
		{
			filters.GET("", r.ListFilters)
			filters.GET("/tree", r.FilterTree)
			filters.POST("", r.AddFilter, nonce(mw.ActionFilters), canManage)
			filters.DELETE("", r.DeleteAllFilters, nonce(mw.ActionFilters), canManage)
			filters.PUT("/order", r.ReorderFilters, nonce(mw.ActionFilters), canManage)
			filters.PATCH("/:id", r.UpdateFilter, nonce(mw.ActionFilters), canManage)
			filters.DELETE("/:id", r.DeleteFilter, nonce(mw.ActionFilters), canManage)
			filters.PUT("/:id/parent", r.SetFilterParent, nonce(mw.ActionFilters), canManage)
			filters.PUT("/:id/color", r.SetFilterColor, nonce(mw.ActionFilters), canManage)
			filters.PUT("/:id/slug", r.SetFilterSlug, nonce(mw.ActionFilters), canManage)
		}

		migration := api.Group("/migration", mw.RequireUser, admin)
		{
			migration.GET("/status", r.MigrationStatus)
			migration.GET("/galleries/:id/backups", r.GalleryBackups)
			migration.POST("/run", r.RunMigration, nonce(mw.ActionMigration))
			migration.POST("/galleries/:id", r.MigrateGallery, nonce(mw.ActionMigration))
			migration.POST("/restore", r.RestoreBackup, nonce(mw.ActionMigration))
		}

		settings := api.Group("/settings", mw.RequireUser, admin)
		{
			settings.GET("", r.GetPluginSettings)
			settings.PUT("", r.UpdatePluginSettings, nonce(mw.ActionSettings))
		}
	}
}
