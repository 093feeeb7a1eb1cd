package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	httpapp "portfolio_gallery/internal/app/http"
	"portfolio_gallery/internal/config"
	"portfolio_gallery/internal/domain/models"
	"portfolio_gallery/internal/lib/logger/sl"
	"portfolio_gallery/internal/lib/nonce"
	"portfolio_gallery/internal/repository"
	chunk "portfolio_gallery/internal/services/chunk_service"
	filter "portfolio_gallery/internal/services/filter_service"
	gallery "portfolio_gallery/internal/services/gallery_service"
	legacy "portfolio_gallery/internal/services/legacy_service"
	migration "portfolio_gallery/internal/services/migration_service"
	settings "portfolio_gallery/internal/services/settings_service"
	user "portfolio_gallery/internal/services/user_service"
	"portfolio_gallery/internal/storage/memory"
	"portfolio_gallery/internal/storage/postgresql"
	redisapp "portfolio_gallery/internal/storage/redis"
	httprouters "portfolio_gallery/internal/transport/http"

	"github.com/robfig/cron/v3"
)

type App struct {
	HTTPServer *httpapp.Server
	Migration  *migration.MigrationService

	log      *slog.Logger
	cron     *cron.Cron
	schedule string
	closers  []func()
}

type stores struct {
	galleries  repository.GalleryRepository
	meta       repository.MetaRepository
	options    repository.OptionRepository
	transients repository.TransientRepository
	health     map[string]httprouters.HealthChecker
	closers    []func()
}

func New(log *slog.Logger, cfg *config.Config) (*App, error) {
	const op = "app.New"

	st, err := newStores(log, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	metaStore := repository.NewMetaStore(st.meta)
	optionStore := repository.NewOptionStore(st.options)

	legacyService := legacy.NewLegacyService(log, metaStore, optionStore)
	galleryService := gallery.NewGalleryService(log, st.galleries, metaStore, legacyService)
	filterService := filter.NewFilterService(log, optionStore)
	chunkService := chunk.NewChunkService(log, st.transients, galleryService, cfg.Chunk.TTL)
	migrationService := migration.NewMigrationService(log, st.galleries, metaStore, optionStore, optionStore, galleryService, legacyService)
	settingsService := settings.NewSettingsService(log, optionStore, cfg.Chunk.Size)
	userService := user.NewUserService(log, accounts(log, cfg.Auth.Users))
	nonces := nonce.NewIssuer(cfg.HTTP.NonceSecret, cfg.HTTP.NonceTTL)

	routers := httprouters.NewRouter(log, httprouters.Routers{
		GalleryService:   galleryService,
		LegacyService:    legacyService,
		ChunkService:     chunkService,
		FilterService:    filterService,
		MigrationService: migrationService,
		SettingsService:  settingsService,
		UserService:      userService,
		Nonces:           nonces,
		Health:           st.health,
	})

	server := httpapp.New(log, cfg.HTTP.SessionSecret, cfg.HTTP.Host, cfg.HTTP.Port, routers, httpapp.Guards{
		Users:     userService,
		Galleries: galleryService,
		Nonces:    nonces,
	})

	return &App{
		HTTPServer: server,
		Migration:  migrationService,
		log:        log,
		schedule:   cfg.Migration.Schedule,
		closers:    st.closers,
	}, nil
}

func newStores(log *slog.Logger, cfg *config.Config) (*stores, error) {
	st := &stores{health: map[string]httprouters.HealthChecker{}}

	var mem *repository.MemoryRepo
	memoryRepo := func() *repository.MemoryRepo {
		if mem == nil {
			mem = repository.NewMemoryRepo(memory.New())
		}
		return mem
	}

	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		if cfg.Storage.Migrations {
			if err := postgresql.Migrate(log, cfg.Storage.DSN); err != nil {
				return nil, err
			}
		}

		pg, err := postgresql.New(context.Background(), cfg.Storage.DSN)
		if err != nil {
			return nil, err
		}
		st.galleries = repository.NewGalleryRepo(pg.DB)
		st.meta = repository.NewMetaRepo(pg.DB)
		st.options = repository.NewOptionRepo(pg.DB)
		st.health["postgres"] = pg
		st.closers = append(st.closers, pg.Stop)
	case config.DriverMemory, "":
		log.Warn("using in-memory storage, data is lost on restart")
		st.galleries = memoryRepo()
		st.meta = memoryRepo()
		st.options = memoryRepo()
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	if cfg.Redis.RedisAddr != "" {
		client := redisapp.NewClient(cfg.Redis.RedisAddr, cfg.Redis.RedisPassword, cfg.Redis.RedisDB)
		st.transients = repository.NewRedisTransientRepo(client)
		st.health["redis"] = client
		st.closers = append(st.closers, func() {
			if err := client.Close(); err != nil {
				log.Error("failed to close redis", sl.Err(err))
			}
		})
	} else {
		st.transients = memoryRepo()
	}

	return st, nil
}

func accounts(log *slog.Logger, users []config.User) []user.Account {
	out := make([]user.Account, 0, len(users))
	for _, u := range users {
		role := models.Role(u.Role)
		switch role {
		case models.RoleAdministrator, models.RoleEditor, models.RoleAuthor:
		default:
			log.Warn("skipping user with unknown role", slog.String("user", u.Name), slog.String("role", u.Role))
			continue
		}
		out = append(out, user.Account{Name: u.Name, Role: role, PasswordHash: u.PasswordHash})
	}
	return out
}

// StartScheduler запускает плановую пакетную миграцию, если задано расписание.
func (a *App) StartScheduler() error {
	const op = "app.StartScheduler"

	if a.schedule == "" {
		return nil
	}

	a.cron = cron.New()
	_, err := a.cron.AddFunc(a.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()

		n, err := a.Migration.RunBatch(ctx, false)
		if err != nil {
			a.log.Error("scheduled migration failed", sl.Err(err))
			return
		}
		a.log.Info("scheduled migration finished", slog.Int("migrated", n))
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	a.cron.Start()
	a.log.Info("migration scheduler started", slog.String("schedule", a.schedule))
	return nil
}

func (a *App) Stop() {
	if a.cron != nil {
		<-a.cron.Stop().Done()
	}

	if err := a.HTTPServer.Stop(); err != nil {
		a.log.Error("failed to stop http server", sl.Err(err))
	}

	for _, closeFn := range a.closers {
		closeFn()
	}
}
