package app

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ybotello/finstream-backend/internal/cache"
	"github.com/ybotello/finstream-backend/internal/db"
	"github.com/ybotello/finstream-backend/internal/pkg/logger"
	"github.com/ybotello/finstream-backend/internal/resilience"
	"github.com/ybotello/finstream-backend/internal/server"
	"github.com/ybotello/finstream-backend/internal/sources"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cache    cache.Cache
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Services Services
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	cfg := LoadConfig(log)

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	theDB := pg.DB()

	// The cache is expendable: without Redis the service still runs, either
	// on the in-process fallback or, if Redis was configured but is down,
	// on read-through alone.
	var theCache cache.Cache
	if cfg.RedisAddr != "" {
		theCache, err = cache.NewRedisCache(log, cfg.RedisAddr)
		if err != nil {
			log.Warn("Redis unavailable, continuing without shared cache", "error", err)
			theCache = cache.NewMemoryCache()
		}
	} else {
		log.Info("No REDIS_ADDR configured, using in-process cache")
		theCache = cache.NewMemoryCache()
	}

	exec := resilience.NewExecutor(log, cfg.Resilience)

	registry := sources.NewRegistry()
	for _, sc := range cfg.Sources {
		src, err := sources.NewHTTPSource(log, sc)
		if err != nil {
			log.Sync()
			return nil, fmt.Errorf("init source %q: %w", sc.Name, err)
		}
		registry.Register(src)
	}

	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, reposet, theCache, exec, registry)
	handlerset := wireHandlers(log, serviceset)

	router := server.NewRouter(server.RouterConfig{
		TransactionHandler: handlerset.Transaction,
		SummaryHandler:     handlerset.Summary,
		AggregationHandler: handlerset.Aggregation,
		AllowOrigins:       cfg.AllowOrigins,
	})

	return &App{
		Log:      log,
		DB:       theDB,
		Cache:    theCache,
		Router:   router,
		Cfg:      cfg,
		Repos:    reposet,
		Services: serviceset,
	}, nil
}

func (a *App) Run() error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Router.Run(":" + a.Cfg.Port)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Services.Audit != nil {
		a.Services.Audit.Flush()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
