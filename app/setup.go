package app

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sahilchouksey/learnhub-api/api"
	"github.com/sahilchouksey/learnhub-api/config"
	"github.com/sahilchouksey/learnhub-api/database"
	"github.com/sahilchouksey/learnhub-api/router"
	"github.com/sahilchouksey/learnhub-api/services"
	"github.com/sahilchouksey/learnhub-api/services/cron"
	"github.com/sahilchouksey/learnhub-api/services/storage"
	"github.com/sahilchouksey/learnhub-api/utils"
	"github.com/sahilchouksey/learnhub-api/utils/auth"
	"github.com/sahilchouksey/learnhub-api/utils/cache"
)

func SetupAndRunServer() error {

	// Load ENV
	if err := config.LoadENV(); err != nil {
		return err
	}

	env, err := config.Get()
	if err != nil {
		return err
	}
	if err := env.Validate(); err != nil {
		return err
	}

	log, err := utils.NewLogger(env.GO_ENV)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer log.Sync()

	// Initialize GORM database connection
	store, err := database.StartGORM(env, log)
	if err != nil {
		log.Error("failed to connect to database", "driver", env.DB_DRIVER, "error", err)
		return err
	}

	if err := store.Init(); err != nil {
		log.Error("failed to run migrations", "error", err)
		return err
	}

	deps := router.Dependencies{
		Store:  store,
		Config: env,
		Log:    log,
	}

	// Redis only backs login lockout, so an outage degrades instead of failing
	if env.REDIS_URL != "" {
		redisCache, err := cache.NewRedisCache(env.REDIS_URL)
		if err != nil {
			log.Warn("redis unavailable, login lockout disabled", "error", err)
		} else {
			defer redisCache.Close()
			deps.Attempts = redisCache
		}
	}

	spacesConfig := storage.SpacesConfig{
		AccessKey: env.DO_SPACES_KEY,
		SecretKey: env.DO_SPACES_SECRET,
		Bucket:    env.DO_SPACES_BUCKET,
		Region:    env.DO_SPACES_REGION,
		Endpoint:  env.DO_SPACES_ENDPOINT,
		CDNURL:    env.DO_SPACES_CDN_URL,
	}
	if spacesConfig.Enabled() {
		spaces, err := storage.NewSpacesClient(spacesConfig)
		if err != nil {
			log.Warn("object storage unavailable, thumbnail uploads disabled", "error", err)
		} else {
			deps.Objects = spaces
		}
	}

	// Initialize Cron Manager (only if enabled via environment variable)
	var cronManager *cron.CronManager
	if env.CRON_ENABLED {
		db := store.GetDB()
		cronManager = cron.NewCronManager(db, services.NewCourseStatsService(db, log), auth.NewBlacklistService(db), log)
		if err := cronManager.Start(); err != nil {
			// Don't fail the app, just log the warning
			log.Warn("failed to start cron jobs", "error", err)
			cronManager = nil
		}
	}

	// Defer Closing DB and stopping cron jobs
	defer func() {
		if cronManager != nil {
			cronManager.Stop()
		}
		store.Close()
	}()

	// Init API
	server := api.NewAPIServer(fmt.Sprintf(":%d", env.PORT), log)
	router.SetupRoutes(server.GetEngine(), deps)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info("shutting down")
		if err := server.Shutdown(); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
	}()

	return server.Run()
}
