package main

import (
	"context"
	"log"
	"time"

	"github.com/Baaaki/event-manager/internal/config"
	"github.com/Baaaki/event-manager/internal/database"
	"github.com/Baaaki/event-manager/internal/lock"
	"github.com/Baaaki/event-manager/internal/media"
	"github.com/Baaaki/event-manager/internal/rbac"
	"github.com/Baaaki/event-manager/internal/repository"
	"github.com/Baaaki/event-manager/internal/router"
	"github.com/Baaaki/event-manager/internal/service"
	"github.com/Baaaki/event-manager/internal/utils"
	"github.com/Baaaki/event-manager/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(!cfg.IsProduction()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Log.Fatal("Failed to connect database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.Log.Fatal("Failed to migrate database", zap.Error(err))
	}

	// Initialize create lock (the unique index alone still holds without Redis)
	var locker lock.Locker = lock.NopLocker{}
	if cfg.RedisURL != "" {
		redisLocker, err := lock.NewRedisLocker(cfg.RedisURL)
		if err != nil {
			logger.Log.Fatal("Failed to initialize Redis lock", zap.Error(err))
		}
		defer redisLocker.Close()
		locker = redisLocker
	} else {
		logger.Log.Warn("REDIS_URL not set, event writes are not serialized across instances")
	}

	// Initialize flyer storage
	uploader, err := media.NewMinioUploader(cfg.Minio)
	if err != nil {
		logger.Log.Fatal("Failed to initialize flyer storage", zap.Error(err))
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	err = uploader.EnsureBucket(ctx)
	cancel()
	if err != nil {
		logger.Log.Fatal("Failed to prepare flyer bucket", zap.Error(err))
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	eventRepo := repository.NewEventRepository(db)

	// Initialize services
	tokens := utils.NewTokenService(cfg.JWTSecret, cfg.JWTExpiry)
	authService := service.NewAuthService(userRepo, tokens)
	eventService := service.NewEventService(eventRepo, uploader, locker, service.EventServiceConfig{
		MaxFlyerSize: cfg.MaxFlyerSize,
		LockTTL:      cfg.CreateLockTTL,
	})

	engine := router.New(router.Deps{
		AuthService:        authService,
		EventService:       eventService,
		Policy:             rbac.DefaultPolicy(),
		AllowedOrigins:     cfg.CORSAllowedOrigins,
		IsProduction:       cfg.IsProduction(),
		MaxMultipartMemory: cfg.MaxFlyerSize,
	})

	// Start server
	logger.Log.Info("Server starting",
		zap.String("port", cfg.ServerPort),
		zap.String("environment", cfg.Environment),
	)
	if err := engine.Run(cfg.ServerPort); err != nil {
		logger.Log.Fatal("Failed to start server", zap.Error(err))
	}
}
