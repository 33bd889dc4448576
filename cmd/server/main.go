package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/vehicle-parking-system/internal/config"
	"github.com/iliyamo/vehicle-parking-system/internal/database"
	"github.com/iliyamo/vehicle-parking-system/internal/handler"
	"github.com/iliyamo/vehicle-parking-system/internal/jobs"
	"github.com/iliyamo/vehicle-parking-system/internal/logger"
	"github.com/iliyamo/vehicle-parking-system/internal/middleware"
	"github.com/iliyamo/vehicle-parking-system/internal/queue"
	"github.com/iliyamo/vehicle-parking-system/internal/repository"
	"github.com/iliyamo/vehicle-parking-system/internal/router"
	queue_publisher "github.com/iliyamo/vehicle-parking-system/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.WithError(err).Fatal("database connect failed")
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.EnsureSchema(ctx, db); err != nil {
		log.WithError(err).Fatal("schema setup failed")
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unavailable; caching, rate limiting and distributed token revocation degrade")
	}

	userRepo := repository.NewUserRepo(db)
	spotRepo := repository.NewSpotRepo(db)
	lotRepo := repository.NewLotRepo(db, spotRepo)
	reservationRepo := repository.NewReservationRepo(db)
	exportRepo := repository.NewExportRepo(db)
	tokenRepo := repository.NewTokenRepo(rdb)

	authHandler := handler.NewAuthHandler(userRepo, tokenRepo, &cfg, log)
	adminHandler := handler.NewAdminHandler(userRepo, lotRepo, spotRepo, log)
	userHandler := handler.NewUserHandler(userRepo, lotRepo, spotRepo, reservationRepo, log)
	exportHandler := handler.NewExportHandler(exportRepo, &cfg, log)
	healthHandler := handler.NewHealthHandler(db, rdb)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())

	router.RegisterRateLimit(e, middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	router.RegisterHealth(e, healthHandler)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret, tokenRepo)
	router.RegisterAdmin(e, adminHandler, cfg.JWTSecret, tokenRepo,
		middleware.NewRedisCache(config.LotCacheConfig(), rdb))
	router.RegisterUser(e, userHandler, exportHandler, cfg.JWTSecret, tokenRepo,
		middleware.NewRedisCache(config.SpotCacheConfig(), rdb))

	brokerURL := queue_publisher.BrokerURL()
	exportConsumer := &queue.ExportConsumer{
		BrokerURL:    brokerURL,
		ExportDir:    cfg.ExportDir,
		Exports:      exportRepo,
		Reservations: reservationRepo,
		Notify:       queue_publisher.PublishEmail,
		Log:          log,
	}
	emailConsumer := &queue.EmailConsumer{BrokerURL: brokerURL, Log: log}
	go exportConsumer.Start()
	go emailConsumer.Start()

	scheduler := &jobs.Scheduler{
		Cfg:          config.LoadJobsConfig(),
		ExportDir:    cfg.ExportDir,
		Users:        userRepo,
		Lots:         lotRepo,
		Reservations: reservationRepo,
		SendMail:     queue_publisher.PublishEmail,
		Log:          log,
	}
	scheduler.Start(ctx)

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		_ = e.Shutdown(context.Background())
	}()

	addr := ":" + cfg.Port
	log.WithField("addr", addr).WithField("env", cfg.Env).Info("server listening")
	if err := e.Start(addr); err != nil {
		log.WithError(err).Info("server stopped")
	}
}
