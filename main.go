package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gearguard/config"
	"gearguard/middleware"
	"gearguard/routes"
	"gearguard/services"
	"gearguard/utils"
	"gearguard/worker"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	utils.InitLogger(cfg.LogLevel, cfg.LogFormat)
	if err := utils.InitSentry(cfg.SentryDSN, cfg.Environment); err != nil {
		logrus.WithError(err).Warn("sentry disabled")
	}
	defer utils.FlushSentry()

	db, err := config.ConnectDB(cfg)
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	if err := config.Migrate(db, cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
		logrus.Fatalf("Failed to migrate database: %v", err)
	}

	mailer := utils.NewSMTPMailer(utils.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromEmail: cfg.FromEmail,
		FromName:  cfg.FromName,
	})
	hub := utils.NewBoardHub()
	authService := services.NewAuthService(db, mailer)

	var rateLimitStorage fiber.Storage
	if cfg.Redis.Enabled {
		redisStorage := middleware.NewRedisStorage(middleware.RedisOptions{
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancelPing := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisStorage.Ping(pingCtx); err != nil {
			logrus.WithError(err).Warn("redis unavailable, rate limiting in memory")
			_ = redisStorage.Close()
		} else {
			rateLimitStorage = redisStorage
			defer redisStorage.Close()
		}
		cancelPing()
	}

	app := fiber.New(fiber.Config{
		AppName:      "GearGuard",
		ErrorHandler: utils.ErrorHandler,
	})

	routes.SetupRoutes(app, routes.Deps{
		Auth:     authService,
		Users:    services.NewUserService(db, mailer),
		Registry: services.NewEquipmentRegistry(db),
		Lifecycle: services.NewRequestLifecycle(db,
			services.WithStrictWorkflow(cfg.WorkflowStrict),
			services.WithBoardPublisher(hub),
		),
		Teams:            services.NewTeamDirectory(db),
		Hub:              hub,
		Issuer:           utils.NewTokenIssuer(cfg.JWTSecret, cfg.IsDevelopment()),
		Origins:          cfg.Origins(),
		ResetRateLimit:   cfg.RateLimitReset,
		RateLimitStorage: rateLimitStorage,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sweeper := worker.NewResetCodeSweeper(authService, cfg.ResetSweepInterval)
	go sweeper.Start(ctx)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		logrus.Info("shutting down")
		cancel()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logrus.WithError(err).Error("server shutdown failed")
		}
	}()

	logrus.Infof("Server starting on port %s", cfg.ServerPort)
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		logrus.Fatalf("Failed to start server: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
