package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"taskhub/internal/app"
	"taskhub/internal/config"
	"taskhub/internal/docs"
	"taskhub/pkg/logger"
)

// @title TaskHub API
// @version 0.1.0
// @description Projects and todos. Every change is written to an outbox in the same transaction
// @description and projected asynchronously into per-user notifications and a project activity feed.
// @description Clients authenticate with Authorization: Bearer *access_token* or the access cookie.
// @description Browsers open the realtime websocket with ?token=*access_token*.
// @host localhost:8080
// @BasePath /api/
// @securityDefinitions.apikey AccessToken
// @in header
// @name Authorization
func main() {
	ctx := context.Background()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoadConfig()
	config.MustPrintConfig(cfg)

	docs.SwaggerInfo.Title = cfg.ServiceName
	docs.SwaggerInfo.Version = cfg.Version
	docs.SwaggerInfo.BasePath = cfg.BasePath
	docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", cfg.HTTPServer.Port)

	loggerCfg := &logger.Config{
		Level:      cfg.Level,
		FormatJSON: cfg.FormatJSON,
		Rotation: logger.Rotation{
			File:       cfg.Rotation.File,
			MaxSize:    cfg.Rotation.MaxSize,
			MaxBackups: cfg.Rotation.MaxBackups,
			MaxAge:     cfg.Rotation.MaxAge,
		},
	}

	log := logger.MustSetupLogger(loggerCfg)

	application := app.MustNew(cfg, log)

	defer func() {
		if err := application.Shutdown(); err != nil {
			log.Error("Failed to shutdown application", zap.Error(err))
		}

		if err := log.Sync(); err != nil {
			log.Warn("Failed to sync logger", zap.Error(err))
		}

		log.Info("Application has shutdown")
	}()

	errs := make(chan error, 1)

	go func() { errs <- application.Run(ctx) }()

	select {
	case err := <-errs:
		if err != nil {
			log.Error("Server error, shutting down...", zap.Error(err))
		}
	case <-ctx.Done():
		log.Info("Received stop signal, shutting down...")

		// wait for in-flight messages and the http server to drain
		if err := <-errs; err != nil {
			log.Error("Failed to stop cleanly", zap.Error(err))
		}
	}
}
