package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/rs/zerolog"

	"github.com/redisplay/simple-gallery/internal/config"
	"github.com/redisplay/simple-gallery/internal/handlers"
	"github.com/redisplay/simple-gallery/internal/jobs"
	"github.com/redisplay/simple-gallery/internal/log"
	"github.com/redisplay/simple-gallery/internal/server"
	"github.com/redisplay/simple-gallery/internal/storage"
	"github.com/redisplay/simple-gallery/internal/tenant"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment)

	ctx := context.Background()

	var minioClient *minio.Client
	if cfg.Storage.Driver == "s3" {
		minioClient, err = storage.NewMinioClient(storage.MinioOptions{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			UseSSL:    cfg.Storage.UseSSL,
			Region:    cfg.Storage.Region,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to init object storage")
		}
		if err := storage.EnsureBucket(ctx, minioClient, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
			logger.Warn().Err(err).Msg("ensure bucket failed")
		}
	}

	registry := tenant.NewRegistry(cfg, logger, minioClient)

	handlerSet := handlers.NewHandlerSet(logger, cfg, registry)
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	scheduler := jobs.NewScheduler(registry, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, scheduler, registry)
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, scheduler *jobs.Scheduler, registry *tenant.Registry) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	scheduler.Stop()

	registry.Close()

	logger.Info().Msg("server exited cleanly")
}
