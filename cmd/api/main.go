package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"mediareviews/internal/config"
	"mediareviews/internal/database"
	"mediareviews/internal/domain/review"
	"mediareviews/internal/domain/upload"
	"mediareviews/internal/logger"
	"mediareviews/internal/middleware"
	"mediareviews/internal/pkg/jwt"
	"mediareviews/internal/ratelimit"
	"mediareviews/internal/server"
)

const (
	serviceTokenTTL     = 5 * time.Minute
	limiterCleanupEvery = time.Minute
	shutdownTimeout     = 15 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.Setup("info", "pretty")
		bootLog.Fatal().Err(err).Msg("config load failed")
	}

	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("database connect failed")
	}
	if err := database.Migrate(db, &review.Review{}); err != nil {
		log.Fatal().Err(err).Msg("database migrate failed")
	}

	reg := prometheus.NewRegistry()
	var (
		observer upload.Observer
		metrics  *middleware.HTTPMetrics
	)
	if cfg.MetricsEnabled {
		promObserver, err := upload.NewPrometheusObserver("", reg)
		if err != nil {
			log.Fatal().Err(err).Msg("asset metrics init failed")
		}
		observer = promObserver
		if metrics, err = middleware.NewHTTPMetrics("", reg); err != nil {
			log.Fatal().Err(err).Msg("http metrics init failed")
		}
	}

	assets, err := newAssetStore(ctx, cfg, log, observer)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.StorageBackend).Msg("asset store init failed")
	}

	limiter, err := newLimiter(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("rate limiter init failed")
	}

	var tokens *jwt.Service
	if cfg.ServiceTokenSecret != "" {
		tokens = jwt.New(cfg.ServiceTokenSecret, serviceTokenTTL)
	} else {
		log.Warn().Msg("SERVICE_TOKEN_SECRET is empty; mutating routes are open")
	}

	reviewService := review.NewService(
		review.NewRepository(db),
		assets,
		upload.NewValidator(cfg.MaxUploadBytes),
		log,
	)

	router := server.NewRouter(server.Deps{
		Log:            log,
		AllowedOrigins: cfg.AllowedOrigins,
		UploadMount:    cfg.UploadMount,
		Assets:         assets,
		Reviews:        review.NewHandler(reviewService, cfg.UploadMount),
		Limiter:        limiter,
		Tokens:         tokens,
		Metrics:        metrics,
		Gatherer:       reg,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.AppEnv).Str("storage", cfg.StorageBackend).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info().Msg("server exited")
}

func newAssetStore(ctx context.Context, cfg *config.Config, log zerolog.Logger, observer upload.Observer) (upload.Store, error) {
	if cfg.StorageBackend == config.StorageMinio {
		return upload.NewMinioStore(ctx, upload.MinioOptions{
			Endpoint:  cfg.Minio.Endpoint,
			AccessKey: cfg.Minio.AccessKey,
			SecretKey: cfg.Minio.SecretKey,
			Bucket:    cfg.Minio.Bucket,
			UseSSL:    cfg.Minio.UseSSL,
		}, log, observer)
	}
	return upload.NewLocalStore(cfg.UploadDir, log, observer)
}

// newLimiter prefers Redis when configured so every API replica shares
// the same windows.
func newLimiter(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ratelimit.Limiter, error) {
	if cfg.RedisAddr != "" {
		client, err := ratelimit.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, err
		}
		return ratelimit.NewRedisFixedWindow(client, "", cfg.RateLimitMax, cfg.RateLimitWindow, log)
	}

	limiter, err := ratelimit.NewFixedWindow(cfg.RateLimitMax, cfg.RateLimitWindow, nil)
	if err != nil {
		return nil, err
	}
	go limiter.RunCleanup(ctx, limiterCleanupEvery)
	return limiter, nil
}
