package main

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"mediareviews/internal/config"
	"mediareviews/internal/database"
	"mediareviews/internal/domain/review"
	"mediareviews/internal/domain/upload"
	"mediareviews/internal/logger"
)

// asset_cleanup purges stored images whose review row is gone. Run it from
// cron next to the API; it is safe to run while the API is serving.
func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.Setup("info", "pretty")
		bootLog.Fatal().Err(err).Msg("config load failed")
	}
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}

	store, inv, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.StorageBackend).Msg("asset store init failed")
	}

	svc := review.NewService(review.NewRepository(db), store, upload.NewValidator(cfg.MaxUploadBytes), log)
	purged, err := svc.PurgeOrphans(ctx, inv)
	if err != nil {
		log.Fatal().Err(err).Msg("asset cleanup failed")
	}
	log.Info().Int("purged_reviews", purged).Msg("asset cleanup completed")
}

func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (upload.Store, upload.Inventory, error) {
	if cfg.StorageBackend == config.StorageMinio {
		s, err := upload.NewMinioStore(ctx, upload.MinioOptions{
			Endpoint:  cfg.Minio.Endpoint,
			AccessKey: cfg.Minio.AccessKey,
			SecretKey: cfg.Minio.SecretKey,
			Bucket:    cfg.Minio.Bucket,
			UseSSL:    cfg.Minio.UseSSL,
		}, log, nil)
		return s, s, err
	}
	s, err := upload.NewLocalStore(cfg.UploadDir, log, nil)
	return s, s, err
}
