package main

import (
	"context"
	"math/rand/v2"

	"mediareviews/internal/config"
	"mediareviews/internal/database"
	"mediareviews/internal/domain/review"
	"mediareviews/internal/logger"
)

type sample struct {
	mediaType review.MediaType
	title     string
	year      int
}

var samples = []sample{
	{review.MediaMovie, "Stalker", 1979},
	{review.MediaMovie, "Spirited Away", 2001},
	{review.MediaMovie, "Arrival", 2016},
	{review.MediaTV, "Severance", 2022},
	{review.MediaTV, "The Wire", 2002},
	{review.MediaBook, "Dune", 1965},
	{review.MediaBook, "The Left Hand of Darkness", 1969},
	{review.MediaBook, "Roadside Picnic", 1972},
	{review.MediaPlay, "Hamlet", 1603},
	{review.MediaPlay, "Waiting for Godot", 1953},
}

var authors = []string{"Asel", "Bekzat", "Dina", "Timur"}

var blurbs = []string{
	"Slow start, but the last act pays off everything.",
	"Would happily experience it again.",
	"Beautiful to look at, thin on substance.",
	"Not for me, though I see why people love it.",
	"One of the best things I have seen this year.",
}

// seed fills the configured database with demo reviews. Existing reviews
// are removed first; stored images are left alone.
func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.Setup("info", "pretty")
		bootLog.Fatal().Err(err).Msg("config load failed")
	}
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	if err := database.Migrate(db, &review.Review{}); err != nil {
		log.Fatal().Err(err).Msg("migrate failed")
	}

	log.Info().Msg("cleaning old reviews")
	if err := db.Exec("DELETE FROM reviews").Error; err != nil {
		log.Fatal().Err(err).Msg("cleanup failed")
	}

	repo := review.NewRepository(db)
	ctx := context.Background()
	for i, s := range samples {
		author := authors[i%len(authors)]
		telegramID := int64(100000 + i%len(authors))
		year := s.year
		rv := &review.Review{
			AuthorName:       author,
			AuthorTelegramID: &telegramID,
			MediaType:        s.mediaType,
			MediaTitle:       s.title,
			MediaYear:        &year,
			Rating:           rand.IntN(10) + 1,
			Text:             blurbs[rand.IntN(len(blurbs))],
			ContainsSpoilers: rand.IntN(4) == 0,
		}
		if err := repo.Create(ctx, rv); err != nil {
			log.Fatal().Err(err).Str("title", s.title).Msg("create review failed")
		}
	}

	log.Info().Int("reviews", len(samples)).Int("authors", len(authors)).Msg("seed completed")
}
