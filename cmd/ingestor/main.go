package main

import (
	"context"
	"database/sql"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"azal_reviews/internal/adapters/appstore"
	"azal_reviews/internal/adapters/observability"
	"azal_reviews/internal/adapters/xlsx"
	"azal_reviews/internal/app"
	"azal_reviews/internal/domain"
	"azal_reviews/internal/shared"
	mysqlrepo "azal_reviews/internal/storage/mysql"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)
	observability.Serve(cfg.MetricsAddr, observability.InitRegistry())

	log.Info().
		Str("base", cfg.AppStoreBase).
		Str("app_id", cfg.AppStoreAppID).
		Int("countries", len(cfg.Countries)).
		Int("pages", cfg.Pages).
		Int("workers", cfg.Workers).
		Str("output", cfg.IngestOutput).
		Msg("ingestor starting")

	// 2) optional archive
	var archive domain.ReviewArchive
	if cfg.MySQLDSN != "" {
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("sql.Open failed")
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Fatal().Err(err).Msg("db.Ping failed")
		}
		log.Info().Msg("db ping ok")
		archive = mysqlrepo.New(db)
	}

	client, err := appstore.New(cfg.AppStoreBase, cfg.AppStoreAppID, cfg.AppStoreRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize App Store client")
	}
	ing := app.NewIngestionService(client, xlsx.NewWriter(cfg.IngestOutput), archive)

	// 3) fan out over storefronts
	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup
	for _, country := range cfg.Countries {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Warn().Err(err).Msg("ingest interrupted")
			break
		}
		wg.Add(1)
		go func(country string) {
			defer wg.Done()
			defer sem.Release(1)

			n, err := ing.IngestCountry(ctx, country, cfg.Pages)
			observability.ObserveIngest(country, n)
			if err != nil {
				log.Warn().Str("country", country).Int("kept", n).Err(err).Msg("ingest failed")
				return
			}
			log.Info().Str("country", country).Int("reviews", n).Msg("ingest ok")
		}(country)
	}
	wg.Wait()

	// 4) workbook, newest first
	n, err := ing.Flush(context.WithoutCancel(ctx))
	if err != nil {
		log.Fatal().Err(err).Msg("write workbook failed")
	}
	log.Info().Str("run_id", ing.RunID()).Int("reviews", n).Str("output", cfg.IngestOutput).Msg("ingestion completed")

	if archive != nil {
		counts, err := archive.CountByCountry(context.WithoutCancel(ctx))
		if err != nil {
			log.Warn().Err(err).Msg("archive summary failed")
			return
		}
		total := 0
		for _, c := range counts {
			total += c
		}
		log.Info().Int("archived", total).Int("countries", len(counts)).Msg("archive summary")
	}
}
