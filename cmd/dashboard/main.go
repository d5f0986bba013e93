package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	server "azal_reviews/internal/adapters/http_server"
	"azal_reviews/internal/adapters/observability"
	redisad "azal_reviews/internal/adapters/redis"
	"azal_reviews/internal/adapters/xlsx"
	"azal_reviews/internal/app"
	"azal_reviews/internal/domain"
	"azal_reviews/internal/shared"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// one-shot load; handlers see "loading" until it finishes
	loader := app.NewLoader(xlsx.NewSource(cfg.ReviewsFile), cfg.ReviewsFile, cfg.StrictRows)
	observability.ObserveLoad(domain.Loading.String(), 0, 0)
	start := time.Now()
	loader.Start(ctx)
	go func() {
		<-loader.Done()
		st := loader.Status()
		observability.ObserveLoad(st.State.String(), time.Since(start), st.Reviews)
	}()

	var cache domain.Cache = app.NopCache{}
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := rc.Ping(pctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, filter cache disabled")
			_ = rc.Close()
		} else {
			cache = rc
			defer rc.Close()
			log.Info().Str("addr", cfg.RedisAddr).Msg("redis filter cache enabled")
		}
		cancel()
	}
	q := app.NewQueryService(loader, cache, cfg.CacheTTL)

	srv := server.New(cfg.CORSOrigins)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Q: q})

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(sctx)
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Str("reviews_file", cfg.ReviewsFile).Msg("dashboard listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("dashboard stopped")
}
