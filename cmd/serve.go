package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/JakeFAU/photo-album-scraper/internal/api"
	"github.com/JakeFAU/photo-album-scraper/internal/cache"
	"github.com/JakeFAU/photo-album-scraper/internal/clock/system"
	"github.com/JakeFAU/photo-album-scraper/internal/hash/sha256"
	"github.com/JakeFAU/photo-album-scraper/internal/metrics"
	"github.com/JakeFAU/photo-album-scraper/internal/scraper"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serves GET /scrape?url=<album> with a TTL cache",
		Long: `Starts the HTTP service. Each request for an album is answered from the
cache when a fresh record exists; otherwise the album and its photo pages are
fetched, decoded and cached.`,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	e, err := resolveEnv(cmd.Context())
	if err != nil {
		return err
	}
	cfg, logger := e.cfg, e.logger
	if err := cfg.ValidateServer(); err != nil {
		return err
	}
	metrics.Init()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	f, err := buildFetchers(cfg)
	if err != nil {
		return err
	}
	defer f.close()

	store, ready, err := buildCacheStore(cfg)
	if err != nil {
		return err
	}
	responses := cache.New(store, system.New(), sha256.New(), cfg.CacheTTL(), logger.Named("cache"))
	driver := scraper.NewDriver(f.pages, logger.Named("driver"),
		scraper.WithVariant(scraper.VariantService),
		scraper.WithUserAgent(cfg.Scraper.UserAgent),
	)
	var opts []api.Option
	if ready != nil {
		opts = append(opts, api.WithReadinessCheck(ready))
	}
	apiServer := api.NewServer(
		cache.NewReadThrough(responses, driver, logger.Named("cache")),
		cfg.Auth,
		logger.Named("api"),
		opts...,
	)

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           otelhttp.NewHandler(apiServer.Handler(), "photo-album-scraper"),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server started",
			zap.String("addr", srv.Addr),
			zap.String("cache_backend", cfg.Cache.Backend),
			zap.Duration("cache_ttl", cfg.CacheTTL()),
			zap.Bool("auth", cfg.Auth.Enabled),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.Info("shutdown complete")
	return nil
}
