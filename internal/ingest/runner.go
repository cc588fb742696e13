package ingest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/JakeFAU/photo-album-scraper/internal/scraper"
	"github.com/JakeFAU/photo-album-scraper/internal/store"
)

// Summary reports the outcome of a run.
type Summary struct {
	Album  scraper.AlbumRef `json:"-"`
	Known  int              `json:"known"`
	Stored int              `json:"stored"`
	scraper.Stats
}

// Runner performs ingestion runs.
type Runner struct {
	photos    store.PhotoStore
	fetcher   scraper.Fetcher
	sinkCfg   SinkConfig
	sinkOpts  []SinkOption
	userAgent string
	logger    *zap.Logger
}

// NewRunner builds a Runner. Page fetches go through fetcher; image
// uploads are configured with sink options.
func NewRunner(photos store.PhotoStore, fetcher scraper.Fetcher, cfg SinkConfig, logger *zap.Logger, opts ...SinkOption) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		photos:    photos,
		fetcher:   fetcher,
		sinkCfg:   cfg,
		sinkOpts:  opts,
		userAgent: cfg.UserAgent,
		logger:    logger,
	}
}

// Run ingests every photo of albumURL that is not yet stored. Existing
// links are loaded once, before the album is fetched.
func (r *Runner) Run(ctx context.Context, albumURL string) (Summary, error) {
	links, err := r.photos.ListLinks(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("%w: load existing links: %w", scraper.ErrDestination, err)
	}
	index := NewLinkIndex(links)
	r.logger.Debug("loaded existing links", zap.Int("count", index.Len()))

	sink := NewSink(r.photos, index, r.sinkCfg, r.logger.Named("sink"), r.sinkOpts...)
	driver := scraper.NewDriver(r.fetcher, r.logger.Named("driver"),
		scraper.WithVariant(scraper.VariantIngest),
		scraper.WithGate(index),
		scraper.WithSink(sink),
		scraper.WithUserAgent(r.userAgent),
	)

	result, err := driver.Scrape(ctx, albumURL)
	summary := Summary{
		Album:  result.Album,
		Known:  len(links),
		Stored: sink.Stored(),
		Stats:  result.Stats,
	}
	fields := []zap.Field{
		zap.String("album_url", scraper.RedactKey(albumURL)),
		zap.Int("known", summary.Known),
		zap.Int("listed", summary.Listed),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
		zap.Int("stored", summary.Stored),
	}
	if err != nil {
		r.logger.Error("ingestion run failed", append(fields, zap.Error(err))...)
		return summary, err
	}
	r.logger.Info("ingestion run finished", fields...)
	return summary, nil
}
