package cmd

import (
	"context"
	"fmt"

	"github.com/JakeFAU/photo-album-scraper/internal/cache"
	"github.com/JakeFAU/photo-album-scraper/internal/config"
	collyfetcher "github.com/JakeFAU/photo-album-scraper/internal/fetcher/colly"
	headlessfetcher "github.com/JakeFAU/photo-album-scraper/internal/fetcher/headless"
	"github.com/JakeFAU/photo-album-scraper/internal/id/uuid"
	"github.com/JakeFAU/photo-album-scraper/internal/ingest"
	"github.com/JakeFAU/photo-album-scraper/internal/policy/ratelimit"
	pubsubpublisher "github.com/JakeFAU/photo-album-scraper/internal/publisher/pubsub"
	"github.com/JakeFAU/photo-album-scraper/internal/scraper"
	"github.com/JakeFAU/photo-album-scraper/internal/storage/gcs"
	"github.com/JakeFAU/photo-album-scraper/internal/storage/local"
	memorystorage "github.com/JakeFAU/photo-album-scraper/internal/storage/memory"
	"github.com/JakeFAU/photo-album-scraper/internal/storage/postgres"
	s3storage "github.com/JakeFAU/photo-album-scraper/internal/storage/s3"
	"github.com/JakeFAU/photo-album-scraper/internal/store"
)

// storedEvent is the event attribute attached to ingestion notifications.
const storedEvent = "photo.stored"

func noop() {}

// fetchers holds the page and image fetchers. Both wait on one per-host
// limiter. Images always go through colly since a headless browser returns
// rendered markup, not bytes.
type fetchers struct {
	pages  scraper.Fetcher
	images scraper.Fetcher
	close  func()
}

func buildFetchers(cfg config.Config) (fetchers, error) {
	limiter := ratelimit.New(ratelimit.Config{
		RequestsPerSecond: cfg.HTTP.RequestsPerSecond,
		Burst:             cfg.HTTP.Burst,
	})
	plain := ratelimit.NewFetcher(collyfetcher.New(collyfetcher.Config{
		UserAgent:    cfg.Scraper.UserAgent,
		Timeout:      cfg.HTTPTimeout(),
		MaxBodyBytes: int(cfg.HTTP.MaxBodyBytes),
	}), limiter)
	if !cfg.Headless.Enabled {
		return fetchers{pages: plain, images: plain, close: noop}, nil
	}
	hf, err := headlessfetcher.NewChromedp(headlessfetcher.Config{
		MaxParallel:       cfg.Headless.MaxParallel,
		UserAgent:         cfg.Scraper.UserAgent,
		NavigationTimeout: cfg.NavTimeout(),
		Settle:            cfg.Settle(),
	})
	if err != nil {
		return fetchers{}, fmt.Errorf("init headless fetcher: %w", err)
	}
	return fetchers{pages: ratelimit.NewFetcher(hf, limiter), images: plain, close: hf.Close}, nil
}

// buildCacheStore returns the cache backend and, for the file backend, a
// readiness probe.
func buildCacheStore(cfg config.Config) (cache.Store, func(context.Context) error, error) {
	switch cfg.Cache.Backend {
	case config.BackendMemory:
		return cache.NewMemoryStore(), nil, nil
	case config.BackendFile:
		fs, err := cache.NewFileStore(cfg.Cache.Dir)
		if err != nil {
			return nil, nil, fmt.Errorf("init file cache: %w", err)
		}
		return fs, fs.Ping, nil
	default:
		return nil, nil, fmt.Errorf("cache.backend %q is not supported", cfg.Cache.Backend)
	}
}

func buildPhotoStore(ctx context.Context, cfg config.Config) (store.PhotoStore, func(), error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		return memorystorage.NewPhotoStore(uuid.New()), noop, nil
	case config.BackendPostgres:
		ps, err := postgres.NewPhotoStore(ctx, postgres.PhotoStoreConfig{
			DSN:      cfg.Store.DSN,
			Table:    cfg.Store.Table,
			MaxConns: cfg.Store.MaxConns,
		})
		if err != nil {
			return nil, noop, fmt.Errorf("init postgres store: %w", err)
		}
		return ps, ps.Close, nil
	default:
		return nil, noop, fmt.Errorf("store.backend %q is not supported", cfg.Store.Backend)
	}
}

// buildBlobStore returns nil when image upload is disabled.
func buildBlobStore(ctx context.Context, cfg config.Config) (store.BlobStore, func(), error) {
	switch cfg.Storage.Backend {
	case config.BackendNone, "":
		return nil, noop, nil
	case config.BackendMemory:
		return memorystorage.NewBlobStore(), noop, nil
	case config.BackendLocal:
		ls, err := local.New(local.Config{BaseDir: cfg.Storage.LocalDir})
		if err != nil {
			return nil, noop, fmt.Errorf("init local storage: %w", err)
		}
		return ls, noop, nil
	case config.BackendGCS:
		gs, err := gcs.Open(ctx, gcs.Config{Bucket: cfg.Storage.GCSBucket})
		if err != nil {
			return nil, noop, fmt.Errorf("init gcs storage: %w", err)
		}
		return gs, func() { _ = gs.Close() }, nil
	case config.BackendS3:
		ss, err := s3storage.New(ctx, s3storage.Config{
			Bucket:          cfg.Storage.S3Bucket,
			Region:          cfg.Storage.S3Region,
			Endpoint:        cfg.Storage.S3Endpoint,
			AccessKeyID:     cfg.Storage.S3AccessKeyID,
			SecretAccessKey: cfg.Storage.S3SecretAccessKey,
		})
		if err != nil {
			return nil, noop, fmt.Errorf("init s3 storage: %w", err)
		}
		return ss, noop, nil
	default:
		return nil, noop, fmt.Errorf("storage.backend %q is not supported", cfg.Storage.Backend)
	}
}

// buildNotifier returns nil when Pub/Sub is not configured.
func buildNotifier(ctx context.Context, cfg config.Config) (ingest.Notifier, func(), error) {
	if !cfg.PubSub.Enabled() {
		return nil, noop, nil
	}
	p, err := pubsubpublisher.Open(ctx, cfg.PubSub.ProjectID, cfg.PubSub.TopicName, storedEvent)
	if err != nil {
		return nil, noop, fmt.Errorf("init pubsub publisher: %w", err)
	}
	return p, func() { _ = p.Close() }, nil
}
