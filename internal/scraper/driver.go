package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/JakeFAU/photo-album-scraper/internal/metrics"
)

const (
	defaultUserAgent = "Mozilla/5.0"
	tracerName       = "github.com/JakeFAU/photo-album-scraper/internal/scraper"
)

// Driver walks an album: album page, manifest, photo pages, records.
// Photos are processed strictly in manifest order, one at a time.
type Driver struct {
	fetcher   Fetcher
	variant   Variant
	gate      Gate
	sink      Sink
	userAgent string
	logger    *zap.Logger
}

// Option customises a Driver.
type Option func(*Driver)

// WithVariant selects how records are linked.
func WithVariant(v Variant) Option {
	return func(d *Driver) { d.variant = v }
}

// WithGate skips photos whose page URL the gate has already seen, before fetching them.
func WithGate(g Gate) Option {
	return func(d *Driver) { d.gate = g }
}

// WithSink persists each decoded record. Sink errors are fatal to the traversal.
func WithSink(s Sink) Option {
	return func(d *Driver) { d.sink = s }
}

// WithUserAgent overrides the User-Agent header sent with page requests.
func WithUserAgent(ua string) Option {
	return func(d *Driver) {
		if ua != "" {
			d.userAgent = ua
		}
	}
}

// NewDriver constructs a Driver.
func NewDriver(fetcher Fetcher, logger *zap.Logger, opts ...Option) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Driver{
		fetcher:   fetcher,
		variant:   VariantService,
		userAgent: defaultUserAgent,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Scrape traverses the album at albumURL and returns the decoded photos.
// Errors are returned only for album-level failures and sink failures;
// individual photos that cannot be fetched or decoded are skipped.
func (d *Driver) Scrape(ctx context.Context, albumURL string) (Result, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "scraper.album")
	defer span.End()
	span.SetAttributes(
		attribute.String("album.url", RedactKey(albumURL)),
		attribute.String("scraper.variant", d.variant.String()),
	)

	result, err := d.traverse(ctx, albumURL)
	span.SetAttributes(
		attribute.Int("photos.listed", result.Stats.Listed),
		attribute.Int("photos.decoded", result.Stats.Decoded),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		metrics.ObserveAlbum("error")
		return result, err
	}
	metrics.ObserveAlbum("success")
	return result, nil
}

func (d *Driver) traverse(ctx context.Context, albumURL string) (Result, error) {
	album, err := ParseAlbumURL(albumURL)
	if err != nil {
		return Result{}, err
	}
	logger := d.logger.With(zap.String("album_id", album.ID))

	html, err := d.fetchPage(ctx, albumURL)
	if err != nil {
		return Result{}, fmt.Errorf("fetch album page: %w: %w", ErrUpstream, err)
	}
	logger.Debug("fetched album page", zap.Int("bytes", len(html)))

	manifest, err := extractManifest(html, AlbumManifest)
	if err != nil {
		return Result{}, fmt.Errorf("album manifest: %w", err)
	}
	photoURLs := album.PhotoURLs(DecodeAlbumEntries(manifest))
	logger.Debug("derived photo urls", zap.Int("count", len(photoURLs)))

	result := Result{
		Album:  album,
		Photos: make([]PhotoRecord, 0, len(photoURLs)),
		Stats:  Stats{Listed: len(photoURLs)},
	}
	for _, pageURL := range photoURLs {
		if d.gate != nil && d.gate.Seen(pageURL) {
			result.Stats.Skipped++
			metrics.ObservePhoto(metrics.PhotoSkipped)
			logger.Debug("skipping existing photo", zap.String("photo_url", RedactKey(pageURL)))
			continue
		}

		record, err := d.scrapePhoto(ctx, pageURL)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return result, fmt.Errorf("scrape interrupted: %w", ctxErr)
			}
			result.Stats.Failed++
			metrics.ObservePhoto(metrics.PhotoFailed)
			logger.Warn("skipping unusable photo page", zap.String("photo_url", RedactKey(pageURL)), zap.Error(err))
			continue
		}

		if d.sink != nil {
			if err := d.sink.Persist(ctx, record); err != nil {
				return result, fmt.Errorf("persist %s: %w", pageURL, err)
			}
		}
		result.Photos = append(result.Photos, record)
		result.Stats.Decoded++
		metrics.ObservePhoto(metrics.PhotoDecoded)
	}

	logger.Info("album traversal finished",
		zap.Int("listed", result.Stats.Listed),
		zap.Int("decoded", result.Stats.Decoded),
		zap.Int("skipped", result.Stats.Skipped),
		zap.Int("failed", result.Stats.Failed),
	)
	return result, nil
}

func (d *Driver) scrapePhoto(ctx context.Context, pageURL string) (record PhotoRecord, err error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "scraper.photo")
	span.SetAttributes(attribute.String("photo.url", RedactKey(pageURL)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	html, err := d.fetchPage(ctx, pageURL)
	if err != nil {
		return PhotoRecord{}, fmt.Errorf("fetch photo page: %w", err)
	}
	manifest, err := extractManifest(html, PhotoManifest)
	if err != nil {
		return PhotoRecord{}, err
	}
	return DecodePhoto(manifest, pageURL, d.variant)
}

func (d *Driver) fetchPage(ctx context.Context, url string) (string, error) {
	if d.fetcher == nil {
		return "", errors.New("no fetcher configured")
	}
	resp, err := d.fetcher.Fetch(ctx, FetchRequest{
		URL:     url,
		Headers: http.Header{"User-Agent": {d.userAgent}},
	})
	if err != nil {
		return "", err
	}
	return string(resp.Body), nil
}
