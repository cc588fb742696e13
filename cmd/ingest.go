package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/photo-album-scraper/internal/imaging"
	"github.com/JakeFAU/photo-album-scraper/internal/ingest"
)

type ingestOptions struct {
	album string
	json  bool
}

func newIngestCmd() *cobra.Command {
	opts := &ingestOptions{}
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Stores photos of an album that are not yet in the database",
		Long: `Loads every stored link, traverses the configured album and persists each
photo that is new: the record is inserted, and when a storage backend is
configured the image is re-encoded and uploaded as <prefix>/<id>.webp.
Any store or upload failure aborts the run with a non-zero exit.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runIngest(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.album, "album", "", "album URL (overrides scraper.album_url)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the run summary as JSON")
	return cmd
}

func runIngest(cmd *cobra.Command, opts *ingestOptions) error {
	e, err := resolveEnv(cmd.Context())
	if err != nil {
		return err
	}
	cfg, logger := e.cfg, e.logger
	if opts.album != "" {
		cfg.Scraper.AlbumURL = opts.album
	}
	if err := cfg.ValidateIngest(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	f, err := buildFetchers(cfg)
	if err != nil {
		return err
	}
	defer f.close()

	photos, closePhotos, err := buildPhotoStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closePhotos()

	var sinkOpts []ingest.SinkOption
	blobs, closeBlobs, err := buildBlobStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeBlobs()
	if blobs != nil {
		encoder := imaging.New(cfg.Image.MaxWidth, cfg.Image.Quality)
		sinkOpts = append(sinkOpts, ingest.WithImageUpload(f.images, encoder, blobs))
	}

	notifier, closeNotifier, err := buildNotifier(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeNotifier()
	if notifier != nil {
		sinkOpts = append(sinkOpts, ingest.WithNotifier(notifier))
	}

	runner := ingest.NewRunner(photos, f.pages, ingest.SinkConfig{
		SizeSuffix:  cfg.Scraper.ImageSizeSuffix,
		Prefix:      cfg.Storage.Prefix,
		UserAgent:   cfg.Scraper.UserAgent,
		Extension:   imaging.Extension,
		ContentType: imaging.ContentType,
	}, logger.Named("ingest"), sinkOpts...)

	summary, err := runner.Run(ctx, cfg.Scraper.AlbumURL)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn("ingestion interrupted", zap.Int("stored", summary.Stored))
		}
		return fmt.Errorf("ingest %s: %w", cfg.Scraper.AlbumURL, err)
	}
	if opts.json {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(summary); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}
	return nil
}
