package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"

	"go.uber.org/zap"

	"github.com/JakeFAU/photo-album-scraper/internal/scraper"
	"github.com/JakeFAU/photo-album-scraper/internal/store"
)

// ImageEncoder re-encodes a downloaded image for upload.
type ImageEncoder interface {
	Encode(r io.Reader) ([]byte, error)
}

// Notifier announces stored photos.
type Notifier interface {
	Publish(ctx context.Context, payload any) (string, error)
}

// StoredPhoto is the notification payload for one stored photo.
type StoredPhoto struct {
	ID             string  `json:"id"`
	Link           string  `json:"link"`
	Image          string  `json:"image"`
	ImageURI       string  `json:"imageUri,omitempty"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	TakenTimestamp *int64  `json:"takenTimestamp"`
	AddedTimestamp *int64  `json:"addedTimestamp"`
	Description    *string `json:"description"`
	Make           string  `json:"make,omitempty"`
	Model          string  `json:"model,omitempty"`
	Lens           string  `json:"lens,omitempty"`
	FocalLength    float64 `json:"focalLength,omitempty"`
	Aperture       float64 `json:"aperture,omitempty"`
	ISO            int64   `json:"iso,omitempty"`
	ShutterSpeed   float64 `json:"shutterSpeed,omitempty"`
}

func newStoredPhoto(id, imageURI string, rec scraper.PhotoRecord) StoredPhoto {
	return StoredPhoto{
		ID:             id,
		Link:           rec.Link,
		Image:          rec.Image,
		ImageURI:       imageURI,
		Width:          rec.Width,
		Height:         rec.Height,
		TakenTimestamp: rec.TakenTimestamp,
		AddedTimestamp: rec.AddedTimestamp,
		Description:    rec.Description,
		Make:           rec.Make,
		Model:          rec.Model,
		Lens:           rec.Lens,
		FocalLength:    rec.FocalLength,
		Aperture:       rec.Aperture,
		ISO:            rec.ISO,
		ShutterSpeed:   rec.ShutterSpeed,
	}
}

// SinkConfig controls the optional image upload.
type SinkConfig struct {
	// SizeSuffix is appended to the image URL to request a bounded rendition.
	SizeSuffix string
	// Prefix is prepended to uploaded object names.
	Prefix    string
	UserAgent string
	Extension string
	// ContentType is sent with uploads.
	ContentType string
}

// Sink persists decoded records. It implements scraper.Sink.
type Sink struct {
	photos   store.PhotoStore
	index    *LinkIndex
	fetcher  scraper.Fetcher
	blobs    store.BlobStore
	encoder  ImageEncoder
	notifier Notifier
	cfg      SinkConfig
	logger   *zap.Logger
	stored   int
}

// SinkOption customises a Sink.
type SinkOption func(*Sink)

// WithImageUpload fetches, re-encodes and uploads each stored photo's image.
func WithImageUpload(fetcher scraper.Fetcher, encoder ImageEncoder, blobs store.BlobStore) SinkOption {
	return func(s *Sink) {
		s.fetcher = fetcher
		s.encoder = encoder
		s.blobs = blobs
	}
}

// WithNotifier publishes a StoredPhoto after every successful store.
func WithNotifier(n Notifier) SinkOption {
	return func(s *Sink) { s.notifier = n }
}

// NewSink builds a Sink writing to photos and recording links in index.
func NewSink(photos store.PhotoStore, index *LinkIndex, cfg SinkConfig, logger *zap.Logger, opts ...SinkOption) *Sink {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Extension == "" {
		cfg.Extension = ".webp"
	}
	if cfg.ContentType == "" {
		cfg.ContentType = "image/webp"
	}
	s := &Sink{photos: photos, index: index, cfg: cfg, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Persist inserts the record, then uploads its image when configured.
// Insert and upload failures wrap scraper.ErrDestination.
func (s *Sink) Persist(ctx context.Context, record scraper.PhotoRecord) error {
	id, err := s.photos.InsertPhoto(ctx, record)
	if err != nil {
		return fmt.Errorf("%w: insert: %w", scraper.ErrDestination, err)
	}
	s.index.Add(record.Link)
	logger := s.logger.With(zap.String("photo_url", scraper.RedactKey(record.Link)), zap.String("record_id", id))
	logger.Info("stored photo record")

	var imageURI string
	if s.blobs != nil {
		imageURI, err = s.uploadImage(ctx, id, record.Image)
		if err != nil {
			return fmt.Errorf("%w: upload image for %s: %w", scraper.ErrDestination, id, err)
		}
		logger.Debug("uploaded image", zap.String("uri", imageURI))
	}
	s.stored++

	if s.notifier != nil {
		if _, err := s.notifier.Publish(ctx, newStoredPhoto(id, imageURI, record)); err != nil {
			logger.Warn("failed to publish stored photo", zap.Error(err))
		}
	}
	return nil
}

// Stored returns how many photos were fully persisted.
func (s *Sink) Stored() int {
	return s.stored
}

func (s *Sink) uploadImage(ctx context.Context, id, imageURL string) (string, error) {
	if imageURL == "" {
		return "", fmt.Errorf("record has no image url")
	}
	resp, err := s.fetcher.Fetch(ctx, scraper.FetchRequest{
		URL:     imageURL + s.cfg.SizeSuffix,
		Headers: http.Header{"User-Agent": {s.cfg.UserAgent}},
	})
	if err != nil {
		return "", fmt.Errorf("fetch image: %w", err)
	}
	encoded, err := s.encoder.Encode(bytes.NewReader(resp.Body))
	if err != nil {
		return "", fmt.Errorf("re-encode image: %w", err)
	}
	uri, err := s.blobs.PutObject(ctx, path.Join(s.cfg.Prefix, id+s.cfg.Extension), s.cfg.ContentType, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	return uri, nil
}
