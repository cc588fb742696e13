package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/JakeFAU/photo-album-scraper/internal/config"
	"github.com/JakeFAU/photo-album-scraper/internal/metrics"
	"github.com/JakeFAU/photo-album-scraper/internal/scraper"
)

// CacheHeader reports whether a scrape was served from the cache.
const CacheHeader = "X-Cache"

// AlbumScraper returns the photo records of an album and whether they were
// served from a cache.
type AlbumScraper interface {
	Scrape(ctx context.Context, albumURL string) ([]scraper.PhotoRecord, bool, error)
}

// ReadinessCheck reports whether downstream dependencies can serve traffic.
type ReadinessCheck func(ctx context.Context) error

// Server wires HTTP handlers to the cached scraper.
type Server struct {
	router  chi.Router
	scraper AlbumScraper
	ready   ReadinessCheck
	logger  *zap.Logger
}

// Option customizes a Server.
type Option func(*Server)

// WithReadinessCheck sets the probe consulted by /readyz.
func WithReadinessCheck(check ReadinessCheck) Option {
	return func(s *Server) {
		s.ready = check
	}
}

// NewServer constructs a Server with middleware and routes.
func NewServer(albums AlbumScraper, auth config.AuthConfig, logger *zap.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		scraper: albums,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(metrics.Middleware)
	r.Use(corsMiddleware(auth.Header))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		if auth.Enabled {
			r.Use(apiKeyMiddleware(auth.Header, auth.APIKey))
		}
		r.Get("/scrape", s.scrape)
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) scrape(w http.ResponseWriter, r *http.Request) {
	albumURL := strings.TrimSpace(r.URL.Query().Get("url"))
	if albumURL == "" {
		writeError(w, http.StatusBadRequest, "missing url query parameter")
		return
	}

	// A scrape runs to completion even if the client goes away so the result
	// still lands in the cache.
	photos, hit, err := s.scraper.Scrape(context.WithoutCancel(r.Context()), albumURL)
	if err != nil {
		status := statusFor(err)
		s.logger.Warn("scrape failed",
			zap.String("album_url", scraper.RedactKey(albumURL)),
			zap.Int("status", status),
			zap.String("request_id", RequestID(r.Context())),
			zap.Error(err),
		)
		writeError(w, status, err.Error())
		return
	}

	if hit {
		w.Header().Set(CacheHeader, "HIT")
	} else {
		w.Header().Set(CacheHeader, "MISS")
	}
	if photos == nil {
		photos = []scraper.PhotoRecord{}
	}
	writeJSON(w, http.StatusOK, photos)
}

func statusFor(err error) int {
	switch {
	case scraper.IsInputError(err):
		return http.StatusBadRequest
	case isTimeout(err):
		// Album fetch timeouts are also upstream errors; the timeout wins.
		return http.StatusGatewayTimeout
	case scraper.IsUpstreamError(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("write JSON failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
