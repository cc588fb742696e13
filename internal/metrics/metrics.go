// Package metrics exposes Prometheus collectors for the scraper service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Photo outcomes recorded by ObservePhoto.
const (
	PhotoDecoded = "decoded"
	PhotoSkipped = "skipped"
	PhotoFailed  = "failed"
)

var (
	scraperPhotosTotal         *prometheus.CounterVec
	scraperCacheLookupsTotal   *prometheus.CounterVec
	scraperAlbumsTotal         *prometheus.CounterVec
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec
	rateLimitDelaySeconds      *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		scraperPhotosTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_photos_total",
				Help: "Total number of photo entries processed, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		scraperCacheLookupsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_cache_lookups_total",
				Help: "Total number of result cache lookups, labeled by hit or miss.",
			},
			[]string{"result"},
		)

		scraperAlbumsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_albums_total",
				Help: "Total number of album traversals, labeled by status.",
			},
			[]string{"status"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15, 60},
			},
			[]string{"method", "route"},
		)

		rateLimitDelaySeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scraper_rate_limit_delay_seconds",
				Help:    "Histogram of time spent waiting for a fetch slot, labeled by host.",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"host"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObservePhoto counts one manifest entry with the given outcome.
func ObservePhoto(outcome string) {
	Init()
	scraperPhotosTotal.WithLabelValues(outcome).Inc()
}

// ObserveCacheLookup counts a cache lookup.
func ObserveCacheLookup(hit bool) {
	Init()
	result := "miss"
	if hit {
		result = "hit"
	}
	scraperCacheLookupsTotal.WithLabelValues(result).Inc()
}

// ObserveAlbum counts a finished traversal; status is "success" or "error".
func ObserveAlbum(status string) {
	Init()
	scraperAlbumsTotal.WithLabelValues(status).Inc()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveRateLimitDelay records how long a fetch waited for its host's limiter.
func ObserveRateLimitDelay(host string, delay time.Duration) {
	Init()
	rateLimitDelaySeconds.WithLabelValues(host).Observe(delay.Seconds())
}
