package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInit(t *testing.T) {
	// Call Init multiple times to test idempotency.
	Init()
	Init()

	if scraperPhotosTotal == nil || scraperCacheLookupsTotal == nil || scraperAlbumsTotal == nil ||
		httpRequestsTotal == nil || httpRequestDurationSeconds == nil {
		t.Fatal("Init() did not initialize metrics collectors")
	}
}

func TestObservePhoto(t *testing.T) {
	Init()
	before := testutil.ToFloat64(scraperPhotosTotal.WithLabelValues(PhotoSkipped))
	ObservePhoto(PhotoSkipped)
	ObservePhoto(PhotoSkipped)
	if got := testutil.ToFloat64(scraperPhotosTotal.WithLabelValues(PhotoSkipped)); got != before+2 {
		t.Errorf("expected skipped counter to grow by 2, got %f -> %f", before, got)
	}
}

func TestObserveCacheLookup(t *testing.T) {
	Init()
	hits := testutil.ToFloat64(scraperCacheLookupsTotal.WithLabelValues("hit"))
	misses := testutil.ToFloat64(scraperCacheLookupsTotal.WithLabelValues("miss"))

	ObserveCacheLookup(true)
	ObserveCacheLookup(false)
	ObserveCacheLookup(false)

	if got := testutil.ToFloat64(scraperCacheLookupsTotal.WithLabelValues("hit")); got != hits+1 {
		t.Errorf("hit counter = %f; want %f", got, hits+1)
	}
	if got := testutil.ToFloat64(scraperCacheLookupsTotal.WithLabelValues("miss")); got != misses+2 {
		t.Errorf("miss counter = %f; want %f", got, misses+2)
	}
}

func TestObserveAlbum(t *testing.T) {
	Init()
	before := testutil.ToFloat64(scraperAlbumsTotal.WithLabelValues("error"))
	ObserveAlbum("error")
	if got := testutil.ToFloat64(scraperAlbumsTotal.WithLabelValues("error")); got != before+1 {
		t.Errorf("album error counter = %f; want %f", got, before+1)
	}
}

func TestObserveRateLimitDelay(t *testing.T) {
	ObserveRateLimitDelay("photos.example.test", 250*time.Millisecond)
	if n := testutil.CollectAndCount(rateLimitDelaySeconds, "scraper_rate_limit_delay_seconds"); n < 1 {
		t.Errorf("expected at least one rate limit series, got %d", n)
	}
}
