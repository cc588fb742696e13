package headless

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/chromedp/cdproto/network"
)

func TestNewChromedpValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewChromedp(Config{MaxParallel: -1}); err == nil {
		t.Fatal("expected error for negative max parallel")
	}
	fetcher, err := NewChromedp(Config{MaxParallel: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer fetcher.Close()
	if cap(fetcher.limiter) != 2 {
		t.Fatalf("expected limiter capacity 2, got %d", cap(fetcher.limiter))
	}
	if fetcher.cfg.NavigationTimeout != defaultNavTimeout {
		t.Fatalf("expected default nav timeout, got %v", fetcher.cfg.NavigationTimeout)
	}
}

func TestAcquireHonoursContext(t *testing.T) {
	t.Parallel()

	fetcher := &Fetcher{limiter: make(chan struct{}, 1)}
	if err := fetcher.acquire(context.Background()); err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := fetcher.acquire(ctx); err == nil {
		t.Fatal("expected second acquire to wait for the context")
	}
	fetcher.release()
	if err := fetcher.acquire(context.Background()); err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
}

func TestSplitUserAgent(t *testing.T) {
	t.Parallel()

	ua, extra := splitUserAgent(http.Header{
		"User-Agent":      {"Mozilla/5.0"},
		"Accept-Language": {"en", "de"},
		"X-Empty":         {},
	}, "fallback")
	if ua != "Mozilla/5.0" {
		t.Fatalf("expected request user agent, got %q", ua)
	}
	if _, ok := extra["User-Agent"]; ok {
		t.Fatal("user agent must not be sent as an extra header")
	}
	if _, ok := extra["X-Empty"]; ok {
		t.Fatal("empty header values must be dropped")
	}
	if v, ok := extra["Accept-Language"].([]string); !ok || len(v) != 2 {
		t.Fatalf("expected two accept-language values, got %#v", extra["Accept-Language"])
	}

	ua, _ = splitUserAgent(nil, "fallback")
	if ua != "fallback" {
		t.Fatalf("expected fallback user agent, got %q", ua)
	}
}

func TestResponseMetaCaptureAndFallbacks(t *testing.T) {
	t.Parallel()

	meta := newResponseMeta()
	meta.captureEvent(&network.EventResponseReceived{
		Type: network.ResourceTypeDocument,
		Response: &network.Response{
			Status:  404,
			URL:     "https://photos.google.com/share/gone",
			Headers: network.Headers{"X-Request-ID": "abc"},
		},
	})
	meta.captureEvent(&network.EventResponseReceived{
		Type:     network.ResourceTypeDocument,
		Response: &network.Response{Status: 200, URL: "https://iframe"},
	})
	meta.captureEvent(&network.EventResponseReceived{
		Type:     network.ResourceTypeScript,
		Response: &network.Response{Status: 500, URL: "https://script"},
	})
	status, headers, url := meta.snapshotWithFallbacks("https://req", "")
	if status != 404 || headers.Get("X-Request-ID") != "abc" || url != "https://photos.google.com/share/gone" {
		t.Fatalf("unexpected snapshot values: status=%d headers=%v url=%s", status, headers, url)
	}

	meta = newResponseMeta()
	status, _, url = meta.snapshotWithFallbacks("https://req", "https://final")
	if status != http.StatusOK || url != "https://final" {
		t.Fatalf("expected fallback values, got status=%d url=%s", status, url)
	}
	_, _, url = meta.snapshotWithFallbacks("https://req", "")
	if url != "https://req" {
		t.Fatalf("expected request url fallback, got %s", url)
	}
}
