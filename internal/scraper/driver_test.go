package scraper

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	photoABC = "https://photos.google.com/share/ALBUM1/photo/abc?key=KEY1"
	photoDEF = "https://photos.google.com/share/ALBUM1/photo/def?key=KEY1"
)

const photoManifestDEF = `[["def",["https://img/2",640,480,null,null,null,null,null,null],1690000001000]]`

func TestDriverScrapeVisitsPhotosInManifestOrder(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher()
	fetcher.pages[testAlbumURL] = albumPageHTML
	fetcher.pages[photoABC] = photoPageHTML(photoManifestCanon)
	fetcher.pages[photoDEF] = photoPageHTML(photoManifestDEF)

	result, err := NewDriver(fetcher, nil).Scrape(context.Background(), testAlbumURL)
	require.NoError(t, err)

	assert.Equal(t, []string{testAlbumURL, photoABC, photoDEF}, fetcher.requested())
	require.Len(t, result.Photos, 2)
	assert.Equal(t, "https://img/1", result.Photos[0].Link)
	assert.Equal(t, "Canon", result.Photos[0].Make)
	assert.Equal(t, "https://img/2", result.Photos[1].Link)
	assert.Equal(t, Exif{}, result.Photos[1].Exif)
	assert.Equal(t, Stats{Listed: 2, Decoded: 2}, result.Stats)
	assert.Equal(t, AlbumRef{ID: "ALBUM1", Key: "KEY1"}, result.Album)

	for _, req := range fetcher.requests {
		assert.Equal(t, defaultUserAgent, req.Headers.Get("User-Agent"))
	}
}

func TestDriverScrapeSkipsUnusablePhotos(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher()
	fetcher.pages[testAlbumURL] = albumPageHTML
	fetcher.errs[photoABC] = errors.New("connection reset")
	fetcher.pages[photoDEF] = photoPageHTML(photoManifestDEF)

	result, err := NewDriver(fetcher, nil).Scrape(context.Background(), testAlbumURL)
	require.NoError(t, err)
	require.Len(t, result.Photos, 1)
	assert.Equal(t, "https://img/2", result.Photos[0].Link)
	assert.Equal(t, Stats{Listed: 2, Failed: 1, Decoded: 1}, result.Stats)
}

func TestDriverScrapeSkipsPhotoWithoutManifest(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher()
	fetcher.pages[testAlbumURL] = albumPageHTML
	fetcher.pages[photoABC] = `<html><script>nothing here</script></html>`
	fetcher.pages[photoDEF] = photoPageHTML(`[["def",["https://img/2",0,480]]]`)

	result, err := NewDriver(fetcher, nil).Scrape(context.Background(), testAlbumURL)
	require.NoError(t, err)
	assert.Empty(t, result.Photos)
	assert.Equal(t, Stats{Listed: 2, Failed: 2}, result.Stats)
}

func TestDriverScrapeAlbumErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		page    string
		wantErr error
	}{
		{name: "no scripts", page: `<html><body>gone</body></html>`, wantErr: ErrNoScriptBlocks},
		{name: "no marked block", page: `<html><script>var x = 1;</script></html>`, wantErr: ErrNoMarkedBlock},
		{name: "unterminated manifest", page: `<script>cb({data:[null,[["abc"],["def"]})</script>`, wantErr: ErrCarveFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fetcher := newFakeFetcher()
			fetcher.pages[testAlbumURL] = tt.page

			_, err := NewDriver(fetcher, nil).Scrape(context.Background(), testAlbumURL)
			require.ErrorIs(t, err, tt.wantErr)
			assert.False(t, IsInputError(err))
			assert.True(t, IsUpstreamError(err))
			assert.Equal(t, []string{testAlbumURL}, fetcher.requested(), "no photo page may be fetched")
		})
	}
}

func TestDriverScrapeAlbumFetchError(t *testing.T) {
	t.Parallel()

	boom := errors.New("status 503")
	fetcher := newFakeFetcher()
	fetcher.errs[testAlbumURL] = boom

	_, err := NewDriver(fetcher, nil).Scrape(context.Background(), testAlbumURL)
	require.ErrorIs(t, err, boom)
	require.ErrorIs(t, err, ErrUpstream)
	require.True(t, IsUpstreamError(err))
	require.False(t, IsInputError(err))
}

func TestDriverScrapeMalformedURL(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher()
	_, err := NewDriver(fetcher, nil).Scrape(context.Background(), "https://photos.google.com/share/ALBUM1")
	require.ErrorIs(t, err, ErrMalformedAlbumURL)
	assert.True(t, IsInputError(err))
	assert.Empty(t, fetcher.requested())
}

func TestDriverScrapeGateSkipsBeforeFetch(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher()
	fetcher.pages[testAlbumURL] = albumPageHTML
	fetcher.pages[photoDEF] = photoPageHTML(photoManifestDEF)
	sink := &recordingSink{}

	driver := NewDriver(fetcher, nil,
		WithVariant(VariantIngest),
		WithGate(setGate{photoABC: true}),
		WithSink(sink),
	)
	result, err := driver.Scrape(context.Background(), testAlbumURL)
	require.NoError(t, err)

	assert.Equal(t, []string{testAlbumURL, photoDEF}, fetcher.requested())
	assert.Equal(t, Stats{Listed: 2, Skipped: 1, Decoded: 1}, result.Stats)
	require.Len(t, sink.records, 1)
	assert.Equal(t, photoDEF, sink.records[0].Link)
	assert.Equal(t, "https://img/2", sink.records[0].Image)
}

func TestDriverScrapeSinkErrorAborts(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher()
	fetcher.pages[testAlbumURL] = albumPageHTML
	fetcher.pages[photoABC] = photoPageHTML(photoManifestCanon)
	fetcher.pages[photoDEF] = photoPageHTML(photoManifestDEF)
	sink := &recordingSink{err: ErrDestination}

	_, err := NewDriver(fetcher, nil, WithSink(sink)).Scrape(context.Background(), testAlbumURL)
	require.ErrorIs(t, err, ErrDestination)
	assert.Equal(t, []string{testAlbumURL, photoABC}, fetcher.requested(), "traversal stops at the first sink failure")
}

func TestDriverScrapeStopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	fetcher := &cancelingFetcher{fakeFetcher: newFakeFetcher(), cancel: cancel, after: 1}
	fetcher.pages[testAlbumURL] = albumPageHTML

	_, err := NewDriver(fetcher, nil).Scrape(ctx, testAlbumURL)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{testAlbumURL, photoABC}, fetcher.requested())
}

func TestDriverCustomUserAgent(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher()
	fetcher.pages[testAlbumURL] = `<script>data:[null,[]]</script>`

	_, _ = NewDriver(fetcher, nil, WithUserAgent("scraper-test/1.0")).Scrape(context.Background(), testAlbumURL)
	require.NotEmpty(t, fetcher.requests)
	assert.Equal(t, "scraper-test/1.0", fetcher.requests[0].Headers.Get("User-Agent"))
}

// cancelingFetcher cancels the context once more than after requests were served.
type cancelingFetcher struct {
	*fakeFetcher
	cancel context.CancelFunc
	after  int
}

func (f *cancelingFetcher) Fetch(ctx context.Context, req FetchRequest) (FetchResponse, error) {
	resp, err := f.fakeFetcher.Fetch(ctx, req)
	if len(f.requested()) > f.after {
		f.cancel()
		return FetchResponse{}, ctx.Err()
	}
	return resp, err
}
