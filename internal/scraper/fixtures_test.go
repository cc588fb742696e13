package scraper

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

const (
	testAlbumURL = "https://photos.google.com/share/ALBUM1?key=KEY1"

	albumPageHTML = `<html><head>
<script nonce="x">window.WIZ_global_data = {"foo":"bar"};</script>
<script>AF_initDataCallback({key: 'ds:1', hash: '2', data:[null,[["abc"],["def"]]], sideChannel: {}});</script>
</head><body></body></html>`

	photoManifestCanon = `[["abc",["https://img/1",100,200,null,null,null,null,null,[null,null,null,null,["Canon",null,null,null,null,null,null]]],1690000000000,null,null,1690000500000,null,null,null,null,{"396644657":["Sunset over the bay"]}]]`
)

func photoPageHTML(manifest string) string {
	return fmt.Sprintf(`<html><head>
<script>var _F_toggles = [[1,2],[3]];</script>
<script class="ds:0">AF_initDataCallback({key: 'ds:0', hash: '1', data:%s, sideChannel: {}});</script>
</head></html>`, manifest)
}

// fakeFetcher serves canned bodies and records every requested URL.
type fakeFetcher struct {
	mu       sync.Mutex
	pages    map[string]string
	errs     map[string]error
	requests []FetchRequest
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{pages: map[string]string{}, errs: map[string]error{}}
}

func (f *fakeFetcher) Fetch(_ context.Context, req FetchRequest) (FetchResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if err, ok := f.errs[req.URL]; ok {
		return FetchResponse{}, err
	}
	body, ok := f.pages[req.URL]
	if !ok {
		return FetchResponse{}, errors.New("status 404")
	}
	return FetchResponse{URL: req.URL, StatusCode: 200, Body: []byte(body)}, nil
}

func (f *fakeFetcher) requested() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.requests))
	for _, r := range f.requests {
		out = append(out, r.URL)
	}
	return out
}

type setGate map[string]bool

func (g setGate) Seen(link string) bool { return g[link] }

type recordingSink struct {
	records []PhotoRecord
	err     error
}

func (s *recordingSink) Persist(_ context.Context, rec PhotoRecord) error {
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, rec)
	return nil
}
