package scraper

import (
	"net/http"
	"time"
)

// Variant selects how decoded records are linked.
type Variant int

const (
	// VariantService links records to the direct image URL. Used by the HTTP service.
	VariantService Variant = iota
	// VariantIngest links records to the photo page URL and carries the image URL
	// separately. Used by the ingestion run, where the page URL is the dedup key.
	VariantIngest
)

func (v Variant) String() string {
	switch v {
	case VariantService:
		return "service"
	case VariantIngest:
		return "ingest"
	default:
		return "unknown"
	}
}

// Exif holds the camera fields of a photo. A field is set only when its
// source value was truthy, so zero values are omitted when encoded.
type Exif struct {
	Make         string  `json:"make,omitempty"`
	Model        string  `json:"model,omitempty"`
	Lens         string  `json:"lens,omitempty"`
	FocalLength  float64 `json:"focal_length,omitempty"`
	Aperture     float64 `json:"aperture,omitempty"`
	ISO          int64   `json:"iso,omitempty"`
	ShutterSpeed float64 `json:"shutter_speed,omitempty"`
}

// PhotoRecord is the decoded metadata of one photo.
type PhotoRecord struct {
	Link           string  `json:"link"`
	Image          string  `json:"image,omitempty"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	TakenTimestamp *int64  `json:"takenTimestamp"`
	AddedTimestamp *int64  `json:"addedTimestamp"`
	Description    *string `json:"description"`
	Exif
}

// AlbumRef identifies a shared album by its share id and access key.
type AlbumRef struct {
	ID  string
	Key string
}

// FetchRequest captures everything needed to fetch a URL.
type FetchRequest struct {
	URL     string
	Headers http.Header
}

// FetchResponse is the result returned by a Fetcher implementation.
type FetchResponse struct {
	URL        string
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
}

// Stats counts what happened to each manifest entry during a traversal.
type Stats struct {
	Listed  int `json:"listed"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
	Decoded int `json:"decoded"`
}

// Result is the outcome of one album traversal.
type Result struct {
	Album  AlbumRef
	Photos []PhotoRecord
	Stats  Stats
}
