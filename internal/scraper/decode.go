package scraper

import (
	"encoding/json"
	"fmt"
	"math"
)

// Positions inside the photo manifest. The format is undocumented; every
// offset the package relies on lives here.
const (
	rootIndex        = 0 // parsed[0] is the photo node R
	infoIndex        = 1 // R[1] is the image node I
	takenIndex       = 2 // R[2]
	addedIndex       = 5 // R[5]
	attributesIndex  = 10
	descriptionKey   = "396644657"
	imageURLIndex    = 0 // I[0]
	widthIndex       = 1 // I[1]
	heightIndex      = 2 // I[2]
	exifGroupIndex   = 8 // I[8]
	exifTupleIndex   = 4 // I[8][4]
	albumEntryIDItem = 0 // entry[0] in the album manifest
)

// DecodeAlbumEntries returns the photo identifiers of an album manifest in
// manifest order. Entries without a usable identifier are dropped.
func DecodeAlbumEntries(parsed []any) []string {
	ids := make([]string, 0, len(parsed))
	for _, entry := range parsed {
		switch id := index(entry, albumEntryIDItem).(type) {
		case string:
			if id != "" {
				ids = append(ids, id)
			}
		case json.Number:
			ids = append(ids, id.String())
		}
	}
	return ids
}

// DecodePhoto maps a parsed photo manifest to a PhotoRecord. It is pure: the
// same input always yields the same record. Missing intermediate nodes decode
// as absent; a manifest without image URL, width and height is rejected with
// ErrDecodeFailed.
func DecodePhoto(parsed []any, pageURL string, variant Variant) (PhotoRecord, error) {
	root := index(parsed, rootIndex)
	info := index(root, infoIndex)

	imageURL, ok := asString(index(info, imageURLIndex))
	if !ok {
		return PhotoRecord{}, fmt.Errorf("%w: image url", ErrDecodeFailed)
	}
	width, ok := asInt(index(info, widthIndex))
	if !ok || width <= 0 {
		return PhotoRecord{}, fmt.Errorf("%w: width", ErrDecodeFailed)
	}
	height, ok := asInt(index(info, heightIndex))
	if !ok || height <= 0 {
		return PhotoRecord{}, fmt.Errorf("%w: height", ErrDecodeFailed)
	}

	record := PhotoRecord{
		Width:          int(width),
		Height:         int(height),
		TakenTimestamp: nullableInt(index(root, takenIndex)),
		AddedTimestamp: nullableInt(index(root, addedIndex)),
		Exif:           decodeExif(index(index(info, exifGroupIndex), exifTupleIndex)),
	}
	if desc, ok := asString(index(key(index(root, attributesIndex), descriptionKey), 0)); ok {
		record.Description = &desc
	}

	switch variant {
	case VariantIngest:
		record.Link = pageURL
		record.Image = imageURL
	default:
		record.Link = imageURL
	}
	return record, nil
}

// decodeExif copies the make, model, lens, focal length, aperture, iso and
// shutter speed tuple, keeping only truthy values.
func decodeExif(tuple any) Exif {
	// TODO: a genuine ISO or aperture of 0 is dropped here as well; revisit if
	// downstream consumers need to tell "zero" from "unknown".
	var exif Exif
	if !truthy(tuple) {
		return exif
	}
	exif.Make, _ = asString(index(tuple, 0))
	exif.Model, _ = asString(index(tuple, 1))
	exif.Lens, _ = asString(index(tuple, 2))
	exif.FocalLength, _ = asFloat(index(tuple, 3))
	exif.Aperture, _ = asFloat(index(tuple, 4))
	if iso, ok := asInt(index(tuple, 5)); ok {
		exif.ISO = iso
	}
	exif.ShutterSpeed, _ = asFloat(index(tuple, 6))
	return exif
}

// index returns v[i] when v is an array long enough, nil otherwise.
func index(v any, i int) any {
	arr, ok := v.([]any)
	if !ok || i < 0 || i >= len(arr) {
		return nil
	}
	return arr[i]
}

// key returns v[k] when v is an object, nil otherwise.
func key(v any, k string) any {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	return obj[k]
}

// truthy follows JavaScript truthiness for JSON values.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := t.Float64()
		return err == nil && f != 0
	default:
		return true
	}
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// asFloat returns non-zero numbers only.
func asFloat(v any) (float64, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	f, err := n.Float64()
	if err != nil || f == 0 {
		return 0, false
	}
	return f, true
}

// asInt returns integral numbers, including zero.
func asInt(v any) (int64, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	if i, err := n.Int64(); err == nil {
		return i, true
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// nullableInt keeps any present integer, zero included, and maps everything else to nil.
func nullableInt(v any) *int64 {
	i, ok := asInt(v)
	if !ok {
		return nil
	}
	return &i
}
