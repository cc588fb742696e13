// Package imaging re-encodes photos before they are uploaded.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // decoder registration
	_ "image/png"  // decoder registration
	"io"

	"github.com/gen2brain/webp"
	"github.com/nfnt/resize"
	_ "golang.org/x/image/webp" // decoder registration
)

// ContentType is the MIME type of every encoded image.
const ContentType = "image/webp"

// Extension is the file extension matching ContentType.
const Extension = ".webp"

// ErrEmptyImage is returned for zero-length input.
var ErrEmptyImage = errors.New("empty image data")

// Encoder shrinks images to a maximum width and encodes them as lossy WebP.
type Encoder struct {
	MaxWidth uint
	Quality  int
}

// New returns an Encoder. Zero values select width 1200 and quality 80.
func New(maxWidth uint, quality int) *Encoder {
	if maxWidth == 0 {
		maxWidth = 1200
	}
	if quality <= 0 || quality > 100 {
		quality = 80
	}
	return &Encoder{MaxWidth: maxWidth, Quality: quality}
}

// Encode decodes JPEG, PNG or WebP input, scales it down to MaxWidth while
// keeping the aspect ratio, and returns the encoded bytes. Images narrower
// than MaxWidth are never enlarged.
func (e *Encoder) Encode(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	if uint(img.Bounds().Dx()) > e.MaxWidth {
		img = resize.Resize(e.MaxWidth, 0, img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, webp.Options{Quality: e.Quality}); err != nil {
		return nil, fmt.Errorf("encode %s as webp: %w", format, err)
	}
	return buf.Bytes(), nil
}
