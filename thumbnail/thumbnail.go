// Package thumbnail decodes catalog images and scales them down, caching the results.
package thumbnail

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"go.uber.org/zap"
)

// ErrUndecodable is returned when a file exists but is not an image we can read.
var ErrUndecodable = errors.New("cannot decode image")

// Decoder produces thumbnails by absolute path. Entries are keyed by path, modification time
// and box size, so an edited file is decoded again.
type Decoder struct {
	cache  *expirable.LRU[string, image.Image]
	logger *zap.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// NewDecoder creates a decoder caching up to size thumbnails for ttl. A ttl of zero never expires.
func NewDecoder(size int, ttl time.Duration, logger *zap.Logger) *Decoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if size <= 0 {
		size = 1
	}
	return &Decoder{
		cache:  expirable.NewLRU[string, image.Image](size, nil, ttl),
		logger: logger,
	}
}

// Thumbnail returns the image at path scaled to fit within maxW x maxH.
func (d *Decoder) Thumbnail(path string, maxW, maxH int) (image.Image, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("%s|%d|%dx%d", path, info.ModTime().UnixNano(), maxW, maxH)
	if img, ok := d.cache.Get(key); ok {
		d.hits.Add(1)
		return img, nil
	}
	d.misses.Add(1)

	src, err := Decode(path)
	if err != nil {
		d.logger.Debug("thumbnail decode failed", zap.String("path", path), zap.Error(err))
		return nil, err
	}
	thumb := Fit(src, maxW, maxH)
	d.cache.Add(key, thumb)
	return thumb, nil
}

// Stats reports cache hits and misses since the decoder was created.
func (d *Decoder) Stats() (hits, misses int64) {
	return d.hits.Load(), d.misses.Load()
}

// Decode reads a png, jpeg, gif or bmp file.
func Decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUndecodable, path, err)
	}
	return img, nil
}

// Fit scales src down to fit within maxW x maxH keeping its aspect ratio.
// Images already small enough are returned unchanged.
func Fit(src image.Image, maxW, maxH int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxW <= 0 || maxH <= 0 || w == 0 || h == 0 || (w <= maxW && h <= maxH) {
		return src
	}

	nw, nh := maxW, h*maxW/w
	if nh > maxH {
		nw, nh = w*maxH/h, maxH
	}
	nw, nh = max(nw, 1), max(nh, 1)

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

// WritePNG encodes img as PNG.
func WritePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}
