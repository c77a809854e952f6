package grayscale

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"strings"

	// Decoders for the formats the provider serves.
	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/webp"
)

const (
	// maxSourceBytes bounds how much of a remote image is read.
	maxSourceBytes = 64 << 20
	// maxSourcePixels bounds the decoded size; the header is checked before
	// any pixel buffer is allocated.
	maxSourcePixels = 40_000_000
)

// ErrTooLarge is returned when an image declares more pixels than the
// converter will decode.
var ErrTooLarge = errors.New("grayscale: image too large")

// Opener fetches original image bytes, typically through the same-origin
// image proxy so decoding never touches a cross-origin resource.
type Opener interface {
	OpenImage(ctx context.Context, original string) (io.ReadCloser, error)
}

// Converter turns remote images into grayscale resource handles.
type Converter struct {
	opener Opener
	dir    string
}

// NewConverter creates dir if needed and returns a converter writing there.
func NewConverter(opener Opener, dir string) (*Converter, error) {
	if opener == nil {
		return nil, errors.New("grayscale: opener is nil")
	}
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("grayscale: resource dir is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create resource dir: %w", err)
	}
	return &Converter{opener: opener, dir: dir}, nil
}

// Dir returns the resource directory.
func (c *Converter) Dir() string { return c.dir }

// Convert fetches original, converts it to grayscale within limit pixels per
// side, and stores the result as a new handle owned by the caller.
func (c *Converter) Convert(ctx context.Context, original string, limit int) (*Handle, error) {
	rc, err := c.opener.OpenImage(ctx, original)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	data, err := io.ReadAll(io.LimitReader(rc, maxSourceBytes))
	_ = rc.Close()
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, ErrNoDimensions
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxSourcePixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooLarge, cfg.Width, cfg.Height)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	gray, err := ToGray(src, limit)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.store(original, gray)
}

func (c *Converter) store(original string, img *image.NRGBA) (*Handle, error) {
	f, err := os.CreateTemp(c.dir, "gray-*.png")
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return nil, fmt.Errorf("encode resource: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return nil, fmt.Errorf("write resource: %w", err)
	}
	b := img.Bounds()
	return &Handle{path: f.Name(), source: original, width: b.Dx(), height: b.Dy()}, nil
}

// Close removes the resource directory and every file left in it.
func (c *Converter) Close() error {
	if err := os.RemoveAll(c.dir); err != nil {
		return fmt.Errorf("remove resource dir: %w", err)
	}
	return nil
}
