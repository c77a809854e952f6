package grayscale

import (
	"errors"
	"image"
	"math"

	xdraw "golang.org/x/image/draw"
)

const (
	// MaxDimension caps either side of any transformed image.
	MaxDimension = 4096
	// ThumbDimension caps history thumbnails.
	ThumbDimension = 240
)

// ErrNoDimensions is returned for images that decode to an empty rectangle.
var ErrNoDimensions = errors.New("grayscale: image has no dimensions")

// Luminance returns the Rec. 601 luma of an sRGB triple, rounded half to even.
func Luminance(r, g, b uint8) uint8 {
	y := 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
	return uint8(min(math.RoundToEven(y), 255))
}

// FitWithin returns (w, h) scaled so neither side exceeds limit, keeping the
// aspect ratio. Sizes already within limit are returned unchanged.
func FitWithin(w, h, limit int) (int, int) {
	if limit <= 0 {
		limit = MaxDimension
	}
	longest := max(w, h)
	if longest <= limit {
		return w, h
	}
	scale := float64(limit) / float64(longest)
	sw := max(1, int(math.Round(float64(w)*scale)))
	sh := max(1, int(math.Round(float64(h)*scale)))
	return min(sw, limit), min(sh, limit)
}

// ToGray downscales src to fit limit and replaces every pixel's colour
// channels with its luminance. Alpha is preserved.
func ToGray(src image.Image, limit int) (*image.NRGBA, error) {
	if src == nil {
		return nil, ErrNoDimensions
	}
	b := src.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, ErrNoDimensions
	}
	if limit <= 0 || limit > MaxDimension {
		limit = MaxDimension
	}

	w, h := FitWithin(b.Dx(), b.Dy(), limit)
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		xdraw.Draw(dst, dst.Bounds(), src, b.Min, xdraw.Src)
	} else {
		xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	}

	for y := 0; y < h; y++ {
		row := dst.Pix[y*dst.Stride : y*dst.Stride+w*4]
		for i := 0; i < len(row); i += 4 {
			l := Luminance(row[i], row[i+1], row[i+2])
			row[i], row[i+1], row[i+2] = l, l, l
		}
	}
	return dst, nil
}
