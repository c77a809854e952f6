package grayscale

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestLuminance(t *testing.T) {
	tests := []struct {
		r, g, b uint8
		want    uint8
	}{
		{255, 0, 0, 76},
		{0, 255, 0, 150},
		{0, 0, 255, 29},
		{255, 255, 255, 255},
		{0, 0, 0, 0},
		{128, 128, 128, 128},
	}
	for _, tt := range tests {
		if got := Luminance(tt.r, tt.g, tt.b); got != tt.want {
			t.Errorf("Luminance(%d,%d,%d) = %d, want %d", tt.r, tt.g, tt.b, got, tt.want)
		}
	}
}

func TestToGrayPreservesAlpha(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	src.SetNRGBA(1, 0, color.NRGBA{R: 255, A: 128})

	out, err := ToGray(src, MaxDimension)
	if err != nil {
		t.Fatalf("ToGray: %v", err)
	}
	if got := out.NRGBAAt(0, 0); got != (color.NRGBA{76, 76, 76, 255}) {
		t.Fatalf("opaque pixel = %+v", got)
	}
	if got := out.NRGBAAt(1, 0); got != (color.NRGBA{76, 76, 76, 128}) {
		t.Fatalf("translucent pixel = %+v", got)
	}
}

func TestToGrayDownscales(t *testing.T) {
	tests := []struct {
		name         string
		w, h, limit  int
		wantW, wantH int
	}{
		{"within cap", 300, 200, MaxDimension, 300, 200},
		{"wide", 5000, 100, MaxDimension, 4096, 82},
		{"tall", 100, 8192, MaxDimension, 50, 4096},
		{"thumbnail", 1200, 600, ThumbDimension, 240, 120},
		{"cap above max clamps", 5000, 5000, 10000, 4096, 4096},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ToGray(image.NewNRGBA(image.Rect(0, 0, tt.w, tt.h)), tt.limit)
			if err != nil {
				t.Fatalf("ToGray: %v", err)
			}
			b := out.Bounds()
			if b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Fatalf("size = %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestToGrayRejectsEmpty(t *testing.T) {
	if _, err := ToGray(image.NewNRGBA(image.Rect(0, 0, 0, 10)), 0); !errors.Is(err, ErrNoDimensions) {
		t.Fatalf("err = %v, want ErrNoDimensions", err)
	}
	if _, err := ToGray(nil, 0); !errors.Is(err, ErrNoDimensions) {
		t.Fatalf("nil err = %v, want ErrNoDimensions", err)
	}
}

type fakeOpener struct {
	data  []byte
	err   error
	calls []string
}

func (f *fakeOpener) OpenImage(_ context.Context, original string) (io.ReadCloser, error) {
	f.calls = append(f.calls, original)
	if f.err != nil {
		return nil, f.err
	}
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestConverterProducesReleasableHandle(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	for x := 0; x < 4; x++ {
		src.SetNRGBA(x, 0, color.NRGBA{R: 255, A: 255})
		src.SetNRGBA(x, 1, color.NRGBA{B: 255, A: 255})
	}
	opener := &fakeOpener{data: encodePNG(t, src)}
	dir := filepath.Join(t.TempDir(), "res")

	conv, err := NewConverter(opener, dir)
	if err != nil {
		t.Fatalf("NewConverter: %v", err)
	}
	h, err := conv.Convert(context.Background(), "https://img/a.png", MaxDimension)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if h.Source() != "https://img/a.png" || len(opener.calls) != 1 {
		t.Fatalf("source = %q calls = %v", h.Source(), opener.calls)
	}
	if w, hh := h.Size(); w != 4 || hh != 2 {
		t.Fatalf("size = %dx%d", w, hh)
	}
	if filepath.Dir(h.Path()) != dir {
		t.Fatalf("handle path %q outside %q", h.Path(), dir)
	}

	rc, err := h.Open()
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	decoded, err := png.Decode(rc)
	_ = rc.Close()
	if err != nil {
		t.Fatalf("decode handle: %v", err)
	}
	r, g, b, _ := decoded.At(0, 0).RGBA()
	if r>>8 != 76 || g>>8 != 76 || b>>8 != 76 {
		t.Fatalf("top pixel = %d,%d,%d", r>>8, g>>8, b>>8)
	}
	r, _, _, _ = decoded.At(0, 1).RGBA()
	if r>>8 != 29 {
		t.Fatalf("bottom pixel = %d, want 29", r>>8)
	}

	if err := h.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if err := h.Release(); err != nil {
		t.Fatalf("second Release: %v", err)
	}
	if !h.Released() {
		t.Fatal("Released() = false")
	}
	if _, err := os.Stat(h.Path()); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("backing file still present: %v", err)
	}
	if _, err := h.Open(); !errors.Is(err, ErrReleased) {
		t.Fatalf("Open after release err = %v", err)
	}

	if err := conv.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(dir); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("resource dir still present: %v", err)
	}
}

func TestConverterErrors(t *testing.T) {
	dir := t.TempDir()
	boom := errors.New("proxy down")

	conv, err := NewConverter(&fakeOpener{err: boom}, dir)
	if err != nil {
		t.Fatalf("NewConverter: %v", err)
	}
	if _, err := conv.Convert(context.Background(), "u", 0); !errors.Is(err, boom) {
		t.Fatalf("fetch err = %v", err)
	}

	conv, _ = NewConverter(&fakeOpener{data: []byte("not an image")}, dir)
	if _, err := conv.Convert(context.Background(), "u", 0); err == nil {
		t.Fatal("expected decode error")
	}

	conv, _ = NewConverter(&fakeOpener{data: encodePNG(t, image.NewNRGBA(image.Rect(0, 0, 2, 2)))}, dir)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := conv.Convert(ctx, "u", 0); !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled err = %v", err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("failed conversions left %d files", len(entries))
	}

	if _, err := NewConverter(nil, dir); err == nil {
		t.Fatal("expected error for nil opener")
	}
	if _, err := NewConverter(&fakeOpener{}, " "); err == nil {
		t.Fatal("expected error for empty dir")
	}
}

// withDeclaredSize rewrites the IHDR dimensions of an encoded PNG and fixes
// up the chunk CRC, leaving the pixel data untouched.
func withDeclaredSize(t *testing.T, data []byte, w, h uint32) []byte {
	t.Helper()
	out := bytes.Clone(data)
	// 8-byte signature, 4-byte length, then "IHDR" at 12..16.
	if string(out[12:16]) != "IHDR" {
		t.Fatalf("unexpected PNG layout")
	}
	binary.BigEndian.PutUint32(out[16:20], w)
	binary.BigEndian.PutUint32(out[20:24], h)
	binary.BigEndian.PutUint32(out[29:33], crc32.ChecksumIEEE(out[12:29]))
	return out
}

func TestConverterRejectsOversizedHeader(t *testing.T) {
	small := encodePNG(t, image.NewNRGBA(image.Rect(0, 0, 1, 1)))
	opener := &fakeOpener{data: withDeclaredSize(t, small, 100_000, 100_000)}

	conv, err := NewConverter(opener, t.TempDir())
	if err != nil {
		t.Fatalf("NewConverter: %v", err)
	}
	h, err := conv.Convert(context.Background(), "https://i/huge.png", 0)
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("err = %v, want ErrTooLarge", err)
	}
	if h != nil {
		t.Fatalf("expected no handle for oversized image")
	}
}
