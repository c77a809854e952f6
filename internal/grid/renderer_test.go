package grid

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"testing"

	"github.com/five82/pinterval/internal/grayscale"
	"github.com/five82/pinterval/internal/imagecache"
	"github.com/five82/pinterval/internal/pinboard"
)

type pngOpener struct{ data []byte }

func (o pngOpener) OpenImage(context.Context, string) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(o.data)), nil
}

func newConverter(t *testing.T) *grayscale.Converter {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("encode: %v", err)
	}
	conv, err := grayscale.NewConverter(pngOpener{data: buf.Bytes()}, t.TempDir())
	if err != nil {
		t.Fatalf("NewConverter: %v", err)
	}
	return conv
}

func newCache(t *testing.T) *imagecache.Cache[*grayscale.Handle] {
	t.Helper()
	c, err := imagecache.New[*grayscale.Handle](imagecache.DefaultCapacity, nil)
	if err != nil {
		t.Fatalf("cache: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func items(n int) []pinboard.Pin {
	out := make([]pinboard.Pin, n)
	for i := range out {
		out[i] = pinboard.Pin{ID: fmt.Sprintf("p%d", i), Image: fmt.Sprintf("https://img/p%d", i)}
	}
	return out
}

func slotIDs(slots []Slot) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		if s.Visible() {
			out[i] = s.Pin.ID
		}
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRenderResolvesSlotsWithWraparound(t *testing.T) {
	r := NewRenderer(nil, nil, Options{})
	list := items(6)

	r.Render(Frame{Items: list, Index: 0, GridSize: 4, Visible: true})
	if got := slotIDs(r.Slots()); !equal(got, []string{"p0", "p1", "p2", "p3"}) {
		t.Fatalf("slots = %v", got)
	}

	r.Render(Frame{Items: list, Index: 4, GridSize: 4, Visible: true})
	if got := slotIDs(r.Slots()); !equal(got, []string{"p4", "p5", "p0", "p1"}) {
		t.Fatalf("wrapped slots = %v", got)
	}
	if r.Generation() != 2 {
		t.Fatalf("generation = %d", r.Generation())
	}
	for _, s := range r.Slots() {
		if s.Generation != 2 || s.Kind != SourceDirect || s.Source != s.Pin.Image {
			t.Fatalf("slot = %+v", s)
		}
	}
	if r.rebuilt != 1 {
		t.Fatalf("rebuilds = %d, want 1 for unchanged size", r.rebuilt)
	}

	r.Render(Frame{Items: list, Index: 0, GridSize: 9, Visible: true})
	if r.rebuilt != 2 || len(r.Slots()) != 9 {
		t.Fatalf("rebuilds = %d slots = %d", r.rebuilt, len(r.Slots()))
	}
}

func TestRenderClearsHiddenFrames(t *testing.T) {
	tests := []struct {
		name  string
		frame Frame
	}{
		{"empty items", Frame{GridSize: 4, Visible: true}},
		{"standby index", Frame{Items: items(3), Index: -1, GridSize: 1, Visible: true}},
		{"gap phase", Frame{Items: items(3), Index: 0, GridSize: 1, Visible: false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRenderer(nil, nil, Options{})
			r.Render(tt.frame)
			for _, s := range r.Slots() {
				if s.Visible() || s.Kind != SourceNone || s.Source != "" {
					t.Fatalf("slot visible: %+v", s)
				}
			}
		})
	}
}

func TestRenderGrayscaleQueuesAndCompletes(t *testing.T) {
	cache := newCache(t)
	conv := newConverter(t)
	r := NewRenderer(cache, nil, Options{})
	list := items(2)

	r.Render(Frame{Items: list, GridSize: 4, Visible: true, Grayscale: true})
	for _, s := range r.Slots() {
		if s.Kind != SourcePending || s.Visible() {
			t.Fatalf("slot should be pending: %+v", s)
		}
	}
	reqs := r.DrainRequests()
	if len(reqs) != 2 {
		t.Fatalf("requests = %d, want 2 deduplicated", len(reqs))
	}
	if r.DrainRequests() != nil {
		t.Fatal("requests not cleared")
	}

	for _, req := range reqs {
		if req.Key.Role != imagecache.RoleViewer || req.Limit != grayscale.MaxDimension {
			t.Fatalf("request = %+v", req)
		}
		if !r.Complete(Execute(context.Background(), conv, req)) {
			t.Fatalf("Complete(%s) changed nothing", req.Key)
		}
	}
	for _, s := range r.Slots() {
		if s.Kind != SourceTransformed || s.Source == "" {
			t.Fatalf("slot not transformed: %+v", s)
		}
	}
	if cache.Len() != 2 {
		t.Fatalf("cache len = %d", cache.Len())
	}

	r.Render(Frame{Items: list, GridSize: 1, Index: 1, Visible: true, Grayscale: true})
	if s := r.Slots()[0]; s.Kind != SourceTransformed {
		t.Fatalf("cached slot = %+v", s)
	}
	if r.DrainRequests() != nil {
		t.Fatal("cache hit still queued a request")
	}
}

func TestCompleteDiscardsStaleAndReleases(t *testing.T) {
	cache := newCache(t)
	conv := newConverter(t)
	r := NewRenderer(cache, nil, Options{})
	list := items(3)

	r.Render(Frame{Items: list, GridSize: 1, Visible: true, Grayscale: true})
	req := r.DrainRequests()[0]
	r.Render(Frame{Items: list, GridSize: 1, Index: 1, Visible: true, Grayscale: true})

	res := Execute(context.Background(), conv, req)
	if res.Err != nil {
		t.Fatalf("Execute: %v", res.Err)
	}
	if r.Complete(res) {
		t.Fatal("stale result applied")
	}
	if !res.Handle.Released() {
		t.Fatal("stale handle not released")
	}
	if cache.Len() != 0 {
		t.Fatal("stale handle cached")
	}
}

func TestCompleteFallsBackOnFailure(t *testing.T) {
	r := NewRenderer(newCache(t), nil, Options{})
	list := items(1)
	r.Render(Frame{Items: list, GridSize: 1, Visible: true, Grayscale: true})
	req := r.DrainRequests()[0]

	if !r.Complete(Result{Request: req, Err: grayscale.ErrNoDimensions}) {
		t.Fatal("fallback not applied")
	}
	s := r.Slots()[0]
	if s.Kind != SourceDirect || s.Source != list[0].Image {
		t.Fatalf("slot = %+v", s)
	}
}

func TestPreview(t *testing.T) {
	cache := newCache(t)
	conv := newConverter(t)
	p := NewPreview(cache, 0)

	if _, ok := p.Select("https://img/a", false); ok {
		t.Fatal("colour preview should not request a transform")
	}
	if kind, src := p.Source(); kind != SourceDirect || src != "https://img/a" {
		t.Fatalf("source = %v %q", kind, src)
	}

	req, ok := p.Select("https://img/a", true)
	if !ok || req.Key.Role != imagecache.RoleThumbnail || req.Limit != grayscale.ThumbDimension {
		t.Fatalf("request = %+v ok=%v", req, ok)
	}
	res := Execute(context.Background(), conv, req)
	if !p.Complete(res) {
		t.Fatal("thumbnail not applied")
	}
	if kind, _ := p.Source(); kind != SourceTransformed {
		t.Fatalf("kind = %v", kind)
	}

	if _, ok := p.Select("https://img/a", true); ok {
		t.Fatal("cached thumbnail requested again")
	}

	req, _ = p.Select("https://img/b", true)
	p.Abandon()
	res = Execute(context.Background(), conv, req)
	if p.Complete(res) {
		t.Fatal("abandoned thumbnail applied")
	}
	if !res.Handle.Released() {
		t.Fatal("abandoned handle not released")
	}

	req, _ = p.Select("https://img/c", true)
	if !p.Complete(Result{Request: req, Err: errors.New("decode")}) {
		t.Fatal("failure fallback not applied")
	}
	if kind, src := p.Source(); kind != SourceDirect || src != "https://img/c" {
		t.Fatalf("fallback source = %v %q", kind, src)
	}
}
