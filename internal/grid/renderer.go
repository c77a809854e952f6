package grid

import (
	"context"
	"log/slog"

	"github.com/five82/pinterval/internal/grayscale"
	"github.com/five82/pinterval/internal/imagecache"
	"github.com/five82/pinterval/internal/logging"
	"github.com/five82/pinterval/internal/pinboard"
)

// SourceKind describes what a slot currently displays.
type SourceKind int

const (
	SourceNone        SourceKind = iota // hidden
	SourceDirect                        // original colour image
	SourcePending                       // waiting for a grayscale transform
	SourceTransformed                   // grayscale resource handle
)

// String returns a short label for the kind.
func (k SourceKind) String() string {
	switch k {
	case SourceDirect:
		return "direct"
	case SourcePending:
		return "pending"
	case SourceTransformed:
		return "gray"
	default:
		return "none"
	}
}

// Slot is one cell of the grid.
type Slot struct {
	Position   int
	ItemIndex  int
	Pin        pinboard.Pin
	Kind       SourceKind
	Source     string // original URL for direct, handle path for transformed
	Generation uint64
}

// Visible reports whether the slot has a confirmed displayable source.
func (s Slot) Visible() bool {
	return s.Kind == SourceDirect || s.Kind == SourceTransformed
}

// Frame is the input of one render pass.
type Frame struct {
	Items     []pinboard.Pin
	Index     int
	GridSize  int
	Visible   bool
	Grayscale bool
}

// Request asks for a grayscale transform of URL, tagged with the generation
// that wanted it.
type Request struct {
	Generation uint64
	Key        imagecache.Key
	Limit      int
}

// Result carries a finished transform back to the renderer.
type Result struct {
	Request Request
	Handle  *grayscale.Handle
	Err     error
}

// Converter produces grayscale handles.
type Converter interface {
	Convert(ctx context.Context, original string, limit int) (*grayscale.Handle, error)
}

// Execute runs req through conv. It is meant to run off the UI loop.
func Execute(ctx context.Context, conv Converter, req Request) Result {
	h, err := conv.Convert(ctx, req.Key.URL, req.Limit)
	return Result{Request: req, Handle: h, Err: err}
}

// Options configures size caps per role.
type Options struct {
	ViewerLimit int
	ThumbLimit  int
}

// Renderer resolves slots for the current frame. It is owned by the UI loop
// and is not safe for concurrent use; transforms run elsewhere and report
// back through Complete.
type Renderer struct {
	cache   *imagecache.Cache[*grayscale.Handle]
	logger  *slog.Logger
	opts    Options
	gen     uint64
	slots   []Slot
	pending []Request
	rebuilt int
}

// NewRenderer returns a renderer backed by cache.
func NewRenderer(cache *imagecache.Cache[*grayscale.Handle], logger *slog.Logger, opts Options) *Renderer {
	if logger == nil {
		logger = logging.Discard()
	}
	if opts.ViewerLimit <= 0 || opts.ViewerLimit > grayscale.MaxDimension {
		opts.ViewerLimit = grayscale.MaxDimension
	}
	if opts.ThumbLimit <= 0 || opts.ThumbLimit > grayscale.MaxDimension {
		opts.ThumbLimit = grayscale.ThumbDimension
	}
	return &Renderer{cache: cache, logger: logger.With("component", "grid"), opts: opts}
}

// Generation returns the current render generation.
func (r *Renderer) Generation() uint64 { return r.gen }

// Slots returns a copy of the current slots.
func (r *Renderer) Slots() []Slot {
	out := make([]Slot, len(r.slots))
	copy(out, r.slots)
	return out
}

// Render starts a new generation and resolves every slot for f. Slots whose
// grayscale version is not cached become pending and a Request is queued.
func (r *Renderer) Render(f Frame) {
	r.gen++
	r.pending = r.pending[:0]

	size := f.GridSize
	if size <= 0 {
		size = 1
	}
	if len(r.slots) != size {
		r.slots = make([]Slot, size)
		r.rebuilt++
		r.logger.Debug("grid slots rebuilt", "size", size, "rebuilds", r.rebuilt)
	}

	n := len(f.Items)
	for i := range r.slots {
		slot := Slot{Position: i, ItemIndex: -1, Generation: r.gen}
		if n == 0 || f.Index < 0 || !f.Visible {
			r.slots[i] = slot
			continue
		}
		slot.ItemIndex = (f.Index + i) % n
		slot.Pin = f.Items[slot.ItemIndex]
		slot.Kind, slot.Source = r.resolve(slot.Pin.Image, f.Grayscale)
		r.slots[i] = slot
	}
}

func (r *Renderer) resolve(url string, gray bool) (SourceKind, string) {
	if !gray {
		return SourceDirect, url
	}
	key := imagecache.Key{Role: imagecache.RoleViewer, URL: url}
	if r.cache != nil {
		if h, ok := r.cache.Get(key); ok {
			return SourceTransformed, h.Path()
		}
	}
	for _, req := range r.pending {
		if req.Key == key {
			return SourcePending, ""
		}
	}
	r.pending = append(r.pending, Request{Generation: r.gen, Key: key, Limit: r.opts.ViewerLimit})
	return SourcePending, ""
}

// DrainRequests returns and clears the transforms queued by the last Render.
func (r *Renderer) DrainRequests() []Request {
	if len(r.pending) == 0 {
		return nil
	}
	out := make([]Request, len(r.pending))
	copy(out, r.pending)
	r.pending = r.pending[:0]
	return out
}

// Complete applies a finished transform. Results from an older generation
// are discarded and their handles released. Failed transforms fall back to
// the original image. It reports whether any slot changed.
func (r *Renderer) Complete(res Result) bool {
	if res.Request.Generation != r.gen {
		release(res.Handle)
		r.logger.Debug("discard stale transform", "url", res.Request.Key.URL, "generation", res.Request.Generation, "current", r.gen)
		return false
	}

	url := res.Request.Key.URL
	kind, source := SourceDirect, url
	if res.Err != nil || res.Handle == nil {
		r.logger.Warn("grayscale transform failed, showing original", "url", url, "error", res.Err)
	} else if r.cache != nil {
		r.cache.Put(res.Request.Key, res.Handle)
		kind, source = SourceTransformed, res.Handle.Path()
	} else {
		release(res.Handle)
	}

	changed := false
	for i := range r.slots {
		if r.slots[i].Kind == SourcePending && r.slots[i].Pin.Image == url {
			r.slots[i].Kind = kind
			r.slots[i].Source = source
			changed = true
		}
	}
	return changed
}

func release(h *grayscale.Handle) {
	if h != nil {
		_ = h.Release()
	}
}
