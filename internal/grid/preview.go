package grid

import (
	"github.com/five82/pinterval/internal/grayscale"
	"github.com/five82/pinterval/internal/imagecache"
)

// Preview resolves the thumbnail shown next to the selected history entry.
// It keeps its own generation so a pending thumbnail is abandoned when the
// selection moves or grayscale is switched off.
type Preview struct {
	cache  *imagecache.Cache[*grayscale.Handle]
	limit  int
	gen    uint64
	url    string
	kind   SourceKind
	source string
}

// NewPreview returns a preview backed by cache with the given size cap.
func NewPreview(cache *imagecache.Cache[*grayscale.Handle], limit int) *Preview {
	if limit <= 0 || limit > grayscale.MaxDimension {
		limit = grayscale.ThumbDimension
	}
	return &Preview{cache: cache, limit: limit}
}

// Select points the preview at url. When gray is set and no thumbnail is
// cached, it returns a Request the caller should execute.
func (p *Preview) Select(url string, gray bool) (Request, bool) {
	p.gen++
	p.url = url
	if url == "" {
		p.kind, p.source = SourceNone, ""
		return Request{}, false
	}
	if !gray {
		p.kind, p.source = SourceDirect, url
		return Request{}, false
	}
	key := imagecache.Key{Role: imagecache.RoleThumbnail, URL: url}
	if p.cache != nil {
		if h, ok := p.cache.Get(key); ok {
			p.kind, p.source = SourceTransformed, h.Path()
			return Request{}, false
		}
	}
	p.kind, p.source = SourcePending, ""
	return Request{Generation: p.gen, Key: key, Limit: p.limit}, true
}

// Abandon clears the preview and invalidates any pending thumbnail.
func (p *Preview) Abandon() {
	p.gen++
	p.url = ""
	p.kind, p.source = SourceNone, ""
}

// Complete applies a finished thumbnail transform, discarding stale ones.
func (p *Preview) Complete(res Result) bool {
	if res.Request.Generation != p.gen || res.Request.Key.URL != p.url {
		release(res.Handle)
		return false
	}
	if res.Err != nil || res.Handle == nil {
		p.kind, p.source = SourceDirect, p.url
		return true
	}
	if p.cache == nil {
		release(res.Handle)
		p.kind, p.source = SourceDirect, p.url
		return true
	}
	p.cache.Put(res.Request.Key, res.Handle)
	p.kind, p.source = SourceTransformed, res.Handle.Path()
	return true
}

// Source returns what the preview currently shows.
func (p *Preview) Source() (SourceKind, string) { return p.kind, p.source }

// URL returns the selected history URL.
func (p *Preview) URL() string { return p.url }
