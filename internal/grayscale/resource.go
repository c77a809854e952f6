package grayscale

import (
	"errors"
	"io"
	"os"
	"sync"
	"sync/atomic"
)

// ErrReleased is returned when reading a handle after Release.
var ErrReleased = errors.New("grayscale: resource released")

// Handle is an owned reference to a transformed image stored as a PNG file in
// the converter's resource directory. It stays readable until Release.
type Handle struct {
	path     string
	source   string
	width    int
	height   int
	once     sync.Once
	released atomic.Bool
	err      error
}

// Path returns the file backing the handle.
func (h *Handle) Path() string { return h.path }

// Source returns the original image URL the handle was produced from.
func (h *Handle) Source() string { return h.source }

// Size returns the transformed dimensions.
func (h *Handle) Size() (int, int) { return h.width, h.height }

// Released reports whether Release has been called.
func (h *Handle) Released() bool { return h.released.Load() }

// Open returns a reader over the encoded PNG.
func (h *Handle) Open() (io.ReadCloser, error) {
	if h.released.Load() {
		return nil, ErrReleased
	}
	return os.Open(h.path)
}

// Release removes the backing file. It is safe to call more than once.
func (h *Handle) Release() error {
	h.once.Do(func() {
		h.released.Store(true)
		if err := os.Remove(h.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			h.err = err
		}
	})
	return h.err
}
