// Package eventbus dispatches named events through ordered handler chains.
//
// Handlers register against an event name with a phase (pre, main, post) and
// a priority. A dispatch runs every handler sequentially in the order
// (phase, priority descending, registration order), awaiting each one before
// the next begins. Every dispatch carries a transaction id and a context that
// handlers must honour before any blocking step.
//
// EmitSwitch adds lock-key semantics: a new switch dispatch under a key
// cancels the dispatch already in flight under that key, so a newer search
// supersedes an older one without manual bookkeeping.
package eventbus

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
)

var (
	// ErrSuperseded is the cancellation cause of a switch dispatch replaced by a newer one.
	ErrSuperseded = errors.New("eventbus: dispatch superseded")
	// ErrLockKeyRequired is returned by EmitSwitch without a lock key.
	ErrLockKeyRequired = errors.New("eventbus: lock key is required for switch dispatch")
)

// Phase orders handler groups within a dispatch.
type Phase int

const (
	PhasePre Phase = iota
	PhaseMain
	PhasePost
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhasePre:
		return "pre"
	case PhaseMain:
		return "main"
	case PhasePost:
		return "post"
	default:
		return "unknown"
	}
}

// Tx describes the dispatch a handler is running under.
type Tx struct {
	ID      string
	Event   string
	LockKey string
}

// HandlerFunc handles one event. Returning an error aborts the rest of the chain.
type HandlerFunc func(ctx context.Context, tx Tx, payload any) error

// HandlerOption configures a registration.
type HandlerOption func(*handler)

// WithPhase sets the handler phase (default PhaseMain).
func WithPhase(p Phase) HandlerOption {
	return func(h *handler) { h.phase = p }
}

// WithPriority sets the handler priority; higher runs first within a phase.
func WithPriority(n int) HandlerOption {
	return func(h *handler) { h.priority = n }
}

// EmitOption configures a dispatch.
type EmitOption func(*Tx)

// WithTxID uses id instead of a generated transaction id.
func WithTxID(id string) EmitOption {
	return func(tx *Tx) {
		if s := strings.TrimSpace(id); s != "" {
			tx.ID = s
		}
	}
}

type handler struct {
	fn       HandlerFunc
	phase    Phase
	priority int
	seq      uint64
}

type lockEntry struct {
	txID   string
	cancel context.CancelCauseFunc
}

// Bus is safe for concurrent use.
type Bus struct {
	mu       sync.Mutex
	handlers map[string][]handler
	seq      uint64
	locks    map[string]*lockEntry
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{
		handlers: make(map[string][]handler),
		locks:    make(map[string]*lockEntry),
	}
}

// On registers fn for the named event.
func (b *Bus) On(name string, fn HandlerFunc, opts ...HandlerOption) {
	if fn == nil {
		return
	}
	h := handler{fn: fn, phase: PhaseMain}
	for _, opt := range opts {
		opt(&h)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	h.seq = b.seq
	b.handlers[name] = append(b.handlers[name], h)
}

// Emit runs every handler of name in order. It returns the first handler
// error, or the context's cancellation cause if the dispatch was cancelled.
func (b *Bus) Emit(ctx context.Context, name string, payload any, opts ...EmitOption) error {
	tx := Tx{ID: uuid.NewString(), Event: name}
	for _, opt := range opts {
		opt(&tx)
	}
	return b.run(ctx, tx, payload)
}

// EmitSwitch is Emit under lockKey: a dispatch already in flight under the
// same key is cancelled with ErrSuperseded before this one starts. The lock
// entry is released when this dispatch finishes, fails, or is superseded.
func (b *Bus) EmitSwitch(ctx context.Context, name, lockKey string, payload any, opts ...EmitOption) error {
	key := strings.TrimSpace(lockKey)
	if key == "" {
		return ErrLockKeyRequired
	}
	tx := Tx{ID: uuid.NewString(), Event: name, LockKey: key}
	for _, opt := range opts {
		opt(&tx)
	}

	dctx, cancel := context.WithCancelCause(ctx)
	entry := &lockEntry{txID: tx.ID, cancel: cancel}

	b.mu.Lock()
	if prev := b.locks[key]; prev != nil {
		prev.cancel(ErrSuperseded)
	}
	b.locks[key] = entry
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		if b.locks[key] == entry {
			delete(b.locks, key)
		}
		b.mu.Unlock()
		cancel(nil)
	}()

	return b.run(dctx, tx, payload)
}

// InFlight reports the transaction id holding lockKey, if any.
func (b *Bus) InFlight(lockKey string) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	entry, ok := b.locks[strings.TrimSpace(lockKey)]
	if !ok {
		return "", false
	}
	return entry.txID, true
}

func (b *Bus) run(ctx context.Context, tx Tx, payload any) error {
	for _, h := range b.chain(tx.Event) {
		if ctx.Err() != nil {
			return context.Cause(ctx)
		}
		if err := h.fn(ctx, tx, payload); err != nil {
			if ctx.Err() != nil {
				return context.Cause(ctx)
			}
			return fmt.Errorf("%s %s handler: %w", tx.Event, h.phase, err)
		}
	}
	// A dispatch superseded during its last handler still lost the lock.
	if ctx.Err() != nil {
		return context.Cause(ctx)
	}
	return nil
}

// chain returns a sorted copy of the handlers for name, keyed by
// (phase, -priority, registration order).
func (b *Bus) chain(name string) []handler {
	b.mu.Lock()
	entries := slices.Clone(b.handlers[name])
	b.mu.Unlock()

	slices.SortFunc(entries, func(a, c handler) int {
		if d := cmp.Compare(a.phase, c.phase); d != 0 {
			return d
		}
		if d := cmp.Compare(c.priority, a.priority); d != 0 {
			return d
		}
		return cmp.Compare(a.seq, c.seq)
	})
	return entries
}
