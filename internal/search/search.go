// Package search expresses the "fetch a pin list for the current selection"
// workflow as event-bus handlers.
//
// A run flows through three phases under the "search" lock key: pre
// normalizes the request, main queries the provider, post applies the
// configured order and rejects empty results. A newer Run supersedes an older
// one still in flight; the older call returns eventbus.ErrSuperseded and its
// provider request is cancelled through the dispatch context.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/five82/pinterval/internal/eventbus"
	"github.com/five82/pinterval/internal/logging"
	"github.com/five82/pinterval/internal/pinboard"
)

const (
	// Event is the bus event name for a search run.
	Event = "search:run"
	// LockKey serializes search runs; a new run cancels the previous one.
	LockKey = "search"
)

var (
	// ErrEmptySelection reports that the selection produced no usable pins.
	ErrEmptySelection = errors.New("no results for this selection")
	// ErrProviderUnavailable wraps transport and server failures.
	ErrProviderUnavailable = errors.New("could not reach the data provider")
)

// Request describes one selection.
type Request struct {
	Board string
	Query string
	Order pinboard.Order
	Limit int
}

// Result is the ordered pin list produced by a run.
type Result struct {
	TxID    string
	Request Request
	Items   []pinboard.Pin
}

// job is the payload threaded through the handler chain.
type job struct {
	req   Request
	items []pinboard.Pin
	txID  string
}

// Option configures a Service.
type Option func(*Service)

// WithRand sets the shuffle source used for random order.
func WithRand(rng *rand.Rand) Option {
	return func(s *Service) { s.rng = rng }
}

// WithDefaultLimit sets the limit used when a request carries none.
func WithDefaultLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.defaultLimit = n
		}
	}
}

// Service registers and runs the search workflow.
type Service struct {
	bus          *eventbus.Bus
	fetcher      pinboard.Fetcher
	logger       *slog.Logger
	rng          *rand.Rand
	defaultLimit int
}

// NewService registers the workflow handlers on bus.
func NewService(bus *eventbus.Bus, fetcher pinboard.Fetcher, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Service{
		bus:          bus,
		fetcher:      fetcher,
		logger:       logger.With("component", "search"),
		defaultLimit: pinboard.MaxLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	bus.On(Event, s.normalize, eventbus.WithPhase(eventbus.PhasePre))
	bus.On(Event, s.fetch, eventbus.WithPhase(eventbus.PhaseMain))
	bus.On(Event, s.arrange, eventbus.WithPhase(eventbus.PhasePost))
	return s
}

// Run dispatches a search and returns its ordered result.
func (s *Service) Run(ctx context.Context, req Request) (Result, error) {
	j := &job{req: req}
	if prev, ok := s.Pending(); ok {
		s.logger.Debug("search replacing in-flight", "prev_tx", prev)
	}
	err := s.bus.EmitSwitch(ctx, Event, LockKey, j)
	switch {
	case err == nil:
		s.logger.Info("search complete", "tx", j.txID, "board", j.req.Board, "query", j.req.Query, "count", len(j.items))
		return Result{TxID: j.txID, Request: j.req, Items: j.items}, nil
	case errors.Is(err, eventbus.ErrSuperseded), errors.Is(err, context.Canceled):
		s.logger.Debug("search superseded", "tx", j.txID)
	case errors.Is(err, ErrEmptySelection):
		s.logger.Info("search empty", "tx", j.txID, "board", j.req.Board, "query", j.req.Query)
	default:
		s.logger.Error("search failed", "tx", j.txID, "error", err)
	}
	return Result{TxID: j.txID, Request: j.req}, err
}

// Pending reports the transaction id of the search currently running.
func (s *Service) Pending() (string, bool) {
	return s.bus.InFlight(LockKey)
}

func (s *Service) normalize(_ context.Context, tx eventbus.Tx, payload any) error {
	j, ok := payload.(*job)
	if !ok {
		return fmt.Errorf("unexpected payload %T", payload)
	}
	j.txID = tx.ID
	j.req.Board = strings.TrimSpace(j.req.Board)
	if j.req.Board == "" {
		j.req.Board = pinboard.ScopeAll
	}
	j.req.Query = strings.TrimSpace(j.req.Query)
	j.req.Order = pinboard.ParseOrder(string(j.req.Order))

	upper := pinboard.MaxLimit
	if j.req.Query != "" {
		upper = pinboard.MaxSearchLimit
	}
	if j.req.Limit <= 0 {
		j.req.Limit = s.defaultLimit
	}
	j.req.Limit = min(max(j.req.Limit, 1), upper)
	return nil
}

func (s *Service) fetch(ctx context.Context, _ eventbus.Tx, payload any) error {
	j := payload.(*job)
	if s.fetcher == nil {
		return ErrProviderUnavailable
	}

	var (
		items []pinboard.Pin
		err   error
	)
	if j.req.Query != "" {
		items, err = s.fetcher.Search(ctx, j.req.Query, j.req.Limit)
	} else {
		items, err = s.fetcher.FetchPins(ctx, pinboard.PinQuery{Board: j.req.Board, Limit: j.req.Limit})
	}
	if err != nil {
		if errors.Is(err, pinboard.ErrNotLoggedIn) || ctx.Err() != nil {
			return err
		}
		return fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}
	j.items = pinboard.Usable(items)
	return nil
}

func (s *Service) arrange(_ context.Context, _ eventbus.Tx, payload any) error {
	j := payload.(*job)
	if len(j.items) == 0 {
		return ErrEmptySelection
	}
	j.items = j.req.Order.Apply(j.items, s.rng)
	return nil
}
