// Package search implements debounced query dispatch for typeahead search
package search

import (
	"context"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultDelay is the quiet period after the last keystroke before a
	// query is dispatched.
	DefaultDelay = 500 * time.Millisecond

	// DefaultMinLength is the shortest query worth dispatching; anything
	// shorter clears the results instead.
	DefaultMinLength = 2
)

// Func performs the actual search for a settled query.
type Func[T any] func(ctx context.Context, query string) (T, error)

// Result is one delivered outcome. A cleared result (short or empty
// query) carries the zero value and no error.
type Result[T any] struct {
	Query string
	Value T
	Err   error
}

// Debouncer coalesces a stream of keystroke updates into at most one
// search per quiet period. Each update supersedes any pending or
// in-flight one: a response from an earlier query is dropped rather
// than delivered out of order, so the results always correspond to the
// latest input.
type Debouncer[T any] struct {
	search    Func[T]
	delay     time.Duration
	minLength int

	mu     sync.Mutex
	timer  *time.Timer
	gen    uint64
	closed bool

	// results is a latest-wins mailbox: an unread result is replaced,
	// never queued behind.
	results chan Result[T]
}

// Option configures the debouncer
type Option[T any] func(*Debouncer[T])

// WithDelay sets the quiet period.
func WithDelay[T any](delay time.Duration) Option[T] {
	return func(d *Debouncer[T]) {
		d.delay = delay
	}
}

// WithMinLength sets the minimum dispatchable query length.
func WithMinLength[T any](n int) Option[T] {
	return func(d *Debouncer[T]) {
		d.minLength = n
	}
}

// NewDebouncer creates a debouncer around a search function.
func NewDebouncer[T any](search Func[T], opts ...Option[T]) *Debouncer[T] {
	d := &Debouncer[T]{
		search:    search,
		delay:     DefaultDelay,
		minLength: DefaultMinLength,
		results:   make(chan Result[T], 1),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Results delivers search outcomes. Only the latest unread result is
// retained.
func (d *Debouncer[T]) Results() <-chan Result[T] {
	return d.results
}

// Update records a keystroke. A query shorter than the minimum clears
// the results immediately; otherwise dispatch is scheduled after the
// quiet period, cancelling any pending dispatch.
func (d *Debouncer[T]) Update(ctx context.Context, query string) {
	query = strings.TrimSpace(query)

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}

	// Every update invalidates whatever was pending or in flight.
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}

	if len(query) < d.minLength {
		d.deliverLocked(Result[T]{Query: query})
		return
	}

	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() {
		d.dispatch(ctx, query, gen)
	})
}

// dispatch runs the search and delivers the outcome unless a newer
// update has superseded it.
func (d *Debouncer[T]) dispatch(ctx context.Context, query string, gen uint64) {
	d.mu.Lock()
	if d.closed || gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.mu.Unlock()

	value, err := d.search(ctx, query)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || gen != d.gen {
		// A newer query settled while this one was in flight.
		return
	}
	d.deliverLocked(Result[T]{Query: query, Value: value, Err: err})
}

// deliverLocked places a result in the mailbox, displacing an unread one.
func (d *Debouncer[T]) deliverLocked(r Result[T]) {
	for {
		select {
		case d.results <- r:
			return
		default:
			select {
			case <-d.results:
			default:
			}
		}
	}
}

// Close cancels any pending dispatch and closes the results channel.
func (d *Debouncer[T]) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	d.closed = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	close(d.results)
}
