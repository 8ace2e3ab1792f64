// Package search coordinates a free-text input with delayed, cancel-safe
// queries against the remote gateway. Rapid keystrokes collapse into one
// request for the final query (last keystroke wins); a cleared query
// falls back to the unfiltered listing. Responses are generation-stamped
// so a slow, superseded response can never overwrite a newer result.
package search

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/orbitcare/console/internal/table"
)

// DefaultInterval is how long the input must stay quiet before a request
// is issued.
const DefaultInterval = 500 * time.Millisecond

// Source produces row collections for the list view being searched.
type Source interface {
	// ListAll fetches the unfiltered listing.
	ListAll(ctx context.Context) ([]table.Row, error)
	// Search fetches rows matching the trimmed, non-empty query.
	Search(ctx context.Context, query string) ([]table.Row, error)
}

// SourceFuncs adapts two functions into a Source.
type SourceFuncs struct {
	ListAllFunc func(ctx context.Context) ([]table.Row, error)
	SearchFunc  func(ctx context.Context, query string) ([]table.Row, error)
}

func (s SourceFuncs) ListAll(ctx context.Context) ([]table.Row, error) {
	return s.ListAllFunc(ctx)
}

func (s SourceFuncs) Search(ctx context.Context, query string) ([]table.Row, error) {
	return s.SearchFunc(ctx, query)
}

// Result is what lands in the view when a request settles. Query is the
// trimmed query the rows answer, "" for the unfiltered listing.
type Result struct {
	Rows  []table.Row
	Query string
	Err   error
}

// ApplyFunc receives results in query-issue order. Only the result of the
// most recently issued request is ever delivered.
type ApplyFunc func(Result)

// Debouncer drives a Source from a changing query string.
type Debouncer struct {
	mu       sync.Mutex
	interval time.Duration
	src      Source
	apply    ApplyFunc
	timer    *time.Timer
	gen      uint64
	inflight int

	// applyMu serializes result delivery. apply runs with mu released,
	// so the callback may call back into the Debouncer (views snapshot
	// Loading under their own lock); applyMu keeps winning results in
	// issue order across that window.
	applyMu sync.Mutex
}

// Option configures a Debouncer.
type Option func(*Debouncer)

// WithInterval overrides the debounce interval.
func WithInterval(d time.Duration) Option {
	return func(db *Debouncer) { db.interval = d }
}

// New builds a Debouncer delivering results from src to apply.
func New(src Source, apply ApplyFunc, opts ...Option) *Debouncer {
	d := &Debouncer{
		interval: DefaultInterval,
		src:      src,
		apply:    apply,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Input records a keystroke. The pending timer, if any, is discarded so
// no request is ever sent for a superseded query, and a fresh one is
// armed for this value.
func (d *Debouncer) Input(query string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, func() {
		d.issue(query)
	})
}

// Reload bypasses the debounce and issues a request for query right away.
// Views use it for their initial load and for a manual retry.
func (d *Debouncer) Reload(query string) {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()
	d.issue(query)
}

// Loading reports whether a request is outstanding. The view keeps the
// previous rows on screen while this is true.
func (d *Debouncer) Loading() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.inflight > 0
}

// Stop discards any pending timer. In-flight requests finish on their
// own; their results are applied or discarded by the generation check as
// usual.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Debouncer) issue(query string) {
	d.mu.Lock()
	d.gen++
	stamp := d.gen
	d.inflight++
	d.mu.Unlock()

	go d.run(stamp, query)
}

func (d *Debouncer) run(stamp uint64, query string) {
	trimmed := strings.TrimSpace(query)

	var rows []table.Row
	var err error
	if trimmed == "" {
		rows, err = d.src.ListAll(context.Background())
	} else {
		rows, err = d.src.Search(context.Background(), trimmed)
	}

	d.mu.Lock()
	d.inflight--
	d.mu.Unlock()

	d.applyMu.Lock()
	defer d.applyMu.Unlock()

	// Stale response: a newer request was issued while this one was in
	// flight. Drop it; the newer result owns the view. The check sits
	// under applyMu so a newer winner cannot be delivered first.
	d.mu.Lock()
	stale := stamp != d.gen
	apply := d.apply
	d.mu.Unlock()
	if stale || apply == nil {
		return
	}
	apply(Result{Rows: rows, Query: trimmed, Err: err})
}
