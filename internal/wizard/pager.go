package wizard

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-logr/logr"
)

// OptionPager fetches one page of a metadata listing at a time and
// accumulates the pages for the query it last saw.
//
// Pages are append-only for a given query. Calling LoadNext with a different
// query discards them and restarts at page 1. Concurrent LoadNext calls for
// the same query while a fetch is in flight share that fetch.
type OptionPager struct {
	source MetadataSource
	log    logr.Logger

	mu        sync.Mutex
	query     QueryKey
	gen       uint64
	pages     []OptionPage
	cursor    int
	exhausted bool
	inflight  *pagerCall
}

// pagerCall is one in-flight fetch. page and err are written before done is
// closed and read only after.
type pagerCall struct {
	query   QueryKey
	gen     uint64
	number  int
	waiters int
	done    chan struct{}
	page    OptionPage
	err     error
}

// NewOptionPager returns a pager reading from source.
func NewOptionPager(source MetadataSource, log logr.Logger) *OptionPager {
	return &OptionPager{
		source: source,
		log:    log,
		cursor: 1,
	}
}

// LoadNext fetches the next page of query and returns it.
//
// An exhausted or unresolved query returns an empty exhausted page without a
// fetch. A failed fetch leaves the accumulated pages and cursor unchanged and
// returns an error wrapping ErrFetchFailed. If the query changes while the
// fetch is in flight, the result is dropped and ErrStaleResponse returned.
func (p *OptionPager) LoadNext(ctx context.Context, query QueryKey) (OptionPage, error) {
	p.mu.Lock()

	if query != p.query {
		p.resetLocked(query)
	}

	if query.Unresolved || p.exhausted {
		page := OptionPage{Cursor: p.cursor, Exhausted: true}
		p.mu.Unlock()
		return page, nil
	}

	if c := p.inflight; c != nil && c.gen == p.gen {
		c.waiters++
		p.mu.Unlock()
		select {
		case <-c.done:
			return c.page, c.err
		case <-ctx.Done():
			return OptionPage{}, ctx.Err()
		}
	}

	c := &pagerCall{
		query:  query,
		gen:    p.gen,
		number: p.cursor,
		done:   make(chan struct{}),
	}
	p.inflight = c
	p.mu.Unlock()

	p.log.V(1).Info("fetching metadata page",
		"provider", query.Provider, "kind", query.Kind, "context", query.Context, "page", c.number)

	resp, err := p.source.FetchPage(ctx, query.Request(c.number))

	p.mu.Lock()
	p.completeLocked(c, resp, err)
	p.mu.Unlock()
	close(c.done)

	return c.page, c.err
}

func (p *OptionPager) completeLocked(c *pagerCall, resp *MetadataPage, err error) {
	if p.inflight == c {
		p.inflight = nil
	}

	if c.gen != p.gen {
		recordFetchMetric(c.query.Kind, fetchStale)
		p.log.V(1).Info("discarding stale metadata page", "kind", c.query.Kind, "page", c.number, "waiters", c.waiters)
		c.err = fmt.Errorf("%w: %s page %d", ErrStaleResponse, c.query.Kind, c.number)
		return
	}

	if err != nil {
		recordFetchMetric(c.query.Kind, fetchError)
		p.log.V(1).Info("metadata fetch failed", "kind", c.query.Kind, "page", c.number, "waiters", c.waiters, "error", err.Error())
		c.err = fmt.Errorf("%w: %s page %d: %w", ErrFetchFailed, c.query.Kind, c.number, err)
		return
	}

	page := OptionPage{Cursor: c.number}
	if resp != nil {
		page.Items = append([]Option(nil), resp.Items...)
		page.Exhausted = resp.TotalPages <= c.number
	} else {
		page.Exhausted = true
	}

	recordFetchMetric(c.query.Kind, fetchSuccess)
	p.pages = append(p.pages, page)
	p.cursor++
	p.exhausted = page.Exhausted
	c.page = page
}

// resetLocked switches to query and drops everything fetched so far. A fetch
// still in flight for the previous generation becomes stale.
func (p *OptionPager) resetLocked(query QueryKey) {
	p.query = query
	p.gen++
	p.pages = nil
	p.cursor = 1
	p.exhausted = false
}

// Reset discards accumulated pages while keeping the current query.
func (p *OptionPager) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetLocked(p.query)
}

// resetTo switches the pager to query even if it equals the current one.
func (p *OptionPager) resetTo(query QueryKey) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetLocked(query)
}

// Query returns the last-seen query.
func (p *OptionPager) Query() QueryKey {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.query
}

// Pages returns a copy of the accumulated pages in fetch order.
func (p *OptionPager) Pages() []OptionPage {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]OptionPage, len(p.pages))
	for i, pg := range p.pages {
		out[i] = OptionPage{
			Items:     append([]Option(nil), pg.Items...),
			Cursor:    pg.Cursor,
			Exhausted: pg.Exhausted,
		}
	}
	return out
}

// Options returns every accumulated option in fetch order. Duplicates
// across pages are kept.
func (p *OptionPager) Options() []Option {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []Option
	for _, pg := range p.pages {
		out = append(out, pg.Items...)
	}
	return out
}

// Cursor returns the page number the next fetch will request.
func (p *OptionPager) Cursor() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cursor
}

// Loading reports whether a fetch for the current query is in flight.
func (p *OptionPager) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inflight != nil && p.inflight.gen == p.gen
}

// Exhausted reports whether no further pages exist for the current query.
func (p *OptionPager) Exhausted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exhausted || p.query.Unresolved
}

// HasMore is the negation of Exhausted.
func (p *OptionPager) HasMore() bool {
	return !p.Exhausted()
}

// Started reports whether at least one page was fetched for the current query.
func (p *OptionPager) Started() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pages) > 0
}
