// Package aggregator fans a request out to two item sources and merges the
// results in a fixed order.
package aggregator

import (
	"context"
	"log/slog"
	"time"

	"github.com/coreybb/itemgate/datastore"
	"github.com/coreybb/itemgate/models"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// FetchResult is the outcome of one source's fetch. When Err is set, Items
// is empty.
type FetchResult struct {
	Source string
	Items  []models.Item
	Err    error
}

// Aggregator fetches items from source A and source B.
type Aggregator struct {
	sourceA      datastore.Source
	sourceB      datastore.Source
	fetchTimeout time.Duration
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithFetchTimeout bounds each individual fetch. Zero disables the bound.
func WithFetchTimeout(d time.Duration) Option {
	return func(a *Aggregator) {
		a.fetchTimeout = d
	}
}

// New creates an Aggregator over two sources. Items from a always precede
// items from b.
func New(a, b datastore.Source, opts ...Option) *Aggregator {
	agg := &Aggregator{sourceA: a, sourceB: b}
	for _, opt := range opts {
		opt(agg)
	}
	return agg
}

// Fetch runs both fetches concurrently and waits for both. The returned
// slice always has two entries, A then B, regardless of which finished first.
func (a *Aggregator) Fetch(ctx context.Context) []FetchResult {
	aggregationID := uuid.NewString()
	sources := []datastore.Source{a.sourceA, a.sourceB}
	results := make([]FetchResult, len(sources))

	var g errgroup.Group
	for i, src := range sources {
		g.Go(func() error {
			results[i] = a.fetchOne(ctx, aggregationID, src)
			return nil
		})
	}
	_ = g.Wait() // fetchOne never returns an error to the group

	return results
}

// FetchAllItems returns source A's items followed by source B's items.
// A failed source contributes nothing. The result is never nil.
func (a *Aggregator) FetchAllItems(ctx context.Context) []models.Item {
	results := a.Fetch(ctx)

	total := 0
	for _, r := range results {
		total += len(r.Items)
	}

	items := make([]models.Item, 0, total)
	for _, r := range results {
		items = append(items, r.Items...)
	}
	return items
}

func (a *Aggregator) fetchOne(ctx context.Context, aggregationID string, src datastore.Source) FetchResult {
	if a.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.fetchTimeout)
		defer cancel()
	}

	start := time.Now()
	items, err := src.FetchItems(ctx)
	if err != nil {
		slog.Warn("Source fetch failed, contributing no items",
			"aggregation_id", aggregationID,
			"source", src.Name(),
			"duration", time.Since(start),
			"error", err,
		)
		return FetchResult{Source: src.Name(), Items: []models.Item{}, Err: err}
	}

	if items == nil {
		items = []models.Item{}
	}
	slog.Debug("Source fetch complete",
		"aggregation_id", aggregationID,
		"source", src.Name(),
		"count", len(items),
		"duration", time.Since(start),
	)
	return FetchResult{Source: src.Name(), Items: items}
}
