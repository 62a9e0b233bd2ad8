package source

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/shelfmark/shelfmark/internal/merge"
)

// ErrNoSourcesConfigured is returned when a scrape is requested but no
// enabled source has credentials.
var ErrNoSourcesConfigured = errors.New("source: no sources configured")

// Fetcher fans a query out to every configured provider and collects the
// records that came back. Failures of individual sources are logged and
// skipped; the merge works with whatever arrived.
type Fetcher struct {
	registry *Registry
	logger   zerolog.Logger
}

// NewFetcher creates a fetcher over the given registry.
func NewFetcher(registry *Registry, logger zerolog.Logger) *Fetcher {
	return &Fetcher{
		registry: registry,
		logger:   logger.With().Str("component", "source-fetch").Logger(),
	}
}

// FetchAll queries all configured providers concurrently and returns their
// records in configured-source order regardless of completion order, so the
// merge's input order is deterministic.
func (f *Fetcher) FetchAll(ctx context.Context, q Query) ([]merge.SourceRecord, error) {
	providers := f.registry.Configured()
	if len(providers) == 0 {
		return nil, ErrNoSourcesConfigured
	}

	results := make([]*merge.SourceRecord, len(providers))

	var wg sync.WaitGroup
	for i, p := range providers {
		wg.Add(1)
		go func(i int, p Provider) {
			defer wg.Done()

			rec, err := p.Fetch(ctx, q)
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					f.logger.Debug().Str("source", p.Name()).Str("title", q.Title).Msg("Source has no match")
				} else {
					f.logger.Warn().Err(err).Str("source", p.Name()).Str("title", q.Title).Msg("Source fetch failed")
				}
				return
			}
			results[i] = rec
		}(i, p)
	}
	wg.Wait()

	records := make([]merge.SourceRecord, 0, len(providers))
	for _, rec := range results {
		if rec != nil {
			records = append(records, *rec)
		}
	}

	f.logger.Info().
		Str("title", q.Title).
		Int("queried", len(providers)).
		Int("records", len(records)).
		Msg("Source fetch completed")

	return records, nil
}
