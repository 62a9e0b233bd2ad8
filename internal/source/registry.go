package source

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/shelfmark/shelfmark/internal/config"
	"github.com/shelfmark/shelfmark/internal/merge"
	"github.com/shelfmark/shelfmark/internal/source/omdb"
	"github.com/shelfmark/shelfmark/internal/source/tmdb"
)

// Registry holds the configured providers in the order settings enable
// them. That order is the record input order handed to the merge, so it is
// also the fallback tie-break order for unconfigured priorities. Reconfigure
// swaps the provider set when the user edits the enabled sources, so reads
// go through the lock.
type Registry struct {
	mu        sync.RWMutex
	providers []Provider
	logger    zerolog.Logger
}

// NewRegistry builds provider clients for every enabled source id. Unknown
// ids are logged and skipped; a stale settings file must not prevent the
// remaining sources from scraping.
func NewRegistry(cfg config.SourcesConfig, logger zerolog.Logger) *Registry {
	r := &Registry{logger: logger}
	r.providers = buildProviders(cfg, logger)
	return r
}

// NewRegistryWithProviders creates a registry from explicit providers (for
// testing/mocking).
func NewRegistryWithProviders(providers ...Provider) *Registry {
	return &Registry{providers: providers, logger: zerolog.Nop()}
}

// Reconfigure rebuilds the provider set from updated source settings.
func (r *Registry) Reconfigure(cfg config.SourcesConfig) {
	providers := buildProviders(cfg, r.logger)

	r.mu.Lock()
	r.providers = providers
	r.mu.Unlock()
}

func buildProviders(cfg config.SourcesConfig, logger zerolog.Logger) []Provider {
	var providers []Provider
	for _, id := range cfg.Enabled {
		switch id {
		case "tmdb":
			providers = append(providers, tmdbProvider{tmdb.NewClient(cfg.TMDB, logger)})
		case "omdb":
			providers = append(providers, omdbProvider{omdb.NewClient(cfg.OMDB, logger)})
		default:
			logger.Warn().Str("source", id).Msg("Unknown source id in settings, skipping")
		}
	}
	return providers
}

// Providers returns the providers in configured order.
func (r *Registry) Providers() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Provider(nil), r.providers...)
}

// Configured returns the providers that have credentials set.
func (r *Registry) Configured() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Provider, 0, len(r.providers))
	for _, p := range r.providers {
		if p.IsConfigured() {
			out = append(out, p)
		}
	}
	return out
}

// Get returns the provider with the given name, or nil.
func (r *Registry) Get(name string) Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.providers {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// tmdbProvider adapts the TMDB client to the Provider interface, translating
// its sentinel errors to the package-level ones.
type tmdbProvider struct {
	*tmdb.Client
}

func (p tmdbProvider) Test(ctx context.Context) error {
	return mapClientErr(p.Client.Test(ctx))
}

func (p tmdbProvider) Fetch(ctx context.Context, q Query) (*merge.SourceRecord, error) {
	rec, err := p.Client.Fetch(ctx, q.Title, q.Year)
	return rec, mapClientErr(err)
}

// omdbProvider adapts the OMDb client to the Provider interface.
type omdbProvider struct {
	*omdb.Client
}

func (p omdbProvider) Test(ctx context.Context) error {
	return mapClientErr(p.Client.Test(ctx))
}

func (p omdbProvider) Fetch(ctx context.Context, q Query) (*merge.SourceRecord, error) {
	rec, err := p.Client.Fetch(ctx, q.Title, q.Year, q.ImdbID)
	return rec, mapClientErr(err)
}

func mapClientErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, tmdb.ErrNotFound), errors.Is(err, omdb.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, tmdb.ErrNotConfigured), errors.Is(err, omdb.ErrNotConfigured):
		return ErrNotConfigured
	default:
		return err
	}
}
