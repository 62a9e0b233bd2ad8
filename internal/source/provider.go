package source

import (
	"context"
	"errors"

	"github.com/shelfmark/shelfmark/internal/merge"
)

var (
	// ErrNotFound is returned when a provider has no metadata for the movie.
	ErrNotFound = errors.New("source: movie not found")
	// ErrNotConfigured is returned when a provider is missing its API key.
	ErrNotConfigured = errors.New("source: provider not configured")
)

// Query identifies the movie a provider should look up. Title is required;
// Year and ImdbID narrow the match when the scan or a prior scrape supplied
// them.
type Query struct {
	Title  string
	Year   int
	ImdbID string
}

// Provider is one scraper source. Fetch performs the source-specific lookup
// (search, details, credits) and returns a uniform source record for the
// merge engine; the engine itself never sees provider-specific shapes.
type Provider interface {
	Name() string
	IsConfigured() bool
	Test(ctx context.Context) error
	Fetch(ctx context.Context, q Query) (*merge.SourceRecord, error)
}
