package source

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/shelfmark/shelfmark/internal/config"
)

func testSourcesConfig(enabled ...string) config.SourcesConfig {
	return config.SourcesConfig{
		Enabled: enabled,
		TMDB:    config.TMDBConfig{Timeout: 1},
		OMDB:    config.OMDBConfig{Timeout: 1},
	}
}

func TestNewRegistry_BuildsEnabledProviders(t *testing.T) {
	r := NewRegistry(testSourcesConfig("tmdb", "omdb", "bogus"), zerolog.Nop())

	providers := r.Providers()
	if len(providers) != 2 {
		t.Fatalf("providers = %d, want 2 (unknown ids skipped)", len(providers))
	}
	if providers[0].Name() != "tmdb" || providers[1].Name() != "omdb" {
		t.Errorf("order = [%s %s], want [tmdb omdb]", providers[0].Name(), providers[1].Name())
	}
}

// The clients carry their own sentinel errors; the registry adapters must
// translate them so callers only ever match against this package's.
func TestRegistry_AdaptersMapClientErrors(t *testing.T) {
	r := NewRegistry(testSourcesConfig("tmdb", "omdb"), zerolog.Nop())

	for _, p := range r.Providers() {
		if _, err := p.Fetch(context.Background(), Query{Title: "x"}); !errors.Is(err, ErrNotConfigured) {
			t.Errorf("%s: Fetch without key = %v, want ErrNotConfigured", p.Name(), err)
		}
		if err := p.Test(context.Background()); !errors.Is(err, ErrNotConfigured) {
			t.Errorf("%s: Test without key = %v, want ErrNotConfigured", p.Name(), err)
		}
	}
}

func TestRegistry_Reconfigure(t *testing.T) {
	r := NewRegistry(testSourcesConfig("tmdb", "omdb"), zerolog.Nop())

	r.Reconfigure(testSourcesConfig("omdb"))

	providers := r.Providers()
	if len(providers) != 1 || providers[0].Name() != "omdb" {
		t.Fatalf("providers after reconfigure = %v", providers)
	}
	if r.Get("tmdb") != nil {
		t.Error("tmdb should be gone after reconfigure")
	}
}
