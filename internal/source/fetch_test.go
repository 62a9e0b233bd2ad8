package source

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/shelfmark/shelfmark/internal/merge"
)

// fakeProvider is a scripted provider for fetcher tests.
type fakeProvider struct {
	name       string
	configured bool
	record     *merge.SourceRecord
	err        error
	delay      time.Duration
}

func (f *fakeProvider) Name() string              { return f.name }
func (f *fakeProvider) IsConfigured() bool        { return f.configured }
func (f *fakeProvider) Test(context.Context) error { return nil }

func (f *fakeProvider) Fetch(ctx context.Context, q Query) (*merge.SourceRecord, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.record, nil
}

func TestFetcher_PreservesConfiguredOrder(t *testing.T) {
	// The slow provider is configured first, so its record must come first
	// even though the fast one completes earlier.
	slow := &fakeProvider{
		name: "slow", configured: true, delay: 30 * time.Millisecond,
		record: &merge.SourceRecord{SourceID: "slow"},
	}
	fast := &fakeProvider{
		name: "fast", configured: true,
		record: &merge.SourceRecord{SourceID: "fast"},
	}

	f := NewFetcher(NewRegistryWithProviders(slow, fast), zerolog.Nop())

	records, err := f.FetchAll(context.Background(), Query{Title: "x"})
	if err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[0].SourceID != "slow" || records[1].SourceID != "fast" {
		t.Errorf("order = [%s %s], want [slow fast]", records[0].SourceID, records[1].SourceID)
	}
}

func TestFetcher_SkipsFailedSources(t *testing.T) {
	ok := &fakeProvider{
		name: "ok", configured: true,
		record: &merge.SourceRecord{SourceID: "ok"},
	}
	broken := &fakeProvider{name: "broken", configured: true, err: errors.New("boom")}
	missing := &fakeProvider{name: "missing", configured: true, err: ErrNotFound}

	f := NewFetcher(NewRegistryWithProviders(broken, ok, missing), zerolog.Nop())

	records, err := f.FetchAll(context.Background(), Query{Title: "x"})
	if err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}
	if len(records) != 1 || records[0].SourceID != "ok" {
		t.Errorf("records = %v, want just ok", records)
	}
}

func TestFetcher_NoConfiguredSources(t *testing.T) {
	unconfigured := &fakeProvider{name: "off", configured: false}

	f := NewFetcher(NewRegistryWithProviders(unconfigured), zerolog.Nop())

	_, err := f.FetchAll(context.Background(), Query{Title: "x"})
	if !errors.Is(err, ErrNoSourcesConfigured) {
		t.Errorf("FetchAll() error = %v, want ErrNoSourcesConfigured", err)
	}
}

func TestRegistry_Get(t *testing.T) {
	a := &fakeProvider{name: "a", configured: true}
	r := NewRegistryWithProviders(a)

	if r.Get("a") != a {
		t.Error("Get(a) did not return the provider")
	}
	if r.Get("b") != nil {
		t.Error("Get(b) should be nil")
	}
}
