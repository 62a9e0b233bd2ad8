package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/shelfmark/shelfmark/internal/merge"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Port != 8585 {
		t.Errorf("Server.Port = %d, want 8585", cfg.Server.Port)
	}
	if got := cfg.Merge.FieldPriorities["title"]; !reflect.DeepEqual(got, []string{"tmdb", "omdb"}) {
		t.Errorf("title priority = %v, want [tmdb omdb]", got)
	}
	if cfg.Sources.TMDB.BaseURL == "" {
		t.Error("TMDB base URL default missing")
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9999
merge:
  genre_blacklist:
    - comedy
  field_priorities:
    title: [omdb, tmdb]
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999", cfg.Server.Port)
	}
	if got := cfg.Merge.FieldPriorities["title"]; !reflect.DeepEqual(got, []string{"omdb", "tmdb"}) {
		t.Errorf("title priority = %v, want [omdb tmdb]", got)
	}
	if !cfg.Merge.Blacklist().Contains("Comedy") {
		t.Error("expected comedy to be blacklisted case-insensitively")
	}
}

func TestMergeConfig_Priorities(t *testing.T) {
	m := MergeConfig{FieldPriorities: map[string][]string{"title": {"a", "b"}}}

	p := m.Priorities()
	if got := p[merge.FieldTitle]; !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("priorities[title] = %v, want [a b]", got)
	}

	// The conversion must copy, not alias, the configured slices.
	p[merge.FieldTitle][0] = "mutated"
	if m.FieldPriorities["title"][0] != "a" {
		t.Error("Priorities() aliased the config slice")
	}
}

func TestUnprioritizedSources(t *testing.T) {
	cfg := Default()
	cfg.Sources.Enabled = []string{"tmdb", "omdb", "localcsv"}

	got := cfg.UnprioritizedSources()
	if !reflect.DeepEqual(got, []string{"localcsv"}) {
		t.Errorf("UnprioritizedSources() = %v, want [localcsv]", got)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := Default()
	cfg.Merge.GenreBlacklist = []string{"comedy"}
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(loaded.Merge.GenreBlacklist, []string{"comedy"}) {
		t.Errorf("blacklist after round trip = %v", loaded.Merge.GenreBlacklist)
	}
}
