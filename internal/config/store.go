package config

import (
	"sync"

	"github.com/shelfmark/shelfmark/internal/merge"
)

// Store guards the configuration once the application is serving requests:
// the settings handler rewrites the merge policy while scrapes, re-merges
// and the scan task read it. Readers take value snapshots under the lock, so
// a merge resolves against one coherent policy for its whole run.
//
// Update callbacks replace maps and slices wholesale instead of mutating
// them in place; snapshots handed out earlier stay valid.
type Store struct {
	mu  sync.RWMutex
	cfg *Config
}

// NewStore wraps the loaded configuration.
func NewStore(cfg *Config) *Store {
	return &Store{cfg: cfg}
}

// View runs fn with shared read access to the configuration. fn must not
// retain the *Config or mutate anything reachable from it.
func (s *Store) View(fn func(*Config)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.cfg)
}

// Update applies fn under the write lock and, when path is non-empty,
// persists the result to disk before releasing it.
func (s *Store) Update(path string, fn func(*Config)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(s.cfg)
	if path != "" {
		return s.cfg.Save(path)
	}
	return nil
}

// MergePolicy returns an isolated copy of the current field priorities and
// genre blacklist. Each merge takes one snapshot and resolves against it.
func (s *Store) MergePolicy() (merge.Priorities, merge.Blacklist) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Merge.Priorities(), s.cfg.Merge.Blacklist()
}

// Library returns the current library settings by value.
func (s *Store) Library() LibraryConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Library
}

// Sources returns the current source settings by value.
func (s *Store) Sources() SourcesConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg := s.cfg.Sources
	cfg.Enabled = append([]string(nil), s.cfg.Sources.Enabled...)
	return cfg
}

// Auth returns the auth settings by value.
func (s *Store) Auth() AuthConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Auth
}
