package library

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/shelfmark/shelfmark/internal/config"
	"github.com/shelfmark/shelfmark/internal/merge"
	"github.com/shelfmark/shelfmark/internal/source"
	"github.com/shelfmark/shelfmark/internal/websocket"
)

var (
	ErrMovieNotFound     = errors.New("movie not found")
	ErrInvalidMovie      = errors.New("invalid movie data")
	ErrDuplicatePath     = errors.New("movie with this path already exists")
	ErrNoCanonicalRecord = errors.New("movie has not been scraped yet")
	ErrScrapeInProgress  = errors.New("scrape already in progress for this movie")
	ErrReservedSource    = errors.New("field overrides may not target a source id")
)

// MetadataFetcher fetches source records for a query. Satisfied by
// source.Fetcher; tests substitute a scripted implementation.
type MetadataFetcher interface {
	FetchAll(ctx context.Context, q source.Query) ([]merge.SourceRecord, error)
}

// Service provides movie library operations: CRUD, scraping and the
// override-aware metadata merge.
type Service struct {
	store    *Store
	fetcher  MetadataFetcher
	settings *config.Store
	hub      *websocket.Hub
	logger   zerolog.Logger
	flights  *flightGuard
}

// NewService creates a new library service.
func NewService(store *Store, fetcher MetadataFetcher, settings *config.Store, hub *websocket.Hub, logger zerolog.Logger) *Service {
	return &Service{
		store:    store,
		fetcher:  fetcher,
		settings: settings,
		hub:      hub,
		logger:   logger.With().Str("component", "library").Logger(),
		flights:  newFlightGuard(),
	}
}

// Get retrieves a movie by ID.
func (s *Service) Get(ctx context.Context, id string) (*Movie, error) {
	return s.store.GetMovie(ctx, id)
}

// List returns all movies in the library.
func (s *Service) List(ctx context.Context) ([]*Movie, error) {
	return s.store.ListMovies(ctx)
}

// Create adds a movie to the library.
func (s *Service) Create(ctx context.Context, input CreateMovieInput) (*Movie, error) {
	if input.Path == "" || input.ScanTitle == "" {
		return nil, ErrInvalidMovie
	}

	if _, err := s.store.GetMovieByPath(ctx, input.Path); err == nil {
		return nil, ErrDuplicatePath
	} else if !errors.Is(err, ErrMovieNotFound) {
		return nil, err
	}

	movie := &Movie{
		ID:        uuid.New().String(),
		Path:      input.Path,
		ScanTitle: input.ScanTitle,
		ScanYear:  input.ScanYear,
	}
	if err := s.store.CreateMovie(ctx, movie); err != nil {
		return nil, err
	}

	created, err := s.store.GetMovie(ctx, movie.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("id", created.ID).Str("title", created.ScanTitle).Msg("Added movie")
	if s.hub != nil {
		s.hub.Broadcast("movie:added", created)
	}
	return created, nil
}

// Update updates an existing movie.
func (s *Service) Update(ctx context.Context, id string, input UpdateMovieInput) (*Movie, error) {
	current, err := s.store.GetMovie(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Path != nil {
		current.Path = *input.Path
	}
	if input.ScanTitle != nil {
		current.ScanTitle = *input.ScanTitle
	}
	if input.ScanYear != nil {
		current.ScanYear = *input.ScanYear
	}
	if current.Path == "" || current.ScanTitle == "" {
		return nil, ErrInvalidMovie
	}

	if err := s.store.UpdateMovie(ctx, current); err != nil {
		return nil, err
	}
	return s.store.GetMovie(ctx, id)
}

// Delete removes a movie and all of its stored metadata.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteMovie(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("id", id).Msg("Removed movie")
	if s.hub != nil {
		s.hub.Broadcast("movie:removed", map[string]string{"id": id})
	}
	return nil
}

// Scrape fetches fresh records from every configured source, folds in the
// user's overrides and stores the merged result. Only one scrape per movie
// may run at a time; concurrent calls get ErrScrapeInProgress.
func (s *Service) Scrape(ctx context.Context, id string) (*merge.CanonicalRecord, error) {
	if !s.flights.acquire(id) {
		return nil, ErrScrapeInProgress
	}
	defer s.flights.release(id)

	movie, err := s.store.GetMovie(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.Broadcast("scrape:started", map[string]string{"movieId": id})
	}

	records, err := s.fetcher.FetchAll(ctx, source.Query{
		Title: movie.ScanTitle,
		Year:  movie.ScanYear,
	})
	if err != nil {
		s.broadcastScrapeFailed(id, err)
		return nil, fmt.Errorf("failed to fetch source records: %w", err)
	}

	if err := s.store.ReplaceSourceRecords(ctx, id, records); err != nil {
		s.broadcastScrapeFailed(id, err)
		return nil, err
	}

	canonical, err := s.mergeAndSave(ctx, id, records)
	if err != nil {
		s.broadcastScrapeFailed(id, err)
		return nil, err
	}

	s.logger.Info().
		Str("id", id).
		Int("sources", len(records)).
		Msg("Scrape completed")
	if s.hub != nil {
		s.hub.Broadcast("scrape:completed", map[string]any{
			"movieId": id,
			"record":  canonical,
		})
	}
	return canonical, nil
}

// Remerge rebuilds the canonical record from the stored source records
// without contacting any source. Used after override or priority changes.
func (s *Service) Remerge(ctx context.Context, id string) (*merge.CanonicalRecord, error) {
	if _, err := s.store.GetMovie(ctx, id); err != nil {
		return nil, err
	}

	records, err := s.store.GetSourceRecords(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNoCanonicalRecord
	}
	return s.mergeAndSave(ctx, id, records)
}

// mergeAndSave appends the override record, resolves and persists.
func (s *Service) mergeAndSave(ctx context.Context, id string, records []merge.SourceRecord) (*merge.CanonicalRecord, error) {
	overrides, err := s.store.GetOverrides(ctx, id)
	if err != nil {
		return nil, err
	}

	input := records
	if len(overrides) > 0 {
		input = append(append([]merge.SourceRecord(nil), records...), merge.SourceRecord{
			SourceID: merge.SourceUser,
			Fields:   overrides,
		})
	}

	priorities, blacklist := s.settings.MergePolicy()
	canonical, err := merge.Resolve(input, priorities, blacklist)
	if err != nil {
		return nil, fmt.Errorf("failed to merge records: %w", err)
	}

	if err := s.store.SaveCanonical(ctx, id, canonical); err != nil {
		return nil, err
	}
	return canonical, nil
}

// Canonical returns the stored merged record for a movie.
func (s *Service) Canonical(ctx context.Context, id string) (*merge.CanonicalRecord, error) {
	if _, err := s.store.GetMovie(ctx, id); err != nil {
		return nil, err
	}
	return s.store.GetCanonical(ctx, id)
}

// SourceRecords returns the raw per-source records from the last scrape.
func (s *Service) SourceRecords(ctx context.Context, id string) ([]merge.SourceRecord, error) {
	if _, err := s.store.GetMovie(ctx, id); err != nil {
		return nil, err
	}
	return s.store.GetSourceRecords(ctx, id)
}

// Overrides returns the user overrides for a movie.
func (s *Service) Overrides(ctx context.Context, id string) (map[merge.Field]string, error) {
	if _, err := s.store.GetMovie(ctx, id); err != nil {
		return nil, err
	}
	return s.store.GetOverrides(ctx, id)
}

// SetOverride stores a user override and re-merges. An empty value clears
// the override, letting the source priorities decide again.
func (s *Service) SetOverride(ctx context.Context, id string, field merge.Field, value string) (*merge.CanonicalRecord, error) {
	if !isOverridableField(field) {
		return nil, fmt.Errorf("%w: %q", ErrReservedSource, field)
	}
	if _, err := s.store.GetMovie(ctx, id); err != nil {
		return nil, err
	}

	value = strings.TrimSpace(value)
	if value == "" {
		if err := s.store.DeleteOverride(ctx, id, field); err != nil {
			return nil, err
		}
	} else {
		if err := s.store.SetOverride(ctx, id, field, value); err != nil {
			return nil, err
		}
	}

	canonical, err := s.Remerge(ctx, id)
	if err != nil {
		// No stored records yet; the override still applies on the next scrape.
		if errors.Is(err, ErrNoCanonicalRecord) {
			return nil, nil
		}
		return nil, err
	}
	return canonical, nil
}

func isOverridableField(field merge.Field) bool {
	for _, f := range merge.ScalarFields {
		if f == field {
			return true
		}
	}
	return false
}

func (s *Service) broadcastScrapeFailed(id string, err error) {
	s.logger.Error().Err(err).Str("id", id).Msg("Scrape failed")
	if s.hub != nil {
		s.hub.Broadcast("scrape:failed", map[string]string{
			"movieId": id,
			"error":   err.Error(),
		})
	}
}
