package library

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shelfmark/shelfmark/internal/merge"
)

// Store persists movies and their metadata records.
type Store struct {
	db *sql.DB
}

// NewStore creates a store on an open database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const movieColumns = "id, path, scan_title, scan_year, created_at, updated_at"

func scanMovie(row interface{ Scan(...any) error }) (*Movie, error) {
	var m Movie
	err := row.Scan(&m.ID, &m.Path, &m.ScanTitle, &m.ScanYear, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateMovie inserts a new movie row.
func (s *Store) CreateMovie(ctx context.Context, m *Movie) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO movies (id, path, scan_title, scan_year) VALUES (?, ?, ?, ?)`,
		m.ID, m.Path, m.ScanTitle, m.ScanYear)
	if err != nil {
		return fmt.Errorf("failed to insert movie: %w", err)
	}
	return nil
}

// GetMovie retrieves a movie by id.
func (s *Store) GetMovie(ctx context.Context, id string) (*Movie, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+movieColumns+` FROM movies WHERE id = ?`, id)
	m, err := scanMovie(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMovieNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get movie: %w", err)
	}
	return m, nil
}

// GetMovieByPath retrieves a movie by its library path.
func (s *Store) GetMovieByPath(ctx context.Context, path string) (*Movie, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+movieColumns+` FROM movies WHERE path = ?`, path)
	m, err := scanMovie(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMovieNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get movie by path: %w", err)
	}
	return m, nil
}

// ListMovies returns all movies ordered by scan title.
func (s *Store) ListMovies(ctx context.Context) ([]*Movie, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+movieColumns+` FROM movies ORDER BY scan_title, path`)
	if err != nil {
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}
	defer rows.Close()

	var movies []*Movie
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan movie: %w", err)
		}
		movies = append(movies, m)
	}
	return movies, rows.Err()
}

// UpdateMovie updates the mutable movie columns.
func (s *Store) UpdateMovie(ctx context.Context, m *Movie) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE movies SET path = ?, scan_title = ?, scan_year = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		m.Path, m.ScanTitle, m.ScanYear, m.ID)
	if err != nil {
		return fmt.Errorf("failed to update movie: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMovieNotFound
	}
	return nil
}

// DeleteMovie removes a movie and, via cascade, its records and overrides.
func (s *Store) DeleteMovie(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM movies WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete movie: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMovieNotFound
	}
	return nil
}

// ReplaceSourceRecords swaps the stored per-source records for a movie.
// Position preserves the fetch order so later merges see the same input
// order the original merge did.
func (s *Store) ReplaceSourceRecords(ctx context.Context, movieID string, records []merge.SourceRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM source_records WHERE movie_id = ?`, movieID); err != nil {
		return fmt.Errorf("failed to clear source records: %w", err)
	}

	for i, rec := range records {
		payload, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to encode source record: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO source_records (movie_id, source_id, position, payload) VALUES (?, ?, ?, ?)`,
			movieID, rec.SourceID, i, string(payload))
		if err != nil {
			return fmt.Errorf("failed to insert source record: %w", err)
		}
	}

	return tx.Commit()
}

// GetSourceRecords returns the stored records in their original fetch order.
func (s *Store) GetSourceRecords(ctx context.Context, movieID string) ([]merge.SourceRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM source_records WHERE movie_id = ? ORDER BY position`, movieID)
	if err != nil {
		return nil, fmt.Errorf("failed to query source records: %w", err)
	}
	defer rows.Close()

	var records []merge.SourceRecord
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan source record: %w", err)
		}
		var rec merge.SourceRecord
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			return nil, fmt.Errorf("failed to decode source record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// SetOverride upserts a user override for one field.
func (s *Store) SetOverride(ctx context.Context, movieID string, field merge.Field, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO overrides (movie_id, field, value) VALUES (?, ?, ?)
		 ON CONFLICT(movie_id, field) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		movieID, string(field), value)
	if err != nil {
		return fmt.Errorf("failed to set override: %w", err)
	}
	return nil
}

// DeleteOverride removes a user override.
func (s *Store) DeleteOverride(ctx context.Context, movieID string, field merge.Field) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM overrides WHERE movie_id = ? AND field = ?`, movieID, string(field))
	if err != nil {
		return fmt.Errorf("failed to delete override: %w", err)
	}
	return nil
}

// GetOverrides returns all user overrides for a movie.
func (s *Store) GetOverrides(ctx context.Context, movieID string) (map[merge.Field]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT field, value FROM overrides WHERE movie_id = ?`, movieID)
	if err != nil {
		return nil, fmt.Errorf("failed to query overrides: %w", err)
	}
	defer rows.Close()

	overrides := make(map[merge.Field]string)
	for rows.Next() {
		var field, value string
		if err := rows.Scan(&field, &value); err != nil {
			return nil, fmt.Errorf("failed to scan override: %w", err)
		}
		overrides[merge.Field(field)] = value
	}
	return overrides, rows.Err()
}

// SaveCanonical stores the merged record for a movie.
func (s *Store) SaveCanonical(ctx context.Context, movieID string, rec *merge.CanonicalRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode canonical record: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO canonical_records (movie_id, payload) VALUES (?, ?)
		 ON CONFLICT(movie_id) DO UPDATE SET payload = excluded.payload, merged_at = CURRENT_TIMESTAMP`,
		movieID, string(payload))
	if err != nil {
		return fmt.Errorf("failed to save canonical record: %w", err)
	}
	return nil
}

// GetCanonical returns the stored merged record, or ErrNoCanonicalRecord
// when the movie has never been scraped.
func (s *Store) GetCanonical(ctx context.Context, movieID string) (*merge.CanonicalRecord, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM canonical_records WHERE movie_id = ?`, movieID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoCanonicalRecord
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get canonical record: %w", err)
	}

	var rec merge.CanonicalRecord
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return nil, fmt.Errorf("failed to decode canonical record: %w", err)
	}
	return &rec, nil
}
