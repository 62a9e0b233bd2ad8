package library

import "time"

// Movie represents a library entry discovered on disk or added by hand.
// ScanTitle and ScanYear are the filename-derived hints used to query
// metadata sources; the resolved metadata lives in the canonical record.
type Movie struct {
	ID        string    `json:"id"`
	Path      string    `json:"path"`
	ScanTitle string    `json:"scanTitle"`
	ScanYear  int       `json:"scanYear,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateMovieInput contains fields for adding a movie.
type CreateMovieInput struct {
	Path      string `json:"path"`
	ScanTitle string `json:"scanTitle"`
	ScanYear  int    `json:"scanYear,omitempty"`
}

// UpdateMovieInput contains fields for updating a movie. Nil fields are
// left unchanged.
type UpdateMovieInput struct {
	Path      *string `json:"path,omitempty"`
	ScanTitle *string `json:"scanTitle,omitempty"`
	ScanYear  *int    `json:"scanYear,omitempty"`
}
