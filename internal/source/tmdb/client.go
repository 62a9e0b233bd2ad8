package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/shelfmark/shelfmark/internal/config"
	"github.com/shelfmark/shelfmark/internal/merge"
)

var (
	ErrAPIError      = errors.New("TMDB API error")
	ErrRateLimited   = errors.New("TMDB API rate limited")
	ErrNotFound      = errors.New("TMDB movie not found")
	ErrNotConfigured = errors.New("TMDB API key not configured")
)

// Client is a TMDB API client that emits merge.SourceRecords.
type Client struct {
	httpClient *http.Client
	config     config.TMDBConfig
	logger     zerolog.Logger
}

// NewClient creates a new TMDB client.
func NewClient(cfg config.TMDBConfig, logger zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		config: cfg,
		logger: logger.With().Str("component", "tmdb").Logger(),
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return "tmdb"
}

// IsConfigured returns true if the API key is set.
func (c *Client) IsConfigured() bool {
	return c.config.APIKey != ""
}

// Test verifies connectivity to the TMDB API by making a configuration request.
func (c *Client) Test(ctx context.Context) error {
	if !c.IsConfigured() {
		return ErrNotConfigured
	}

	endpoint := fmt.Sprintf("%s/configuration", c.config.BaseURL)
	params := url.Values{}
	params.Set("api_key", c.config.APIKey)

	var result struct {
		Images struct {
			BaseURL string `json:"base_url"`
		} `json:"images"`
	}

	return c.doRequest(ctx, endpoint, params, &result)
}

// Fetch searches TMDB for the movie and returns the best match as a
// source record, including genres and cast with profile images.
func (c *Client) Fetch(ctx context.Context, title string, year int) (*merge.SourceRecord, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}

	id, err := c.search(ctx, title, year)
	if err != nil {
		return nil, err
	}

	details, err := c.getMovie(ctx, id)
	if err != nil {
		return nil, err
	}

	return c.toRecord(details), nil
}

func (c *Client) search(ctx context.Context, title string, year int) (int, error) {
	endpoint := fmt.Sprintf("%s/search/movie", c.config.BaseURL)
	params := url.Values{}
	params.Set("api_key", c.config.APIKey)
	params.Set("query", title)
	params.Set("include_adult", "false")
	if year > 0 {
		params.Set("year", strconv.Itoa(year))
	}

	var response SearchResponse
	if err := c.doRequest(ctx, endpoint, params, &response); err != nil {
		return 0, err
	}
	if len(response.Results) == 0 {
		return 0, ErrNotFound
	}

	// TMDB already orders by relevance; take the top hit.
	return response.Results[0].ID, nil
}

func (c *Client) getMovie(ctx context.Context, id int) (*MovieDetails, error) {
	endpoint := fmt.Sprintf("%s/movie/%d", c.config.BaseURL, id)
	params := url.Values{}
	params.Set("api_key", c.config.APIKey)
	params.Set("append_to_response", "credits")

	var details MovieDetails
	if err := c.doRequest(ctx, endpoint, params, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// toRecord maps TMDB movie details onto the uniform source record shape.
// Fields TMDB did not supply get no map entry at all.
func (c *Client) toRecord(d *MovieDetails) *merge.SourceRecord {
	rec := &merge.SourceRecord{
		SourceID: c.Name(),
		Fields:   make(map[merge.Field]string),
	}

	set := func(f merge.Field, v string) {
		if v = strings.TrimSpace(v); v != "" {
			rec.Fields[f] = v
		}
	}

	set(merge.FieldTitle, d.Title)
	set(merge.FieldOriginalTitle, d.OriginalTitle)
	set(merge.FieldDescription, d.Overview)
	set(merge.FieldReleaseDate, d.ReleaseDate)
	if d.Runtime > 0 {
		rec.Fields[merge.FieldRuntime] = strconv.Itoa(d.Runtime)
	}
	if len(d.ProductionCompanies) > 0 {
		set(merge.FieldStudio, d.ProductionCompanies[0].Name)
	}
	if d.BelongsToCollection != nil {
		set(merge.FieldSeries, d.BelongsToCollection.Name)
	}
	if d.PosterPath != "" {
		rec.Fields[merge.FieldPosterURL] = c.imageURL(d.PosterPath, "original")
	}
	for _, crew := range d.Credits.Crew {
		if crew.Job == "Director" {
			set(merge.FieldDirector, crew.Name)
			break
		}
	}

	for _, g := range d.Genres {
		if g.Name != "" {
			rec.Genres = append(rec.Genres, g.Name)
		}
	}

	for _, m := range d.Credits.Cast {
		actor := merge.Actor{Name: m.Name}
		if m.ProfilePath != "" {
			actor.ImageURL = c.imageURL(m.ProfilePath, "w185")
		}
		rec.Cast = append(rec.Cast, actor)
	}

	return rec
}

func (c *Client) imageURL(path, size string) string {
	return fmt.Sprintf("%s/%s%s", strings.TrimRight(c.config.ImageBaseURL, "/"), size, path)
}

func (c *Client) doRequest(ctx context.Context, endpoint string, params url.Values, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%w: status %d", ErrAPIError, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
