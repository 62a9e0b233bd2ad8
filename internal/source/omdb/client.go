package omdb

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
	// ErrAPIError is returned on unexpected OMDb HTTP statuses.
	ErrAPIError      = errors.New("OMDb API error")
	ErrNotFound      = errors.New("OMDb movie not found")
	ErrNotConfigured = errors.New("OMDb API key not configured")
)

// response is the OMDb by-title/by-id response. OMDb reports "N/A" for
// fields it lacks, so every field goes through naClean before use.
type response struct {
	Title      string `json:"Title"`
	Released   string `json:"Released"`
	Runtime    string `json:"Runtime"`
	Genre      string `json:"Genre"`
	Director   string `json:"Director"`
	Actors     string `json:"Actors"`
	Plot       string `json:"Plot"`
	Production string `json:"Production"`
	Poster     string `json:"Poster"`
	Response   string `json:"Response"`
	Error      string `json:"Error"`
}

// Client is an OMDb API client that emits merge.SourceRecords.
type Client struct {
	httpClient *http.Client
	config     config.OMDBConfig
	logger     zerolog.Logger
}

// NewClient creates a new OMDb client.
func NewClient(cfg config.OMDBConfig, logger zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		config: cfg,
		logger: logger.With().Str("component", "omdb").Logger(),
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return "omdb"
}

// IsConfigured returns true if the API key is set.
func (c *Client) IsConfigured() bool {
	return c.config.APIKey != ""
}

// Test verifies connectivity with a known-good lookup.
func (c *Client) Test(ctx context.Context) error {
	if !c.IsConfigured() {
		return ErrNotConfigured
	}
	_, err := c.lookup(ctx, "", 0, "tt0133093")
	return err
}

// Fetch looks the movie up by IMDb id when available, by title and year
// otherwise, and returns a source record.
func (c *Client) Fetch(ctx context.Context, title string, year int, imdbID string) (*merge.SourceRecord, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}

	resp, err := c.lookup(ctx, title, year, imdbID)
	if err != nil {
		return nil, err
	}
	return c.toRecord(resp), nil
}

func (c *Client) lookup(ctx context.Context, title string, year int, imdbID string) (*response, error) {
	params := url.Values{}
	params.Set("apikey", c.config.APIKey)
	params.Set("plot", "full")
	if imdbID != "" {
		params.Set("i", imdbID)
	} else {
		params.Set("t", title)
		if year > 0 {
			params.Set("y", strconv.Itoa(year))
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrAPIError, httpResp.StatusCode)
	}

	var resp response
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if resp.Response != "True" {
		// OMDb reports misses in-band with 200s.
		return nil, ErrNotFound
	}
	return &resp, nil
}

// toRecord maps an OMDb response onto the uniform source record shape.
func (c *Client) toRecord(r *response) *merge.SourceRecord {
	rec := &merge.SourceRecord{
		SourceID: c.Name(),
		Fields:   make(map[merge.Field]string),
	}

	set := func(f merge.Field, v string) {
		if v = naClean(v); v != "" {
			rec.Fields[f] = v
		}
	}

	set(merge.FieldTitle, r.Title)
	set(merge.FieldDescription, r.Plot)
	set(merge.FieldDirector, r.Director)
	set(merge.FieldStudio, r.Production)
	set(merge.FieldPosterURL, r.Poster)
	set(merge.FieldReleaseDate, normalizeReleased(r.Released))
	set(merge.FieldRuntime, normalizeRuntime(r.Runtime))

	for _, g := range splitList(r.Genre) {
		rec.Genres = append(rec.Genres, g)
	}
	for _, name := range splitList(r.Actors) {
		rec.Cast = append(rec.Cast, merge.Actor{Name: name})
	}

	return rec
}

// naClean trims a value and maps OMDb's "N/A" placeholder to absence.
func naClean(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, "N/A") {
		return ""
	}
	return v
}

// splitList splits OMDb's comma-joined lists, dropping empties.
func splitList(v string) []string {
	v = naClean(v)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// normalizeRuntime converts "136 min" to "136".
func normalizeRuntime(v string) string {
	v = naClean(v)
	v = strings.TrimSpace(strings.TrimSuffix(v, "min"))
	if _, err := strconv.Atoi(v); err != nil {
		return ""
	}
	return v
}

// normalizeReleased converts OMDb's "30 Mar 1999" to ISO "1999-03-30".
func normalizeReleased(v string) string {
	v = naClean(v)
	if v == "" {
		return ""
	}
	t, err := time.Parse("02 Jan 2006", v)
	if err != nil {
		return ""
	}
	return t.Format("2006-01-02")
}
