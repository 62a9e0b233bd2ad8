package tmdb

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/shelfmark/shelfmark/internal/config"
	"github.com/shelfmark/shelfmark/internal/merge"
)

func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search/movie":
			json.NewEncoder(w).Encode(SearchResponse{
				Results: []SearchResult{
					{ID: 603, Title: "The Matrix", ReleaseDate: "1999-03-30"},
				},
			})
		case "/movie/603":
			json.NewEncoder(w).Encode(MovieDetails{
				ID:            603,
				Title:         "The Matrix",
				OriginalTitle: "The Matrix",
				Overview:      "A computer hacker learns the truth.",
				ReleaseDate:   "1999-03-30",
				Runtime:       136,
				PosterPath:    "/matrix.jpg",
				Genres:        []Genre{{ID: 28, Name: "Action"}, {ID: 878, Name: "Science Fiction"}},
				ProductionCompanies: []Company{{ID: 79, Name: "Village Roadshow Pictures"}},
				Credits: Credits{
					Cast: []CastMember{
						{Name: "Keanu Reeves", ProfilePath: "/keanu.jpg", Order: 0},
						{Name: "Carrie-Anne Moss", Order: 1},
					},
					Crew: []CrewMember{
						{Name: "Lana Wachowski", Job: "Director"},
						{Name: "Bill Pope", Job: "Director of Photography"},
					},
				},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func testClient(serverURL string) *Client {
	return NewClient(config.TMDBConfig{
		APIKey:       "test-key",
		BaseURL:      serverURL,
		ImageBaseURL: "https://image.tmdb.org/t/p",
		Timeout:      5,
	}, zerolog.Nop())
}

func TestClient_Fetch(t *testing.T) {
	server := setupTestServer(t)
	defer server.Close()

	rec, err := testClient(server.URL).Fetch(context.Background(), "Matrix", 1999)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if rec.SourceID != "tmdb" {
		t.Errorf("SourceID = %q, want %q", rec.SourceID, "tmdb")
	}
	if v := rec.Fields[merge.FieldTitle]; v != "The Matrix" {
		t.Errorf("title = %q, want %q", v, "The Matrix")
	}
	if v := rec.Fields[merge.FieldRuntime]; v != "136" {
		t.Errorf("runtime = %q, want %q", v, "136")
	}
	if v := rec.Fields[merge.FieldDirector]; v != "Lana Wachowski" {
		t.Errorf("director = %q, want %q", v, "Lana Wachowski")
	}
	if v := rec.Fields[merge.FieldPosterURL]; v != "https://image.tmdb.org/t/p/original/matrix.jpg" {
		t.Errorf("poster = %q", v)
	}
	if len(rec.Genres) != 2 || rec.Genres[0] != "Action" {
		t.Errorf("genres = %v", rec.Genres)
	}
	if len(rec.Cast) != 2 {
		t.Fatalf("cast size = %d, want 2", len(rec.Cast))
	}
	if rec.Cast[0].ImageURL != "https://image.tmdb.org/t/p/w185/keanu.jpg" {
		t.Errorf("cast image = %q", rec.Cast[0].ImageURL)
	}
	if rec.Cast[1].ImageURL != "" {
		t.Errorf("cast[1] image = %q, want absent", rec.Cast[1].ImageURL)
	}
	if _, ok := rec.Fields[merge.FieldLabel]; ok {
		t.Error("label should be absent, TMDB does not supply it")
	}
}

func TestClient_Fetch_NoMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(SearchResponse{})
	}))
	defer server.Close()

	_, err := testClient(server.URL).Fetch(context.Background(), "does not exist", 0)
	if err != ErrNotFound {
		t.Errorf("Fetch() error = %v, want ErrNotFound", err)
	}
}

func TestClient_Fetch_NotConfigured(t *testing.T) {
	client := NewClient(config.TMDBConfig{}, zerolog.Nop())

	_, err := client.Fetch(context.Background(), "Matrix", 0)
	if err != ErrNotConfigured {
		t.Errorf("Fetch() error = %v, want ErrNotConfigured", err)
	}
}
