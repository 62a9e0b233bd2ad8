package tmdb

// SearchResponse is the TMDB /search/movie response.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

// SearchResult is one movie candidate from a TMDB search.
type SearchResult struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	ReleaseDate string `json:"release_date"`
	Popularity  float64 `json:"popularity"`
}

// MovieDetails is the TMDB /movie/{id} response with credits appended.
type MovieDetails struct {
	ID                  int    `json:"id"`
	Title               string `json:"title"`
	OriginalTitle       string `json:"original_title"`
	Overview            string `json:"overview"`
	ReleaseDate         string `json:"release_date"`
	Runtime             int    `json:"runtime"`
	PosterPath          string `json:"poster_path"`
	ImdbID              string `json:"imdb_id"`
	Genres              []Genre `json:"genres"`
	ProductionCompanies []Company `json:"production_companies"`
	BelongsToCollection *Collection `json:"belongs_to_collection"`
	Credits             Credits `json:"credits"`
}

// Genre is a TMDB genre entry.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Company is a TMDB production company.
type Company struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Collection is the movie collection a title belongs to.
type Collection struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Credits holds cast and crew from append_to_response=credits.
type Credits struct {
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// CastMember is one TMDB cast credit.
type CastMember struct {
	Name        string `json:"name"`
	ProfilePath string `json:"profile_path"`
	Order       int    `json:"order"`
}

// CrewMember is one TMDB crew credit.
type CrewMember struct {
	Name string `json:"name"`
	Job  string `json:"job"`
}
