package domain

// TmdbMovie is a single result row from the TMDB list endpoints (similar,
// credits, discover, search). It only lives for the duration of one
// aggregation run and is never persisted as-is.
type TmdbMovie struct {
	ID              int      `json:"id"`
	Title           string   `json:"title"`
	Overview        string   `json:"overview"`
	PosterPath      string   `json:"poster_path"`
	VoteAverage     float64  `json:"vote_average"`
	VoteCount       int      `json:"vote_count"`
	Popularity      float64  `json:"popularity"`
	GenreIDs        []int    `json:"genre_ids"`
	GenreNames      []string `json:"genre_names,omitempty"`
	OriginCountries []string `json:"origin_country,omitempty"`
	ReleaseDate     string   `json:"release_date,omitempty"`
}

// HasOriginCountry reports whether the movie lists the given ISO 3166-1 code
// among its origin countries.
func (m TmdbMovie) HasOriginCountry(code string) bool {
	for _, c := range m.OriginCountries {
		if c == code {
			return true
		}
	}
	return false
}

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// MovieDetails merges /movie/{id} with the top of its credits list.
type MovieDetails struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Overview    string   `json:"overview"`
	PosterPath  string   `json:"poster_path"`
	PosterURL   string   `json:"poster_url,omitempty"`
	VoteAverage float64  `json:"vote_average"`
	ReleaseDate string   `json:"release_date"`
	Runtime     int      `json:"runtime"`
	Genres      []string `json:"genres"`
	Country     string   `json:"country,omitempty"`
	Actors      []string `json:"actors"`
	Directors   []string `json:"directors"`
}

type MovieVideo struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
	Site string `json:"site"`
	Type string `json:"type"`
	Size int    `json:"size"`
}
