package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"cineMatch/domain"
)

// Credit roles accepted by PersonMovieCredits.
const (
	RoleCast     = "cast"
	RoleDirector = "director"
)

// Sort orders the discover query may use. One of these is picked at random
// per aggregation run to diversify results.
var DiscoverSortOrders = []string{
	"popularity.desc",
	"vote_average.desc",
	"vote_count.desc",
	"revenue.desc",
}

type TmdbConfig struct {
	BaseURL      string
	ImageBaseURL string
	APIKey       string
	Timeout      time.Duration
}

type TmdbRepository struct {
	cfg    TmdbConfig
	client *http.Client
}

func NewTmdbRepository(cfg TmdbConfig) *TmdbRepository {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &TmdbRepository{
		cfg: cfg,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

type movieListResponse struct {
	Results []domain.TmdbMovie `json:"results"`
}

type creditEntry struct {
	domain.TmdbMovie
	Job string `json:"job"`
}

type creditsResponse struct {
	Cast []creditEntry `json:"cast"`
	Crew []creditEntry `json:"crew"`
}

type genreListResponse struct {
	Genres []domain.Genre `json:"genres"`
}

// SimilarMovies fetches one page of /movie/{id}/similar.
func (r *TmdbRepository) SimilarMovies(ctx context.Context, movieID string, page int) ([]domain.TmdbMovie, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))

	var res movieListResponse
	if err := r.getJSON(ctx, fmt.Sprintf("/movie/%s/similar", url.PathEscape(movieID)), q, &res); err != nil {
		return nil, fmt.Errorf("failed to fetch similar movies for %s: %w", movieID, err)
	}

	return res.Results, nil
}

// PersonMovieCredits fetches /person/{id}/movie_credits and keeps the entries
// matching the given role: cast members for RoleCast, crew members with the
// job "Director" for RoleDirector.
func (r *TmdbRepository) PersonMovieCredits(ctx context.Context, personID, role string) ([]domain.TmdbMovie, error) {
	var res creditsResponse
	if err := r.getJSON(ctx, fmt.Sprintf("/person/%s/movie_credits", url.PathEscape(personID)), nil, &res); err != nil {
		return nil, fmt.Errorf("failed to fetch credits for person %s: %w", personID, err)
	}

	var entries []creditEntry
	switch role {
	case RoleCast:
		entries = res.Cast
	case RoleDirector:
		for _, e := range res.Crew {
			if e.Job == "Director" {
				entries = append(entries, e)
			}
		}
	default:
		return nil, fmt.Errorf("unknown credit role: %s", role)
	}

	movies := make([]domain.TmdbMovie, 0, len(entries))
	for _, e := range entries {
		movies = append(movies, e.TmdbMovie)
	}

	return movies, nil
}

// DiscoverMovies fetches one page of /discover/movie over the union of the
// given genre ids. Genre ids are sorted before building the query so the same
// set always produces the same request (and the same cache key upstream).
func (r *TmdbRepository) DiscoverMovies(ctx context.Context, genreIDs []string, minRating float64, minVoteCount int, sortBy string, page int) ([]domain.TmdbMovie, error) {
	ids := append([]string(nil), genreIDs...)
	sort.Strings(ids)

	q := url.Values{}
	q.Set("with_genres", strings.Join(ids, ","))
	q.Set("vote_average.gte", strconv.FormatFloat(minRating, 'f', -1, 64))
	q.Set("vote_count.gte", strconv.Itoa(minVoteCount))
	q.Set("sort_by", sortBy)
	q.Set("page", strconv.Itoa(page))

	var res movieListResponse
	if err := r.getJSON(ctx, "/discover/movie", q, &res); err != nil {
		return nil, fmt.Errorf("failed to discover movies: %w", err)
	}

	return res.Results, nil
}

// GenreList fetches the full genre taxonomy.
func (r *TmdbRepository) GenreList(ctx context.Context) ([]domain.Genre, error) {
	var res genreListResponse
	if err := r.getJSON(ctx, "/genre/movie/list", nil, &res); err != nil {
		return nil, fmt.Errorf("failed to fetch genre list: %w", err)
	}

	return res.Genres, nil
}

type movieDetailsResponse struct {
	ID                  int            `json:"id"`
	Title               string         `json:"title"`
	Overview            string         `json:"overview"`
	PosterPath          string         `json:"poster_path"`
	VoteAverage         float64        `json:"vote_average"`
	ReleaseDate         string         `json:"release_date"`
	Runtime             int            `json:"runtime"`
	Genres              []domain.Genre `json:"genres"`
	ProductionCountries []struct {
		ISO  string `json:"iso_3166_1"`
		Name string `json:"name"`
	} `json:"production_countries"`
}

type movieCreditsResponse struct {
	Cast []struct {
		Name string `json:"name"`
	} `json:"cast"`
	Crew []struct {
		Name string `json:"name"`
		Job  string `json:"job"`
	} `json:"crew"`
}

// MovieDetails merges /movie/{id} with the top of its credits.
func (r *TmdbRepository) MovieDetails(ctx context.Context, movieID int) (*domain.MovieDetails, error) {
	var dres movieDetailsResponse
	if err := r.getJSON(ctx, fmt.Sprintf("/movie/%d", movieID), nil, &dres); err != nil {
		return nil, fmt.Errorf("failed to fetch movie %d: %w", movieID, err)
	}

	details := &domain.MovieDetails{
		ID:          dres.ID,
		Title:       dres.Title,
		Overview:    dres.Overview,
		PosterPath:  dres.PosterPath,
		PosterURL:   r.FullPosterURL(dres.PosterPath),
		VoteAverage: dres.VoteAverage,
		ReleaseDate: dres.ReleaseDate,
		Runtime:     dres.Runtime,
	}

	for _, g := range dres.Genres {
		details.Genres = append(details.Genres, g.Name)
	}
	if len(dres.ProductionCountries) > 0 {
		details.Country = dres.ProductionCountries[0].Name
	}

	var cres movieCreditsResponse
	if err := r.getJSON(ctx, fmt.Sprintf("/movie/%d/credits", movieID), nil, &cres); err != nil {
		// details without credits are still useful
		return details, nil
	}

	for i, c := range cres.Cast {
		if i == 5 {
			break
		}
		details.Actors = append(details.Actors, c.Name)
	}
	for _, c := range cres.Crew {
		if c.Job == "Director" {
			details.Directors = append(details.Directors, c.Name)
		}
	}

	return details, nil
}

type movieVideosResponse struct {
	Results []domain.MovieVideo `json:"results"`
}

// MovieVideos fetches /movie/{id}/videos. YouTube trailers and teasers are
// preferred; if none exist, any YouTube video is returned.
func (r *TmdbRepository) MovieVideos(ctx context.Context, movieID int) ([]domain.MovieVideo, error) {
	var res movieVideosResponse
	if err := r.getJSON(ctx, fmt.Sprintf("/movie/%d/videos", movieID), nil, &res); err != nil {
		return nil, fmt.Errorf("failed to fetch videos for movie %d: %w", movieID, err)
	}

	var preferred, fallback []domain.MovieVideo
	for _, v := range res.Results {
		if v.Site != "YouTube" || v.Key == "" {
			continue
		}
		if v.Type == "Trailer" || v.Type == "Teaser" {
			preferred = append(preferred, v)
		} else {
			fallback = append(fallback, v)
		}
	}

	if len(preferred) > 0 {
		return preferred, nil
	}

	return fallback, nil
}

// SearchMovies searches by title, or lists popular movies when the query is
// empty.
func (r *TmdbRepository) SearchMovies(ctx context.Context, query string, page int) ([]domain.TmdbMovie, error) {
	endpoint := "/movie/popular"
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))

	if query != "" {
		endpoint = "/search/movie"
		q.Set("query", query)
	} else {
		q.Set("sort_by", "popularity.desc")
	}

	var res movieListResponse
	if err := r.getJSON(ctx, endpoint, q, &res); err != nil {
		return nil, fmt.Errorf("failed to search movies: %w", err)
	}

	return res.Results, nil
}

// PosterImage downloads the poster image for the given poster path.
func (r *TmdbRepository) PosterImage(ctx context.Context, posterPath string) ([]byte, error) {
	if posterPath == "" {
		return nil, fmt.Errorf("empty poster path")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.FullPosterURL(posterPath), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build poster request: %w", err)
	}

	res, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch poster: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected poster status: %d", res.StatusCode)
	}

	return io.ReadAll(res.Body)
}

func (r *TmdbRepository) FullPosterURL(posterPath string) string {
	if posterPath == "" {
		return ""
	}

	return r.cfg.ImageBaseURL + posterPath
}

func (r *TmdbRepository) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	u := r.cfg.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.cfg.APIKey)

	res, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
