package tmdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func newTestRepository(handler http.Handler) (*TmdbRepository, *httptest.Server) {
	srv := httptest.NewServer(handler)
	repo := NewTmdbRepository(TmdbConfig{
		BaseURL:      srv.URL,
		ImageBaseURL: srv.URL + "/t/p/w500",
		APIKey:       "test-key",
	})
	return repo, srv
}

func TestSimilarMoviesRequestShape(t *testing.T) {
	repo, srv := newTestRepository(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header: %q", got)
		}
		if r.URL.Path != "/movie/603/similar" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("page"); got != "2" {
			t.Errorf("unexpected page: %q", got)
		}
		w.Write([]byte(`{"results":[{"id":1,"title":"A","vote_average":8.1},{"id":2,"title":"B"}]}`))
	}))
	defer srv.Close()

	movies, err := repo.SimilarMovies(context.Background(), "603", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(movies) != 2 || movies[0].ID != 1 || movies[0].VoteAverage != 8.1 {
		t.Fatalf("unexpected movies: %+v", movies)
	}
}

func TestPersonMovieCreditsByRole(t *testing.T) {
	repo, srv := newTestRepository(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/person/6384/movie_credits" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{
			"cast":[{"id":603,"title":"The Matrix"},{"id":604,"title":"Reloaded"}],
			"crew":[{"id":700,"title":"Produced","job":"Producer"},{"id":701,"title":"Directed","job":"Director"}]
		}`))
	}))
	defer srv.Close()

	cast, err := repo.PersonMovieCredits(context.Background(), "6384", RoleCast)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cast) != 2 || cast[0].ID != 603 {
		t.Fatalf("unexpected cast credits: %+v", cast)
	}

	directed, err := repo.PersonMovieCredits(context.Background(), "6384", RoleDirector)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(directed) != 1 || directed[0].ID != 701 {
		t.Fatalf("expected only the Director crew entry, got %+v", directed)
	}

	if _, err := repo.PersonMovieCredits(context.Background(), "6384", "producer"); err == nil {
		t.Fatal("expected an error for an unknown role")
	}
}

func TestDiscoverMoviesCanonicalQuery(t *testing.T) {
	repo, srv := newTestRepository(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if got := q.Get("with_genres"); got != "12,28,35" {
			t.Errorf("genre ids must be sorted, got %q", got)
		}
		if got := q.Get("vote_average.gte"); got != "7" {
			t.Errorf("unexpected rating floor: %q", got)
		}
		if got := q.Get("vote_count.gte"); got != "100" {
			t.Errorf("unexpected vote floor: %q", got)
		}
		if got := q.Get("sort_by"); got != "vote_average.desc" {
			t.Errorf("unexpected sort order: %q", got)
		}
		w.Write([]byte(`{"results":[{"id":9}]}`))
	}))
	defer srv.Close()

	movies, err := repo.DiscoverMovies(context.Background(), []string{"35", "12", "28"}, 7.0, 100, "vote_average.desc", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(movies) != 1 || movies[0].ID != 9 {
		t.Fatalf("unexpected movies: %+v", movies)
	}
}

func TestMovieDetailsMergesCredits(t *testing.T) {
	repo, srv := newTestRepository(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/movie/603":
			w.Write([]byte(`{
				"id":603,"title":"The Matrix","poster_path":"/m.jpg","runtime":136,
				"genres":[{"id":28,"name":"Action"},{"id":878,"name":"Science Fiction"}],
				"production_countries":[{"iso_3166_1":"US","name":"United States of America"}]
			}`))
		case "/movie/603/credits":
			w.Write([]byte(`{
				"cast":[{"name":"C1"},{"name":"C2"},{"name":"C3"},{"name":"C4"},{"name":"C5"},{"name":"C6"}],
				"crew":[{"name":"Lana","job":"Director"},{"name":"Lilly","job":"Director"},{"name":"Joel","job":"Producer"}]
			}`))
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	details, err := repo.MovieDetails(context.Background(), 603)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if details.Title != "The Matrix" || details.Runtime != 136 {
		t.Fatalf("unexpected details: %+v", details)
	}
	if !reflect.DeepEqual(details.Genres, []string{"Action", "Science Fiction"}) {
		t.Fatalf("unexpected genres: %v", details.Genres)
	}
	if details.Country != "United States of America" {
		t.Fatalf("unexpected country: %q", details.Country)
	}
	if len(details.Actors) != 5 {
		t.Fatalf("cast list must be capped at 5, got %v", details.Actors)
	}
	if !reflect.DeepEqual(details.Directors, []string{"Lana", "Lilly"}) {
		t.Fatalf("unexpected directors: %v", details.Directors)
	}
	if details.PosterURL != srv.URL+"/t/p/w500/m.jpg" {
		t.Fatalf("unexpected poster url: %q", details.PosterURL)
	}
}

func TestMovieDetailsSurvivesCreditsFailure(t *testing.T) {
	repo, srv := newTestRepository(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/movie/603":
			w.Write([]byte(`{"id":603,"title":"The Matrix"}`))
		case "/movie/603/credits":
			http.Error(w, "upstream error", http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	details, err := repo.MovieDetails(context.Background(), 603)
	if err != nil {
		t.Fatalf("details must survive a credits failure: %v", err)
	}
	if details.Title != "The Matrix" || details.Actors != nil {
		t.Fatalf("unexpected details: %+v", details)
	}
}

func TestMovieVideosPrefersTrailers(t *testing.T) {
	repo, srv := newTestRepository(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[
			{"key":"v1","site":"YouTube","type":"Featurette"},
			{"key":"v2","site":"YouTube","type":"Trailer"},
			{"key":"v3","site":"Vimeo","type":"Trailer"},
			{"key":"v4","site":"YouTube","type":"Teaser"}
		]}`))
	}))
	defer srv.Close()

	videos, err := repo.MovieVideos(context.Background(), 603)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(videos) != 2 || videos[0].Key != "v2" || videos[1].Key != "v4" {
		t.Fatalf("expected only YouTube trailers and teasers, got %+v", videos)
	}
}

func TestMovieVideosFallsBackToAnyYouTube(t *testing.T) {
	repo, srv := newTestRepository(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[
			{"key":"v1","site":"YouTube","type":"Featurette"},
			{"key":"v2","site":"Vimeo","type":"Trailer"}
		]}`))
	}))
	defer srv.Close()

	videos, err := repo.MovieVideos(context.Background(), 603)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(videos) != 1 || videos[0].Key != "v1" {
		t.Fatalf("expected the YouTube featurette fallback, got %+v", videos)
	}
}

func TestSearchMoviesEmptyQueryListsPopular(t *testing.T) {
	repo, srv := newTestRepository(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/movie/popular":
			if got := r.URL.Query().Get("query"); got != "" {
				t.Errorf("popular listing must not carry a query, got %q", got)
			}
			w.Write([]byte(`{"results":[{"id":1}]}`))
		case "/search/movie":
			if got := r.URL.Query().Get("query"); got != "matrix" {
				t.Errorf("unexpected query: %q", got)
			}
			w.Write([]byte(`{"results":[{"id":603}]}`))
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	popular, err := repo.SearchMovies(context.Background(), "", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(popular) != 1 || popular[0].ID != 1 {
		t.Fatalf("unexpected popular results: %+v", popular)
	}

	found, err := repo.SearchMovies(context.Background(), "matrix", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(found) != 1 || found[0].ID != 603 {
		t.Fatalf("unexpected search results: %+v", found)
	}
}

func TestPosterImageDownload(t *testing.T) {
	image := []byte{0xFF, 0xD8, 0xFF}
	repo, srv := newTestRepository(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/t/p/w500/m.jpg" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write(image)
	}))
	defer srv.Close()

	got, err := repo.PosterImage(context.Background(), "/m.jpg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != string(image) {
		t.Fatalf("poster bytes corrupted: %v", got)
	}

	if _, err := repo.PosterImage(context.Background(), ""); err == nil {
		t.Fatal("expected an error for an empty poster path")
	}
}

func TestGetJSONSurfacesErrorStatus(t *testing.T) {
	repo, srv := newTestRepository(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status_message":"Invalid API key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := repo.GenreList(context.Background())
	if err == nil {
		t.Fatal("expected an error on a 401 response")
	}
}
