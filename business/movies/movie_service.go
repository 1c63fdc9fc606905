package movies

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"cineMatch/domain"
	"cineMatch/pkg/logger"
	"cineMatch/pkg/metrics"
)

type Catalog interface {
	MovieDetails(ctx context.Context, movieID int) (*domain.MovieDetails, error)
	MovieVideos(ctx context.Context, movieID int) ([]domain.MovieVideo, error)
	SearchMovies(ctx context.Context, query string, page int) ([]domain.TmdbMovie, error)
	PosterImage(ctx context.Context, posterPath string) ([]byte, error)
}

type CacheStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type Config struct {
	MinVoteCount  int
	MinPopularity float64
	MinRating     float64
	SearchTTL     time.Duration
	ReferenceTTL  time.Duration
}

func (c Config) withDefaults() Config {
	if c.MinVoteCount <= 0 {
		c.MinVoteCount = 100
	}
	if c.MinPopularity <= 0 {
		c.MinPopularity = 10.0
	}
	if c.MinRating <= 0 {
		c.MinRating = 7.0
	}
	if c.SearchTTL <= 0 {
		c.SearchTTL = time.Hour
	}
	if c.ReferenceTTL <= 0 {
		c.ReferenceTTL = 24 * time.Hour
	}

	return c
}

// MovieService serves the movie read path: details, videos, posters and
// search, all cache-aside over the catalog.
type MovieService struct {
	catalog Catalog
	cache   CacheStore
	cfg     Config
}

func NewMovieService(catalog Catalog, cache CacheStore, cfg Config) *MovieService {
	return &MovieService{
		catalog: catalog,
		cache:   cache,
		cfg:     cfg.withDefaults(),
	}
}

// GetMovieDetails returns the merged details+credits view, cached for 24h.
func (s *MovieService) GetMovieDetails(ctx context.Context, movieID int) (*domain.MovieDetails, error) {
	key := fmt.Sprintf("tmdb:movie:%d", movieID)

	if data, err := s.cache.Get(ctx, key); err == nil {
		var details domain.MovieDetails
		if err := json.Unmarshal(data, &details); err == nil {
			metrics.CacheHits.WithLabelValues("movie").Inc()
			return &details, nil
		}

		if err := s.cache.Delete(ctx, key); err != nil {
			logger.Error("Failed to delete cache entry", err, "key", key)
		}
	}
	metrics.CacheMisses.WithLabelValues("movie").Inc()

	details, err := s.catalog.MovieDetails(ctx, movieID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(details); err == nil {
		if err := s.cache.Set(ctx, key, data, s.cfg.ReferenceTTL); err != nil {
			logger.Error("Failed to cache movie details", err, "movie_id", movieID)
		}
	}

	return details, nil
}

func (s *MovieService) GetMovieVideos(ctx context.Context, movieID int) ([]domain.MovieVideo, error) {
	return s.catalog.MovieVideos(ctx, movieID)
}

// GetMoviePoster returns the poster bytes for a movie. Posters are stored
// base64-encoded with a 24h TTL; an entry that no longer decodes is removed
// and fetched again from the image CDN.
func (s *MovieService) GetMoviePoster(ctx context.Context, movieID int) ([]byte, error) {
	key := fmt.Sprintf("poster:%d", movieID)

	if data, err := s.cache.Get(ctx, key); err == nil {
		if image, err := base64.StdEncoding.DecodeString(string(data)); err == nil {
			metrics.CacheHits.WithLabelValues("poster").Inc()
			return image, nil
		}

		if err := s.cache.Delete(ctx, key); err != nil {
			logger.Error("Failed to delete cache entry", err, "key", key)
		}
	}
	metrics.CacheMisses.WithLabelValues("poster").Inc()

	details, err := s.GetMovieDetails(ctx, movieID)
	if err != nil {
		return nil, err
	}
	if details.PosterPath == "" {
		return nil, fmt.Errorf("no poster for movie %d", movieID)
	}

	image, err := s.catalog.PosterImage(ctx, details.PosterPath)
	if err != nil {
		return nil, err
	}

	encoded := base64.StdEncoding.EncodeToString(image)
	if err := s.cache.Set(ctx, key, []byte(encoded), s.cfg.ReferenceTTL); err != nil {
		logger.Error("Failed to cache poster", err, "movie_id", movieID)
	}

	return image, nil
}

// SearchMovies searches the catalog and keeps only movies passing the
// quality filter. An empty query lists popular movies.
func (s *MovieService) SearchMovies(ctx context.Context, query string, page int) ([]domain.TmdbMovie, error) {
	if page <= 0 {
		page = 1
	}

	key := fmt.Sprintf("tmdb:search:%s:page:%d", query, page)

	if data, err := s.cache.Get(ctx, key); err == nil {
		var movies []domain.TmdbMovie
		if err := json.Unmarshal(data, &movies); err == nil {
			metrics.CacheHits.WithLabelValues("search").Inc()
			return movies, nil
		}

		if err := s.cache.Delete(ctx, key); err != nil {
			logger.Error("Failed to delete cache entry", err, "key", key)
		}
	}
	metrics.CacheMisses.WithLabelValues("search").Inc()

	results, err := s.catalog.SearchMovies(ctx, query, page)
	if err != nil {
		return nil, err
	}

	movies := make([]domain.TmdbMovie, 0, len(results))
	for _, m := range results {
		if m.VoteAverage < s.cfg.MinRating || m.VoteCount < s.cfg.MinVoteCount || m.Popularity < s.cfg.MinPopularity {
			continue
		}
		movies = append(movies, m)
	}

	if data, err := json.Marshal(movies); err == nil {
		if err := s.cache.Set(ctx, key, data, s.cfg.SearchTTL); err != nil {
			logger.Error("Failed to cache search results", err, "query", query)
		}
	}

	return movies, nil
}
