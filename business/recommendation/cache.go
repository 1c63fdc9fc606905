package recommendation

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"cineMatch/domain"
	"cineMatch/pkg/logger"
	"cineMatch/pkg/metrics"
)

// Cache key construction. Keys must be a deterministic function of the query
// parameters: unordered inputs (the genre id set) are sorted before the key
// is built, otherwise the same query fragments the cache.

func similarKey(movieID string, page int) string {
	return fmt.Sprintf("tmdb:similar:%s:page:%d", movieID, page)
}

func creditsKey(personID, role string) string {
	return fmt.Sprintf("tmdb:credits:%s:%s", personID, role)
}

func discoverKey(genreIDs []string, minRating float64, sortBy string, page int) string {
	ids := append([]string(nil), genreIDs...)
	sort.Strings(ids)

	return fmt.Sprintf("tmdb:discover:%s:%.1f:%s:page:%d", strings.Join(ids, ","), minRating, sortBy, page)
}

func resultKey(email string) string {
	return "recommendations:" + email
}

// cachedMovieList is the cache-aside read path for one catalog sub-query.
// Cache failures are logged and fall through to the catalog; a payload that
// no longer decodes is deleted so the next read repopulates it.
func (s *Service) cachedMovieList(ctx context.Context, key string, fetch func(context.Context) ([]domain.TmdbMovie, error)) ([]domain.TmdbMovie, error) {
	if data, err := s.cache.Get(ctx, key); err == nil {
		var movies []domain.TmdbMovie
		if err := json.Unmarshal(data, &movies); err == nil {
			metrics.CacheHits.WithLabelValues("subquery").Inc()
			return movies, nil
		}

		logger.Warn("Dropping undecodable cache entry", "key", key)
		if err := s.cache.Delete(ctx, key); err != nil {
			logger.Error("Failed to delete cache entry", err, "key", key)
		}
	}
	metrics.CacheMisses.WithLabelValues("subquery").Inc()

	movies, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(movies); err == nil {
		if err := s.cache.Set(ctx, key, data, s.cfg.SubQueryTTL); err != nil {
			logger.Error("Failed to cache sub-query result", err, "key", key)
		}
	}

	return movies, nil
}
