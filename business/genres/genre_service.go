package genres

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"cineMatch/domain"
	"cineMatch/pkg/logger"

	"golang.org/x/sync/singleflight"
)

const cacheKey = "tmdb:genres"

type Catalog interface {
	GenreList(ctx context.Context) ([]domain.Genre, error)
}

type CacheStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// GenreService is the process-wide genre taxonomy. The id→name map is
// fetched once on first use (single-flight, so concurrent first readers
// trigger one fetch) and treated as immutable afterwards; a restart is the
// only refresh.
type GenreService struct {
	catalog Catalog
	cache   CacheStore
	ttl     time.Duration

	mu   sync.RWMutex
	byID map[int]string
	all  []domain.Genre

	group singleflight.Group
}

func NewGenreService(catalog Catalog, cache CacheStore, ttl time.Duration) *GenreService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &GenreService{
		catalog: catalog,
		cache:   cache,
		ttl:     ttl,
	}
}

// All returns the full taxonomy, loading it on first call.
func (s *GenreService) All(ctx context.Context) ([]domain.Genre, error) {
	if err := s.load(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.all, nil
}

// Names maps genre ids to names, skipping ids the taxonomy does not know.
// A failed load degrades to no names rather than failing the caller.
func (s *GenreService) Names(ctx context.Context, ids []int) []string {
	if err := s.load(ctx); err != nil {
		logger.Error("Failed to load genre taxonomy", err)
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var names []string
	for _, id := range ids {
		if name, ok := s.byID[id]; ok {
			names = append(names, name)
		}
	}

	return names
}

func (s *GenreService) load(ctx context.Context) error {
	s.mu.RLock()
	loaded := len(s.byID) > 0
	s.mu.RUnlock()
	if loaded {
		return nil
	}

	_, err, _ := s.group.Do(cacheKey, func() (any, error) {
		genres, err := s.fetch(ctx)
		if err != nil {
			return nil, err
		}

		byID := make(map[int]string, len(genres))
		for _, g := range genres {
			byID[g.ID] = g.Name
		}

		s.mu.Lock()
		s.byID = byID
		s.all = genres
		s.mu.Unlock()

		return nil, nil
	})

	return err
}

// fetch is cache-aside over the 24h reference cache; the catalog is the
// authority when the cache is cold or unreadable.
func (s *GenreService) fetch(ctx context.Context) ([]domain.Genre, error) {
	if data, err := s.cache.Get(ctx, cacheKey); err == nil {
		var genres []domain.Genre
		if err := json.Unmarshal(data, &genres); err == nil && len(genres) > 0 {
			return genres, nil
		}

		if err := s.cache.Delete(ctx, cacheKey); err != nil {
			logger.Error("Failed to delete cache entry", err, "key", cacheKey)
		}
	}

	genres, err := s.catalog.GenreList(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch genres: %w", err)
	}

	if data, err := json.Marshal(genres); err == nil {
		if err := s.cache.Set(ctx, cacheKey, data, s.ttl); err != nil {
			logger.Error("Failed to cache genres", err)
		}
	}

	return genres, nil
}
