package recommendation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"cineMatch/domain"
)

// in-memory CacheStore with real TTL expiry
type memCache struct {
	mu      sync.Mutex
	entries map[string]memEntry
	fail    bool // when set, every operation errors
}

type memEntry struct {
	data      []byte
	expiresAt time.Time
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string]memEntry)}
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fail {
		return nil, errors.New("cache down")
	}

	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		delete(c.entries, key)
		return nil, errors.New("cache miss")
	}

	return e.data, nil
}

func (c *memCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fail {
		return errors.New("cache down")
	}

	c.entries[key] = memEntry{data: value, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fail {
		return errors.New("cache down")
	}

	delete(c.entries, key)
	return nil
}

func (c *memCache) put(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memEntry{data: data, expiresAt: time.Now().Add(time.Hour)}
}

func (c *memCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

// scripted Catalog
type fakeCatalog struct {
	mu       sync.Mutex
	similar  map[string][]domain.TmdbMovie // keyed by movie id, served on page 1 only
	credits  map[string][]domain.TmdbMovie // keyed personID:role
	discover []domain.TmdbMovie
	calls    map[string]int

	similarErr  error
	creditsErr  error
	discoverErr error
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		similar: make(map[string][]domain.TmdbMovie),
		credits: make(map[string][]domain.TmdbMovie),
		calls:   make(map[string]int),
	}
}

func (f *fakeCatalog) count(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[key]++
}

func (f *fakeCatalog) callCount(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}

func (f *fakeCatalog) SimilarMovies(_ context.Context, movieID string, page int) ([]domain.TmdbMovie, error) {
	f.count(fmt.Sprintf("similar:%s:%d", movieID, page))
	if f.similarErr != nil {
		return nil, f.similarErr
	}
	if page > 1 {
		return nil, nil
	}
	return f.similar[movieID], nil
}

func (f *fakeCatalog) PersonMovieCredits(_ context.Context, personID, role string) ([]domain.TmdbMovie, error) {
	f.count("credits:" + personID + ":" + role)
	if f.creditsErr != nil {
		return nil, f.creditsErr
	}
	return f.credits[personID+":"+role], nil
}

func (f *fakeCatalog) DiscoverMovies(_ context.Context, _ []string, _ float64, _ int, sortBy string, page int) ([]domain.TmdbMovie, error) {
	f.count(fmt.Sprintf("discover:%s:%d", sortBy, page))
	if f.discoverErr != nil {
		return nil, f.discoverErr
	}
	if page > 1 {
		return nil, nil
	}
	return f.discover, nil
}

func (f *fakeCatalog) FullPosterURL(posterPath string) string {
	if posterPath == "" {
		return ""
	}
	return "https://image.example/" + posterPath
}

// in-memory RecommendationRepository
type memRepo struct {
	mu         sync.Mutex
	byEmail    map[string][]domain.Recommendation
	replaceErr error
	nextID     uint64
}

func newMemRepo() *memRepo {
	return &memRepo{byEmail: make(map[string][]domain.Recommendation)}
}

func (r *memRepo) ReplaceAll(_ context.Context, email string, recs []domain.Recommendation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.replaceErr != nil {
		return r.replaceErr
	}

	stored := make([]domain.Recommendation, len(recs))
	for i, rec := range recs {
		r.nextID++
		rec.ID = r.nextID
		stored[i] = rec
	}
	r.byEmail[email] = stored
	return nil
}

func (r *memRepo) FindByEmail(_ context.Context, email string) ([]domain.Recommendation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Recommendation(nil), r.byEmail[email]...), nil
}

func (r *memRepo) FindByEmailAndMovieID(_ context.Context, email string, movieID int) (domain.Recommendation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range r.byEmail[email] {
		if rec.MovieID == movieID {
			return rec, nil
		}
	}
	return domain.Recommendation{}, errors.New("recommendation not found")
}

func (r *memRepo) MarkWatched(_ context.Context, email string, movieID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	recs := r.byEmail[email]
	for i := range recs {
		if recs[i].MovieID == movieID {
			recs[i].Watched = true
		}
	}
	return nil
}

type fakeGenres struct {
	names map[int]string
}

func (f fakeGenres) Names(_ context.Context, ids []int) []string {
	var out []string
	for _, id := range ids {
		if name, ok := f.names[id]; ok {
			out = append(out, name)
		}
	}
	return out
}
