package recommendation

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"math/rand"
	"strings"
	"sync"
	"time"

	"cineMatch/domain"
	"cineMatch/pkg/logger"
	"cineMatch/pkg/metrics"

	"gorm.io/datatypes"
)

// ---- Repository interfaces ----

type RecommendationRepository interface {
	ReplaceAll(ctx context.Context, email string, recs []domain.Recommendation) error
	FindByEmail(ctx context.Context, email string) ([]domain.Recommendation, error)
	FindByEmailAndMovieID(ctx context.Context, email string, movieID int) (domain.Recommendation, error)
	MarkWatched(ctx context.Context, email string, movieID int) error
}

type Catalog interface {
	SimilarMovies(ctx context.Context, movieID string, page int) ([]domain.TmdbMovie, error)
	PersonMovieCredits(ctx context.Context, personID, role string) ([]domain.TmdbMovie, error)
	DiscoverMovies(ctx context.Context, genreIDs []string, minRating float64, minVoteCount int, sortBy string, page int) ([]domain.TmdbMovie, error)
	FullPosterURL(posterPath string) string
}

type CacheStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// GenreNamer resolves genre ids to display names.
type GenreNamer interface {
	Names(ctx context.Context, ids []int) []string
}

// ---- Usecase / Service ----

// Service is the recommendation aggregation engine. One preference event in,
// one rebuilt recommendation set out.
type Service struct {
	repo    RecommendationRepository
	catalog Catalog
	cache   CacheStore
	genres  GenreNamer
	cfg     Config
	rng     *lockedRand

	// one run at a time per email; distinct emails proceed in parallel
	emailLocks [32]sync.Mutex
}

// NewService wires the engine. rng may be nil outside of tests; a time-seeded
// source is used then.
func NewService(
	repo RecommendationRepository,
	catalog Catalog,
	cache CacheStore,
	genres GenreNamer,
	cfg Config,
	rng *rand.Rand,
) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &Service{
		repo:    repo,
		catalog: catalog,
		cache:   cache,
		genres:  genres,
		cfg:     cfg.withDefaults(),
		rng:     newLockedRand(rng),
	}
}

func (s *Service) lockEmail(email string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(email))
	m := &s.emailLocks[h.Sum32()%uint32(len(s.emailLocks))]
	m.Lock()
	return m
}

// ProcessPreferences rebuilds the user's recommendation set from one
// preferences event. The result cache is invalidated before the run starts so
// a failed run never hides a deleted record set behind a stale cache entry.
// A returned error means nothing was persisted and the event should be
// redelivered.
func (s *Service) ProcessPreferences(ctx context.Context, event domain.PreferencesEvent) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	mu := s.lockEmail(event.Email)
	defer mu.Unlock()

	start := time.Now()
	logger.Info("Processing preferences event", "email", event.Email)

	if err := s.cache.Delete(ctx, resultKey(event.Email)); err != nil {
		logger.Error("Failed to invalidate result cache", err, "email", event.Email)
	}

	results := s.aggregate(s.fanout(ctx, event), event.MinRating)
	records := s.buildRecords(ctx, event.Email, results)

	if err := s.repo.ReplaceAll(ctx, event.Email, records); err != nil {
		metrics.PreferenceEventsFailed.Inc()
		return fmt.Errorf("failed to store recommendations for %s: %w", event.Email, err)
	}

	if data, err := json.Marshal(records); err == nil {
		if err := s.cache.Set(ctx, resultKey(event.Email), data, s.cfg.ResultTTL); err != nil {
			logger.Error("Failed to cache recommendations", err, "email", event.Email)
		}
	}

	metrics.PreferenceEventsProcessed.Inc()
	metrics.RecommendationRunLatency.Observe(time.Since(start).Seconds())
	logger.Info("Saved recommendations", "email", event.Email, "count", len(records))

	return nil
}

func (s *Service) buildRecords(ctx context.Context, email string, results []categoryResult) []domain.Recommendation {
	var records []domain.Recommendation

	for _, cr := range results {
		for _, m := range cr.Movies {
			rec := domain.Recommendation{
				Email:      email,
				MovieID:    m.ID,
				MovieTitle: m.Title,
				PosterURL:  s.catalog.FullPosterURL(m.PosterPath),
				Rating:     m.VoteAverage,
				Overview:   m.Overview,
				Category:   cr.Category,
				Genres:     strings.Join(s.genres.Names(ctx, m.GenreIDs), ", "),
			}

			if len(m.GenreIDs) > 0 {
				if data, err := json.Marshal(m.GenreIDs); err == nil {
					rec.GenreIDs = datatypes.JSON(data)
				}
			}

			records = append(records, rec)
		}
	}

	return records
}

// GetRecommendations serves the user's current set, cache first.
func (s *Service) GetRecommendations(ctx context.Context, email string) ([]domain.Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	key := resultKey(email)

	if data, err := s.cache.Get(ctx, key); err == nil {
		var recs []domain.Recommendation
		if err := json.Unmarshal(data, &recs); err == nil {
			metrics.CacheHits.WithLabelValues("result").Inc()
			return recs, nil
		}

		logger.Warn("Dropping undecodable cache entry", "key", key)
		if err := s.cache.Delete(ctx, key); err != nil {
			logger.Error("Failed to delete cache entry", err, "key", key)
		}
	}
	metrics.CacheMisses.WithLabelValues("result").Inc()

	recs, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(recs); err == nil {
		if err := s.cache.Set(ctx, key, data, s.cfg.ResultTTL); err != nil {
			logger.Error("Failed to cache recommendations", err, "email", email)
		}
	}

	return recs, nil
}

// MarkWatched flags one recommendation as watched. Unknown movies are a
// no-op, so replays are harmless.
func (s *Service) MarkWatched(ctx context.Context, email string, movieID int) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	return s.repo.MarkWatched(ctx, email, movieID)
}

// Refresh drops the cached result list so the next read hits the store.
func (s *Service) Refresh(ctx context.Context, email string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := s.cache.Delete(ctx, resultKey(email)); err != nil {
		logger.Error("Failed to invalidate result cache", err, "email", email)
	}

	return nil
}
