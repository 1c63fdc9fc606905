package recommendation

import (
	"math/rand"
	"sort"
	"sync"

	"cineMatch/domain"
)

// lockedRand guards a seedable rand.Rand so concurrent runs for different
// users can share one source. Tests inject a fixed seed to make the shuffle
// deterministic.
type lockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func newLockedRand(rng *rand.Rand) *lockedRand {
	return &lockedRand{rng: rng}
}

func (r *lockedRand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(n)
}

func (r *lockedRand) Shuffle(n int, swap func(i, j int)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rng.Shuffle(n, swap)
}

type categoryResult struct {
	Category string
	Movies   []domain.TmdbMovie
}

// aggregate turns the raw fan-out results into the final per-category
// selections. Categories are processed in fixed precedence order (movies,
// actors, directors, genres); a movie already claimed by an earlier category
// never reappears in a later one.
func (s *Service) aggregate(res fanoutResult, minRating float64) []categoryResult {
	used := make(map[int]struct{})

	return []categoryResult{
		{Category: domain.CategoryMovies, Movies: s.selectForCategory(res.Movies, minRating, used)},
		{Category: domain.CategoryActors, Movies: s.selectForCategory(res.Actors, minRating, used)},
		{Category: domain.CategoryDirectors, Movies: s.selectForCategory(res.Directors, minRating, used)},
		{Category: domain.CategoryGenres, Movies: s.selectForCategory(res.Genres, minRating, used)},
	}
}

// selectForCategory deduplicates, filters, ranks, shuffles and truncates one
// category's raw list, then claims the survivors in the shared used set.
func (s *Service) selectForCategory(raw []domain.TmdbMovie, minRating float64, used map[int]struct{}) []domain.TmdbMovie {
	seen := make(map[int]struct{}, len(raw))
	filtered := make([]domain.TmdbMovie, 0, len(raw))

	for _, m := range raw {
		if _, ok := seen[m.ID]; ok {
			continue
		}
		seen[m.ID] = struct{}{}

		if _, ok := used[m.ID]; ok {
			continue
		}
		if !s.passesFilter(m, minRating) {
			continue
		}

		filtered = append(filtered, m)
	}

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].VoteAverage > filtered[j].VoteAverage
	})

	s.rng.Shuffle(len(filtered), func(i, j int) {
		filtered[i], filtered[j] = filtered[j], filtered[i]
	})

	if len(filtered) > s.cfg.CategoryLimit {
		filtered = filtered[:s.cfg.CategoryLimit]
	}

	for _, m := range filtered {
		used[m.ID] = struct{}{}
	}

	return filtered
}

func (s *Service) passesFilter(m domain.TmdbMovie, minRating float64) bool {
	if m.VoteAverage < minRating {
		return false
	}
	if m.VoteCount < s.cfg.MinVoteCount {
		return false
	}
	if m.Popularity < s.cfg.MinPopularity {
		return false
	}
	if s.cfg.ExcludeCountry != "" && m.HasOriginCountry(s.cfg.ExcludeCountry) {
		return false
	}

	return true
}
