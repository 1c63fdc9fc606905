package recommendation

import (
	"context"
	"fmt"

	"cineMatch/domain"
	"cineMatch/internal/repository/tmdb"
	"cineMatch/pkg/logger"
	"cineMatch/pkg/metrics"

	"golang.org/x/sync/errgroup"
)

type fanoutResult struct {
	Movies    []domain.TmdbMovie
	Actors    []domain.TmdbMovie
	Directors []domain.TmdbMovie
	Genres    []domain.TmdbMovie
}

// fanout runs the four catalog queries concurrently and joins them before
// aggregation starts. A failed or timed-out category is logged, counted and
// degraded to an empty list; it never fails the run.
func (s *Service) fanout(ctx context.Context, event domain.PreferencesEvent) fanoutResult {
	var res fanoutResult

	sem := make(chan struct{}, s.cfg.FanoutWorkers)
	eg, egCtx := errgroup.WithContext(ctx)

	run := func(category string, dst *[]domain.TmdbMovie, query func(context.Context) ([]domain.TmdbMovie, error)) {
		eg.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()

			queryCtx, cancel := context.WithTimeout(egCtx, s.cfg.FanoutTimeout)
			defer cancel()

			movies, err := query(queryCtx)
			if err != nil {
				logger.Error("Catalog fan-out failed, category degraded to empty", err,
					"category", category, "email", event.Email)
				metrics.FanoutFailures.WithLabelValues(category).Inc()
				return nil
			}

			*dst = movies
			return nil
		})
	}

	run(domain.CategoryMovies, &res.Movies, func(ctx context.Context) ([]domain.TmdbMovie, error) {
		return s.similarToFavorites(ctx, event.FavoriteMovies)
	})
	run(domain.CategoryActors, &res.Actors, func(ctx context.Context) ([]domain.TmdbMovie, error) {
		return s.creditsForPeople(ctx, event.FavoriteActors, tmdb.RoleCast)
	})
	run(domain.CategoryDirectors, &res.Directors, func(ctx context.Context) ([]domain.TmdbMovie, error) {
		return s.creditsForPeople(ctx, event.FavoriteDirectors, tmdb.RoleDirector)
	})
	run(domain.CategoryGenres, &res.Genres, func(ctx context.Context) ([]domain.TmdbMovie, error) {
		return s.discoverByGenres(ctx, event.FavoriteGenres, event.MinRating)
	})

	// run closures only return nil
	_ = eg.Wait()

	return res
}

// similarToFavorites merges the similar-movies pages of every favorite movie,
// deduplicated by id across favorites and pages.
func (s *Service) similarToFavorites(ctx context.Context, favoriteMovies []string) ([]domain.TmdbMovie, error) {
	seen := make(map[int]struct{})
	var merged []domain.TmdbMovie

	for _, movieID := range favoriteMovies {
		for page := 1; page <= s.cfg.SimilarPages; page++ {
			movies, err := s.cachedMovieList(ctx, similarKey(movieID, page), func(ctx context.Context) ([]domain.TmdbMovie, error) {
				return s.catalog.SimilarMovies(ctx, movieID, page)
			})
			if err != nil {
				return nil, fmt.Errorf("similar movies %s page %d: %w", movieID, page, err)
			}

			for _, m := range movies {
				if _, ok := seen[m.ID]; ok {
					continue
				}
				seen[m.ID] = struct{}{}
				merged = append(merged, m)
			}
		}
	}

	return merged, nil
}

// creditsForPeople merges the filmographies of the given people in one role,
// client-filtered by the excluded origin country.
func (s *Service) creditsForPeople(ctx context.Context, people []string, role string) ([]domain.TmdbMovie, error) {
	var merged []domain.TmdbMovie

	for _, personID := range people {
		movies, err := s.cachedMovieList(ctx, creditsKey(personID, role), func(ctx context.Context) ([]domain.TmdbMovie, error) {
			return s.catalog.PersonMovieCredits(ctx, personID, role)
		})
		if err != nil {
			return nil, fmt.Errorf("credits for person %s: %w", personID, err)
		}

		for _, m := range movies {
			if s.cfg.ExcludeCountry != "" && m.HasOriginCountry(s.cfg.ExcludeCountry) {
				continue
			}
			merged = append(merged, m)
		}
	}

	return merged, nil
}

// discoverByGenres runs one paged discover query over the union of the
// favorite genres. The sort order is drawn at random per run so repeated
// rebuilds surface different movies.
func (s *Service) discoverByGenres(ctx context.Context, genreIDs []string, minRating float64) ([]domain.TmdbMovie, error) {
	if len(genreIDs) == 0 {
		return nil, nil
	}

	sortBy := tmdb.DiscoverSortOrders[s.rng.Intn(len(tmdb.DiscoverSortOrders))]

	seen := make(map[int]struct{})
	var merged []domain.TmdbMovie

	for page := 1; page <= s.cfg.DiscoverPages; page++ {
		movies, err := s.cachedMovieList(ctx, discoverKey(genreIDs, minRating, sortBy, page), func(ctx context.Context) ([]domain.TmdbMovie, error) {
			return s.catalog.DiscoverMovies(ctx, genreIDs, minRating, s.cfg.MinVoteCount, sortBy, page)
		})
		if err != nil {
			return nil, fmt.Errorf("discover page %d: %w", page, err)
		}

		for _, m := range movies {
			if _, ok := seen[m.ID]; ok {
				continue
			}
			seen[m.ID] = struct{}{}
			merged = append(merged, m)
		}
	}

	return merged, nil
}
