package recommendation

import (
	"math/rand"
	"testing"

	"cineMatch/domain"
)

func newTestService(cfg Config, seed int64) *Service {
	return NewService(nil, nil, nil, nil, cfg, rand.New(rand.NewSource(seed)))
}

func goodMovie(id int) domain.TmdbMovie {
	return domain.TmdbMovie{
		ID:          id,
		Title:       "movie",
		VoteAverage: 8.0,
		VoteCount:   500,
		Popularity:  50,
	}
}

func TestAggregateCategoriesAreDisjoint(t *testing.T) {
	s := newTestService(Config{}, 1)

	shared := make([]domain.TmdbMovie, 0, 30)
	for i := 1; i <= 30; i++ {
		shared = append(shared, goodMovie(i))
	}

	// every category returns the same raw movies
	results := s.aggregate(fanoutResult{
		Movies:    shared,
		Actors:    shared,
		Directors: shared,
		Genres:    shared,
	}, 7.0)

	seen := make(map[int]string)
	for _, cr := range results {
		for _, m := range cr.Movies {
			if prev, ok := seen[m.ID]; ok {
				t.Fatalf("movie %d appears in both %s and %s", m.ID, prev, cr.Category)
			}
			seen[m.ID] = cr.Category
		}
	}
}

func TestAggregatePrecedenceOrder(t *testing.T) {
	// A contested movie belongs to the earliest category that selects it:
	// movies > actors > directors > genres.
	s := newTestService(Config{}, 1)

	contested := goodMovie(603)

	results := s.aggregate(fanoutResult{
		Movies: []domain.TmdbMovie{contested},
		Genres: []domain.TmdbMovie{contested, goodMovie(604)},
	}, 7.0)

	if len(results[0].Movies) != 1 || results[0].Movies[0].ID != 603 {
		t.Fatalf("expected movie 603 in the movies category, got %+v", results[0].Movies)
	}

	genresResult := results[3]
	if genresResult.Category != domain.CategoryGenres {
		t.Fatalf("expected genres category last, got %s", genresResult.Category)
	}
	for _, m := range genresResult.Movies {
		if m.ID == 603 {
			t.Fatal("movie 603 must not reappear in the genres category")
		}
	}
	if len(genresResult.Movies) != 1 || genresResult.Movies[0].ID != 604 {
		t.Fatalf("expected only movie 604 in genres, got %+v", genresResult.Movies)
	}
}

func TestSelectForCategoryFilters(t *testing.T) {
	s := newTestService(Config{ExcludeCountry: "IN"}, 1)
	used := map[int]struct{}{7: {}}

	lowRating := goodMovie(1)
	lowRating.VoteAverage = 6.0

	fewVotes := goodMovie(2)
	fewVotes.VoteCount = 99

	unpopular := goodMovie(3)
	unpopular.Popularity = 9.9

	excluded := goodMovie(4)
	excluded.OriginCountries = []string{"US", "IN"}

	alreadyUsed := goodMovie(7)

	keeper := goodMovie(5)

	selected := s.selectForCategory(
		[]domain.TmdbMovie{lowRating, fewVotes, unpopular, excluded, alreadyUsed, keeper},
		7.0, used,
	)

	if len(selected) != 1 || selected[0].ID != 5 {
		t.Fatalf("expected only movie 5 to survive, got %+v", selected)
	}
	if _, ok := used[5]; !ok {
		t.Fatal("selected movie must be claimed in the used set")
	}
}

func TestSelectForCategoryDeduplicatesAndTruncates(t *testing.T) {
	s := newTestService(Config{CategoryLimit: 5}, 1)

	var raw []domain.TmdbMovie
	for i := 1; i <= 40; i++ {
		raw = append(raw, goodMovie(i))
		raw = append(raw, goodMovie(i)) // duplicate every id
	}

	selected := s.selectForCategory(raw, 7.0, map[int]struct{}{})

	if len(selected) != 5 {
		t.Fatalf("expected 5 movies after truncation, got %d", len(selected))
	}

	ids := make(map[int]struct{})
	for _, m := range selected {
		if _, ok := ids[m.ID]; ok {
			t.Fatalf("duplicate movie %d in category result", m.ID)
		}
		ids[m.ID] = struct{}{}
	}
}

func TestSelectForCategoryEmptyResultIsValid(t *testing.T) {
	s := newTestService(Config{}, 1)

	selected := s.selectForCategory(nil, 7.0, map[int]struct{}{})
	if len(selected) != 0 {
		t.Fatalf("expected empty selection, got %d", len(selected))
	}
}

func TestAggregateDeterministicWithFixedSeed(t *testing.T) {
	var raw []domain.TmdbMovie
	for i := 1; i <= 100; i++ {
		m := goodMovie(i)
		m.VoteAverage = 7.0 + float64(i%30)/10.0
		raw = append(raw, m)
	}

	run := func() []categoryResult {
		s := newTestService(Config{}, 42)
		return s.aggregate(fanoutResult{Movies: raw, Genres: raw}, 7.0)
	}

	first := run()
	second := run()

	for c := range first {
		if len(first[c].Movies) != len(second[c].Movies) {
			t.Fatalf("category %s differs in size between runs", first[c].Category)
		}
		for i := range first[c].Movies {
			if first[c].Movies[i].ID != second[c].Movies[i].ID {
				t.Fatalf("category %s differs at position %d", first[c].Category, i)
			}
		}
	}
}
