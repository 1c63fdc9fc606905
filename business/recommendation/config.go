package recommendation

import "time"

// Config are the knobs of the aggregation engine. Zero values are replaced
// with the defaults below so a partially filled config stays usable in tests.
type Config struct {
	// Quality filter thresholds.
	MinVoteCount   int
	MinPopularity  float64
	ExcludeCountry string

	// Per-category size cap after filtering.
	CategoryLimit int

	// Pages fetched per similar-movies / discover query.
	SimilarPages  int
	DiscoverPages int

	// Fan-out bounds.
	FanoutWorkers int
	FanoutTimeout time.Duration

	// Cache TTLs.
	SubQueryTTL time.Duration
	ResultTTL   time.Duration
}

func (c Config) withDefaults() Config {
	if c.MinVoteCount <= 0 {
		c.MinVoteCount = 100
	}
	if c.MinPopularity <= 0 {
		c.MinPopularity = 10.0
	}
	if c.CategoryLimit <= 0 {
		c.CategoryLimit = 20
	}
	if c.SimilarPages <= 0 {
		c.SimilarPages = 3
	}
	if c.DiscoverPages <= 0 {
		c.DiscoverPages = 2
	}
	if c.FanoutWorkers <= 0 {
		c.FanoutWorkers = 4
	}
	if c.FanoutTimeout <= 0 {
		c.FanoutTimeout = 15 * time.Second
	}
	if c.SubQueryTTL <= 0 {
		c.SubQueryTTL = time.Hour
	}
	if c.ResultTTL <= 0 {
		c.ResultTTL = time.Hour
	}

	return c
}
