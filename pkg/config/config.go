package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App            AppConfig
	Server         ServerConfig
	Database       DatabaseConfig
	Redis          RedisConfig
	Nats           NatsConfig
	Tmdb           TmdbConfig
	Recommendation RecommendationConfig
}

type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
}

type NatsConfig struct {
	URL              string
	PreferencesTopic string
	QueueGroup       string
	DurableName      string
}

type TmdbConfig struct {
	BaseURL      string
	ImageBaseURL string
	APIKey       string
	Timeout      time.Duration
}

// RecommendationConfig holds the aggregation thresholds. These were
// hard-coded constants in earlier iterations of the service; they are
// tunable now.
type RecommendationConfig struct {
	MinVoteCount   int
	MinPopularity  float64
	ExcludeCountry string
	CategoryLimit  int
	SimilarPages   int
	DiscoverPages  int
	FanoutWorkers  int
	FanoutTimeout  time.Duration
	SubQueryTTL    time.Duration
	ResultTTL      time.Duration
	ReferenceTTL   time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "cineMatch"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
		},
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "cinematch"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		Redis: RedisConfig{
			RedisHost:     getEnv("REDIS_HOST", "localhost"),
			RedisPort:     getEnv("REDIS_PORT", "6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getEnvInt("REDIS_DB", 0),
		},
		Nats: NatsConfig{
			URL:              getEnv("NATS_URL", "nats://localhost:4222"),
			PreferencesTopic: getEnv("NATS_PREFERENCES_TOPIC", "user.preferences"),
			QueueGroup:       getEnv("NATS_QUEUE_GROUP", "recommendation-group"),
			DurableName:      getEnv("NATS_DURABLE_NAME", "recommendation"),
		},
		Tmdb: TmdbConfig{
			BaseURL:      getEnv("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
			ImageBaseURL: getEnv("TMDB_IMAGE_BASE_URL", "https://image.tmdb.org/t/p/w500"),
			APIKey:       getEnv("TMDB_API_KEY", ""),
			Timeout:      getEnvDuration("TMDB_TIMEOUT", 15*time.Second),
		},
		Recommendation: RecommendationConfig{
			MinVoteCount:   getEnvInt("RECO_MIN_VOTE_COUNT", 100),
			MinPopularity:  getEnvFloat("RECO_MIN_POPULARITY", 10.0),
			ExcludeCountry: getEnv("RECO_EXCLUDE_COUNTRY", "IN"),
			CategoryLimit:  getEnvInt("RECO_CATEGORY_LIMIT", 20),
			SimilarPages:   getEnvInt("RECO_SIMILAR_PAGES", 3),
			DiscoverPages:  getEnvInt("RECO_DISCOVER_PAGES", 2),
			FanoutWorkers:  getEnvInt("RECO_FANOUT_WORKERS", 4),
			FanoutTimeout:  getEnvDuration("RECO_FANOUT_TIMEOUT", 15*time.Second),
			SubQueryTTL:    getEnvDuration("RECO_SUBQUERY_TTL", time.Hour),
			ResultTTL:      getEnvDuration("RECO_RESULT_TTL", time.Hour),
			ReferenceTTL:   getEnvDuration("RECO_REFERENCE_TTL", 24*time.Hour),
		},
	}

	if cfg.Tmdb.APIKey == "" {
		return nil, errors.New("missing tmdb api key")
	}

	if cfg.Database.Password == "" {
		return nil, errors.New("missing database password")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}

	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}

	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}

	return defaultVal
}
