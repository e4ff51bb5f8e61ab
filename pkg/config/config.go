// Package config loads and validates application configuration from YAML files
// with environment-variable overrides. It provides typed structs for every
// subsystem (Server, Postgres, Kafka, Redis, Normalizer, BM25, Indexer,
// Search, Corpus, etc.).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Postgres   PostgresConfig   `yaml:"postgres"`
	Kafka      KafkaConfig      `yaml:"kafka"`
	Redis      RedisConfig      `yaml:"redis"`
	Normalizer NormalizerConfig `yaml:"normalizer"`
	BM25       BM25Config       `yaml:"bm25"`
	Indexer    IndexerConfig    `yaml:"indexer"`
	Search     SearchConfig     `yaml:"search"`
	Corpus     CorpusConfig     `yaml:"corpus"`
	Logging    LoggingConfig    `yaml:"logging"`
	Tracing    TracingConfig    `yaml:"tracing"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Analytics  AnalyticsConfig  `yaml:"analytics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	// RateLimit is the number of requests each client may make per minute.
	// Zero disables limiting.
	RateLimit   int      `yaml:"rateLimit"`
	CORSOrigins []string `yaml:"corsOrigins"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// KafkaConfig holds Kafka broker and topic settings.
type KafkaConfig struct {
	Enabled       bool        `yaml:"enabled"`
	Brokers       []string    `yaml:"brokers"`
	ConsumerGroup string      `yaml:"consumerGroup"`
	Topics        KafkaTopics `yaml:"topics"`
}

// KafkaTopics maps logical topic names to their Kafka topic strings.
type KafkaTopics struct {
	IndexComplete   string `yaml:"indexComplete"`
	AnalyticsEvents string `yaml:"analyticsEvents"`
}

// RedisConfig holds Redis connection and caching parameters.
type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

// NormalizerConfig selects the language pipeline and the noise patterns
// stripped before tokenisation. The same values must be used at index time
// and at query time.
type NormalizerConfig struct {
	Language           string   `yaml:"language"`
	ExtraStopwords     []string `yaml:"extraStopwords"`
	BoilerplatePattern string   `yaml:"boilerplatePattern"`
	StripPatterns      []string `yaml:"stripPatterns"`
}

// BM25Config holds the ranking parameters.
type BM25Config struct {
	K1 float64 `yaml:"k1"`
	B  float64 `yaml:"b"`
}

// IndexerConfig controls where the persisted index lives and how the batch
// build is parallelised.
type IndexerConfig struct {
	DataDir      string `yaml:"dataDir"`
	Workers      int    `yaml:"workers"`
	ForceRebuild bool   `yaml:"forceRebuild"`
}

// SearchConfig controls query limits, deadlines and result presentation.
type SearchConfig struct {
	MaxResults     int           `yaml:"maxResults"`
	DefaultLimit   int           `yaml:"defaultLimit"`
	RequestTimeout time.Duration `yaml:"requestTimeout"`
	PreviewWords   int           `yaml:"previewWords"`
	PageSize       int           `yaml:"pageSize"`
}

// CorpusConfig selects the source of the raw document batch.
type CorpusConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
	Table  string `yaml:"table"`
}

// AnalyticsConfig controls search analytics buffering and persistence.
type AnalyticsConfig struct {
	BufferSize      int           `yaml:"bufferSize"`
	PersistInterval time.Duration `yaml:"persistInterval"`
	Retention       int           `yaml:"retention"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TracingConfig controls per-search span logging. Spans are emitted at
// debug level, so logging.level must be debug to see them.
type TracingConfig struct {
	Enabled bool `yaml:"enabled"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. It returns a Config populated with sensible defaults for any
// missing values.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the ranking and indexing code cannot work with.
func (c *Config) Validate() error {
	if c.BM25.K1 <= 0 {
		return fmt.Errorf("bm25.k1 must be > 0, got %v", c.BM25.K1)
	}
	if c.BM25.B < 0 || c.BM25.B > 1 {
		return fmt.Errorf("bm25.b must be in [0,1], got %v", c.BM25.B)
	}
	if c.Search.DefaultLimit < 1 {
		return fmt.Errorf("search.defaultLimit must be positive, got %d", c.Search.DefaultLimit)
	}
	if c.Search.MaxResults < c.Search.DefaultLimit {
		return fmt.Errorf("search.maxResults (%d) must be >= search.defaultLimit (%d)",
			c.Search.MaxResults, c.Search.DefaultLimit)
	}
	switch c.Corpus.Driver {
	case "json", "postgres", "sqlite":
	default:
		return fmt.Errorf("corpus.driver must be one of json, postgres, sqlite, got %q", c.Corpus.Driver)
	}
	return nil
}

// defaultConfig returns a Config with defaults suitable for local
// development against the Kompas news corpus.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			RateLimit:       600,
			CORSOrigins:     []string{"*"},
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "newsretrieval",
			User:            "newsretrieval",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers:       []string{"localhost:9092"},
			ConsumerGroup: "newsretrieval-group",
			Topics: KafkaTopics{
				IndexComplete:   "index.complete",
				AnalyticsEvents: "analytics-events",
			},
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
			PoolSize: 10,
			CacheTTL: 60 * time.Second,
		},
		Normalizer: NormalizerConfig{
			Language:           "indonesian",
			ExtraStopwords:     []string{"baca", "juga", "halaman", "kompas"},
			BoilerplatePattern: `baca juga.*`,
			StripPatterns:      []string{`\.com`},
		},
		BM25: BM25Config{
			K1: 0.9,
			B:  0.4,
		},
		Indexer: IndexerConfig{
			DataDir: "data/index",
			Workers: 4,
		},
		Search: SearchConfig{
			MaxResults:     100,
			DefaultLimit:   20,
			RequestTimeout: 5 * time.Second,
			PreviewWords:   40,
			PageSize:       10,
		},
		Corpus: CorpusConfig{
			Driver: "json",
			Path:   "data/kompas_nasional_articles.json",
			Table:  "articles",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
		Analytics: AnalyticsConfig{
			BufferSize:      10000,
			PersistInterval: time.Minute,
			Retention:       1440,
		},
	}
}

// applyEnvOverrides reads NR_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("NR_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("NR_SERVER_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.RateLimit = n
		}
	}
	if v := os.Getenv("NR_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("NR_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("NR_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("NR_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("NR_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("NR_POSTGRES_SSLMODE"); v != "" {
		cfg.Postgres.SSLMode = v
	}
	if v := os.Getenv("NR_KAFKA_ENABLED"); v != "" {
		cfg.Kafka.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("NR_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("NR_REDIS_ENABLED"); v != "" {
		cfg.Redis.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("NR_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("NR_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("NR_NORMALIZER_LANGUAGE"); v != "" {
		cfg.Normalizer.Language = v
	}
	if v := os.Getenv("NR_BM25_K1"); v != "" {
		if k1, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.BM25.K1 = k1
		}
	}
	if v := os.Getenv("NR_BM25_B"); v != "" {
		if b, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.BM25.B = b
		}
	}
	if v := os.Getenv("NR_INDEXER_DATA_DIR"); v != "" {
		cfg.Indexer.DataDir = v
	}
	if v := os.Getenv("NR_INDEXER_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Indexer.Workers = n
		}
	}
	if v := os.Getenv("NR_CORPUS_DRIVER"); v != "" {
		cfg.Corpus.Driver = v
	}
	if v := os.Getenv("NR_CORPUS_PATH"); v != "" {
		cfg.Corpus.Path = v
	}
	if v := os.Getenv("NR_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("NR_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
