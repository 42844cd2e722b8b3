// internal/common/config/config.go
package config

// Config is the main application configuration struct.
type Config struct {
	App        AppConfig               `mapstructure:"app"`
	TMDB       TMDBConfig              `mapstructure:"tmdb"`
	Session    SessionConfig           `mapstructure:"session"`
	Breaker    BreakerConfig           `mapstructure:"breaker"`
	Cache      CacheConfig             `mapstructure:"cache"`
	Database   DatabaseConfig          `mapstructure:"database"`
	Camunda    CamundaConfig           `mapstructure:"camunda"`
	Workers    map[string]WorkerConfig `mapstructure:"workers"`
	Extraction ExtractionConfig        `mapstructure:"extraction"`
	Logging    LoggingConfig           `mapstructure:"logging"`
	Metrics    MetricsConfig           `mapstructure:"metrics"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// TMDBConfig points the catalog gateway at The Movie Database v3 API.
type TMDBConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
	SortBy  string `mapstructure:"sort_by"` // empty keeps the catalog's default ranking
}

// SessionConfig controls input throttling and pipeline retries in chat mode.
type SessionConfig struct {
	MinInterval  int `mapstructure:"min_interval"` // milliseconds
	MaxAttempts  int `mapstructure:"max_attempts"`
	RetryBackoff int `mapstructure:"retry_backoff"` // milliseconds, doubled per attempt
}

type BreakerConfig struct {
	ConsecutiveFailures int `mapstructure:"consecutive_failures"`
	OpenTimeout         int `mapstructure:"open_timeout"` // milliseconds
}

type CacheConfig struct {
	Enabled bool `mapstructure:"enabled"`
	TTL     int  `mapstructure:"ttl"` // milliseconds
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// ExtractionConfig lets deployments tune the genre heuristics without a rebuild.
// Empty lists fall back to the built-in vocabulary.
type ExtractionConfig struct {
	Genre GenreVocabulary `mapstructure:"genre"`
}

type GenreVocabulary struct {
	Phrases   []string `mapstructure:"phrases"`
	Articles  []string `mapstructure:"articles"`
	Triggers  []string `mapstructure:"triggers"`
	DenyWords []string `mapstructure:"deny_words"`
	Nouns     []string `mapstructure:"nouns"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// MetricsConfig holds the prometheus listener address; empty disables it.
type MetricsConfig struct {
	Address string `mapstructure:"address"`
}
