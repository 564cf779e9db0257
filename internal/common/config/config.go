// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig          `mapstructure:"app"`
	Database      DatabaseConfig     `mapstructure:"database"`
	Queue         QueueConfig        `mapstructure:"queue"`
	Scoring       ScoringConfig      `mapstructure:"scoring"`
	Monitor       MonitorConfig      `mapstructure:"monitor"`
	Similarity    SimilarityConfig   `mapstructure:"similarity"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Metrics       MetricsConfig      `mapstructure:"metrics"`
	Logging       LoggingConfig      `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// QueueConfig tunes the scoring work queue.
type QueueConfig struct {
	Enabled      bool `mapstructure:"enabled"`
	BatchSize    int  `mapstructure:"batch_size"`
	PollInterval int  `mapstructure:"poll_interval"` // milliseconds
	MaxAttempts  int  `mapstructure:"max_attempts"`
	JobDelay     int  `mapstructure:"job_delay"`   // milliseconds between jobs in a batch
	JobTimeout   int  `mapstructure:"job_timeout"` // milliseconds per job
}

// ScoringConfig points at the versioned ruleset and scoring knobs.
type ScoringConfig struct {
	RulesetPath string `mapstructure:"ruleset_path"` // optional JSON override of built-in defaults
	CacheTTL    int    `mapstructure:"cache_ttl"`    // minutes, counterparty profile cache
	MaxMatches  int    `mapstructure:"max_matches"`  // counterparties considered per candidate
	MinScore    int    `mapstructure:"min_score"`    // persistence floor
}

// MonitorConfig tunes the statistical quality monitor.
type MonitorConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	Interval   int  `mapstructure:"interval"`    // milliseconds between scans
	WindowDays int  `mapstructure:"window_days"` // analysis lookback
}

// SimilarityConfig configures the external embedding similarity service.
// When Endpoint is empty the local cosine provider is used.
type SimilarityConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Timeout  int    `mapstructure:"timeout"` // milliseconds
}

// NotificationConfig holds settings for high-confidence match event publishing.
type NotificationConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Region   string `mapstructure:"region"`
	TopicARN string `mapstructure:"topic_arn"`
	MinScore int    `mapstructure:"min_score"`
}

type MetricsConfig struct {
	Port int `mapstructure:"port"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
