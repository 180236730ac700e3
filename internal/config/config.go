package config

import (
	"time"

	"github.com/rozpoctar/boq-classifier/internal/logger"
)

// Default configuration values.
const (
	defaultServiceName     = "boq-classifier"
	defaultServiceVersion  = "1.0.0"
	defaultServicePort     = 8070
	defaultConcurrency     = 10
	defaultBatchSize       = 500
	defaultRatePerSecond   = 50
	defaultShutdownSec     = 10
	defaultDBDriver        = "postgres"
	defaultDBHost          = "localhost"
	defaultDBPort          = 5432
	defaultDBUser          = "postgres"
	defaultDBName          = "boq"
	defaultDBSSLMode       = "disable"
	defaultDBMaxConns      = 25
	defaultDBMaxIdleConns  = 5
	defaultDBConnLifeMin   = 30
	defaultMinConfidence   = 50
	defaultSuggestCutoff   = 50
)

// Config holds all configuration for the BOQ classifier service.
type Config struct {
	Service        ServiceConfig        `yaml:"service"`
	Database       DatabaseConfig       `yaml:"database"`
	Logging        logger.Config        `yaml:"logging"`
	Classification ClassificationConfig `yaml:"classification"`
	Auth           AuthConfig           `yaml:"auth"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name            string        `yaml:"name"`
	Version         string        `yaml:"version"`
	Port            int           `env:"CLASSIFIER_PORT"        yaml:"port"`
	Debug           bool          `env:"APP_DEBUG"              yaml:"debug"`
	Concurrency     int           `env:"CLASSIFIER_CONCURRENCY" yaml:"concurrency"`
	BatchSize       int           `yaml:"batch_size"`
	RatePerSecond   int           `yaml:"rate_per_second"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig holds the rule store configuration. Driver selects between
// "postgres" and "sqlite3"; sqlite uses Path and ignores the network fields.
type DatabaseConfig struct {
	Enabled         bool          `env:"DB_ENABLED"        yaml:"enabled"`
	Driver          string        `env:"DB_DRIVER"         yaml:"driver"`
	Host            string        `env:"POSTGRES_HOST"     yaml:"host"`
	Port            int           `env:"POSTGRES_PORT"     yaml:"port"`
	User            string        `env:"POSTGRES_USER"     yaml:"user"`
	Password        string        `env:"POSTGRES_PASSWORD" yaml:"password"`
	Database        string        `env:"POSTGRES_DB"       yaml:"database"`
	SSLMode         string        `env:"POSTGRES_SSLMODE"  yaml:"sslmode"`
	Path            string        `env:"SQLITE_PATH"       yaml:"path"`
	MaxConnections  int           `yaml:"max_connections"`
	MaxIdleConns    int           `yaml:"max_idle_connections"`
	ConnMaxLifetime time.Duration `yaml:"connection_max_lifetime"`
}

// ClassificationConfig holds classification thresholds.
type ClassificationConfig struct {
	// MinConfidence is the lowest suggestion confidence the bulk Apply
	// operation commits (0-100).
	MinConfidence int `yaml:"min_confidence"`
	// SuggestThreshold filters the candidates returned for human review.
	SuggestThreshold int `yaml:"suggest_threshold"`
	// Overwrite replaces already assigned groups during bulk runs.
	Overwrite bool `yaml:"overwrite"`
}

// AuthConfig holds authentication configuration. An empty secret leaves the
// API unprotected, for local development only.
type AuthConfig struct {
	JWTSecret string `env:"AUTH_JWT_SECRET" yaml:"jwt_secret"`
}

// Load loads configuration from the specified path.
func Load(path string) (*Config, error) {
	return loadWithDefaults[Config](path, setDefaults)
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setDatabaseDefaults(&cfg.Database)
	cfg.Logging.SetDefaults()
	setClassificationDefaults(&cfg.Classification)
	// Auth has no defaults: an unset secret means an unprotected API.
}

func setServiceDefaults(s *ServiceConfig) {
	if s.Name == "" {
		s.Name = defaultServiceName
	}
	if s.Version == "" {
		s.Version = defaultServiceVersion
	}
	if s.Port == 0 {
		s.Port = defaultServicePort
	}
	if s.Concurrency == 0 {
		s.Concurrency = defaultConcurrency
	}
	if s.BatchSize == 0 {
		s.BatchSize = defaultBatchSize
	}
	if s.RatePerSecond == 0 {
		s.RatePerSecond = defaultRatePerSecond
	}
	if s.ShutdownTimeout == 0 {
		s.ShutdownTimeout = defaultShutdownSec * time.Second
	}
}

func setDatabaseDefaults(d *DatabaseConfig) {
	if d.Driver == "" {
		d.Driver = defaultDBDriver
	}
	if d.Host == "" {
		d.Host = defaultDBHost
	}
	if d.Port == 0 {
		d.Port = defaultDBPort
	}
	if d.User == "" {
		d.User = defaultDBUser
	}
	if d.Database == "" {
		d.Database = defaultDBName
	}
	if d.SSLMode == "" {
		d.SSLMode = defaultDBSSLMode
	}
	if d.MaxConnections == 0 {
		d.MaxConnections = defaultDBMaxConns
	}
	if d.MaxIdleConns == 0 {
		d.MaxIdleConns = defaultDBMaxIdleConns
	}
	if d.ConnMaxLifetime == 0 {
		d.ConnMaxLifetime = defaultDBConnLifeMin * time.Minute
	}
}

func setClassificationDefaults(c *ClassificationConfig) {
	if c.MinConfidence == 0 {
		c.MinConfidence = defaultMinConfidence
	}
	if c.SuggestThreshold == 0 {
		c.SuggestThreshold = defaultSuggestCutoff
	}
}
