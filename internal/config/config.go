// Package config defines all configuration structures for the relna
// tagging pipeline. No I/O or parsing logic lives here, only plain data
// types and validation.
package config

import (
	"fmt"
	"time"
)

// ServerConfig holds HTTP server tunables for serve mode.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format string `mapstructure:"format"` // "json" | "console"
	Output string `mapstructure:"output"`
}

// ServiceConfig holds connection parameters for one external
// cross-reference service.
type ServiceConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	RetryMax     int           `mapstructure:"retry_max"`
	RetryWaitMin time.Duration `mapstructure:"retry_wait_min"`
	RetryWaitMax time.Duration `mapstructure:"retry_wait_max"`
}

// RedisConfig holds Redis connection parameters for the lookup cache.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Username     string        `mapstructure:"username"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
}

// CacheConfig toggles the read-through cache in front of the recognizer,
// normalizer, and ontology adapters.
type CacheConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	RecognitionTTL   time.Duration `mapstructure:"recognition_ttl"`
	NormalizationTTL time.Duration `mapstructure:"normalization_ttl"`
	OntologyTTL      time.Duration `mapstructure:"ontology_ttl"`
}

// DatabaseConfig holds PostgreSQL connection parameters for annotation
// persistence.
type DatabaseConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int           `mapstructure:"max_conns"`
	MinConns        int           `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// TaggerConfig holds the pipeline knobs.
type TaggerConfig struct {
	// TermListPath points to the newline-delimited ontology term file
	// that drives the transcription-factor override.
	TermListPath string `mapstructure:"term_list_path"`

	// Confidence is assigned to every produced entity; the recognizer
	// supplies no score of its own. A pointer so an explicit 0 survives
	// defaulting; nil means unset.
	Confidence *float64 `mapstructure:"confidence"`

	// FullTextMarker selects text-based retrieval when present in the
	// document text; otherwise retrieval goes by document id.
	FullTextMarker string `mapstructure:"full_text_marker"`

	// UseNormalization enables the protein-id and ontology lookups.
	UseNormalization bool `mapstructure:"use_normalization"`

	// WriteGold routes produced entities into the gold annotation
	// collection instead of the predicted one.
	WriteGold bool `mapstructure:"write_gold"`
}

// Config is the root configuration for the pipeline, the CLI, and serve
// mode.
type Config struct {
	Server    ServerConfig   `mapstructure:"server"`
	Log       LogConfig      `mapstructure:"log"`
	GNormPlus ServiceConfig  `mapstructure:"gnormplus"`
	Uniprot   ServiceConfig  `mapstructure:"uniprot"`
	GOTerms   ServiceConfig  `mapstructure:"goterms"`
	Redis     RedisConfig    `mapstructure:"redis"`
	Cache     CacheConfig    `mapstructure:"cache"`
	Database  DatabaseConfig `mapstructure:"database"`
	Tagger    TaggerConfig   `mapstructure:"tagger"`
}

// Validate performs semantic validation of the fully-populated Config.
// Any error is fatal; callers should refuse to start.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	if c.GNormPlus.BaseURL == "" {
		return fmt.Errorf("config: gnormplus.base_url is required")
	}
	if c.Tagger.UseNormalization {
		if c.Uniprot.BaseURL == "" {
			return fmt.Errorf("config: uniprot.base_url is required when tagger.use_normalization is set")
		}
		if c.GOTerms.BaseURL == "" {
			return fmt.Errorf("config: goterms.base_url is required when tagger.use_normalization is set")
		}
	}

	if c.Tagger.TermListPath == "" {
		return fmt.Errorf("config: tagger.term_list_path is required")
	}
	if c.Tagger.Confidence != nil && (*c.Tagger.Confidence < 0 || *c.Tagger.Confidence > 1) {
		return fmt.Errorf("config: tagger.confidence %v is out of range [0, 1]", *c.Tagger.Confidence)
	}

	if c.Cache.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required when cache.enabled is set")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("config: redis.db must not be negative, got %d", c.Redis.DB)
	}

	if c.Database.Enabled {
		if c.Database.Host == "" {
			return fmt.Errorf("config: database.host is required when database.enabled is set")
		}
		if c.Database.Port < 1 || c.Database.Port > 65535 {
			return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
		}
		if c.Database.User == "" {
			return fmt.Errorf("config: database.user is required when database.enabled is set")
		}
		if c.Database.DBName == "" {
			return fmt.Errorf("config: database.db_name is required when database.enabled is set")
		}
	}

	return nil
}
