package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix for all settings.
const envPrefix = "RELNA"

// configKeys lists every known configuration key. Each is bound to its
// environment variable so that env-only values survive Unmarshal even
// when no config file mentions them.
var configKeys = []string{
	"server.port", "server.mode", "server.read_timeout", "server.write_timeout",
	"server.max_body_size", "server.shutdown_timeout",
	"log.level", "log.format", "log.output",
	"gnormplus.base_url", "gnormplus.timeout", "gnormplus.retry_max",
	"gnormplus.retry_wait_min", "gnormplus.retry_wait_max",
	"uniprot.base_url", "uniprot.timeout", "uniprot.retry_max",
	"uniprot.retry_wait_min", "uniprot.retry_wait_max",
	"goterms.base_url", "goterms.timeout", "goterms.retry_max",
	"goterms.retry_wait_min", "goterms.retry_wait_max",
	"redis.addr", "redis.username", "redis.password", "redis.db",
	"redis.pool_size", "redis.min_idle_conns", "redis.dial_timeout",
	"redis.read_timeout", "redis.write_timeout", "redis.key_prefix",
	"redis.default_ttl",
	"cache.enabled", "cache.recognition_ttl", "cache.normalization_ttl", "cache.ontology_ttl",
	"database.enabled", "database.host", "database.port", "database.user",
	"database.password", "database.db_name", "database.ssl_mode",
	"database.max_conns", "database.min_conns",
	"database.conn_max_lifetime", "database.conn_max_idle_time",
	"tagger.term_list_path", "tagger.confidence", "tagger.full_text_marker",
	"tagger.use_normalization", "tagger.write_gold",
}

// newViper builds a pre-configured viper instance: YAML file type, RELNA_
// env prefix, automatic env binding, and a key replacer mapping "." to "_"
// so nested keys like "gnormplus.base_url" resolve to
// "RELNA_GNORMPLUS_BASE_URL".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range configKeys {
		_ = v.BindEnv(key)
	}
	return v
}

// Load reads the YAML file at configPath, merges RELNA_* environment
// variable overrides, applies defaults for unset fields, and validates
// the result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from RELNA_* environment
// variables, with no config file required.
func LoadFromEnv() (*Config, error) {
	v := newViper()
	return unmarshalAndFinalize(v)
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// Watch monitors configPath and invokes onChange with the newly parsed
// Config whenever the file changes on disk. A change that fails to parse
// or validate is dropped without invoking onChange, so the application
// never observes a broken configuration. Watch is non-blocking; viper
// manages the background goroutine.
func Watch(configPath string, onChange func(*Config)) {
	v := newViper()
	v.SetConfigFile(configPath)

	// Initial read errors are ignored; callers should Load first.
	_ = v.ReadInConfig()

	v.WatchConfig()
	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			return
		}
		onChange(cfg)
	})
}

// MustLoad wraps Load and panics on error. Intended for main(), where a
// config-load failure is always fatal.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}
