package config

import "time"

const (
	DefaultServerPort = 8080
	DefaultServerMode = "release"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultServiceTimeout  = 30 * time.Second
	DefaultServiceRetryMax = 3

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisKeyPrefix = "relna:"
	DefaultRedisTTL       = 24 * time.Hour

	DefaultDBHost    = "localhost"
	DefaultDBPort    = 5432
	DefaultDBName    = "relna"
	DefaultDBSSLMode = "disable"
	DefaultDBMaxConns = 10

	DefaultConfidence     = 0.5
	DefaultFullTextMarker = "Conclusion"
)

// ApplyDefaults fills every zero-value field in cfg with its default.
// Fields already set by the caller are left unchanged so explicit
// configuration always wins. Call after unmarshalling and before
// Validate.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 5 * time.Minute
	}
	if cfg.Server.MaxBodySize == 0 {
		cfg.Server.MaxBodySize = 32 << 20
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	applyServiceDefaults(&cfg.GNormPlus)
	applyServiceDefaults(&cfg.Uniprot)
	applyServiceDefaults(&cfg.GOTerms)

	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = DefaultRedisTTL
	}
	if cfg.Cache.RecognitionTTL == 0 {
		cfg.Cache.RecognitionTTL = DefaultRedisTTL
	}
	if cfg.Cache.NormalizationTTL == 0 {
		cfg.Cache.NormalizationTTL = DefaultRedisTTL
	}
	if cfg.Cache.OntologyTTL == 0 {
		cfg.Cache.OntologyTTL = DefaultRedisTTL
	}

	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = DefaultDBSSLMode
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = DefaultDBMaxConns
	}

	if cfg.Tagger.Confidence == nil {
		confidence := DefaultConfidence
		cfg.Tagger.Confidence = &confidence
	}
	if cfg.Tagger.FullTextMarker == "" {
		cfg.Tagger.FullTextMarker = DefaultFullTextMarker
	}
}

func applyServiceDefaults(svc *ServiceConfig) {
	if svc.Timeout == 0 {
		svc.Timeout = DefaultServiceTimeout
	}
	if svc.RetryMax == 0 {
		svc.RetryMax = DefaultServiceRetryMax
	}
	if svc.RetryWaitMin == 0 {
		svc.RetryWaitMin = 500 * time.Millisecond
	}
	if svc.RetryWaitMax == 0 {
		svc.RetryWaitMax = 5 * time.Second
	}
}
