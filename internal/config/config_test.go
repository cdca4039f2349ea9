package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashishbaghudana/relna/internal/config"
)

// validConfig returns a Config that passes Validate with all required
// fields set.
func validConfig() *config.Config {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.GNormPlus.BaseURL = "http://localhost:8100"
	cfg.Tagger.TermListPath = "testdata/goterms.txt"
	return cfg
}

func TestConfig_Validate_ValidConfig(t *testing.T) {
	t.Parallel()
	assert.NoError(t, validConfig().Validate())
}

func TestConfig_Validate_MissingRecognizerURL(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.GNormPlus.BaseURL = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gnormplus.base_url")
}

func TestConfig_Validate_MissingTermList(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Tagger.TermListPath = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tagger.term_list_path")
}

func TestConfig_Validate_NormalizationRequiresBothServices(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Tagger.UseNormalization = true
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "uniprot.base_url")

	cfg.Uniprot.BaseURL = "http://localhost:8101"
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "goterms.base_url")

	cfg.GOTerms.BaseURL = "http://localhost:8102"
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate_ConfidenceRange(t *testing.T) {
	t.Parallel()
	for _, bad := range []float64{-0.1, 1.5} {
		bad := bad
		cfg := validConfig()
		cfg.Tagger.Confidence = &bad
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "tagger.confidence")
	}
}

func TestConfig_Validate_ZeroConfidenceIsValid(t *testing.T) {
	t.Parallel()
	zero := 0.0
	cfg := validConfig()
	cfg.Tagger.Confidence = &zero
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate_InvalidServerMode(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Server.Mode = "production"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.mode")
}

func TestConfig_Validate_InvalidLogLevel(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Log.Level = "verbose"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.level")
}

func TestConfig_Validate_CacheNeedsRedisAddr(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Cache.Enabled = true
	cfg.Redis.Addr = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis.addr")
}

func TestConfig_Validate_DatabaseRequiredFields(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Database.Enabled = true
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.user")

	cfg.Database.User = "relna"
	assert.NoError(t, cfg.Validate())
}

func TestApplyDefaults_FillsZeroValues(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)

	assert.Equal(t, config.DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, config.DefaultLogLevel, cfg.Log.Level)
	require.NotNil(t, cfg.Tagger.Confidence)
	assert.Equal(t, config.DefaultConfidence, *cfg.Tagger.Confidence)
	assert.Equal(t, config.DefaultFullTextMarker, cfg.Tagger.FullTextMarker)
	assert.Equal(t, config.DefaultRedisKeyPrefix, cfg.Redis.KeyPrefix)
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	t.Parallel()
	confidence := 0.9
	cfg := &config.Config{}
	cfg.Tagger.Confidence = &confidence
	cfg.Log.Level = "debug"
	config.ApplyDefaults(cfg)

	require.NotNil(t, cfg.Tagger.Confidence)
	assert.Equal(t, 0.9, *cfg.Tagger.Confidence)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestApplyDefaults_ExplicitZeroConfidenceSurvives(t *testing.T) {
	t.Parallel()
	zero := 0.0
	cfg := &config.Config{}
	cfg.Tagger.Confidence = &zero
	config.ApplyDefaults(cfg)

	require.NotNil(t, cfg.Tagger.Confidence)
	assert.Equal(t, 0.0, *cfg.Tagger.Confidence)
}

func TestApplyDefaults_NilConfigIsNoop(t *testing.T) {
	t.Parallel()
	assert.NotPanics(t, func() { config.ApplyDefaults(nil) })
}
