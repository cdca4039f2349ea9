package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfigYAML = `
log:
  level: "debug"
  format: "console"
gnormplus:
  base_url: "http://localhost:8100"
uniprot:
  base_url: "http://localhost:8101"
goterms:
  base_url: "http://localhost:8102"
tagger:
  term_list_path: "testdata/goterms.txt"
  use_normalization: true
cache:
  enabled: true
redis:
  addr: "localhost:6379"
`

func createTempConfigFile(t *testing.T, content string) string {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_ValidFile(t *testing.T) {
	cfg, err := Load(createTempConfigFile(t, validConfigYAML))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "http://localhost:8100", cfg.GNormPlus.BaseURL)
	assert.True(t, cfg.Tagger.UseNormalization)
	// Defaults fill the gaps.
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	require.NotNil(t, cfg.Tagger.Confidence)
	assert.Equal(t, DefaultConfidence, *cfg.Tagger.Confidence)
	assert.Equal(t, DefaultFullTextMarker, cfg.Tagger.FullTextMarker)
	assert.Equal(t, 30*time.Second, cfg.GNormPlus.Timeout)
}

func TestLoad_ExplicitZeroConfidenceSurvives(t *testing.T) {
	yaml := `
gnormplus:
  base_url: "http://localhost:8100"
tagger:
  term_list_path: "testdata/goterms.txt"
  confidence: 0
`
	cfg, err := Load(createTempConfigFile(t, yaml))
	require.NoError(t, err)

	require.NotNil(t, cfg.Tagger.Confidence)
	assert.Equal(t, 0.0, *cfg.Tagger.Confidence)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(createTempConfigFile(t, "log: [unclosed"))
	require.Error(t, err)
}

func TestLoad_ValidationFailure(t *testing.T) {
	_, err := Load(createTempConfigFile(t, `
gnormplus:
  base_url: "http://localhost:8100"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tagger.term_list_path")
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("RELNA_LOG_LEVEL", "warn")
	t.Setenv("RELNA_GNORMPLUS_BASE_URL", "http://gnorm.internal:9000")

	cfg, err := Load(createTempConfigFile(t, validConfigYAML))
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "http://gnorm.internal:9000", cfg.GNormPlus.BaseURL)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("RELNA_GNORMPLUS_BASE_URL", "http://gnorm.internal:9000")
	t.Setenv("RELNA_TAGGER_TERM_LIST_PATH", "/etc/relna/goterms.txt")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "http://gnorm.internal:9000", cfg.GNormPlus.BaseURL)
	assert.Equal(t, "/etc/relna/goterms.txt", cfg.Tagger.TermListPath)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
}

func TestMustLoad_PanicsOnError(t *testing.T) {
	assert.Panics(t, func() {
		MustLoad(filepath.Join(t.TempDir(), "absent.yaml"))
	})
}
