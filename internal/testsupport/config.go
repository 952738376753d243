package testsupport

import (
	"path/filepath"
	"testing"

	"soundmatch/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config whose cache lives in a per-test temp directory.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Spotify.ClientID = "test-id"
	cfgVal.Spotify.ClientSecret = "test-secret"
	cfgVal.Cache.Path = filepath.Join(base, "cache", "resolutions.db")
	cfgVal.Logging.File = ""

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithTMDBKey sets the TMDB API key on the test config.
func WithTMDBKey(key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.TMDB.APIKey = key
	}
}

// WithMarkets replaces the restricted markets on the test config.
func WithMarkets(markets ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Engine.Markets = markets
	}
}

// WithMemoryCache keeps the resolution cache in memory.
func WithMemoryCache() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.Path = ":memory:"
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(filepath.Dir(cfg.Cache.Path))
}
