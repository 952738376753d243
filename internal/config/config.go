package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Spotify contains catalog credentials and client pacing.
type Spotify struct {
	ClientID          string  `toml:"client_id"`
	ClientSecret      string  `toml:"client_secret"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
}

// TMDB contains configuration for The Movie Database API. It is optional and
// only supplies composer hints for soundtrack lookups.
type TMDB struct {
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
	Language string `toml:"language"`
}

// Engine contains the shared fetch, acceptance and validation calibration.
type Engine struct {
	// Markets are tried in order before the unrestricted scope.
	Markets               []string `toml:"markets"`
	UnrestrictedFallback  bool     `toml:"unrestricted_fallback"`
	PageSize              int      `toml:"page_size"`
	Parallelism           int      `toml:"parallelism"`
	CallTimeoutSeconds    int      `toml:"call_timeout_seconds"`
	MinCandidates         int      `toml:"min_candidates"`
	MaxTier               int      `toml:"max_tier"`
	AcceptScore           float64  `toml:"accept_score"`
	NoEvidenceMargin      float64  `toml:"no_evidence_margin"`
	SeriesRelief          float64  `toml:"series_relief"`
	SampleCap             int      `toml:"sample_cap"`
	MinHitRatio           float64  `toml:"min_hit_ratio"`
	MinHits               int      `toml:"min_hits"`
	MaxValidationAttempts int      `toml:"max_validation_attempts"`
	ExpandSeeds           int      `toml:"expand_seeds"`
}

// Weights overrides scorer weights. Zero keeps the profile default.
type Weights struct {
	StrongEvidence        float64 `toml:"strong_evidence"`
	WeakEvidence          float64 `toml:"weak_evidence"`
	NoEvidence            float64 `toml:"no_evidence"`
	NegativeKeyword       float64 `toml:"negative_keyword"`
	RealCollection        float64 `toml:"real_collection"`
	TinyCollection        float64 `toml:"tiny_collection"`
	Compilation           float64 `toml:"compilation"`
	YearPenaltyPerYear    float64 `toml:"year_penalty_per_year"`
	YearPenaltyCap        float64 `toml:"year_penalty_cap"`
	ContributorHint       float64 `toml:"contributor_hint"`
	DistinctiveAllMissing float64 `toml:"distinctive_all_missing"`
	DistinctivePartial    float64 `toml:"distinctive_partial"`
	KnownCurator          float64 `toml:"known_curator"`
}

// Cache contains configuration for the resolution cache.
type Cache struct {
	Enabled            bool   `toml:"enabled"`
	Path               string `toml:"path"`
	AcceptedTTLMinutes int    `toml:"accepted_ttl_minutes"`
	RejectedTTLMinutes int    `toml:"rejected_ttl_minutes"`
	RankingTTLMinutes  int    `toml:"ranking_ttl_minutes"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	File   string `toml:"file"`
}

// Config encapsulates all configuration values for soundmatch.
//
// Configuration sections by subsystem:
//   - Spotify: catalog credentials and rate limit
//   - TMDB: optional composer hints for soundtrack lookups
//   - Engine: fetch breadth, acceptance thresholds, validation sampling
//   - Weights: scorer weight overrides
//   - Cache: resolution cache location and TTLs
//   - Logging: log format, level, and optional file
type Config struct {
	Spotify Spotify `toml:"spotify"`
	TMDB    TMDB    `toml:"tmdb"`
	Engine  Engine  `toml:"engine"`
	Weights Weights `toml:"weights"`
	Cache   Cache   `toml:"cache"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and env fallbacks applied.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	loadDotEnv(filepath.Dir(resolvedPath))

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("soundmatch.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// Scopes returns the catalog scopes in fallback order. The unrestricted
// scope is the empty string.
func (c *Config) Scopes() []string {
	scopes := make([]string, 0, len(c.Engine.Markets)+1)
	scopes = append(scopes, c.Engine.Markets...)
	if c.Engine.UnrestrictedFallback || len(scopes) == 0 {
		scopes = append(scopes, "")
	}
	return scopes
}

// CallTimeout returns the per-search-call timeout.
func (c *Config) CallTimeout() time.Duration {
	return time.Duration(c.Engine.CallTimeoutSeconds) * time.Second
}

// CacheTTLs returns the accepted, rejected and ranking TTLs.
func (c *Config) CacheTTLs() (accepted, rejected, ranking time.Duration) {
	return time.Duration(c.Cache.AcceptedTTLMinutes) * time.Minute,
		time.Duration(c.Cache.RejectedTTLMinutes) * time.Minute,
		time.Duration(c.Cache.RankingTTLMinutes) * time.Minute
}

// TMDBEnabled reports whether composer hints can be looked up.
func (c *Config) TMDBEnabled() bool {
	return strings.TrimSpace(c.TMDB.APIKey) != ""
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" || pathValue == ":memory:" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
