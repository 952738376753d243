package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// loadDotEnv exports variables from .env files in the working directory and
// next to the config file. Variables already set in the environment win.
func loadDotEnv(configDir string) {
	candidates := []string{".env"}
	if configDir != "" && configDir != "." {
		candidates = append(candidates, filepath.Join(configDir, ".env"))
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		_ = godotenv.Load(path)
	}
}

func (c *Config) normalize() error {
	c.normalizeSpotify()
	c.normalizeTMDB()
	c.normalizeEngine()
	if err := c.normalizeCache(); err != nil {
		return err
	}
	return c.normalizeLogging()
}

func envFallback(current string, keys ...string) string {
	current = strings.TrimSpace(current)
	if current != "" {
		return current
	}
	for _, key := range keys {
		if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func (c *Config) normalizeSpotify() {
	c.Spotify.ClientID = envFallback(c.Spotify.ClientID, "SPOTIFY_CLIENT_ID", "SPOTIFY_ID")
	c.Spotify.ClientSecret = envFallback(c.Spotify.ClientSecret, "SPOTIFY_CLIENT_SECRET", "SPOTIFY_SECRET")
	if c.Spotify.RequestsPerSecond <= 0 {
		c.Spotify.RequestsPerSecond = defaultSpotifyRPS
	}
	if c.Spotify.Burst <= 0 {
		c.Spotify.Burst = defaultSpotifyBurst
	}
	if c.Spotify.TimeoutSeconds <= 0 {
		c.Spotify.TimeoutSeconds = defaultSpotifyTimeoutSeconds
	}
}

func (c *Config) normalizeTMDB() {
	c.TMDB.APIKey = envFallback(c.TMDB.APIKey, "TMDB_API_KEY")
	c.TMDB.BaseURL = strings.TrimSpace(c.TMDB.BaseURL)
	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = defaultTMDBBaseURL
	}
	c.TMDB.Language = strings.TrimSpace(c.TMDB.Language)
}

func (c *Config) normalizeEngine() {
	markets := make([]string, 0, len(c.Engine.Markets))
	seen := make(map[string]struct{}, len(c.Engine.Markets))
	for _, market := range c.Engine.Markets {
		code := strings.ToUpper(strings.TrimSpace(market))
		if code == "" {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		markets = append(markets, code)
	}
	c.Engine.Markets = markets
	if c.Engine.PageSize > maxPageSize {
		c.Engine.PageSize = maxPageSize
	}
}

func (c *Config) normalizeCache() error {
	c.Cache.Path = strings.TrimSpace(c.Cache.Path)
	if c.Cache.Path == "" {
		c.Cache.Path = defaultCachePath
	}
	var err error
	if c.Cache.Path, err = expandPath(c.Cache.Path); err != nil {
		return fmt.Errorf("cache.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if strings.TrimSpace(c.Logging.File) != "" {
		var err error
		if c.Logging.File, err = expandPath(strings.TrimSpace(c.Logging.File)); err != nil {
			return fmt.Errorf("logging.file: %w", err)
		}
	}
	return nil
}
