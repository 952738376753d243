package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable. Catalog credentials are not
// checked here; commands that reach the catalog call RequireSpotify.
func (c *Config) Validate() error {
	if err := c.validateSpotify(); err != nil {
		return err
	}
	if err := c.validateEngine(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	return c.validateLogging()
}

// RequireSpotify reports a descriptive error when catalog credentials are missing.
func (c *Config) RequireSpotify() error {
	if c.Spotify.ClientID == "" || c.Spotify.ClientSecret == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = defaultConfigPath
		}
		return fmt.Errorf("spotify.client_id and spotify.client_secret are required. Set SPOTIFY_CLIENT_ID/SPOTIFY_CLIENT_SECRET or edit %s (create with 'soundmatch config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateSpotify() error {
	if c.Spotify.RequestsPerSecond > 50 {
		return errors.New("spotify.requests_per_second must be 50 or lower")
	}
	return nil
}

func (c *Config) validateEngine() error {
	e := c.Engine
	switch {
	case e.PageSize <= 0:
		return errors.New("engine.page_size must be positive")
	case e.Parallelism <= 0:
		return errors.New("engine.parallelism must be positive")
	case e.CallTimeoutSeconds <= 0:
		return errors.New("engine.call_timeout_seconds must be positive")
	case e.MinCandidates <= 0:
		return errors.New("engine.min_candidates must be positive")
	case e.MaxTier < 0 || e.MaxTier > 2:
		return errors.New("engine.max_tier must be between 0 and 2")
	case e.AcceptScore <= 0:
		return errors.New("engine.accept_score must be positive")
	case e.NoEvidenceMargin <= 0:
		return errors.New("engine.no_evidence_margin must be positive")
	case e.SeriesRelief < 0 || e.SeriesRelief >= e.AcceptScore:
		return errors.New("engine.series_relief must be non-negative and below engine.accept_score")
	case e.SampleCap <= 0:
		return errors.New("engine.sample_cap must be positive")
	case e.MinHitRatio <= 0 || e.MinHitRatio > 1:
		return errors.New("engine.min_hit_ratio must be within (0, 1]")
	case e.MinHits <= 0:
		return errors.New("engine.min_hits must be positive")
	case e.MaxValidationAttempts <= 0:
		return errors.New("engine.max_validation_attempts must be positive")
	case e.ExpandSeeds < 0:
		return errors.New("engine.expand_seeds must be non-negative")
	}
	return nil
}

func (c *Config) validateCache() error {
	if !c.Cache.Enabled {
		return nil
	}
	if c.Cache.AcceptedTTLMinutes <= 0 || c.Cache.RejectedTTLMinutes <= 0 || c.Cache.RankingTTLMinutes <= 0 {
		return errors.New("cache ttl values must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}
