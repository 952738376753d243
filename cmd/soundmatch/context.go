package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"soundmatch/internal/catalog/spotify"
	"soundmatch/internal/config"
	"soundmatch/internal/logging"
	"soundmatch/internal/resolve"
	"soundmatch/internal/resolvecache"
	"soundmatch/internal/services"
	"soundmatch/internal/soundtrack"
	"soundmatch/internal/tmdb"
)

// dependencies builds the external clients; tests swap them for fakes.
type dependencies struct {
	newCatalog   func(cfg *config.Config, logger *slog.Logger) (resolve.Catalog, error)
	newComposers func(cfg *config.Config) (soundtrack.ComposerSource, error)
}

func defaultDependencies() dependencies {
	return dependencies{
		newCatalog: func(cfg *config.Config, logger *slog.Logger) (resolve.Catalog, error) {
			if err := cfg.RequireSpotify(); err != nil {
				return nil, services.Wrap(services.ErrConfiguration, "spotify", "credentials", "", err)
			}
			return spotify.New(spotify.Options{
				ClientID:          cfg.Spotify.ClientID,
				ClientSecret:      cfg.Spotify.ClientSecret,
				RequestsPerSecond: cfg.Spotify.RequestsPerSecond,
				Burst:             cfg.Spotify.Burst,
				Timeout:           time.Duration(cfg.Spotify.TimeoutSeconds) * time.Second,
				Logger:            logger,
			})
		},
		newComposers: func(cfg *config.Config) (soundtrack.ComposerSource, error) {
			if !cfg.TMDBEnabled() {
				return nil, nil
			}
			return tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language)
		},
	}
}

type commandContext struct {
	configFlag  *string
	jsonFlag    *bool
	verboseFlag *bool
	deps        dependencies

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string, jsonFlag, verboseFlag *bool, deps dependencies) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		jsonFlag:    jsonFlag,
		verboseFlag: verboseFlag,
		deps:        deps,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "config", "load", "", err)
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		verbose := c.verboseFlag != nil && *c.verboseFlag
		logger, err := logging.NewFromConfig(cfg, verbose)
		if err != nil {
			c.loggerErr = fmt.Errorf("init logger: %w", err)
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

// session bundles what a lookup command needs. Close releases the cache.
type session struct {
	cfg     *config.Config
	logger  *slog.Logger
	catalog resolve.Catalog
	cache   *resolvecache.Store
}

func (s *session) Close() {
	if s.cache != nil {
		_ = s.cache.Close()
	}
}

func (c *commandContext) openSession(withCatalog bool) (*session, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg, logger: logger}
	if withCatalog {
		if s.catalog, err = c.deps.newCatalog(cfg, logger); err != nil {
			return nil, err
		}
	}
	if cfg.Cache.Enabled {
		if s.cache, err = openCache(cfg); err != nil {
			logging.WarnWithContext(logger, "resolution cache disabled for this run", "cache_open_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check cache.path or run 'soundmatch cache clear'"),
				logging.String(logging.FieldImpact, "lookups go straight to the catalog"),
			)
			s.cache = nil
		}
	}
	return s, nil
}

func openCache(cfg *config.Config) (*resolvecache.Store, error) {
	accepted, rejected, ranking := cfg.CacheTTLs()
	return resolvecache.Open(cfg.Cache.Path, resolvecache.TTLs{
		Accepted: accepted,
		Rejected: rejected,
		Ranking:  ranking,
	})
}

// requestContext tags the command context with a fresh correlation id.
func requestContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return logging.WithRequestID(ctx, "")
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
