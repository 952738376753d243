package config

const (
	defaultConfigPath            = "~/.config/soundmatch/config.toml"
	defaultCachePath             = "~/.cache/soundmatch/resolutions.db"
	defaultTMDBLanguage          = "en-US"
	defaultTMDBBaseURL           = "https://api.themoviedb.org/3"
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultSpotifyRPS            = 5.0
	defaultSpotifyBurst          = 2
	defaultSpotifyTimeoutSeconds = 10
	defaultMarket                = "US"
	defaultPageSize              = 20
	maxPageSize                  = 25
	defaultParallelism           = 4
	defaultCallTimeoutSeconds    = 8
	defaultMinCandidates         = 8
	defaultMaxTier               = 2
	defaultAcceptScore           = 70
	defaultNoEvidenceMargin      = 20
	defaultSeriesRelief          = 10
	defaultSampleCap             = 80
	defaultMinHitRatio           = 0.40
	defaultMinHits               = 10
	defaultMaxValidation         = 5
	defaultExpandSeeds           = 3
	defaultAcceptedTTLMinutes    = 360
	defaultRejectedTTLMinutes    = 30
	defaultRankingTTLMinutes     = 30
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Spotify: Spotify{
			RequestsPerSecond: defaultSpotifyRPS,
			Burst:             defaultSpotifyBurst,
			TimeoutSeconds:    defaultSpotifyTimeoutSeconds,
		},
		TMDB: TMDB{
			BaseURL:  defaultTMDBBaseURL,
			Language: defaultTMDBLanguage,
		},
		Engine: Engine{
			Markets:               []string{defaultMarket},
			UnrestrictedFallback:  true,
			PageSize:              defaultPageSize,
			Parallelism:           defaultParallelism,
			CallTimeoutSeconds:    defaultCallTimeoutSeconds,
			MinCandidates:         defaultMinCandidates,
			MaxTier:               defaultMaxTier,
			AcceptScore:           defaultAcceptScore,
			NoEvidenceMargin:      defaultNoEvidenceMargin,
			SeriesRelief:          defaultSeriesRelief,
			SampleCap:             defaultSampleCap,
			MinHitRatio:           defaultMinHitRatio,
			MinHits:               defaultMinHits,
			MaxValidationAttempts: defaultMaxValidation,
			ExpandSeeds:           defaultExpandSeeds,
		},
		Cache: Cache{
			Enabled:            true,
			Path:               defaultCachePath,
			AcceptedTTLMinutes: defaultAcceptedTTLMinutes,
			RejectedTTLMinutes: defaultRejectedTTLMinutes,
			RankingTTLMinutes:  defaultRankingTTLMinutes,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
