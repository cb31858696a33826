// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package config

import (
	"time"

	"github.com/tomtom215/chronographus/internal/models"
)

// Config holds all application configuration loaded from defaults, an
// optional YAML config file, and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all settings
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any setting
//
// Thread Safety:
// Config is immutable after Load and safe for concurrent read access.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	API        APIConfig        `koanf:"api"`
	Auth       AuthConfig       `koanf:"auth"`
	Timeline   TimelineConfig   `koanf:"timeline"`
	Cache      CacheConfig      `koanf:"cache"`
	Sources    SourcesConfig    `koanf:"sources"`
	Overdrive  OverdriveConfig  `koanf:"overdrive"`
	Fanout     FanoutConfig     `koanf:"fanout"`
	Streaming  StreamingConfig  `koanf:"streaming"`
	Engagement EngagementConfig `koanf:"engagement"`
	NATS       NATSConfig       `koanf:"nats"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
//
// Environment Variables:
//   - HTTP_PORT: Listen port (default: 8080)
//   - HTTP_HOST: Bind address (default: 0.0.0.0)
//   - HTTP_TIMEOUT: Read/write timeout (default: 30s)
//   - ENVIRONMENT: "development" or "production"
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
}

// APIConfig holds pagination, rate limiting and surface toggles for the
// REST API.
type APIConfig struct {
	// DefaultPageSize is used when a request omits the limit parameter.
	DefaultPageSize int `koanf:"default_page_size"`

	// MaxPageSize caps the limit parameter.
	MaxPageSize int `koanf:"max_page_size"`

	// RateLimitRPM is the per-caller request budget per minute.
	// Callers can lower their own budget with the x-rate-rpm header,
	// never raise it.
	RateLimitRPM int `koanf:"rate_limit_rpm"`

	// RateLimitBurst is the per-caller burst allowance.
	RateLimitBurst int `koanf:"rate_limit_burst"`

	// IPRateLimitRPM is the pre-auth per-IP request budget per minute.
	IPRateLimitRPM int `koanf:"ip_rate_limit_rpm"`

	// RateLimitDisabled turns off all rate limiting. Development only.
	RateLimitDisabled bool `koanf:"rate_limit_disabled"`

	// CORSOrigins lists allowed CORS origins.
	CORSOrigins []string `koanf:"cors_origins"`

	// SwaggerEnabled serves the OpenAPI UI under /swagger/.
	SwaggerEnabled bool `koanf:"swagger_enabled"`
}

// AuthConfig holds authentication settings.
//
// Modes:
//   - "header": trust the x-user-id / x-admin headers, optionally
//     verified against a bcrypt shared token (x-auth-token header)
//   - "jwt": HS256 bearer tokens carrying the viewer ID in "sub"
//   - "oidc": bearer ID tokens verified against an OIDC issuer
type AuthConfig struct {
	Mode string `koanf:"mode"`

	// JWTSecret signs and verifies HS256 tokens in jwt mode.
	JWTSecret string `koanf:"jwt_secret"`

	// JWTIssuer, when set, must match the token's iss claim.
	JWTIssuer string `koanf:"jwt_issuer"`

	// JWTAudience, when set, must appear in the token's aud claim.
	JWTAudience string `koanf:"jwt_audience"`

	// SharedTokenHash is the bcrypt hash of the service token accepted
	// in header mode. Empty disables the check.
	SharedTokenHash string `koanf:"shared_token_hash"`

	// AdminUsers lists viewer IDs granted the admin role.
	AdminUsers []string `koanf:"admin_users"`

	// PolicyPath points at a casbin policy CSV replacing the embedded
	// role grants. Empty uses the built-in policy.
	PolicyPath string `koanf:"policy_path"`

	OIDC OIDCConfig `koanf:"oidc"`
}

// OIDCConfig holds OIDC relying-party settings for oidc auth mode.
type OIDCConfig struct {
	IssuerURL    string `koanf:"issuer_url"`
	ClientID     string `koanf:"client_id"`
	ClientSecret string `koanf:"client_secret"`

	// Audience, when set, must appear in the verified token's aud
	// claim in addition to the client id check.
	Audience string `koanf:"audience"`
}

// TimelineConfig holds the assembly and ranking knobs. Per-request
// header overrides are layered on top of these values.
type TimelineConfig struct {
	// Algorithm selects the default ranking algorithm:
	// "chronological" or "hybrid".
	Algorithm string `koanf:"algorithm"`

	// MaxItems is the assembled timeline length.
	MaxItems int `koanf:"max_items"`

	// MaxAgeHours drops candidates older than this.
	MaxAgeHours int `koanf:"max_age_hours"`

	// MinScoreThreshold drops ranked items scoring below this.
	MinScoreThreshold float64 `koanf:"min_score_threshold"`

	// Signal weights for the hybrid ranker.
	WeightRecency        float64 `koanf:"weight_recency"`
	WeightEngagement     float64 `koanf:"weight_engagement"`
	WeightAuthorAffinity float64 `koanf:"weight_author_affinity"`
	WeightContentQuality float64 `koanf:"weight_content_quality"`
	WeightDiversity      float64 `koanf:"weight_diversity"`

	// Source mix ratios. They should sum to 1.
	RatioFollowing   float64 `koanf:"ratio_following"`
	RatioRecommended float64 `koanf:"ratio_recommended"`
	RatioTrending    float64 `koanf:"ratio_trending"`
	RatioLists       float64 `koanf:"ratio_lists"`

	// AssemblyBudget bounds a full assembly including source fetches.
	AssemblyBudget time.Duration `koanf:"assembly_budget"`

	// CacheTTL is how long an assembled timeline stays fresh.
	CacheTTL time.Duration `koanf:"cache_ttl"`

	// RefreshMinInterval throttles explicit refresh requests per viewer.
	RefreshMinInterval time.Duration `koanf:"refresh_min_interval"`
}

// ToModel converts the section into the domain timeline configuration,
// falling back to domain defaults for unset values.
func (t TimelineConfig) ToModel() models.TimelineConfig {
	cfg := models.DefaultTimelineConfig()

	if alg, err := models.ParseAlgorithm(t.Algorithm); err == nil {
		cfg.Algorithm = alg
	}
	if t.MaxItems > 0 {
		cfg.MaxItems = t.MaxItems
	}
	if t.MaxAgeHours > 0 {
		cfg.MaxAgeHours = t.MaxAgeHours
	}
	if t.MinScoreThreshold > 0 {
		cfg.MinScoreThreshold = t.MinScoreThreshold
	}
	if t.WeightRecency > 0 {
		cfg.Weights.Recency = t.WeightRecency
	}
	if t.WeightEngagement > 0 {
		cfg.Weights.Engagement = t.WeightEngagement
	}
	if t.WeightAuthorAffinity > 0 {
		cfg.Weights.AuthorAffinity = t.WeightAuthorAffinity
	}
	if t.WeightContentQuality > 0 {
		cfg.Weights.ContentQuality = t.WeightContentQuality
	}
	if t.WeightDiversity > 0 {
		cfg.Weights.Diversity = t.WeightDiversity
	}
	if t.RatioFollowing > 0 || t.RatioRecommended > 0 || t.RatioTrending > 0 || t.RatioLists > 0 {
		cfg.Ratios = models.SourceRatios{
			Following:   t.RatioFollowing,
			Recommended: t.RatioRecommended,
			Trending:    t.RatioTrending,
			Lists:       t.RatioLists,
		}
	}
	return cfg
}

// CacheConfig holds the tiered cache settings.
type CacheConfig struct {
	TimelineCapacity int `koanf:"timeline_capacity"`
	ProfileCapacity  int `koanf:"profile_capacity"`
	LastReadCapacity int `koanf:"lastread_capacity"`

	ProfileTTL  time.Duration `koanf:"profile_ttl"`
	LastReadTTL time.Duration `koanf:"lastread_ttl"`

	// CleanupInterval is how often expired entries are swept and
	// durable-tier GC runs.
	CleanupInterval time.Duration `koanf:"cleanup_interval"`

	// DurableEnabled turns on the persistent BadgerDB tier.
	DurableEnabled bool `koanf:"durable_enabled"`

	// DurablePath is the BadgerDB data directory.
	DurablePath string `koanf:"durable_path"`

	// DurableSyncWrites forces fsync on durable-tier writes.
	DurableSyncWrites bool `koanf:"durable_sync_writes"`
}

// SourcesConfig holds candidate source settings.
type SourcesConfig struct {
	// FetchLimit caps the candidates requested from each source.
	FetchLimit int `koanf:"fetch_limit"`

	// FollowSetTTL is how long a viewer's follow set is cached.
	FollowSetTTL time.Duration `koanf:"follow_set_ttl"`

	// RecommendedLookback bounds how far back the recommended source
	// scans for candidates.
	RecommendedLookback time.Duration `koanf:"recommended_lookback"`

	// TrendingRefreshInterval is how often the shared trending pool
	// is recomputed.
	TrendingRefreshInterval time.Duration `koanf:"trending_refresh_interval"`

	// TrendingWindowHours is the engagement window the trending
	// providers score over.
	TrendingWindowHours int `koanf:"trending_window_hours"`
}

// OverdriveConfig holds the optional external re-ranker settings.
type OverdriveConfig struct {
	Enabled bool          `koanf:"enabled"`
	URL     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`
}

// FanoutConfig holds the note event fan-out worker settings.
type FanoutConfig struct {
	// QueueCapacity bounds the in-memory task queue. When full, the
	// oldest task is shed to admit the newest.
	QueueCapacity int `koanf:"queue_capacity"`

	// MaxRetries bounds retry attempts per task.
	MaxRetries int `koanf:"max_retries"`

	// RetryBackoff is the base backoff doubled per attempt.
	RetryBackoff time.Duration `koanf:"retry_backoff"`

	// ShardThreshold switches authors with more followers than this to
	// sharded (lazy) invalidation.
	ShardThreshold int `koanf:"shard_threshold"`
}

// StreamingConfig holds the WebSocket streaming settings.
type StreamingConfig struct {
	Enabled bool `koanf:"enabled"`

	// HeartbeatInterval is the keep-alive cadence per session.
	HeartbeatInterval time.Duration `koanf:"heartbeat_interval"`

	// SessionQueueSize bounds per-session outbound queues. When full,
	// the oldest update is dropped.
	SessionQueueSize int `koanf:"session_queue_size"`

	// RateLimitPerSecond caps updates delivered per session per second.
	RateLimitPerSecond float64 `koanf:"rate_limit_per_second"`

	// WriteTimeout bounds a single WebSocket write.
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

// EngagementConfig holds the DuckDB engagement event log settings.
type EngagementConfig struct {
	// Path is the DuckDB database file. Empty uses in-memory.
	Path string `koanf:"path"`

	// MaxMemory caps DuckDB memory usage (e.g. "1GB").
	MaxMemory string `koanf:"max_memory"`

	// Threads is the DuckDB thread count. 0 uses runtime.NumCPU().
	Threads int `koanf:"threads"`

	// RetentionDays prunes events older than this many days.
	RetentionDays int `koanf:"retention_days"`
}

// NATSConfig holds the note event bridge settings. The bridge is only
// compiled in with the nats build tag.
type NATSConfig struct {
	Enabled bool   `koanf:"enabled"`
	URL     string `koanf:"url"`

	// EmbeddedServer runs an in-process NATS server with JetStream.
	EmbeddedServer bool   `koanf:"embedded_server"`
	StoreDir       string `koanf:"store_dir"`

	// StreamName is the JetStream stream capturing note events.
	StreamName string `koanf:"stream_name"`

	// SubjectPrefix prefixes per-kind subjects, e.g. chrono.notes.created.
	SubjectPrefix string `koanf:"subject_prefix"`

	DurableName string `koanf:"durable_name"`
	QueueGroup  string `koanf:"queue_group"`

	PublishTimeout time.Duration `koanf:"publish_timeout"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8080,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		API: APIConfig{
			DefaultPageSize:   20,
			MaxPageSize:       100,
			RateLimitRPM:      60,
			RateLimitBurst:    10,
			IPRateLimitRPM:    300,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
			SwaggerEnabled:    true,
		},
		Auth: AuthConfig{
			Mode: "header",
		},
		Timeline: TimelineConfig{
			Algorithm:            "hybrid",
			MaxItems:             50,
			MaxAgeHours:          24,
			MinScoreThreshold:    0.1,
			WeightRecency:        0.30,
			WeightEngagement:     0.25,
			WeightAuthorAffinity: 0.20,
			WeightContentQuality: 0.15,
			WeightDiversity:      0.10,
			RatioFollowing:       0.7,
			RatioRecommended:     0.2,
			RatioTrending:        0.1,
			RatioLists:           0.0,
			AssemblyBudget:       2 * time.Second,
			CacheTTL:             time.Hour,
			RefreshMinInterval:   30 * time.Second,
		},
		Cache: CacheConfig{
			TimelineCapacity:  10000,
			ProfileCapacity:   20000,
			LastReadCapacity:  50000,
			ProfileTTL:        10 * time.Minute,
			LastReadTTL:       24 * time.Hour,
			CleanupInterval:   time.Minute,
			DurableEnabled:    false,
			DurablePath:       "/data/chronographus/cache",
			DurableSyncWrites: false,
		},
		Sources: SourcesConfig{
			FetchLimit:              200,
			FollowSetTTL:            10 * time.Minute,
			RecommendedLookback:     24 * time.Hour,
			TrendingRefreshInterval: time.Hour,
			TrendingWindowHours:     24,
		},
		Overdrive: OverdriveConfig{
			Enabled: false,
			URL:     "",
			Timeout: 300 * time.Millisecond,
		},
		Fanout: FanoutConfig{
			QueueCapacity:  10000,
			MaxRetries:     3,
			RetryBackoff:   100 * time.Millisecond,
			ShardThreshold: 100000,
		},
		Streaming: StreamingConfig{
			Enabled:            true,
			HeartbeatInterval:  500 * time.Millisecond,
			SessionQueueSize:   64,
			RateLimitPerSecond: 5,
			WriteTimeout:       5 * time.Second,
		},
		Engagement: EngagementConfig{
			Path:          "/data/chronographus/engagement.duckdb",
			MaxMemory:     "1GB",
			Threads:       0,
			RetentionDays: 90,
		},
		NATS: NATSConfig{
			Enabled:        false,
			URL:            "nats://127.0.0.1:4222",
			EmbeddedServer: true,
			StoreDir:       "/data/chronographus/nats",
			StreamName:     "CHRONO_NOTES",
			SubjectPrefix:  "chrono.notes",
			DurableName:    "timeline-fanout",
			QueueGroup:     "fanout",
			PublishTimeout: 5 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}
