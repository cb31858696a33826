// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/chronographus/internal/models"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateAPI(); err != nil {
		return err
	}

	if err := c.validateAuth(); err != nil {
		return err
	}

	if err := c.validateTimeline(); err != nil {
		return err
	}

	if err := c.validateCache(); err != nil {
		return err
	}

	if err := c.validateSources(); err != nil {
		return err
	}

	if err := c.validateOverdrive(); err != nil {
		return err
	}

	if err := c.validateFanout(); err != nil {
		return err
	}

	if err := c.validateStreaming(); err != nil {
		return err
	}

	if err := c.validateEngagement(); err != nil {
		return err
	}

	if err := c.validateNATS(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateServer validates server configuration
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout < time.Second || c.Server.Timeout > 10*time.Minute {
		return fmt.Errorf("HTTP_TIMEOUT must be between 1s and 10m")
	}
	return nil
}

// API limit constants
const (
	maxPageSizeCeiling = 500
	minRateLimitRPM    = 1
	maxRateLimitRPM    = 100000
	maxRateLimitBurst  = 10000
)

// validateAPI validates API pagination, rate limit, and CORS configuration
func (c *Config) validateAPI() error {
	if err := c.validatePageSizes(); err != nil {
		return err
	}
	if err := c.validateRateLimits(); err != nil {
		return err
	}
	return c.validateCORS()
}

// validatePageSizes validates the pagination bounds
func (c *Config) validatePageSizes() error {
	if c.API.MaxPageSize < 1 || c.API.MaxPageSize > maxPageSizeCeiling {
		return fmt.Errorf("API_MAX_PAGE_SIZE must be between 1 and %d", maxPageSizeCeiling)
	}
	if c.API.DefaultPageSize < 1 || c.API.DefaultPageSize > c.API.MaxPageSize {
		return fmt.Errorf("API_DEFAULT_PAGE_SIZE must be between 1 and API_MAX_PAGE_SIZE (%d)", c.API.MaxPageSize)
	}
	return nil
}

// validateRateLimits validates rate limiting configuration bounds.
// Ensures rate limit values are within sensible ranges to prevent
// misconfiguration that could lead to DoS or ineffective protection.
func (c *Config) validateRateLimits() error {
	if c.API.RateLimitDisabled {
		return nil
	}

	if c.API.RateLimitRPM < minRateLimitRPM || c.API.RateLimitRPM > maxRateLimitRPM {
		return fmt.Errorf("RATE_LIMIT_RPM must be between %d and %d", minRateLimitRPM, maxRateLimitRPM)
	}
	if c.API.RateLimitBurst < 1 || c.API.RateLimitBurst > maxRateLimitBurst {
		return fmt.Errorf("RATE_LIMIT_BURST must be between 1 and %d", maxRateLimitBurst)
	}
	if c.API.IPRateLimitRPM < minRateLimitRPM || c.API.IPRateLimitRPM > maxRateLimitRPM {
		return fmt.Errorf("IP_RATE_LIMIT_RPM must be between %d and %d", minRateLimitRPM, maxRateLimitRPM)
	}
	return nil
}

// validateCORS rejects wildcard CORS in production when token
// authentication is on: a wildcard lets any origin replay stolen
// credentials against protected routes.
func (c *Config) validateCORS() error {
	if c.Auth.Mode != AuthModeHeader && c.hasWildcardCORS() && c.IsProduction() {
		return fmt.Errorf("CORS_ORIGINS=* (wildcard) is not allowed in production with authentication enabled. " +
			"Either set specific origins: CORS_ORIGINS=https://yourdomain.com,https://app.yourdomain.com " +
			"or use ENVIRONMENT=development for testing purposes")
	}
	return nil
}

// hasWildcardCORS checks if CORS is configured with wildcard origins
func (c *Config) hasWildcardCORS() bool {
	for _, origin := range c.API.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// IsProduction returns true if the application is running in production mode.
// Production mode is determined by the ENVIRONMENT environment variable.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "production" || env == "prod"
}

// IsDevelopment returns true if the application is running in development mode.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "" || env == "development" || env == "dev"
}

// Authentication modes
const (
	AuthModeHeader = "header"
	AuthModeJWT    = "jwt"
	AuthModeOIDC   = "oidc"
)

// validAuthModes defines the allowed authentication modes
var validAuthModes = map[string]bool{
	AuthModeHeader: true,
	AuthModeJWT:    true,
	AuthModeOIDC:   true,
}

// validateAuth validates authentication configuration
func (c *Config) validateAuth() error {
	if !validAuthModes[c.Auth.Mode] {
		return fmt.Errorf("AUTH_MODE must be one of: header, jwt, oidc")
	}

	if err := c.validateSharedTokenHash(); err != nil {
		return err
	}

	switch c.Auth.Mode {
	case AuthModeJWT:
		return c.validateJWTAuth()
	case AuthModeOIDC:
		return c.validateOIDCAuth()
	}
	return nil
}

// validateSharedTokenHash validates the optional shared service token hash.
// The value must be a bcrypt hash, never the plaintext token itself.
func (c *Config) validateSharedTokenHash() error {
	hash := c.Auth.SharedTokenHash
	if hash == "" {
		return nil
	}
	if !strings.HasPrefix(hash, "$2a$") && !strings.HasPrefix(hash, "$2b$") && !strings.HasPrefix(hash, "$2y$") {
		return fmt.Errorf("SHARED_TOKEN_HASH must be a bcrypt hash - generate one with: htpasswd -bnBC 12 '' <token>")
	}
	return nil
}

// validateJWTAuth validates JWT authentication configuration
func (c *Config) validateJWTAuth() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when AUTH_MODE is jwt")
	}
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters for security")
	}
	if containsPlaceholder(c.Auth.JWTSecret) {
		return fmt.Errorf("JWT_SECRET contains a placeholder value - generate a secure secret with: openssl rand -base64 32")
	}
	return nil
}

// validateOIDCAuth validates OIDC authentication configuration
func (c *Config) validateOIDCAuth() error {
	if c.Auth.OIDC.IssuerURL == "" {
		return fmt.Errorf("OIDC_ISSUER_URL is required when AUTH_MODE is oidc")
	}
	if err := validateOIDCIssuerURL(c.Auth.OIDC.IssuerURL); err != nil {
		return fmt.Errorf("OIDC_ISSUER_URL is invalid: %w", err)
	}
	if c.Auth.OIDC.ClientID == "" {
		return fmt.Errorf("OIDC_CLIENT_ID is required when AUTH_MODE is oidc")
	}
	return nil
}

// Timeline assembly limit constants
const (
	minAssemblyBudget = 100 * time.Millisecond
	maxAssemblyBudget = 30 * time.Second
	maxTimelineItems  = 500
	maxTimelineAge    = 24 * 7 // hours, one week
)

// validateTimeline validates timeline assembly configuration.
// Weight and ratio checks are delegated to the model the pipeline consumes.
func (c *Config) validateTimeline() error {
	if err := c.validateTimelineBounds(); err != nil {
		return err
	}
	if err := c.validateTimelineBudgets(); err != nil {
		return err
	}
	if _, err := models.ParseAlgorithm(c.Timeline.Algorithm); err != nil {
		return fmt.Errorf("TIMELINE_ALGORITHM is invalid: %w", err)
	}
	if err := c.Timeline.ToModel().Validate(); err != nil {
		return fmt.Errorf("timeline configuration is invalid: %w", err)
	}
	return nil
}

// validateTimelineBounds validates item count and age window bounds
func (c *Config) validateTimelineBounds() error {
	if c.Timeline.MaxItems < 1 || c.Timeline.MaxItems > maxTimelineItems {
		return fmt.Errorf("TIMELINE_MAX_ITEMS must be between 1 and %d", maxTimelineItems)
	}
	if c.Timeline.MaxAgeHours < 1 || c.Timeline.MaxAgeHours > maxTimelineAge {
		return fmt.Errorf("TIMELINE_MAX_AGE_HOURS must be between 1 and %d", maxTimelineAge)
	}
	return nil
}

// validateTimelineBudgets validates assembly timing configuration
func (c *Config) validateTimelineBudgets() error {
	if c.Timeline.AssemblyBudget < minAssemblyBudget || c.Timeline.AssemblyBudget > maxAssemblyBudget {
		return fmt.Errorf("TIMELINE_ASSEMBLY_BUDGET must be between %v and %v", minAssemblyBudget, maxAssemblyBudget)
	}
	if c.Timeline.CacheTTL < time.Second || c.Timeline.CacheTTL > time.Hour {
		return fmt.Errorf("TIMELINE_CACHE_TTL must be between 1s and 1h")
	}
	if c.Timeline.RefreshMinInterval < 0 {
		return fmt.Errorf("TIMELINE_REFRESH_INTERVAL must be non-negative")
	}
	return nil
}

// validateCache validates cache tier configuration
func (c *Config) validateCache() error {
	if c.Cache.TimelineCapacity < 1 {
		return fmt.Errorf("CACHE_TIMELINE_CAPACITY must be positive")
	}
	if c.Cache.ProfileCapacity < 1 {
		return fmt.Errorf("CACHE_PROFILE_CAPACITY must be positive")
	}
	if c.Cache.LastReadCapacity < 1 {
		return fmt.Errorf("CACHE_LASTREAD_CAPACITY must be positive")
	}
	if c.Cache.CleanupInterval < time.Second {
		return fmt.Errorf("CACHE_CLEANUP_INTERVAL must be at least 1s")
	}
	if c.Cache.DurableEnabled && c.Cache.DurablePath == "" {
		return fmt.Errorf("CACHE_DURABLE_PATH is required when CACHE_DURABLE_ENABLED=true")
	}
	return nil
}

// validateSources validates candidate source configuration
func (c *Config) validateSources() error {
	if c.Sources.FetchLimit < 1 || c.Sources.FetchLimit > 1000 {
		return fmt.Errorf("SOURCES_FETCH_LIMIT must be between 1 and 1000")
	}
	if c.Sources.FollowSetTTL < time.Second {
		return fmt.Errorf("FOLLOW_SET_TTL must be at least 1s")
	}
	if c.Sources.RecommendedLookback < time.Second {
		return fmt.Errorf("RECOMMENDED_LOOKBACK must be at least 1s")
	}
	if c.Sources.TrendingRefreshInterval < time.Minute {
		return fmt.Errorf("TRENDING_REFRESH_INTERVAL must be at least 1m")
	}
	if c.Sources.TrendingWindowHours < 1 || c.Sources.TrendingWindowHours > maxTimelineAge {
		return fmt.Errorf("TRENDING_WINDOW_HOURS must be between 1 and %d", maxTimelineAge)
	}
	return nil
}

// validateOverdrive validates the external ranking service configuration (only if enabled)
func (c *Config) validateOverdrive() error {
	if !c.Overdrive.Enabled {
		return nil
	}

	if c.Overdrive.URL == "" {
		return fmt.Errorf("OVERDRIVE_URL is required when OVERDRIVE_ENABLED=true")
	}
	if err := validateHTTPURL(c.Overdrive.URL, "OVERDRIVE_URL"); err != nil {
		return fmt.Errorf("OVERDRIVE_URL is invalid: %w", err)
	}
	if c.Overdrive.Timeout < 50*time.Millisecond || c.Overdrive.Timeout > 10*time.Second {
		return fmt.Errorf("OVERDRIVE_TIMEOUT must be between 50ms and 10s")
	}
	return nil
}

// Fanout limit constants
const (
	maxFanoutQueue   = 1000000
	maxFanoutRetries = 10
)

// validateFanout validates fanout worker configuration
func (c *Config) validateFanout() error {
	if c.Fanout.QueueCapacity < 1 || c.Fanout.QueueCapacity > maxFanoutQueue {
		return fmt.Errorf("FANOUT_QUEUE_CAPACITY must be between 1 and %d", maxFanoutQueue)
	}
	if c.Fanout.MaxRetries < 0 || c.Fanout.MaxRetries > maxFanoutRetries {
		return fmt.Errorf("FANOUT_MAX_RETRIES must be between 0 and %d", maxFanoutRetries)
	}
	if c.Fanout.RetryBackoff < time.Millisecond {
		return fmt.Errorf("FANOUT_RETRY_BACKOFF must be at least 1ms")
	}
	if c.Fanout.ShardThreshold < 1 {
		return fmt.Errorf("FANOUT_SHARD_THRESHOLD must be positive")
	}
	return nil
}

// validateStreaming validates WebSocket streaming configuration (only if enabled)
func (c *Config) validateStreaming() error {
	if !c.Streaming.Enabled {
		return nil
	}

	if c.Streaming.HeartbeatInterval < 100*time.Millisecond || c.Streaming.HeartbeatInterval > time.Minute {
		return fmt.Errorf("STREAMING_HEARTBEAT_INTERVAL must be between 100ms and 1m")
	}
	if c.Streaming.SessionQueueSize < 1 || c.Streaming.SessionQueueSize > 4096 {
		return fmt.Errorf("STREAMING_QUEUE_SIZE must be between 1 and 4096")
	}
	if c.Streaming.RateLimitPerSecond <= 0 || c.Streaming.RateLimitPerSecond > 1000 {
		return fmt.Errorf("STREAMING_RATE_LIMIT must be between 1 and 1000 messages per second")
	}
	if c.Streaming.WriteTimeout < 100*time.Millisecond {
		return fmt.Errorf("STREAMING_WRITE_TIMEOUT must be at least 100ms")
	}
	return nil
}

// validateEngagement validates the engagement event store configuration.
// An empty path runs the store in memory, which is intended for tests.
func (c *Config) validateEngagement() error {
	if c.Engagement.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be non-negative (0 uses all cores)")
	}
	if c.Engagement.RetentionDays < 1 || c.Engagement.RetentionDays > 3650 {
		return fmt.Errorf("ENGAGEMENT_RETENTION_DAYS must be between 1 and 3650")
	}
	return nil
}

// validateNATS validates NATS event stream configuration (only if enabled)
func (c *Config) validateNATS() error {
	if !c.NATS.Enabled {
		return nil
	}

	if !c.NATS.EmbeddedServer {
		if c.NATS.URL == "" {
			return fmt.Errorf("NATS_URL is required when NATS_ENABLED=true and NATS_EMBEDDED=false")
		}
		if err := validateNATSURL(c.NATS.URL); err != nil {
			return fmt.Errorf("NATS_URL is invalid: %w", err)
		}
	}
	if c.NATS.EmbeddedServer && c.NATS.StoreDir == "" {
		return fmt.Errorf("NATS_STORE_DIR is required when NATS_EMBEDDED=true")
	}
	if c.NATS.StreamName == "" {
		return fmt.Errorf("NATS_STREAM is required when NATS_ENABLED=true")
	}
	if c.NATS.SubjectPrefix == "" {
		return fmt.Errorf("NATS_SUBJECT_PREFIX is required when NATS_ENABLED=true")
	}
	if c.NATS.PublishTimeout < 100*time.Millisecond || c.NATS.PublishTimeout > time.Minute {
		return fmt.Errorf("NATS_PUBLISH_TIMEOUT must be between 100ms and 1m")
	}
	return nil
}

// validLogLevels defines the allowed log levels
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the allowed log formats
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// placeholderPatterns defines common placeholder patterns that indicate
// the user forgot to set a real value. This prevents accidental deployment
// with insecure default credentials.
var placeholderPatterns = []string{
	"REPLACE",
	"CHANGEME",
	"CHANGE_ME",
	"YOUR_SECRET",
	"PLACEHOLDER",
	"EXAMPLE",
}

// containsPlaceholder checks if a value contains common placeholder patterns
// that indicate the user forgot to set a real value.
func containsPlaceholder(value string) bool {
	upperValue := strings.ToUpper(value)
	for _, pattern := range placeholderPatterns {
		if strings.Contains(upperValue, pattern) {
			return true
		}
	}
	return false
}
