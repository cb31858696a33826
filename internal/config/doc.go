// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

/*
Package config provides centralized configuration management for Chronographus.

This package handles loading, validation, and parsing of configuration for all
application components. It ensures consistent configuration across the backend
services and provides sensible defaults for optional settings.

# Configuration Sources

Configuration is loaded in layers, later layers overriding earlier ones:

 1. Built-in defaults for every setting
 2. Optional YAML config file (config.yaml, or the path in CONFIG_PATH)
 3. Well-known environment variables (HTTP_PORT, LOG_LEVEL, ...)
 4. Generic CHRONO_<SECTION>__<KEY> environment variables

# Configuration Structure

The package organizes configuration into logical groups:

  - ServerConfig: HTTP server settings (host, port, timeouts)
  - APIConfig: Pagination, rate limiting, CORS, Swagger
  - AuthConfig: Caller identity (header, jwt, oidc modes)
  - TimelineConfig: Assembly algorithm, signal weights, source ratios
  - CacheConfig: Memory tier capacities and the durable tier
  - SourcesConfig: Candidate source fetch limits and refresh cadence
  - OverdriveConfig: External re-ranking service
  - FanoutConfig: Invalidation worker queue and retry policy
  - StreamingConfig: WebSocket delivery settings
  - EngagementConfig: DuckDB engagement event store
  - NATSConfig: JetStream note event bridge
  - LoggingConfig: Level, format, caller annotation

# Environment Variables

Commonly used variables by component:

HTTP Server (ServerConfig):
  - HTTP_HOST: Bind address (default: 0.0.0.0)
  - HTTP_PORT: Listen port (default: 8080)
  - HTTP_TIMEOUT: Read/write timeout (default: 30s)
  - ENVIRONMENT: production or development (default: development)

Authentication (AuthConfig):
  - AUTH_MODE: Authentication mode (header, jwt, oidc)
  - JWT_SECRET: JWT signing secret (min 32 chars, required for jwt mode)
  - SHARED_TOKEN_HASH: bcrypt hash of the service-to-service token
  - ADMIN_USERS: Comma-separated viewer IDs granted the admin role
  - OIDC_ISSUER_URL / OIDC_CLIENT_ID: Required for oidc mode

Timeline Assembly (TimelineConfig):
  - TIMELINE_ALGORITHM: chronological, engagement, or hybrid (default: hybrid)
  - TIMELINE_MAX_ITEMS: Items per assembled timeline (default: 50)
  - TIMELINE_MAX_AGE_HOURS: Note age cutoff (default: 24)
  - TIMELINE_MIN_SCORE: Score floor for hybrid ranking (default: 0.1)
  - TIMELINE_ASSEMBLY_BUDGET: Wall-clock budget per assembly (default: 2s)
  - WEIGHT_RECENCY .. WEIGHT_DIVERSITY: Signal weights
  - RATIO_FOLLOWING .. RATIO_LISTS: Source mix ratios

Caching (CacheConfig):
  - CACHE_TIMELINE_CAPACITY: Timeline LRU entries (default: 10000)
  - TIMELINE_CACHE_TTL: Assembled timeline TTL (default: 5m)
  - CACHE_DURABLE_ENABLED: Enable the BadgerDB tier (default: false)
  - CACHE_DURABLE_PATH: BadgerDB directory (required when enabled)

Engagement Store (EngagementConfig):
  - DUCKDB_PATH: Event log path (default: /data/chronographus/engagement.duckdb)
  - ENGAGEMENT_RETENTION_DAYS: Event retention (default: 90)

Event Stream (NATSConfig):
  - NATS_ENABLED: Enable the JetStream bridge (default: false)
  - NATS_EMBEDDED: Run an embedded server (default: true)
  - NATS_URL: External server URL when not embedded

Any setting without a short name is reachable through the generic form, e.g.
CHRONO_FANOUT__QUEUE_CAPACITY=50000 maps to fanout.queue_capacity.

# Usage Example

Basic configuration loading:

	import "github.com/tomtom215/chronographus/internal/config"

	cfg, err := config.Load()
	if err != nil {
	    log.Fatalf("Failed to load config: %v", err)
	}

	fmt.Printf("Starting server on %s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("Timeline algorithm: %s\n", cfg.Timeline.Algorithm)

# Validation

Load() validates the assembled configuration before returning it:

  - Required fields: JWT_SECRET (jwt mode), OIDC_ISSUER_URL (oidc mode),
    CACHE_DURABLE_PATH (when the durable tier is enabled)
  - Numeric ranges: HTTP_PORT (1-65535), TIMELINE_MAX_ITEMS (1-500)
  - Duration ranges: TIMELINE_ASSEMBLY_BUDGET (100ms-30s)
  - URL formats: OVERDRIVE_URL, NATS_URL, OIDC_ISSUER_URL
  - Secrets: JWT_SECRET length and placeholder detection, SHARED_TOKEN_HASH
    must be a bcrypt hash rather than a plaintext token

# Thread Safety

The Config struct is immutable after Load() returns, making it safe for
concurrent access from multiple goroutines without synchronization.
*/
package config
