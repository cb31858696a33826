// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/chronographus/config.yaml",
	"/etc/chronographus/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// EnvPrefix is the generic environment variable prefix. Any setting can
// be addressed as CHRONO_<SECTION>__<KEY>, e.g.
// CHRONO_TIMELINE__MAX_ITEMS=100 maps to timeline.max_items.
const EnvPrefix = "CHRONO_"

// Load loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
//
// Two environment variable styles are accepted: short well-known names
// (HTTP_PORT, LOG_LEVEL, TIMELINE_MAX_ITEMS) and the generic
// CHRONO_<SECTION>__<KEY> form. The generic form wins when both are set.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Short well-known environment variables
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Layer 4: Generic CHRONO_ prefixed environment variables
	if err := k.Load(env.Provider(EnvPrefix, ".", prefixTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load prefixed environment variables: %w", err)
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	// Check environment variable first
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"api.cors_origins",
	"auth.admin_users",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// This is necessary because env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// If it's already a slice (from YAML file), skip
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		// If it's a string, split by comma
		if strVal, ok := val.(string); ok {
			if strVal == "" {
				continue
			}
			parts := strings.Split(strVal, ",")
			trimmed := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					trimmed = append(trimmed, p)
				}
			}
			if len(trimmed) > 0 {
				if err := k.Set(path, trimmed); err != nil {
					return fmt.Errorf("failed to set %s: %w", path, err)
				}
			}
		}
	}
	return nil
}

// prefixTransformFunc maps CHRONO_ prefixed variables to config paths.
// Double underscores separate path segments:
//
//	CHRONO_TIMELINE__MAX_ITEMS -> timeline.max_items
//	CHRONO_CACHE__DURABLE_ENABLED -> cache.durable_enabled
func prefixTransformFunc(key string) string {
	key = strings.TrimPrefix(key, EnvPrefix)
	key = strings.ToLower(key)
	return strings.ReplaceAll(key, "__", ".")
}

// envTransformFunc transforms well-known environment variable names to
// koanf config paths.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - TIMELINE_MAX_ITEMS -> timeline.max_items
//   - DUCKDB_PATH -> engagement.path
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Server mappings
		"http_port":    "server.port",
		"http_host":    "server.host",
		"http_timeout": "server.timeout",
		"environment":  "server.environment",

		// API mappings
		"api_default_page_size": "api.default_page_size",
		"api_max_page_size":     "api.max_page_size",
		"rate_limit_rpm":        "api.rate_limit_rpm",
		"rate_limit_burst":      "api.rate_limit_burst",
		"ip_rate_limit_rpm":     "api.ip_rate_limit_rpm",
		"disable_rate_limit":    "api.rate_limit_disabled",
		"cors_origins":          "api.cors_origins",
		"swagger_enabled":       "api.swagger_enabled",

		// Auth mappings
		"auth_mode":          "auth.mode",
		"jwt_secret":         "auth.jwt_secret",
		"shared_token_hash":  "auth.shared_token_hash",
		"admin_users":        "auth.admin_users",
		"authz_policy_path":  "auth.policy_path",
		"jwt_issuer":         "auth.jwt_issuer",
		"jwt_audience":       "auth.jwt_audience",
		"oidc_issuer_url":    "auth.oidc.issuer_url",
		"oidc_client_id":     "auth.oidc.client_id",
		"oidc_client_secret": "auth.oidc.client_secret",
		"oidc_audience":      "auth.oidc.audience",

		// Timeline mappings
		"timeline_algorithm":        "timeline.algorithm",
		"timeline_max_items":        "timeline.max_items",
		"timeline_max_age_hours":    "timeline.max_age_hours",
		"timeline_min_score":        "timeline.min_score_threshold",
		"timeline_assembly_budget":  "timeline.assembly_budget",
		"timeline_cache_ttl":        "timeline.cache_ttl",
		"timeline_refresh_interval": "timeline.refresh_min_interval",
		"weight_recency":            "timeline.weight_recency",
		"weight_engagement":         "timeline.weight_engagement",
		"weight_author_affinity":    "timeline.weight_author_affinity",
		"weight_content_quality":    "timeline.weight_content_quality",
		"weight_diversity":          "timeline.weight_diversity",
		"ratio_following":           "timeline.ratio_following",
		"ratio_recommended":         "timeline.ratio_recommended",
		"ratio_trending":            "timeline.ratio_trending",
		"ratio_lists":               "timeline.ratio_lists",

		// Cache mappings
		"cache_timeline_capacity": "cache.timeline_capacity",
		"cache_profile_capacity":  "cache.profile_capacity",
		"cache_lastread_capacity": "cache.lastread_capacity",
		"cache_profile_ttl":       "cache.profile_ttl",
		"cache_lastread_ttl":      "cache.lastread_ttl",
		"cache_cleanup_interval":  "cache.cleanup_interval",
		"cache_durable_enabled":   "cache.durable_enabled",
		"cache_durable_path":      "cache.durable_path",
		"cache_durable_sync":      "cache.durable_sync_writes",

		// Sources mappings
		"sources_fetch_limit":       "sources.fetch_limit",
		"follow_set_ttl":            "sources.follow_set_ttl",
		"recommended_lookback":      "sources.recommended_lookback",
		"trending_refresh_interval": "sources.trending_refresh_interval",
		"trending_window_hours":     "sources.trending_window_hours",

		// Overdrive mappings
		"overdrive_enabled": "overdrive.enabled",
		"overdrive_url":     "overdrive.url",
		"overdrive_timeout": "overdrive.timeout",

		// Fanout mappings
		"fanout_queue_capacity":  "fanout.queue_capacity",
		"fanout_max_retries":     "fanout.max_retries",
		"fanout_retry_backoff":   "fanout.retry_backoff",
		"fanout_shard_threshold": "fanout.shard_threshold",

		// Streaming mappings
		"streaming_enabled":            "streaming.enabled",
		"streaming_heartbeat_interval": "streaming.heartbeat_interval",
		"streaming_queue_size":         "streaming.session_queue_size",
		"streaming_rate_limit":         "streaming.rate_limit_per_second",
		"streaming_write_timeout":      "streaming.write_timeout",

		// Engagement store mappings
		"duckdb_path":               "engagement.path",
		"duckdb_max_memory":         "engagement.max_memory",
		"duckdb_threads":            "engagement.threads",
		"engagement_retention_days": "engagement.retention_days",

		// NATS mappings
		"nats_enabled":         "nats.enabled",
		"nats_url":             "nats.url",
		"nats_embedded":        "nats.embedded_server",
		"nats_store_dir":       "nats.store_dir",
		"nats_stream":          "nats.stream_name",
		"nats_subject_prefix":  "nats.subject_prefix",
		"nats_durable_name":    "nats.durable_name",
		"nats_queue_group":     "nats.queue_group",
		"nats_publish_timeout": "nats.publish_timeout",

		// Logging mappings
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// For unmapped keys, return empty string to skip them
	// This prevents random environment variables from polluting config
	return ""
}

// WatchConfigFile sets up a file watcher for hot-reload capability.
// Note: The caller is responsible for mutex protection when accessing
// configuration during reloads.
func WatchConfigFile(path string, callback func()) error {
	provider := file.Provider(path)

	return provider.Watch(func(event interface{}, err error) {
		if err != nil {
			return
		}
		callback()
	})
}
