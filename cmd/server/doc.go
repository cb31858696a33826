// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

/*
Package main is the entry point for the Chronographus server application.

Chronographus assembles ranked, personalized timelines over a social
graph: weighted candidate sources, mute and safety filtering, a
multi-signal ranker with diversity shaping, a two-tier result cache,
fan-out invalidation on new notes, and live timeline updates over
WebSocket.

# Application Architecture

The server implements a layered architecture with Suture v4 process
supervision:

	RootSupervisor ("chronographus")
	├── DataSupervisor ("data-layer")
	│   ├── engagement retention pruner (DuckDB)
	│   ├── trending candidate refresher
	│   └── cache janitor
	├── DeliverySupervisor ("delivery-layer")
	│   ├── streaming hub (WebSocket updates)
	│   ├── fan-out worker
	│   └── event bridge (optional, -tags nats)
	└── APISupervisor ("api-layer")
	    ├── rate limiter janitor
	    └── HTTP server (chi router)

Component initialization order:

 1. Configuration: Koanf v2 with environment variables and config files
 2. Logging: zerolog with JSON/console output modes
 3. Note store: in-memory notes, follow graph and curated lists
 4. Engagement store: DuckDB analytics log (non-fatal when unavailable)
 5. Cache: in-memory tiers plus optional durable BadgerDB tier
 6. Candidate sources: following, recommended, trending, lists
 7. Timeline service: assembly, ranking, pagination, preferences
 8. Fan-out worker and streaming hub
 9. Event bridge: NATS JetStream note events (optional, -tags nats)
 10. Auth: header, JWT or OIDC authenticator plus casbin role guard
 11. Supervisor tree and HTTP server

# Configuration

Configuration is loaded via Koanf v2 with layered sources (highest
priority wins):

	Priority: Environment variables > Config file > Defaults

Core environment variables:

	# Server
	HTTP_PORT=8080               # HTTP listen port
	LOG_LEVEL=info               # trace, debug, info, warn, error
	LOG_FORMAT=json              # json or console

	# Authentication (choose one mode)
	AUTH_MODE=header             # header, jwt, or oidc
	SHARED_TOKEN_HASH=<bcrypt>   # Optional service token for header mode
	JWT_SECRET=<32+ chars>       # Required for jwt mode
	OIDC_ISSUER_URL=...          # Required for oidc mode
	OIDC_CLIENT_ID=...

	# Timeline defaults
	TIMELINE_ALGORITHM=hybrid    # chronological or hybrid
	TIMELINE_MAX_ITEMS=50
	RATIO_FOLLOWING=0.7 RATIO_RECOMMENDED=0.2 RATIO_TRENDING=0.1

	# Durable cache tier
	CACHE_DURABLE_ENABLED=false
	CACHE_DURABLE_PATH=/data/chronographus/cache

	# Engagement analytics
	DUCKDB_PATH=/data/chronographus/engagement.duckdb
	ENGAGEMENT_RETENTION_DAYS=90

	# Event bridge (requires -tags nats)
	NATS_ENABLED=false
	NATS_EMBEDDED=true
	NATS_STORE_DIR=/data/chronographus/nats

Any setting can also be addressed generically as CHRONO_<SECTION>__<KEY>,
e.g. CHRONO_TIMELINE__MAX_ITEMS=100.

# Build Tags

Optional build tags enable additional functionality:

	go build ./cmd/server                    # Standard build
	go build -tags nats ./cmd/server         # Enable the NATS event bridge
	go test -tags integration ./...          # Container-backed tests

Without the nats tag the bridge constructor returns ErrBridgeDisabled;
enabling NATS_ENABLED on such a binary is a startup error so a
misconfigured deploy fails loudly instead of silently dropping events.

# Signal Handling

The server handles graceful shutdown on SIGINT and SIGTERM:

 1. Stops accepting new HTTP connections
 2. Closes WebSocket subscriptions through the streaming hub
 3. Waits for in-flight requests (10s timeout)
 4. Drains the supervisor tree layer by layer
 5. Closes the event bridge, cache tiers and engagement store
 6. Reports any services that failed to stop

# Usage Examples

Development (trusted headers, no external services):

	export AUTH_MODE=header LOG_FORMAT=console
	go run ./cmd/server

Production (JWT, durable cache, event bridge):

	export AUTH_MODE=jwt
	export JWT_SECRET=$(openssl rand -base64 32)
	export CACHE_DURABLE_ENABLED=true CACHE_DURABLE_PATH=/data/cache
	export NATS_ENABLED=true NATS_EMBEDDED=true NATS_STORE_DIR=/data/nats
	./chronographus

Docker:

	docker run -d \
	  -e AUTH_MODE=jwt \
	  -e JWT_SECRET=change-me-change-me-change-me-32 \
	  -p 8080:8080 \
	  ghcr.io/tomtom215/chronographus

# API Documentation

Swagger documentation is available at /swagger/index.html when the
server is running. Endpoints are grouped into:

  - Timeline: general, for-you, following and per-user reads, refresh,
    read marks, WebSocket subscription
  - Engagement: interaction recording
  - Preferences: config overlay, mutes
  - Operations: health, Prometheus metrics

# See Also

  - internal/config: Configuration management
  - internal/supervisor: Process supervision
  - internal/timeline: Assembly and ranking pipeline
  - internal/api: HTTP handlers and routing
*/
package main
