// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

// Package main provides the Chronographus HTTP server
//
// Chronographus assembles ranked, personalized timelines over a social
// graph and streams incremental updates to connected viewers.
//
// @title Chronographus API
// @version 1.0
// @description Social graph timeline generation and ranking service
// @description
// @description ## Features
// @description
// @description - **Multi-source assembly**: following, recommended, trending and list candidates merged under per-source quotas and caps
// @description - **Hybrid ranking**: five normalized signals with diversity, novelty and repetition shaping
// @description - **Two-tier caching**: in-memory LRU plus optional durable BadgerDB tier
// @description - **Live updates**: WebSocket subscriptions fed by the fan-out worker
// @description - **Per-request overrides**: A/B source weights, caps, discovery share via x-* headers
// @description
// @description ## Authentication
// @description
// @description Identity is resolved per the configured mode: trusted x-user-id headers (optionally bcrypt
// @description token gated), HS256 JWT bearer tokens, or OIDC ID tokens. Every endpoint authorizes the
// @description caller against the viewer_id it acts for.
// @description
// @description ## Rate Limiting
// @description
// @description Per-caller token buckets per endpoint class (timeline, engagement, streaming, preferences),
// @description plus a coarse per-IP pre-limit. Callers can lower their own budget with the x-rate-rpm header.
// @description
// @description ## Error Responses
// @description
// @description All error responses follow this format:
// @description ```json
// @description {
// @description   "success": false,
// @description   "error_code": "ERROR_CODE",
// @description   "error_message": "Human-readable error message",
// @description   "meta": {
// @description     "request_id": "...",
// @description     "timestamp": "2026-08-25T12:34:56Z"
// @description   }
// @description }
// @description ```
//
// @contact.name GitHub Repository
// @contact.url https://github.com/tomtom215/chronographus/issues
//
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
//
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token (jwt and oidc modes). Header mode uses x-user-id plus optional x-auth-token instead.
//
// @tag.name Timeline
// @tag.description Timeline reads: general, for-you, following and per-user variants, refresh, read marks and the WebSocket subscription
//
// @tag.name Engagement
// @tag.description Interaction recording feeding affinity state and the analytics log
//
// @tag.name Preferences
// @tag.description Viewer configuration overlay and mute management
//
// @tag.name Operations
// @tag.description Health checks and Prometheus metrics
package main
