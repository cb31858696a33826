// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

/*
Package api provides the HTTP REST API layer for Chronographus.

It exposes the timeline read surface, engagement recording, viewer
preferences and the WebSocket subscription endpoint, plus the health,
metrics and swagger operational routes.

Key components:

  - Router: chi route configuration with per-endpoint-class admission
  - Handlers: request handlers binding transport to the timeline service
  - Response: the standard JSON envelope (success / data / error_code)
  - Admission: authentication, per-caller token buckets and the
    viewer-or-admin authorization check

Every data route runs through the same admission chain: the configured
Authenticator resolves the caller identity, the per-class rate limiter
charges one token, and the handler checks the caller may act for the
requested viewer before touching the pipeline.
*/
package api
