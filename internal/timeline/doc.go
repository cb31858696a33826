// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

// Package timeline assembles ranked timelines. The Service resolves
// per-request configuration from defaults, stored viewer preferences and
// request overrides, probes the tiered cache, fetches candidates from the
// registered sources in parallel, filters, ranks, enforces per-source
// caps and paginates.
//
// Failure policy: a failed source contributes nothing; a ranker failure
// falls back to chronological ordering; a filter failure fails the whole
// request closed. Sentinel errors (ErrUnauthorized, ErrRateLimited, ...)
// carry the failure kind to the transport layer through errors.Is.
package timeline
