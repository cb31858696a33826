// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package timeline

import "errors"

// Sentinel errors carrying the failure kind across package boundaries.
// Callers wrap them with fmt.Errorf("...: %w", err) and the transport
// layer maps them to wire codes via errors.Is.
var (
	// ErrUnauthorized means the caller is neither the viewer nor an admin.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited means a token bucket denied the request.
	ErrRateLimited = errors.New("rate limited")

	// ErrInvalidArgument means the request was malformed.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrDeadlineExceeded means the budget ran out before any source
	// returned.
	ErrDeadlineExceeded = errors.New("deadline exceeded")

	// ErrInternal means the ranker or filter failed unexpectedly.
	ErrInternal = errors.New("internal error")

	// ErrUnavailable means a required backend was unreachable with no
	// cached fallback.
	ErrUnavailable = errors.New("unavailable")
)
