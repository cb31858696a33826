// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package api

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/tomtom215/chronographus/internal/auth"
	"github.com/tomtom215/chronographus/internal/logging"
	"github.com/tomtom215/chronographus/internal/metrics"
)

const headerRequestID = "X-Request-ID"

type contextKey string

const identityKey contextKey = "caller_identity"

// withIdentity stores the admitted caller identity on the context.
func withIdentity(ctx context.Context, caller auth.CallerIdentity) context.Context {
	return context.WithValue(ctx, identityKey, caller)
}

// identityFrom returns the admitted caller identity. Routes outside the
// admission chain see the zero (unasserted) identity.
func identityFrom(ctx context.Context) auth.CallerIdentity {
	if caller, ok := ctx.Value(identityKey).(auth.CallerIdentity); ok {
		return caller
	}
	return auth.CallerIdentity{}
}

// RequestID propagates or assigns the X-Request-ID header and threads
// the id through the logging context.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(headerRequestID)
			if id == "" {
				id = logging.NewRequestID()
			}
			w.Header().Set(headerRequestID, id)
			next.ServeHTTP(w, r.WithContext(logging.WithRequestID(r.Context(), id)))
		})
	}
}

// RequestLogger records per-request metrics and a debug-level
// completion log. Route patterns keep the metric cardinality bounded.
func RequestLogger() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			endpoint := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					endpoint = pattern
				}
			}
			elapsed := time.Since(start)
			metrics.RecordAPIRequest(r.Method, endpoint, strconv.Itoa(ww.Status()), elapsed)

			logging.Ctx(r.Context()).Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("elapsed", elapsed).
				Msg("request completed")
		})
	}
}

// admit authenticates the caller and charges one token from the
// per-(class, caller) bucket. The resolved identity rides the context
// for the handler's viewer check. Unasserted callers bucket by IP.
func (h *Handlers) admit(class string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, err := h.authn.Authenticate(r.Context(), r)
			if err != nil {
				logging.Ctx(r.Context()).Debug().Err(err).
					Str("mode", h.authn.Name()).
					Str("path", r.URL.Path).
					Msg("authentication failed")
				WriteError(w, r, http.StatusUnauthorized, CodeUnauthorized, err.Error())
				return
			}

			key := caller.Subject
			if key == "" {
				key = clientIP(r)
			}
			if h.limiter != nil && !h.limiter.Allow(class, key, rateOverride(r)) {
				WriteError(w, r, http.StatusTooManyRequests, CodeRateLimited,
					"rate limit exceeded for "+class)
				return
			}

			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), caller)))
		})
	}
}

// clientIP extracts the caller address, already rewritten by the RealIP
// middleware when the request came through a proxy.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
