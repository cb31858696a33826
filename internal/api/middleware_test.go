// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/chronographus/internal/auth"
	"github.com/tomtom215/chronographus/internal/config"
	"github.com/tomtom215/chronographus/internal/logging"
)

func TestRequestIDPropagated(t *testing.T) {
	var inHandler string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inHandler = logging.RequestID(r.Context())
	})

	r := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.Header.Set(headerRequestID, "req-abc-123")
	rec := httptest.NewRecorder()
	RequestID()(next).ServeHTTP(rec, r)

	if got := rec.Header().Get(headerRequestID); got != "req-abc-123" {
		t.Errorf("Expected response header req-abc-123, got %q", got)
	}
	if inHandler != "req-abc-123" {
		t.Errorf("Expected request id on the context, got %q", inHandler)
	}
}

func TestRequestIDGenerated(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	rec := httptest.NewRecorder()
	RequestID()(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Header().Get(headerRequestID) == "" {
		t.Error("Expected a generated request id on the response")
	}
}

func TestAdmitStoresIdentity(t *testing.T) {
	h := &Handlers{authn: auth.NewHeaderAuthenticator("")}

	var subject string
	var admin bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller := identityFrom(r.Context())
		subject, admin = caller.Subject, caller.Admin
	})

	r := httptest.NewRequest(http.MethodGet, "/api/v1/timeline", nil)
	r.Header.Set("x-user-id", "alice")
	r.Header.Set("x-admin", "true")
	rec := httptest.NewRecorder()
	h.admit(auth.ClassTimeline)(next).ServeHTTP(rec, r)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	if subject != "alice" || !admin {
		t.Errorf("Expected admitted identity alice/admin, got %q/%v", subject, admin)
	}
}

func TestAdmitMissingSharedToken(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("service-secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	h := &Handlers{authn: auth.NewHeaderAuthenticator(string(hash))}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Expected the handler to be skipped on auth failure")
	})

	r := httptest.NewRequest(http.MethodGet, "/api/v1/timeline", nil)
	r.Header.Set("x-user-id", "alice")
	rec := httptest.NewRecorder()
	h.admit(auth.ClassTimeline)(next).ServeHTTP(rec, r)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("Expected status 401, got %d", rec.Code)
	}
	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Success || resp.ErrorCode != CodeUnauthorized {
		t.Errorf("Expected UNAUTHORIZED envelope, got success=%v code=%q", resp.Success, resp.ErrorCode)
	}
}

func TestAdmitChargesBucket(t *testing.T) {
	limiter := auth.NewRateLimiter(config.APIConfig{RateLimitRPM: 60, RateLimitBurst: 1})
	h := &Handlers{
		authn:   auth.NewHeaderAuthenticator(""),
		limiter: limiter,
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	handler := h.admit(auth.ClassTimeline)(next)

	send := func() *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodGet, "/api/v1/timeline", nil)
		r.Header.Set("x-user-id", "alice")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, r)
		return rec
	}

	if rec := send(); rec.Code != http.StatusOK {
		t.Fatalf("Expected first request admitted, got %d", rec.Code)
	}
	rec := send()
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected second request limited, got %d", rec.Code)
	}
	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.ErrorCode != CodeRateLimited {
		t.Errorf("Expected error code RATE_LIMITED, got %q", resp.ErrorCode)
	}
}

func TestAdmitBucketsPerCaller(t *testing.T) {
	limiter := auth.NewRateLimiter(config.APIConfig{RateLimitRPM: 60, RateLimitBurst: 1})
	h := &Handlers{
		authn:   auth.NewHeaderAuthenticator(""),
		limiter: limiter,
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	handler := h.admit(auth.ClassTimeline)(next)

	send := func(userID string) int {
		r := httptest.NewRequest(http.MethodGet, "/api/v1/timeline", nil)
		r.Header.Set("x-user-id", userID)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, r)
		return rec.Code
	}

	if got := send("alice"); got != http.StatusOK {
		t.Fatalf("Expected alice admitted, got %d", got)
	}
	if got := send("alice"); got != http.StatusTooManyRequests {
		t.Fatalf("Expected alice limited on second request, got %d", got)
	}
	if got := send("bob"); got != http.StatusOK {
		t.Errorf("Expected bob's bucket independent of alice's, got %d", got)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		remote string
		want   string
	}{
		{"10.0.0.7:51234", "10.0.0.7"},
		{"10.0.0.7", "10.0.0.7"},
		{"[::1]:8080", "::1"},
	}

	for _, tc := range tests {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = tc.remote
		if got := clientIP(r); got != tc.want {
			t.Errorf("clientIP(%q): expected %q, got %q", tc.remote, tc.want, got)
		}
	}
}
