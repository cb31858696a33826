// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package auth

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/tomtom215/chronographus/internal/config"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		input   string
		want    Mode
		wantErr bool
	}{
		{"", ModeHeader, false},
		{"header", ModeHeader, false},
		{"jwt", ModeJWT, false},
		{"oidc", ModeOIDC, false},
		{"basic", "", true},
		{"JWT", "", true},
	}

	for _, tt := range tests {
		got, err := ParseMode(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCallerIdentityAsserted(t *testing.T) {
	if (CallerIdentity{}).Asserted() {
		t.Error("empty identity reported as asserted")
	}
	if !(CallerIdentity{Subject: "alice"}).Asserted() {
		t.Error("named identity reported as unasserted")
	}
}

func TestNewSelectsMode(t *testing.T) {
	ctx := context.Background()

	headerAuth, err := New(ctx, config.AuthConfig{Mode: "header"})
	if err != nil {
		t.Fatalf("New(header): %v", err)
	}
	if headerAuth.Name() != "header" {
		t.Errorf("Name = %q, want header", headerAuth.Name())
	}

	jwtAuth, err := New(ctx, config.AuthConfig{Mode: "jwt", JWTSecret: "0123456789abcdef0123456789abcdef"})
	if err != nil {
		t.Fatalf("New(jwt): %v", err)
	}
	if jwtAuth.Name() != "jwt" {
		t.Errorf("Name = %q, want jwt", jwtAuth.Name())
	}

	if _, err := New(ctx, config.AuthConfig{Mode: "jwt"}); err == nil {
		t.Error("New(jwt) without secret succeeded")
	}
	if _, err := New(ctx, config.AuthConfig{Mode: "oidc"}); err == nil {
		t.Error("New(oidc) without issuer succeeded")
	}
	if _, err := New(ctx, config.AuthConfig{Mode: "ldap"}); err == nil {
		t.Error("New with unknown mode succeeded")
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"absent", "", ""},
		{"bearer", "Bearer abc.def.ghi", "abc.def.ghi"},
		{"case insensitive scheme", "bearer tok", "tok"},
		{"basic scheme", "Basic dXNlcjpwYXNz", ""},
		{"scheme only", "Bearer", ""},
		{"padded", "Bearer   tok  ", "tok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			if got := bearerToken(r); got != tt.want {
				t.Errorf("bearerToken = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMapVerificationError(t *testing.T) {
	if mapVerificationError(nil) != nil {
		t.Error("nil error mapped to non-nil")
	}
	if !errors.Is(mapVerificationError(errors.New("token is expired")), ErrExpiredCredentials) {
		t.Error("expired error not mapped to ErrExpiredCredentials")
	}
	if !errors.Is(mapVerificationError(errors.New("signature mismatch")), ErrInvalidCredentials) {
		t.Error("verification error not mapped to ErrInvalidCredentials")
	}
}

func TestBoolClaim(t *testing.T) {
	tests := []struct {
		name   string
		claims map[string]any
		want   bool
	}{
		{"nil map", nil, false},
		{"absent", map[string]any{}, false},
		{"bool true", map[string]any{"admin": true}, true},
		{"bool false", map[string]any{"admin": false}, false},
		{"string true", map[string]any{"admin": "true"}, true},
		{"string one", map[string]any{"admin": "1"}, true},
		{"string other", map[string]any{"admin": "yes"}, false},
		{"wrong type", map[string]any{"admin": 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := boolClaim(tt.claims, "admin"); got != tt.want {
				t.Errorf("boolClaim = %v, want %v", got, tt.want)
			}
		})
	}
}
