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
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/chronographus/internal/config"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func testManager(t *testing.T, cfg config.AuthConfig) *TokenManager {
	t.Helper()
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = testSecret
	}
	m, err := NewTokenManager(cfg)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	return m
}

func TestTokenManagerRequiresSecret(t *testing.T) {
	if _, err := NewTokenManager(config.AuthConfig{}); err == nil {
		t.Fatal("NewTokenManager without secret succeeded")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	m := testManager(t, config.AuthConfig{})

	token, err := m.Issue("alice", true)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Subject != "alice" {
		t.Errorf("Subject = %q, want alice", claims.Subject)
	}
	if !claims.Admin {
		t.Error("Admin claim lost in round trip")
	}
}

func TestTokenWrongSecretRejected(t *testing.T) {
	issuer := testManager(t, config.AuthConfig{})
	verifier := testManager(t, config.AuthConfig{JWTSecret: "ffffffffffffffffffffffffffffffff"})

	token, err := issuer.Issue("alice", false)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := verifier.Verify(token); err == nil {
		t.Error("token signed with different secret verified")
	}
}

func TestTokenIssuerAudienceChecks(t *testing.T) {
	strict := testManager(t, config.AuthConfig{JWTIssuer: "chronographus", JWTAudience: "timeline-api"})
	plain := testManager(t, config.AuthConfig{})

	good, err := strict.Issue("alice", false)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := strict.Verify(good); err != nil {
		t.Errorf("Verify with matching issuer/audience: %v", err)
	}

	// Token issued without issuer or audience must fail strict checks.
	bare, err := plain.Issue("alice", false)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := strict.Verify(bare); err == nil {
		t.Error("token without issuer/audience passed strict verification")
	}
}

func TestTokenSubjectRequired(t *testing.T) {
	m := testManager(t, config.AuthConfig{})
	token, err := m.Issue("", false)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := m.Verify(token); err == nil {
		t.Error("token without subject verified")
	}
}

func signExpired(t *testing.T, secret, subject string) string {
	t.Helper()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign expired token: %v", err)
	}
	return signed
}

func TestJWTAuthenticator(t *testing.T) {
	m := testManager(t, config.AuthConfig{})
	a := NewJWTAuthenticator(m)
	ctx := context.Background()

	t.Run("no header", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		if _, err := a.Authenticate(ctx, r); !errors.Is(err, ErrNoCredentials) {
			t.Errorf("error = %v, want ErrNoCredentials", err)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("Authorization", "Bearer not.a.token")
		if _, err := a.Authenticate(ctx, r); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("error = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("Authorization", "Bearer "+signExpired(t, testSecret, "alice"))
		if _, err := a.Authenticate(ctx, r); !errors.Is(err, ErrExpiredCredentials) {
			t.Errorf("error = %v, want ErrExpiredCredentials", err)
		}
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := m.Issue("alice", true)
		if err != nil {
			t.Fatalf("Issue: %v", err)
		}
		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("Authorization", "Bearer "+token)

		identity, err := a.Authenticate(ctx, r)
		if err != nil {
			t.Fatalf("Authenticate: %v", err)
		}
		if identity.Subject != "alice" || !identity.Admin || identity.Method != ModeJWT {
			t.Errorf("identity = %+v, want alice/admin/jwt", identity)
		}
	})
}
