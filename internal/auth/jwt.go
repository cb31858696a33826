// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/chronographus/internal/config"
)

// tokenTTL bounds tokens issued by this service's own manager.
const tokenTTL = 24 * time.Hour

// Claims carries the caller identity inside an HS256 token.
type Claims struct {
	Admin bool `json:"admin,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 tokens.
type TokenManager struct {
	secret   []byte
	issuer   string
	audience string
}

// NewTokenManager builds a manager from the auth config. The secret is
// required; issuer and audience are enforced only when configured.
func NewTokenManager(cfg config.AuthConfig) (*TokenManager, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt_secret is required")
	}
	return &TokenManager{
		secret:   []byte(cfg.JWTSecret),
		issuer:   cfg.JWTIssuer,
		audience: cfg.JWTAudience,
	}, nil
}

// Issue signs a token for the subject. Used by operational tooling and
// tests; the service itself has no login surface.
func (m *TokenManager) Issue(subject string, admin bool) (string, error) {
	now := time.Now()
	claims := &Claims{
		Admin: admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    m.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	if m.audience != "" {
		claims.Audience = jwt.ClaimStrings{m.audience}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, returning its claims.
func (m *TokenManager) Verify(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}
	if m.audience != "" {
		opts = append(opts, jwt.WithAudience(m.audience))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("token has no subject")
	}
	return claims, nil
}

// JWTAuthenticator verifies bearer tokens signed by the deployment.
type JWTAuthenticator struct {
	manager *TokenManager
}

// NewJWTAuthenticator wraps a token manager as an Authenticator.
func NewJWTAuthenticator(manager *TokenManager) *JWTAuthenticator {
	return &JWTAuthenticator{manager: manager}
}

// Authenticate extracts and verifies the bearer token.
func (a *JWTAuthenticator) Authenticate(_ context.Context, r *http.Request) (CallerIdentity, error) {
	tokenStr := bearerToken(r)
	if tokenStr == "" {
		return CallerIdentity{}, ErrNoCredentials
	}

	claims, err := a.manager.Verify(tokenStr)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return CallerIdentity{}, ErrExpiredCredentials
		}
		return CallerIdentity{}, fmt.Errorf("%w: %s", ErrInvalidCredentials, err)
	}

	return CallerIdentity{
		Subject: claims.Subject,
		Admin:   claims.Admin,
		Method:  ModeJWT,
	}, nil
}

// Name identifies the authenticator in logs.
func (a *JWTAuthenticator) Name() string { return string(ModeJWT) }

var _ Authenticator = (*JWTAuthenticator)(nil)
