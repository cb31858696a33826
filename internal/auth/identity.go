// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

// Package auth resolves caller identity from incoming requests. Three
// modes are supported, selected by config: trusted gateway headers,
// HS256 bearer tokens, and OIDC ID tokens. All modes normalize into the
// same CallerIdentity consumed by the authorization check.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tomtom215/chronographus/internal/config"
)

// Mode selects the authentication strategy.
type Mode string

const (
	// ModeHeader trusts gateway-asserted identity headers, optionally
	// gated by a shared service token.
	ModeHeader Mode = "header"

	// ModeJWT verifies HS256 bearer tokens.
	ModeJWT Mode = "jwt"

	// ModeOIDC verifies ID tokens against an OIDC issuer.
	ModeOIDC Mode = "oidc"
)

// ParseMode converts a config string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "header", "":
		return ModeHeader, nil
	case "jwt":
		return ModeJWT, nil
	case "oidc":
		return ModeOIDC, nil
	default:
		return "", fmt.Errorf("invalid auth mode: %q", s)
	}
}

// Standard authentication errors.
var (
	// ErrNoCredentials indicates required credentials were absent.
	ErrNoCredentials = errors.New("no credentials provided")

	// ErrInvalidCredentials indicates credentials failed verification.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrExpiredCredentials indicates credentials have expired.
	ErrExpiredCredentials = errors.New("credentials expired")
)

// CallerIdentity is the normalized result of authentication.
//
// An empty Subject means the caller asserted no identity at all. In
// header mode that is a legal state for trusted-gateway deployments:
// the authorization layer lets unasserted callers through, matching the
// upstream contract where identity checks bind only to asserted ids.
// Token modes always produce a non-empty Subject.
type CallerIdentity struct {
	// Subject is the caller's id, compared against viewer_id.
	Subject string

	// Admin reports whether the credentials asserted the admin role.
	// The final say belongs to the authz enforcer.
	Admin bool

	// Method names the mode that produced this identity, for logs.
	Method Mode
}

// Asserted reports whether the caller claimed a concrete identity.
func (c CallerIdentity) Asserted() bool { return c.Subject != "" }

// Authenticator resolves caller identity from a request.
type Authenticator interface {
	// Authenticate extracts and verifies credentials. It returns
	// ErrNoCredentials when required credentials are absent and
	// ErrInvalidCredentials or ErrExpiredCredentials when they fail.
	Authenticate(ctx context.Context, r *http.Request) (CallerIdentity, error)

	// Name identifies the authenticator in logs.
	Name() string
}

// New builds the authenticator selected by cfg.Mode.
func New(ctx context.Context, cfg config.AuthConfig) (Authenticator, error) {
	mode, err := ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}

	switch mode {
	case ModeHeader:
		return NewHeaderAuthenticator(cfg.SharedTokenHash), nil
	case ModeJWT:
		manager, err := NewTokenManager(cfg)
		if err != nil {
			return nil, fmt.Errorf("jwt auth: %w", err)
		}
		return NewJWTAuthenticator(manager), nil
	case ModeOIDC:
		authenticator, err := NewOIDCAuthenticator(ctx, cfg.OIDC)
		if err != nil {
			return nil, fmt.Errorf("oidc auth: %w", err)
		}
		return authenticator, nil
	default:
		return nil, fmt.Errorf("unhandled auth mode: %q", mode)
	}
}

// bearerToken extracts a Bearer token from the Authorization header.
// Returns empty string when the header is absent or not a bearer.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
