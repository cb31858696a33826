// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package auth

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/zitadel/oidc/v3/pkg/client/rp"
	"github.com/zitadel/oidc/v3/pkg/oidc"

	"github.com/tomtom215/chronographus/internal/config"
	"github.com/tomtom215/chronographus/internal/logging"
)

// adminClaim is the boolean ID-token claim that elevates a caller.
const adminClaim = "admin"

// OIDCAuthenticator verifies bearer ID tokens with the issuer's
// certified verifier. Discovery runs once at startup; JWKS fetching and
// caching are handled by the relying party.
type OIDCAuthenticator struct {
	relyingParty rp.RelyingParty
	audience     string
}

// NewOIDCAuthenticator performs OIDC discovery and builds the verifier.
func NewOIDCAuthenticator(ctx context.Context, cfg config.OIDCConfig) (*OIDCAuthenticator, error) {
	if cfg.IssuerURL == "" {
		return nil, fmt.Errorf("issuer_url is required")
	}
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("client_id is required")
	}

	// No redirect URL: this service is a resource server, not a login
	// frontend, so only token verification is exercised.
	relyingParty, err := rp.NewRelyingPartyOIDC(ctx,
		cfg.IssuerURL,
		cfg.ClientID,
		cfg.ClientSecret,
		"",
		[]string{oidc.ScopeOpenID},
	)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery failed: %w", err)
	}

	authLog := logging.WithComponent("auth")
	authLog.Info().
		Str("issuer", cfg.IssuerURL).
		Str("client_id", cfg.ClientID).
		Msg("OIDC relying party initialized")

	return &OIDCAuthenticator{
		relyingParty: relyingParty,
		audience:     cfg.Audience,
	}, nil
}

// Authenticate verifies the bearer ID token and maps its claims.
func (a *OIDCAuthenticator) Authenticate(ctx context.Context, r *http.Request) (CallerIdentity, error) {
	tokenStr := bearerToken(r)
	if tokenStr == "" {
		return CallerIdentity{}, ErrNoCredentials
	}

	verifier := a.relyingParty.IDTokenVerifier()
	claims, err := rp.VerifyIDToken[*oidc.IDTokenClaims](ctx, tokenStr, verifier)
	if err != nil {
		return CallerIdentity{}, mapVerificationError(err)
	}

	if a.audience != "" && !slices.Contains(claims.Audience, a.audience) {
		return CallerIdentity{}, fmt.Errorf("%w: audience mismatch", ErrInvalidCredentials)
	}

	return CallerIdentity{
		Subject: claims.Subject,
		Admin:   boolClaim(claims.Claims, adminClaim),
		Method:  ModeOIDC,
	}, nil
}

// Name identifies the authenticator in logs.
func (a *OIDCAuthenticator) Name() string { return string(ModeOIDC) }

// boolClaim reads a claim that issuers emit as bool or string.
func boolClaim(claims map[string]any, name string) bool {
	if claims == nil {
		return false
	}
	switch v := claims[name].(type) {
	case bool:
		return v
	case string:
		return isTruthy(v)
	default:
		return false
	}
}

// mapVerificationError folds verifier failures into the package
// sentinels so transport code can classify without string matching.
func mapVerificationError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "expired") {
		return ErrExpiredCredentials
	}
	return fmt.Errorf("%w: %s", ErrInvalidCredentials, msg)
}

var _ Authenticator = (*OIDCAuthenticator)(nil)
