// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package auth

import (
	"context"
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

// Header names read by the header authenticator.
const (
	headerUserID    = "x-user-id"
	headerAdmin     = "x-admin"
	headerAuthToken = "x-auth-token"
)

// HeaderAuthenticator trusts gateway-asserted identity headers. When a
// shared token hash is configured, every request must additionally
// present the matching token, which gates the trust boundary to callers
// that hold the deployment secret.
type HeaderAuthenticator struct {
	tokenHash []byte
}

// NewHeaderAuthenticator builds the header-mode authenticator.
// sharedTokenHash is the bcrypt hash of the service token; empty
// disables the token check.
func NewHeaderAuthenticator(sharedTokenHash string) *HeaderAuthenticator {
	var hash []byte
	if sharedTokenHash != "" {
		hash = []byte(sharedTokenHash)
	}
	return &HeaderAuthenticator{tokenHash: hash}
}

// Authenticate reads the identity headers. With a configured shared
// token, a missing x-auth-token is ErrNoCredentials and a mismatch is
// ErrInvalidCredentials.
func (a *HeaderAuthenticator) Authenticate(_ context.Context, r *http.Request) (CallerIdentity, error) {
	if len(a.tokenHash) > 0 {
		token := r.Header.Get(headerAuthToken)
		if token == "" {
			return CallerIdentity{}, ErrNoCredentials
		}
		if bcrypt.CompareHashAndPassword(a.tokenHash, []byte(token)) != nil {
			return CallerIdentity{}, ErrInvalidCredentials
		}
	}

	return CallerIdentity{
		Subject: r.Header.Get(headerUserID),
		Admin:   isTruthy(r.Header.Get(headerAdmin)),
		Method:  ModeHeader,
	}, nil
}

// Name identifies the authenticator in logs.
func (a *HeaderAuthenticator) Name() string { return string(ModeHeader) }

func isTruthy(v string) bool { return v == "true" || v == "1" }

var _ Authenticator = (*HeaderAuthenticator)(nil)
