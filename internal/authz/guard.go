// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

// Package authz answers whether a caller may act on a viewer's behalf.
// Decisions run through a casbin enforcer with an embedded RBAC policy
// (roles user and admin, admin inheriting user), so deployments can
// swap in their own policy file without code changes.
package authz

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
	"github.com/rs/zerolog"

	"github.com/tomtom215/chronographus/internal/auth"
	"github.com/tomtom215/chronographus/internal/config"
	"github.com/tomtom215/chronographus/internal/logging"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// Role and grant vocabulary used by the embedded policy.
const (
	roleAdmin = "admin"
	roleUser  = "user"

	objectAnyTimeline = "timeline:any"
	actionAdminister  = "administer"
)

// Guard wraps the casbin enforcer behind the two checks the API layer
// needs: may this caller act for that viewer, and is this caller admin.
type Guard struct {
	enforcer *casbin.SyncedEnforcer

	allowed atomic.Int64
	denied  atomic.Int64

	logger zerolog.Logger
}

// NewGuard builds the enforcer from the embedded model and policy. A
// configured policy path replaces the embedded grants; admin_users from
// config always become admin role members on top.
func NewGuard(cfg config.AuthConfig) (*Guard, error) {
	m, err := model.NewModelFromString(embeddedModel)
	if err != nil {
		return nil, fmt.Errorf("failed to load authz model: %w", err)
	}

	var enforcer *casbin.SyncedEnforcer
	if cfg.PolicyPath != "" && fileExists(cfg.PolicyPath) {
		adapter := fileadapter.NewAdapter(cfg.PolicyPath)
		enforcer, err = casbin.NewSyncedEnforcer(m, adapter)
		if err != nil {
			return nil, fmt.Errorf("failed to create authz enforcer: %w", err)
		}
	} else {
		enforcer, err = casbin.NewSyncedEnforcer(m)
		if err != nil {
			return nil, fmt.Errorf("failed to create authz enforcer: %w", err)
		}
		if err := loadEmbeddedPolicy(enforcer, embeddedPolicy); err != nil {
			return nil, err
		}
	}

	for _, user := range cfg.AdminUsers {
		user = strings.TrimSpace(user)
		if user == "" {
			continue
		}
		if _, err := enforcer.AddGroupingPolicy(user, roleAdmin); err != nil {
			return nil, fmt.Errorf("failed to grant admin to %q: %w", user, err)
		}
	}

	g := &Guard{
		enforcer: enforcer,
		logger:   logging.WithComponent("authz"),
	}
	g.logger.Info().
		Int("admin_users", len(cfg.AdminUsers)).
		Bool("policy_file", cfg.PolicyPath != "").
		Msg("authorization guard initialized")
	return g, nil
}

// loadEmbeddedPolicy parses the embedded CSV into the enforcer.
func loadEmbeddedPolicy(enforcer *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		switch parts[0] {
		case "p":
			if len(parts) >= 4 {
				if _, err := enforcer.AddPolicy(parts[1], parts[2], parts[3]); err != nil {
					return fmt.Errorf("failed to add policy %v: %w", parts[1:], err)
				}
			}
		case "g":
			if len(parts) >= 3 {
				if _, err := enforcer.AddGroupingPolicy(parts[1], parts[2]); err != nil {
					return fmt.Errorf("failed to add grouping policy %v: %w", parts[1:], err)
				}
			}
		}
	}
	return nil
}

// CanActFor reports whether the caller may operate on the viewer's
// timeline. Self-access always passes; an unasserted identity passes
// because trusted-gateway deployments assert nothing; everything else
// requires the admin grant.
func (g *Guard) CanActFor(caller auth.CallerIdentity, viewerID string) bool {
	if !caller.Asserted() || caller.Subject == viewerID {
		g.allowed.Add(1)
		recordDecision(true)
		return true
	}

	ok := g.IsAdmin(caller)
	if ok {
		g.allowed.Add(1)
	} else {
		g.denied.Add(1)
		g.logger.Debug().
			Str("caller", caller.Subject).
			Str("viewer_id", viewerID).
			Msg("cross-viewer access denied")
	}
	recordDecision(ok)
	return ok
}

// IsAdmin resolves the admin grant through the enforcer. Both paths go
// through policy: subjects via their grouping rules, credential-
// asserted admins via the admin role itself. Dropping the admin grant
// from the policy file therefore revokes even header-asserted admins.
func (g *Guard) IsAdmin(caller auth.CallerIdentity) bool {
	if caller.Asserted() {
		ok, err := g.enforcer.Enforce(caller.Subject, objectAnyTimeline, actionAdminister)
		if err != nil {
			g.logger.Error().Err(err).Str("caller", caller.Subject).Msg("enforcement failed")
			return false
		}
		if ok {
			return true
		}
	}
	if !caller.Admin {
		return false
	}
	ok, err := g.enforcer.Enforce(roleAdmin, objectAnyTimeline, actionAdminister)
	if err != nil {
		g.logger.Error().Err(err).Msg("enforcement failed")
		return false
	}
	return ok
}

// GrantAdmin assigns the admin role to a subject at runtime.
func (g *Guard) GrantAdmin(subject string) error {
	if _, err := g.enforcer.AddGroupingPolicy(subject, roleAdmin); err != nil {
		return fmt.Errorf("failed to grant admin: %w", err)
	}
	return nil
}

// RevokeAdmin removes the admin role from a subject.
func (g *Guard) RevokeAdmin(subject string) error {
	if _, err := g.enforcer.RemoveGroupingPolicy(subject, roleAdmin); err != nil {
		return fmt.Errorf("failed to revoke admin: %w", err)
	}
	return nil
}

// RolesFor returns the subject's resolved roles.
func (g *Guard) RolesFor(subject string) []string {
	roles, err := g.enforcer.GetRolesForUser(subject)
	if err != nil {
		return nil
	}
	return roles
}

// GuardStats is a point-in-time snapshot for the health surface.
type GuardStats struct {
	Allowed int64 `json:"allowed"`
	Denied  int64 `json:"denied"`
}

// Stats returns current decision counters.
func (g *Guard) Stats() GuardStats {
	return GuardStats{Allowed: g.allowed.Load(), Denied: g.denied.Load()}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
