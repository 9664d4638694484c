// Copyright 2026 The GymFit Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package authz

import (
	"context"
	"fmt"

	"github.com/gymfit/gymfit/internal/identity"
	"github.com/gymfit/gymfit/internal/plan"
	"github.com/gymfit/gymfit/internal/session"
	"github.com/gymfit/gymfit/internal/tenant"
)

// StaffCounter provides the live staff-trainer count for a tenant. The gate
// calls it at decision time; counts are never cached here because roster
// size changes between checks.
type StaffCounter interface {
	CountStaff(ctx context.Context, tenantID string) (int, error)
}

// Gate combines plan feature flags and per-user permission grants into
// allow/deny decisions. Every decision is a pure boolean function of its
// inputs; the gate holds only read-only collaborators.
type Gate struct {
	catalog *plan.Catalog
	users   identity.UserRepository
	staff   StaffCounter
}

// NewGate creates a new authorization gate.
func NewGate(catalog *plan.Catalog, users identity.UserRepository, staff StaffCounter) *Gate {
	return &Gate{catalog: catalog, users: users, staff: staff}
}

// Can decides whether the session may perform the action against the given
// tenant. An unauthenticated session (nil) is always denied, as is any
// action outside the fixed enumeration.
//
// For feature-gated actions the tenant's plan feature must be enabled, and
// staff-trainers additionally need the matching permission grant; neither
// alone is sufficient. Managers and system operators skip the grant check.
// Role-inherent actions are decided purely from the role table.
func (g *Gate) Can(ctx context.Context, sess *session.Session, t *tenant.Tenant, action Action) bool {
	if sess == nil {
		return false
	}

	req, ok := requirements[action]
	if !ok {
		return false
	}

	role := identity.Role(sess.Role)
	if !req.roleAllowed(role) {
		return false
	}

	if req.feature != "" {
		// Feature availability is a tenant property; even operators need
		// the tenant's plan to enable it.
		if t == nil {
			return false
		}
		p, err := g.catalog.Get(t.PlanID)
		if err != nil || !p.HasFeature(req.feature) {
			return false
		}
	}

	if req.grant != "" && !bypassesGrant(role) {
		user, err := g.users.GetByID(ctx, sess.UserID)
		if err != nil {
			return false
		}
		if !req.grant.enabled(user.Grants) {
			return false
		}
	}

	return true
}

// CanAddStaff reports whether the tenant may add another staff-trainer
// under its plan's personnel quota. The roster count is read at the moment
// of the call; callers adding staff must still do the final check inside
// the insert transaction.
func (g *Gate) CanAddStaff(ctx context.Context, t *tenant.Tenant) (bool, error) {
	p, err := g.catalog.Get(t.PlanID)
	if err != nil {
		return false, fmt.Errorf("failed to resolve plan for tenant %s: %w", t.ID, err)
	}

	count, err := g.staff.CountStaff(ctx, t.ID)
	if err != nil {
		return false, fmt.Errorf("failed to count staff for tenant %s: %w", t.ID, err)
	}

	return count < p.StaffQuota, nil
}
