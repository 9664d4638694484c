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

package tenant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gymfit/gymfit/internal/audit"
	"github.com/gymfit/gymfit/internal/id"
	"github.com/gymfit/gymfit/internal/plan"
)

// Service provides tenant management business logic for system operators.
// Tenant provisioning itself (onboarding, billing) happens out-of-band; the
// service covers the directory mutations the operator panel needs.
type Service struct {
	repo        Repository
	catalog     *plan.Catalog
	auditLogger audit.Logger
}

// NewService creates a new tenant service.
func NewService(repo Repository, catalog *plan.Catalog, auditLogger audit.Logger) *Service {
	return &Service{
		repo:        repo,
		catalog:     catalog,
		auditLogger: auditLogger,
	}
}

// CreateTenant registers a new tenant under the given slug and plan.
func (s *Service) CreateTenant(ctx context.Context, slug, name, email string, planID string, actorID string) (*Tenant, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if !ValidSlug(slug) {
		return nil, ErrInvalidSlug
	}
	if name == "" {
		return nil, fmt.Errorf("tenant name is required")
	}
	if _, err := s.catalog.Get(planID); err != nil {
		return nil, fmt.Errorf("unknown plan %s: %w", planID, err)
	}

	if _, err := s.repo.FindBySlug(ctx, slug); err == nil {
		return nil, ErrSlugAlreadyExists
	} else if !errors.Is(err, ErrTenantNotFound) {
		return nil, fmt.Errorf("failed to check slug: %w", err)
	}

	now := time.Now()
	t := &Tenant{
		ID:        id.NewUUIDv7(),
		Slug:      slug,
		Name:      name,
		Email:     email,
		PlanID:    planID,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to create tenant: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeTenantCreated,
		TenantID: t.ID,
		ActorID:  actorID,
		Resource: slug,
		Metadata: map[string]any{"plan_id": planID},
	})

	return t, nil
}

// GetTenant retrieves a tenant by ID.
func (s *Service) GetTenant(ctx context.Context, tenantID string) (*Tenant, error) {
	return s.repo.GetByID(ctx, tenantID)
}

// ListTenants lists tenants with pagination.
func (s *Service) ListTenants(ctx context.Context, limit, offset int) ([]*Tenant, error) {
	return s.repo.List(ctx, limit, offset)
}

// SetBlocked blocks or unblocks a tenant. A blocked tenant denies all
// authentication regardless of credential validity.
func (s *Service) SetBlocked(ctx context.Context, tenantID string, blocked bool, reason, actorID string) (*Tenant, error) {
	t, err := s.repo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	t.Blocked = blocked
	t.BlockedReason = ""
	if blocked {
		t.BlockedReason = reason
	}
	t.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to update tenant: %w", err)
	}

	eventType := audit.TypeTenantUnblocked
	if blocked {
		eventType = audit.TypeTenantBlocked
	}
	s.auditLogger.Log(ctx, audit.Event{
		Type:     eventType,
		TenantID: t.ID,
		ActorID:  actorID,
		Resource: t.Slug,
		Metadata: map[string]any{"reason": reason},
	})

	return t, nil
}

// ChangePlan moves a tenant to another plan. Quota enforcement is not
// retroactive: an over-quota roster after a downgrade keeps its existing
// staff, but no new staff can be added until the count drops below the new
// quota.
func (s *Service) ChangePlan(ctx context.Context, tenantID, planID, actorID string) (*Tenant, error) {
	if _, err := s.catalog.Get(planID); err != nil {
		return nil, fmt.Errorf("unknown plan %s: %w", planID, err)
	}

	t, err := s.repo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	previous := t.PlanID
	t.PlanID = planID
	t.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to update tenant: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypePlanChanged,
		TenantID: t.ID,
		ActorID:  actorID,
		Resource: t.Slug,
		Metadata: map[string]any{"from": previous, "to": planID},
	})

	return t, nil
}
