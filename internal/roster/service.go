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

package roster

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gymfit/gymfit/internal/audit"
	"github.com/gymfit/gymfit/internal/id"
	"github.com/gymfit/gymfit/internal/identity"
	"github.com/gymfit/gymfit/internal/plan"
	"github.com/gymfit/gymfit/internal/tenant"
)

// Service manages a tenant's staff roster under the plan's personnel quota.
type Service struct {
	repo        Repository
	catalog     *plan.Catalog
	hasher      *identity.PasswordHasher
	auditLogger audit.Logger
}

// NewService creates a new roster service.
func NewService(repo Repository, catalog *plan.Catalog, hasher *identity.PasswordHasher, auditLogger audit.Logger) *Service {
	return &Service{
		repo:        repo,
		catalog:     catalog,
		hasher:      hasher,
		auditLogger: auditLogger,
	}
}

// StaffInput carries the fields a manager supplies when adding a trainer.
type StaffInput struct {
	Name     string
	Email    string
	Password string
	Grants   identity.Grants
}

// AddStaff creates a staff-trainer for the tenant, enforcing the plan quota
// inside the insert transaction. The quota is re-evaluated at the moment of
// the attempt; a CanAddStaff probe a moment earlier guarantees nothing.
func (s *Service) AddStaff(ctx context.Context, t *tenant.Tenant, input StaffInput, actorID string) (*identity.User, error) {
	p, err := s.catalog.Get(t.PlanID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve plan for tenant %s: %w", t.ID, err)
	}

	if input.Name == "" || input.Email == "" {
		return nil, fmt.Errorf("staff name and email are required")
	}
	if err := identity.ValidatePassword(input.Password); err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	tenantID := t.ID
	user := &identity.User{
		ID:        id.NewUUIDv7(),
		TenantID:  &tenantID,
		Name:      input.Name,
		Email:     input.Email,
		Role:      identity.RoleStaffTrainer,
		Grants:    input.Grants,
		CreatedAt: now,
		UpdatedAt: now,
	}
	creds := &identity.Credentials{UserID: user.ID, PasswordHash: hash, UpdatedAt: now}

	if err := s.repo.CreateStaffWithinQuota(ctx, user, creds, p.StaffQuota); err != nil {
		if errors.Is(err, ErrQuotaExceeded) {
			s.auditLogger.Log(ctx, audit.Event{
				Type:     audit.TypeStaffQuotaDenied,
				TenantID: t.ID,
				ActorID:  actorID,
				Resource: "staff",
				Metadata: map[string]any{"quota": p.StaffQuota},
			})
			return nil, ErrQuotaExceeded
		}
		return nil, fmt.Errorf("failed to create staff user: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeStaffAdded,
		TenantID: t.ID,
		ActorID:  actorID,
		Resource: "staff",
		Metadata: map[string]any{"user_id": user.ID, "email": user.Email},
	})

	return user, nil
}

// ListStaff returns the tenant's staff-trainers.
func (s *Service) ListStaff(ctx context.Context, tenantID string) ([]*identity.User, error) {
	return s.repo.ListStaff(ctx, tenantID)
}

// CountStaff returns the tenant's current staff-trainer count.
func (s *Service) CountStaff(ctx context.Context, tenantID string) (int, error) {
	return s.repo.CountStaff(ctx, tenantID)
}
