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

package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/gymfit/gymfit/internal/audit"
	"github.com/gymfit/gymfit/internal/tenant"
)

// MockUserRepository is a simple in-memory implementation of UserRepository
type MockUserRepository struct {
	users       map[string]*User
	credentials map[string]*Credentials
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users:       make(map[string]*User),
		credentials: make(map[string]*Credentials),
	}
}

func (m *MockUserRepository) Create(ctx context.Context, user *User) error {
	for _, u := range m.users {
		if u.Email == user.Email {
			return ErrUserAlreadyExists
		}
	}
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) AddCredentials(ctx context.Context, credentials *Credentials) error {
	m.credentials[credentials.UserID] = credentials
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *MockUserRepository) GetCredentials(ctx context.Context, userID string) (*Credentials, error) {
	c, ok := m.credentials[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return c, nil
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	delete(m.users, id)
	delete(m.credentials, id)
	return nil
}

func testHasher() *PasswordHasher {
	// Low-cost parameters; production values make the suite crawl.
	return NewPasswordHasher(8192, 1, 1, 16, 32)
}

func provision(t *testing.T, s *Service, tenantID *string, email string, role Role, password string) *User {
	t.Helper()
	user, err := s.ProvisionUser(context.Background(), tenantID, "Test User", email, role, Grants{})
	if err != nil {
		t.Fatalf("failed to provision %s: %v", email, err)
	}
	if err := s.AddPassword(context.Background(), user.ID, password); err != nil {
		t.Fatalf("failed to add password: %v", err)
	}
	return user
}

// TestPurpose: Validates tenant-scoped authentication: valid credentials
// succeed only inside the user's own tenant context.
// Scope: Unit Test
// Security: Tenant isolation at the credential boundary
// Expected: Success within the home tenant; ErrInvalidCredentials for the
// same credentials presented under another tenant or with no tenant at all.
// Test Case ID: AUTH-01
func TestAuthenticator_TenantScoping(t *testing.T) {
	repo := NewMockUserRepository()
	hasher := testHasher()
	auditLogger := audit.NewSlogLogger()
	svc := NewService(repo, hasher, auditLogger)
	a := NewAuthenticator(repo, hasher, auditLogger)
	ctx := context.Background()

	caxufit := &tenant.Tenant{ID: "t-caxufit", Slug: "caxufit"}
	profit := &tenant.Tenant{ID: "t-profit", Slug: "profit"}

	password := "SecurePassword123"
	user := provision(t, svc, &caxufit.ID, "manager@caxufit.com", RoleTenantManager, password)

	// Home tenant: success.
	sess, err := a.Authenticate(ctx, user.Email, password, tenant.Resolved(caxufit))
	if err != nil {
		t.Fatalf("expected success, got err: %v", err)
	}
	if sess.UserID != user.ID {
		t.Errorf("expected user ID %s, got %s", user.ID, sess.UserID)
	}
	if sess.TenantID == nil || *sess.TenantID != caxufit.ID {
		t.Errorf("session not bound to home tenant: %v", sess.TenantID)
	}
	if sess.Role != string(RoleTenantManager) {
		t.Errorf("expected role %s, got %s", RoleTenantManager, sess.Role)
	}

	// Same credentials under a different gym's context.
	_, err = a.Authenticate(ctx, user.Email, password, tenant.Resolved(profit))
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for cross-tenant login, got %v", err)
	}

	// No tenant context at all.
	_, err = a.Authenticate(ctx, user.Email, password, tenant.NoTenant())
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials without tenant context, got %v", err)
	}
}

// TestPurpose: Validates that every non-blocked failure mode collapses into
// one generic error, so callers cannot distinguish a wrong password from a
// missing account or a tenant mismatch.
// Scope: Unit Test
// Security: Account enumeration resistance
// Expected: ErrInvalidCredentials for unknown email, wrong password, and
// passwordless accounts alike.
// Test Case ID: AUTH-02
func TestAuthenticator_GenericFailure(t *testing.T) {
	repo := NewMockUserRepository()
	hasher := testHasher()
	auditLogger := audit.NewSlogLogger()
	svc := NewService(repo, hasher, auditLogger)
	a := NewAuthenticator(repo, hasher, auditLogger)
	ctx := context.Background()

	gym := &tenant.Tenant{ID: "t-1", Slug: "caxufit"}
	tc := tenant.Resolved(gym)
	user := provision(t, svc, &gym.ID, "trainer@caxufit.com", RoleStaffTrainer, "SecurePassword123")

	_, err := a.Authenticate(ctx, "nobody@caxufit.com", "whatever1", tc)
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}

	_, err = a.Authenticate(ctx, user.Email, "WrongPassword1", tc)
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}

	// Account without credentials yet.
	ghost, err := svc.ProvisionUser(ctx, &gym.ID, "Ghost", "ghost@caxufit.com", RoleEndClient, Grants{})
	if err != nil {
		t.Fatalf("failed to provision: %v", err)
	}
	_, err = a.Authenticate(ctx, ghost.Email, "anything123", tc)
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for passwordless account, got %v", err)
	}
}

// TestPurpose: Validates blocked tenants reject logins with a distinct,
// recoverable error while wrong passwords against them stay generic.
// Scope: Unit Test
// Expected: ErrTenantBlocked only when the credentials were otherwise valid.
// Test Case ID: AUTH-03
func TestAuthenticator_BlockedTenant(t *testing.T) {
	repo := NewMockUserRepository()
	hasher := testHasher()
	auditLogger := audit.NewSlogLogger()
	svc := NewService(repo, hasher, auditLogger)
	a := NewAuthenticator(repo, hasher, auditLogger)
	ctx := context.Background()

	gym := &tenant.Tenant{ID: "t-1", Slug: "caxufit", Blocked: true, BlockedReason: "payment overdue"}
	tc := tenant.Resolved(gym)
	user := provision(t, svc, &gym.ID, "manager@caxufit.com", RoleTenantManager, "SecurePassword123")

	_, err := a.Authenticate(ctx, user.Email, "SecurePassword123", tc)
	if !errors.Is(err, ErrTenantBlocked) {
		t.Errorf("expected ErrTenantBlocked, got %v", err)
	}

	// Wrong password against a blocked tenant must not leak the block.
	_, err = a.Authenticate(ctx, user.Email, "WrongPassword1", tc)
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

// TestPurpose: Validates system operators authenticate without any tenant
// context and receive an unscoped session.
// Scope: Unit Test
// Expected: Success under NoTenant; the session carries no tenant binding.
// Test Case ID: AUTH-04
func TestAuthenticator_SystemOperator(t *testing.T) {
	repo := NewMockUserRepository()
	hasher := testHasher()
	auditLogger := audit.NewSlogLogger()
	svc := NewService(repo, hasher, auditLogger)
	a := NewAuthenticator(repo, hasher, auditLogger)
	ctx := context.Background()

	operator := provision(t, svc, nil, "root@gymfit.com", RoleSystemOperator, "SecurePassword123")

	sess, err := a.Authenticate(ctx, operator.Email, "SecurePassword123", tenant.NoTenant())
	if err != nil {
		t.Fatalf("expected success, got err: %v", err)
	}
	if sess.TenantScoped() {
		t.Errorf("operator session must not be tenant-scoped, got %v", *sess.TenantID)
	}

	// Operators also pass under a resolved tenant context.
	gym := &tenant.Tenant{ID: "t-1", Slug: "caxufit"}
	if _, err := a.Authenticate(ctx, operator.Email, "SecurePassword123", tenant.Resolved(gym)); err != nil {
		t.Errorf("expected operator login under tenant context to succeed, got %v", err)
	}
}

// TestPurpose: Validates role/tenant pairing rules during provisioning.
// Scope: Unit Test
// Expected: Operators must be unscoped, every other role must be scoped.
// Test Case ID: AUTH-05
func TestService_ProvisionUser_RolePairing(t *testing.T) {
	repo := NewMockUserRepository()
	svc := NewService(repo, testHasher(), audit.NewSlogLogger())
	ctx := context.Background()
	tenantID := "t-1"

	if _, err := svc.ProvisionUser(ctx, &tenantID, "X", "op@gymfit.com", RoleSystemOperator, Grants{}); err == nil {
		t.Error("expected error for tenant-scoped operator")
	}
	if _, err := svc.ProvisionUser(ctx, nil, "X", "manager@gym.com", RoleTenantManager, Grants{}); err == nil {
		t.Error("expected error for unscoped manager")
	}
	if _, err := svc.ProvisionUser(ctx, &tenantID, "X", "bad-email", RoleEndClient, Grants{}); err == nil {
		t.Error("expected error for invalid email")
	}
}
