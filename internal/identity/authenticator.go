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
	"fmt"
	"strings"
	"time"

	"github.com/gymfit/gymfit/internal/audit"
	"github.com/gymfit/gymfit/internal/id"
	"github.com/gymfit/gymfit/internal/session"
	"github.com/gymfit/gymfit/internal/tenant"
)

// Authenticator validates email/password pairs strictly within the boundary
// of a resolved tenant. On success it constructs a new session; persisting
// it is the session manager's job.
type Authenticator struct {
	repo        UserRepository
	hasher      *PasswordHasher
	auditLogger audit.Logger
}

// NewAuthenticator creates a new authenticator.
func NewAuthenticator(repo UserRepository, hasher *PasswordHasher, auditLogger audit.Logger) *Authenticator {
	return &Authenticator{
		repo:        repo,
		hasher:      hasher,
		auditLogger: auditLogger,
	}
}

// Authenticate checks the credential pair against the user store, scoped to
// the resolved tenant context.
//
// System operators authenticate regardless of tenant context. Every other
// role requires a resolved tenant matching the user's own; authentication
// against NoTenant or an unresolved slug always fails for them. A blocked
// tenant fails with ErrTenantBlocked even when the credentials are correct;
// every other mismatch collapses into ErrInvalidCredentials.
func (a *Authenticator) Authenticate(ctx context.Context, email, password string, tc tenant.Context) (*session.Session, error) {
	user, err := a.repo.GetByEmail(ctx, email)
	if err != nil {
		a.auditFailure(ctx, tc, email, "user_not_found")
		return nil, ErrInvalidCredentials
	}

	creds, err := a.repo.GetCredentials(ctx, user.ID)
	if err != nil {
		a.auditFailure(ctx, tc, email, "no_credentials")
		return nil, ErrInvalidCredentials
	}

	valid, err := a.hasher.Verify(password, creds.PasswordHash)
	if err != nil || !valid {
		a.auditFailure(ctx, tc, email, "invalid_password")
		return nil, ErrInvalidCredentials
	}

	if user.Role != RoleSystemOperator {
		t := tc.Tenant()
		if t == nil || !user.InTenant(t.ID) {
			// Correct password, wrong boundary. Indistinguishable from a bad
			// password on purpose.
			a.auditFailure(ctx, tc, email, "tenant_mismatch")
			return nil, ErrInvalidCredentials
		}
		if t.Blocked {
			a.auditLogger.Log(ctx, audit.Event{
				Type:     audit.TypeLoginFailed,
				TenantID: t.ID,
				ActorID:  user.ID,
				Resource: "login",
				Metadata: map[string]any{audit.AttrReason: "tenant_blocked"},
			})
			return nil, ErrTenantBlocked
		}
	}

	sess := &session.Session{
		ID:       id.NewUUIDv7(),
		UserID:   user.ID,
		TenantID: user.TenantID,
		Role:     string(user.Role),
		IssuedAt: time.Now(),
	}

	a.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeLoginSuccess,
		TenantID: tenantIDOf(user),
		ActorID:  user.ID,
		Resource: "login",
	})

	return sess, nil
}

func (a *Authenticator) auditFailure(ctx context.Context, tc tenant.Context, email, reason string) {
	tenantID := ""
	if t := tc.Tenant(); t != nil {
		tenantID = t.ID
	}
	a.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeLoginFailed,
		TenantID: tenantID,
		Resource: email,
		Metadata: map[string]any{audit.AttrReason: reason, audit.AttrSlug: tc.Slug()},
	})
}

func tenantIDOf(u *User) string {
	if u.TenantID == nil {
		return ""
	}
	return *u.TenantID
}

// Service provides user management business logic on top of the
// authenticator's store: provisioning users and attaching credentials.
type Service struct {
	repo        UserRepository
	hasher      *PasswordHasher
	auditLogger audit.Logger
}

// NewService creates a new identity service.
func NewService(repo UserRepository, hasher *PasswordHasher, auditLogger audit.Logger) *Service {
	return &Service{repo: repo, hasher: hasher, auditLogger: auditLogger}
}

// ProvisionUser creates a new user without credentials.
func (s *Service) ProvisionUser(ctx context.Context, tenantID *string, name, email string, role Role, grants Grants) (*User, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("invalid role: %s", role)
	}
	if role == RoleSystemOperator && tenantID != nil {
		return nil, fmt.Errorf("system operators belong to no tenant")
	}
	if role != RoleSystemOperator && tenantID == nil {
		return nil, fmt.Errorf("role %s requires a tenant", role)
	}
	if !isValidEmail(email) {
		return nil, fmt.Errorf("invalid email address")
	}

	if existing, err := s.repo.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, ErrUserAlreadyExists
	}

	now := time.Now()
	user := &User{
		ID:        id.NewUUIDv7(),
		TenantID:  tenantID,
		Name:      name,
		Email:     email,
		Role:      role,
		Grants:    grants,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// AddPassword attaches a password credential to an existing user.
func (s *Service) AddPassword(ctx context.Context, userID, password string) error {
	if err := ValidatePassword(password); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.repo.AddCredentials(ctx, &Credentials{UserID: userID, PasswordHash: hash}); err != nil {
		return fmt.Errorf("failed to add credentials: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID.
func (s *Service) GetUser(ctx context.Context, userID string) (*User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// DeleteUser removes a user.
func (s *Service) DeleteUser(ctx context.Context, userID string) error {
	return s.repo.Delete(ctx, userID)
}

func isValidEmail(email string) bool {
	// Basic shape check; the store enforces uniqueness.
	if len(email) < 3 || len(email) > 254 {
		return false
	}
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1
}

// ValidatePassword checks a candidate password against the strength rule
// shared by every credential-creating path.
func ValidatePassword(password string) error {
	if !isStrongPassword(password) {
		return ErrWeakPassword
	}
	return nil
}

func isStrongPassword(password string) bool {
	return len(password) >= 8
}
