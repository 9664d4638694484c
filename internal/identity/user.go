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
	"time"
)

// Domain errors
var (
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidCredentials covers every authentication mismatch: unknown
	// email, wrong password, wrong tenant. Deliberately unspecific so a
	// caller cannot probe which part was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrTenantBlocked is returned when credentials are correct but the
	// tenant's access is suspended.
	ErrTenantBlocked = errors.New("tenant access is blocked")

	ErrUserAlreadyExists = errors.New("user already exists")
	ErrWeakPassword      = errors.New("password does not meet security requirements")
)

// Role classifies a user within the platform.
type Role string

const (
	// RoleSystemOperator administers the platform itself and belongs to no
	// tenant.
	RoleSystemOperator Role = "system_operator"

	// RoleTenantManager runs a single gym. Manager authority is implicit:
	// any feature the tenant's plan enables is available without per-user
	// grants.
	RoleTenantManager Role = "tenant_manager"

	// RoleStaffTrainer is gym staff. Feature access additionally requires
	// an explicit permission grant.
	RoleStaffTrainer Role = "staff_trainer"

	// RoleEndClient is a gym member.
	RoleEndClient Role = "end_client"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleSystemOperator, RoleTenantManager, RoleStaffTrainer, RoleEndClient:
		return true
	}
	return false
}

// Grants are the explicit per-user permission booleans meaningful for the
// staff-trainer role. A grant is inert unless the tenant's plan also
// enables the corresponding feature.
type Grants struct {
	CanDeleteClients      bool `json:"can_delete_clients"`
	CanDefineCustomFields bool `json:"can_define_custom_fields"`
	CanManageStorefront   bool `json:"can_manage_storefront"`
}

// User represents a user identity. Every user except a system operator
// belongs to exactly one tenant.
type User struct {
	ID       string
	TenantID *string // nil only for system operators
	Name     string
	Email    string
	Role     Role
	Grants   Grants

	CreatedAt time.Time
	UpdatedAt time.Time
}

// InTenant reports whether the user belongs to the given tenant.
func (u *User) InTenant(tenantID string) bool {
	return u.TenantID != nil && *u.TenantID == tenantID
}

// Credentials represents a user's password credential.
type Credentials struct {
	UserID       string
	PasswordHash string
	UpdatedAt    time.Time
}

// UserRepository defines the interface for user persistence.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	AddCredentials(ctx context.Context, credentials *Credentials) error
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByEmail retrieves a user by email. Email is unique platform-wide
	// in the original product; tenant scoping is enforced by the
	// authenticator, not the lookup.
	GetByEmail(ctx context.Context, email string) (*User, error)

	GetCredentials(ctx context.Context, userID string) (*Credentials, error)
	Delete(ctx context.Context, id string) error
}
