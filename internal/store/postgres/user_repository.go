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

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/gymfit/gymfit/internal/identity"
	"github.com/gymfit/gymfit/internal/roster"
)

// UserRepository implements identity.UserRepository and roster.Repository.
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, tenant_id, name, email, role,
	can_delete_clients, can_define_custom_fields, can_manage_storefront,
	created_at, updated_at`

func scanUser(row pgx.Row) (*identity.User, error) {
	var u identity.User
	err := row.Scan(
		&u.ID, &u.TenantID, &u.Name, &u.Email, &u.Role,
		&u.Grants.CanDeleteClients, &u.Grants.CanDefineCustomFields, &u.Grants.CanManageStorefront,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *identity.User) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO users (
			id, tenant_id, name, email, role,
			can_delete_clients, can_define_custom_fields, can_manage_storefront,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		user.ID, user.TenantID, user.Name, user.Email, user.Role,
		user.Grants.CanDeleteClients, user.Grants.CanDefineCustomFields, user.Grants.CanManageStorefront,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// AddCredentials adds credentials for a user
func (r *UserRepository) AddCredentials(ctx context.Context, credentials *identity.Credentials) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO credentials (user_id, password_hash, updated_at)
		VALUES ($1, $2, NOW())
	`, credentials.UserID, credentials.PasswordHash)
	if err != nil {
		return fmt.Errorf("failed to insert credentials: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*identity.User, error) {
	row := r.db.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, identity.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*identity.User, error) {
	row := r.db.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, identity.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return u, nil
}

// GetCredentials retrieves user credentials
func (r *UserRepository) GetCredentials(ctx context.Context, userID string) (*identity.Credentials, error) {
	var creds identity.Credentials
	err := r.db.pool.QueryRow(ctx, `
		SELECT user_id, password_hash, updated_at
		FROM credentials
		WHERE user_id = $1
	`, userID).Scan(&creds.UserID, &creds.PasswordHash, &creds.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, identity.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get credentials: %w", err)
	}
	return &creds, nil
}

// Delete removes a user
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return identity.ErrUserNotFound
	}
	return nil
}

// CountStaff returns the current staff-trainer count for a tenant.
func (r *UserRepository) CountStaff(ctx context.Context, tenantID string) (int, error) {
	var count int
	err := r.db.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM users WHERE tenant_id = $1 AND role = $2
	`, tenantID, identity.RoleStaffTrainer).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count staff: %w", err)
	}
	return count, nil
}

// ListStaff returns the tenant's staff-trainer users.
func (r *UserRepository) ListStaff(ctx context.Context, tenantID string) ([]*identity.User, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE tenant_id = $1 AND role = $2
		ORDER BY created_at
	`, tenantID, identity.RoleStaffTrainer)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	defer rows.Close()

	var users []*identity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CreateStaffWithinQuota inserts a staff user and credentials atomically,
// re-counting the roster inside the transaction. The count query locks the
// tenant's staff rows so two concurrent adds serialize instead of both
// passing the check.
func (r *UserRepository) CreateStaffWithinQuota(ctx context.Context, user *identity.User, creds *identity.Credentials, quota int) error {
	tx, err := r.db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var count int
	err = tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM (
			SELECT id FROM users
			WHERE tenant_id = $1 AND role = $2
			FOR UPDATE
		) staff
	`, user.TenantID, identity.RoleStaffTrainer).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to count staff in transaction: %w", err)
	}
	if count >= quota {
		return roster.ErrQuotaExceeded
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO users (
			id, tenant_id, name, email, role,
			can_delete_clients, can_define_custom_fields, can_manage_storefront,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		user.ID, user.TenantID, user.Name, user.Email, user.Role,
		user.Grants.CanDeleteClients, user.Grants.CanDefineCustomFields, user.Grants.CanManageStorefront,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert staff user: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO credentials (user_id, password_hash, updated_at)
		VALUES ($1, $2, $3)
	`, creds.UserID, creds.PasswordHash, creds.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert staff credentials: %w", err)
	}

	return tx.Commit(ctx)
}
