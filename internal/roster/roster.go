package roster

import (
	"context"
	"errors"

	"github.com/gymfit/gymfit/internal/identity"
)

// ErrQuotaExceeded reports that the tenant's plan does not permit another
// staff-trainer. A user-facing limit condition, not a fault.
var ErrQuotaExceeded = errors.New("staff quota exceeded for plan")

// Repository defines the storage interface for a tenant's staff roster.
// The roster itself is derived, not stored: its members are the tenant's
// staff-trainer users.
type Repository interface {
	// CountStaff returns the current staff-trainer count for a tenant.
	CountStaff(ctx context.Context, tenantID string) (int, error)

	// ListStaff returns the tenant's staff-trainer users.
	ListStaff(ctx context.Context, tenantID string) ([]*identity.User, error)

	// CreateStaffWithinQuota inserts a staff user and credentials only if
	// the roster count stays within quota, atomically: the count and the
	// insert happen in one transaction so two concurrent adds cannot both
	// pass the check. Returns ErrQuotaExceeded otherwise.
	CreateStaffWithinQuota(ctx context.Context, user *identity.User, creds *identity.Credentials, quota int) error
}
