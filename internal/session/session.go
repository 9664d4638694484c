package session

import (
	"context"
	"errors"
	"time"
)

// Domain errors
var (
	// ErrSessionInvalidated marks a previously valid session that no longer
	// matches the active tenant. Recoverable: the user re-authenticates.
	ErrSessionInvalidated = errors.New("session invalidated")
)

// Session is the runtime record of an authenticated user bound to a tenant.
// TenantID is copied at authentication time, never re-derived; it is nil
// only for system operators.
type Session struct {
	ID       string
	UserID   string
	TenantID *string
	Role     string
	IssuedAt time.Time
}

// TenantScoped reports whether the session is bound to a tenant. System
// operator sessions are not.
func (s *Session) TenantScoped() bool {
	return s != nil && s.TenantID != nil
}

// BelongsTo reports whether the session is bound to the given tenant.
func (s *Session) BelongsTo(tenantID string) bool {
	return s.TenantScoped() && *s.TenantID == tenantID
}

// Store defines the interface for session persistence.
type Store interface {
	// Create persists a session.
	Create(ctx context.Context, session *Session) error

	// Get retrieves a session by ID, or nil if absent.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Delete removes a session. Deleting an absent session is not an error.
	Delete(ctx context.Context, sessionID string) error

	// DeleteExpired removes sessions issued before the cutoff.
	DeleteExpired(ctx context.Context, cutoff time.Time) error
}
