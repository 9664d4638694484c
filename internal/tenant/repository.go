package tenant

import (
	"context"
	"errors"
)

var (
	ErrTenantNotFound    = errors.New("tenant not found")
	ErrSlugAlreadyExists = errors.New("tenant slug already exists")
	ErrInvalidSlug       = errors.New("invalid tenant slug")
)

// Directory defines the lookup surface the resolver depends on. A Directory
// snapshot is read-mostly; freshness is the data store's responsibility.
type Directory interface {
	FindBySlug(ctx context.Context, slug string) (*Tenant, error)
}

// Repository defines the full interface for tenant storage. It extends the
// Directory with the mutations system operators perform.
type Repository interface {
	Directory

	Create(ctx context.Context, tenant *Tenant) error
	GetByID(ctx context.Context, id string) (*Tenant, error)
	List(ctx context.Context, limit, offset int) ([]*Tenant, error)
	Update(ctx context.Context, tenant *Tenant) error
}
