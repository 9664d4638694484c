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
)

// ContextKind discriminates the outcome of tenant resolution.
type ContextKind int

const (
	// KindNone means the route is not tenant-scoped (empty path or a
	// reserved top-level route).
	KindNone ContextKind = iota

	// KindTenant means the first path segment resolved to a tenant.
	KindTenant

	// KindUnresolved means the caller attempted tenant-scoped access with a
	// slug that resolves to no tenant. Distinct from KindNone: the caller
	// must treat it as tenant-not-found, not as a non-tenant route.
	KindUnresolved
)

// Context is the resolved tenant context of a request. It is constructed
// once at the start of request handling and passed explicitly into every
// call that needs it; there is no ambient "current tenant".
type Context struct {
	kind   ContextKind
	tenant *Tenant
	slug   string
}

// NoTenant returns the context for non-tenant-scoped routes.
func NoTenant() Context {
	return Context{kind: KindNone}
}

// Resolved returns the context for a resolved tenant.
func Resolved(t *Tenant) Context {
	return Context{kind: KindTenant, tenant: t, slug: t.Slug}
}

// Unresolved returns the context for a slug candidate with no tenant.
func Unresolved(candidate string) Context {
	return Context{kind: KindUnresolved, slug: candidate}
}

// Kind returns the context discriminator.
func (c Context) Kind() ContextKind { return c.kind }

// Tenant returns the resolved tenant record, or nil unless Kind is
// KindTenant.
func (c Context) Tenant() *Tenant {
	if c.kind != KindTenant {
		return nil
	}
	return c.tenant
}

// Slug returns the slug candidate the context was resolved from. Empty for
// KindNone.
func (c Context) Slug() string { return c.slug }

func (c Context) String() string {
	switch c.kind {
	case KindTenant:
		return fmt.Sprintf("tenant(%s)", c.slug)
	case KindUnresolved:
		return fmt.Sprintf("unresolved(%s)", c.slug)
	default:
		return "none"
	}
}

// reservedRoutes are top-level routes never interpreted as tenant slugs:
// the system operator panel, role-scoped login shortcuts, and service
// endpoints.
var reservedRoutes = map[string]struct{}{
	"admin":    {},
	"personal": {},
	"student":  {},
	"login":    {},
	"api":      {},
	"health":   {},
	"metrics":  {},
}

// IsReservedRoute reports whether the segment belongs to the reserved set.
func IsReservedRoute(segment string) bool {
	_, ok := reservedRoutes[segment]
	return ok
}

// Resolver maps a routing path onto a tenant Context via the Directory.
type Resolver struct {
	dir Directory
}

// NewResolver creates a resolver over the given directory.
func NewResolver(dir Directory) *Resolver {
	return &Resolver{dir: dir}
}

// Resolve decides whether the path is tenant-scoped and, if so, resolves
// its first segment through the directory. Resolution is a pure function of
// (path, directory snapshot): identical inputs yield identical results.
func (r *Resolver) Resolve(ctx context.Context, segments []string) (Context, error) {
	if len(segments) == 0 {
		return NoTenant(), nil
	}

	candidate := segments[0]
	if candidate == "" || IsReservedRoute(candidate) {
		return NoTenant(), nil
	}

	t, err := r.dir.FindBySlug(ctx, candidate)
	if err != nil {
		if errors.Is(err, ErrTenantNotFound) {
			return Unresolved(candidate), nil
		}
		return NoTenant(), fmt.Errorf("failed to resolve slug %q: %w", candidate, err)
	}

	return Resolved(t), nil
}

// ResolvePath splits a URL path and resolves it.
func (r *Resolver) ResolvePath(ctx context.Context, path string) (Context, error) {
	return r.Resolve(ctx, SplitPath(path))
}

// SplitPath splits a URL path into non-empty segments.
func SplitPath(path string) []string {
	var segments []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}
