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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDirectory struct {
	tenants map[string]*Tenant
	err     error
}

func (d *fakeDirectory) FindBySlug(ctx context.Context, slug string) (*Tenant, error) {
	if d.err != nil {
		return nil, d.err
	}
	t, ok := d.tenants[slug]
	if !ok {
		return nil, ErrTenantNotFound
	}
	return t, nil
}

func newFakeDirectory(tenants ...*Tenant) *fakeDirectory {
	d := &fakeDirectory{tenants: make(map[string]*Tenant)}
	for _, t := range tenants {
		d.tenants[t.Slug] = t
	}
	return d
}

// TestPurpose: Validates the three-way resolution outcome: reserved or empty
// paths carry no tenant, a registered slug resolves, an unknown slug is
// distinct from both.
// Scope: Unit Test
// Expected: KindNone for reserved/empty, KindTenant with the record for a
// registered slug, KindUnresolved carrying the candidate otherwise.
// Test Case ID: RES-01
func TestResolver_Resolve(t *testing.T) {
	caxufit := &Tenant{ID: "t-1", Slug: "caxufit", Name: "CaxuFit"}
	r := NewResolver(newFakeDirectory(caxufit))
	ctx := context.Background()

	tests := []struct {
		name     string
		segments []string
		kind     ContextKind
		slug     string
	}{
		{"empty path", nil, KindNone, ""},
		{"root", []string{""}, KindNone, ""},
		{"reserved admin", []string{"admin"}, KindNone, ""},
		{"reserved personal", []string{"personal"}, KindNone, ""},
		{"reserved student", []string{"student"}, KindNone, ""},
		{"reserved login", []string{"login"}, KindNone, ""},
		{"registered slug", []string{"caxufit"}, KindTenant, "caxufit"},
		{"registered slug with subpath", []string{"caxufit", "api", "v1"}, KindTenant, "caxufit"},
		{"unknown slug", []string{"ghost-gym"}, KindUnresolved, "ghost-gym"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc, err := r.Resolve(ctx, tt.segments)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, tc.Kind())
			assert.Equal(t, tt.slug, tc.Slug())
			if tt.kind == KindTenant {
				require.NotNil(t, tc.Tenant())
				assert.Equal(t, caxufit.ID, tc.Tenant().ID)
			} else {
				assert.Nil(t, tc.Tenant())
			}
		})
	}
}

// TestPurpose: Validates that an unknown slug is never conflated with the
// no-tenant outcome: a typo'd gym URL must not fall back to platform routes.
// Scope: Unit Test
// Expected: KindUnresolved != KindNone even though neither carries a tenant.
// Test Case ID: RES-02
func TestResolver_UnresolvedIsNotNone(t *testing.T) {
	r := NewResolver(newFakeDirectory())
	ctx := context.Background()

	unresolved, err := r.Resolve(ctx, []string{"no-such-gym"})
	require.NoError(t, err)
	none, err := r.Resolve(ctx, []string{"admin"})
	require.NoError(t, err)

	assert.NotEqual(t, none.Kind(), unresolved.Kind())
	assert.Equal(t, "no-such-gym", unresolved.Slug())
}

// TestPurpose: Validates infrastructure failures during lookup surface as
// errors instead of being misread as an unknown slug.
// Scope: Unit Test
// Expected: The directory error is propagated, not mapped to KindUnresolved.
// Test Case ID: RES-03
func TestResolver_DirectoryError(t *testing.T) {
	dirErr := errors.New("connection refused")
	r := NewResolver(&fakeDirectory{err: dirErr})

	_, err := r.Resolve(context.Background(), []string{"caxufit"})
	require.Error(t, err)
	assert.ErrorIs(t, err, dirErr)
}

// TestPurpose: Validates path splitting and slug validation helpers.
// Scope: Unit Test
// Expected: Leading/trailing slashes ignored; slug grammar enforced.
// Test Case ID: RES-04
func TestResolver_Helpers(t *testing.T) {
	assert.Equal(t, []string{"caxufit", "api"}, SplitPath("/caxufit/api/"))
	assert.Empty(t, SplitPath("/"))

	assert.True(t, ValidSlug("caxufit"))
	assert.True(t, ValidSlug("cross-fit-99"))
	assert.False(t, ValidSlug("CaxuFit"))
	assert.False(t, ValidSlug("a"))
	assert.False(t, ValidSlug("has spaces"))

	assert.True(t, IsReservedRoute("admin"))
	assert.False(t, IsReservedRoute("caxufit"))
}
