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

package session

import (
	"context"
	"testing"
	"time"

	"github.com/gymfit/gymfit/internal/audit"
	"github.com/gymfit/gymfit/internal/tenant"
)

// MockStore is a simple in-memory implementation of Store
type MockStore struct {
	sessions map[string]*Session
}

func NewMockStore() *MockStore {
	return &MockStore{sessions: make(map[string]*Session)}
}

func (m *MockStore) Create(ctx context.Context, s *Session) error {
	if _, ok := m.sessions[s.ID]; ok {
		return nil
	}
	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

func (m *MockStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *MockStore) Delete(ctx context.Context, sessionID string) error {
	delete(m.sessions, sessionID)
	return nil
}

func (m *MockStore) DeleteExpired(ctx context.Context, cutoff time.Time) error {
	for id, s := range m.sessions {
		if s.IssuedAt.Before(cutoff) {
			delete(m.sessions, id)
		}
	}
	return nil
}

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestManager(store Store, lifetime time.Duration) *Manager {
	codec := NewTokenCodec(testSecret, "gymfit-test", time.Hour)
	return NewManager(store, codec, audit.NewSlogLogger(), lifetime)
}

func newTenantSession(tenantID string) *Session {
	return &Session{
		ID:       "sess-" + tenantID,
		UserID:   "user-1",
		TenantID: &tenantID,
		Role:     "tenant_manager",
		IssuedAt: time.Now(),
	}
}

// TestPurpose: Validates the start/restore round trip and Start idempotency.
// Scope: Unit Test
// Expected: A started session restores under its own tenant; restarting the
// same session re-issues a usable token without duplicating the record.
// Test Case ID: SES-01
func TestManager_StartAndRestore(t *testing.T) {
	store := NewMockStore()
	m := newTestManager(store, 24*time.Hour)
	ctx := context.Background()

	gym := &tenant.Tenant{ID: "t-caxufit", Slug: "caxufit"}
	sess := newTenantSession(gym.ID)

	token, err := m.Start(ctx, sess)
	if err != nil {
		t.Fatalf("failed to start session: %v", err)
	}

	restored, err := m.Restore(ctx, token, tenant.Resolved(gym))
	if err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if restored == nil || restored.ID != sess.ID {
		t.Fatalf("expected session %s restored, got %v", sess.ID, restored)
	}

	// Idempotent restart.
	token2, err := m.Start(ctx, sess)
	if err != nil {
		t.Fatalf("second start failed: %v", err)
	}
	if len(store.sessions) != 1 {
		t.Errorf("expected one stored session, got %d", len(store.sessions))
	}
	if restored, _ := m.Restore(ctx, token2, tenant.Resolved(gym)); restored == nil {
		t.Error("expected re-issued token to restore")
	}
}

// TestPurpose: Validates that restoring a session under a different tenant
// invalidates it immediately and irreversibly.
// Scope: Unit Test
// Security: Cross-tenant session isolation
// Expected: Restore under the wrong tenant returns no session, and the
// session is gone even for the tenant it originally belonged to.
// Test Case ID: SES-02
func TestManager_Restore_TenantMismatchInvalidates(t *testing.T) {
	store := NewMockStore()
	m := newTestManager(store, 24*time.Hour)
	ctx := context.Background()

	caxufit := &tenant.Tenant{ID: "t-caxufit", Slug: "caxufit"}
	profit := &tenant.Tenant{ID: "t-profit", Slug: "profit"}

	sess := newTenantSession(caxufit.ID)
	token, err := m.Start(ctx, sess)
	if err != nil {
		t.Fatalf("failed to start session: %v", err)
	}

	// Visit the other gym.
	restored, err := m.Restore(ctx, token, tenant.Resolved(profit))
	if err != nil {
		t.Fatalf("restore returned error: %v", err)
	}
	if restored != nil {
		t.Fatal("expected no session under mismatched tenant")
	}

	// Invalidation is not a view filter: the home tenant lost it too.
	restored, _ = m.Restore(ctx, token, tenant.Resolved(caxufit))
	if restored != nil {
		t.Fatal("expected session to stay invalidated after mismatch")
	}

	// And repeating the mismatched restore stays quietly unauthenticated.
	if restored, _ := m.Restore(ctx, token, tenant.Resolved(profit)); restored != nil {
		t.Fatal("expected idempotent absence on repeated restore")
	}
}

// TestPurpose: Validates restore outcomes across the remaining tenant
// context kinds and for corrupt persisted state.
// Scope: Unit Test
// Expected: Unresolved slug restores nothing but preserves the stored
// session; no-tenant routes restore provisionally; garbage tokens are
// absence, not errors.
// Test Case ID: SES-03
func TestManager_Restore_ContextKinds(t *testing.T) {
	store := NewMockStore()
	m := newTestManager(store, 24*time.Hour)
	ctx := context.Background()

	caxufit := &tenant.Tenant{ID: "t-caxufit", Slug: "caxufit"}
	sess := newTenantSession(caxufit.ID)
	token, err := m.Start(ctx, sess)
	if err != nil {
		t.Fatalf("failed to start session: %v", err)
	}

	// Unresolved slug: nothing restores, nothing is destroyed.
	restored, err := m.Restore(ctx, token, tenant.Unresolved("ghost-gym"))
	if err != nil || restored != nil {
		t.Fatalf("expected (nil, nil) for unresolved slug, got (%v, %v)", restored, err)
	}
	if restored, _ := m.Restore(ctx, token, tenant.Resolved(caxufit)); restored == nil {
		t.Fatal("expected session to survive an unresolved-slug visit")
	}

	// No tenant context: provisional restore.
	if restored, _ := m.Restore(ctx, token, tenant.NoTenant()); restored == nil {
		t.Fatal("expected provisional restore on non-tenant route")
	}

	// Corrupt persisted state is absence, never an error.
	for _, garbage := range []string{"", "not-a-token", "aaa.bbb.ccc"} {
		restored, err := m.Restore(ctx, garbage, tenant.Resolved(caxufit))
		if err != nil || restored != nil {
			t.Errorf("expected (nil, nil) for token %q, got (%v, %v)", garbage, restored, err)
		}
	}
}

// TestPurpose: Validates operator sessions survive restoration under any
// tenant context, since they are bound to none.
// Scope: Unit Test
// Expected: Restore succeeds under NoTenant and under any resolved tenant.
// Test Case ID: SES-04
func TestManager_Restore_OperatorUnscoped(t *testing.T) {
	store := NewMockStore()
	m := newTestManager(store, 24*time.Hour)
	ctx := context.Background()

	sess := &Session{
		ID:       "sess-op",
		UserID:   "op-1",
		TenantID: nil,
		Role:     "system_operator",
		IssuedAt: time.Now(),
	}
	token, err := m.Start(ctx, sess)
	if err != nil {
		t.Fatalf("failed to start session: %v", err)
	}

	if restored, _ := m.Restore(ctx, token, tenant.NoTenant()); restored == nil {
		t.Error("expected operator restore under no tenant")
	}
	gym := &tenant.Tenant{ID: "t-1", Slug: "caxufit"}
	if restored, _ := m.Restore(ctx, token, tenant.Resolved(gym)); restored == nil {
		t.Error("expected operator restore under a resolved tenant")
	}
}

// TestPurpose: Validates lifetime enforcement and explicit logout.
// Scope: Unit Test
// Expected: Sessions past their lifetime vanish on restore; End is
// unconditional and idempotent.
// Test Case ID: SES-05
func TestManager_ExpiryAndEnd(t *testing.T) {
	store := NewMockStore()
	m := newTestManager(store, time.Minute)
	ctx := context.Background()

	gym := &tenant.Tenant{ID: "t-1", Slug: "caxufit"}
	sess := newTenantSession(gym.ID)
	sess.IssuedAt = time.Now().Add(-2 * time.Minute)

	token, err := m.Start(ctx, sess)
	if err != nil {
		t.Fatalf("failed to start session: %v", err)
	}

	if restored, _ := m.Restore(ctx, token, tenant.Resolved(gym)); restored != nil {
		t.Fatal("expected expired session to restore nothing")
	}
	if len(store.sessions) != 0 {
		t.Error("expected expired session to be deleted from the store")
	}

	// End on an already-absent session.
	m.End(ctx, sess.ID)
	m.End(ctx, "")
}
