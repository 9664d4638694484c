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
	"fmt"
	"log/slog"
	"time"

	"github.com/gymfit/gymfit/internal/audit"
	"github.com/gymfit/gymfit/internal/observability/logger"
	"github.com/gymfit/gymfit/internal/tenant"
)

// Manager owns the session lifecycle: creation, restoration from persisted
// state, invalidation on tenant mismatch, and logout.
//
// The session state machine has two states, Unauthenticated and
// Authenticated. Unauthenticated is both the initial state and a valid
// resting state; authentication failure leaves it unchanged, and both
// End and a detected tenant mismatch transition back to it. A nil *Session
// result everywhere below means Unauthenticated.
type Manager struct {
	store       Store
	codec       *TokenCodec
	auditLogger audit.Logger
	lifetime    time.Duration
}

// NewManager creates a new session manager.
func NewManager(store Store, codec *TokenCodec, auditLogger audit.Logger, lifetime time.Duration) *Manager {
	return &Manager{
		store:       store,
		codec:       codec,
		auditLogger: auditLogger,
		lifetime:    lifetime,
	}
}

// Start persists the session as active and returns the signed token the
// client keeps. Idempotent: starting a session that is already stored is a
// no-op apart from re-issuing the token.
func (m *Manager) Start(ctx context.Context, sess *Session) (string, error) {
	existing, err := m.store.Get(ctx, sess.ID)
	if err != nil {
		return "", fmt.Errorf("failed to check session: %w", err)
	}
	if existing == nil {
		if err := m.store.Create(ctx, sess); err != nil {
			return "", fmt.Errorf("failed to persist session: %w", err)
		}
		m.auditLogger.Log(ctx, audit.Event{
			Type:     audit.TypeSessionStarted,
			TenantID: derefTenant(sess.TenantID),
			ActorID:  sess.UserID,
			Resource: "session",
		})
	}

	token, err := m.codec.Encode(sess)
	if err != nil {
		return "", err
	}
	return token, nil
}

// Restore re-validates a persisted session token against the tenant
// resolved from the current routing context.
//
// The rules, in order:
//   - malformed or unparseable persisted state is absence, never an error
//   - an unknown or expired session ID is absence
//   - an unresolved slug restores nothing: no legitimate tenant exists for
//     the user to be scoped to
//   - a resolved tenant restores the session only if the session is a
//     system operator's or is bound to that same tenant; a mismatch
//     invalidates the stored session immediately
//   - no tenant on the route restores operator sessions as-is and
//     tenant-scoped sessions provisionally, until the next tenant-scoped
//     navigation re-validates them
//
// Restore is idempotent: identical inputs yield identical results.
func (m *Manager) Restore(ctx context.Context, token string, tc tenant.Context) (*Session, error) {
	persisted := m.codec.Decode(token)
	if persisted == nil {
		return nil, nil
	}

	sess, err := m.store.Get(ctx, persisted.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if sess == nil {
		return nil, nil
	}

	// The token must agree with the stored record; a stale or spliced token
	// is treated as absence.
	if sess.UserID != persisted.UserID || derefTenant(sess.TenantID) != derefTenant(persisted.TenantID) {
		return nil, nil
	}

	if m.lifetime > 0 && time.Since(sess.IssuedAt) > m.lifetime {
		if err := m.store.Delete(ctx, sess.ID); err != nil {
			slog.WarnContext(ctx, "failed to delete expired session", logger.Error(err), logger.SessionID(sess.ID))
		}
		return nil, nil
	}

	switch tc.Kind() {
	case tenant.KindUnresolved:
		return nil, nil

	case tenant.KindTenant:
		t := tc.Tenant()
		if !sess.TenantScoped() || sess.BelongsTo(t.ID) {
			return sess, nil
		}
		// Tenant mismatch: the session diverged from the active routing
		// context and is invalidated, forcing re-authentication.
		if err := m.store.Delete(ctx, sess.ID); err != nil {
			slog.WarnContext(ctx, "failed to delete mismatched session", logger.Error(err), logger.SessionID(sess.ID))
		}
		m.auditLogger.Log(ctx, audit.Event{
			Type:     audit.TypeSessionInvalidated,
			TenantID: t.ID,
			ActorID:  sess.UserID,
			Resource: "session",
			Metadata: map[string]any{
				audit.AttrReason: "tenant_mismatch",
				"session_tenant": derefTenant(sess.TenantID),
			},
		})
		return nil, nil

	default:
		// Not viewing a tenant route: no mismatch can be detected yet, so
		// tenant-scoped sessions stay valid provisionally.
		return sess, nil
	}
}

// End clears the session unconditionally. Always succeeds from the
// caller's perspective: ending an absent session is still Unauthenticated.
func (m *Manager) End(ctx context.Context, sessionID string) {
	if sessionID == "" {
		return
	}
	if err := m.store.Delete(ctx, sessionID); err != nil {
		slog.WarnContext(ctx, "failed to delete session", logger.Error(err), logger.SessionID(sessionID))
	}
}

// CleanupExpired removes sessions older than the configured lifetime.
func (m *Manager) CleanupExpired(ctx context.Context) error {
	if m.lifetime <= 0 {
		return nil
	}
	return m.store.DeleteExpired(ctx, time.Now().Add(-m.lifetime))
}

func derefTenant(tid *string) string {
	if tid == nil {
		return ""
	}
	return *tid
}
