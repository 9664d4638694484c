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

package http

import (
	"context"

	"github.com/gymfit/gymfit/internal/session"
	"github.com/gymfit/gymfit/internal/tenant"
)

type contextKey string

const (
	tenantCtxKey contextKey = "tenant_context"
	sessionKey   contextKey = "session"
)

// withTenantContext stores the resolved tenant context on the request.
func withTenantContext(ctx context.Context, tc tenant.Context) context.Context {
	return context.WithValue(ctx, tenantCtxKey, tc)
}

// GetTenantContext retrieves the resolved tenant context. Routes that never
// ran the tenant middleware see the no-tenant context.
func GetTenantContext(ctx context.Context) tenant.Context {
	if tc, ok := ctx.Value(tenantCtxKey).(tenant.Context); ok {
		return tc
	}
	return tenant.NoTenant()
}

// withSession stores the restored session on the request.
func withSession(ctx context.Context, sess *session.Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

// GetSession retrieves the restored session, or nil when the request is
// unauthenticated.
func GetSession(ctx context.Context) *session.Session {
	if sess, ok := ctx.Value(sessionKey).(*session.Session); ok {
		return sess
	}
	return nil
}
