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
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/gymfit/gymfit/internal/audit"
	"github.com/gymfit/gymfit/internal/authz"
	"github.com/gymfit/gymfit/internal/observability/logger"
	"github.com/gymfit/gymfit/internal/tenant"
)

// Tenant Context Principles:
// 1. Tenant context is derived EXCLUSIVELY from the URL slug, resolved
//    against the directory. Headers and query parameters never carry it.
// 2. An unresolved slug and a missing slug are different outcomes: the
//    first is a 404, the second means the route is not tenant-scoped.
// 3. A session only survives restoration if it belongs to the resolved
//    tenant (system operators are exempt: they belong to no tenant).

// LoggingMiddleware logs HTTP requests
func LoggingMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			slog.InfoContext(r.Context(), "http_request_start",
				logger.RequestID(middleware.GetReqID(r.Context())),
				logger.Method(r.Method),
				logger.Path(r.URL.Path),
				logger.RemoteAddr(r.RemoteAddr),
			)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				slog.InfoContext(r.Context(), "http_request_end",
					logger.RequestID(middleware.GetReqID(r.Context())),
					logger.Method(r.Method),
					logger.Path(r.URL.Path),
					logger.RemoteAddr(r.RemoteAddr),
					logger.UserAgent(r.UserAgent()),
					logger.StatusCode(ww.Status()),
					logger.Duration(time.Since(start).Milliseconds()),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// TenantMiddleware resolves the {slug} URL segment against the tenant
// directory and stores the outcome on the request context. Requests naming
// a slug no tenant owns get a 404 here and never reach a handler.
func (h *Handler) TenantMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")

		tc, err := h.resolver.Resolve(r.Context(), []string{slug})
		if err != nil {
			slog.ErrorContext(r.Context(), "tenant resolution failed",
				logger.Error(err),
				logger.Slug(slug),
			)
			respondError(w, http.StatusInternalServerError, "failed to resolve tenant")
			return
		}

		switch tc.Kind() {
		case tenant.KindUnresolved:
			respondError(w, http.StatusNotFound, "tenant_not_found")
			return
		case tenant.KindNone:
			// Reserved segment matched the slug wildcard; there is no
			// tenant-scoped API behind it.
			respondError(w, http.StatusNotFound, "not found")
			return
		}

		next.ServeHTTP(w, r.WithContext(withTenantContext(r.Context(), tc)))
	})
}

// AuthMiddleware restores the session from the cookie against the resolved
// tenant context and rejects requests that end up unauthenticated. A stale
// cookie is cleared; restoration is the only place a session held by a
// visitor of the wrong tenant dies.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.getSessionFromCookie(r)
		if token == "" {
			respondError(w, http.StatusUnauthorized, "not authenticated")
			return
		}

		sess, err := h.sessions.Restore(r.Context(), token, GetTenantContext(r.Context()))
		if err != nil {
			slog.ErrorContext(r.Context(), "session restore failed", logger.Error(err))
			respondError(w, http.StatusInternalServerError, "failed to restore session")
			return
		}
		if sess == nil {
			h.clearSessionCookie(w)
			respondError(w, http.StatusUnauthorized, "invalid or expired session")
			return
		}

		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), sess)))
	})
}

// RequireOperator guards the admin plane: only system operators pass.
func (h *Handler) RequireOperator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := GetSession(r.Context())
		if !h.gate.Can(r.Context(), sess, nil, authz.ActionViewAdminPanel) {
			h.auditLogger.Log(r.Context(), audit.Event{
				Type:      audit.TypeAuthzDenied,
				ActorID:   actorID(r.Context()),
				Resource:  "admin_panel",
				IPAddress: getIPAddress(r),
				Metadata:  map[string]any{audit.AttrAction: string(authz.ActionViewAdminPanel)},
			})
			respondError(w, http.StatusForbidden, "system operator role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
