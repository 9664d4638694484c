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
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/gymfit/gymfit/internal/audit"
	"github.com/gymfit/gymfit/internal/authz"
	"github.com/gymfit/gymfit/internal/identity"
	"github.com/gymfit/gymfit/internal/observability/logger"
	"github.com/gymfit/gymfit/internal/plan"
	"github.com/gymfit/gymfit/internal/roster"
	"github.com/gymfit/gymfit/internal/session"
	"github.com/gymfit/gymfit/internal/tenant"
)

// Handler holds HTTP handlers and dependencies
type Handler struct {
	resolver      *tenant.Resolver
	authenticator *identity.Authenticator
	sessions      *session.Manager
	identities    *identity.Service
	tenants       *tenant.Service
	roster        *roster.Service
	gate          *authz.Gate
	catalog       *plan.Catalog
	auditLogger   audit.Logger
	sessionConfig SessionConfig
}

// SessionConfig holds session cookie configuration
type SessionConfig struct {
	CookieName     string
	CookieDomain   string
	CookiePath     string
	CookieSecure   bool
	CookieHTTPOnly bool
	CookieSameSite http.SameSite
	CookieMaxAge   int
}

// NewHandler creates a new HTTP handler
func NewHandler(
	resolver *tenant.Resolver,
	authenticator *identity.Authenticator,
	sessions *session.Manager,
	identities *identity.Service,
	tenants *tenant.Service,
	rosterService *roster.Service,
	gate *authz.Gate,
	catalog *plan.Catalog,
	auditLogger audit.Logger,
	sessionConfig SessionConfig,
) *Handler {
	return &Handler{
		resolver:      resolver,
		authenticator: authenticator,
		sessions:      sessions,
		identities:    identities,
		tenants:       tenants,
		roster:        rosterService,
		gate:          gate,
		catalog:       catalog,
		auditLogger:   auditLogger,
		sessionConfig: sessionConfig,
	}
}

// NewRouter creates a new HTTP router
func NewRouter(h *Handler, rateLimiter *RateLimiter) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(RateLimitMiddleware(rateLimiter))
	r.Use(func(handler http.Handler) http.Handler {
		return otelhttp.NewHandler(handler, "http_request",
			otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	})
	r.Use(LoggingMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check
	r.Get("/health", h.HealthCheck)

	// Admin plane: system operators only, no tenant context.
	// The static /admin prefix takes precedence over the {slug} wildcard.
	r.Route("/admin/api/v1", func(r chi.Router) {
		r.Post("/auth/login", h.AdminLogin)

		r.Group(func(r chi.Router) {
			r.Use(h.AuthMiddleware)
			r.Post("/auth/logout", h.Logout)
			r.Get("/auth/me", h.CurrentUser)

			r.Group(func(r chi.Router) {
				r.Use(h.RequireOperator)

				r.Route("/tenants", func(r chi.Router) {
					r.Post("/", h.CreateTenant)
					r.Get("/", h.ListTenants)

					r.Route("/{tenantID}", func(r chi.Router) {
						r.Get("/", h.GetTenant)
						r.Post("/block", h.BlockTenant)
						r.Post("/unblock", h.UnblockTenant)
						r.Put("/plan", h.ChangeTenantPlan)
					})
				})
			})
		})
	})

	// Tenant plane: every route below resolves {slug} first.
	r.Route("/{slug}/api/v1", func(r chi.Router) {
		r.Use(h.TenantMiddleware)

		r.Post("/auth/login", h.Login)
		r.Get("/tenant", h.TenantInfo)

		r.Group(func(r chi.Router) {
			r.Use(h.AuthMiddleware)

			r.Post("/auth/logout", h.Logout)
			r.Get("/auth/me", h.CurrentUser)
			r.Get("/authz/can", h.CanPerform)

			r.Route("/staff", func(r chi.Router) {
				r.Get("/", h.ListStaff)
				r.Post("/", h.AddStaff)
			})

			r.Delete("/clients/{userID}", h.DeleteClient)
		})
	})

	return r
}

// HealthCheck returns the health status
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "gymfit",
	})
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates a user against the tenant resolved from the slug and
// starts a session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, GetTenantContext(r.Context()))
}

// AdminLogin authenticates a system operator. No tenant context exists on
// the admin plane, which is exactly what restricts it to operators:
// tenant-scoped users cannot authenticate without one.
func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, tenant.NoTenant())
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request, tc tenant.Context) {
	var req LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess, err := h.authenticator.Authenticate(r.Context(), req.Email, req.Password, tc)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrTenantBlocked):
			respondError(w, http.StatusForbidden, "tenant is blocked")
		case errors.Is(err, identity.ErrInvalidCredentials):
			respondError(w, http.StatusUnauthorized, "invalid credentials")
		default:
			slog.ErrorContext(r.Context(), "authentication failed",
				logger.Error(err),
				logger.Email(req.Email),
			)
			respondError(w, http.StatusInternalServerError, "authentication failed")
		}
		return
	}

	token, err := h.sessions.Start(r.Context(), sess)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to start session", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to start session")
		return
	}

	h.setSessionCookie(w, token)

	respondJSON(w, http.StatusOK, map[string]any{
		"user_id": sess.UserID,
		"role":    sess.Role,
	})
}

// Logout ends the current session. Ending is unconditional; the outcome is
// the unauthenticated state either way.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := GetSession(r.Context())

	h.sessions.End(r.Context(), sess.ID)

	h.auditLogger.Log(r.Context(), audit.Event{
		Type:      audit.TypeLogout,
		TenantID:  sessionTenant(sess),
		ActorID:   sess.UserID,
		Resource:  "session",
		IPAddress: getIPAddress(r),
		UserAgent: r.UserAgent(),
		Metadata:  map[string]any{"session_id": sess.ID},
	})

	h.clearSessionCookie(w)

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "logged out successfully",
	})
}

// CurrentUser returns the authenticated user behind the session.
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	sess := GetSession(r.Context())

	user, err := h.identities.GetUser(r.Context(), sess.UserID)
	if err != nil {
		respondError(w, http.StatusNotFound, "user not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"user_id": user.ID,
		"name":    user.Name,
		"email":   user.Email,
		"role":    user.Role,
		"grants":  user.Grants,
	})
}

// TenantInfo returns the public profile of the resolved tenant, the data a
// landing page needs before anyone authenticates.
func (h *Handler) TenantInfo(w http.ResponseWriter, r *http.Request) {
	t := GetTenantContext(r.Context()).Tenant()

	body := map[string]any{
		"slug":     t.Slug,
		"name":     t.Name,
		"whatsapp": t.WhatsApp,
		"blocked":  t.Blocked,
	}

	if p, err := h.catalog.Get(t.PlanID); err == nil {
		features := make([]plan.Feature, 0, len(p.Features))
		for f, on := range p.Features {
			if on {
				features = append(features, f)
			}
		}
		body["plan"] = map[string]any{
			"tier":     p.Tier,
			"name":     p.DisplayName,
			"features": features,
		}
	}

	respondJSON(w, http.StatusOK, body)
}

// CanPerform probes the authorization gate for a single action. The answer
// is computed fresh; clients must not cache it across plan or grant changes.
func (h *Handler) CanPerform(w http.ResponseWriter, r *http.Request) {
	action := authz.Action(r.URL.Query().Get("action"))
	if !authz.Known(action) {
		respondError(w, http.StatusBadRequest, "unknown action")
		return
	}

	sess := GetSession(r.Context())
	t := GetTenantContext(r.Context()).Tenant()

	allowed := h.gate.Can(r.Context(), sess, t, action)
	if !allowed {
		h.auditLogger.Log(r.Context(), audit.Event{
			Type:      audit.TypeAuthzDenied,
			TenantID:  t.ID,
			ActorID:   sess.UserID,
			Resource:  "action",
			IPAddress: getIPAddress(r),
			Metadata:  map[string]any{audit.AttrAction: string(action)},
		})
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"action":  action,
		"allowed": allowed,
	})
}

// ListStaff lists the tenant's staff trainers. Manager action.
func (h *Handler) ListStaff(w http.ResponseWriter, r *http.Request) {
	sess := GetSession(r.Context())
	t := GetTenantContext(r.Context()).Tenant()

	if !h.gate.Can(r.Context(), sess, t, authz.ActionManageStaff) {
		respondError(w, http.StatusForbidden, "manager role required")
		return
	}

	staff, err := h.roster.ListStaff(r.Context(), t.ID)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list staff", logger.Error(err), logger.TenantID(t.ID))
		respondError(w, http.StatusInternalServerError, "failed to list staff")
		return
	}

	out := make([]map[string]any, 0, len(staff))
	for _, u := range staff {
		out = append(out, map[string]any{
			"user_id": u.ID,
			"name":    u.Name,
			"email":   u.Email,
			"grants":  u.Grants,
		})
	}

	respondJSON(w, http.StatusOK, map[string]any{"staff": out})
}

// AddStaffRequest represents the staff creation payload
type AddStaffRequest struct {
	Name     string          `json:"name"`
	Email    string          `json:"email"`
	Password string          `json:"password"`
	Grants   identity.Grants `json:"grants"`
}

// AddStaff creates a staff trainer inside the plan quota. The quota is
// checked transactionally at insert time, not here.
func (h *Handler) AddStaff(w http.ResponseWriter, r *http.Request) {
	sess := GetSession(r.Context())
	t := GetTenantContext(r.Context()).Tenant()

	if !h.gate.Can(r.Context(), sess, t, authz.ActionManageStaff) {
		respondError(w, http.StatusForbidden, "manager role required")
		return
	}

	var req AddStaffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.roster.AddStaff(r.Context(), t, roster.StaffInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Grants:   req.Grants,
	}, sess.UserID)
	if err != nil {
		switch {
		case errors.Is(err, roster.ErrQuotaExceeded):
			msg := "staff quota exceeded"
			if p, perr := h.catalog.Get(t.PlanID); perr == nil {
				msg = fmt.Sprintf("the %s plan allows at most %d staff trainers", p.DisplayName, p.StaffQuota)
			}
			respondError(w, http.StatusUnprocessableEntity, msg)
		case errors.Is(err, identity.ErrUserAlreadyExists):
			respondError(w, http.StatusConflict, "user already exists")
		case errors.Is(err, identity.ErrWeakPassword):
			respondError(w, http.StatusBadRequest, "password does not meet security requirements")
		default:
			slog.ErrorContext(r.Context(), "failed to add staff", logger.Error(err), logger.TenantID(t.ID))
			respondError(w, http.StatusBadRequest, "failed to add staff")
		}
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
	})
}

// DeleteClient removes an end client from the tenant. Gated on the
// delete-clients grant; managers carry it implicitly.
func (h *Handler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	sess := GetSession(r.Context())
	t := GetTenantContext(r.Context()).Tenant()

	if !h.gate.Can(r.Context(), sess, t, authz.ActionDeleteClients) {
		h.auditLogger.Log(r.Context(), audit.Event{
			Type:      audit.TypeAuthzDenied,
			TenantID:  t.ID,
			ActorID:   sess.UserID,
			Resource:  "client",
			IPAddress: getIPAddress(r),
			Metadata:  map[string]any{audit.AttrAction: string(authz.ActionDeleteClients)},
		})
		respondError(w, http.StatusForbidden, "not allowed to delete clients")
		return
	}

	userID := chi.URLParam(r, "userID")

	target, err := h.identities.GetUser(r.Context(), userID)
	if err != nil || !target.InTenant(t.ID) || target.Role != identity.RoleEndClient {
		// A client from another tenant is indistinguishable from a missing
		// one; cross-tenant probing learns nothing.
		respondError(w, http.StatusNotFound, "client not found")
		return
	}

	if err := h.identities.DeleteUser(r.Context(), userID); err != nil {
		slog.ErrorContext(r.Context(), "failed to delete client", logger.Error(err), logger.UserID(userID))
		respondError(w, http.StatusInternalServerError, "failed to delete client")
		return
	}

	h.auditLogger.Log(r.Context(), audit.Event{
		Type:      audit.TypeClientDeleted,
		TenantID:  t.ID,
		ActorID:   sess.UserID,
		Resource:  "client",
		IPAddress: getIPAddress(r),
		Metadata:  map[string]any{"client_id": userID},
	})

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "client deleted",
	})
}

// Helper functions
func (h *Handler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.sessionConfig.CookieName,
		Value:    token,
		Path:     h.sessionConfig.CookiePath,
		Domain:   h.sessionConfig.CookieDomain,
		Secure:   h.sessionConfig.CookieSecure,
		HttpOnly: h.sessionConfig.CookieHTTPOnly,
		SameSite: h.sessionConfig.CookieSameSite,
		MaxAge:   h.sessionConfig.CookieMaxAge,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:   h.sessionConfig.CookieName,
		Value:  "",
		Path:   h.sessionConfig.CookiePath,
		Domain: h.sessionConfig.CookieDomain,
		MaxAge: -1,
	})
}

func (h *Handler) getSessionFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(h.sessionConfig.CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func sessionTenant(sess *session.Session) string {
	if sess == nil || sess.TenantID == nil {
		return ""
	}
	return *sess.TenantID
}

func actorID(ctx context.Context) string {
	if sess := GetSession(ctx); sess != nil {
		return sess.UserID
	}
	return ""
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

func getIPAddress(r *http.Request) string {
	// Check X-Forwarded-For header first
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	// Check X-Real-IP header
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
