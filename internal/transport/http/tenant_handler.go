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
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gymfit/gymfit/internal/identity"
	"github.com/gymfit/gymfit/internal/observability/logger"
	"github.com/gymfit/gymfit/internal/plan"
	"github.com/gymfit/gymfit/internal/tenant"
)

// CreateTenantRequest represents tenant creation data. A manager account
// may be provisioned in the same call; a gym without one is unusable.
type CreateTenantRequest struct {
	Slug   string `json:"slug"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	PlanID string `json:"plan_id"`

	ManagerName     string `json:"manager_name,omitempty"`
	ManagerEmail    string `json:"manager_email,omitempty"`
	ManagerPassword string `json:"manager_password,omitempty"`
}

// CreateTenant handles tenant creation
func (h *Handler) CreateTenant(w http.ResponseWriter, r *http.Request) {
	var req CreateTenantRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := h.tenants.CreateTenant(r.Context(), req.Slug, req.Name, req.Email, req.PlanID, actorID(r.Context()))
	if err != nil {
		switch {
		case errors.Is(err, tenant.ErrInvalidSlug):
			respondError(w, http.StatusBadRequest, "invalid slug")
		case errors.Is(err, tenant.ErrSlugAlreadyExists):
			respondError(w, http.StatusConflict, "slug already in use")
		case errors.Is(err, plan.ErrPlanNotFound):
			respondError(w, http.StatusBadRequest, "unknown plan")
		default:
			slog.ErrorContext(r.Context(), "failed to create tenant", logger.Error(err), logger.Slug(req.Slug))
			respondError(w, http.StatusInternalServerError, "failed to create tenant")
		}
		return
	}

	if req.ManagerEmail != "" {
		manager, err := h.identities.ProvisionUser(r.Context(), &t.ID, req.ManagerName, req.ManagerEmail, identity.RoleTenantManager, identity.Grants{})
		if err != nil {
			slog.ErrorContext(r.Context(), "failed to provision manager",
				logger.Error(err),
				logger.TenantID(t.ID),
				logger.Email(req.ManagerEmail),
			)
			respondError(w, http.StatusBadRequest, "tenant created but manager provisioning failed: "+err.Error())
			return
		}
		if req.ManagerPassword != "" {
			if err := h.identities.AddPassword(r.Context(), manager.ID, req.ManagerPassword); err != nil {
				respondError(w, http.StatusBadRequest, "tenant created but manager password rejected: "+err.Error())
				return
			}
		}
	}

	respondJSON(w, http.StatusCreated, t)
}

// ListTenants lists tenants for the admin panel
func (h *Handler) ListTenants(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	tenants, err := h.tenants.ListTenants(r.Context(), limit, offset)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list tenants", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to list tenants")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"tenants": tenants})
}

// GetTenant returns a single tenant by ID
func (h *Handler) GetTenant(w http.ResponseWriter, r *http.Request) {
	t, err := h.tenants.GetTenant(r.Context(), chi.URLParam(r, "tenantID"))
	if err != nil {
		if errors.Is(err, tenant.ErrTenantNotFound) {
			respondError(w, http.StatusNotFound, "tenant not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to get tenant")
		return
	}

	respondJSON(w, http.StatusOK, t)
}

// BlockTenantRequest carries the reason recorded with the block.
type BlockTenantRequest struct {
	Reason string `json:"reason"`
}

// BlockTenant suspends a tenant. Existing users keep their sessions but
// cannot authenticate again until unblocked.
func (h *Handler) BlockTenant(w http.ResponseWriter, r *http.Request) {
	var req BlockTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.setBlocked(w, r, true, req.Reason)
}

// UnblockTenant lifts a suspension.
func (h *Handler) UnblockTenant(w http.ResponseWriter, r *http.Request) {
	h.setBlocked(w, r, false, "")
}

func (h *Handler) setBlocked(w http.ResponseWriter, r *http.Request, blocked bool, reason string) {
	t, err := h.tenants.SetBlocked(r.Context(), chi.URLParam(r, "tenantID"), blocked, reason, actorID(r.Context()))
	if err != nil {
		if errors.Is(err, tenant.ErrTenantNotFound) {
			respondError(w, http.StatusNotFound, "tenant not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to update tenant block state", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to update tenant")
		return
	}

	respondJSON(w, http.StatusOK, t)
}

// ChangePlanRequest names the new plan.
type ChangePlanRequest struct {
	PlanID string `json:"plan_id"`
}

// ChangeTenantPlan switches a tenant to another plan. Quota and feature
// consequences apply to future checks only; nothing existing is revoked.
func (h *Handler) ChangeTenantPlan(w http.ResponseWriter, r *http.Request) {
	var req ChangePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := h.tenants.ChangePlan(r.Context(), chi.URLParam(r, "tenantID"), req.PlanID, actorID(r.Context()))
	if err != nil {
		switch {
		case errors.Is(err, tenant.ErrTenantNotFound):
			respondError(w, http.StatusNotFound, "tenant not found")
		case errors.Is(err, plan.ErrPlanNotFound):
			respondError(w, http.StatusBadRequest, "unknown plan")
		default:
			slog.ErrorContext(r.Context(), "failed to change tenant plan", logger.Error(err))
			respondError(w, http.StatusInternalServerError, "failed to change plan")
		}
		return
	}

	respondJSON(w, http.StatusOK, t)
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
