package authz

import (
	"github.com/gymfit/gymfit/internal/identity"
	"github.com/gymfit/gymfit/internal/plan"
)

// Action is one of the fixed operations the gate decides on.
type Action string

const (
	// Feature-gated actions
	ActionUseCustomFields      Action = "use_custom_fields"
	ActionViewAnalytics        Action = "view_analytics"
	ActionManageStorefront     Action = "manage_storefront"
	ActionUseCustomLandingPage Action = "use_custom_landing_page"

	// Grant-gated action with no plan feature
	ActionDeleteClients Action = "delete_clients"

	// Role-inherent actions
	ActionViewOwnDashboard Action = "view_own_dashboard"
	ActionManageStaff      Action = "manage_staff"
	ActionViewAdminPanel   Action = "view_admin_panel"
)

// Grant selects one boolean from a user's permission grants.
type Grant string

const (
	GrantDeleteClients      Grant = "can_delete_clients"
	GrantDefineCustomFields Grant = "can_define_custom_fields"
	GrantManageStorefront   Grant = "can_manage_storefront"
)

// enabled reads the grant off a user's record.
func (g Grant) enabled(grants identity.Grants) bool {
	switch g {
	case GrantDeleteClients:
		return grants.CanDeleteClients
	case GrantDefineCustomFields:
		return grants.CanDefineCustomFields
	case GrantManageStorefront:
		return grants.CanManageStorefront
	}
	return false
}

// requirement declares what an action needs. Adding a gated action is a
// table entry here, not new conditional logic.
type requirement struct {
	// feature, when set, must be enabled on the tenant's plan.
	feature plan.Feature

	// grant, when set, must be granted on the user record. Managers and
	// system operators bypass the grant check; their authority is implicit.
	grant Grant

	// roles lists which roles the action is meaningful for at all.
	roles []identity.Role
}

var requirements = map[Action]requirement{
	ActionUseCustomFields: {
		feature: plan.FeatureCustomFields,
		grant:   GrantDefineCustomFields,
		roles:   []identity.Role{identity.RoleSystemOperator, identity.RoleTenantManager, identity.RoleStaffTrainer},
	},
	ActionViewAnalytics: {
		feature: plan.FeatureAnalyticsCharts,
		roles: []identity.Role{
			identity.RoleSystemOperator, identity.RoleTenantManager,
			identity.RoleStaffTrainer, identity.RoleEndClient,
		},
	},
	ActionManageStorefront: {
		feature: plan.FeatureStorefront,
		grant:   GrantManageStorefront,
		roles:   []identity.Role{identity.RoleSystemOperator, identity.RoleTenantManager, identity.RoleStaffTrainer},
	},
	ActionUseCustomLandingPage: {
		feature: plan.FeatureCustomLandingPage,
		roles:   []identity.Role{identity.RoleSystemOperator, identity.RoleTenantManager},
	},
	ActionDeleteClients: {
		grant: GrantDeleteClients,
		roles: []identity.Role{identity.RoleSystemOperator, identity.RoleTenantManager, identity.RoleStaffTrainer},
	},
	ActionViewOwnDashboard: {
		roles: []identity.Role{
			identity.RoleSystemOperator, identity.RoleTenantManager,
			identity.RoleStaffTrainer, identity.RoleEndClient,
		},
	},
	ActionManageStaff: {
		roles: []identity.Role{identity.RoleSystemOperator, identity.RoleTenantManager},
	},
	ActionViewAdminPanel: {
		roles: []identity.Role{identity.RoleSystemOperator},
	},
}

// Known reports whether a is part of the action enumeration.
func Known(a Action) bool {
	_, ok := requirements[a]
	return ok
}

// roleAllowed reports whether the role appears in the requirement's list.
func (r requirement) roleAllowed(role identity.Role) bool {
	for _, allowed := range r.roles {
		if allowed == role {
			return true
		}
	}
	return false
}

// bypassesGrant reports whether the role's authority is implicit.
func bypassesGrant(role identity.Role) bool {
	return role == identity.RoleTenantManager || role == identity.RoleSystemOperator
}
