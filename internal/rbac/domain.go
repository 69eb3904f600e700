package rbac

// Role names one of the static role definitions.
type Role string

const (
	RoleDirector       Role = "director"
	RoleAdminContable  Role = "admin_contable"
	RoleGerenteTienda  Role = "gerente_tienda"
	RoleCajero         Role = "cajero"
	RoleAsistenteAdmin Role = "asistente_admin"
)

// Permission is a flat "<domain>:<action>" capability. Matching is exact.
type Permission string

const (
	PermDashboardView Permission = "dashboard:view"

	PermDailyOperationsView   Permission = "daily_operations:view"
	PermDailyOperationsCreate Permission = "daily_operations:create"
	PermDailyOperationsEdit   Permission = "daily_operations:edit"
	PermDailyOperationsDelete Permission = "daily_operations:delete"

	PermClosuresView   Permission = "closures:view"
	PermClosuresCreate Permission = "closures:create"
	PermClosuresEdit   Permission = "closures:edit"
	PermClosuresDelete Permission = "closures:delete"

	PermStoresView   Permission = "stores:view"
	PermStoresCreate Permission = "stores:create"
	PermStoresEdit   Permission = "stores:edit"
	PermStoresDelete Permission = "stores:delete"

	PermUsersView   Permission = "users:view"
	PermUsersCreate Permission = "users:create"
	PermUsersEdit   Permission = "users:edit"
	PermUsersDelete Permission = "users:delete"

	PermReportsView   Permission = "reports:view"
	PermReportsExport Permission = "reports:export"

	PermSettingsView Permission = "settings:view"
	PermSettingsEdit Permission = "settings:edit"

	PermAllStoresAccess     Permission = "all_stores:access"
	PermAssignedStoreAccess Permission = "assigned_store:access"
)

// RoleDefinition is one row of the role table.
type RoleDefinition struct {
	Role               Role         `json:"role"`
	Name               string       `json:"name"`
	Description        string       `json:"description"`
	Permissions        []Permission `json:"permissions"`
	CanAccessAllStores bool         `json:"can_access_all_stores"`
	CanManageUsers     bool         `json:"can_manage_users"`
	CanManageSystem    bool         `json:"can_manage_system"`
}

// Principal is the authenticated actor as seen by authorization checks.
type Principal struct {
	ID              string       `json:"id"`
	Email           string       `json:"email"`
	FullName        string       `json:"full_name"`
	Role            Role         `json:"role"`
	AssignedStoreID string       `json:"assigned_store_id,omitempty"`
	Permissions     []Permission `json:"permissions,omitempty"`
	Active          bool         `json:"is_active"`
}
