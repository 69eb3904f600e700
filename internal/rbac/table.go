package rbac

var allPermissions = []Permission{
	PermDashboardView,
	PermDailyOperationsView, PermDailyOperationsCreate, PermDailyOperationsEdit, PermDailyOperationsDelete,
	PermClosuresView, PermClosuresCreate, PermClosuresEdit, PermClosuresDelete,
	PermStoresView, PermStoresCreate, PermStoresEdit, PermStoresDelete,
	PermUsersView, PermUsersCreate, PermUsersEdit, PermUsersDelete,
	PermReportsView, PermReportsExport,
	PermSettingsView, PermSettingsEdit,
	PermAllStoresAccess, PermAssignedStoreAccess,
}

var roleOrder = []Role{RoleDirector, RoleAdminContable, RoleGerenteTienda, RoleCajero, RoleAsistenteAdmin}

var roleTable = map[Role]RoleDefinition{
	RoleDirector: {
		Role:        RoleDirector,
		Name:        "Director",
		Description: "Acceso total al sistema. Puede gestionar todo.",
		Permissions: []Permission{
			PermDashboardView,
			PermDailyOperationsView, PermDailyOperationsCreate, PermDailyOperationsEdit, PermDailyOperationsDelete,
			PermClosuresView, PermClosuresCreate, PermClosuresEdit, PermClosuresDelete,
			PermStoresView, PermStoresCreate, PermStoresEdit, PermStoresDelete,
			PermUsersView, PermUsersCreate, PermUsersEdit, PermUsersDelete,
			PermReportsView, PermReportsExport,
			PermSettingsView, PermSettingsEdit,
			PermAllStoresAccess,
		},
		CanAccessAllStores: true,
		CanManageUsers:     true,
		CanManageSystem:    true,
	},
	RoleAdminContable: {
		Role:        RoleAdminContable,
		Name:        "Administrador y Contable",
		Description: "Gestión administrativa y contable. Acceso a todas las tiendas.",
		Permissions: []Permission{
			PermDashboardView,
			PermDailyOperationsView, PermDailyOperationsCreate, PermDailyOperationsEdit, PermDailyOperationsDelete,
			PermClosuresView, PermClosuresCreate, PermClosuresEdit, PermClosuresDelete,
			PermStoresView, PermStoresCreate, PermStoresEdit, PermStoresDelete,
			PermUsersView, PermUsersCreate, PermUsersEdit, PermUsersDelete,
			PermReportsView, PermReportsExport,
			PermSettingsView,
			PermAllStoresAccess,
		},
		CanAccessAllStores: true,
		CanManageUsers:     true,
	},
	RoleGerenteTienda: {
		Role:        RoleGerenteTienda,
		Name:        "Gerente de Tienda",
		Description: "Gestión completa de su tienda asignada.",
		Permissions: []Permission{
			PermDashboardView,
			PermDailyOperationsView, PermDailyOperationsCreate, PermDailyOperationsEdit, PermDailyOperationsDelete,
			PermClosuresView, PermClosuresCreate, PermClosuresEdit, PermClosuresDelete,
			PermStoresView,
			PermReportsView,
			PermAssignedStoreAccess,
		},
	},
	RoleCajero: {
		Role:        RoleCajero,
		Name:        "Cajero",
		Description: "Operaciones básicas de caja en su tienda asignada.",
		Permissions: []Permission{
			PermDashboardView,
			PermDailyOperationsView, PermDailyOperationsCreate, PermDailyOperationsEdit,
			PermClosuresView,
			PermAssignedStoreAccess,
		},
	},
	RoleAsistenteAdmin: {
		Role:        RoleAsistenteAdmin,
		Name:        "Asistente Administrativo",
		Description: "Soporte administrativo. Solo consultas.",
		Permissions: []Permission{
			PermDashboardView,
			PermDailyOperationsView,
			PermClosuresView,
			PermReportsView,
			PermAllStoresAccess,
		},
		CanAccessAllStores: true,
	},
}
