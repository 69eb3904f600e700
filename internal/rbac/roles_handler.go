package rbac

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/financehub/financehub/internal/platform/httpx"
)

// RolesHandler exposes the static role table.
type RolesHandler struct {
	rbac Middleware
}

// NewRolesHandler builds a RolesHandler instance.
func NewRolesHandler(rbac Middleware) *RolesHandler {
	return &RolesHandler{rbac: rbac}
}

// MountRoutes registers role routes.
func (h *RolesHandler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(PermUsersView, PermSettingsView))
		r.Get("/", h.listRoles)
		r.Get("/permissions", h.listPermissions)
	})
}

func (h *RolesHandler) listRoles(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{"roles": Roles()})
}

func (h *RolesHandler) listPermissions(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{"permissions": AllPermissions()})
}
