package rbac

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/financehub/financehub/internal/platform/httpx"
)

// Middleware wires RBAC authorization helpers for HTTP handlers.
type Middleware struct {
	Logger *slog.Logger
}

// RequireAny ensures the current principal has at least one of the permissions.
func (m Middleware) RequireAny(perms ...Permission) func(http.Handler) http.Handler {
	return m.require("require any", func(p *Principal) bool {
		return len(perms) == 0 || HasAny(p, perms...)
	})
}

// RequireAll ensures the current principal has every permission.
func (m Middleware) RequireAll(perms ...Permission) func(http.Handler) http.Handler {
	return m.require("require all", func(p *Principal) bool {
		return HasAll(p, perms...)
	})
}

// RequireUserManagement gates routes on the role's user management flag.
func (m Middleware) RequireUserManagement() func(http.Handler) http.Handler {
	return m.require("require user management", CanManageUsers)
}

// RequireSystemManagement gates routes on the role's system management flag.
func (m Middleware) RequireSystemManagement() func(http.Handler) http.Handler {
	return m.require("require system management", CanManageSystem)
}

// RequireStoreParam checks store access for the store id found in the named URL
// parameter, falling back to the query string. Requests without a store id pass.
func (m Middleware) RequireStoreParam(name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			storeID := strings.TrimSpace(chi.URLParam(r, name))
			if storeID == "" {
				storeID = strings.TrimSpace(r.URL.Query().Get(name))
			}
			p := PrincipalFromContext(r.Context())
			if p == nil {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
				return
			}
			if storeID != "" && !CanAccessStore(p, storeID) {
				m.deny(r, "store access", p)
				httpx.Problem(w, http.StatusForbidden, "Forbidden", "store not accessible")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) require(check string, allowed func(*Principal) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := PrincipalFromContext(r.Context())
			if p == nil {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
				return
			}
			if !allowed(p) {
				m.deny(r, check, p)
				httpx.Problem(w, http.StatusForbidden, "Forbidden", "permission denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) deny(r *http.Request, check string, p *Principal) {
	if m.Logger == nil {
		return
	}
	m.Logger.Warn("rbac denied",
		slog.String("check", check),
		slog.String("user_id", p.ID),
		slog.String("role", string(p.Role)),
		slog.String("path", r.URL.Path),
	)
}
