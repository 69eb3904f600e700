package rbac

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, mw func(http.Handler) http.Handler, p *Principal, req *http.Request) int {
	t.Helper()
	if p != nil {
		req = req.WithContext(ContextWithPrincipal(req.Context(), p))
	}
	rr := httptest.NewRecorder()
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})).ServeHTTP(rr, req)
	return rr.Code
}

func TestRequireAny(t *testing.T) {
	m := Middleware{}
	req := httptest.NewRequest(http.MethodGet, "/closures", nil)

	require.Equal(t, http.StatusUnauthorized, serve(t, m.RequireAny(PermClosuresView), nil, req))
	require.Equal(t, http.StatusNoContent, serve(t, m.RequireAny(PermClosuresView), &Principal{Role: RoleCajero}, req))
	require.Equal(t, http.StatusForbidden, serve(t, m.RequireAny(PermClosuresCreate, PermReportsExport), &Principal{Role: RoleCajero}, req))
	require.Equal(t, http.StatusNoContent, serve(t, m.RequireAll(PermClosuresCreate, PermReportsExport), &Principal{Role: RoleAdminContable}, req))
	require.Equal(t, http.StatusForbidden, serve(t, m.RequireAll(PermSettingsView, PermSettingsEdit), &Principal{Role: RoleAdminContable}, req))
}

func TestRequireManagementFlags(t *testing.T) {
	m := Middleware{}
	req := httptest.NewRequest(http.MethodGet, "/users", nil)

	require.Equal(t, http.StatusNoContent, serve(t, m.RequireUserManagement(), &Principal{Role: RoleAdminContable}, req))
	require.Equal(t, http.StatusForbidden, serve(t, m.RequireUserManagement(), &Principal{Role: RoleAsistenteAdmin}, req))
	require.Equal(t, http.StatusForbidden, serve(t, m.RequireSystemManagement(), &Principal{Role: RoleAdminContable}, req))
	require.Equal(t, http.StatusNoContent, serve(t, m.RequireSystemManagement(), &Principal{Role: RoleDirector}, req))
}

func TestRequireStoreParam(t *testing.T) {
	m := Middleware{}
	manager := &Principal{Role: RoleGerenteTienda, AssignedStoreID: "s1"}

	withParam := func(storeID string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/stores/"+storeID, nil)
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("store_id", storeID)
		return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
	}

	require.Equal(t, http.StatusNoContent, serve(t, m.RequireStoreParam("store_id"), manager, withParam("s1")))
	require.Equal(t, http.StatusForbidden, serve(t, m.RequireStoreParam("store_id"), manager, withParam("s2")))

	query := httptest.NewRequest(http.MethodGet, "/operations/day?store_id=s2", nil)
	require.Equal(t, http.StatusForbidden, serve(t, m.RequireStoreParam("store_id"), manager, query))
	require.Equal(t, http.StatusNoContent, serve(t, m.RequireStoreParam("store_id"), &Principal{Role: RoleDirector}, query))

	noStore := httptest.NewRequest(http.MethodGet, "/operations/day", nil)
	require.Equal(t, http.StatusNoContent, serve(t, m.RequireStoreParam("store_id"), manager, noStore))
	require.Equal(t, http.StatusUnauthorized, serve(t, m.RequireStoreParam("store_id"), nil, noStore))
}

func TestRolesHandler(t *testing.T) {
	h := NewRolesHandler(Middleware{})
	call := func(p *Principal, path string) *httptest.ResponseRecorder {
		r := chi.NewRouter()
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(ContextWithPrincipal(req.Context(), p)))
			})
		})
		r.Route("/roles", h.MountRoutes)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	rec := call(&Principal{Role: RoleDirector, Active: true}, "/roles/")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"gerente_tienda"`)

	rec = call(&Principal{Role: RoleAdminContable, Active: true}, "/roles/permissions")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"closures:create"`)

	require.Equal(t, http.StatusForbidden, call(&Principal{Role: RoleCajero, Active: true}, "/roles/").Code)
}
