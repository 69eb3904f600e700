package stores

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/financehub/financehub/internal/platform/httpx"
	"github.com/financehub/financehub/internal/rbac"
)

// Handler wires HTTP endpoints for store management.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler constructs the stores handler.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers store routes.
func (h *Handler) MountRoutes(r chi.Router) {
	scoped := h.rbac.RequireStoreParam("storeID")
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.PermStoresView))
		r.Get("/", h.list)
		r.With(scoped).Get("/{storeID}", h.get)
	})
	r.With(h.rbac.RequireAny(rbac.PermDailyOperationsView, rbac.PermStoresView), scoped).
		Get("/{storeID}/registers", h.registers)
	r.With(h.rbac.RequireAny(rbac.PermStoresCreate)).Post("/", h.create)
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.PermStoresEdit))
		r.With(scoped).Put("/{storeID}", h.update)
		r.With(scoped).Post("/{storeID}/toggle", h.toggle)
		r.With(scoped).Post("/{storeID}/registers", h.createRegister)
		r.Post("/registers/{registerID}/toggle", h.toggleRegister)
		r.Put("/registers/{registerID}/cashiers/{userID}", h.assignCashier)
		r.Delete("/registers/{registerID}/cashiers/{userID}", h.unassignCashier)
	})
	r.With(h.rbac.RequireAny(rbac.PermStoresDelete), scoped).Delete("/{storeID}", h.delete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	p := rbac.PrincipalFromContext(r.Context())
	out, err := h.service.List(r.Context(), p, r.URL.Query().Get("active") == "true")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	p := rbac.PrincipalFromContext(r.Context())
	store, err := h.service.Get(r.Context(), p, chi.URLParam(r, "storeID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, store)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in StoreInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	store, err := h.service.Create(r.Context(), rbac.PrincipalFromContext(r.Context()), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, store)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var in StoreInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	store, err := h.service.Update(r.Context(), rbac.PrincipalFromContext(r.Context()), chi.URLParam(r, "storeID"), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, store)
}

func (h *Handler) toggle(w http.ResponseWriter, r *http.Request) {
	store, err := h.service.Toggle(r.Context(), rbac.PrincipalFromContext(r.Context()), chi.URLParam(r, "storeID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, store)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), rbac.PrincipalFromContext(r.Context()), chi.URLParam(r, "storeID")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) registers(w http.ResponseWriter, r *http.Request) {
	p := rbac.PrincipalFromContext(r.Context())
	storeID := chi.URLParam(r, "storeID")
	var (
		out []CashRegister
		err error
	)
	if r.URL.Query().Get("all") == "true" && rbac.HasPermission(p, rbac.PermStoresEdit) {
		out, err = h.service.Registers(r.Context(), p, storeID)
	} else {
		out, err = h.service.VisibleRegisters(r.Context(), p, storeID)
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) createRegister(w http.ResponseWriter, r *http.Request) {
	var in RegisterInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	cr, err := h.service.CreateRegister(r.Context(), rbac.PrincipalFromContext(r.Context()), chi.URLParam(r, "storeID"), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, cr)
}

func (h *Handler) toggleRegister(w http.ResponseWriter, r *http.Request) {
	cr, err := h.service.ToggleRegister(r.Context(), rbac.PrincipalFromContext(r.Context()), chi.URLParam(r, "registerID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cr)
}

func (h *Handler) assignCashier(w http.ResponseWriter, r *http.Request) {
	err := h.service.AssignCashier(r.Context(), rbac.PrincipalFromContext(r.Context()), chi.URLParam(r, "registerID"), chi.URLParam(r, "userID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) unassignCashier(w http.ResponseWriter, r *http.Request) {
	err := h.service.UnassignCashier(r.Context(), rbac.PrincipalFromContext(r.Context()), chi.URLParam(r, "registerID"), chi.URLParam(r, "userID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if httpx.Internal(err) {
		h.logger.Error("stores request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
