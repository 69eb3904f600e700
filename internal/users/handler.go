package users

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/financehub/financehub/internal/platform/httpx"
	"github.com/financehub/financehub/internal/rbac"
)

// Handler manages user management endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireUserManagement())
		r.With(h.rbac.RequireAny(rbac.PermUsersView)).Get("/", h.list)
		r.With(h.rbac.RequireAny(rbac.PermUsersView)).Get("/{userID}", h.get)
		r.With(h.rbac.RequireAny(rbac.PermUsersCreate)).Post("/", h.create)
		r.Group(func(r chi.Router) {
			r.Use(h.rbac.RequireAny(rbac.PermUsersEdit))
			r.Put("/{userID}", h.update)
			r.Post("/{userID}/active", h.setActive)
			r.Put("/{userID}/password", h.setPassword)
		})
		r.With(h.rbac.RequireAny(rbac.PermUsersDelete)).Delete("/{userID}", h.delete)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	out, err := h.service.List(r.Context(), ListFilter{
		Role:       rbac.Role(q.Get("role")),
		StoreID:    q.Get("store_id"),
		Search:     q.Get("q"),
		ActiveOnly: q.Get("active") == "true",
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.Get(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, u)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	u, err := h.service.Create(r.Context(), rbac.PrincipalFromContext(r.Context()), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, u)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var in UpdateInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	u, err := h.service.Update(r.Context(), rbac.PrincipalFromContext(r.Context()), chi.URLParam(r, "userID"), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, u)
}

type activeRequest struct {
	IsActive bool `json:"is_active"`
}

func (h *Handler) setActive(w http.ResponseWriter, r *http.Request) {
	var in activeRequest
	if err := httpx.DecodeJSON(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	u, err := h.service.SetActive(r.Context(), rbac.PrincipalFromContext(r.Context()), chi.URLParam(r, "userID"), in.IsActive)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, u)
}

type passwordRequest struct {
	Password string `json:"password" validate:"required"`
}

func (h *Handler) setPassword(w http.ResponseWriter, r *http.Request) {
	var in passwordRequest
	if err := httpx.Bind(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	err := h.service.SetPassword(r.Context(), rbac.PrincipalFromContext(r.Context()), chi.URLParam(r, "userID"), in.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), rbac.PrincipalFromContext(r.Context()), chi.URLParam(r, "userID")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if httpx.Internal(err) {
		h.logger.Error("users request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
