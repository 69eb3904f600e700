package rates

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/financehub/financehub/internal/platform/httpx"
	"github.com/financehub/financehub/internal/rbac"
)

// Handler exposes rate endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler constructs the rates handler.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers rate routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.RequireAny(rbac.PermDashboardView, rbac.PermDailyOperationsView)).Get("/{date}", h.get)
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.PermSettingsEdit))
		r.Put("/{date}", h.set)
		r.Post("/refresh", h.refresh)
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	if date == "today" {
		date = h.service.Today()
	}
	rate, err := h.service.Lookup(r.Context(), date)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rate)
}

type setRequest struct {
	Rate float64 `json:"rate" validate:"gt=0"`
}

func (h *Handler) set(w http.ResponseWriter, r *http.Request) {
	var in setRequest
	if err := httpx.Bind(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	actor := ""
	if p := rbac.PrincipalFromContext(r.Context()); p != nil {
		actor = p.ID
	}
	rate, err := h.service.SetManual(r.Context(), actor, chi.URLParam(r, "date"), in.Rate)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rate)
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	rate, err := h.service.Refresh(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rate)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if httpx.Internal(err) {
		h.logger.Error("rates request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
