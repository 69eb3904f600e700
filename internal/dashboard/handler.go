package dashboard

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/financehub/financehub/internal/platform/httpx"
	"github.com/financehub/financehub/internal/rbac"
)

// Handler exposes dashboard endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler constructs the dashboard handler.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers dashboard routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.PermDashboardView))
		r.Get("/", h.stats)
		r.Get("/chart.svg", h.chart)
	})
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (Stats, bool) {
	days := 0
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "days must be a positive integer")
			return Stats{}, false
		}
		days = n
	}
	stats, err := h.service.Stats(r.Context(), rbac.PrincipalFromContext(r.Context()), days)
	if err != nil {
		h.logger.Error("dashboard stats failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return Stats{}, false
	}
	return stats, true
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	if stats, ok := h.load(w, r); ok {
		httpx.JSON(w, http.StatusOK, stats)
	}
}

func (h *Handler) chart(w http.ResponseWriter, r *http.Request) {
	stats, ok := h.load(w, r)
	if !ok {
		return
	}
	svg, err := RenderChart(stats.Chart, "Ventas y gastos "+stats.From+" a "+stats.To)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write([]byte(svg))
}
