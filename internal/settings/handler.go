package settings

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/financehub/financehub/internal/platform/httpx"
	"github.com/financehub/financehub/internal/rbac"
)

const maxSectionBody = 64 << 10

// Handler exposes settings endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler constructs the settings handler.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers settings routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.RequireAny(rbac.PermSettingsView)).Get("/", h.get)
	r.With(h.rbac.RequireAny(rbac.PermSettingsEdit), h.rbac.RequireSystemManagement()).Put("/{section}", h.save)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.Current())
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxSectionBody))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unreadable body")
		return
	}
	p := rbac.PrincipalFromContext(r.Context())
	out, err := h.service.Save(r.Context(), p.ID, chi.URLParam(r, "section"), json.RawMessage(raw))
	if err != nil {
		if httpx.Internal(err) {
			h.logger.Error("settings save failed", slog.String("section", chi.URLParam(r, "section")), slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}
