package closures

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/financehub/financehub/internal/platform/httpx"
	"github.com/financehub/financehub/internal/rbac"
	"github.com/financehub/financehub/internal/reconciliation"
	"github.com/financehub/financehub/internal/shared"
)

const idempotencyModule = "closures"

// MessageDefaults supplies the formatting preferences for rendered closures.
type MessageDefaults interface {
	MessageOptions() reconciliation.MessageOptions
}

// Handler wires HTTP endpoints for closures.
type Handler struct {
	logger      *slog.Logger
	service     *Service
	idempotency shared.IdempotencyGuard
	formats     MessageDefaults
	rbac        rbac.Middleware
}

// NewHandler constructs the closures handler. idem may be nil.
func NewHandler(logger *slog.Logger, service *Service, idem shared.IdempotencyGuard, formats MessageDefaults, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, idempotency: idem, formats: formats, rbac: rbac}
}

// MountRoutes registers closure routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.PermClosuresView))
		r.Get("/", h.list)
		r.Post("/preview", h.preview)
		r.Get("/{id}", h.get)
		r.Get("/{id}/message", h.message)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(rbac.PermClosuresView, rbac.PermReportsExport))
		r.Get("/export.csv", h.exportCSV)
		r.Get("/{id}/pdf", h.pdf)
	})
	r.With(h.rbac.RequireAny(rbac.PermClosuresCreate)).Post("/", h.create)
}

func (h *Handler) filter(r *http.Request) ListFilter {
	q := r.URL.Query()
	page := shared.ParsePage(r, DefaultListLimit, MaxListLimit)
	return ListFilter{
		StoreID: strings.TrimSpace(q.Get("store_id")),
		From:    q.Get("from"),
		To:      q.Get("to"),
		Search:  q.Get("q"),
		Limit:   page.Limit,
		Offset:  page.Offset,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.List(r.Context(), rbac.PrincipalFromContext(r.Context()), h.filter(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Get(r.Context(), rbac.PrincipalFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) message(w http.ResponseWriter, r *http.Request) {
	text, err := h.service.Message(r.Context(), rbac.PrincipalFromContext(r.Context()), chi.URLParam(r, "id"), h.options())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if strings.Contains(r.Header.Get("Accept"), "text/plain") {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(text))
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": text})
}

func (h *Handler) pdf(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Get(r.Context(), rbac.PrincipalFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := WritePDF(&buf, c, h.options()); err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="cierre-%s.pdf"`, c.Date))
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	filter := h.filter(r)
	filter.Limit = MaxListLimit
	page, err := h.service.List(r.Context(), rbac.PrincipalFromContext(r.Context()), filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, page.Items); err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="cierres.csv"`)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	var in PreviewInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	out, err := h.service.Preview(r.Context(), rbac.PrincipalFromContext(r.Context()), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in CloseInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if key != "" && h.idempotency != nil {
		if err := h.idempotency.CheckAndInsert(r.Context(), key, idempotencyModule); err != nil {
			h.fail(w, r, err)
			return
		}
	}
	c, err := h.service.Close(r.Context(), rbac.PrincipalFromContext(r.Context()), in)
	if err != nil {
		if key != "" && h.idempotency != nil {
			if delErr := h.idempotency.Delete(r.Context(), key, idempotencyModule); delErr != nil {
				h.logger.Warn("release idempotency key", slog.Any("error", delErr))
			}
		}
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *Handler) options() reconciliation.MessageOptions {
	if h.formats == nil {
		return reconciliation.MessageOptions{DecimalPlaces: 2}
	}
	return h.formats.MessageOptions()
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if httpx.Internal(err) {
		h.logger.Error("closures request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
