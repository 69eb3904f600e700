package operations

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/financehub/financehub/internal/platform/httpx"
	"github.com/financehub/financehub/internal/rbac"
	"github.com/financehub/financehub/internal/reconciliation"
)

// Handler wires HTTP endpoints for day operations.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler constructs the operations handler.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers operations routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.RequireAny(rbac.PermDailyOperationsView), h.rbac.RequireStoreParam("store_id")).Get("/day", h.day)
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.PermDailyOperationsCreate))
		r.Post("/incomes", h.addIncome)
		r.Post("/expenses", h.addExpense)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.PermDailyOperationsDelete))
		r.Delete("/incomes/{id}", h.deleteIncome)
		r.Delete("/expenses/{id}", h.deleteExpense)
	})
}

func (h *Handler) day(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	scope := reconciliation.Scope{
		StoreID:        q.Get("store_id"),
		Date:           q.Get("date"),
		CashRegisterID: q.Get("cash_register_id"),
	}
	sheet, err := h.service.Day(r.Context(), rbac.PrincipalFromContext(r.Context()), scope)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sheet)
}

func (h *Handler) addIncome(w http.ResponseWriter, r *http.Request) {
	var in CreateIncomeInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	rec, err := h.service.AddIncome(r.Context(), rbac.PrincipalFromContext(r.Context()), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, rec)
}

func (h *Handler) addExpense(w http.ResponseWriter, r *http.Request) {
	var in CreateExpenseInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	rec, err := h.service.AddExpense(r.Context(), rbac.PrincipalFromContext(r.Context()), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, rec)
}

func (h *Handler) deleteIncome(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteIncome(r.Context(), rbac.PrincipalFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteExpense(r.Context(), rbac.PrincipalFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if httpx.Internal(err) {
		h.logger.Error("operations request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
