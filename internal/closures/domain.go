// Package closures persists end-of-shift reconciliations and renders them for
// sharing.
package closures

import (
	"fmt"

	"github.com/financehub/financehub/internal/platform/httpx"
	"github.com/financehub/financehub/internal/reconciliation"
	"github.com/financehub/financehub/internal/shared"
)

var (
	ErrClosureNotFound = fmt.Errorf("closures: closure not found: %w", httpx.ErrNotFound)
	ErrClosureExists   = fmt.Errorf("closures: a closure already exists for this store, date and shift: %w", httpx.ErrConflict)
	ErrSummaryChanged  = fmt.Errorf("closures: operations changed since the preview, review the totals again: %w", httpx.ErrConflict)
	ErrInvalidDeclared = fmt.Errorf("closures: declared amounts must not be negative: %w", httpx.ErrValidation)
	ErrInvalidRate     = fmt.Errorf("closures: exchange rate must be greater than zero: %w", httpx.ErrValidation)
	ErrStoreForbidden  = fmt.Errorf("closures: store not accessible: %w", httpx.ErrForbidden)
)

const (
	// DefaultListLimit applies when a listing asks for no limit.
	DefaultListLimit = 100
	// MaxListLimit caps a single listing page.
	MaxListLimit = 500
)

// CloseInput is the request to close a shift. A closure always covers every
// register of the store day; only previews can be narrowed to one register.
type CloseInput struct {
	StoreID   string                         `json:"store_id" validate:"required"`
	Date      string                         `json:"date" validate:"required,datetime=2006-01-02"`
	ShiftName string                         `json:"shift_name" validate:"max=60"`
	BCVRate   float64                        `json:"bcv_rate" validate:"gte=0"`
	Declared  reconciliation.DeclaredAmounts `json:"declared"`
	// SeenTotalIncome is the income total the user confirmed in the preview.
	SeenTotalIncome *float64 `json:"seen_total_income,omitempty"`
}

func (in CloseInput) scope() reconciliation.Scope {
	return reconciliation.Scope{StoreID: in.StoreID, Date: in.Date}
}

// PreviewInput asks for the reconciliation of a scope without persisting it.
type PreviewInput struct {
	Scope    reconciliation.Scope           `json:"scope"`
	Declared reconciliation.DeclaredAmounts `json:"declared"`
}

// Preview is the reconciliation shown before the user confirms a closure.
type Preview struct {
	Scope          reconciliation.Scope          `json:"scope"`
	Summary        reconciliation.ClosureSummary `json:"summary"`
	Reconciliation reconciliation.Reconciliation `json:"reconciliation"`
}

// ListFilter narrows closure listings. A nil StoreIDs slice means every store.
type ListFilter struct {
	StoreIDs []string
	StoreID  string
	From     string
	To       string
	Search   string
	Limit    int
	Offset   int
}

// DateGroup gathers the closures of one date.
type DateGroup struct {
	Date     string                         `json:"date"`
	Closures []reconciliation.DailyClosure `json:"closures"`
}

// Page is a listing result.
type Page struct {
	Items  []reconciliation.DailyClosure `json:"items"`
	Groups []DateGroup                   `json:"groups"`
	shared.Pagination
}

// GroupByDate splits an ordered listing into consecutive date groups.
func GroupByDate(items []reconciliation.DailyClosure) []DateGroup {
	groups := make([]DateGroup, 0)
	for _, c := range items {
		if n := len(groups); n > 0 && groups[n-1].Date == c.Date {
			groups[n-1].Closures = append(groups[n-1].Closures, c)
			continue
		}
		groups = append(groups, DateGroup{Date: c.Date, Closures: []reconciliation.DailyClosure{c}})
	}
	return groups
}

func validDeclared(d reconciliation.DeclaredAmounts) bool {
	for _, m := range reconciliation.PaymentMethods() {
		if d.Declared.Get(m) < 0 {
			return false
		}
	}
	return d.PettyCashUSD >= 0 && d.StoredCashUSD >= 0
}
