// Package operations records the incomes and expenses of a store day.
package operations

import (
	"fmt"

	"github.com/financehub/financehub/internal/platform/httpx"
	"github.com/financehub/financehub/internal/reconciliation"
)

var (
	ErrIncomeNotFound  = fmt.Errorf("operations: income not found: %w", httpx.ErrNotFound)
	ErrExpenseNotFound = fmt.Errorf("operations: expense not found: %w", httpx.ErrNotFound)
	ErrDayClosed       = fmt.Errorf("operations: the day is already closed for this store: %w", httpx.ErrConflict)
	ErrInvalidAmount   = fmt.Errorf("operations: amount must be greater than zero: %w", httpx.ErrValidation)
	ErrInvalidRate     = fmt.Errorf("operations: exchange rate must be greater than zero: %w", httpx.ErrValidation)
	ErrUnknownMethod   = fmt.Errorf("operations: unknown payment method: %w", httpx.ErrValidation)
	ErrStoreForbidden  = fmt.Errorf("operations: store not accessible: %w", httpx.ErrForbidden)
)

// CreateIncomeInput is the payload of a new income.
type CreateIncomeInput struct {
	StoreID        string                       `json:"store_id" validate:"required"`
	CashRegisterID string                       `json:"cash_register_id"`
	Date           string                       `json:"date" validate:"required,datetime=2006-01-02"`
	AmountUSD      float64                      `json:"amount_usd"`
	BCVRate        float64                      `json:"bcv_rate" validate:"gte=0"`
	PaymentMethod  reconciliation.PaymentMethod `json:"payment_method" validate:"required"`
	IsOpening      bool                         `json:"is_opening"`
	Description    string                       `json:"description" validate:"max=255"`
	PaymentDetails string                       `json:"payment_details" validate:"max=255"`
}

// CreateExpenseInput is the payload of a new expense. Either amount may be given;
// the other one is derived from the rate.
type CreateExpenseInput struct {
	StoreID        string                       `json:"store_id" validate:"required"`
	CashRegisterID string                       `json:"cash_register_id"`
	Date           string                       `json:"date" validate:"required,datetime=2006-01-02"`
	AmountUSD      float64                      `json:"amount_usd" validate:"gte=0"`
	AmountBS       float64                      `json:"amount_bs" validate:"gte=0"`
	BCVRate        float64                      `json:"bcv_rate" validate:"gte=0"`
	PaymentSource  reconciliation.PaymentMethod `json:"payment_source" validate:"required"`
	Description    string                       `json:"description" validate:"required,max=255"`
}

// DaySheet is everything recorded for a scope plus its running totals.
type DaySheet struct {
	Scope    reconciliation.Scope           `json:"scope"`
	Incomes  []reconciliation.IncomeRecord  `json:"incomes"`
	Expenses []reconciliation.ExpenseRecord `json:"expenses"`
	Summary  reconciliation.ClosureSummary  `json:"summary"`
	Closed   bool                           `json:"closed"`
}
