package closures

import (
	"context"

	"github.com/financehub/financehub/internal/reconciliation"
	"github.com/financehub/financehub/internal/shared"
)

//go:generate mockgen -destination=mocks/mock_repository.go -source=interface.go -package=mock_closures

// Repository loads day operations and stores closures.
type Repository interface {
	ListIncomes(ctx context.Context, scope reconciliation.Scope) ([]reconciliation.IncomeRecord, error)
	ListExpenses(ctx context.Context, scope reconciliation.Scope) ([]reconciliation.ExpenseRecord, error)
	ClosureExists(ctx context.Context, storeID, date, shiftName string) (bool, error)
	// InsertClosure stores the closure and its audit entry atomically.
	InsertClosure(ctx context.Context, c reconciliation.DailyClosure, entry shared.AuditLog) error
	GetClosure(ctx context.Context, id string) (reconciliation.DailyClosure, error)
	ListClosures(ctx context.Context, filter ListFilter) ([]reconciliation.DailyClosure, int, error)
}

// Notifier is told about every new closure.
type Notifier interface {
	ClosureCreated(ctx context.Context, c reconciliation.DailyClosure) error
}

// RateProvider supplies the official rate of a date when the request has none.
type RateProvider interface {
	RateFor(ctx context.Context, date string) (float64, error)
}

// Observer records closure outcomes, typically as metrics.
type Observer interface {
	ObserveClosure(storeID string, balanced bool, difference float64)
}
