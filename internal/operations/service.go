package operations

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/financehub/financehub/internal/platform/httpx"
	"github.com/financehub/financehub/internal/rbac"
	"github.com/financehub/financehub/internal/reconciliation"
	"github.com/financehub/financehub/internal/shared"
)

// RepositoryPort abstracts persistence for the service.
type RepositoryPort interface {
	InsertIncome(ctx context.Context, rec reconciliation.IncomeRecord) error
	InsertExpense(ctx context.Context, rec reconciliation.ExpenseRecord) error
	ListIncomes(ctx context.Context, scope reconciliation.Scope) ([]reconciliation.IncomeRecord, error)
	ListExpenses(ctx context.Context, scope reconciliation.Scope) ([]reconciliation.ExpenseRecord, error)
	GetIncome(ctx context.Context, id string) (reconciliation.IncomeRecord, error)
	GetExpense(ctx context.Context, id string) (reconciliation.ExpenseRecord, error)
	DeleteIncome(ctx context.Context, id string) error
	DeleteExpense(ctx context.Context, id string) error
	DayClosed(ctx context.Context, storeID, date string) (bool, error)
}

// RateProvider supplies the official rate of a date in Bs per USD.
type RateProvider interface {
	RateFor(ctx context.Context, date string) (float64, error)
}

// Service records and removes day operations.
type Service struct {
	repo   RepositoryPort
	rates  RateProvider
	audit  shared.AuditRecorder
	logger *slog.Logger
	now    func() time.Time
}

// NewService builds Service.
func NewService(repo RepositoryPort, rates RateProvider, audit shared.AuditRecorder, logger *slog.Logger) *Service {
	if audit == nil {
		audit = shared.NopAudit{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, rates: rates, audit: audit, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// AddIncome records an income. A zero rate is filled from the rate provider and
// the Bs amount is derived from the USD amount.
func (s *Service) AddIncome(ctx context.Context, p *rbac.Principal, in CreateIncomeInput) (reconciliation.IncomeRecord, error) {
	if err := httpx.Validate(in); err != nil {
		return reconciliation.IncomeRecord{}, err
	}
	if !in.PaymentMethod.Valid() {
		return reconciliation.IncomeRecord{}, ErrUnknownMethod
	}
	if !positive(in.AmountUSD) {
		return reconciliation.IncomeRecord{}, ErrInvalidAmount
	}
	if !rbac.CanAccessStore(p, in.StoreID) {
		return reconciliation.IncomeRecord{}, ErrStoreForbidden
	}
	rate, err := s.rate(ctx, in.BCVRate, in.Date)
	if err != nil {
		return reconciliation.IncomeRecord{}, err
	}
	rec := reconciliation.IncomeRecord{
		ID:             uuid.NewString(),
		StoreID:        in.StoreID,
		CashRegisterID: in.CashRegisterID,
		Date:           in.Date,
		AmountUSD:      in.AmountUSD,
		AmountBS:       in.AmountUSD * rate,
		BCVRate:        rate,
		PaymentMethod:  in.PaymentMethod,
		IsOpening:      in.IsOpening,
		Description:    in.Description,
		PaymentDetails: in.PaymentDetails,
		CreatedBy:      p.ID,
		CreatedAt:      s.now(),
	}
	if err := s.repo.InsertIncome(ctx, rec); err != nil {
		return reconciliation.IncomeRecord{}, err
	}
	s.record(ctx, p, "income.create", "daily_income", rec.ID, map[string]any{"store_id": rec.StoreID, "amount_usd": rec.AmountUSD})
	return rec, nil
}

// AddExpense records an expense given in Bs, USD or both.
func (s *Service) AddExpense(ctx context.Context, p *rbac.Principal, in CreateExpenseInput) (reconciliation.ExpenseRecord, error) {
	if err := httpx.Validate(in); err != nil {
		return reconciliation.ExpenseRecord{}, err
	}
	if !in.PaymentSource.Valid() {
		return reconciliation.ExpenseRecord{}, ErrUnknownMethod
	}
	if !positive(in.AmountBS) && !positive(in.AmountUSD) {
		return reconciliation.ExpenseRecord{}, ErrInvalidAmount
	}
	if !rbac.CanAccessStore(p, in.StoreID) {
		return reconciliation.ExpenseRecord{}, ErrStoreForbidden
	}
	rate, err := s.rate(ctx, in.BCVRate, in.Date)
	if err != nil {
		return reconciliation.ExpenseRecord{}, err
	}
	usd, bs := in.AmountUSD, in.AmountBS
	switch {
	case !positive(usd):
		usd = bs / rate
	case !positive(bs):
		bs = usd * rate
	}
	rec := reconciliation.ExpenseRecord{
		ID:             uuid.NewString(),
		StoreID:        in.StoreID,
		CashRegisterID: in.CashRegisterID,
		Date:           in.Date,
		AmountUSD:      usd,
		AmountBS:       bs,
		BCVRate:        rate,
		PaymentSource:  in.PaymentSource,
		Description:    in.Description,
		CreatedBy:      p.ID,
		CreatedAt:      s.now(),
	}
	if err := s.repo.InsertExpense(ctx, rec); err != nil {
		return reconciliation.ExpenseRecord{}, err
	}
	s.record(ctx, p, "expense.create", "daily_expense", rec.ID, map[string]any{"store_id": rec.StoreID, "amount_usd": rec.AmountUSD})
	return rec, nil
}

// Day returns the records of a scope and their totals.
func (s *Service) Day(ctx context.Context, p *rbac.Principal, scope reconciliation.Scope) (DaySheet, error) {
	if err := httpx.Validate(scope); err != nil {
		return DaySheet{}, err
	}
	if !rbac.CanAccessStore(p, scope.StoreID) {
		return DaySheet{}, ErrStoreForbidden
	}
	incomes, err := s.repo.ListIncomes(ctx, scope)
	if err != nil {
		return DaySheet{}, err
	}
	expenses, err := s.repo.ListExpenses(ctx, scope)
	if err != nil {
		return DaySheet{}, err
	}
	closed, err := s.repo.DayClosed(ctx, scope.StoreID, scope.Date)
	if err != nil {
		return DaySheet{}, err
	}
	if incomes == nil {
		incomes = []reconciliation.IncomeRecord{}
	}
	if expenses == nil {
		expenses = []reconciliation.ExpenseRecord{}
	}
	return DaySheet{
		Scope:    scope,
		Incomes:  incomes,
		Expenses: expenses,
		Summary:  reconciliation.ComputeTotals(incomes, expenses),
		Closed:   closed,
	}, nil
}

// DeleteIncome removes an income of an open day.
func (s *Service) DeleteIncome(ctx context.Context, p *rbac.Principal, id string) error {
	rec, err := s.repo.GetIncome(ctx, id)
	if err != nil {
		return err
	}
	if !rbac.CanAccessStore(p, rec.StoreID) {
		return ErrIncomeNotFound
	}
	if err := s.ensureOpen(ctx, rec.StoreID, rec.Date); err != nil {
		return err
	}
	if err := s.repo.DeleteIncome(ctx, id); err != nil {
		return err
	}
	s.record(ctx, p, "income.delete", "daily_income", id, map[string]any{"store_id": rec.StoreID, "date": rec.Date})
	return nil
}

// DeleteExpense removes an expense of an open day.
func (s *Service) DeleteExpense(ctx context.Context, p *rbac.Principal, id string) error {
	rec, err := s.repo.GetExpense(ctx, id)
	if err != nil {
		return err
	}
	if !rbac.CanAccessStore(p, rec.StoreID) {
		return ErrExpenseNotFound
	}
	if err := s.ensureOpen(ctx, rec.StoreID, rec.Date); err != nil {
		return err
	}
	if err := s.repo.DeleteExpense(ctx, id); err != nil {
		return err
	}
	s.record(ctx, p, "expense.delete", "daily_expense", id, map[string]any{"store_id": rec.StoreID, "date": rec.Date})
	return nil
}

func (s *Service) ensureOpen(ctx context.Context, storeID, date string) error {
	closed, err := s.repo.DayClosed(ctx, storeID, date)
	if err != nil {
		return err
	}
	if closed {
		return ErrDayClosed
	}
	return nil
}

func (s *Service) rate(ctx context.Context, given float64, date string) (float64, error) {
	if given > 0 {
		return given, nil
	}
	if s.rates == nil {
		return 0, ErrInvalidRate
	}
	rate, err := s.rates.RateFor(ctx, date)
	if err != nil {
		return 0, err
	}
	if !positive(rate) {
		return 0, ErrInvalidRate
	}
	return rate, nil
}

func (s *Service) record(ctx context.Context, p *rbac.Principal, action, entity, id string, meta map[string]any) {
	if err := s.audit.Record(ctx, shared.AuditLog{ActorID: p.ID, Action: action, Entity: entity, EntityID: id, Meta: meta, At: s.now()}); err != nil {
		s.logger.Warn("audit record failed", slog.String("action", action), slog.Any("error", err))
	}
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}
