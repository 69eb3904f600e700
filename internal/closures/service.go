package closures

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/financehub/financehub/internal/platform/httpx"
	"github.com/financehub/financehub/internal/rbac"
	"github.com/financehub/financehub/internal/reconciliation"
	"github.com/financehub/financehub/internal/shared"
)

// Service closes shifts and serves stored closures.
type Service struct {
	repo     Repository
	rates    RateProvider
	notifier Notifier
	observer Observer
	logger   *slog.Logger
	now      func() time.Time
}

// Option customises the service.
type Option func(*Service)

// WithRates fills missing request rates from a provider.
func WithRates(r RateProvider) Option { return func(s *Service) { s.rates = r } }

// WithNotifier announces new closures.
func WithNotifier(n Notifier) Option { return func(s *Service) { s.notifier = n } }

// WithObserver records closure outcomes.
func WithObserver(o Observer) Option { return func(s *Service) { s.observer = o } }

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// NewService builds Service.
func NewService(repo Repository, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Preview computes the reconciliation of a scope without storing anything.
func (s *Service) Preview(ctx context.Context, p *rbac.Principal, in PreviewInput) (Preview, error) {
	if err := httpx.Validate(in.Scope); err != nil {
		return Preview{}, err
	}
	if !rbac.CanAccessStore(p, in.Scope.StoreID) {
		return Preview{}, ErrStoreForbidden
	}
	if !validDeclared(in.Declared) {
		return Preview{}, ErrInvalidDeclared
	}
	summary, err := s.summarize(ctx, in.Scope)
	if err != nil {
		return Preview{}, err
	}
	return Preview{
		Scope:          in.Scope,
		Summary:        summary,
		Reconciliation: reconciliation.Reconcile(summary, in.Declared),
	}, nil
}

// Close reconciles a shift and stores the closure. An imbalance is recorded,
// never rejected.
func (s *Service) Close(ctx context.Context, p *rbac.Principal, in CloseInput) (reconciliation.DailyClosure, error) {
	if err := httpx.Validate(in); err != nil {
		return reconciliation.DailyClosure{}, err
	}
	if !rbac.CanAccessStore(p, in.StoreID) {
		return reconciliation.DailyClosure{}, ErrStoreForbidden
	}
	if !validDeclared(in.Declared) {
		return reconciliation.DailyClosure{}, ErrInvalidDeclared
	}
	in.ShiftName = strings.TrimSpace(in.ShiftName)

	rate, err := s.rate(ctx, in)
	if err != nil {
		return reconciliation.DailyClosure{}, err
	}
	exists, err := s.repo.ClosureExists(ctx, in.StoreID, in.Date, in.ShiftName)
	if err != nil {
		return reconciliation.DailyClosure{}, err
	}
	if exists {
		return reconciliation.DailyClosure{}, ErrClosureExists
	}

	summary, err := s.summarize(ctx, in.scope())
	if err != nil {
		return reconciliation.DailyClosure{}, err
	}
	if in.SeenTotalIncome != nil && !reconciliation.Balanced(*in.SeenTotalIncome - summary.TotalIncome) {
		return reconciliation.DailyClosure{}, ErrSummaryChanged
	}

	closure := reconciliation.BuildClosure(reconciliation.ClosureHeader{
		StoreID:   in.StoreID,
		Date:      in.Date,
		ShiftName: in.ShiftName,
		BCVRate:   rate,
		CreatedBy: p.ID,
	}, summary, in.Declared)
	closure.ID = uuid.NewString()
	closure.CreatedAt = s.now()
	if err := s.repo.InsertClosure(ctx, closure, closureAudit(p, closure)); err != nil {
		return reconciliation.DailyClosure{}, err
	}

	s.afterClose(ctx, closure)
	return closure, nil
}

func closureAudit(p *rbac.Principal, c reconciliation.DailyClosure) shared.AuditLog {
	return shared.AuditLog{
		ActorID:  p.ID,
		Action:   "closure.create",
		Entity:   "daily_closure",
		EntityID: c.ID,
		Meta: map[string]any{
			"store_id":    c.StoreID,
			"date":        c.Date,
			"shift_name":  c.ShiftName,
			"difference":  c.DifferenceUSD,
			"is_balanced": c.IsBalanced,
		},
		At: c.CreatedAt,
	}
}

func (s *Service) afterClose(ctx context.Context, c reconciliation.DailyClosure) {
	if s.observer != nil {
		s.observer.ObserveClosure(c.StoreID, c.IsBalanced, c.DifferenceUSD)
	}
	if !c.IsBalanced {
		s.logger.Info("closure recorded with difference",
			slog.String("closure_id", c.ID),
			slog.String("store_id", c.StoreID),
			slog.Float64("difference_usd", c.DifferenceUSD))
	}
	if s.notifier != nil {
		if err := s.notifier.ClosureCreated(ctx, c); err != nil {
			s.logger.Warn("closure notification failed", slog.String("closure_id", c.ID), slog.Any("error", err))
		}
	}
}

// Get returns a closure the principal may see.
func (s *Service) Get(ctx context.Context, p *rbac.Principal, id string) (reconciliation.DailyClosure, error) {
	c, err := s.repo.GetClosure(ctx, id)
	if err != nil {
		return reconciliation.DailyClosure{}, err
	}
	if !rbac.CanAccessStore(p, c.StoreID) {
		return reconciliation.DailyClosure{}, ErrClosureNotFound
	}
	return c, nil
}

// Message renders the shareable text of a closure.
func (s *Service) Message(ctx context.Context, p *rbac.Principal, id string, opts reconciliation.MessageOptions) (string, error) {
	c, err := s.Get(ctx, p, id)
	if err != nil {
		return "", err
	}
	return reconciliation.RenderMessage(c, opts), nil
}

// List returns closures of the stores the principal may see, newest first.
func (s *Service) List(ctx context.Context, p *rbac.Principal, filter ListFilter) (Page, error) {
	if p == nil || !p.Role.Valid() {
		return Page{Items: []reconciliation.DailyClosure{}, Groups: []DateGroup{}}, nil
	}
	if p.Role.StoreScoped() {
		if p.AssignedStoreID == "" || (filter.StoreID != "" && filter.StoreID != p.AssignedStoreID) {
			return Page{Items: []reconciliation.DailyClosure{}, Groups: []DateGroup{}, Pagination: shared.Pagination{Limit: filter.Limit}}, nil
		}
		filter.StoreIDs = []string{p.AssignedStoreID}
	}
	switch {
	case filter.Limit <= 0:
		filter.Limit = DefaultListLimit
	case filter.Limit > MaxListLimit:
		filter.Limit = MaxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	filter.Search = strings.TrimSpace(filter.Search)

	items, total, err := s.repo.ListClosures(ctx, filter)
	if err != nil {
		return Page{}, err
	}
	if items == nil {
		items = []reconciliation.DailyClosure{}
	}
	return Page{
		Items:      items,
		Groups:     GroupByDate(items),
		Pagination: shared.NewPagination(shared.Page{Limit: filter.Limit, Offset: filter.Offset}, total),
	}, nil
}

func (s *Service) summarize(ctx context.Context, scope reconciliation.Scope) (reconciliation.ClosureSummary, error) {
	incomes, err := s.repo.ListIncomes(ctx, scope)
	if err != nil {
		return reconciliation.ClosureSummary{}, err
	}
	expenses, err := s.repo.ListExpenses(ctx, scope)
	if err != nil {
		return reconciliation.ClosureSummary{}, err
	}
	return reconciliation.ComputeTotals(incomes, expenses), nil
}

func (s *Service) rate(ctx context.Context, in CloseInput) (float64, error) {
	if in.BCVRate > 0 {
		return in.BCVRate, nil
	}
	if s.rates == nil {
		return 0, ErrInvalidRate
	}
	rate, err := s.rates.RateFor(ctx, in.Date)
	if err != nil {
		return 0, err
	}
	if rate <= 0 || math.IsInf(rate, 0) || math.IsNaN(rate) {
		return 0, ErrInvalidRate
	}
	return rate, nil
}
