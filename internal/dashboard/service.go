package dashboard

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/financehub/financehub/internal/rbac"
	"github.com/financehub/financehub/internal/reconciliation"
)

// RepositoryPort abstracts the aggregate queries.
type RepositoryPort interface {
	Totals(ctx context.Context, w Window) (Totals, error)
	Daily(ctx context.Context, w Window) ([]ChartPoint, error)
	TopStore(ctx context.Context, w Window) (string, error)
	CountActiveStores(ctx context.Context, ids []string) (int, error)
}

// Service computes dashboard figures.
type Service struct {
	repo   RepositoryPort
	logger *slog.Logger
	loc    *time.Location
	now    func() time.Time
}

// NewService builds Service. loc decides which date is today; nil means UTC.
func NewService(repo RepositoryPort, loc *time.Location, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{repo: repo, logger: logger, loc: loc, now: time.Now}
}

// Stats aggregates the closures of the stores the principal can see over the
// last days days, today included.
func (s *Service) Stats(ctx context.Context, p *rbac.Principal, days int) (Stats, error) {
	if days <= 0 {
		days = DefaultDays
	}
	if days > MaxDays {
		days = MaxDays
	}
	today := s.now().In(s.loc)
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	from := today.AddDate(0, 0, -(days - 1))
	stats := Stats{From: from.Format(time.DateOnly), To: today.Format(time.DateOnly), Days: days}

	ids, ok := scope(p)
	if !ok {
		stats.Chart = fillDays(from, days, nil)
		return stats, nil
	}
	current := Window{StoreIDs: ids, From: stats.From, To: stats.To}
	previous := Window{
		StoreIDs: ids,
		From:     from.AddDate(0, 0, -days).Format(time.DateOnly),
		To:       from.AddDate(0, 0, -1).Format(time.DateOnly),
	}

	var (
		cur, prev Totals
		daily     []ChartPoint
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cur, err = s.repo.Totals(ctx, current)
		return err
	})
	g.Go(func() error {
		var err error
		prev, err = s.repo.Totals(ctx, previous)
		return err
	})
	g.Go(func() error {
		var err error
		daily, err = s.repo.Daily(ctx, current)
		return err
	})
	g.Go(func() error {
		var err error
		stats.TopPerformingStore, err = s.repo.TopStore(ctx, current)
		return err
	})
	g.Go(func() error {
		var err error
		stats.StoreCount, err = s.repo.CountActiveStores(ctx, ids)
		return err
	})
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	stats.TotalSales = reconciliation.Round2(cur.Sales)
	stats.TotalExpenses = reconciliation.Round2(cur.Expenses)
	stats.NetProfit = reconciliation.Round2(cur.Sales - cur.Expenses)
	stats.AverageDailySales = reconciliation.Round2(cur.Sales / float64(days))
	stats.MonthlyGrowth = growth(cur.Sales, prev.Sales)
	stats.Chart = fillDays(from, days, daily)
	return stats, nil
}

// scope returns the store filter for p. ok is false when p sees no store.
func scope(p *rbac.Principal) ([]string, bool) {
	if p == nil || !p.Role.Valid() {
		return nil, false
	}
	if !p.Role.StoreScoped() {
		return nil, true
	}
	if p.AssignedStoreID == "" {
		return nil, false
	}
	return []string{p.AssignedStoreID}, true
}

// growth is the percent change from prev to cur, 0 when prev is 0.
func growth(cur, prev float64) float64 {
	if prev == 0 {
		return 0
	}
	return reconciliation.Round2((cur - prev) / prev * 100)
}

func fillDays(from time.Time, days int, daily []ChartPoint) []ChartPoint {
	byDate := make(map[string]ChartPoint, len(daily))
	for _, p := range daily {
		byDate[p.Date] = p
	}
	out := make([]ChartPoint, 0, days)
	for i := 0; i < days; i++ {
		date := from.AddDate(0, 0, i).Format(time.DateOnly)
		p := byDate[date]
		p.Date = date
		p.Sales = reconciliation.Round2(p.Sales)
		p.Expenses = reconciliation.Round2(p.Expenses)
		p.Profit = reconciliation.Round2(p.Sales - p.Expenses)
		out = append(out, p)
	}
	return out
}
