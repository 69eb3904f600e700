package dashboard

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/financehub/financehub/internal/rbac"
)

type closureRow struct {
	store    string
	name     string
	date     string
	sales    float64
	expenses float64
}

type memoryRepo struct {
	mu      sync.Mutex
	rows    []closureRow
	active  []string
	windows []Window
	fail    error
}

func (m *memoryRepo) match(w Window) []closureRow {
	m.mu.Lock()
	m.windows = append(m.windows, w)
	m.mu.Unlock()
	var out []closureRow
	for _, r := range m.rows {
		if r.date < w.From || r.date > w.To {
			continue
		}
		if w.StoreIDs != nil && !contains(w.StoreIDs, r.store) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func (m *memoryRepo) Totals(_ context.Context, w Window) (Totals, error) {
	if m.fail != nil {
		return Totals{}, m.fail
	}
	var t Totals
	for _, r := range m.match(w) {
		t.Sales += r.sales
		t.Expenses += r.expenses
	}
	return t, nil
}

func (m *memoryRepo) Daily(_ context.Context, w Window) ([]ChartPoint, error) {
	byDate := map[string]*ChartPoint{}
	var order []string
	for _, r := range m.match(w) {
		p, ok := byDate[r.date]
		if !ok {
			p = &ChartPoint{Date: r.date}
			byDate[r.date] = p
			order = append(order, r.date)
		}
		p.Sales += r.sales
		p.Expenses += r.expenses
	}
	out := make([]ChartPoint, 0, len(order))
	for _, d := range order {
		out = append(out, *byDate[d])
	}
	return out, nil
}

func (m *memoryRepo) TopStore(_ context.Context, w Window) (string, error) {
	sums := map[string]float64{}
	names := map[string]string{}
	for _, r := range m.match(w) {
		sums[r.store] += r.sales
		names[r.store] = r.name
	}
	best, top := "", -1.0
	for id, v := range sums {
		if v > top {
			best, top = names[id], v
		}
	}
	return best, nil
}

func (m *memoryRepo) CountActiveStores(_ context.Context, ids []string) (int, error) {
	if ids == nil {
		return len(m.active), nil
	}
	n := 0
	for _, id := range ids {
		if contains(m.active, id) {
			n++
		}
	}
	return n, nil
}

func newTestService(repo RepositoryPort) *Service {
	svc := NewService(repo, nil, nil)
	svc.now = func() time.Time { return time.Date(2024, 5, 10, 18, 0, 0, 0, time.UTC) }
	return svc
}

func sampleRepo() *memoryRepo {
	return &memoryRepo{
		active: []string{"s1", "s2"},
		rows: []closureRow{
			{store: "s1", name: "Tienda Centro", date: "2024-05-10", sales: 300, expenses: 40},
			{store: "s2", name: "Tienda Norte", date: "2024-05-10", sales: 100, expenses: 10},
			{store: "s1", name: "Tienda Centro", date: "2024-05-09", sales: 200, expenses: 20},
			{store: "s2", name: "Tienda Norte", date: "2024-05-08", sales: 350, expenses: 0},
			{store: "s1", name: "Tienda Centro", date: "2024-05-05", sales: 500, expenses: 50},
		},
	}
}

func TestStatsAllStores(t *testing.T) {
	repo := sampleRepo()
	stats, err := newTestService(repo).Stats(context.Background(), &rbac.Principal{ID: "d", Role: rbac.RoleDirector}, 4)
	require.NoError(t, err)

	require.Equal(t, "2024-05-07", stats.From)
	require.Equal(t, "2024-05-10", stats.To)
	require.Equal(t, 950.0, stats.TotalSales)
	require.Equal(t, 70.0, stats.TotalExpenses)
	require.Equal(t, 880.0, stats.NetProfit)
	require.Equal(t, 237.5, stats.AverageDailySales)
	require.Equal(t, 2, stats.StoreCount)
	require.Equal(t, 90.0, stats.MonthlyGrowth)
	require.Equal(t, "Tienda Centro", stats.TopPerformingStore)

	require.Len(t, stats.Chart, 4)
	require.Equal(t, ChartPoint{Date: "2024-05-07"}, stats.Chart[0])
	require.Equal(t, ChartPoint{Date: "2024-05-10", Sales: 400, Expenses: 50, Profit: 350}, stats.Chart[3])

	for _, w := range repo.windows {
		require.Nil(t, w.StoreIDs)
	}
}

func TestStatsScopedToAssignedStore(t *testing.T) {
	repo := sampleRepo()
	p := &rbac.Principal{ID: "g", Role: rbac.RoleGerenteTienda, AssignedStoreID: "s2"}
	stats, err := newTestService(repo).Stats(context.Background(), p, 4)
	require.NoError(t, err)
	require.Equal(t, 450.0, stats.TotalSales)
	require.Equal(t, 1, stats.StoreCount)
	require.Equal(t, "Tienda Norte", stats.TopPerformingStore)
	require.Zero(t, stats.MonthlyGrowth)

	unassigned := &rbac.Principal{ID: "c", Role: rbac.RoleCajero}
	stats, err = newTestService(repo).Stats(context.Background(), unassigned, 0)
	require.NoError(t, err)
	require.Equal(t, DefaultDays, stats.Days)
	require.Zero(t, stats.TotalSales)
	require.Len(t, stats.Chart, DefaultDays)
}

func TestStatsPropagatesErrors(t *testing.T) {
	repo := sampleRepo()
	repo.fail = errors.New("db down")
	_, err := newTestService(repo).Stats(context.Background(), &rbac.Principal{ID: "d", Role: rbac.RoleDirector}, 7)
	require.Error(t, err)
}

func TestGrowth(t *testing.T) {
	require.Zero(t, growth(100, 0))
	require.Equal(t, -50.0, growth(50, 100))
	require.Equal(t, 12.5, growth(112.5, 100))
}

func TestHandlerChart(t *testing.T) {
	h := NewHandler(nil, newTestService(sampleRepo()), rbac.Middleware{})
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			p := &rbac.Principal{ID: "d", Role: rbac.RoleDirector, Active: true}
			next.ServeHTTP(w, req.WithContext(rbac.ContextWithPrincipal(req.Context(), p)))
		})
	})
	r.Route("/dashboard", h.MountRoutes)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/chart.svg?days=4", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	require.True(t, strings.HasPrefix(rec.Body.String(), "<svg"))
	require.Contains(t, rec.Body.String(), `data-series="Ventas"`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/?days=abc", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
