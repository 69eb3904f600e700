package rates

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	mu    sync.Mutex
	rates map[string]Rate
	fail  error
}

func newMemoryRepo() *memoryRepo { return &memoryRepo{rates: map[string]Rate{}} }

func (m *memoryRepo) GetRate(_ context.Context, date string) (Rate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return Rate{}, m.fail
	}
	r, ok := m.rates[date]
	if !ok {
		return Rate{}, ErrRateNotFound
	}
	return r, nil
}

func (m *memoryRepo) UpsertRate(_ context.Context, r Rate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rates[r.Date] = r
	return nil
}

type countingQuoter struct {
	calls atomic.Int32
	rate  float64
	delay time.Duration
}

func (q *countingQuoter) Current(context.Context) (Quote, error) {
	q.calls.Add(1)
	time.Sleep(q.delay)
	return Quote{Rate: q.rate}, nil
}

var fixedNow = time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, repo *memoryRepo, q Quoter) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	svc := NewService(repo, q, nil, WithCache(client, time.Hour), WithClock(func() time.Time { return fixedNow }))
	return svc, mr
}

func TestLookupTodayFetchesOnceForConcurrentMisses(t *testing.T) {
	repo := newMemoryRepo()
	q := &countingQuoter{rate: 36.52, delay: 20 * time.Millisecond}
	svc, mr := newTestService(t, repo, q)

	var wg sync.WaitGroup
	errs := make([]error, 10)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := svc.RateFor(context.Background(), "2024-05-10")
			if err == nil && v != 36.52 {
				err = fmt.Errorf("unexpected rate %v", v)
			}
			errs[i] = err
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}
	require.EqualValues(t, 1, q.calls.Load())
	require.Equal(t, SourceRemote, repo.rates["2024-05-10"].Source)
	require.True(t, mr.Exists("rates:bcv:2024-05-10"))
}

func TestLookupPastDateNeverFetches(t *testing.T) {
	q := &countingQuoter{rate: 40}
	svc, _ := newTestService(t, newMemoryRepo(), q)

	_, err := svc.Lookup(context.Background(), "2024-05-09")
	require.ErrorIs(t, err, ErrRateNotFound)
	require.Zero(t, q.calls.Load())

	_, err = svc.Lookup(context.Background(), "09/05/2024")
	require.ErrorIs(t, err, ErrInvalidDate)
}

func TestLookupPrefersCacheThenStore(t *testing.T) {
	repo := newMemoryRepo()
	repo.rates["2024-05-01"] = Rate{Date: "2024-05-01", Value: 35.1, Source: SourceManual}
	svc, _ := newTestService(t, repo, nil)

	v, err := svc.RateFor(context.Background(), "2024-05-01")
	require.NoError(t, err)
	require.Equal(t, 35.1, v)

	repo.fail = errors.New("db down")
	v, err = svc.RateFor(context.Background(), "2024-05-01")
	require.NoError(t, err)
	require.Equal(t, 35.1, v)
}

func TestSetManualInvalidatesCache(t *testing.T) {
	repo := newMemoryRepo()
	repo.rates["2024-05-01"] = Rate{Date: "2024-05-01", Value: 35.1, Source: SourceRemote}
	svc, mr := newTestService(t, repo, nil)

	_, err := svc.Lookup(context.Background(), "2024-05-01")
	require.NoError(t, err)
	require.True(t, mr.Exists("rates:bcv:2024-05-01"))

	_, err = svc.SetManual(context.Background(), "u1", "2024-05-01", 0)
	require.ErrorIs(t, err, ErrInvalidRate)

	rate, err := svc.SetManual(context.Background(), "u1", "2024-05-01", 36)
	require.NoError(t, err)
	require.Equal(t, SourceManual, rate.Source)
	require.False(t, mr.Exists("rates:bcv:2024-05-01"))

	v, err := svc.RateFor(context.Background(), "2024-05-01")
	require.NoError(t, err)
	require.Equal(t, 36.0, v)
}

func TestRefreshRejectsNonPositiveQuote(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newTestService(t, repo, &countingQuoter{rate: 0})
	_, err := svc.Refresh(context.Background())
	require.ErrorIs(t, err, ErrInvalidRate)
	require.Empty(t, repo.rates)

	svc, _ = newTestService(t, repo, &countingQuoter{rate: 37.2})
	rate, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	require.Equal(t, "2024-05-10", rate.Date)
	require.Equal(t, 37.2, repo.rates["2024-05-10"].Value)
}

func TestClientFormats(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   float64
		err    error
	}{
		{"rate", http.StatusOK, `{"rate": 36.5, "date": "2024-05-10"}`, 36.5, nil},
		{"price", http.StatusOK, `{"price": 40.25}`, 40.25, nil},
		{"missing", http.StatusOK, `{"value": 1}`, 0, ErrRateUnavailable},
		{"negative", http.StatusOK, `{"rate": -1}`, 0, ErrInvalidRate},
		{"status", http.StatusBadGateway, `{}`, 0, ErrRateUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			q, err := NewClient(srv.URL, time.Second).Current(context.Background())
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, q.Rate)
		})
	}
}
