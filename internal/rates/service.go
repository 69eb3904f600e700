package rates

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/financehub/financehub/internal/shared"
)

// RepositoryPort abstracts rate storage.
type RepositoryPort interface {
	GetRate(ctx context.Context, date string) (Rate, error)
	UpsertRate(ctx context.Context, rate Rate) error
}

// Quoter fetches the current quote from the rate source.
type Quoter interface {
	Current(ctx context.Context) (Quote, error)
}

// Service resolves rates through the cache, the database and the rate source.
type Service struct {
	repo   RepositoryPort
	quoter Quoter
	cache  *redis.Client
	ttl    time.Duration
	loc    *time.Location
	audit  shared.AuditRecorder
	logger *slog.Logger
	now    func() time.Time
	group  singleflight.Group
}

// Option customises the service.
type Option func(*Service)

// WithCache enables the Redis cache.
func WithCache(client *redis.Client, ttl time.Duration) Option {
	return func(s *Service) { s.cache, s.ttl = client, ttl }
}

// WithLocation sets the zone that decides which date is today.
func WithLocation(loc *time.Location) Option { return func(s *Service) { s.loc = loc } }

// WithAudit records manual overrides.
func WithAudit(a shared.AuditRecorder) Option { return func(s *Service) { s.audit = a } }

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// NewService builds Service. quoter may be nil, in which case only stored rates resolve.
func NewService(repo RepositoryPort, quoter Quoter, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		repo:   repo,
		quoter: quoter,
		ttl:    time.Hour,
		loc:    time.UTC,
		audit:  shared.NopAudit{},
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today returns the current date in the service location.
func (s *Service) Today() string {
	return s.now().In(s.loc).Format(time.DateOnly)
}

// RateFor returns the rate value of a date.
func (s *Service) RateFor(ctx context.Context, date string) (float64, error) {
	rate, err := s.Lookup(ctx, date)
	if err != nil {
		return 0, err
	}
	return rate.Value, nil
}

// Lookup resolves the rate of a date. Only today's rate is fetched remotely;
// concurrent misses for the same date share one lookup.
func (s *Service) Lookup(ctx context.Context, date string) (Rate, error) {
	if !validDate(date) {
		return Rate{}, ErrInvalidDate
	}
	if rate, ok := s.cached(ctx, date); ok {
		return rate, nil
	}
	v, err, _ := s.group.Do(date, func() (any, error) {
		rate, err := s.repo.GetRate(ctx, date)
		if err == nil && validValue(rate.Value) {
			s.store(ctx, rate)
			return rate, nil
		}
		if err != nil && !errors.Is(err, ErrRateNotFound) {
			return Rate{}, err
		}
		if date != s.Today() || s.quoter == nil {
			return Rate{}, ErrRateNotFound
		}
		return s.fetch(ctx, date)
	})
	if err != nil {
		return Rate{}, err
	}
	return v.(Rate), nil
}

// Refresh fetches today's quote and stores it.
func (s *Service) Refresh(ctx context.Context) (Rate, error) {
	if s.quoter == nil {
		return Rate{}, ErrRateUnavailable
	}
	today := s.Today()
	v, err, _ := s.group.Do("refresh:"+today, func() (any, error) {
		return s.fetch(ctx, today)
	})
	if err != nil {
		return Rate{}, err
	}
	return v.(Rate), nil
}

// SetManual stores an override for a date and drops any cached value.
func (s *Service) SetManual(ctx context.Context, actorID, date string, value float64) (Rate, error) {
	if !validDate(date) {
		return Rate{}, ErrInvalidDate
	}
	if !validValue(value) {
		return Rate{}, ErrInvalidRate
	}
	rate := Rate{Date: date, Value: value, Source: SourceManual, FetchedAt: s.now().UTC()}
	if err := s.repo.UpsertRate(ctx, rate); err != nil {
		return Rate{}, err
	}
	s.invalidate(ctx, date)
	if err := s.audit.Record(ctx, shared.AuditLog{ActorID: actorID, Action: "rate.set", Entity: "exchange_rate", EntityID: date, Meta: map[string]any{"rate": value}, At: rate.FetchedAt}); err != nil {
		s.logger.Warn("audit record failed", slog.String("date", date), slog.Any("error", err))
	}
	return rate, nil
}

func (s *Service) fetch(ctx context.Context, date string) (Rate, error) {
	q, err := s.quoter.Current(ctx)
	if err != nil {
		return Rate{}, err
	}
	if !validValue(q.Rate) {
		return Rate{}, ErrInvalidRate
	}
	rate := Rate{Date: date, Value: q.Rate, Source: SourceRemote, FetchedAt: s.now().UTC()}
	if err := s.repo.UpsertRate(ctx, rate); err != nil {
		return Rate{}, err
	}
	s.logger.Info("exchange rate fetched", slog.String("date", date), slog.Float64("rate", rate.Value))
	s.store(ctx, rate)
	return rate, nil
}

func cacheKey(date string) string {
	return "rates:bcv:" + date
}

func (s *Service) cached(ctx context.Context, date string) (Rate, bool) {
	if s.cache == nil {
		return Rate{}, false
	}
	raw, err := s.cache.Get(ctx, cacheKey(date)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("rate cache read failed", slog.String("date", date), slog.Any("error", err))
		}
		return Rate{}, false
	}
	var rate Rate
	if err := json.Unmarshal(raw, &rate); err != nil || !validValue(rate.Value) {
		return Rate{}, false
	}
	return rate, true
}

func (s *Service) store(ctx context.Context, rate Rate) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(rate)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey(rate.Date), raw, s.ttl).Err(); err != nil {
		s.logger.Warn("rate cache write failed", slog.String("date", rate.Date), slog.Any("error", err))
	}
}

func (s *Service) invalidate(ctx context.Context, date string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, cacheKey(date)).Err(); err != nil {
		s.logger.Warn("rate cache invalidate failed", slog.String("date", date), slog.Any("error", err))
	}
}
