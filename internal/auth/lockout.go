package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/financehub/financehub/internal/settings"
)

// SecurityPolicy supplies the active lockout rules.
type SecurityPolicy interface {
	Security() settings.Security
}

// Lockout counts failed logins per email in Redis.
type Lockout struct {
	client *redis.Client
	policy SecurityPolicy
}

// NewLockout constructs a Lockout. A nil client disables it.
func NewLockout(client *redis.Client, policy SecurityPolicy) *Lockout {
	return &Lockout{client: client, policy: policy}
}

func (l *Lockout) rules() settings.Security {
	if l.policy == nil {
		return settings.Defaults().Security
	}
	return l.policy.Security()
}

func (l *Lockout) key(email string) string {
	return "login:failures:" + strings.ToLower(strings.TrimSpace(email))
}

// Locked reports whether the email has used up its attempts.
func (l *Lockout) Locked(ctx context.Context, email string) (bool, error) {
	if l == nil || l.client == nil {
		return false, nil
	}
	n, err := l.client.Get(ctx, l.key(email)).Int()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return n >= l.rules().MaxLoginAttempts, nil
}

// Fail records a failed attempt. The counter expires after the lockout duration.
func (l *Lockout) Fail(ctx context.Context, email string) error {
	if l == nil || l.client == nil {
		return nil
	}
	key := l.key(email)
	ttl := time.Duration(l.rules().LockoutDuration) * time.Minute
	pipe := l.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// Reset clears the counter after a successful login.
func (l *Lockout) Reset(ctx context.Context, email string) error {
	if l == nil || l.client == nil {
		return nil
	}
	return l.client.Del(ctx, l.key(email)).Err()
}
