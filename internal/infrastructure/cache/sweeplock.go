package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ptuchik/billing/internal/application/subscription/usecases"
	"github.com/ptuchik/billing/internal/shared/biztime"
)

const (
	sweepKeyPrefix = "billing_sweep:"
	// DefaultSweepLockTTL outlives the business day the lock is keyed on.
	DefaultSweepLockTTL = 48 * time.Hour
)

// SweepLock claims a subscription for one sweep and business day with SetNX,
// so parallel workers never charge or notify twice.
type SweepLock struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSweepLock(client *redis.Client, ttl time.Duration) *SweepLock {
	if ttl <= 0 {
		ttl = DefaultSweepLockTTL
	}
	return &SweepLock{client: client, ttl: ttl}
}

// buildKey builds the Redis key for a sweep claim
// Format: billing_sweep:{kind}:{subscription_id}:{YYYY-MM-DD}
func (l *SweepLock) buildKey(kind usecases.SweepKind, subscriptionID uint, date time.Time) string {
	return fmt.Sprintf("%s%s:%d:%s", sweepKeyPrefix, kind, subscriptionID, biztime.FormatInBizTimezone(date, "2006-01-02"))
}

// TryAcquire reports whether the caller won the claim.
func (l *SweepLock) TryAcquire(ctx context.Context, kind usecases.SweepKind, subscriptionID uint, date time.Time) (bool, error) {
	acquired, err := l.client.SetNX(ctx, l.buildKey(kind, subscriptionID, date), "1", l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire sweep lock: %w", err)
	}
	return acquired, nil
}

// Release drops a claim, letting a manual re-run process the subscription again.
func (l *SweepLock) Release(ctx context.Context, kind usecases.SweepKind, subscriptionID uint, date time.Time) error {
	if err := l.client.Del(ctx, l.buildKey(kind, subscriptionID, date)).Err(); err != nil {
		return fmt.Errorf("failed to release sweep lock: %w", err)
	}
	return nil
}

var _ usecases.SweepLock = (*SweepLock)(nil)
