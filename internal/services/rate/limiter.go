package rate

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// Video players flush watch positions on a tight loop, so report writes get
// a sustained per-minute cap plus a short burst window per user.

const (
	reportMinuteWindow = time.Minute
	reportBurstWindow  = 10 * time.Second
)

type WindowStore interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	WindowState(ctx context.Context, key string) (int64, time.Duration, error)
}

type Limiter struct {
	store     WindowStore
	perMinute int
	perBurst  int
}

func NewLimiter(store WindowStore, perMinute, perBurst int) *Limiter {
	if perMinute < 0 {
		perMinute = 0
	}
	if perBurst < 0 {
		perBurst = 0
	}

	return &Limiter{
		store:     store,
		perMinute: perMinute,
		perBurst:  perBurst,
	}
}

// AllowReport admits or rejects one progress report for the user. When the
// report is rejected the first value is the number of seconds until the
// tightest window frees up.
func (l *Limiter) AllowReport(ctx context.Context, userID int64) (int64, bool, error) {
	if userID <= 0 {
		return 0, false, fmt.Errorf("invalid user id")
	}
	if l.store == nil {
		return 0, false, fmt.Errorf("rate limiter store is nil")
	}

	retryAfterSec := int64(0)

	if l.perMinute > 0 {
		count, ttl, err := l.store.IncrementWindow(ctx, minuteKey(userID), reportMinuteWindow)
		if err != nil {
			return 0, false, err
		}
		if count > int64(l.perMinute) {
			retryAfterSec = maxInt64(retryAfterSec, ceilSeconds(ttl))
		}
	}

	if l.perBurst > 0 {
		count, ttl, err := l.store.IncrementWindow(ctx, burstKey(userID), reportBurstWindow)
		if err != nil {
			return 0, false, err
		}
		if count > int64(l.perBurst) {
			retryAfterSec = maxInt64(retryAfterSec, ceilSeconds(ttl))
		}
	}

	if retryAfterSec > 0 {
		return retryAfterSec, false, nil
	}

	return 0, true, nil
}

// RetryAfterReport reads the current window state without consuming a slot.
func (l *Limiter) RetryAfterReport(ctx context.Context, userID int64) (int64, error) {
	if userID <= 0 {
		return 0, fmt.Errorf("invalid user id")
	}
	if l.store == nil {
		return 0, fmt.Errorf("rate limiter store is nil")
	}

	retryAfterSec := int64(0)

	if l.perMinute > 0 {
		count, ttl, err := l.store.WindowState(ctx, minuteKey(userID))
		if err != nil {
			return 0, err
		}
		if count >= int64(l.perMinute) {
			retryAfterSec = maxInt64(retryAfterSec, ceilSeconds(ttl))
		}
	}

	if l.perBurst > 0 {
		count, ttl, err := l.store.WindowState(ctx, burstKey(userID))
		if err != nil {
			return 0, err
		}
		if count >= int64(l.perBurst) {
			retryAfterSec = maxInt64(retryAfterSec, ceilSeconds(ttl))
		}
	}

	return retryAfterSec, nil
}

func minuteKey(userID int64) string {
	return "rate:report:min:" + strconv.FormatInt(userID, 10)
}

func burstKey(userID int64) string {
	return "rate:report:10s:" + strconv.FormatInt(userID, 10)
}

func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	sec := int64(d / time.Second)
	if d%time.Second != 0 {
		sec++
	}
	if sec <= 0 {
		sec = 1
	}
	return sec
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
