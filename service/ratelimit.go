package service

import (
	"context"
	"log/slog"
	"time"

	"marketplace.app/cache"
	"marketplace.app/config"
	"marketplace.app/errors"
)

// LoginLimiter throttles authentication attempts per subject with a fixed
// window: the first failed attempt opens the window, and the counter lives
// until the window expires or a successful login resets it early.
type LoginLimiter struct {
	store     cache.Store
	threshold int64
	window    time.Duration
}

// NewLoginLimiter creates a limiter from the rate-limit configuration
func NewLoginLimiter(store cache.Store, cfg config.RateLimitConfig) *LoginLimiter {
	return &LoginLimiter{
		store:     store,
		threshold: int64(cfg.Threshold),
		window:    cfg.Window(),
	}
}

// CheckAndIncrement counts one attempt for the subject and rejects it once
// the count exceeds the threshold within the window. A counter-store outage
// fails open: an unreachable counter must not lock every user out.
func (l *LoginLimiter) CheckAndIncrement(ctx context.Context, subject string) error {
	if subject == "" {
		return errors.NewValidationError("rate limit subject is required")
	}

	key := cache.LoginAttemptsKey(subject)

	count, err := l.store.Increment(ctx, key)
	if err != nil {
		slog.Warn("rate limit counter unavailable, allowing attempt", "subject", subject, "error", err)
		return nil
	}

	if count == 1 {
		if err := l.store.Expire(ctx, key, l.window); err != nil {
			slog.Warn("failed to set rate limit window", "subject", subject, "error", err)
		}
	}

	if count > l.threshold {
		return errors.NewTooManyAttemptsError("too many login attempts, try again later")
	}

	return nil
}

// Reset clears the subject's counter so a successful login ends the window
// early instead of letting stale failures linger
func (l *LoginLimiter) Reset(ctx context.Context, subject string) {
	if err := l.store.DeleteMany(ctx, cache.LoginAttemptsKey(subject)); err != nil {
		slog.Warn("failed to reset rate limit counter", "subject", subject, "error", err)
	}
}
