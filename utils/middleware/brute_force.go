package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/learnhub-api/utils/response"
)

// AttemptStore is the subset of cache.RedisCache used for lockout bookkeeping
type AttemptStore interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	Increment(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, expiration time.Duration) error
	TTL(ctx context.Context, key string) (time.Duration, error)
}

// BruteForceProtection applies progressive lockouts to IPs with repeated
// failed logins. A nil store disables it.
type BruteForceProtection struct {
	store AttemptStore
}

// NewBruteForceProtection creates a new brute force protection instance
func NewBruteForceProtection(store AttemptStore) *BruteForceProtection {
	return &BruteForceProtection{
		store: store,
	}
}

func attemptKey(ip string) string { return fmt.Sprintf("brute_force:attempts:%s", ip) }

func lockKey(ip string) string { return fmt.Sprintf("brute_force:lock:%s", ip) }

// CheckAndRecordAttempt middleware rejects requests from locked IPs
func (b *BruteForceProtection) CheckAndRecordAttempt() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if b == nil || b.store == nil {
			return c.Next()
		}

		key := lockKey(c.IP())
		locked, err := b.store.Exists(c.UserContext(), key)
		if err != nil {
			// Cache outages must not block legitimate users
			return c.Next()
		}

		if locked {
			ttl, _ := b.store.TTL(c.UserContext(), key)
			retryAfter := int(ttl.Seconds())
			if retryAfter <= 0 {
				retryAfter = 60
			}

			c.Set("Retry-After", fmt.Sprintf("%d", retryAfter))
			return response.TooManyRequests(c, fmt.Sprintf("Too many failed attempts. Try again in %d seconds", retryAfter))
		}

		return c.Next()
	}
}

// lockoutFor maps the failed attempt count in the current window to a lock duration
func lockoutFor(attempts int64) time.Duration {
	switch {
	case attempts >= 25:
		return 24 * time.Hour
	case attempts >= 10:
		return time.Hour
	case attempts >= 5:
		return 2 * time.Minute
	default:
		return 0
	}
}

// RecordFailedAttempt records a failed login attempt and applies progressive lockouts
func (b *BruteForceProtection) RecordFailedAttempt(ctx context.Context, ip string) error {
	if b == nil || b.store == nil {
		return nil
	}

	attempts, err := b.store.Increment(ctx, attemptKey(ip))
	if err != nil {
		return nil
	}

	// Attempts are counted over a 15 minute window
	if attempts == 1 {
		_ = b.store.Expire(ctx, attemptKey(ip), 15*time.Minute)
	}

	lockDuration := lockoutFor(attempts)
	if lockDuration == 0 {
		return nil
	}
	return b.store.Set(ctx, lockKey(ip), "locked", lockDuration)
}

// RecordSuccessfulAttempt clears failed attempts on successful login
func (b *BruteForceProtection) RecordSuccessfulAttempt(ctx context.Context, ip string) error {
	if b == nil || b.store == nil {
		return nil
	}
	return b.store.Delete(ctx, attemptKey(ip), lockKey(ip))
}
