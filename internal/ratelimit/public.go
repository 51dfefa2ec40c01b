package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/notifycar/notifycar/internal/config"
)

const (
	keyPublicIP   = "public:ip:%s"
	keyImportLock = "import:lock:%s"

	importLockTTL = 2 * time.Minute
)

// PublicLimiter throttles the unauthenticated endpoints per caller IP
// and serializes CSV imports per organization. A nil limiter means
// rate limiting is disabled and every request passes.
type PublicLimiter struct {
	bucket *TokenBucket
	locker *Locker

	rate  float64
	burst int
}

func NewPublicLimiter(cfg config.Config) (*PublicLimiter, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}

	addr := strings.TrimSpace(limitCfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}
	if limitCfg.PublicRate <= 0 || limitCfg.PublicBurst <= 0 {
		return nil, errors.New("public rate limit must be positive")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(limitCfg.RedisPassword),
		DB:       limitCfg.RedisDB,
	})

	return &PublicLimiter{
		bucket: NewTokenBucket(client),
		locker: NewLocker(client),
		rate:   limitCfg.PublicRate,
		burst:  limitCfg.PublicBurst,
	}, nil
}

func (l *PublicLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

// AllowIP drains one token from the caller's bucket. Redis errors fail
// open; throttling never takes the public endpoints down with it.
func (l *PublicLimiter) AllowIP(ctx context.Context, ip string) (*Result, error) {
	if !l.Enabled() {
		return &Result{Allowed: true}, nil
	}
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return &Result{Allowed: true}, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyPublicIP, ip), l.rate, l.burst)
}

// LockImport reserves the import slot for a scope (an org id, or a
// fixed key for admin imports). The returned token releases the lock.
func (l *PublicLimiter) LockImport(ctx context.Context, scope string) (string, bool, error) {
	if !l.Enabled() || l.locker == nil {
		return "", true, nil
	}
	return l.locker.TryLock(ctx, fmt.Sprintf(keyImportLock, scope), importLockTTL)
}

func (l *PublicLimiter) ReleaseImport(ctx context.Context, scope, token string) {
	if !l.Enabled() || l.locker == nil || token == "" {
		return
	}
	_ = l.locker.Release(ctx, fmt.Sprintf(keyImportLock, scope), token)
}
