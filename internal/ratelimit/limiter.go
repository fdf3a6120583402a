package ratelimit

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"
)

// Config holds the request budget applied to every key
type Config struct {
	// RequestsPerSecond is the sustained rate per key; zero or less disables limiting
	RequestsPerSecond float64
	// Burst is the number of requests allowed at once (defaults to 1)
	Burst int
}

// Limiter throttles requests per key, e.g. per chain RPC endpoint
type Limiter interface {
	// Wait blocks until a request for key may proceed or the context is done
	Wait(ctx context.Context, key string) error
}

type limiter struct {
	config Config

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewLimiter creates a limiter holding one token bucket per key
func NewLimiter(cfg Config) Limiter {
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}

	return &limiter{
		config:   cfg,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (l *limiter) Wait(ctx context.Context, key string) error {
	if l.config.RequestsPerSecond <= 0 {
		return nil
	}

	if err := l.get(key).Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait for %s: %w", key, err)
	}
	return nil
}

func (l *limiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.limiters[key]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(l.config.RequestsPerSecond), l.config.Burst)
		l.limiters[key] = lim
	}
	return lim
}
