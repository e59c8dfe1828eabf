package middleware

import (
	"context"
	"errors"
	"sync"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/time/rate"

	"github.com/mmynk/splitsettle/internal/metrics"
)

// ErrRateLimited is returned when a caller exceeds its request budget.
var ErrRateLimited = errors.New("too many requests, slow down")

// idleTTL is how long an unused per-caller limiter is kept.
const idleTTL = 10 * time.Minute

// RateLimit is a token bucket expressed per minute.
type RateLimit struct {
	RequestsPerMinute float64
	Burst             int
}

type rateEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per authenticated caller.
type RateLimiter struct {
	limit    RateLimit
	metrics  *metrics.Metrics
	mu       sync.Mutex
	visitors map[string]*rateEntry
	swept    time.Time
	clockNow func() time.Time
}

// NewRateLimiter creates a limiter. m may be nil.
func NewRateLimiter(limit RateLimit, m *metrics.Metrics) *RateLimiter {
	return &RateLimiter{
		limit:    limit,
		metrics:  m,
		visitors: make(map[string]*rateEntry),
		clockNow: time.Now,
	}
}

// Interceptor rejects calls over budget with ResourceExhausted. It must run
// after RequireAuth so the caller is known; anonymous calls share one bucket.
func (r *RateLimiter) Interceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if !r.Allow(GetUserID(ctx)) {
				if r.metrics != nil {
					r.metrics.RateLimited(req.Spec().Procedure)
				}
				return nil, connect.NewError(connect.CodeResourceExhausted, ErrRateLimited)
			}
			return next(ctx, req)
		}
	}
}

// Allow consumes one token for id.
func (r *RateLimiter) Allow(id string) bool {
	now := r.clockNow()
	return r.obtainLimiter(id, now).AllowN(now, 1)
}

func (r *RateLimiter) obtainLimiter(id string, now time.Time) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.evictIdle(now)
	if entry, ok := r.visitors[id]; ok {
		entry.lastSeen = now
		return entry.limiter
	}

	perSecond := r.limit.RequestsPerMinute / 60.0
	if perSecond <= 0 {
		perSecond = 1
	}
	burst := r.limit.Burst
	if burst <= 0 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(perSecond), burst)
	r.visitors[id] = &rateEntry{limiter: limiter, lastSeen: now}
	return limiter
}

// evictIdle drops limiters unused for idleTTL, at most once per idleTTL.
// Callers hold r.mu.
func (r *RateLimiter) evictIdle(now time.Time) {
	if now.Sub(r.swept) < idleTTL {
		return
	}
	r.swept = now
	for id, entry := range r.visitors {
		if now.Sub(entry.lastSeen) > idleTTL {
			delete(r.visitors, id)
		}
	}
}
