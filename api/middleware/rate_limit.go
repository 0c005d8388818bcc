package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/angelmondragon/vitrine-backend/api/responses"
	pkgerrors "github.com/angelmondragon/vitrine-backend/pkg/errors"
	"github.com/angelmondragon/vitrine-backend/pkg/logger"
)

type fixedWindowStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// IPRateLimitPolicy throttles one traffic surface per client IP.
type IPRateLimitPolicy struct {
	name   string
	window time.Duration
	limit  int
}

func NewIPRateLimitPolicy(name string, window time.Duration, limit int) IPRateLimitPolicy {
	return IPRateLimitPolicy{
		name:   strings.ToLower(strings.TrimSpace(name)),
		window: window,
		limit:  limit,
	}
}

func (p IPRateLimitPolicy) enabled() bool {
	return p.window > 0 && p.limit > 0
}

func (p IPRateLimitPolicy) normalizedName() string {
	if p.name == "" {
		return "default"
	}
	return p.name
}

// IPRateLimit enforces a shared fixed-window counter per client IP.
func IPRateLimit(policy IPRateLimitPolicy, store fixedWindowStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ip := clientIP(r)
			if ip == "" {
				next.ServeHTTP(w, r)
				return
			}

			allowed, count, err := store.FixedWindowAllow(ctx, "ip:"+policy.normalizedName()+":"+ip, int64(policy.limit), policy.window)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
				return
			}
			if !allowed {
				if logg != nil {
					logg.Warn(logg.WithFields(ctx, map[string]any{
						"policy":         policy.normalizedName(),
						"ip":             ip,
						"attempts":       count,
						"limit":          policy.limit,
						"window_seconds": int(policy.window.Seconds()),
					}), "rate_limit.blocked")
				}
				responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

const sessionLimiterIdle = 10 * time.Minute

// SessionLimiter keeps one token bucket per shopper session.
type SessionLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[string]*sessionBucket
	now      func() time.Time
}

type sessionBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewSessionLimiter(perSecond float64, burst int) *SessionLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &SessionLimiter{
		limit:    rate.Limit(perSecond),
		burst:    burst,
		limiters: map[string]*sessionBucket{},
		now:      time.Now,
	}
}

// Allow takes one token for sessionID. Buckets idle for a while are dropped.
func (l *SessionLimiter) Allow(sessionID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for id, bucket := range l.limiters {
		if now.Sub(bucket.lastSeen) > sessionLimiterIdle {
			delete(l.limiters, id)
		}
	}
	bucket, ok := l.limiters[sessionID]
	if !ok {
		bucket = &sessionBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[sessionID] = bucket
	}
	bucket.lastSeen = now
	return bucket.limiter.AllowN(now, 1)
}

// SessionRateLimit rejects requests of a session that exhausted its bucket. It must run after Session.
func SessionRateLimit(limiter *SessionLimiter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if !limiter.Allow(SessionIDFromContext(ctx)) {
				if logg != nil {
					logg.Warn(ctx, "rate_limit.session_blocked")
				}
				responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts, wait a moment"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
