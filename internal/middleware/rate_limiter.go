package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/edutrack/edutrack/internal/app/models/dto"
)

// visitor pairs a limiter with the last time its client was seen
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles requests per client IP with a token bucket
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rps      rate.Limit
	burst    int
	expiry   time.Duration
}

// NewRateLimiter creates a limiter allowing rps requests per second per client
// with bursts up to burst. A non-positive rps disables limiting.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		rps:      rate.Limit(rps),
		burst:    burst,
		expiry:   3 * time.Minute,
	}
}

func (l *RateLimiter) get(key string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter
}

// Cleanup drops clients idle for longer than the expiry until ctx is done
func (l *RateLimiter) Cleanup(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			l.mu.Lock()
			for key, v := range l.visitors {
				if now.Sub(v.lastSeen) > l.expiry {
					delete(l.visitors, key)
				}
			}
			l.mu.Unlock()
		}
	}
}

// Middleware rejects requests over the limit with 429
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.rps <= 0 {
			c.Next()
			return
		}

		if !l.get(c.ClientIP(), time.Now()).Allow() {
			detail := dto.NewErrorDetail(dto.ErrorCodeRateLimited, "too many requests").
				WithSeverity(dto.ErrorSeverityWarning)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponse(detail))
			return
		}

		c.Next()
	}
}
