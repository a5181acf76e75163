package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/estebanSulcaInfante/envaperu-catalog/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// rateEntry tracks request counts per key within a fixed window.
type rateEntry struct {
	count     int
	windowEnd time.Time
}

// RateLimiter is a fixed-window limiter keyed by principal subject when the
// request is authenticated and by client IP otherwise.
type RateLimiter struct {
	limit  int
	window time.Duration

	mu      sync.Mutex
	entries map[string]*rateEntry
	now     func() time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{limit: limit, window: window, entries: make(map[string]*rateEntry), now: time.Now}
}

// Middleware must be mounted after JWTAuth to key by subject.
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if p := GetPrincipal(c); p != nil {
			key = "sub:" + p.Subject
		}

		allowed, retryAt := l.allow(key)
		if !allowed {
			c.Header("Retry-After", retryAt.UTC().Format(http.TimeFormat))
			abort(c, apierror.RateLimited("Demasiadas solicitudes. Intente nuevamente en un momento."))
			return
		}
		c.Next()
	}
}

func (l *RateLimiter) allow(key string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[key]
	if !ok || now.After(e.windowEnd) {
		e = &rateEntry{windowEnd: now.Add(l.window)}
		l.entries[key] = e
	}
	e.count++
	return e.count <= l.limit, e.windowEnd
}

const purgeInterval = 5 * time.Minute

// StartPurge removes expired entries periodically until ctx is done.
func (l *RateLimiter) StartPurge(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(purgeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := l.purge(); n > 0 {
					log.Debug().Int("purged", n).Msg("rate limiter entries purged")
				}
			}
		}
	}()
}

func (l *RateLimiter) purge() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	n := 0
	for k, e := range l.entries {
		if now.After(e.windowEnd) {
			delete(l.entries, k)
			n++
		}
	}
	return n
}
