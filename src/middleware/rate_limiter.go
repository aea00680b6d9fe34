package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	limiterCleanupInterval = 5 * time.Minute
	limiterIdleTimeout     = 10 * time.Minute
)

// limiterEntry holds a rate limiter with last used timestamp
type limiterEntry struct {
	limiter  *rate.Limiter
	lastUsed time.Time
}

// RateLimitConfig defines configuration for the per-IP rate limiter
type RateLimitConfig struct {
	RequestsPerMinute int
	Burst             int
	// OnLimit writes the rejection response. Defaults to a JSON 429.
	OnLimit gin.HandlerFunc
}

// IPRateLimiter keeps one token bucket per client IP and drops idle buckets
type IPRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	limit    rate.Limit
	burst    int
	onLimit  gin.HandlerFunc
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewIPRateLimiter creates a limiter and starts its cleanup goroutine
func NewIPRateLimiter(cfg RateLimitConfig) *IPRateLimiter {
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 60
	}
	if cfg.Burst <= 0 {
		cfg.Burst = cfg.RequestsPerMinute / 6
		if cfg.Burst < 1 {
			cfg.Burst = 1
		}
	}
	if cfg.OnLimit == nil {
		cfg.OnLimit = rejectJSON
	}

	l := &IPRateLimiter{
		limiters: make(map[string]*limiterEntry),
		limit:    rate.Every(time.Minute / time.Duration(cfg.RequestsPerMinute)),
		burst:    cfg.Burst,
		onLimit:  cfg.OnLimit,
		stopCh:   make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

// Allow reports whether the key may make another request now
func (l *IPRateLimiter) Allow(key string) bool {
	l.mu.Lock()
	entry, ok := l.limiters[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = entry
	}
	entry.lastUsed = time.Now()
	l.mu.Unlock()

	return entry.limiter.Allow()
}

// Middleware enforces the limit per client IP
func (l *IPRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			c.Header("Retry-After", "60")
			l.onLimit(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

// Stop terminates the cleanup goroutine
func (l *IPRateLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
}

func (l *IPRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(limiterCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.cleanup(time.Now().Add(-limiterIdleTimeout))
		case <-l.stopCh:
			return
		}
	}
}

// cleanup removes entries not used since cutoff
func (l *IPRateLimiter) cleanup(cutoff time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, entry := range l.limiters {
		if entry.lastUsed.Before(cutoff) {
			delete(l.limiters, key)
		}
	}
}

func (l *IPRateLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

func rejectJSON(c *gin.Context) {
	c.JSON(http.StatusTooManyRequests, gin.H{
		"success": false,
		"error":   "Too many requests. Please try again later.",
	})
}
