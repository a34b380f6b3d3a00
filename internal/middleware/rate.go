package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int
	Burst             int
	// IdleTTL is how long a client's bucket survives without requests.
	IdleTTL time.Duration
}

// DefaultRateLimitConfig returns the per-visitor limits for page requests.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 100,
		Burst:             200,
		IdleTTL:           10 * time.Minute,
	}
}

// LimitHandler writes the response for a rejected request. The context is
// aborted afterwards.
type LimitHandler func(c *gin.Context)

// RateLimitOption customizes a rate limiter.
type RateLimitOption func(*limiterOptions)

type limiterOptions struct {
	onLimit LimitHandler
	now     func() time.Time
}

// WithOnLimit replaces the default JSON 429 response.
func WithOnLimit(h LimitHandler) RateLimitOption {
	return func(o *limiterOptions) {
		if h != nil {
			o.onLimit = h
		}
	}
}

func withClock(now func() time.Time) RateLimitOption {
	return func(o *limiterOptions) { o.now = now }
}

func buildOptions(opts []RateLimitOption) limiterOptions {
	o := limiterOptions{onLimit: jsonLimited, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func jsonLimited(c *gin.Context) {
	c.JSON(http.StatusTooManyRequests, gin.H{
		"error": "rate limit exceeded",
	})
}

// RateLimit creates a per-IP rate limiting middleware. Buckets idle for
// longer than IdleTTL are dropped.
func RateLimit(cfg RateLimitConfig, opts ...RateLimitOption) gin.HandlerFunc {
	o := buildOptions(opts)

	type client struct {
		limiter  *rate.Limiter
		lastSeen time.Time
	}

	var (
		mu        sync.Mutex
		clients   = make(map[string]*client)
		lastPrune = o.now()
	)

	return func(c *gin.Context) {
		ip := c.ClientIP()
		now := o.now()

		mu.Lock()
		if cfg.IdleTTL > 0 && now.Sub(lastPrune) >= cfg.IdleTTL {
			for key, cl := range clients {
				if now.Sub(cl.lastSeen) >= cfg.IdleTTL {
					delete(clients, key)
				}
			}
			lastPrune = now
		}
		cl, exists := clients[ip]
		if !exists {
			cl = &client{
				limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
			}
			clients[ip] = cl
		}
		cl.lastSeen = now
		limiter := cl.limiter
		mu.Unlock()

		if !limiter.AllowN(now, 1) {
			o.onLimit(c)
			c.Abort()
			return
		}

		c.Next()
	}
}

// GlobalRateLimit creates a rate limiting middleware shared by all clients.
func GlobalRateLimit(cfg RateLimitConfig, opts ...RateLimitOption) gin.HandlerFunc {
	o := buildOptions(opts)
	limiter := rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)

	return func(c *gin.Context) {
		if !limiter.AllowN(o.now(), 1) {
			o.onLimit(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
