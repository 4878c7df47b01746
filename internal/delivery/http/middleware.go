package http

import (
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// CORSMiddleware handles CORS for browser-based consumers
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		// Check if origin is allowed
		if isAllowedOrigin(origin, allowedOrigins) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
			c.Writer.Header().Set("Access-Control-Max-Age", "3600")
		}

		// Handle preflight requests
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// isAllowedOrigin checks if the origin is in the allowed list
func isAllowedOrigin(origin string, allowedOrigins []string) bool {
	for _, allowed := range allowedOrigins {
		// Support wildcard matching, e.g. http://localhost:*
		if strings.HasSuffix(allowed, "*") {
			prefix := strings.TrimSuffix(allowed, "*")
			if strings.HasPrefix(origin, prefix) {
				return true
			}
		} else if origin == allowed {
			return true
		}
	}
	return false
}

// maxTrackedClients bounds the per-IP limiter pool.
const maxTrackedClients = 10000

// ipLimiterPool hands out one token bucket per client IP. The pool is capped:
// once full it is dropped and rebuilt, so memory stays bounded no matter how
// many distinct IPs hit the service.
type ipLimiterPool struct {
	mu         sync.Mutex
	limiters   map[string]*rate.Limiter
	perMinute  int
	maxClients int
}

func newIPLimiterPool(perMinute, maxClients int) *ipLimiterPool {
	return &ipLimiterPool{
		limiters:   make(map[string]*rate.Limiter),
		perMinute:  perMinute,
		maxClients: maxClients,
	}
}

func (p *ipLimiterPool) get(ip string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	if limiter, ok := p.limiters[ip]; ok {
		return limiter
	}

	if len(p.limiters) >= p.maxClients {
		// Resetting loses refill progress for existing clients, which only
		// makes their buckets fuller; tracking recency is not worth it here.
		p.limiters = make(map[string]*rate.Limiter)
	}

	limiter := rate.NewLimiter(rate.Limit(float64(p.perMinute)/60.0), p.perMinute)
	p.limiters[ip] = limiter
	return limiter
}

func (p *ipLimiterPool) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.limiters)
}

// RateLimitMiddleware applies a per-client-IP token bucket. This protects
// the service itself; the cooldown the upstream API imposes is handled
// inside the search pipeline.
func RateLimitMiddleware(perMinute int) gin.HandlerFunc {
	pool := newIPLimiterPool(perMinute, maxTrackedClients)

	return func(c *gin.Context) {
		if !pool.get(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "too many requests",
			})
			return
		}
		c.Next()
	}
}

// LoggerMiddleware logs requests (simple version for now)
func LoggerMiddleware() gin.HandlerFunc {
	return gin.Logger()
}

// RecoveryMiddleware recovers from panics
func RecoveryMiddleware() gin.HandlerFunc {
	return gin.Recovery()
}
