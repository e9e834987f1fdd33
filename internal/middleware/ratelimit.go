package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"golang.org/x/time/rate"
)

// limiterIdleTTL drops limiters of clients that have been quiet for a while
const limiterIdleTTL = 15 * time.Minute

// IPRateLimiter keeps one token bucket per client IP
type IPRateLimiter struct {
	limit    rate.Limit
	burst    int
	limiters *expirable.LRU[string, *rate.Limiter]
}

// NewIPRateLimiter creates a limiter allowing rps requests per second with the given burst per IP
func NewIPRateLimiter(rps float64, burst, maxClients int) *IPRateLimiter {
	if maxClients <= 0 {
		maxClients = 10000
	}
	return &IPRateLimiter{
		limit:    rate.Limit(rps),
		burst:    burst,
		limiters: expirable.NewLRU[string, *rate.Limiter](maxClients, nil, limiterIdleTTL),
	}
}

// Allow reports whether a request from ip may proceed
func (l *IPRateLimiter) Allow(ip string) bool {
	lim, ok := l.limiters.Get(ip)
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
	}
	// re-adding refreshes the idle expiry
	l.limiters.Add(ip, lim)
	return lim.Allow()
}

// Middleware rejects requests over the limit with 429
func (l *IPRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			detail := dto.NewErrorDetail(dto.ErrorCodeTooManyRequests, "Too many requests").
				WithSeverity(dto.ErrorSeverityWarning).
				WithDetails("Please wait before trying again")
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponse(detail))
			return
		}
		c.Next()
	}
}
