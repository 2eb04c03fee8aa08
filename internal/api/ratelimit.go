package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Throttled is notified each time a request is rejected.
type Throttled interface {
	IncrementSubmitThrottled()
}

// RateLimitMiddleware rejects requests beyond a shared token bucket of
// perSecond tokens with the given burst.
func RateLimitMiddleware(perSecond float64, burst int, counter Throttled) gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Limit(perSecond), burst)

	return func(c *gin.Context) {
		if limiter.Allow() {
			c.Next()
			return
		}
		if counter != nil {
			counter.IncrementSubmitThrottled()
		}
		c.Header("Retry-After", "1")
		abortWith(c, http.StatusTooManyRequests, CodeRateLimited, "too many submissions, retry later")
	}
}
