package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"mediareviews/internal/pkg/response"
	"mediareviews/internal/ratelimit"
)

// HeaderAuthorID identifies the end user behind the bot so each chat user
// gets their own quota instead of sharing the bot's IP. It is only trusted
// from callers already identified by a service token.
const HeaderAuthorID = "X-Author-Id"

func RateLimit(l ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, retry := l.Allow(c.Request.Context(), rateLimitKey(c))
		if ok {
			c.Next()
			return
		}

		secs := int(math.Ceil(retry.Seconds()))
		if secs < 1 {
			secs = 1
		}
		c.Header("Retry-After", strconv.Itoa(secs))
		response.AbortError(c, http.StatusTooManyRequests, "Too many requests, retry in "+strconv.Itoa(secs)+"s")
	}
}

func rateLimitKey(c *gin.Context) string {
	if c.GetString(ContextKeyService) != "" {
		if author := strings.TrimSpace(c.GetHeader(HeaderAuthorID)); author != "" {
			return "author:" + author
		}
	}
	return "ip:" + c.ClientIP()
}
