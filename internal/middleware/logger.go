package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"mediareviews/internal/pkg/response"
)

// ErrorLogger writes one access line per request, logs handler errors and
// recovers from panics with a generic 500.
func ErrorLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if recovered := recover(); recovered != nil {
				err := fmt.Errorf("%v", recovered)
				log.Error().
					Err(err).
					Str("request_id", requestID(c)).
					Str("method", c.Request.Method).
					Str("path", c.Request.URL.Path).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")

				response.AbortError(c, http.StatusInternalServerError, "Internal server error")
				return
			}

			status := c.Writer.Status()
			evt := log.Info()
			switch {
			case status >= http.StatusInternalServerError:
				evt = log.Error()
			case status >= http.StatusBadRequest:
				evt = log.Warn()
			}

			for _, err := range c.Errors {
				evt = evt.AnErr(fmt.Sprintf("error_%v", err.Type), err.Err)
			}

			evt.
				Str("request_id", requestID(c)).
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Str("query", c.Request.URL.RawQuery).
				Int("status", status).
				Str("client_ip", c.ClientIP()).
				Dur("latency", time.Since(start)).
				Msg("request")
		}()

		c.Next()
	}
}
