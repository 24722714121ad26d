package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/GoSim-25-26J-441/go-energy-analysis/internal/logging"
)

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-Id"

// RequestIDMiddleware reads X-Request-Id or generates one, stores it in the
// gin and request contexts, echoes it back and logs the request.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if rid == "" {
			rid = uuid.NewString()
		}

		c.Set("request_id", rid)
		c.Request = c.Request.WithContext(logging.WithRequestID(c.Request.Context(), rid))
		c.Writer.Header().Set(RequestIDHeader, rid)

		start := time.Now()
		c.Next()

		logging.New(c.Request.Context()).LogInfof("http_request", "method=%s path=%s status=%d latency=%s",
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			time.Since(start),
		)
	}
}
