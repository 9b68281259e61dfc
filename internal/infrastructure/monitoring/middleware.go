package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware creates a Gin middleware for metrics collection
func Middleware(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		// Get request size
		reqSize := c.Request.ContentLength
		if reqSize < 0 {
			reqSize = 0
		}

		// Process request
		c.Next()

		// Get response data
		duration := time.Since(start)
		status := strconv.Itoa(c.Writer.Status())
		respSize := int64(c.Writer.Size())

		// Record metrics
		metrics.RecordHTTPRequest(method, path, status, duration, reqSize, respSize)
	}
}

// Timer measures the span from dispatch to terminal callback of one
// resolution and records it on stop.
type Timer struct {
	start      time.Time
	metrics    *Metrics
	definition string
}

// NewTimer starts a resolve timer for a definition
func NewTimer(metrics *Metrics, definition string) *Timer {
	return &Timer{
		start:      time.Now(),
		metrics:    metrics,
		definition: definition,
	}
}

// Stop records the resolution with its outcome and source
func (t *Timer) Stop(status, source string) {
	if t == nil || t.metrics == nil {
		return
	}
	t.metrics.RecordResolve(t.definition, status, source, time.Since(t.start))
}
