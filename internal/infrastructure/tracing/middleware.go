package tracing

import (
	"context"

	"github.com/gin-gonic/gin"
)

// HTTPMiddleware opens a span per request and propagates the trace ID
// through the X-Trace-ID header, so an authoring surface can stitch
// its own logs to the pipeline's.
func HTTPMiddleware(t *Tracer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if trace := c.GetHeader("X-Trace-ID"); trace != "" {
			ctx = context.WithValue(ctx, ctxTrace, trace)
		}

		span, ctx := t.StartSpan(ctx, c.FullPath())
		span.SetTag("http.method", c.Request.Method)
		span.SetTag("http.path", c.Request.URL.Path)
		c.Request = c.Request.WithContext(ctx)

		c.Header("X-Trace-ID", span.Trace)

		c.Next()

		span.SetStatus(c.Writer.Status())
		if len(c.Errors) > 0 {
			span.SetError(c.Errors.Last())
		}
		t.End(span)
	}
}
