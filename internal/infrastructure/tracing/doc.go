/*
Package tracing records request-scoped spans as structured log lines.

A full trace exporter is out of scope; the span log answers the
question that matters for this pipeline: which part of a slow resolve
was spent waiting on the provider.

Usage:

	tracer := tracing.New("embedkit", logger)
	router.Use(tracing.HTTPMiddleware(tracer))

	// Manual span creation
	span, ctx := tracer.StartSpan(ctx, "provider.fetch")
	span.SetTag("definition", name)
	defer tracer.End(span)

The trace ID propagates through the X-Trace-ID header; a client that
sends one gets its requests stitched into its own trace, a client that
doesn't gets a fresh ID back in the response. Finished spans are
exported through a buffered channel; when the buffer is full spans
drop rather than stall request handling.
*/
package tracing
