/*
Package monitoring provides Prometheus metrics for the embed pipeline.

# Overview

All metrics carry the embedkit_ prefix and cover the acquisition
pipeline (resolutions, transport failures, cancellations), both cache
levels (response cache and frame-content cache), the rendering surfaces
(frames, captures, consumers), progress aggregation, sessions, and the
HTTP/WebSocket surface.

# Usage

	// Create metrics collector
	metrics := monitoring.NewMetrics()

	// Add middleware to Gin router
	router.Use(monitoring.Middleware(metrics))

	// Record pipeline events
	metrics.RecordCacheHit("response")
	metrics.FramesActive.Inc()

	// Time resolutions
	timer := monitoring.NewTimer(metrics, "youtube")
	// ... resolution runs ...
	timer.Stop("success", "provider")

# Metrics Endpoint

Expose metrics via the standard Prometheus endpoint:

	import "github.com/prometheus/client_golang/prometheus/promhttp"
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
*/
package monitoring
