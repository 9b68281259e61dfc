// Package main is the entry point for the embedkit server.
//
// This application serves the embed-content acquisition pipeline:
// resolving user-supplied resource URLs into renderable markup through
// provider definitions, with response and frame-content caching.
//
// The server provides:
//   - REST API for sessions, consumers, and resolution
//   - WebSocket streaming for progress and notices
//   - Provider definition registry with hot reload
//   - Session snapshot persistence
//   - Rate limiting and Prometheus metrics
//
// Configuration:
//   - EMBEDKIT_-prefixed environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	./server -port 8000
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
