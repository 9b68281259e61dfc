// Package logging wraps uber/zap for the embed pipeline.
//
// Two modes:
//   - Production: JSON output for machine parsing
//   - Development: colored console output
//
// Components take a *Logger and derive named children, so log lines
// carry their origin ("session", "registry.watcher", "oembed"):
//
//	logger := logging.NewDefault()
//	log := logger.Named("session")
//	log.Info("session opened", zap.String("session_id", sid.String()))
//
// NewNop returns a discard logger; constructors use it when callers
// pass nil, which keeps logging optional in tests.
package logging
