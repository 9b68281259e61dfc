// Package config provides environment-based configuration following
// 12-factor principles.
//
// All variables carry the EMBEDKIT_ prefix. Path-valued settings left
// empty fall back to the standard data layout in shared/paths, so a
// single EMBEDKIT_DATA_DIR moves every on-disk artifact together.
//
// Example:
//
//	cfg := config.LoadOrDefault()
//	srv, err := server.New(cfg)
package config
