// Package cache implements the response cache: the per-definition mapping
// from resource URL to the last successful provider response.
//
// Semantics are insert-once: the first successful resolution of a URL wins
// and the entry is treated as immutable from then on. There is no eviction
// and no expiry; entries live until the owning session closes.
//
// An optional SQLite-backed store mirrors inserts to disk and warm-loads
// them on startup, so responses survive process restarts. The mirror is
// invisible to the pipeline state machine; in-memory semantics are
// unchanged whether it is enabled or not.
package cache
