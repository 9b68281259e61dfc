// Package ws serves the per-session WebSocket surface.
//
// One connection binds to one session context. The client sends
// resolve, cancel, validate, and ping messages; the server streams
// back resolution results, progress aggregation updates, and user
// notices. The connection itself is the session's progress notifier
// for as long as it stays open.
package ws
