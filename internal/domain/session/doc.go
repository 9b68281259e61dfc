// Package session owns session contexts: one per authoring surface.
//
// A session carries everything the embed pipeline scopes to a single
// editing surface: the cooperative loop, the consumer manager, the
// frame registry and content cache, the response caches, and the
// progress aggregator. Sessions outlive any individual consumer and
// are the teardown boundary for both cache levels.
//
// Snapshots capture every consumer's definition, resource URL, and
// rendered content into a compressed file; restoring rebuilds the
// consumers and re-installs their content into fresh frames.
package session
