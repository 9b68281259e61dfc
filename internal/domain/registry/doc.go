// Package registry manages provider definitions: the named integrations
// that tell the pipeline how to resolve a resource URL against a
// third-party content-description service.
//
// Definitions arrive from *.embed.json / *.embed.yaml files seeded out
// of a directory at startup, optionally hot-reloaded on changes, or are
// registered programmatically. Each definition names its endpoint
// template, exchange mode, and the URL patterns it accepts.
package registry
