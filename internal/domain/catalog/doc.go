// Package catalog mirrors the public oEmbed providers directory.
//
// The directory is fetched with the retryable provider client, parsed,
// and indexed by endpoint URL scheme so a resource URL can be mapped to
// the provider endpoint that serves it. A cron schedule keeps the
// mirror fresh; an empty directory URL disables the whole feature.
package catalog
