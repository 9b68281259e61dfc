// Package providers groups the provider-facing machinery of the embed
// pipeline.
//
// Subpackages:
//   - oembed: exchange transport, strategies, and callback registry
//   - oembed/client: outbound HTTP client with retries, rate limiting,
//     and per-host circuit breakers
//   - convert: provider response to document fragment conversion
//   - preview: page-preview fallback for providers without an endpoint
//   - sandbox: pooled script runtimes for provider callback payloads
package providers
