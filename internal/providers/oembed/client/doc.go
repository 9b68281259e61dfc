/*
Package client provides the outbound HTTP client for provider endpoints.

# Overview

Every network fetch in the resolution pipeline goes through this client:
provider scripts, discovery documents, preview pages. It wraps resty with
rate limiting, retries, and one circuit breaker per endpoint host.

# Features

- Pooled transport with automatic retries
- Token-bucket rate limiting shared across all provider calls
- Independent circuit per host so one dead provider cannot block the rest
- Configurable timeout, headers, and bearer auth for token-gated providers
- Response size cap

# Usage

	c := client.New()
	c.SetRateLimit(20)

	body, err := c.Fetch(ctx, "https://provider.example/oembed?url=...")

A 4xx answer is reported as an error but does not count against the
host's circuit; 5xx answers and transport failures do.
*/
package client
