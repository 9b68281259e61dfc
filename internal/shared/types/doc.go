// Package types provides shared data structures for the embed service.
//
// This package defines core types used across all pipeline components,
// ensuring type safety and consistent data structures.
//
// Core Types:
//   - ProviderResponse: Structured result returned by a content provider
//   - ResponseType: Provider response type enum (photo, video, rich, link)
//   - EmbedError: Caller-facing error with a taxonomy kind
//
// Request Types:
//   - ResolveRequest, ValidateRequest, SpawnRequest: HTTP API bodies
//   - WSMessage: WebSocket communication
//
// Example Usage:
//
//	resp, err := types.DecodeResponse(payload)
//	if err == nil && resp.Type == types.ResponseVideo {
//	    html := resp.HTML
//	}
package types
