package types

import (
	"fmt"
	"strings"
)

// ErrorKind classifies embed acquisition failures
type ErrorKind string

const (
	// ErrFetchFailed means the transport exchange did not complete
	ErrFetchFailed ErrorKind = "fetch-failed"
	// ErrUnsupportedURL means a response arrived but produced no usable content
	ErrUnsupportedURL ErrorKind = "unsupported-url"
	// ErrWidgetInvalid means the response arrived after its consumer was destroyed.
	// Logged only, never surfaced to the user.
	ErrWidgetInvalid ErrorKind = "widget-invalid"
)

// EmbedError is the caller-facing error for a failed acquisition.
// Transport failures and conversion failures share this shape and differ
// only in Kind, so callers handle both uniformly.
type EmbedError struct {
	Kind ErrorKind
	URL  string
}

// NewEmbedError creates an EmbedError for a resource URL
func NewEmbedError(kind ErrorKind, url string) *EmbedError {
	return &EmbedError{Kind: kind, URL: url}
}

func (e *EmbedError) Error() string {
	return ErrorMessage(e.Kind, e.URL, "")
}

// Is allows errors.Is matching on the kind
func (e *EmbedError) Is(target error) bool {
	other, ok := target.(*EmbedError)
	if !ok {
		return false
	}
	return other.Kind == e.Kind && (other.URL == "" || other.URL == e.URL)
}

// messages holds the user-facing wording per error kind. The "given" variant
// is phrased for inline dialog validation, where the URL was just typed.
var messages = map[string]string{
	"fetch-failed":          "Failed to fetch content for %s.",
	"fetch-failed.given":    "Failed to fetch content for the given URL.",
	"unsupported-url":       "The URL %s is not supported.",
	"unsupported-url.given": "The given URL is not supported.",
	"widget-invalid":        "Content for %s arrived after its consumer was destroyed.",
}

// ErrorMessage renders the user-facing message for an error kind. A non-empty
// suffix selects a wording variant when one exists, falling back to the base
// message otherwise.
func ErrorMessage(kind ErrorKind, url, suffix string) string {
	if suffix != "" {
		if msg, ok := messages[string(kind)+"."+strings.ToLower(suffix)]; ok {
			if strings.Contains(msg, "%s") {
				return fmt.Sprintf(msg, url)
			}
			return msg
		}
	}
	msg, ok := messages[string(kind)]
	if !ok {
		return fmt.Sprintf("Embedding %s failed.", url)
	}
	return fmt.Sprintf(msg, url)
}
