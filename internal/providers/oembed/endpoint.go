package oembed

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Exchange modes carried by provider definitions.
const (
	// ModeScriptCallback selects the script-callback exchange.
	ModeScriptCallback = "script-callback"
	// ModeJSON selects the plain-JSON exchange.
	ModeJSON = "json"
	// ModePreview selects the page-preview fallback, implemented in
	// the preview package.
	ModePreview = "preview"
)

// KnownMode reports whether mode names an exchange mode. The empty
// string counts: it means the default strategy order applies.
func KnownMode(mode string) bool {
	switch mode {
	case "", ModeScriptCallback, ModeJSON, ModePreview:
		return true
	}
	return false
}

const (
	placeholderURL      = "{url}"
	placeholderCallback = "{callback}"
)

var placeholderPattern = regexp.MustCompile(`\{[a-z][a-z0-9_]*\}`)

// BuildURL expands an endpoint template into a concrete request URL.
// {url} receives the query-escaped resource URL, {callback} the
// allocated callback identifier, and every entry of params substitutes
// its own {name} placeholder. A placeholder left unresolved is an
// error; it means the definition and the exchange mode disagree.
func BuildURL(template, resource, callback string, params map[string]string) (string, error) {
	out := strings.ReplaceAll(template, placeholderURL, url.QueryEscape(resource))
	if callback != "" {
		out = strings.ReplaceAll(out, placeholderCallback, callback)
	}
	for name, value := range params {
		out = strings.ReplaceAll(out, "{"+name+"}", url.QueryEscape(value))
	}

	if leftover := placeholderPattern.FindString(out); leftover != "" {
		return "", fmt.Errorf("endpoint template %q: unresolved placeholder %s", template, leftover)
	}
	return out, nil
}
