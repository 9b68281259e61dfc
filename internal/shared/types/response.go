package types

import (
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/microcosm-cc/bluemonday"
	"github.com/tidwall/gjson"
)

// textPolicy strips markup from provider-supplied text before it can
// reach a caller-visible surface.
var textPolicy = bluemonday.StrictPolicy()

// CleanText strips markup from a provider-supplied text value.
// Providers control these strings; notifications, snapshots, and API
// payloads must never relay them as markup.
func CleanText(s string) string {
	return textPolicy.Sanitize(s)
}

// ResponseType represents the content class a provider reports
type ResponseType string

const (
	ResponsePhoto ResponseType = "photo"
	ResponseVideo ResponseType = "video"
	ResponseRich  ResponseType = "rich"
	ResponseLink  ResponseType = "link"
)

// ErrNotObject indicates a provider payload that is not a JSON object
var ErrNotObject = errors.New("provider payload is not an object")

// ProviderResponse is the structured result a provider returns for one
// resource URL. The typed fields mirror the common provider schema; Raw keeps
// the original payload so provider-specific fields stay reachable. Once a
// response has been cached it is treated as immutable.
type ProviderResponse struct {
	Type            ResponseType `json:"type"`
	Version         string       `json:"version,omitempty"`
	URL             string       `json:"url,omitempty"`
	HTML            string       `json:"html,omitempty"`
	Title           string       `json:"title,omitempty"`
	AuthorName      string       `json:"author_name,omitempty"`
	ProviderName    string       `json:"provider_name,omitempty"`
	ThumbnailURL    string       `json:"thumbnail_url,omitempty"`
	ThumbnailWidth  int64        `json:"thumbnail_width,omitempty"`
	ThumbnailHeight int64        `json:"thumbnail_height,omitempty"`
	Width           int64        `json:"width,omitempty"`
	Height          int64        `json:"height,omitempty"`

	Raw []byte `json:"-"`
}

// DecodeResponse parses a raw provider payload. Field reads go through gjson
// because providers are loose with types (numeric sizes arrive as strings
// often enough that a strict unmarshal rejects real-world payloads).
func DecodeResponse(raw []byte) (ProviderResponse, error) {
	if !gjson.ValidBytes(raw) {
		return ProviderResponse{}, fmt.Errorf("decode provider response: invalid JSON")
	}
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return ProviderResponse{}, ErrNotObject
	}

	resp := ProviderResponse{
		Type:            ResponseType(root.Get("type").String()),
		Version:         root.Get("version").String(),
		URL:             root.Get("url").String(),
		HTML:            root.Get("html").String(),
		Title:           CleanText(root.Get("title").String()),
		AuthorName:      CleanText(root.Get("author_name").String()),
		ProviderName:    CleanText(root.Get("provider_name").String()),
		ThumbnailURL:    root.Get("thumbnail_url").String(),
		ThumbnailWidth:  root.Get("thumbnail_width").Int(),
		ThumbnailHeight: root.Get("thumbnail_height").Int(),
		Width:           root.Get("width").Int(),
		Height:          root.Get("height").Int(),
	}
	resp.Raw = make([]byte, len(raw))
	copy(resp.Raw, raw)
	return resp, nil
}

// Get reads a provider-specific field from the raw payload by path.
// Returns the zero Result when no raw payload is held.
func (r *ProviderResponse) Get(path string) gjson.Result {
	if len(r.Raw) == 0 {
		return gjson.Result{}
	}
	return gjson.GetBytes(r.Raw, path)
}

// HasRaw reports whether the original provider payload is held
func (r *ProviderResponse) HasRaw() bool {
	return len(r.Raw) > 0
}

// MarshalJSON emits the typed view, never the raw payload: the text
// fields have been cleaned at decode and the raw bytes carry whatever
// the provider sent. Provider-specific fields stay reachable through
// Get for callers that want them.
func (r ProviderResponse) MarshalJSON() ([]byte, error) {
	type alias ProviderResponse
	return sonic.Marshal(alias(r))
}
