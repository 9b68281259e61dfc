package preview

import (
	"bytes"
	"context"
	"fmt"
	"net/url"

	"github.com/antchfx/htmlquery"

	"github.com/ernestbuffington/embedkit/internal/shared/types"
)

// DiscoverEndpoint finds an advertised oEmbed endpoint in page markup.
// Pages opt in with <link rel="alternate" type="application/json+oembed">.
// Returns the absolute endpoint URL, or "" when the page has none.
func DiscoverEndpoint(data []byte, base *url.URL) string {
	doc, err := htmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return ""
	}
	node := htmlquery.FindOne(doc, "//link[@rel='alternate' and contains(@type,'json+oembed')]")
	if node == nil {
		return ""
	}
	return resolveRef(base, htmlquery.SelectAttr(node, "href"))
}

// fetchDiscovered calls a discovered oEmbed endpoint and decodes its answer.
func (s *Strategy) fetchDiscovered(ctx context.Context, endpoint string) (*types.ProviderResponse, error) {
	body, err := s.client.Fetch(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	resp, err := types.DecodeResponse(body)
	if err != nil {
		return nil, fmt.Errorf("discovered endpoint %s: %w", endpoint, err)
	}
	return &resp, nil
}
