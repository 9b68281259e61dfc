package oembed

import (
	"context"
	"fmt"

	"github.com/ernestbuffington/embedkit/internal/providers/oembed/client"
	"github.com/ernestbuffington/embedkit/internal/shared/types"
)

// JSONStrategy performs a plain exchange: the endpoint answers with the
// response object directly, no callback indirection.
type JSONStrategy struct {
	client *client.Client
}

// NewJSONStrategy creates the plain-JSON exchange strategy.
func NewJSONStrategy(c *client.Client) *JSONStrategy {
	return &JSONStrategy{client: c}
}

// Name identifies the strategy.
func (s *JSONStrategy) Name() string { return ModeJSON }

// Match accepts requests whose definition asks for the json mode.
func (s *JSONStrategy) Match(req *Request) bool {
	return req.Mode == ModeJSON
}

// Send expands the endpoint template and starts the exchange.
func (s *JSONStrategy) Send(ctx context.Context, req *Request, post Poster) (*Exchange, error) {
	endpoint, err := BuildURL(req.Endpoint, req.URL, "", req.Params)
	if err != nil {
		return nil, err
	}

	exchange, ctx := NewExchange(ctx, post, req)

	go func() {
		body, err := s.client.Fetch(ctx, endpoint)
		if err != nil {
			exchange.Fail(err)
			return
		}
		resp, err := types.DecodeResponse(body)
		if err != nil {
			exchange.Fail(fmt.Errorf("decode provider response: %w", err))
			return
		}
		exchange.Succeed(&resp)
	}()

	return exchange, nil
}
