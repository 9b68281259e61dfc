package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ernestbuffington/embedkit/internal/infrastructure/resilience"
	"github.com/ernestbuffington/embedkit/internal/shared/utils"
	"github.com/go-resty/resty/v2"
)

// Request creates a request gated by the host's circuit and the shared
// rate limit.
func (c *Client) Request(ctx context.Context, host string) (*resty.Request, error) {
	if c.Breakers.Get(host).State() == resilience.StateOpen {
		return nil, resilience.ErrCircuitOpen
	}

	if err := c.Limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	c.Mu.RLock()
	defer c.Mu.RUnlock()
	return c.Resty.R().SetContext(ctx), nil
}

// ExecuteWithBreaker runs fn and records its outcome against the named
// host's circuit.
func (c *Client) ExecuteWithBreaker(host string, fn func() (*resty.Response, error)) (*resty.Response, error) {
	result, err := c.Breakers.Get(host).Execute(func() (interface{}, error) {
		return fn()
	})

	if err == resilience.ErrCircuitOpen {
		return nil, fmt.Errorf("%s unavailable: circuit breaker open", host)
	}

	if err != nil {
		return nil, err
	}

	return result.(*resty.Response), nil
}

// Fetch performs a GET and returns the response body. Transport errors
// and 5xx answers count against the host's circuit; a 4xx is the
// provider answering and does not.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	host := parsed.Hostname()
	if host == "" {
		return nil, fmt.Errorf("url %q has no host", rawURL)
	}

	req, err := c.Request(ctx, host)
	if err != nil {
		return nil, err
	}

	resp, err := c.ExecuteWithBreaker(host, func() (*resty.Response, error) {
		resp, err := req.Get(rawURL)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode() >= http.StatusInternalServerError {
			return nil, fmt.Errorf("%s: %s", host, resp.Status())
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}

	if resp.IsError() {
		return nil, fmt.Errorf("%s: %s", host, resp.Status())
	}
	if len(resp.Body()) > utils.MaxPayloadSize {
		return nil, fmt.Errorf("%s: response exceeds %d bytes", host, utils.MaxPayloadSize)
	}
	return resp.Body(), nil
}

// BreakerState returns the circuit state for a host.
func (c *Client) BreakerState(host string) resilience.State {
	return c.Breakers.Get(host).State()
}

// BreakerCounts returns circuit statistics for a host.
func (c *Client) BreakerCounts(host string) resilience.Counts {
	return c.Breakers.Get(host).Counts()
}
