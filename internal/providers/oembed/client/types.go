package client

import (
	"sync"
	"time"

	"github.com/ernestbuffington/embedkit/internal/infrastructure/resilience"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

// Client wraps resty with rate limiting and per-host circuit breakers.
type Client struct {
	Resty    *resty.Client
	Limiter  *rate.Limiter
	Breakers *resilience.Group
	Mu       sync.RWMutex
}

// New creates a client tuned for third-party provider endpoints.
func New() *Client {
	// The pooled transport comes from retryablehttp; retry scheduling is resty's.
	retryClient := retryablehttp.NewClient()
	retryClient.Logger = nil

	restyClient := resty.New()
	restyClient.
		SetTimeout(30*time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1*time.Second).
		SetRetryMaxWaitTime(30*time.Second).
		SetHeader("User-Agent", "EmbedKit-HTTP/1.0")
	restyClient.SetTransport(retryClient.HTTPClient.Transport)

	breakers := resilience.NewGroup(resilience.Settings{
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: resilience.DefaultTrip,
	})

	return &Client{
		Resty:    restyClient,
		Limiter:  rate.NewLimiter(rate.Inf, 0), // Unlimited by default
		Breakers: breakers,
	}
}

// SetHeader adds a default header sent with every request.
func (c *Client) SetHeader(key, value string) {
	c.Mu.Lock()
	defer c.Mu.Unlock()
	c.Resty.SetHeader(key, value)
}

// RemoveHeader removes a default header.
func (c *Client) RemoveHeader(key string) {
	c.Mu.Lock()
	defer c.Mu.Unlock()
	c.Resty.Header.Del(key)
}

// SetTimeout configures the per-request timeout.
func (c *Client) SetTimeout(duration time.Duration) {
	c.Mu.Lock()
	defer c.Mu.Unlock()
	c.Resty.SetTimeout(duration)
}

// SetRetry configures retry behavior.
func (c *Client) SetRetry(maxRetries int, minWait, maxWait time.Duration) {
	c.Mu.Lock()
	defer c.Mu.Unlock()
	c.Resty.SetRetryCount(maxRetries).
		SetRetryWaitTime(minWait).
		SetRetryMaxWaitTime(maxWait)
}

// SetRateLimit caps outbound requests per second; rps <= 0 removes the cap.
func (c *Client) SetRateLimit(rps float64) {
	c.Mu.Lock()
	defer c.Mu.Unlock()
	if rps <= 0 {
		c.Limiter = rate.NewLimiter(rate.Inf, 0)
	} else {
		c.Limiter = rate.NewLimiter(rate.Limit(rps), int(rps))
	}
}

// SetBearerAuth attaches a bearer token for providers that require one.
func (c *Client) SetBearerAuth(token string) {
	c.Mu.Lock()
	defer c.Mu.Unlock()
	c.Resty.SetAuthToken(token)
}
