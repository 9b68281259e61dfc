package oembed

import (
	"context"
	"errors"
	"fmt"

	"github.com/ernestbuffington/embedkit/internal/providers/oembed/client"
	"github.com/ernestbuffington/embedkit/internal/providers/sandbox"
	"github.com/ernestbuffington/embedkit/internal/shared/id"
	"github.com/ernestbuffington/embedkit/internal/shared/types"
)

// ScriptStrategy performs the script-callback exchange: fetch the
// provider's script body, evaluate it in a pooled sandbox where only
// the allocated callback name is bound, and route the captured payload
// through the registry. Canceling an exchange releases its identifier,
// so a late payload finds no handler and is dropped.
type ScriptStrategy struct {
	client   *client.Client
	pool     *sandbox.Pool
	registry *CallbackRegistry
}

// NewScriptStrategy creates the default exchange strategy.
func NewScriptStrategy(c *client.Client, pool *sandbox.Pool, registry *CallbackRegistry) *ScriptStrategy {
	return &ScriptStrategy{
		client:   c,
		pool:     pool,
		registry: registry,
	}
}

// Name identifies the strategy.
func (s *ScriptStrategy) Name() string { return ModeScriptCallback }

// Match accepts script-callback requests and requests with no mode.
func (s *ScriptStrategy) Match(req *Request) bool {
	return req.Mode == "" || req.Mode == ModeScriptCallback
}

// Send allocates a callback identifier, expands the endpoint template,
// and starts the exchange. The returned handle cancels it.
func (s *ScriptStrategy) Send(ctx context.Context, req *Request, post Poster) (*Exchange, error) {
	exchange := newExchange(s.registry, post, req)

	cb := s.registry.Allocate(func(payload []byte) {
		resp, err := types.DecodeResponse(payload)
		if err != nil {
			exchange.Fail(fmt.Errorf("decode provider response: %w", err))
			return
		}
		exchange.Succeed(&resp)
	})
	exchange.callback = cb

	endpoint, err := BuildURL(req.Endpoint, req.URL, cb.String(), req.Params)
	if err != nil {
		s.registry.Release(cb)
		return nil, err
	}

	ctx, detach := context.WithCancel(ctx)
	exchange.detach = detach

	go s.run(ctx, exchange, endpoint, cb)
	return exchange, nil
}

func (s *ScriptStrategy) run(ctx context.Context, exchange *Exchange, endpoint string, cb id.CallbackID) {
	script, err := s.client.Fetch(ctx, endpoint)
	if err != nil {
		exchange.Fail(err)
		return
	}

	result, err := s.pool.ExecuteCallback(ctx, string(script), cb.String())
	if err != nil {
		exchange.Fail(fmt.Errorf("evaluate provider script: %w", err))
		return
	}
	if !result.Invoked {
		exchange.Fail(errors.New("provider script never invoked the callback"))
		return
	}

	// Route the payload by identifier. A canceled exchange has already
	// released it, so the invocation goes nowhere.
	s.registry.Invoke(cb, result.Payload)
}
