package oembed

import (
	"context"
	"errors"
	"sync"

	"github.com/ernestbuffington/embedkit/internal/shared/id"
	"github.com/ernestbuffington/embedkit/internal/shared/types"
)

// ErrNoStrategy is returned when no strategy in the chain matches a request.
var ErrNoStrategy = errors.New("no transport strategy matches")

// Poster schedules a task for a later scheduler turn. *sched.Loop
// satisfies it.
type Poster interface {
	Post(task func()) bool
}

// Request describes one exchange against a provider endpoint.
type Request struct {
	// Definition is the provider definition name, for diagnostics
	Definition string
	// Endpoint is the templated endpoint URL
	Endpoint string
	// Mode selects the exchange strategy; empty means default order
	Mode string
	// URL is the resource being resolved
	URL string
	// Params fills extra template placeholders such as {maxwidth}
	Params map[string]string

	// OnSuccess receives the decoded response on a later scheduler turn
	OnSuccess func(*types.ProviderResponse)
	// OnError signals a failed exchange; it carries no payload
	OnError func()
}

// Strategy performs one kind of provider exchange. Match reports
// whether the strategy can serve the request; Send starts the exchange.
type Strategy interface {
	Name() string
	Match(req *Request) bool
	Send(ctx context.Context, req *Request, post Poster) (*Exchange, error)
}

// Transport dispatches requests through an ordered strategy chain.
// One transport serves one scheduler loop; strategies are shared.
type Transport struct {
	post       Poster
	strategies []Strategy
}

// NewTransport creates a transport that posts completions to post and
// tries strategies in the given order.
func NewTransport(post Poster, strategies ...Strategy) *Transport {
	return &Transport{
		post:       post,
		strategies: strategies,
	}
}

// Dispatch hands the request to the first matching strategy and returns
// its exchange handle. ErrNoStrategy means the definition's mode has no
// strategy in this transport.
func (t *Transport) Dispatch(ctx context.Context, req *Request) (*Exchange, error) {
	for _, s := range t.strategies {
		if s.Match(req) {
			return s.Send(ctx, req, t.post)
		}
	}
	return nil, ErrNoStrategy
}

// Strategies lists the names of the configured strategies in order.
func (t *Transport) Strategies() []string {
	names := make([]string, len(t.strategies))
	for i, s := range t.strategies {
		names[i] = s.Name()
	}
	return names
}

// Exchange is a single in-flight provider exchange. Exactly one of the
// request's callbacks fires, on a scheduler turn after Send returned,
// unless Cancel wins first.
type Exchange struct {
	registry *CallbackRegistry
	callback id.CallbackID
	detach   context.CancelFunc
	post     Poster

	onSuccess func(*types.ProviderResponse)
	onError   func()

	mu        sync.Mutex
	completed bool
	canceled  bool
	err       error
}

func newExchange(registry *CallbackRegistry, post Poster, req *Request) *Exchange {
	return &Exchange{
		registry:  registry,
		post:      post,
		onSuccess: req.OnSuccess,
		onError:   req.OnError,
	}
}

// NewExchange creates an exchange for a strategy implementation and
// returns the context the strategy must use for its network work;
// Cancel detaches that context. The strategy resolves the exchange
// with Succeed or Fail, from any goroutine.
func NewExchange(ctx context.Context, post Poster, req *Request) (*Exchange, context.Context) {
	e := newExchange(nil, post, req)
	ctx, e.detach = context.WithCancel(ctx)
	return e, ctx
}

// Cancel stops a pending exchange: the callback identifier is released,
// the underlying request is detached, and neither callback fires
// afterwards. Safe to call at any time; after completion or a previous
// cancel it is a no-op. Safe on a nil exchange, which is what the
// cache-hit path hands back.
func (e *Exchange) Cancel() {
	if e == nil {
		return
	}

	e.mu.Lock()
	if e.canceled {
		e.mu.Unlock()
		return
	}
	e.canceled = true
	alreadyCompleted := e.completed
	e.mu.Unlock()

	if !alreadyCompleted {
		e.cleanup()
	}
}

// Err returns the transport-level error of a failed exchange, for
// diagnostics. The error callback itself carries no payload.
func (e *Exchange) Err() error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

// Done reports whether the exchange reached a terminal state.
func (e *Exchange) Done() bool {
	if e == nil {
		return true
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.completed || e.canceled
}

// Succeed records the response and schedules the success callback.
// First terminal event wins; later ones are ignored.
func (e *Exchange) Succeed(resp *types.ProviderResponse) {
	if !e.complete(nil) {
		return
	}
	e.deliver(func() {
		if e.onSuccess != nil {
			e.onSuccess(resp)
		}
	})
}

// Fail records err and schedules the error callback, which carries no
// payload; err stays available through Err.
func (e *Exchange) Fail(err error) {
	if !e.complete(err) {
		return
	}
	e.deliver(func() {
		if e.onError != nil {
			e.onError()
		}
	})
}

// complete claims the terminal slot. It reports false when the exchange
// already completed or was canceled.
func (e *Exchange) complete(err error) bool {
	e.mu.Lock()
	if e.completed || e.canceled {
		e.mu.Unlock()
		return false
	}
	e.completed = true
	e.err = err
	e.mu.Unlock()

	e.cleanup()
	return true
}

// deliver posts fn for a later turn. A cancel that lands before the
// turn runs suppresses the delivery, so canceled exchanges never invoke
// their callbacks even when the response already arrived.
func (e *Exchange) deliver(fn func()) {
	e.post.Post(func() {
		e.mu.Lock()
		suppressed := e.canceled
		e.mu.Unlock()
		if suppressed {
			return
		}
		fn()
	})
}

// cleanup releases the callback identifier and detaches the request.
// Both operations are idempotent, and cleanup runs at most once from
// whichever terminal event claims the exchange.
func (e *Exchange) cleanup() {
	if e.registry != nil && e.callback != "" {
		e.registry.Release(e.callback)
	}
	if e.detach != nil {
		e.detach()
	}
}
