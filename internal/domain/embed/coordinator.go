package embed

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/ernestbuffington/embedkit/internal/dom"
	"github.com/ernestbuffington/embedkit/internal/domain/cache"
	"github.com/ernestbuffington/embedkit/internal/domain/progress"
	"github.com/ernestbuffington/embedkit/internal/domain/registry"
	"github.com/ernestbuffington/embedkit/internal/infrastructure/logging"
	"github.com/ernestbuffington/embedkit/internal/infrastructure/monitoring"
	"github.com/ernestbuffington/embedkit/internal/providers/convert"
	"github.com/ernestbuffington/embedkit/internal/providers/oembed"
	"github.com/ernestbuffington/embedkit/internal/sched"
	"github.com/ernestbuffington/embedkit/internal/shared/id"
	"github.com/ernestbuffington/embedkit/internal/shared/types"
)

// Source labels where resolved content came from.
const (
	SourceCache    = "cache"
	SourceProvider = "provider"
	SourceCapture  = "capture"
)

// Result carries a successful resolution to the caller.
type Result struct {
	Response types.ProviderResponse
	Content  *dom.Fragment
	Source   string
}

// Options configures one load.
type Options struct {
	// Callback receives the result on a later loop turn
	Callback func(Result)
	// ErrorCallback receives fetch-failed or unsupported-url
	ErrorCallback func(*types.EmbedError)
	// NoNotifications suppresses the progress task and user notices
	NoNotifications bool
}

// Notices is the user-visible notification surface. Severity is
// "error" for failed acquisitions. A nil Notices is a headless session.
type Notices interface {
	Notify(message, severity string)
}

// Coordinator runs the acquisition state machine for one session.
// Load and its continuation closures execute on the session loop;
// check-then-act sequences within one turn need no further discipline.
type Coordinator struct {
	loop        *sched.Loop
	definitions *registry.Manager
	consumers   *Manager
	transport   *oembed.Transport
	conversion  *convert.Chain
	aggregator  *progress.Aggregator
	notices     Notices
	store       *cache.Store
	metrics     *monitoring.Metrics
	log         *logging.Logger

	mu         sync.Mutex
	responses  map[string]*cache.Responses
	transports map[string]*oembed.Transport
	chains     map[string]*convert.Chain
	validators map[string]func(string) bool
}

// CoordinatorDeps wires a coordinator.
type CoordinatorDeps struct {
	Loop        *sched.Loop
	Definitions *registry.Manager
	Consumers   *Manager
	Transport   *oembed.Transport
	Conversion  *convert.Chain
	Aggregator  *progress.Aggregator
	Notices     Notices
	Store       *cache.Store
	Metrics     *monitoring.Metrics
	Logger      *logging.Logger
}

// NewCoordinator creates a coordinator.
func NewCoordinator(deps CoordinatorDeps) *Coordinator {
	if deps.Conversion == nil {
		deps.Conversion = convert.DefaultChain()
	}
	if deps.Logger == nil {
		deps.Logger = logging.NewNop()
	}
	return &Coordinator{
		loop:        deps.Loop,
		definitions: deps.Definitions,
		consumers:   deps.Consumers,
		transport:   deps.Transport,
		conversion:  deps.Conversion,
		aggregator:  deps.Aggregator,
		notices:     deps.Notices,
		store:       deps.Store,
		metrics:     deps.Metrics,
		log:         deps.Logger,
		responses:   make(map[string]*cache.Responses),
		transports:  make(map[string]*oembed.Transport),
		chains:      make(map[string]*convert.Chain),
		validators:  make(map[string]func(string) bool),
	}
}

// OverrideTransport substitutes the transport for one definition.
func (co *Coordinator) OverrideTransport(definition string, t *oembed.Transport) {
	co.mu.Lock()
	co.transports[definition] = t
	co.mu.Unlock()
}

// OverrideConversion substitutes the conversion chain for one
// definition.
func (co *Coordinator) OverrideConversion(definition string, c *convert.Chain) {
	co.mu.Lock()
	co.chains[definition] = c
	co.mu.Unlock()
}

// OverrideValidator substitutes URL pre-validation for one definition.
func (co *Coordinator) OverrideValidator(definition string, fn func(string) bool) {
	co.mu.Lock()
	co.validators[definition] = fn
	co.mu.Unlock()
}

// Responses returns the response cache for a definition, creating it
// on first use. One cache is shared by every consumer of that
// definition; the persistent store, when enabled, warm-loads it here.
func (co *Coordinator) Responses(definition string) *cache.Responses {
	co.mu.Lock()
	defer co.mu.Unlock()

	r, ok := co.responses[definition]
	if !ok {
		r = cache.NewResponses(definition)
		if co.store != nil {
			if err := co.store.Load(definition, func(url string, resp types.ProviderResponse) {
				r.Set(url, resp)
			}); err != nil {
				co.log.Warn("response store warm-load failed",
					zap.String("definition", definition),
					zap.Error(err))
			}
		}
		co.responses[definition] = r
	}
	return r
}

// CacheStats reports usage for every response cache touched so far.
func (co *Coordinator) CacheStats() []cache.Stats {
	co.mu.Lock()
	defer co.mu.Unlock()
	out := make([]cache.Stats, 0, len(co.responses))
	for _, r := range co.responses {
		out = append(out, r.Stats())
	}
	return out
}

// ValidateURL is the syntactic pre-flight check for a definition.
// Returns false, never an error; whether to attempt a load anyway is
// the caller's decision.
func (co *Coordinator) ValidateURL(definition, url string) bool {
	co.mu.Lock()
	custom := co.validators[definition]
	co.mu.Unlock()
	if custom != nil {
		return custom(url)
	}

	def, ok := co.definitions.Get(definition)
	if !ok {
		return false
	}
	return def.AcceptsURL(url)
}

// ErrorMessage renders the user-facing message for an error kind.
func (co *Coordinator) ErrorMessage(kind types.ErrorKind, url, suffix string) string {
	return types.ErrorMessage(kind, url, suffix)
}

// Load resolves a resource URL for a consumer. Call from the session
// loop. On a response-cache hit the success path is posted for the
// next turn and Load returns nil: there is nothing in flight to
// cancel, and callers distinguish the two cases by the handle. On a
// miss, the returned exchange cancels the in-flight request.
//
// Load never errors synchronously; every failure arrives through
// opts.ErrorCallback on a later turn.
func (co *Coordinator) Load(consumerID id.ConsumerID, url string, opts Options) *oembed.Exchange {
	c, ok := co.consumers.Get(consumerID)
	if !ok {
		co.postError(url, types.ErrFetchFailed, opts)
		return nil
	}
	definition := c.Definition

	def, ok := co.definitions.Get(definition)
	if !ok {
		co.postError(url, types.ErrFetchFailed, opts)
		return nil
	}

	responses := co.Responses(definition)
	timer := monitoring.NewTimer(co.metrics, definition)

	// CacheCheck. The hit path must not complete synchronously even
	// though no exchange happens; a caller cannot tell a hit from a
	// fast provider by callback timing.
	if resp, hit := responses.Get(url); hit {
		if co.metrics != nil {
			co.metrics.RecordCacheHit("response")
		}
		co.loop.Post(func() {
			co.succeed(consumerID, definition, url, resp, SourceCache, nil, timer, opts)
		})
		return nil
	}
	if co.metrics != nil {
		co.metrics.RecordCacheMiss("response")
	}

	// Dispatch.
	var task *progress.Task
	if !opts.NoNotifications && co.aggregator != nil {
		task = co.aggregator.Acquire()
		if co.metrics != nil {
			co.metrics.ProgressTasks.Inc()
		}
	}

	req := &oembed.Request{
		Definition: definition,
		Endpoint:   def.Endpoint,
		Mode:       def.Mode,
		URL:        url,
		Params:     def.Params(),
		OnSuccess: func(resp *types.ProviderResponse) {
			co.succeed(consumerID, definition, url, *resp, SourceProvider, task, timer, opts)
		},
		OnError: func() {
			co.fail(definition, url, types.ErrFetchFailed, task, timer, opts)
		},
	}

	transport := co.transportFor(definition)
	exchange, err := transport.Dispatch(context.Background(), req)
	if err != nil {
		co.log.Error("dispatch failed",
			zap.String("definition", definition),
			zap.String("url", url),
			zap.Error(err))
		co.loop.Post(func() {
			co.fail(definition, url, types.ErrFetchFailed, task, timer, opts)
		})
		return nil
	}
	return exchange
}

func (co *Coordinator) transportFor(definition string) *oembed.Transport {
	co.mu.Lock()
	defer co.mu.Unlock()
	if t, ok := co.transports[definition]; ok {
		return t
	}
	return co.transport
}

func (co *Coordinator) chainFor(definition string) *convert.Chain {
	co.mu.Lock()
	defer co.mu.Unlock()
	if c, ok := co.chains[definition]; ok {
		return c
	}
	return co.conversion
}

// succeed runs the response-arrival path on the loop: liveness check,
// conversion, cache insert, install, callback, task resolution.
func (co *Coordinator) succeed(consumerID id.ConsumerID, definition, url string, resp types.ProviderResponse, source string, task *progress.Task, timer *monitoring.Timer, opts Options) {
	// The consumer may have been destroyed between dispatch and
	// arrival. Discard silently, but the progress task still resolves;
	// a dead widget must not strand the aggregator.
	if !co.consumers.Alive(consumerID) {
		co.log.Info("response for destroyed consumer discarded",
			zap.String("consumer_id", consumerID.String()),
			zap.String("url", url))
		task.Done()
		co.taskGauge(task)
		timer.Stop(string(types.ErrWidgetInvalid), source)
		return
	}

	content, err := co.chainFor(definition).Convert(&resp)
	if err != nil {
		// Response received but unusable: a conversion failure, not a
		// transport one.
		co.fail(definition, url, types.ErrUnsupportedURL, task, timer, opts)
		return
	}

	responses := co.Responses(definition)
	if responses.Set(url, resp) && co.store != nil {
		if err := co.store.Put(definition, url, resp); err != nil {
			co.log.Warn("response store write failed",
				zap.String("url", url),
				zap.Error(err))
		}
	}

	if c, ok := co.consumers.Get(consumerID); ok {
		co.consumers.Install(c, content)
	}

	if opts.Callback != nil {
		opts.Callback(Result{Response: resp, Content: content, Source: source})
	}
	task.Done()
	co.taskGauge(task)
	timer.Stop("success", source)
}

// fail runs the error-arrival path on the loop.
func (co *Coordinator) fail(definition, url string, kind types.ErrorKind, task *progress.Task, timer *monitoring.Timer, opts Options) {
	task.Cancel()
	co.taskGauge(task)
	timer.Stop(string(kind), SourceProvider)

	if co.metrics != nil && kind == types.ErrFetchFailed {
		co.metrics.RecordTransportFailure(definition)
	}

	if opts.ErrorCallback != nil {
		opts.ErrorCallback(types.NewEmbedError(kind, url))
	}
	if !opts.NoNotifications && co.notices != nil {
		co.notices.Notify(types.ErrorMessage(kind, url, ""), "error")
	}
}

// postError surfaces a pre-dispatch failure asynchronously, keeping the
// no-synchronous-errors contract.
func (co *Coordinator) postError(url string, kind types.ErrorKind, opts Options) {
	co.loop.Post(func() {
		if opts.ErrorCallback != nil {
			opts.ErrorCallback(types.NewEmbedError(kind, url))
		}
		if !opts.NoNotifications && co.notices != nil {
			co.notices.Notify(types.ErrorMessage(kind, url, ""), "error")
		}
	})
}

func (co *Coordinator) taskGauge(task *progress.Task) {
	if task != nil && co.metrics != nil {
		co.metrics.ProgressTasks.Dec()
	}
}
