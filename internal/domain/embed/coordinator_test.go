package embed

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ernestbuffington/embedkit/internal/domain/frame"
	"github.com/ernestbuffington/embedkit/internal/domain/progress"
	"github.com/ernestbuffington/embedkit/internal/domain/registry"
	"github.com/ernestbuffington/embedkit/internal/providers/oembed"
	"github.com/ernestbuffington/embedkit/internal/sched"
	"github.com/ernestbuffington/embedkit/internal/shared/types"
)

// fakeStrategy hands exchanges back to the test for manual resolution.
type fakeStrategy struct {
	mu        sync.Mutex
	exchanges []*oembed.Exchange
	respond   *types.ProviderResponse
	failAll   bool
}

func (s *fakeStrategy) Name() string { return "fake" }

func (s *fakeStrategy) Match(req *oembed.Request) bool { return true }

func (s *fakeStrategy) Send(ctx context.Context, req *oembed.Request, post oembed.Poster) (*oembed.Exchange, error) {
	exchange, _ := oembed.NewExchange(ctx, post, req)
	s.mu.Lock()
	s.exchanges = append(s.exchanges, exchange)
	respond := s.respond
	failAll := s.failAll
	s.mu.Unlock()

	if failAll {
		exchange.Fail(context.Canceled)
	} else if respond != nil {
		exchange.Succeed(respond)
	}
	return exchange, nil
}

type testRig struct {
	loop        *sched.Loop
	definitions *registry.Manager
	consumers   *Manager
	coordinator *Coordinator
	strategy    *fakeStrategy
	aggregator  *progress.Aggregator
}

func newRig(t *testing.T, notifier progress.Notifier) *testRig {
	t.Helper()

	loop := sched.New()
	loop.Start()
	t.Cleanup(loop.Stop)

	definitions := registry.NewManager()
	if err := definitions.Register(&registry.Definition{
		Name:     "video-host",
		Endpoint: "https://vid.example/oembed?url={url}&callback={callback}",
	}); err != nil {
		t.Fatal(err)
	}

	frames := frame.NewRegistry()
	contentCache := frame.NewContentCache(frames, 0)
	consumers := NewManager(loop, frames, contentCache, nil, frame.Options{})

	strategy := &fakeStrategy{}
	aggregator := progress.NewAggregator(notifier)

	coordinator := NewCoordinator(CoordinatorDeps{
		Loop:        loop,
		Definitions: definitions,
		Consumers:   consumers,
		Transport:   oembed.NewTransport(loop, strategy),
		Aggregator:  aggregator,
	})

	return &testRig{
		loop:        loop,
		definitions: definitions,
		consumers:   consumers,
		coordinator: coordinator,
		strategy:    strategy,
		aggregator:  aggregator,
	}
}

func videoResponse(t *testing.T) *types.ProviderResponse {
	t.Helper()
	resp, err := types.DecodeResponse([]byte(
		`{"type":"video","html":"<iframe src=\"//vid.example/embed/1\"></iframe>","title":"clip"}`))
	if err != nil {
		t.Fatal(err)
	}
	return &resp
}

func waitFor(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func TestLoadSuccessInstallsContent(t *testing.T) {
	rig := newRig(t, nil)
	rig.strategy.respond = videoResponse(t)

	var c *Consumer
	done := make(chan struct{})
	var result Result

	rig.loop.Call(func() {
		c, _ = rig.consumers.Spawn("video-host", "https://vid.example/1")
		rig.coordinator.Load(c.ID, "https://vid.example/1", Options{
			Callback: func(r Result) {
				result = r
				close(done)
			},
			NoNotifications: true,
		})
	})
	waitFor(t, done, "success callback")

	if result.Source != SourceProvider {
		t.Errorf("source = %q, want %q", result.Source, SourceProvider)
	}
	if result.Response.Type != types.ResponseVideo {
		t.Errorf("response type = %q", result.Response.Type)
	}

	// Response cached for the definition.
	cached, hit := rig.coordinator.Responses("video-host").Get("https://vid.example/1")
	if !hit {
		t.Fatal("response not cached after success")
	}
	if cached.Title != "clip" {
		t.Errorf("cached title = %q", cached.Title)
	}

	// Content installed with the focus-safety rewrite.
	rig.loop.Call(func() {
		iframes := c.Frame().Document().Body.FindByTag("iframe")
		if len(iframes) != 1 {
			t.Errorf("iframes installed = %d", len(iframes))
			return
		}
		if iframes[0].Attr("tabindex") != "-1" {
			t.Error("installed iframe must be non-focusable")
		}
	})
}

func TestCacheHitIsAsynchronous(t *testing.T) {
	rig := newRig(t, nil)
	rig.strategy.respond = videoResponse(t)

	var c *Consumer
	first := make(chan struct{})
	rig.loop.Call(func() {
		c, _ = rig.consumers.Spawn("video-host", "https://vid.example/1")
		rig.coordinator.Load(c.ID, "https://vid.example/1", Options{
			Callback:        func(Result) { close(first) },
			NoNotifications: true,
		})
	})
	waitFor(t, first, "first load")

	second := make(chan struct{})
	var firedInSameTurn bool
	var handle *oembed.Exchange
	rig.loop.Call(func() {
		fired := false
		handle = rig.coordinator.Load(c.ID, "https://vid.example/1", Options{
			Callback: func(r Result) {
				fired = true
				if r.Source != SourceCache {
					t.Errorf("source = %q, want cache", r.Source)
				}
				close(second)
			},
			NoNotifications: true,
		})
		firedInSameTurn = fired
	})

	if firedInSameTurn {
		t.Fatal("cache-hit callback fired within the calling turn")
	}
	if handle != nil {
		t.Fatal("cache-hit path must return a nil handle")
	}
	waitFor(t, second, "cached load")

	// Only the first load reached the transport.
	rig.strategy.mu.Lock()
	sent := len(rig.strategy.exchanges)
	rig.strategy.mu.Unlock()
	if sent != 1 {
		t.Fatalf("exchanges sent = %d, want 1", sent)
	}
}

func TestCancelAfterSuccessIsNoop(t *testing.T) {
	rig := newRig(t, nil)
	rig.strategy.respond = videoResponse(t)

	var handle *oembed.Exchange
	done := make(chan struct{})
	errored := make(chan struct{}, 1)

	rig.loop.Call(func() {
		c, _ := rig.consumers.Spawn("video-host", "https://vid.example/2")
		handle = rig.coordinator.Load(c.ID, "https://vid.example/2", Options{
			Callback:        func(Result) { close(done) },
			ErrorCallback:   func(*types.EmbedError) { errored <- struct{}{} },
			NoNotifications: true,
		})
	})
	waitFor(t, done, "success callback")

	if handle == nil {
		t.Fatal("miss path must return a cancelable handle")
	}
	handle.Cancel()
	handle.Cancel()

	// Give a canceled-too-late error a chance to (wrongly) arrive.
	rig.loop.Call(func() {})
	select {
	case <-errored:
		t.Fatal("cancel after success invoked the error callback")
	default:
	}
}

func TestErrorPathSurfacesFetchFailed(t *testing.T) {
	rig := newRig(t, nil)
	rig.strategy.failAll = true

	done := make(chan struct{})
	var got *types.EmbedError
	rig.loop.Call(func() {
		c, _ := rig.consumers.Spawn("video-host", "https://vid.example/3")
		rig.coordinator.Load(c.ID, "https://vid.example/3", Options{
			Callback:      func(Result) { t.Error("unexpected success") },
			ErrorCallback: func(e *types.EmbedError) { got = e; close(done) },
		})
	})
	waitFor(t, done, "error callback")

	if got.Kind != types.ErrFetchFailed {
		t.Errorf("kind = %q, want fetch-failed", got.Kind)
	}
}

func TestUnsupportedResponseKind(t *testing.T) {
	rig := newRig(t, nil)
	resp, err := types.DecodeResponse([]byte(`{"type":"other","title":"?"}`))
	if err != nil {
		t.Fatal(err)
	}
	rig.strategy.respond = &resp

	done := make(chan struct{})
	var got *types.EmbedError
	rig.loop.Call(func() {
		c, _ := rig.consumers.Spawn("video-host", "https://vid.example/4")
		rig.coordinator.Load(c.ID, "https://vid.example/4", Options{
			ErrorCallback:   func(e *types.EmbedError) { got = e; close(done) },
			NoNotifications: true,
		})
	})
	waitFor(t, done, "error callback")

	if got.Kind != types.ErrUnsupportedURL {
		t.Errorf("kind = %q, want unsupported-url", got.Kind)
	}
	// Unusable responses are never cached.
	if _, hit := rig.coordinator.Responses("video-host").Get("https://vid.example/4"); hit {
		t.Error("unsupported response must not be cached")
	}
}

type finishNotifier struct {
	mu       sync.Mutex
	finished []int
	done     chan struct{}
}

func (n *finishNotifier) Update(done, failed, total int) {}

func (n *finishNotifier) Finished(failed int) {
	n.mu.Lock()
	n.finished = append(n.finished, failed)
	n.mu.Unlock()
	close(n.done)
}

func TestThreeConcurrentLoadsOneAggregation(t *testing.T) {
	notifier := &finishNotifier{done: make(chan struct{})}
	rig := newRig(t, notifier)
	rig.strategy.respond = videoResponse(t)

	rig.loop.Call(func() {
		for _, url := range []string{
			"https://vid.example/a",
			"https://vid.example/b",
			"https://vid.example/c",
		} {
			c, _ := rig.consumers.Spawn("video-host", url)
			rig.coordinator.Load(c.ID, url, Options{})
		}
	})

	waitFor(t, notifier.done, "aggregator finish")

	if rig.aggregator.Started() != 1 {
		t.Errorf("aggregations started = %d, want 1", rig.aggregator.Started())
	}
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	if len(notifier.finished) != 1 {
		t.Errorf("finished fired %d times, want 1", len(notifier.finished))
	}
}

func TestResponseAfterDestroyResolvesTask(t *testing.T) {
	notifier := &finishNotifier{done: make(chan struct{})}
	rig := newRig(t, notifier)
	// Strategy holds the exchange; the test resolves it after destroy.

	var c *Consumer
	rig.loop.Call(func() {
		c, _ = rig.consumers.Spawn("video-host", "https://vid.example/5")
		rig.coordinator.Load(c.ID, "https://vid.example/5", Options{
			Callback:      func(Result) { t.Error("destroyed consumer must not get a callback") },
			ErrorCallback: func(*types.EmbedError) { t.Error("widget-invalid is never surfaced") },
		})
	})

	rig.loop.Call(func() {
		rig.consumers.Destroy(c.ID)
	})

	rig.strategy.mu.Lock()
	exchange := rig.strategy.exchanges[0]
	rig.strategy.mu.Unlock()
	exchange.Succeed(videoResponse(t))

	// The progress task must still resolve; otherwise the aggregator
	// is stuck forever.
	waitFor(t, notifier.done, "aggregator finish after widget teardown")
}
