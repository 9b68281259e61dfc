package session

import (
	"sync"
	"time"

	"github.com/ernestbuffington/embedkit/internal/domain/cache"
	"github.com/ernestbuffington/embedkit/internal/domain/embed"
	"github.com/ernestbuffington/embedkit/internal/domain/frame"
	"github.com/ernestbuffington/embedkit/internal/domain/progress"
	"github.com/ernestbuffington/embedkit/internal/domain/registry"
	"github.com/ernestbuffington/embedkit/internal/infrastructure/logging"
	"github.com/ernestbuffington/embedkit/internal/infrastructure/monitoring"
	"github.com/ernestbuffington/embedkit/internal/providers/oembed"
	"github.com/ernestbuffington/embedkit/internal/providers/sandbox"
	"github.com/ernestbuffington/embedkit/internal/sched"
	"github.com/ernestbuffington/embedkit/internal/shared/id"
)

// Session is one session context: the scope that owns both cache
// levels and every consumer created for one authoring surface.
type Session struct {
	ID        id.SessionID
	CreatedAt time.Time

	Loop         *sched.Loop
	Frames       *frame.Registry
	ContentCache *frame.ContentCache
	Consumers    *embed.Manager
	Aggregator   *progress.Aggregator
	Coordinator  *embed.Coordinator

	notices *noticeRelay
}

// noticeRelay forwards user notices to whatever surface is currently
// bound, so a WebSocket client can attach after the session exists.
type noticeRelay struct {
	mu     sync.Mutex
	target embed.Notices
}

func (r *noticeRelay) Notify(message, severity string) {
	r.mu.Lock()
	target := r.target
	r.mu.Unlock()
	if target != nil {
		target.Notify(message, severity)
	}
}

func (r *noticeRelay) set(target embed.Notices) {
	r.mu.Lock()
	r.target = target
	r.mu.Unlock()
}

// Deps carries the process-wide collaborators sessions share.
type Deps struct {
	Definitions *registry.Manager
	// Strategies is the transport strategy chain, shared across
	// sessions; each session binds it to its own loop.
	Strategies []oembed.Strategy
	Pool       *sandbox.Pool
	Store      *cache.Store
	Metrics    *monitoring.Metrics
	Logger     *logging.Logger

	FrameOpts     frame.Options
	FrameCacheCap int
}

// newSession builds a session context around a fresh loop.
func newSession(deps Deps, notifier progress.Notifier, notices embed.Notices) *Session {
	loop := sched.New()
	loop.Start()

	frames := frame.NewRegistry()
	contentCache := frame.NewContentCache(frames, deps.FrameCacheCap)

	consumers := embed.NewManager(loop, frames, contentCache, deps.Pool, deps.FrameOpts)
	if deps.Metrics != nil {
		consumers = consumers.WithMetrics(deps.Metrics)
	}

	aggregator := progress.NewAggregator(notifier)
	relay := &noticeRelay{target: notices}

	coordinator := embed.NewCoordinator(embed.CoordinatorDeps{
		Loop:        loop,
		Definitions: deps.Definitions,
		Consumers:   consumers,
		Transport:   oembed.NewTransport(loop, deps.Strategies...),
		Aggregator:  aggregator,
		Notices:     relay,
		Store:       deps.Store,
		Metrics:     deps.Metrics,
		Logger:      deps.Logger,
	})

	return &Session{
		ID:           id.NewSessionID(),
		CreatedAt:    time.Now(),
		Loop:         loop,
		Frames:       frames,
		ContentCache: contentCache,
		Consumers:    consumers,
		Aggregator:   aggregator,
		Coordinator:  coordinator,
		notices:      relay,
	}
}

// SetNotifier rebinds the progress display target, typically when a
// WebSocket client attaches to the session.
func (s *Session) SetNotifier(notifier progress.Notifier) {
	s.Aggregator.SetNotifier(notifier)
}

// SetNotices rebinds the user-notice surface.
func (s *Session) SetNotices(notices embed.Notices) {
	s.notices.set(notices)
}

// Close tears the session down: every consumer is destroyed and the
// loop stops, discarding pending work and all resize polls.
func (s *Session) Close() {
	s.Loop.Call(func() {
		s.Consumers.DestroyAll()
	})
	s.Loop.Stop()
}
