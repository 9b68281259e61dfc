package embed

import (
	"fmt"
	"sync"
	"time"

	"github.com/ernestbuffington/embedkit/internal/dom"
	"github.com/ernestbuffington/embedkit/internal/domain/frame"
	"github.com/ernestbuffington/embedkit/internal/infrastructure/logging"
	"github.com/ernestbuffington/embedkit/internal/infrastructure/monitoring"
	"github.com/ernestbuffington/embedkit/internal/providers/sandbox"
	"github.com/ernestbuffington/embedkit/internal/sched"
	"github.com/ernestbuffington/embedkit/internal/shared/id"
	"github.com/ernestbuffington/embedkit/internal/shared/utils"
)

// Consumer is one embed widget instance: the object an authoring
// surface materializes for an embedded resource. Destroy and recreate
// cycles (undo/redo) produce distinct consumers for "the same"
// resource; the hash ties them together for snapshot matching.
type Consumer struct {
	ID         id.ConsumerID
	Definition string
	URL        string
	Hash       string
	CreatedAt  time.Time

	alive bool
	frame *frame.Frame
}

// Frame returns the consumer's isolated surface, nil before first
// content installation.
func (c *Consumer) Frame() *frame.Frame {
	return c.frame
}

// Manager owns consumer lifecycle for one session.
type Manager struct {
	mu        sync.RWMutex
	consumers map[id.ConsumerID]*Consumer

	loop         *sched.Loop
	frames       *frame.Registry
	contentCache *frame.ContentCache
	pool         *sandbox.Pool
	frameOpts    frame.Options
	identifier   *utils.EmbedIdentifier
	metrics      *monitoring.Metrics
	log          *logging.Logger
}

// NewManager creates a consumer manager bound to the session's loop,
// frame registry, and content cache.
func NewManager(loop *sched.Loop, frames *frame.Registry, contentCache *frame.ContentCache, pool *sandbox.Pool, frameOpts frame.Options) *Manager {
	if frameOpts.Logger == nil {
		frameOpts.Logger = logging.NewNop()
	}
	return &Manager{
		consumers:    make(map[id.ConsumerID]*Consumer),
		loop:         loop,
		frames:       frames,
		contentCache: contentCache,
		pool:         pool,
		frameOpts:    frameOpts,
		identifier:   utils.NewEmbedIdentifier(nil),
		log:          frameOpts.Logger,
	}
}

// WithMetrics adds metrics tracking to the manager.
func (m *Manager) WithMetrics(metrics *monitoring.Metrics) *Manager {
	m.metrics = metrics
	return m
}

// Spawn creates a consumer instance. When the resource URL has an
// eligible captured subtree from a torn-down predecessor, the new
// consumer's frame restores it before any network activity happens.
// Call from the session loop.
func (m *Manager) Spawn(definition, url string) (*Consumer, error) {
	if definition == "" {
		return nil, fmt.Errorf("definition is required")
	}

	c := &Consumer{
		ID:         id.NewConsumerID(),
		Definition: definition,
		URL:        url,
		Hash:       m.identifier.GenerateHash(definition, url),
		CreatedAt:  time.Now(),
		alive:      true,
	}

	m.mu.Lock()
	m.consumers[c.ID] = c
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.ConsumersLive.Inc()
	}

	if url != "" {
		m.restoreFromCache(c)
	}
	return c, nil
}

// restoreFromCache reuses a previously captured subtree when one is
// eligible. A miss here is silent; the consumer simply starts empty.
func (m *Manager) restoreFromCache(c *Consumer) {
	capture := m.contentCache.PopDetached(c.URL)
	if capture == nil {
		if m.metrics != nil {
			m.metrics.RecordCacheMiss("frame")
		}
		return
	}
	if m.metrics != nil {
		m.metrics.RecordCacheHit("frame")
		m.metrics.CapturesHeld.Dec()
	}

	m.ensureFrame(c).WhenReady(func(f *frame.Frame) {
		f.Restore(capture)
	})
}

// ensureFrame lazily creates the consumer's isolated surface.
func (m *Manager) ensureFrame(c *Consumer) *frame.Frame {
	if c.frame == nil {
		c.frame = frame.New(m.loop, m.frames, m.pool, c.URL, m.frameOpts)
		if m.metrics != nil {
			m.metrics.FramesActive.Inc()
		}
	}
	return c.frame
}

// Install puts converted content into the consumer's frame, creating
// it on first installation. Content lands once the surface signals
// ready, never within the calling turn. A later install overwrites:
// last response wins. Call from the session loop.
func (m *Manager) Install(c *Consumer, content *dom.Fragment) {
	m.ensureFrame(c).WhenReady(func(f *frame.Frame) {
		f.Install(content)
	})
}

// Get retrieves a consumer by ID.
func (m *Manager) Get(cid id.ConsumerID) (*Consumer, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.consumers[cid]
	return c, ok
}

// Alive reports whether the consumer is still registered and live.
// The coordinator's response-arrival check runs through here.
func (m *Manager) Alive(cid id.ConsumerID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.consumers[cid]
	return ok && c.alive
}

// List returns all consumers.
func (m *Manager) List() []*Consumer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Consumer, 0, len(m.consumers))
	for _, c := range m.consumers {
		out = append(out, c)
	}
	return out
}

// Count returns the number of live consumers.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.consumers)
}

// Destroy tears a consumer down. A populated frame is captured into
// the content cache first, keyed by the resource URL, so a successor
// consumer for the same resource can pick the content back up. Call
// from the session loop.
func (m *Manager) Destroy(cid id.ConsumerID) bool {
	m.mu.Lock()
	c, ok := m.consumers[cid]
	if ok {
		c.alive = false
		delete(m.consumers, cid)
	}
	m.mu.Unlock()

	if !ok {
		return false
	}
	if m.metrics != nil {
		m.metrics.ConsumersLive.Dec()
	}

	if c.frame != nil {
		if capture := c.frame.Capture(); capture != nil {
			m.contentCache.Push(capture)
			if m.metrics != nil {
				m.metrics.CapturesHeld.Inc()
			}
		}
		c.frame.Teardown()
		if m.metrics != nil {
			m.metrics.FramesActive.Dec()
		}
	}
	return true
}

// DestroyAll tears down every consumer, capturing populated frames.
func (m *Manager) DestroyAll() {
	for _, c := range m.List() {
		m.Destroy(c.ID)
	}
}
