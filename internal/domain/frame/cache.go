package frame

import (
	"sync"

	"github.com/ernestbuffington/embedkit/internal/dom"
	"github.com/ernestbuffington/embedkit/internal/shared/id"
)

// Capture is a detached copy of a frame's rendered content, keyed by
// the resource URL it was rendered for. FrameID is the back-reference
// the liveness check runs against.
type Capture struct {
	URL     string
	FrameID id.FrameID
	Nodes   []*dom.Element
	Height  int
}

// Liveness answers whether a capture's originating frame is still
// attached. *Registry satisfies it.
type Liveness interface {
	IsAttached(id.FrameID) bool
}

// DefaultMaxPerURL bounds each per-URL capture list. Without a cap,
// repeated create/destroy cycles that never reuse a capture grow the
// list forever.
const DefaultMaxPerURL = 8

// ContentCache maps resource URLs to captured subtrees from torn-down
// frames. Push appends; PopDetached returns the first capture whose
// originating frame is verified detached. Lists are ordered oldest
// first.
type ContentCache struct {
	mu        sync.Mutex
	entries   map[string][]*Capture
	live      Liveness
	maxPerURL int
}

// NewContentCache creates a cache using live for liveness checks.
// maxPerURL <= 0 selects the default cap.
func NewContentCache(live Liveness, maxPerURL int) *ContentCache {
	if maxPerURL <= 0 {
		maxPerURL = DefaultMaxPerURL
	}
	return &ContentCache{
		entries:   make(map[string][]*Capture),
		live:      live,
		maxPerURL: maxPerURL,
	}
}

// Push appends a capture to the per-URL list. At the cap, the oldest
// already-detached entry is evicted first; when every listed capture is
// still attached, the oldest entry goes regardless.
func (c *ContentCache) Push(capture *Capture) {
	if capture == nil || capture.URL == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	list := c.entries[capture.URL]
	if len(list) >= c.maxPerURL {
		evict := 0
		for i, entry := range list {
			if !c.live.IsAttached(entry.FrameID) {
				evict = i
				break
			}
		}
		list = append(list[:evict], list[evict+1:]...)
	}
	c.entries[capture.URL] = append(list, capture)
}

// PopDetached removes and returns the first capture for the URL whose
// originating frame is no longer attached. Captures failing the check
// stay listed; they may become eligible later. Returns nil when nothing
// qualifies.
func (c *ContentCache) PopDetached(url string) *Capture {
	c.mu.Lock()
	defer c.mu.Unlock()

	list := c.entries[url]
	for i, capture := range list {
		if c.live.IsAttached(capture.FrameID) {
			continue
		}
		list = append(list[:i], list[i+1:]...)
		if len(list) == 0 {
			delete(c.entries, url)
		} else {
			c.entries[url] = list
		}
		return capture
	}
	return nil
}

// Held returns the total number of captures across all URLs.
func (c *ContentCache) Held() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, list := range c.entries {
		n += len(list)
	}
	return n
}

// HeldFor returns the number of captures listed for a URL.
func (c *ContentCache) HeldFor(url string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries[url])
}
