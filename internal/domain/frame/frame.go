package frame

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/ernestbuffington/embedkit/internal/dom"
	"github.com/ernestbuffington/embedkit/internal/infrastructure/logging"
	"github.com/ernestbuffington/embedkit/internal/providers/sandbox"
	"github.com/ernestbuffington/embedkit/internal/sched"
	"github.com/ernestbuffington/embedkit/internal/shared/id"
)

// State is the frame lifecycle position.
type State string

const (
	// StateLoading means the surface exists but has not signaled ready
	StateLoading State = "loading"
	// StatePopulated means the surface signaled ready with content
	StatePopulated State = "populated"
)

// resetStyle is the layout-reset rule injected into every frame so
// provider markup starts from a known box model.
const resetStyle = "body { margin: 0; padding: 0; overflow: hidden; }"

// DefaultResizeInterval is the content-height poll period.
const DefaultResizeInterval = 250 * time.Millisecond

// Frame is one isolated rendering surface, exclusively owned by one
// consumer. All fields are confined to the session loop; readiness and
// the resize poll arrive as loop tasks, so no locking is needed.
type Frame struct {
	ID  id.FrameID
	URL string

	loop     *sched.Loop
	registry *Registry
	pool     *sandbox.Pool
	log      *logging.Logger

	doc    *dom.Document
	state  State
	height int

	resizeInterval time.Duration
	pendingReady   []func(*Frame)
}

// Options configures frame creation.
type Options struct {
	ResizeInterval time.Duration
	Logger         *logging.Logger
}

// New creates a frame for a resource URL, attaches it to the registry,
// and schedules the ready signal for a later loop turn. Creation is
// lazy by convention: consumers call this on first content
// installation, never up front. Call from the session loop.
func New(loop *sched.Loop, registry *Registry, pool *sandbox.Pool, url string, opts Options) *Frame {
	if opts.ResizeInterval <= 0 {
		opts.ResizeInterval = DefaultResizeInterval
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}

	f := &Frame{
		ID:             id.NewFrameID(),
		URL:            url,
		loop:           loop,
		registry:       registry,
		pool:           pool,
		log:            opts.Logger,
		doc:            dom.NewDocument(),
		state:          StateLoading,
		resizeInterval: opts.ResizeInterval,
	}

	style := dom.NewElement("style")
	style.TextContent = resetStyle
	f.doc.Head.AddElement(style)

	registry.Attach(f.ID)

	// The surface's ready signal lands on a later turn; even on
	// platforms where creation is effectively synchronous, callers see
	// a uniform deferred contract.
	loop.Post(f.markReady)

	return f
}

func (f *Frame) markReady() {
	if f.state != StateLoading {
		return
	}
	f.state = StatePopulated

	pending := f.pendingReady
	f.pendingReady = nil
	for _, fn := range pending {
		fn(f)
	}
}

// WhenReady runs fn once the surface has signaled ready. If it already
// has, fn is posted for the next turn; callers never observe readiness
// synchronously.
func (f *Frame) WhenReady(fn func(*Frame)) {
	if f.state == StatePopulated {
		f.loop.Post(func() { fn(f) })
		return
	}
	f.pendingReady = append(f.pendingReady, fn)
}

// State returns the current lifecycle state.
func (f *Frame) State() State {
	return f.state
}

// Document exposes the frame's document for tests and the sandbox.
func (f *Frame) Document() *dom.Document {
	return f.doc
}

// Height returns the last measured content height.
func (f *Frame) Height() int {
	return f.height
}

// Install replaces the frame's content with the fragment. Script
// elements are stripped first; the first external script reference is
// re-appended after the content, because providers ship embeds whose
// markup renders asynchronously through a companion script. Inline
// script sources run in the frame's sandboxed runtime against the
// frame's own document. A later install overwrites: last response wins.
func (f *Frame) Install(frag *dom.Fragment) {
	if frag == nil {
		return
	}

	content := frag.Clone()
	scripts := content.ExtractScripts()
	src := dom.FirstScriptSrc(scripts)

	f.doc.Body.Clear()
	for _, n := range content.Nodes {
		f.doc.Body.AddElement(n)
	}

	if src != "" {
		loader := dom.NewElement("script")
		loader.SetAttr("src", src)
		f.doc.Body.AddElement(loader)
	}

	f.runScripts(scripts)
	f.startResizeTracking()
}

// Capture deep-copies the body subtree for the content cache, carrying
// the back-reference the liveness check needs. Returns nil when the
// frame holds no content worth keeping.
func (f *Frame) Capture() *Capture {
	if len(f.doc.Body.Children) == 0 {
		return nil
	}
	nodes := make([]*dom.Element, 0, len(f.doc.Body.Children))
	for _, child := range f.doc.Body.Children {
		nodes = append(nodes, child.Clone())
	}
	return &Capture{
		URL:     f.URL,
		FrameID: f.ID,
		Nodes:   nodes,
		Height:  f.height,
	}
}

// Restore replaces the frame's content with a previously captured
// subtree. Script elements are re-materialized in place as fresh nodes
// before their sources run again: scripts moved by plain tree insertion
// do not re-execute on their own, and embeds rely on the script keeping
// its position relative to the content it renders.
func (f *Frame) Restore(capture *Capture) {
	if capture == nil {
		return
	}

	f.doc.Body.Clear()
	for _, n := range capture.Nodes {
		f.doc.Body.AddElement(n)
	}

	var rerun []*dom.Element
	for _, script := range f.doc.Body.FindByTag("script") {
		fresh := dom.NewElement("script")
		for k, v := range script.Attributes {
			fresh.SetAttr(k, v)
		}
		fresh.TextContent = script.TextContent

		script.ReplaceWith(fresh)
		rerun = append(rerun, fresh)
	}
	f.runScripts(rerun)

	f.height = capture.Height
	f.startResizeTracking()
}

// runScripts executes inline script sources inside the sandbox against
// the frame's document. External references only load; there is nothing
// to evaluate locally.
func (f *Frame) runScripts(scripts []*dom.Element) {
	if f.pool == nil {
		return
	}
	for _, script := range scripts {
		if script.Attr("src") != "" || script.TextContent == "" {
			continue
		}
		if _, err := f.pool.Execute(context.Background(), script.TextContent, f.doc); err != nil {
			f.log.Warn("frame script failed",
				zap.String("frame_id", f.ID.String()),
				zap.String("url", f.URL),
				zap.Error(err))
		}
	}
}

// startResizeTracking begins the recurring content-height poll. The
// surface's internal size changes are not observable as events, so an
// interval measure is the only signal. Owned by the frame's ID; torn
// down with the frame through DropOwner, no manual cleanup.
func (f *Frame) startResizeTracking() {
	owner := f.ID.String()
	f.loop.DropOwner(owner)
	f.loop.Every(owner, f.resizeInterval, f.measure)
}

func (f *Frame) measure() {
	h := f.doc.ContentHeight()
	if h == f.height {
		return
	}
	f.height = h
	f.doc.Body.SetAttr("height", strconv.Itoa(h))
}

// Teardown detaches the frame: the resize poll stops with its owner
// token and the registry forgets the frame, making any capture of it
// eligible for reuse. Capturing first is the consumer's job.
func (f *Frame) Teardown() {
	f.loop.DropOwner(f.ID.String())
	f.registry.Detach(f.ID)
}
