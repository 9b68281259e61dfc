package oembed

import (
	"sync"

	"github.com/ernestbuffington/embedkit/internal/shared/id"
)

// Handler receives the payload captured from a callback invocation.
type Handler func(payload []byte)

// CallbackRegistry owns the callback identifiers of in-flight
// exchanges. One registry serves the whole process; identifiers are
// never reused.
type CallbackRegistry struct {
	mu       sync.Mutex
	handlers map[id.CallbackID]Handler
}

// NewCallbackRegistry creates an empty registry.
func NewCallbackRegistry() *CallbackRegistry {
	return &CallbackRegistry{
		handlers: make(map[id.CallbackID]Handler),
	}
}

// Allocate registers fn under a fresh identifier and returns it. The
// identifier is a valid script identifier, so providers can address it
// as a function name.
func (r *CallbackRegistry) Allocate(fn Handler) id.CallbackID {
	cb := id.NewCallbackID()

	r.mu.Lock()
	r.handlers[cb] = fn
	r.mu.Unlock()

	return cb
}

// Invoke runs the handler registered under cb and reports whether one
// was found. Unknown identifiers are ignored; a released exchange's
// payload goes nowhere.
func (r *CallbackRegistry) Invoke(cb id.CallbackID, payload []byte) bool {
	r.mu.Lock()
	fn, ok := r.handlers[cb]
	r.mu.Unlock()

	if !ok {
		return false
	}
	fn(payload)
	return true
}

// Release deregisters cb. Releasing an unknown or already-released
// identifier is a no-op.
func (r *CallbackRegistry) Release(cb id.CallbackID) {
	r.mu.Lock()
	delete(r.handlers, cb)
	r.mu.Unlock()
}

// Pending reports how many callbacks are currently registered.
func (r *CallbackRegistry) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handlers)
}
