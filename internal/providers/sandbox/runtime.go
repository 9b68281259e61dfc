package sandbox

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/dop251/goja"

	"github.com/ernestbuffington/embedkit/internal/dom"
)

// Runtime wraps a goja VM with security controls
type Runtime struct {
	vm     *goja.Runtime
	config Config
	mu     sync.Mutex

	// Console output
	console   []LogEntry
	consoleMu sync.Mutex
}

// New creates a new sandboxed runtime
func New(config Config) (*Runtime, error) {
	vm := goja.New()

	r := &Runtime{
		vm:      vm,
		config:  config,
		console: []LogEntry{},
	}

	if config.MaxMemoryMB > 0 {
		vm.SetMaxCallStackSize(1024)
	}

	if err := r.setupGlobals(); err != nil {
		return nil, err
	}

	return r, nil
}

// Execute runs a script with timeout and resource limits, optionally against
// a frame document
func (r *Runtime) Execute(ctx context.Context, script string, doc *dom.Document) (*Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	result := &Result{
		Console: []LogEntry{},
	}

	r.clearConsole()

	if doc != nil && r.config.EnableDOM {
		if err := r.injectDocument(doc); err != nil {
			return nil, fmt.Errorf("failed to inject document: %w", err)
		}
	}

	val, err := r.runInterruptible(ctx, script)

	result.Duration = time.Since(start)
	result.Console = r.snapshotConsole()

	if err != nil {
		result.Error = err
		return result, err
	}

	result.Value = exportValue(val)
	return result, nil
}

// ExecuteCallback runs a script with a single named callback bound as a
// global function and captures its first invocation's argument. The binding
// is removed before returning, whether or not the script called it.
func (r *Runtime) ExecuteCallback(ctx context.Context, script, callbackName string) (*CallbackResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	result := &CallbackResult{}

	r.clearConsole()

	var payload interface{}
	r.vm.Set(callbackName, func(call goja.FunctionCall) goja.Value {
		// First invocation wins; the exchange carries one response.
		if !result.Invoked {
			result.Invoked = true
			if len(call.Arguments) > 0 {
				payload = call.Arguments[0].Export()
			}
		}
		return goja.Undefined()
	})

	_, err := r.runInterruptible(ctx, script)

	r.vm.Set(callbackName, goja.Undefined())

	result.Duration = time.Since(start)
	result.Console = r.snapshotConsole()

	if err != nil {
		return result, err
	}

	if result.Invoked && payload != nil {
		data, merr := sonic.Marshal(payload)
		if merr != nil {
			return result, fmt.Errorf("serialize callback payload: %w", merr)
		}
		result.Payload = data
	}

	return result, nil
}

// runInterruptible executes a script, interrupting the VM on timeout or
// context cancellation. Callers hold r.mu.
func (r *Runtime) runInterruptible(ctx context.Context, script string) (goja.Value, error) {
	timer := time.NewTimer(r.config.Timeout)
	defer timer.Stop()

	done := make(chan struct{})
	go func() {
		select {
		case <-timer.C:
			r.vm.Interrupt("execution timeout exceeded")
		case <-ctx.Done():
			r.vm.Interrupt("context cancelled")
		case <-done:
		}
	}()

	val, err := r.vm.RunString(script)
	close(done)
	r.vm.ClearInterrupt()

	return val, err
}

// setupGlobals configures global objects and security
func (r *Runtime) setupGlobals() error {
	// Remove dangerous globals
	r.vm.Set("require", goja.Undefined())
	r.vm.Set("process", goja.Undefined())
	r.vm.Set("module", goja.Undefined())
	r.vm.Set("exports", goja.Undefined())

	if r.config.EnableConsole {
		console := r.vm.NewObject()
		console.Set("log", r.makeConsoleFunc("log"))
		console.Set("warn", r.makeConsoleFunc("warn"))
		console.Set("error", r.makeConsoleFunc("error"))
		console.Set("info", r.makeConsoleFunc("info"))
		r.vm.Set("console", console)
	}

	// Timers are inert: frame scripts must not outlive their execution turn
	r.vm.Set("setTimeout", func(call goja.FunctionCall) goja.Value {
		return goja.Undefined()
	})
	r.vm.Set("setInterval", func(call goja.FunctionCall) goja.Value {
		return goja.Undefined()
	})

	return nil
}

// makeConsoleFunc creates a console function
func (r *Runtime) makeConsoleFunc(level string) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		var msg string
		for i, arg := range call.Arguments {
			if i > 0 {
				msg += " "
			}
			msg += arg.String()
		}

		r.consoleMu.Lock()
		r.console = append(r.console, LogEntry{
			Level:   level,
			Message: msg,
			Time:    time.Now(),
		})
		r.consoleMu.Unlock()

		return goja.Undefined()
	}
}

func (r *Runtime) clearConsole() {
	r.consoleMu.Lock()
	r.console = []LogEntry{}
	r.consoleMu.Unlock()
}

func (r *Runtime) snapshotConsole() []LogEntry {
	r.consoleMu.Lock()
	defer r.consoleMu.Unlock()
	return append([]LogEntry{}, r.console...)
}

// injectDocument binds a document proxy into the runtime
func (r *Runtime) injectDocument(doc *dom.Document) error {
	document := r.vm.NewObject()

	document.Set("querySelector", r.makeQueryFunc(doc, false))
	document.Set("querySelectorAll", r.makeQueryFunc(doc, true))
	document.Set("getElementById", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return goja.Null()
		}
		el := doc.Root.FindByID(call.Arguments[0].String())
		if el == nil {
			return goja.Null()
		}
		return r.vm.ToValue(r.createElementProxy(el))
	})
	document.Set("getElementsByClassName", r.makeCollectionFunc(func(sel string) []*dom.Element {
		return doc.Root.FindByClass(sel)
	}))
	document.Set("getElementsByTagName", r.makeCollectionFunc(func(sel string) []*dom.Element {
		return doc.Root.FindByTag(sel)
	}))
	document.Set("createElement", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return goja.Null()
		}
		el := dom.NewElement(call.Arguments[0].String())
		doc.Body.AddElement(el)
		return r.vm.ToValue(r.createElementProxy(el))
	})

	r.vm.Set("document", document)
	return nil
}

func (r *Runtime) makeQueryFunc(doc *dom.Document, all bool) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return goja.Null()
		}

		elements := doc.Query(call.Arguments[0].String())
		if len(elements) == 0 {
			if all {
				return r.vm.ToValue([]interface{}{})
			}
			return goja.Null()
		}

		if all {
			proxies := make([]interface{}, 0, len(elements))
			for _, el := range elements {
				proxies = append(proxies, r.createElementProxy(el))
			}
			return r.vm.ToValue(proxies)
		}
		return r.vm.ToValue(r.createElementProxy(elements[0]))
	}
}

func (r *Runtime) makeCollectionFunc(find func(string) []*dom.Element) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return r.vm.ToValue([]interface{}{})
		}
		elements := find(call.Arguments[0].String())
		proxies := make([]interface{}, 0, len(elements))
		for _, el := range elements {
			proxies = append(proxies, r.createElementProxy(el))
		}
		return r.vm.ToValue(proxies)
	}
}

// createElementProxy creates a proxy for a document element
func (r *Runtime) createElementProxy(el *dom.Element) map[string]interface{} {
	return map[string]interface{}{
		"tagName":     el.TagName,
		"id":          el.ID(),
		"className":   el.ClassName(),
		"textContent": el.TextContent,
		"getAttribute": func(name string) string {
			return el.Attr(name)
		},
		"setAttribute": func(name, value string) {
			el.SetAttr(name, value)
		},
		"removeAttribute": func(name string) {
			el.RemoveAttr(name)
		},
		"setText": func(text string) {
			el.TextContent = text
		},
		"appendChild": func(tag string) map[string]interface{} {
			child := dom.NewElement(tag)
			el.AddElement(child)
			return r.createElementProxy(child)
		},
	}
}

// exportValue converts a goja value to a Go value
func exportValue(val goja.Value) interface{} {
	if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		return nil
	}
	return val.Export()
}

// Reset clears the runtime state
func (r *Runtime) Reset() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.vm = goja.New()
	r.console = []LogEntry{}
	return r.setupGlobals()
}

// Close releases resources
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.vm = nil
	r.console = nil
	return nil
}
