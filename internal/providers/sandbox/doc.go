/*
Package sandbox provides isolated script execution for the embed pipeline.

# Overview

Two pipeline paths execute third-party script through this package, both in
isolated goja runtimes:

 1. Transport response evaluation: a provider answers a content request with
    a script body that invokes a named callback with the response object.
    ExecuteCallback binds exactly that one callback, runs the body, and
    captures the invocation payload.
 2. Frame content scripts: inline scripts carried by embeddable markup run
    against the frame's own document after installation and after restore,
    never against the authoring surface.

Each runtime has:

  - CPU limits (execution timeout, interrupt on context cancellation)
  - API restrictions (no module system, no process, inert timers)
  - A document proxy scoped to one frame's detached document

# Security Model

Sandboxed code cannot:
  - Access filesystem or network
  - Execute native code or spawn processes
  - Reach any document other than the frame's own

# Usage Example

	pool, _ := sandbox.NewPool(sandbox.DefaultConfig(), 4)

	res, err := pool.ExecuteCallback(ctx, body, "cb_01J...")
	if err == nil && res.Invoked {
	    payload := res.Payload
	}
*/
package sandbox
