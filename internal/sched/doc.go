// Package sched provides the cooperative run loop that drives a session.
//
// All pipeline state transitions and cache mutations for one session execute
// as tasks on that session's loop, one at a time, in FIFO order. State
// confined to the loop needs no locking: there is no preemption between the
// check-then-act sequences of the request lifecycle.
//
// Turn semantics:
//   - A task posted while another task is running never executes within the
//     running task's turn. Deferred delivery ("on the next turn, never
//     synchronously") is implemented by posting.
//   - External goroutines (HTTP handlers, WebSocket readers, transport
//     completions) enter the loop via Post or Call.
//
// Recurring work (the frame resize poll) is registered with Every under an
// owner token and discarded wholesale by DropOwner when the owner goes away.
package sched
