// Package embed implements the acquisition pipeline around consumer
// instances: the request coordinator that resolves a resource URL into
// renderable content, and the consumer manager that owns instance
// lifecycle including frame capture on destroy and restore on spawn.
//
// The coordinator runs its state machine on the session loop. A load
// checks the response cache, dispatches a provider exchange on miss,
// converts the arriving response to content, installs it into the
// consumer's frame, and resolves the progress task. Terminal callbacks
// never fire in the turn that started the load, cache hit or not, so
// caller control flow stays uniform.
package embed
