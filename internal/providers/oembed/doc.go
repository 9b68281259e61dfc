/*
Package oembed performs provider exchanges: one resource URL in, one
provider response out.

# Overview

A provider definition names a templated endpoint. The transport expands
the template, performs the network exchange through a strategy matched
to the definition's mode, and delivers the decoded response. Delivery is
never synchronous: completion is posted onto the caller's scheduler loop
so callers observe the same control flow whether the answer came from
the network in a millisecond or a minute.

# Strategies

  - script-callback: the endpoint answers with a script body that invokes
    a callback named by a freshly allocated identifier. The script runs
    in a pooled sandbox where only that callback is bound; its single
    argument becomes the response.
  - json: the endpoint answers with the response object directly.

Strategies are tried in order; each may decline a request.

# Cancellation

Exchange.Cancel is safe at any time. Whichever of success, error, or
cancel happens first releases the callback identifier and detaches the
underlying request; later calls are no-ops, and once canceled neither
callback fires.

# Usage

	transport := oembed.NewTransport(loop,
		oembed.NewScriptStrategy(httpClient, pool, registry),
		oembed.NewJSONStrategy(httpClient),
	)

	exchange, err := transport.Dispatch(ctx, &oembed.Request{
		Definition: "video",
		Endpoint:   "https://provider.example/oembed?url={url}&callback={callback}",
		URL:        "https://vid.example/1",
		OnSuccess:  func(resp *types.ProviderResponse) { ... },
		OnError:    func() { ... },
	})
*/
package oembed
