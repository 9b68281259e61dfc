/*
Package resilience provides circuit breakers for outbound provider calls.

# Overview

Embed providers are third-party services with uneven reliability. A
breaker fails fast once an endpoint shows sustained errors instead of
queueing doomed requests behind timeouts.

# Features

- Three-state breaker (Closed, Open, Half-Open)
- Generation counter so late results from a previous window are ignored
- Configurable trip policy and probe budget
- Named groups with one independent breaker per upstream
- State change callbacks for monitoring
- Thread-safe operations

# Usage

	breaker := resilience.New("oembed:youtube.com", resilience.Settings{
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	result, err := breaker.Execute(func() (interface{}, error) {
		return client.Call()
	})

# States

- Closed: normal operation, outcomes are counted
- Open: requests fail immediately with ErrCircuitOpen
- Half-Open: a bounded number of probe requests test recovery

# Pattern

	Closed --[trip]-> Open --[timeout]-> Half-Open --[probes succeed]-> Closed
	                                          |
	                                    [probe fails]
	                                          |
	                                          v
	                                        Open
*/
package resilience
