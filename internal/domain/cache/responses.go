package cache

import (
	"sync"

	"github.com/ernestbuffington/embedkit/internal/shared/types"
)

// Responses maps resource URLs to provider responses for one definition.
// All consumers spawned from that definition within a session share one
// instance. Mutation happens on the session loop; the mutex only makes
// stat reads from API goroutines safe.
type Responses struct {
	mu         sync.RWMutex
	definition string
	entries    map[string]types.ProviderResponse

	hits   uint64
	misses uint64
}

// NewResponses creates an empty response cache for a definition.
func NewResponses(definition string) *Responses {
	return &Responses{
		definition: definition,
		entries:    make(map[string]types.ProviderResponse),
	}
}

// Definition returns the owning definition name.
func (r *Responses) Definition() string {
	return r.definition
}

// Get returns the cached response for a resource URL.
func (r *Responses) Get(url string) (types.ProviderResponse, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	resp, ok := r.entries[url]
	if ok {
		r.hits++
	} else {
		r.misses++
	}
	return resp, ok
}

// Set stores the first successful response for a URL. Later calls for
// the same URL keep the original entry; cached responses are immutable.
// Reports whether the response was inserted.
func (r *Responses) Set(url string, resp types.ProviderResponse) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[url]; exists {
		return false
	}
	r.entries[url] = resp
	return true
}

// Len returns the number of cached responses.
func (r *Responses) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Stats describes cache usage for the stats API.
type Stats struct {
	Definition string `json:"definition"`
	Entries    int    `json:"entries"`
	Hits       uint64 `json:"hits"`
	Misses     uint64 `json:"misses"`
}

// Stats returns a usage snapshot.
func (r *Responses) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Stats{
		Definition: r.definition,
		Entries:    len(r.entries),
		Hits:       r.hits,
		Misses:     r.misses,
	}
}
