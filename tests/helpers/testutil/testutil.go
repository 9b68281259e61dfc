// Package testutil provides testing utilities and helpers for pipeline tests.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
)

// ProviderServer is an httptest-backed oEmbed provider endpoint.
type ProviderServer struct {
	*httptest.Server
	hits atomic.Int64
}

// Hits returns how many exchanges reached the provider.
func (p *ProviderServer) Hits() int {
	return int(p.hits.Load())
}

// NewProviderServer serves the given oEmbed JSON payload for every
// request, counting hits so tests can assert cache behavior.
func NewProviderServer(t *testing.T, payload string) *ProviderServer {
	t.Helper()
	p := &ProviderServer{}
	p.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(payload))
	}))
	t.Cleanup(p.Close)
	return p
}

// VideoPayload is a minimal well-formed video response.
const VideoPayload = `{"type":"video","html":"<iframe src=\"//vid.example/embed/1\"></iframe>","title":"clip","width":640,"height":360}`

// WriteDefinition drops a provider definition file into dir, for
// seeding a registry from disk.
func WriteDefinition(t *testing.T, dir, name, endpoint string) string {
	t.Helper()
	path := filepath.Join(dir, name+".embed.json")
	body := `{"name":"` + name + `","endpoint":"` + endpoint + `","mode":"json"}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
