package cache

import (
	"path/filepath"
	"testing"

	"github.com/ernestbuffington/embedkit/internal/shared/types"
)

func TestResponsesInsertOnce(t *testing.T) {
	c := NewResponses("video-host")

	first := types.ProviderResponse{Type: types.ResponseVideo, Title: "first"}
	second := types.ProviderResponse{Type: types.ResponseVideo, Title: "second"}

	if !c.Set("https://vid.example/1", first) {
		t.Fatal("first insert rejected")
	}
	if c.Set("https://vid.example/1", second) {
		t.Fatal("second insert for the same URL must be ignored")
	}

	got, ok := c.Get("https://vid.example/1")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got.Title != "first" {
		t.Fatalf("cached entry replaced: got title %q", got.Title)
	}
}

func TestResponsesStats(t *testing.T) {
	c := NewResponses("video-host")
	c.Set("https://a.example", types.ProviderResponse{Type: types.ResponsePhoto})

	c.Get("https://a.example") // hit
	c.Get("https://b.example") // miss
	c.Get("https://a.example") // hit

	stats := c.Stats()
	if stats.Entries != 1 {
		t.Fatalf("entries = %d, want 1", stats.Entries)
	}
	if stats.Hits != 2 || stats.Misses != 1 {
		t.Fatalf("hits/misses = %d/%d, want 2/1", stats.Hits, stats.Misses)
	}
	if stats.Definition != "video-host" {
		t.Fatalf("definition = %q", stats.Definition)
	}
}

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "responses.db")

	store, err := OpenStore(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	resp, err := types.DecodeResponse([]byte(`{"type":"video","html":"<iframe src=\"//vid.example/embed/1\"></iframe>","title":"clip"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if err := store.Put("video-host", "https://vid.example/1", resp); err != nil {
		t.Fatalf("put: %v", err)
	}
	// insert-once carries to the store
	other := resp
	other.Title = "changed"
	if err := store.Put("video-host", "https://vid.example/1", other); err != nil {
		t.Fatalf("second put: %v", err)
	}

	loaded := map[string]types.ProviderResponse{}
	err = store.Load("video-host", func(url string, r types.ProviderResponse) {
		loaded[url] = r
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	got, ok := loaded["https://vid.example/1"]
	if !ok {
		t.Fatal("stored response missing after load")
	}
	if got.Title != "clip" {
		t.Fatalf("title = %q, want the original entry kept", got.Title)
	}
	if got.Type != types.ResponseVideo {
		t.Fatalf("type = %q", got.Type)
	}
}
