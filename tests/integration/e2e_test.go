//go:build integration
// +build integration

package integration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ernestbuffington/embedkit/internal/domain/embed"
	"github.com/ernestbuffington/embedkit/internal/domain/frame"
	"github.com/ernestbuffington/embedkit/internal/domain/registry"
	"github.com/ernestbuffington/embedkit/internal/domain/session"
	"github.com/ernestbuffington/embedkit/internal/providers/oembed"
	"github.com/ernestbuffington/embedkit/internal/providers/oembed/client"
	"github.com/ernestbuffington/embedkit/internal/shared/types"
	"github.com/ernestbuffington/embedkit/tests/helpers/testutil"
)

// newPipeline builds a session manager wired to a real HTTP provider.
func newPipeline(t *testing.T, endpoint string) *session.Manager {
	t.Helper()

	definitions := registry.NewManager()
	require.NoError(t, definitions.Register(&registry.Definition{
		Name:     "video-host",
		Endpoint: endpoint + "?url={url}",
		Mode:     oembed.ModeJSON,
	}))

	m := session.NewManager(session.Deps{
		Definitions: definitions,
		Strategies:  []oembed.Strategy{oembed.NewJSONStrategy(client.New())},
		FrameOpts:   frame.Options{},
	}, t.TempDir())
	t.Cleanup(m.CloseAll)
	return m
}

func resolve(t *testing.T, s *session.Session, url string) embed.Result {
	t.Helper()

	results := make(chan embed.Result, 1)
	failures := make(chan *types.EmbedError, 1)
	s.Loop.Call(func() {
		c, err := s.Consumers.Spawn("video-host", url)
		require.NoError(t, err)
		s.Coordinator.Load(c.ID, url, embed.Options{
			Callback:        func(r embed.Result) { results <- r },
			ErrorCallback:   func(e *types.EmbedError) { failures <- e },
			NoNotifications: true,
		})
	})

	select {
	case r := <-results:
		return r
	case e := <-failures:
		t.Fatalf("resolve failed: %v", e)
	case <-time.After(10 * time.Second):
		t.Fatal("resolve timed out")
	}
	return embed.Result{}
}

// TestEndToEndResolve exercises the full acquisition path over real
// HTTP: dispatch, decode, convert, install, and the cache on repeat.
func TestEndToEndResolve(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping end-to-end test in short mode")
	}

	provider := testutil.NewProviderServer(t, testutil.VideoPayload)
	sessions := newPipeline(t, provider.URL)
	s := sessions.Create(nil, nil)

	first := resolve(t, s, "https://vid.example/watch?v=1")
	assert.Equal(t, embed.SourceProvider, first.Source)
	assert.Equal(t, types.ResponseVideo, first.Response.Type)
	require.NotNil(t, first.Content)
	assert.Contains(t, first.Content.Render(), "iframe")
	assert.Equal(t, 1, provider.Hits())

	// Same URL on a fresh consumer: served from the response cache,
	// the provider is not contacted again.
	second := resolve(t, s, "https://vid.example/watch?v=1")
	assert.Equal(t, embed.SourceCache, second.Source)
	assert.Equal(t, 1, provider.Hits())

	// A different URL goes back to the provider.
	resolve(t, s, "https://vid.example/watch?v=2")
	assert.Equal(t, 2, provider.Hits())
}

// TestEndToEndSnapshot saves a populated session and restores it
// without touching the provider again.
func TestEndToEndSnapshot(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping end-to-end test in short mode")
	}

	provider := testutil.NewProviderServer(t, testutil.VideoPayload)
	sessions := newPipeline(t, provider.URL)
	s := sessions.Create(nil, nil)

	resolve(t, s, "https://vid.example/watch?v=1")
	hits := provider.Hits()

	path, err := sessions.Save(s, "e2e")
	require.NoError(t, err)

	restored, err := sessions.Restore(path, nil, nil)
	require.NoError(t, err)
	require.Len(t, restored.Consumers.List(), 1)

	c := restored.Consumers.List()[0]
	restored.Loop.Call(func() {
		require.NotNil(t, c.Frame())
		assert.NotEmpty(t, c.Frame().Document().Body.FindByTag("iframe"))
	})
	assert.Equal(t, hits, provider.Hits(), "restore must not refetch")
}
