package oembed

import (
	"testing"

	"github.com/ernestbuffington/embedkit/internal/shared/id"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallbackRegistry(t *testing.T) {
	t.Run("allocate and invoke", func(t *testing.T) {
		registry := NewCallbackRegistry()

		var got []byte
		cb := registry.Allocate(func(payload []byte) { got = payload })
		require.NotEmpty(t, cb)
		assert.Equal(t, 1, registry.Pending())

		ok := registry.Invoke(cb, []byte(`{"type":"video"}`))
		assert.True(t, ok)
		assert.Equal(t, `{"type":"video"}`, string(got))
	})

	t.Run("unknown identifier is ignored", func(t *testing.T) {
		registry := NewCallbackRegistry()
		ok := registry.Invoke(id.CallbackID("cb_unknown"), []byte("{}"))
		assert.False(t, ok)
	})

	t.Run("release is idempotent", func(t *testing.T) {
		registry := NewCallbackRegistry()

		invoked := false
		cb := registry.Allocate(func([]byte) { invoked = true })

		registry.Release(cb)
		registry.Release(cb)
		assert.Equal(t, 0, registry.Pending())

		ok := registry.Invoke(cb, []byte("{}"))
		assert.False(t, ok)
		assert.False(t, invoked)
	})

	t.Run("identifiers are unique", func(t *testing.T) {
		registry := NewCallbackRegistry()

		seen := make(map[id.CallbackID]bool)
		for i := 0; i < 100; i++ {
			cb := registry.Allocate(func([]byte) {})
			assert.False(t, seen[cb])
			seen[cb] = true
		}
		assert.Equal(t, 100, registry.Pending())
	})
}
