package oembed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildURL(t *testing.T) {
	tests := []struct {
		name     string
		template string
		resource string
		callback string
		params   map[string]string
		want     string
		wantErr  bool
	}{
		{
			name:     "substitutes url and callback",
			template: "https://p.example/oembed?url={url}&callback={callback}",
			resource: "https://vid.example/1?t=10",
			callback: "cb_01ABC",
			want:     "https://p.example/oembed?url=https%3A%2F%2Fvid.example%2F1%3Ft%3D10&callback=cb_01ABC",
		},
		{
			name:     "substitutes extra params",
			template: "https://p.example/oembed?url={url}&maxwidth={maxwidth}&callback={callback}",
			resource: "https://vid.example/1",
			callback: "cb_01ABC",
			params:   map[string]string{"maxwidth": "640"},
			want:     "https://p.example/oembed?url=https%3A%2F%2Fvid.example%2F1&maxwidth=640&callback=cb_01ABC",
		},
		{
			name:     "json templates need no callback",
			template: "https://p.example/oembed.json?url={url}",
			resource: "https://vid.example/1",
			want:     "https://p.example/oembed.json?url=https%3A%2F%2Fvid.example%2F1",
		},
		{
			name:     "unresolved callback placeholder errors",
			template: "https://p.example/oembed?url={url}&callback={callback}",
			resource: "https://vid.example/1",
			wantErr:  true,
		},
		{
			name:     "unknown placeholder errors",
			template: "https://p.example/oembed?url={url}&key={api_key}",
			resource: "https://vid.example/1",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildURL(tt.template, tt.resource, tt.callback, tt.params)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKnownMode(t *testing.T) {
	assert.True(t, KnownMode(""))
	assert.True(t, KnownMode(ModeScriptCallback))
	assert.True(t, KnownMode(ModeJSON))
	assert.False(t, KnownMode("carrier-pigeon"))
}
