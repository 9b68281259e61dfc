package ws

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOriginChecker(t *testing.T) {
	tests := []struct {
		name    string
		origins []string
		origin  string
		allow   bool
	}{
		{"empty list allows any origin", nil, "https://evil.example", true},
		{"no origin header passes", []string{"https://app.example"}, "", true},
		{"pinned origin passes", []string{"https://app.example"}, "https://app.example", true},
		{"pinned origin matches case-insensitively", []string{"https://App.Example"}, "https://app.example", true},
		{"unlisted origin is rejected", []string{"https://app.example"}, "https://evil.example", false},
		{"wildcard entry allows any origin", []string{"*"}, "https://anywhere.example", true},
		{"second entry matches", []string{"https://app.example", "https://admin.example"}, "https://admin.example", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := originChecker(tt.origins)
			r := httptest.NewRequest("GET", "/ws", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.allow, check(r))
		})
	}
}
