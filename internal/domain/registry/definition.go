package registry

import (
	"fmt"
	"regexp"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ernestbuffington/embedkit/internal/providers/oembed"
	"github.com/ernestbuffington/embedkit/internal/shared/utils"
)

// acceptedScheme is the default pre-flight pattern when a definition
// lists no URL patterns of its own.
var acceptedScheme = regexp.MustCompile(`^https?://\S+$`)

// Definition names one provider integration.
type Definition struct {
	// Name identifies the definition (lowercase, hyphenated)
	Name string `json:"name" yaml:"name"`
	// Endpoint is the templated provider URL; {url} and {callback}
	// placeholders are filled per exchange
	Endpoint string `json:"endpoint" yaml:"endpoint"`
	// Mode selects the exchange strategy: script-callback (default),
	// json, or preview
	Mode string `json:"mode,omitempty" yaml:"mode,omitempty"`
	// URLPatterns restricts accepted resource URLs (doublestar
	// patterns); empty accepts any http(s) URL
	URLPatterns []string `json:"url_patterns,omitempty" yaml:"url_patterns,omitempty"`
	// MaxWidth/MaxHeight are passed to providers honoring them
	MaxWidth  int `json:"max_width,omitempty" yaml:"max_width,omitempty"`
	MaxHeight int `json:"max_height,omitempty" yaml:"max_height,omitempty"`
	// NoNotifications suppresses user-visible progress and failure
	// notices for loads under this definition
	NoNotifications bool `json:"no_notifications,omitempty" yaml:"no_notifications,omitempty"`
}

// Validate checks the definition for registration.
func (d *Definition) Validate() error {
	if err := utils.ValidateDefinitionName(d.Name); err != nil {
		return err
	}
	if d.Endpoint == "" && d.Mode != oembed.ModePreview {
		return fmt.Errorf("definition %s: endpoint is required", d.Name)
	}
	if !oembed.KnownMode(d.Mode) {
		return fmt.Errorf("definition %s: unknown mode %q", d.Name, d.Mode)
	}
	for _, p := range d.URLPatterns {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("definition %s: invalid url pattern %q", d.Name, p)
		}
	}
	return nil
}

// AcceptsURL is the syntactic pre-flight check: it reports whether the
// resource URL matches the definition's accepted patterns. It never
// errors; an unresolvable URL simply does not match.
func (d *Definition) AcceptsURL(url string) bool {
	if utils.ValidateResourceURL(url) != nil {
		return false
	}
	if len(d.URLPatterns) == 0 {
		return acceptedScheme.MatchString(url)
	}
	for _, p := range d.URLPatterns {
		if ok, err := doublestar.Match(p, url); err == nil && ok {
			return true
		}
	}
	return false
}

// Params returns the template parameters this definition contributes to
// an exchange.
func (d *Definition) Params() map[string]string {
	params := make(map[string]string)
	if d.MaxWidth > 0 {
		params["maxwidth"] = fmt.Sprintf("%d", d.MaxWidth)
	}
	if d.MaxHeight > 0 {
		params["maxheight"] = fmt.Sprintf("%d", d.MaxHeight)
	}
	return params
}

// Clone returns an independent copy.
func (d *Definition) Clone() *Definition {
	cp := *d
	cp.URLPatterns = append([]string(nil), d.URLPatterns...)
	return &cp
}
