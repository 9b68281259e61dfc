package convert

import (
	"github.com/ernestbuffington/embedkit/internal/dom"
	"github.com/ernestbuffington/embedkit/internal/shared/types"
)

// PhotoStrategy renders photo responses as an image element.
type PhotoStrategy struct{}

// Name identifies the strategy.
func (s *PhotoStrategy) Name() string { return "photo" }

// Convert accepts photo responses that carry an image URL.
func (s *PhotoStrategy) Convert(resp *types.ProviderResponse) (*dom.Fragment, bool, error) {
	if resp.Type != types.ResponsePhoto {
		return nil, false, nil
	}
	// A photo without its image URL has nothing to render.
	if resp.URL == "" {
		return nil, false, nil
	}

	img := dom.NewElement("img")
	img.SetAttr("src", resp.URL)
	img.SetAttr("alt", resp.Title)
	return dom.NewFragment(img), true, nil
}
