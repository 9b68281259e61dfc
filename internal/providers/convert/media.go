package convert

import (
	"fmt"
	"strings"

	"github.com/ernestbuffington/embedkit/internal/dom"
	"github.com/ernestbuffington/embedkit/internal/shared/types"
)

// MediaStrategy renders video and rich responses from their HTML
// fragment. Every iframe in the fragment is rewritten with
// tabindex="-1" so embedded frames cannot enter the host's focus order.
type MediaStrategy struct{}

// Name identifies the strategy.
func (s *MediaStrategy) Name() string { return "media" }

// Convert accepts video and rich responses that carry markup.
func (s *MediaStrategy) Convert(resp *types.ProviderResponse) (*dom.Fragment, bool, error) {
	if resp.Type != types.ResponseVideo && resp.Type != types.ResponseRich {
		return nil, false, nil
	}
	if strings.TrimSpace(resp.HTML) == "" {
		return nil, false, nil
	}

	frag, err := dom.Parse(resp.HTML)
	if err != nil {
		return nil, false, fmt.Errorf("parse response html: %w", err)
	}
	if frag.Empty() {
		return nil, false, nil
	}

	for _, node := range frag.Nodes {
		node.Walk(func(el *dom.Element) {
			if el.TagName == "iframe" {
				el.SetAttr("tabindex", "-1")
			}
		})
	}
	return frag, true, nil
}
