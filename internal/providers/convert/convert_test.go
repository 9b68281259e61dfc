package convert

import (
	"testing"

	"github.com/ernestbuffington/embedkit/internal/dom"
	"github.com/ernestbuffington/embedkit/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhotoConversion(t *testing.T) {
	chain := DefaultChain()

	frag, err := chain.Convert(&types.ProviderResponse{
		Type:  types.ResponsePhoto,
		URL:   "https://x/img.png",
		Title: "T",
	})
	require.NoError(t, err)
	require.Len(t, frag.Nodes, 1)

	img := frag.Nodes[0]
	assert.Equal(t, "img", img.TagName)
	assert.Equal(t, "https://x/img.png", img.Attr("src"))
	assert.Equal(t, "T", img.Attr("alt"))
	assert.Equal(t, `<img alt="T" src="https://x/img.png">`, frag.Render())
}

func TestPhotoWithoutURLIsUnsupported(t *testing.T) {
	chain := DefaultChain()

	_, err := chain.Convert(&types.ProviderResponse{
		Type:  types.ResponsePhoto,
		Title: "no image here",
	})
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestMediaConversion(t *testing.T) {
	tests := []struct {
		name string
		resp *types.ProviderResponse
	}{
		{
			name: "video",
			resp: &types.ProviderResponse{
				Type: types.ResponseVideo,
				HTML: `<iframe src="//vid.example/embed/1"></iframe>`,
			},
		},
		{
			name: "rich",
			resp: &types.ProviderResponse{
				Type: types.ResponseRich,
				HTML: `<iframe src="//rich.example/widget"></iframe>`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frag, err := DefaultChain().Convert(tt.resp)
			require.NoError(t, err)

			iframes := collectByTag(frag, "iframe")
			require.Len(t, iframes, 1)
			assert.Equal(t, "-1", iframes[0].Attr("tabindex"))
		})
	}
}

func TestMediaRewritesEveryFrame(t *testing.T) {
	frag, err := DefaultChain().Convert(&types.ProviderResponse{
		Type: types.ResponseRich,
		HTML: `<div><iframe src="//a.example/1"></iframe><p>between</p><iframe src="//b.example/2" tabindex="3"></iframe></div>`,
	})
	require.NoError(t, err)

	iframes := collectByTag(frag, "iframe")
	require.Len(t, iframes, 2)
	for _, f := range iframes {
		assert.Equal(t, "-1", f.Attr("tabindex"))
	}
}

func TestMediaWithoutMarkupIsUnsupported(t *testing.T) {
	_, err := DefaultChain().Convert(&types.ProviderResponse{
		Type: types.ResponseVideo,
		HTML: "   ",
	})
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestOtherTypesAreUnsupported(t *testing.T) {
	tests := []types.ResponseType{types.ResponseLink, "other", ""}

	for _, rt := range tests {
		t.Run(string(rt), func(t *testing.T) {
			frag, err := DefaultChain().Convert(&types.ProviderResponse{
				Type: rt,
				URL:  "https://x.example/1",
				HTML: "<b>ignored</b>",
			})
			assert.ErrorIs(t, err, ErrUnsupported)
			assert.Nil(t, frag)
		})
	}
}

func TestNilResponseIsUnsupported(t *testing.T) {
	_, err := DefaultChain().Convert(nil)
	assert.ErrorIs(t, err, ErrUnsupported)
}

type upperTitleStrategy struct{}

func (s *upperTitleStrategy) Name() string { return "upper-title" }

func (s *upperTitleStrategy) Convert(resp *types.ProviderResponse) (*dom.Fragment, bool, error) {
	if resp.Title != "special" {
		return nil, false, nil
	}
	el := dom.NewElement("mark")
	el.TextContent = "SPECIAL"
	return dom.NewFragment(el), true, nil
}

func TestPrependedStrategyWinsWithoutMutatingDefault(t *testing.T) {
	base := DefaultChain()
	custom := base.WithPrepended(&upperTitleStrategy{})

	resp := &types.ProviderResponse{
		Type:  types.ResponsePhoto,
		URL:   "https://x/img.png",
		Title: "special",
	}

	frag, err := custom.Convert(resp)
	require.NoError(t, err)
	assert.Equal(t, "mark", frag.Nodes[0].TagName)

	// The shared default chain is untouched.
	frag, err = base.Convert(resp)
	require.NoError(t, err)
	assert.Equal(t, "img", frag.Nodes[0].TagName)
	assert.Equal(t, []string{"photo", "media"}, base.Strategies())
}

func collectByTag(frag *dom.Fragment, tag string) []*dom.Element {
	var found []*dom.Element
	for _, n := range frag.Nodes {
		found = append(found, n.FindByTag(tag)...)
	}
	return found
}
