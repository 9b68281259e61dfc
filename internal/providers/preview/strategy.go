package preview

import (
	"bytes"
	"context"
	"image"
	"io"
	"net/url"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/PuerkitoBio/goquery"
	"github.com/dyatlov/go-opengraph/opengraph"
	"github.com/gabriel-vasile/mimetype"
	"github.com/go-resty/resty/v2"
	"github.com/microcosm-cc/bluemonday"

	"github.com/ernestbuffington/embedkit/internal/dom"
	"github.com/ernestbuffington/embedkit/internal/providers/oembed"
	"github.com/ernestbuffington/embedkit/internal/providers/oembed/client"
	"github.com/ernestbuffington/embedkit/internal/shared/types"
)

const (
	titleWords  = 30
	titleLength = 150
	descWords   = 50
	descLength  = 200
)

// Strategy builds provider responses for pages that expose no dedicated
// endpoint. It answers requests whose definition carries the preview mode.
type Strategy struct {
	client    *client.Client
	sanitizer *bluemonday.Policy
}

// NewStrategy creates a preview strategy on top of the shared HTTP client.
func NewStrategy(c *client.Client) *Strategy {
	return &Strategy{
		client:    c,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// Name implements oembed.Strategy.
func (s *Strategy) Name() string {
	return oembed.ModePreview
}

// Match implements oembed.Strategy.
func (s *Strategy) Match(req *oembed.Request) bool {
	return req.Mode == oembed.ModePreview
}

// Send implements oembed.Strategy. The ladder runs off the session turn;
// delivery goes through the exchange like every other strategy.
func (s *Strategy) Send(ctx context.Context, req *oembed.Request, post oembed.Poster) (*oembed.Exchange, error) {
	exchange, ctx := oembed.NewExchange(ctx, post, req)
	go s.run(ctx, exchange, req.URL)
	return exchange, nil
}

func (s *Strategy) run(ctx context.Context, exchange *oembed.Exchange, rawURL string) {
	page, err := s.fetchPage(ctx, rawURL)
	if err != nil {
		exchange.Fail(err)
		return
	}

	// A page that advertises its own oEmbed endpoint answers for itself.
	if href := DiscoverEndpoint(page.Body, page.URL); href != "" {
		if resp, err := s.fetchDiscovered(ctx, href); err == nil {
			exchange.Succeed(resp)
			return
		}
	}

	summary := s.extract(page)
	if summary.image != "" {
		width, height, ok := s.sniffImage(ctx, summary.image)
		if !ok {
			summary.image = ""
		} else {
			summary.imageWidth = width
			summary.imageHeight = height
		}
	}

	exchange.Succeed(compose(summary))
}

// pageSummary holds extracted page metadata before response composition.
type pageSummary struct {
	canonical   string
	title       string
	description string
	site        string
	image       string
	imageWidth  int64
	imageHeight int64
}

// extract pulls preview metadata from the page, OpenGraph tags first,
// document structure as fallback.
func (s *Strategy) extract(page *Page) *pageSummary {
	og := opengraph.NewOpenGraph()
	_ = og.ProcessHTML(bytes.NewReader(page.Body))

	summary := &pageSummary{
		canonical:   page.URL.String(),
		title:       s.sanitizer.Sanitize(og.Title),
		description: s.sanitizer.Sanitize(og.Description),
		site:        s.sanitizer.Sanitize(og.SiteName),
	}
	if og.URL != "" {
		if resolved := resolveRef(page.URL, og.URL); resolved != "" {
			summary.canonical = resolved
		}
	}
	if len(og.Images) > 0 && og.Images[0].URL != "" {
		summary.image = resolveRef(page.URL, og.Images[0].URL)
	}

	if doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body)); err == nil {
		if summary.title == "" {
			summary.title = s.sanitizer.Sanitize(extractTitle(doc))
		}
		if summary.description == "" {
			summary.description = s.sanitizer.Sanitize(extractDescription(doc))
		}
	}

	summary.title = Summarize(summary.title, titleWords, titleLength)
	summary.description = Summarize(summary.description, descWords, descLength)
	return summary
}

func extractTitle(doc *goquery.Document) string {
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	return strings.TrimSpace(doc.Find("h2").First().Text())
}

func extractDescription(doc *goquery.Document) string {
	if desc, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok {
		if desc = strings.TrimSpace(desc); desc != "" {
			return desc
		}
	}
	return strings.TrimSpace(doc.Find("p").First().Text())
}

// compose turns extracted metadata into a provider response. An image with
// no surrounding text becomes a photo; everything else becomes a rich card.
func compose(summary *pageSummary) *types.ProviderResponse {
	if summary.image != "" && summary.title == "" && summary.description == "" {
		return &types.ProviderResponse{
			Type:    types.ResponsePhoto,
			Version: "1.0",
			URL:     summary.image,
			Width:   summary.imageWidth,
			Height:  summary.imageHeight,
		}
	}

	card := dom.NewElement("div")
	card.SetAttr("class", "embed-preview")
	if summary.image != "" {
		img := dom.NewElement("img")
		img.SetAttr("src", summary.image)
		img.SetAttr("alt", "")
		card.AddElement(img)
	}
	link := dom.NewElement("a")
	link.SetAttr("href", summary.canonical)
	link.SetAttr("rel", "noopener")
	if summary.title != "" {
		link.TextContent = summary.title
	} else {
		link.TextContent = summary.canonical
	}
	card.AddElement(link)
	if summary.description != "" {
		desc := dom.NewElement("p")
		desc.TextContent = summary.description
		card.AddElement(desc)
	}

	return &types.ProviderResponse{
		Type:            types.ResponseRich,
		Version:         "1.0",
		URL:             summary.canonical,
		HTML:            dom.Render(card),
		Title:           summary.title,
		ProviderName:    summary.site,
		ThumbnailURL:    summary.image,
		ThumbnailWidth:  summary.imageWidth,
		ThumbnailHeight: summary.imageHeight,
	}
}

// sniffImage confirms the candidate URL really serves an image and reads
// its dimensions. Content sniffing decides, not the URL or the headers.
func (s *Strategy) sniffImage(ctx context.Context, rawURL string) (int64, int64, bool) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Hostname() == "" {
		return 0, 0, false
	}
	host := parsed.Hostname()

	req, err := s.client.Request(ctx, host)
	if err != nil {
		return 0, 0, false
	}
	req.SetHeader("User-Agent", browserAgent).
		SetHeader("Accept", acceptImagery).
		SetDoNotParseResponse(true)

	resp, err := s.client.ExecuteWithBreaker(host, func() (*resty.Response, error) {
		resp, err := req.Get(rawURL)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode() >= 500 {
			resp.RawBody().Close()
			return nil, errServerStatus(host, resp)
		}
		return resp, nil
	})
	if err != nil {
		return 0, 0, false
	}
	defer resp.RawBody().Close()

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return 0, 0, false
	}
	data, err := io.ReadAll(io.LimitReader(resp.RawBody(), MaxImageBytes))
	if err != nil {
		return 0, 0, false
	}
	if !strings.HasPrefix(mimetype.Detect(data).String(), "image/") {
		return 0, 0, false
	}

	// An image in a format outside the registered decoders still counts.
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, true
	}
	return int64(cfg.Width), int64(cfg.Height), true
}
