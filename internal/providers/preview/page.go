package preview

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
)

const (
	// MaxPageBytes caps how much of a page is read
	MaxPageBytes = 10 * 1024 * 1024
	// MaxImageBytes caps thumbnail downloads
	MaxImageBytes = 5 * 1024 * 1024

	browserAgent  = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	acceptHTML    = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	acceptLocale  = "en-US,en;q=0.9"
	acceptImagery = "image/*"
)

// Page is a fetched, charset-decoded resource page.
type Page struct {
	URL  *url.URL
	Body []byte
}

// fetchPage downloads the page with browser-like headers and decodes it
// to UTF-8. Non-HTML answers are rejected.
func (s *Strategy) fetchPage(ctx context.Context, rawURL string) (*Page, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	host := parsed.Hostname()
	if host == "" {
		return nil, fmt.Errorf("url %q has no host", rawURL)
	}

	req, err := s.client.Request(ctx, host)
	if err != nil {
		return nil, err
	}
	req.SetHeader("User-Agent", browserAgent).
		SetHeader("Accept", acceptHTML).
		SetHeader("Accept-Language", acceptLocale).
		SetDoNotParseResponse(true)

	resp, err := s.client.ExecuteWithBreaker(host, func() (*resty.Response, error) {
		resp, err := req.Get(rawURL)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode() >= http.StatusInternalServerError {
			resp.RawBody().Close()
			return nil, errServerStatus(host, resp)
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}
	defer resp.RawBody().Close()

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, fmt.Errorf("%s: %s", host, resp.Status())
	}
	contentType := resp.Header().Get("Content-Type")
	if !strings.Contains(contentType, "text/html") && !strings.Contains(contentType, "application/xhtml") {
		return nil, fmt.Errorf("unsupported content type %q", contentType)
	}

	body, err := io.ReadAll(io.LimitReader(resp.RawBody(), MaxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("read page: %w", err)
	}

	return &Page{URL: parsed, Body: DecodeMarkup(body)}, nil
}

// DetectCharset names the most likely charset of the given markup,
// falling back to utf-8.
func DetectCharset(data []byte) string {
	detector := chardet.NewTextDetector()
	result, err := detector.DetectBest(data)
	if err != nil || result == nil {
		return "utf-8"
	}
	return strings.ToLower(result.Charset)
}

// DecodeMarkup converts markup to UTF-8 using the detected charset.
// Undecodable input is returned as-is.
func DecodeMarkup(data []byte) []byte {
	detected := DetectCharset(data)
	utf8Reader, err := charset.NewReader(bytes.NewReader(data), "text/html; charset="+detected)
	if err != nil {
		return data
	}
	decoded, err := io.ReadAll(utf8Reader)
	if err != nil {
		return data
	}
	return decoded
}

var whitespacePattern = regexp.MustCompile(`\s+`)

// Summarize normalizes whitespace and truncates text to maxWords words
// and maxLength bytes, cutting at a word boundary where possible.
func Summarize(text string, maxWords, maxLength int) string {
	text = whitespacePattern.ReplaceAllString(strings.TrimSpace(text), " ")
	if text == "" {
		return ""
	}

	words := strings.Fields(text)
	if len(words) > maxWords {
		text = strings.Join(words[:maxWords], " ")
	}

	if len(text) > maxLength {
		text = text[:maxLength]
		if lastSpace := strings.LastIndex(text, " "); lastSpace > maxLength/2 {
			text = text[:lastSpace]
		}
		text += "..."
	}
	return text
}

func errServerStatus(host string, resp *resty.Response) error {
	return fmt.Errorf("%s: %s", host, resp.Status())
}

// resolveRef resolves a possibly-relative reference against the page URL.
func resolveRef(base *url.URL, ref string) string {
	if ref == "" {
		return ""
	}
	parsed, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return base.ResolveReference(parsed).String()
}
