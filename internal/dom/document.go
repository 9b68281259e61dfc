package dom

import (
	"strconv"
	"strings"
)

// Synthetic layout constants for content height measurement. The model has
// no real layout engine; the measure only needs to be deterministic and to
// grow with content so the resize poll can observe change.
const (
	defaultMediaHeight = 150
	lineHeight         = 16
	charsPerLine       = 80
)

var blockTags = map[string]bool{
	"p": true, "div": true, "blockquote": true, "li": true, "ul": true,
	"ol": true, "pre": true, "section": true, "article": true, "figure": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

var mediaTags = map[string]bool{
	"iframe": true, "img": true, "video": true, "embed": true, "object": true,
}

// Document is a full surface document
type Document struct {
	Root *Element
	Head *Element
	Body *Element
}

// NewDocument creates an empty document with head and body
func NewDocument() *Document {
	root := NewElement("#document")
	htmlEl := NewElement("html")
	head := NewElement("head")
	body := NewElement("body")
	htmlEl.AddElement(head)
	htmlEl.AddElement(body)
	root.AddElement(htmlEl)

	return &Document{
		Root: root,
		Head: head,
		Body: body,
	}
}

// Query finds elements by selector (#id, .class, or tag)
func (d *Document) Query(selector string) []*Element {
	switch {
	case strings.HasPrefix(selector, "#"):
		if el := d.Root.FindByID(strings.TrimPrefix(selector, "#")); el != nil {
			return []*Element{el}
		}
		return nil
	case strings.HasPrefix(selector, "."):
		return d.Root.FindByClass(strings.TrimPrefix(selector, "."))
	default:
		return d.Root.FindByTag(selector)
	}
}

// ContentHeight measures the synthetic scroll height of the body. Explicit
// height attributes win; media elements without one get a default box; block
// elements contribute line estimates from their text length.
func (d *Document) ContentHeight() int {
	height := 0
	d.Body.Walk(func(el *Element) {
		if el == d.Body {
			return
		}
		if h := el.Attr("height"); h != "" {
			if v, err := strconv.Atoi(strings.TrimSuffix(h, "px")); err == nil && v > 0 {
				height += v
				return
			}
		}
		switch {
		case mediaTags[el.TagName]:
			height += defaultMediaHeight
		case blockTags[el.TagName]:
			height += lineHeight + len(el.TextContent)/charsPerLine*lineHeight
		case el.IsText():
			if strings.TrimSpace(el.TextContent) != "" {
				height += lineHeight + len(el.TextContent)/charsPerLine*lineHeight
			}
		}
	})
	return height
}
