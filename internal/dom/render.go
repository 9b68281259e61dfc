package dom

import (
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// Void elements render without closing tags and carry no content
var voidTags = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// Raw-text elements render their text content unescaped
var rawTextTags = map[string]bool{
	"script": true, "style": true,
}

// Render serializes an element subtree to HTML. Attributes render in sorted
// order so output is deterministic across capture and restore.
func Render(el *Element) string {
	var b strings.Builder
	renderElement(&b, el)
	return b.String()
}

func renderElement(b *strings.Builder, el *Element) {
	if el.IsText() {
		b.WriteString(html.EscapeString(el.TextContent))
		return
	}

	b.WriteByte('<')
	b.WriteString(el.TagName)

	if len(el.Attributes) > 0 {
		keys := make([]string, 0, len(el.Attributes))
		for k := range el.Attributes {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteByte(' ')
			b.WriteString(k)
			b.WriteString(`="`)
			b.WriteString(html.EscapeString(el.Attributes[k]))
			b.WriteByte('"')
		}
	}
	b.WriteByte('>')

	if voidTags[el.TagName] {
		return
	}

	if el.TextContent != "" {
		if rawTextTags[el.TagName] {
			b.WriteString(el.TextContent)
		} else {
			b.WriteString(html.EscapeString(el.TextContent))
		}
	}
	for _, child := range el.Children {
		renderElement(b, child)
	}

	b.WriteString("</")
	b.WriteString(el.TagName)
	b.WriteByte('>')
}
