package dom

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// MaxMarkupSize limits parsed markup to 512KB. Provider fragments are small;
// anything larger is hostile or broken.
const MaxMarkupSize = 512 * 1024

// Parse parses an HTML fragment into the document model. Comments and
// doctypes are dropped. Text directly inside an element folds into its
// TextContent; bare top-level text becomes a #text pseudo-element.
func Parse(markup string) (*Fragment, error) {
	if len(markup) > MaxMarkupSize {
		return nil, fmt.Errorf("markup exceeds maximum size of %d bytes", MaxMarkupSize)
	}

	context := &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}

	frag := &Fragment{}
	for _, n := range nodes {
		switch n.Type {
		case html.ElementNode:
			frag.Nodes = append(frag.Nodes, convertNode(n))
		case html.TextNode:
			if strings.TrimSpace(n.Data) != "" {
				frag.Nodes = append(frag.Nodes, NewText(n.Data))
			}
		}
	}
	return frag, nil
}

// MustParse parses markup that is known valid, panicking otherwise.
// For fixed internal templates only.
func MustParse(markup string) *Fragment {
	frag, err := Parse(markup)
	if err != nil {
		panic(err)
	}
	return frag
}

func convertNode(n *html.Node) *Element {
	el := NewElement(n.Data)
	for _, a := range n.Attr {
		el.SetAttr(a.Key, a.Val)
	}

	var text strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			text.WriteString(c.Data)
		case html.ElementNode:
			el.AddElement(convertNode(c))
		}
	}
	if t := text.String(); strings.TrimSpace(t) != "" {
		el.TextContent = t
	}
	return el
}
