package dom

import "strings"

// Fragment is an ordered list of parentless elements, typically the result
// of parsing provider markup
type Fragment struct {
	Nodes []*Element
}

// NewFragment creates a fragment from elements
func NewFragment(nodes ...*Element) *Fragment {
	return &Fragment{Nodes: nodes}
}

// Empty reports whether the fragment holds no renderable content
func (f *Fragment) Empty() bool {
	if f == nil || len(f.Nodes) == 0 {
		return true
	}
	for _, n := range f.Nodes {
		if !n.IsText() || strings.TrimSpace(n.TextContent) != "" {
			return false
		}
	}
	return true
}

// Clone deep-copies the fragment
func (f *Fragment) Clone() *Fragment {
	cp := &Fragment{Nodes: make([]*Element, 0, len(f.Nodes))}
	for _, n := range f.Nodes {
		cp.Nodes = append(cp.Nodes, n.Clone())
	}
	return cp
}

// Scripts collects every script element in the fragment, in document order
func (f *Fragment) Scripts() []*Element {
	var scripts []*Element
	for _, n := range f.Nodes {
		scripts = append(scripts, n.FindByTag("script")...)
	}
	return scripts
}

// ExtractScripts removes every script element from the fragment and returns
// them in document order. Top-level scripts are removed from Nodes; nested
// ones are detached from their parents.
func (f *Fragment) ExtractScripts() []*Element {
	scripts := f.Scripts()
	for _, s := range scripts {
		if s.Parent != nil {
			s.Remove()
			continue
		}
		kept := f.Nodes[:0]
		for _, n := range f.Nodes {
			if n != s {
				kept = append(kept, n)
			}
		}
		f.Nodes = kept
	}
	return scripts
}

// FirstScriptSrc returns the source of the first external script in the
// given script list, or "" when none carries a src attribute
func FirstScriptSrc(scripts []*Element) string {
	for _, s := range scripts {
		if src := s.Attr("src"); src != "" {
			return src
		}
	}
	return ""
}

// Render serializes the fragment to HTML
func (f *Fragment) Render() string {
	var b strings.Builder
	for _, n := range f.Nodes {
		renderElement(&b, n)
	}
	return b.String()
}
