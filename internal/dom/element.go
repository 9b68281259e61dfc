package dom

import "strings"

// TextTag is the pseudo tag for a bare text run at fragment top level
const TextTag = "#text"

// Element represents one document node
type Element struct {
	TagName     string
	TextContent string
	Attributes  map[string]string
	Children    []*Element
	Parent      *Element
}

// NewElement creates a detached element
func NewElement(tag string) *Element {
	return &Element{
		TagName:    strings.ToLower(tag),
		Attributes: make(map[string]string),
	}
}

// NewText creates a detached text pseudo-element
func NewText(text string) *Element {
	return &Element{
		TagName:     TextTag,
		TextContent: text,
		Attributes:  make(map[string]string),
	}
}

// Attr retrieves an attribute value
func (e *Element) Attr(name string) string {
	return e.Attributes[name]
}

// HasAttr reports whether an attribute is present
func (e *Element) HasAttr(name string) bool {
	_, ok := e.Attributes[name]
	return ok
}

// SetAttr sets an attribute value
func (e *Element) SetAttr(name, value string) {
	if e.Attributes == nil {
		e.Attributes = make(map[string]string)
	}
	e.Attributes[name] = value
}

// RemoveAttr deletes an attribute
func (e *Element) RemoveAttr(name string) {
	delete(e.Attributes, name)
}

// ID returns the element's id attribute
func (e *Element) ID() string {
	return e.Attr("id")
}

// ClassName returns the element's class attribute
func (e *Element) ClassName() string {
	return e.Attr("class")
}

// IsText reports whether this is a text pseudo-element
func (e *Element) IsText() bool {
	return e.TagName == TextTag
}

// AddElement appends a child element, reparenting it
func (e *Element) AddElement(child *Element) {
	if child.Parent != nil {
		child.Remove()
	}
	child.Parent = e
	e.Children = append(e.Children, child)
}

// ReplaceWith swaps the element for replacement in its parent, keeping
// the sibling position. No-op on detached elements.
func (e *Element) ReplaceWith(replacement *Element) {
	if e.Parent == nil {
		return
	}
	if replacement.Parent != nil {
		replacement.Remove()
	}
	for i, child := range e.Parent.Children {
		if child == e {
			e.Parent.Children[i] = replacement
			replacement.Parent = e.Parent
			e.Parent = nil
			return
		}
	}
}

// Remove detaches the element from its parent
func (e *Element) Remove() {
	if e.Parent == nil {
		return
	}
	children := e.Parent.Children[:0]
	for _, child := range e.Parent.Children {
		if child != e {
			children = append(children, child)
		}
	}
	e.Parent.Children = children
	e.Parent = nil
}

// Clear removes all children
func (e *Element) Clear() {
	for _, child := range e.Children {
		child.Parent = nil
	}
	e.Children = nil
	e.TextContent = ""
}

// Clone deep-copies the element subtree. The clone is detached.
func (e *Element) Clone() *Element {
	cp := &Element{
		TagName:     e.TagName,
		TextContent: e.TextContent,
		Attributes:  make(map[string]string, len(e.Attributes)),
		Children:    make([]*Element, 0, len(e.Children)),
	}
	for k, v := range e.Attributes {
		cp.Attributes[k] = v
	}
	for _, child := range e.Children {
		cc := child.Clone()
		cc.Parent = cp
		cp.Children = append(cp.Children, cc)
	}
	return cp
}

// Walk visits the element and every descendant, depth first
func (e *Element) Walk(visit func(*Element)) {
	visit(e)
	for _, child := range e.Children {
		child.Walk(visit)
	}
}

// FindByTag collects descendants (and the element itself) with the tag
func (e *Element) FindByTag(tag string) []*Element {
	var result []*Element
	e.Walk(func(el *Element) {
		if strings.EqualFold(el.TagName, tag) {
			result = append(result, el)
		}
	})
	return result
}

// FindByID finds the first element with the given id
func (e *Element) FindByID(id string) *Element {
	var found *Element
	e.Walk(func(el *Element) {
		if found == nil && el.ID() == id {
			found = el
		}
	})
	return found
}

// FindByClass collects elements whose class attribute contains the class
func (e *Element) FindByClass(class string) []*Element {
	var result []*Element
	e.Walk(func(el *Element) {
		if strings.Contains(el.ClassName(), class) {
			result = append(result, el)
		}
	})
	return result
}

// Count returns the number of elements in the subtree, text runs included
func (e *Element) Count() int {
	n := 0
	e.Walk(func(*Element) { n++ })
	return n
}
