package dom

import (
	"strings"
	"testing"
)

func TestParseSimpleFragment(t *testing.T) {
	frag, err := Parse(`<p>hello</p><img src="https://x/img.png">`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if len(frag.Nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(frag.Nodes))
	}
	if frag.Nodes[0].TagName != "p" || frag.Nodes[0].TextContent != "hello" {
		t.Errorf("unexpected first node: %+v", frag.Nodes[0])
	}
	if frag.Nodes[1].TagName != "img" || frag.Nodes[1].Attr("src") != "https://x/img.png" {
		t.Errorf("unexpected second node: %+v", frag.Nodes[1])
	}
}

func TestParseNestedElements(t *testing.T) {
	frag, err := Parse(`<div id="outer"><span class="inner">text</span></div>`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	outer := frag.Nodes[0]
	if outer.ID() != "outer" {
		t.Errorf("expected id 'outer', got %q", outer.ID())
	}
	if len(outer.Children) != 1 {
		t.Fatalf("expected 1 child, got %d", len(outer.Children))
	}
	inner := outer.Children[0]
	if inner.ClassName() != "inner" || inner.TextContent != "text" {
		t.Errorf("unexpected inner node: %+v", inner)
	}
	if inner.Parent != outer {
		t.Error("child should be parented to outer")
	}
}

func TestParseTopLevelText(t *testing.T) {
	frag, err := Parse(`leading <b>bold</b>`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if len(frag.Nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(frag.Nodes))
	}
	if !frag.Nodes[0].IsText() {
		t.Errorf("expected leading text node, got %q", frag.Nodes[0].TagName)
	}
}

func TestParseRejectsOversizedMarkup(t *testing.T) {
	huge := strings.Repeat("a", MaxMarkupSize+1)
	if _, err := Parse(huge); err == nil {
		t.Error("expected size error")
	}
}

func TestRenderRoundTrip(t *testing.T) {
	frag, err := Parse(`<iframe src="https://vid.example/embed/1" height="200"></iframe>`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	out := frag.Render()
	if !strings.Contains(out, `src="https://vid.example/embed/1"`) {
		t.Errorf("render lost src attribute: %s", out)
	}
	if !strings.Contains(out, "</iframe>") {
		t.Errorf("iframe must have a closing tag: %s", out)
	}

	// Re-parsing the rendered output must yield the same structure.
	again, err := Parse(out)
	if err != nil {
		t.Fatalf("reparse failed: %v", err)
	}
	if again.Render() != out {
		t.Errorf("render not stable: %q != %q", again.Render(), out)
	}
}

func TestRenderDeterministicAttributes(t *testing.T) {
	el := NewElement("iframe")
	el.SetAttr("tabindex", "-1")
	el.SetAttr("src", "https://x/e")
	el.SetAttr("allowfullscreen", "")

	first := Render(el)
	for i := 0; i < 10; i++ {
		if Render(el) != first {
			t.Fatal("render output must be deterministic")
		}
	}
}

func TestRenderEscaping(t *testing.T) {
	el := NewElement("p")
	el.TextContent = `<b> & "quoted"`
	out := Render(el)
	if strings.Contains(out, "<b>") {
		t.Errorf("text content must be escaped: %s", out)
	}

	script := NewElement("script")
	script.TextContent = `if (a < b && c > d) { run("x"); }`
	out = Render(script)
	if !strings.Contains(out, `if (a < b && c > d)`) {
		t.Errorf("script content must render raw: %s", out)
	}
}

func TestRenderVoidElements(t *testing.T) {
	el := NewElement("img")
	el.SetAttr("src", "https://x/img.png")
	out := Render(el)
	if strings.Contains(out, "</img>") {
		t.Errorf("void element must not render a closing tag: %s", out)
	}
}

func TestExtractScripts(t *testing.T) {
	frag, err := Parse(`<blockquote><p>post</p><script>inline()</script></blockquote>` +
		`<script src="https://platform.example/widget.js"></script>`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	scripts := frag.ExtractScripts()
	if len(scripts) != 2 {
		t.Fatalf("expected 2 scripts, got %d", len(scripts))
	}

	if src := FirstScriptSrc(scripts); src != "https://platform.example/widget.js" {
		t.Errorf("unexpected first script src: %q", src)
	}

	out := frag.Render()
	if strings.Contains(out, "<script") {
		t.Errorf("scripts must be gone after extraction: %s", out)
	}
	if !strings.Contains(out, "<blockquote>") {
		t.Errorf("non-script content must survive extraction: %s", out)
	}
}

func TestCloneIsDetachedDeepCopy(t *testing.T) {
	frag := MustParse(`<div><span id="a">x</span></div>`)
	orig := frag.Nodes[0]

	cp := orig.Clone()
	if cp.Parent != nil {
		t.Error("clone must be detached")
	}

	cp.Children[0].SetAttr("id", "changed")
	cp.Children[0].TextContent = "y"

	if orig.Children[0].ID() != "a" || orig.Children[0].TextContent != "x" {
		t.Error("mutating the clone must not affect the original")
	}
}

func TestRemoveAndClear(t *testing.T) {
	parent := NewElement("div")
	a := NewElement("span")
	b := NewElement("span")
	parent.AddElement(a)
	parent.AddElement(b)

	a.Remove()
	if len(parent.Children) != 1 || parent.Children[0] != b {
		t.Errorf("remove failed: %+v", parent.Children)
	}
	if a.Parent != nil {
		t.Error("removed element must be detached")
	}

	parent.Clear()
	if len(parent.Children) != 0 {
		t.Error("clear must drop all children")
	}
	if b.Parent != nil {
		t.Error("cleared children must be detached")
	}
}

func TestReplaceWithKeepsPosition(t *testing.T) {
	parent := NewElement("div")
	a := NewElement("script")
	b := NewElement("blockquote")
	parent.AddElement(a)
	parent.AddElement(b)

	fresh := NewElement("script")
	a.ReplaceWith(fresh)

	if len(parent.Children) != 2 {
		t.Fatalf("children = %d, want 2", len(parent.Children))
	}
	if parent.Children[0] != fresh {
		t.Error("replacement must take the replaced element's slot")
	}
	if parent.Children[1] != b {
		t.Error("siblings after the replaced element must keep their order")
	}
	if fresh.Parent != parent {
		t.Error("replacement must be parented")
	}
	if a.Parent != nil {
		t.Error("replaced element must be detached")
	}

	// Detached receiver: nothing to do.
	detached := NewElement("span")
	detached.ReplaceWith(NewElement("em"))
	if detached.Parent != nil {
		t.Error("replace on a detached element must be a no-op")
	}
}

func TestFindHelpers(t *testing.T) {
	frag := MustParse(`<div id="top" class="wrap"><p class="wrap line">one</p><p>two</p></div>`)
	root := frag.Nodes[0]

	if el := root.FindByID("top"); el != root {
		t.Error("FindByID should find the root itself")
	}
	if got := len(root.FindByTag("p")); got != 2 {
		t.Errorf("expected 2 p elements, got %d", got)
	}
	if got := len(root.FindByClass("wrap")); got != 2 {
		t.Errorf("expected 2 wrap elements, got %d", got)
	}
}

func TestDocumentQuery(t *testing.T) {
	doc := NewDocument()
	p := NewElement("p")
	p.SetAttr("id", "para")
	p.SetAttr("class", "content")
	doc.Body.AddElement(p)

	if got := doc.Query("#para"); len(got) != 1 || got[0] != p {
		t.Errorf("id query failed: %v", got)
	}
	if got := doc.Query(".content"); len(got) != 1 {
		t.Errorf("class query failed: %v", got)
	}
	if got := doc.Query("p"); len(got) != 1 {
		t.Errorf("tag query failed: %v", got)
	}
}

func TestContentHeight(t *testing.T) {
	doc := NewDocument()
	if h := doc.ContentHeight(); h != 0 {
		t.Errorf("empty body should measure 0, got %d", h)
	}

	iframe := NewElement("iframe")
	doc.Body.AddElement(iframe)
	withMedia := doc.ContentHeight()
	if withMedia < defaultMediaHeight {
		t.Errorf("media element should contribute default height, got %d", withMedia)
	}

	p := NewElement("p")
	p.TextContent = "hello"
	doc.Body.AddElement(p)
	if doc.ContentHeight() <= withMedia {
		t.Error("adding content must grow the measured height")
	}

	iframe.SetAttr("height", "480")
	if doc.ContentHeight() < 480 {
		t.Errorf("explicit height attribute must win, got %d", doc.ContentHeight())
	}
}

func TestFragmentEmpty(t *testing.T) {
	if !(&Fragment{}).Empty() {
		t.Error("zero fragment should be empty")
	}

	ws := MustParse("   ")
	if !ws.Empty() {
		t.Error("whitespace-only fragment should be empty")
	}

	content := MustParse("<p>x</p>")
	if content.Empty() {
		t.Error("fragment with an element should not be empty")
	}
}
