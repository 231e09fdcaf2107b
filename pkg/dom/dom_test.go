package dom

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/net/html"
)

const page = `<!DOCTYPE html>
<html><body>
<div id="app"><p>{{ a }}</p><input v-model="name"><textarea v-model="bio"></textarea></div>
<div id="other"></div>
</body></html>`

func mustParse(t *testing.T, s string) *Document {
	t.Helper()
	doc, err := ParseString(s)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	return doc
}

func TestFind(t *testing.T) {
	doc := mustParse(t, page)

	app := doc.Find("#app")
	if app == nil {
		t.Fatal("Find(#app) = nil")
	}
	if id, _ := Attr(app, "id"); id != "app" {
		t.Errorf("found id = %q, want app", id)
	}
	if doc.Find("input") == nil {
		t.Error("Find(input) = nil")
	}
	if doc.Find("#nope") != nil {
		t.Error("Find(#nope) should be nil")
	}
	if doc.Find("") != doc.Root() {
		t.Error("Find(\"\") should return the root")
	}
}

func TestSetText(t *testing.T) {
	doc := mustParse(t, page)
	p := doc.Find("p")

	doc.SetText(p.FirstChild, "hello")
	if TextContent(p) != "hello" {
		t.Errorf("text node update: %q", TextContent(p))
	}

	doc.SetText(p, "<b>bold</b>")
	if p.FirstChild == nil || p.FirstChild != p.LastChild {
		t.Fatal("element update should leave exactly one child")
	}
	if p.FirstChild.Type != html.TextNode {
		t.Error("element update should insert a text node")
	}
	out, _ := InnerHTML(p)
	if out != "&lt;b&gt;bold&lt;/b&gt;" {
		t.Errorf("InnerHTML() = %q, want escaped text", out)
	}
}

func TestSetValue(t *testing.T) {
	doc := mustParse(t, page)

	input := doc.Find("input")
	doc.SetValue(input, "abc")
	if v, _ := Attr(input, "value"); v != "abc" {
		t.Errorf("input value = %q, want abc", v)
	}
	doc.SetValue(input, "def")
	if v, _ := Attr(input, "value"); v != "def" {
		t.Errorf("input value = %q, want def", v)
	}

	ta := doc.Find("textarea")
	doc.SetValue(ta, "long text")
	if TextContent(ta) != "long text" {
		t.Errorf("textarea value = %q", TextContent(ta))
	}
}

func TestDispatch(t *testing.T) {
	doc := mustParse(t, page)
	input := doc.Find("input")

	if ok, _ := doc.Dispatch(input, "x"); ok {
		t.Error("Dispatch without listeners should report false")
	}

	var order []string
	doc.AddChangeListener(input, func(v string) error {
		order = append(order, "first:"+v)
		return errors.New("first failed")
	})
	doc.AddChangeListener(input, func(v string) error {
		order = append(order, "second:"+v)
		return nil
	})

	ok, err := doc.Dispatch(input, "typed")
	if !ok {
		t.Fatal("Dispatch should report true")
	}
	if err == nil || err.Error() != "first failed" {
		t.Errorf("Dispatch() error = %v, want first failed", err)
	}
	if strings.Join(order, ",") != "first:typed,second:typed" {
		t.Errorf("listener order = %v", order)
	}
	if v, _ := Attr(input, "value"); v != "typed" {
		t.Errorf("value slot = %q, want typed", v)
	}
	if doc.Listeners(input) != 2 {
		t.Errorf("Listeners() = %d, want 2", doc.Listeners(input))
	}
}

func TestTargetsDocumentOrder(t *testing.T) {
	doc := mustParse(t, page)
	input, ta := doc.Find("input"), doc.Find("textarea")

	doc.AddChangeListener(ta, func(string) error { return nil })
	doc.AddChangeListener(input, func(string) error { return nil })

	targets := doc.Targets()
	if len(targets) != 2 || targets[0] != input || targets[1] != ta {
		t.Errorf("Targets() not in document order: %v", targets)
	}
}

func TestDetachAttach(t *testing.T) {
	doc := mustParse(t, page)
	app := doc.Find("#app")
	before, _ := InnerHTML(app)

	frag := Detach(app)
	if app.FirstChild != nil {
		t.Fatal("Detach should empty the node")
	}
	if len(Children(frag)) != 3 {
		t.Fatalf("fragment has %d children, want 3", len(Children(frag)))
	}

	Attach(app, frag)
	after, _ := InnerHTML(app)
	if before != after {
		t.Errorf("round trip changed content:\n%s\n%s", before, after)
	}
	if frag.FirstChild != nil {
		t.Error("Attach should empty the fragment")
	}
}

func TestParseFragment(t *testing.T) {
	doc, err := ParseFragment(strings.NewReader(`<span>{{a}}</span> tail`))
	if err != nil {
		t.Fatal(err)
	}
	out, err := InnerHTML(doc.Root())
	if err != nil {
		t.Fatal(err)
	}
	if out != `<span>{{a}}</span> tail` {
		t.Errorf("InnerHTML() = %q", out)
	}
	if _, err := doc.HTML(); err != nil {
		t.Errorf("HTML() error = %v", err)
	}
}

func TestHTMLWithoutRoot(t *testing.T) {
	if _, err := NewDocument(nil).HTML(); err != ErrNoDocument {
		t.Errorf("HTML() error = %v, want ErrNoDocument", err)
	}
}

func TestDescribe(t *testing.T) {
	doc := mustParse(t, page)
	if got := Describe(doc.Find("input")); got != `<input v-model="name">` {
		t.Errorf("Describe(input) = %q", got)
	}
	long := &html.Node{Type: html.TextNode, Data: strings.Repeat("a", 60)}
	if got := Describe(long); !strings.HasSuffix(got, `..."`) {
		t.Errorf("Describe(long text) = %q", got)
	}
}
