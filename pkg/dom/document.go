package dom

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrNoDocument is returned when a Document has no root node.
var ErrNoDocument = errors.New("dom: document has no root")

// Document is a parsed node tree plus the change listeners attached to it.
// It implements Surface.
type Document struct {
	root      *html.Node
	listeners map[*html.Node][]ChangeListener
}

// NewDocument wraps an existing tree.
func NewDocument(root *html.Node) *Document {
	return &Document{
		root:      root,
		listeners: make(map[*html.Node][]ChangeListener),
	}
}

// Parse parses a complete HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("dom: parse: %w", err)
	}
	return NewDocument(root), nil
}

// ParseString is Parse for an in-memory template.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// ParseFragment parses a body fragment under a synthetic <div> root,
// which becomes the document root.
func ParseFragment(r io.Reader) (*Document, error) {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(r, context)
	if err != nil {
		return nil, fmt.Errorf("dom: parse fragment: %w", err)
	}

	root := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return NewDocument(root), nil
}

// Root returns the root node.
func (d *Document) Root() *html.Node {
	return d.root
}

// Find returns the first element matching selector in document order.
// Supported selectors are "#id" and a bare tag name. An empty selector
// returns the root.
func (d *Document) Find(selector string) *html.Node {
	if d.root == nil {
		return nil
	}
	if selector == "" {
		return d.root
	}

	match := func(n *html.Node) bool {
		return n.Data == selector
	}
	if id, ok := strings.CutPrefix(selector, "#"); ok {
		match = func(n *html.Node) bool {
			v, ok := Attr(n, "id")
			return ok && v == id
		}
	}

	var found *html.Node
	Walk(d.root, func(n *html.Node) bool {
		if found != nil {
			return false
		}
		if n.Type == html.ElementNode && match(n) {
			found = n
			return false
		}
		return true
	})
	return found
}

// SetText implements Surface. A text node gets its data replaced; an
// element gets all its children replaced by a single text node.
func (d *Document) SetText(n *html.Node, value string) {
	switch n.Type {
	case html.TextNode:
		n.Data = value
	case html.ElementNode, html.DocumentNode:
		RemoveChildren(n)
		n.AppendChild(&html.Node{Type: html.TextNode, Data: value})
	}
}

// SetValue implements Surface. Textareas hold their value as text content;
// every other element holds it in the value attribute.
func (d *Document) SetValue(n *html.Node, value string) {
	if n.Type != html.ElementNode {
		return
	}
	if n.DataAtom == atom.Textarea {
		d.SetText(n, value)
		return
	}
	SetAttr(n, "value", value)
}

// AddChangeListener implements Surface.
func (d *Document) AddChangeListener(n *html.Node, fn ChangeListener) {
	d.listeners[n] = append(d.listeners[n], fn)
}

// Listeners returns the number of change listeners attached to n.
func (d *Document) Listeners(n *html.Node) int {
	return len(d.listeners[n])
}

// Dispatch simulates a "value changed" event on n: the node's value slot
// is updated first, then every listener runs in registration order. It
// reports whether any listener was attached; listener errors are joined.
func (d *Document) Dispatch(n *html.Node, value string) (bool, error) {
	fns := d.listeners[n]
	if len(fns) == 0 {
		return false, nil
	}
	d.SetValue(n, value)

	var errs []error
	for _, fn := range fns {
		if err := fn(value); err != nil {
			errs = append(errs, err)
		}
	}
	return true, errors.Join(errs...)
}

// Targets returns the nodes that have change listeners, in document order.
func (d *Document) Targets() []*html.Node {
	var out []*html.Node
	if d.root == nil {
		return out
	}
	Walk(d.root, func(n *html.Node) bool {
		if len(d.listeners[n]) > 0 {
			out = append(out, n)
		}
		return true
	})
	return out
}

// HTML serializes the whole document.
func (d *Document) HTML() (string, error) {
	if d.root == nil {
		return "", ErrNoDocument
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, d.root); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// InnerHTML serializes the children of n.
func InnerHTML(n *html.Node) (string, error) {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// TextContent returns the concatenated text of n and its descendants.
func TextContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	Walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		return true
	})
	return b.String()
}
