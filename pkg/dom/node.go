package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// Walk visits n and its descendants depth-first in document order. If fn
// returns false the children of the visited node are skipped.
func Walk(n *html.Node, fn func(*html.Node) bool) {
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		Walk(c, fn)
		c = next
	}
}

// Children returns a snapshot of n's children.
func Children(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// RemoveChildren detaches all children of n.
func RemoveChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
	}
}

// Detach moves every child of n, in order, under a new detached fragment
// node and returns it.
func Detach(n *html.Node) *html.Node {
	frag := &html.Node{Type: html.DocumentNode}
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
		frag.AppendChild(c)
	}
	return frag
}

// Attach moves every child of frag back under n in one pass.
func Attach(n, frag *html.Node) {
	for c := frag.FirstChild; c != nil; c = frag.FirstChild {
		frag.RemoveChild(c)
		n.AppendChild(c)
	}
}

// Attr returns the value of attribute key on n.
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets attribute key on n, adding it if absent.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// Describe returns a short opening-tag description of n for diagnostics.
func Describe(n *html.Node) string {
	switch n.Type {
	case html.TextNode:
		return "text " + quoteShort(n.Data)
	case html.ElementNode:
		var b strings.Builder
		b.WriteString("<")
		b.WriteString(n.Data)
		for _, a := range n.Attr {
			b.WriteString(" ")
			b.WriteString(a.Key)
			b.WriteString(`="`)
			b.WriteString(a.Val)
			b.WriteString(`"`)
		}
		b.WriteString(">")
		return b.String()
	}
	return "node"
}

func quoteShort(s string) string {
	const limit = 40
	s = strings.TrimSpace(s)
	if len(s) > limit {
		s = s[:limit] + "..."
	}
	return `"` + s + `"`
}
