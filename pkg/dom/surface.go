package dom

import "golang.org/x/net/html"

// ChangeListener receives the raw value of a "value changed" event.
type ChangeListener func(value string) error

// Surface is the set of node operations the compiler and directive
// handlers are allowed to perform.
type Surface interface {
	// SetText replaces the textual content of n.
	SetText(n *html.Node, value string)

	// SetValue replaces the editable value of n.
	SetValue(n *html.Node, value string)

	// AddChangeListener attaches fn to n's "value changed" event.
	AddChangeListener(n *html.Node, fn ChangeListener)
}
