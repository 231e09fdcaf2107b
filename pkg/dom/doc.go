// Package dom is the render surface vbind compiles against.
//
// Templates are parsed with golang.org/x/net/html into *html.Node trees.
// The compiler never mutates nodes directly: it goes through the Surface
// interface, which Document implements. Document also keeps the change
// listeners attached to editable nodes and dispatches simulated input
// events to them.
package dom
