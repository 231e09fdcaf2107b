package compile

import (
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	binderrors "github.com/vango-dev/vbind/internal/errors"
	"github.com/vango-dev/vbind/pkg/dom"
	"github.com/vango-dev/vbind/pkg/reactive"
	"github.com/vango-dev/vbind/pkg/store"
)

// Handler performs the initial render of one directive and sets up the
// watchers that keep it in sync.
type Handler func(env *Env, n *html.Node, expr string) error

// Updater writes a value to a node through the surface.
type Updater func(s dom.Surface, n *html.Node, value any)

// Env is what a Handler binds against. It records every watcher it creates.
type Env struct {
	Store   *store.Store
	Surface dom.Surface
	Logger  *slog.Logger

	watchers []*reactive.Watcher
	owned    map[*html.Node]bool
}

// Own marks n's content as written by a binding. The compiler does not
// descend into owned nodes, so store values are never compiled as template.
func (e *Env) Own(n *html.Node) {
	if e.owned == nil {
		e.owned = make(map[*html.Node]bool)
	}
	e.owned[n] = true
}

// Owns reports whether n's content belongs to a binding.
func (e *Env) Owns(n *html.Node) bool {
	return e.owned[n]
}

// Watch validates expr, creates a watcher over it and records it.
func (e *Env) Watch(n *html.Node, expr string, fn func(newValue any)) (*reactive.Watcher, error) {
	if _, err := store.Split(expr); err != nil {
		return nil, binderrors.New("E023").
			WithDetail("expression " + quote(expr)).
			WithNode(dom.Describe(n)).
			Wrap(err)
	}

	w, err := e.Store.Watch(expr, fn)
	if err != nil {
		return nil, err
	}
	e.watchers = append(e.watchers, w)
	return w, nil
}

// Watchers returns the watchers created so far.
func (e *Env) Watchers() []*reactive.Watcher {
	return e.watchers
}

// updaters groups the surface write functions by binding kind.
var updaters = map[string]Updater{
	"text": func(s dom.Surface, n *html.Node, value any) {
		s.SetText(n, Format(value))
	},
	"value": func(s dom.Surface, n *html.Node, value any) {
		s.SetValue(n, Format(value))
	},
}

// directives maps directive names (prefix stripped) to handlers.
var directives = map[string]Handler{
	"model": modelHandler,
	"text":  textHandler,
	"html":  htmlHandler,
}

// Lookup returns the handler registered for a directive name.
func Lookup(name string) (Handler, bool) {
	h, ok := directives[name]
	return h, ok
}

// LookupUpdater returns the surface update function for a binding kind.
func LookupUpdater(kind string) (Updater, bool) {
	u, ok := updaters[kind]
	return u, ok
}

// Names returns the registered directive names in sorted order.
func Names() []string {
	names := make([]string, 0, len(directives))
	for name := range directives {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// modelHandler binds the node's editable value to expr in both directions.
// Store changes are written to the value slot; change events write the raw
// value back into the store. The write-back also notifies this watcher,
// which writes the new value once; repeats of the same value are
// short-circuited by the watcher.
func modelHandler(env *Env, n *html.Node, expr string) error {
	update := updaters["value"]

	w, err := env.Watch(n, expr, func(newValue any) {
		update(env.Surface, n, newValue)
	})
	if err != nil {
		return err
	}

	env.Surface.AddChangeListener(n, func(value string) error {
		if err := env.Store.Assign(expr, value); err != nil {
			env.Logger.Error("model write failed",
				"expr", expr,
				"node", dom.Describe(n),
				"error", err)
			return err
		}
		return nil
	})

	if n.DataAtom == atom.Textarea {
		env.Own(n)
	}
	update(env.Surface, n, w.Value())
	return nil
}

// textHandler binds an element's text content to a single expression.
func textHandler(env *Env, n *html.Node, expr string) error {
	update := updaters["text"]

	w, err := env.Watch(n, expr, func(newValue any) {
		update(env.Surface, n, newValue)
	})
	if err != nil {
		return err
	}

	env.Own(n)
	update(env.Surface, n, w.Value())
	return nil
}

// htmlHandler is reserved for raw HTML bindings and does nothing yet.
func htmlHandler(env *Env, n *html.Node, expr string) error {
	return nil
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
