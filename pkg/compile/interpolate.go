package compile

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// spanPattern matches one {{ path }} interpolation span.
var spanPattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// HasSpans reports whether text contains at least one interpolation span.
func HasSpans(text string) bool {
	return spanPattern.MatchString(text)
}

// Spans returns the trimmed expressions of every span in text, in order.
func Spans(text string) []string {
	matches := spanPattern.FindAllStringSubmatch(text, -1)
	exprs := make([]string, 0, len(matches))
	for _, m := range matches {
		exprs = append(exprs, strings.TrimSpace(m[1]))
	}
	return exprs
}

// Interpolate substitutes every span in text with the formatted value
// returned by resolve for its trimmed expression.
func Interpolate(text string, resolve func(expr string) any) string {
	return spanPattern.ReplaceAllStringFunc(text, func(span string) string {
		inner := spanPattern.FindStringSubmatch(span)[1]
		return Format(resolve(strings.TrimSpace(inner)))
	})
}

// bindText wires a text node holding interpolation spans. Each span gets a
// watcher; any of them firing recomputes the whole text from the original
// template so that untouched spans keep their current values.
func bindText(env *Env, n *html.Node, text string) error {
	update := updaters["text"]
	render := func() string {
		return Interpolate(text, env.Store.Resolve)
	}

	for _, expr := range Spans(text) {
		if _, err := env.Watch(n, expr, func(any) {
			update(env.Surface, n, render())
		}); err != nil {
			return err
		}
	}

	update(env.Surface, n, render())
	return nil
}
