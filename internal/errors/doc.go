// Package errors provides structured, actionable error messages for vbind.
//
// Every error carries a stable code (e.g. "E020") that maps to a short
// message, a longer explanation and a documentation link. Builders attach
// the template location, a suggestion and the wrapped cause.
//
// # Error Categories
//
//   - compile: template authoring errors (unknown directive, bad expression)
//   - runtime: failures inside watchers and reaction callbacks
//   - source: template and data loading
//   - config: vbind.json / vbind.yaml problems
//   - dev: live development server
//   - cli: command-line usage
//
// # Usage
//
//	err := errors.New("E020").
//	    WithDetail(`directive "v-modle" has no handler`).
//	    WithSuggestion("Registered directives: model, text, html")
//
//	fmt.Println(err.Format())
//	// ERROR E020: Unknown directive
//	//
//	//   directive "v-modle" has no handler
//	//
//	//   Hint: Registered directives: model, text, html
//	//
//	//   Learn more: https://vbind.dev/docs/errors/E020
package errors
