// Package reactive provides the dependency-tracking core of vbind.
//
// The model has three parts:
//
//   - Dep is the subscriber set owned by one observable property. Reading the
//     property calls Depend, writing it calls Notify.
//   - The active-evaluation slot names the Subscriber that is currently
//     evaluating. Depend registers that subscriber, so dependencies are
//     captured as a side effect of plain reads.
//   - Watcher is the Subscriber bound to one dot-separated expression. It
//     evaluates the expression once on construction, caches the result and,
//     on every notification, re-evaluates and runs its reaction if the value
//     changed.
//
// # Example
//
//	w, err := reactive.NewWatcher(st, "info.a", func(v any) {
//	    fmt.Println("info.a is now", v)
//	})
//
// # Threading
//
// Evaluation and notification are synchronous and happen on the caller's
// goroutine. The active-evaluation slot is process-wide, so a set of stores
// and watchers must be driven from one goroutine at a time. Callers that
// serve concurrent clients serialize access themselves.
package reactive
