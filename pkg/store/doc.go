// Package store implements the observable store: a tree of key/value
// objects whose reads register the evaluating watcher and whose writes
// notify it.
//
// Every property of an Object owns one reactive.Dep. Get calls Depend on it,
// Set replaces the value and calls Notify when the value changed. Nested
// map[string]any values are wrapped recursively when the store is built.
//
// Values assigned after wrapping are stored as given: a plain map assigned
// with Set or Assign is not wrapped, so reads through it are not tracked.
// Code that relies on that can assign an *Object built with Wrap instead.
//
//	st := store.New(map[string]any{
//	    "info": map[string]any{"a": "x"},
//	})
//	w, _ := st.Watch("info.a", func(v any) { fmt.Println(v) })
//	_ = st.Assign("info.a", "y") // prints y
package store
