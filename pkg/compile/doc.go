// Package compile walks a template tree once and wires every binding in it
// to the reactive store.
//
// Two kinds of bindings are recognized:
//
//   - Directive attributes. An attribute whose name starts with the
//     directive prefix ("v-" by default) is dispatched to the handler
//     registered under the rest of the name: v-model, v-text, v-html.
//   - Interpolation spans. A text node containing one or more {{ path }}
//     spans gets one watcher per span; whenever any of them changes the
//     whole text is recomputed.
//
// Compile detaches the children of the mount node, processes the detached
// tree and re-attaches it in one pass. An attribute naming a directive with
// no registered handler fails the compile with an E020 error.
package compile
