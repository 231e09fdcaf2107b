// Package vbind provides the public entry point for the vbind data-binding
// engine.
//
// This is the recommended import for most applications:
//
//	import "github.com/vango-dev/vbind"
//
// Usage:
//
//	doc, _ := dom.ParseString(`<div id="app"><input v-model="msg"> {{msg}}</div>`)
//	vm, err := vbind.New(doc, map[string]any{"msg": "hello"})
//	if err != nil {
//	    return err
//	}
//	vm.Set("msg", "hi")
//	out, _ := vm.HTML()
package vbind

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/net/html"

	"github.com/vango-dev/vbind/internal/errors"
	"github.com/vango-dev/vbind/pkg/compile"
	"github.com/vango-dev/vbind/pkg/dom"
	"github.com/vango-dev/vbind/pkg/reactive"
	"github.com/vango-dev/vbind/pkg/source"
	"github.com/vango-dev/vbind/pkg/store"
)

// DefaultMount is the selector of the element compiled when no mount is given.
const DefaultMount = "#app"

// VM binds one store to one mounted document subtree.
//
// A VM is not safe for concurrent use. Callers that share one across
// goroutines serialize access themselves.
type VM struct {
	store   *store.Store
	doc     *dom.Document
	mount   *html.Node
	result  *compile.Result
	logger  *slog.Logger
	restore func()
}

// New wraps data into a store, finds the mount element in doc and compiles
// it. A nil data map starts from an empty store.
func New(doc *dom.Document, data map[string]any, opts ...Option) (*VM, error) {
	return NewContext(context.Background(), doc, data, opts...)
}

// NewContext is New with a context for the compile span.
func NewContext(ctx context.Context, doc *dom.Document, data map[string]any, opts ...Option) (*VM, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if doc == nil || doc.Root() == nil {
		return nil, errors.New("E021").Wrap(dom.ErrNoDocument)
	}
	mount := doc.Find(cfg.mount)
	if mount == nil {
		return nil, errors.New("E021").
			WithDetail("No element matches " + cfg.mount).
			WithSuggestion("Add id=\"" + trimHash(cfg.mount) + "\" to the root element or pass WithMount")
	}

	vm := &VM{
		store:  store.New(data),
		doc:    doc,
		mount:  mount,
		logger: cfg.logger,
	}
	if cfg.observer != nil {
		vm.restore = reactive.SetObserver(cfg.observer)
	}

	copts := []compile.Option{
		compile.WithPrefix(cfg.prefix),
		compile.WithLogger(cfg.logger),
	}
	if cfg.tracer != nil {
		copts = append(copts, compile.WithTracer(cfg.tracer))
	}
	if r, ok := cfg.observer.(compile.Recorder); ok && cfg.recorder == nil {
		cfg.recorder = r
	}
	if cfg.recorder != nil {
		copts = append(copts, compile.WithRecorder(cfg.recorder))
	}

	res, err := compile.New(vm.store, doc, copts...).Compile(ctx, mount)
	vm.result = res
	if err != nil {
		vm.Close()
		return nil, err
	}
	return vm, nil
}

// Open loads a template and an optional data document through loader and
// mounts them. An empty dataURI starts from an empty store.
func Open(ctx context.Context, loader source.Loader, templateURI, dataURI string, opts ...Option) (*VM, error) {
	raw, err := loader.Load(ctx, templateURI)
	if err != nil {
		return nil, err
	}
	doc, err := dom.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.New("E022").
			WithLocation(templateURI, 0, 0).
			Wrap(err)
	}

	var data map[string]any
	if dataURI != "" {
		rawData, err := loader.Load(ctx, dataURI)
		if err != nil {
			return nil, err
		}
		if data, err = source.DecodeData(dataURI, rawData); err != nil {
			return nil, err
		}
	}
	return NewContext(ctx, doc, data, opts...)
}

// Store returns the observable store.
func (vm *VM) Store() *store.Store {
	return vm.store
}

// Document returns the bound document.
func (vm *VM) Document() *dom.Document {
	return vm.doc
}

// Mount returns the compiled mount element.
func (vm *VM) Mount() *html.Node {
	return vm.mount
}

// Watchers returns the watchers created by the compile, in creation order.
func (vm *VM) Watchers() []*reactive.Watcher {
	if vm.result == nil {
		return nil
	}
	return vm.result.Watchers
}

// Get resolves a dotted path without registering a dependency.
func (vm *VM) Get(path string) any {
	var v any
	reactive.Untracked(func() {
		v = vm.store.Resolve(path)
	})
	return v
}

// Set assigns a value at a dotted path. Failures of individual reactions
// are isolated and returned joined.
func (vm *VM) Set(path string, value any) error {
	err := vm.store.Assign(path, value)
	if err != nil {
		vm.logger.Error("set failed", "path", path, "error", err)
	}
	return err
}

// Targets returns the model-bound input nodes in document order.
func (vm *VM) Targets() []*html.Node {
	return vm.doc.Targets()
}

// Input simulates the user changing the value of the target-th model-bound
// node, as numbered by Targets.
func (vm *VM) Input(target int, value string) error {
	targets := vm.doc.Targets()
	if target < 0 || target >= len(targets) {
		return errors.New("E081").
			WithDetail(fmt.Sprintf("target %d out of range (%d inputs)", target, len(targets)))
	}
	_, err := vm.doc.Dispatch(targets[target], value)
	return err
}

// HTML renders the inner HTML of the mount element.
func (vm *VM) HTML() (string, error) {
	return dom.InnerHTML(vm.mount)
}

// Close uninstalls this VM's observer. VMs may be closed in any order.
func (vm *VM) Close() {
	if vm.restore != nil {
		vm.restore()
		vm.restore = nil
	}
}

func trimHash(selector string) string {
	if len(selector) > 0 && selector[0] == '#' {
		return selector[1:]
	}
	return selector
}
