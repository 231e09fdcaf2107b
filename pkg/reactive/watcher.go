package reactive

import (
	"fmt"

	binderrors "github.com/vango-dev/vbind/internal/errors"
)

// Source resolves a dot-separated expression. Reads performed while
// resolving must call Depend on the Dep of every property they touch.
type Source interface {
	Resolve(expr string) any
}

// Watcher is a subscriber bound to one expression against a Source.
//
// Lifecycle: constructed, evaluated once for the baseline, then idle until a
// Dep notifies it. On notification it re-evaluates and, if the value
// differs from the cached one, stores the new value and runs its reaction.
type Watcher struct {
	id     uint64
	source Source
	expr   string
	react  func(newValue any)

	// value is the last observed value.
	value any
}

// NewWatcher creates a watcher over expr and performs the initial
// evaluation, registering the watcher with every Dep the expression
// touches. The reaction is not called for the initial value.
func NewWatcher(src Source, expr string, react func(newValue any)) (*Watcher, error) {
	w := &Watcher{
		id:     NextID(),
		source: src,
		expr:   expr,
		react:  react,
	}

	v, err := w.Evaluate()
	if err != nil {
		return nil, err
	}
	w.value = v
	currentObserver().WatcherCreated(expr)
	return w, nil
}

// Evaluate resolves the expression with this watcher installed as the
// evaluating subscriber. A panic in the source is returned as an E002
// error; the evaluating slot is restored either way.
func (w *Watcher) Evaluate() (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			v = nil
			err = binderrors.New("E002").
				WithDetail(w.String()).
				Wrap(fmt.Errorf("panic: %v", r))
		}
	}()

	Track(w, func() {
		v = w.source.Resolve(w.expr)
	})
	return v, nil
}

// Update re-evaluates the expression and runs the reaction if the value
// changed. Implements Subscriber.
func (w *Watcher) Update() error {
	newValue, err := w.Evaluate()
	if err != nil {
		return err
	}
	if Equal(newValue, w.value) {
		return nil
	}

	w.value = newValue
	if w.react != nil {
		w.react(newValue)
	}
	currentObserver().Reacted(w.expr)
	return nil
}

// ID returns the unique identifier of this watcher. Implements Subscriber.
func (w *Watcher) ID() uint64 {
	return w.id
}

// Expr returns the watched expression.
func (w *Watcher) Expr() string {
	return w.expr
}

// Value returns the last observed value.
func (w *Watcher) Value() any {
	return w.value
}

// String implements fmt.Stringer.
func (w *Watcher) String() string {
	return fmt.Sprintf("watcher(%s)", w.expr)
}
