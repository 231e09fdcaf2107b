package store

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/vango-dev/vbind/pkg/reactive"
)

var (
	// ErrNotObject is returned when an assignment path runs through a value
	// that cannot hold keys.
	ErrNotObject = errors.New("store: path does not resolve to an object")

	// ErrEmptyPath is returned for empty expressions or empty segments.
	ErrEmptyPath = errors.New("store: empty path")
)

// Store is the root of an observable object tree. It implements
// reactive.Source, so watchers can be bound to dot-separated paths.
type Store struct {
	root *Object
}

// New wraps data into a Store. A nil map yields an empty store.
func New(data map[string]any) *Store {
	if data == nil {
		data = map[string]any{}
	}
	return &Store{root: Wrap(data)}
}

// Root returns the root object.
func (s *Store) Root() *Object {
	return s.root
}

// Resolve walks expr segment by segment from the root. Every tracked read
// along the way registers the evaluating watcher. A missing or non-indexable
// intermediate value resolves to nil rather than failing.
func (s *Store) Resolve(expr string) any {
	var cur any = s.root
	for _, seg := range strings.Split(expr, ".") {
		cur = index(cur, seg)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// Assign writes v at expr. It descends to the parent of the last segment
// and sets the final key there, which notifies that key's subscribers.
func (s *Store) Assign(expr string, v any) error {
	segs, err := Split(expr)
	if err != nil {
		return err
	}

	var parent any = s.root
	for _, seg := range segs[:len(segs)-1] {
		parent = index(parent, seg)
	}

	last := segs[len(segs)-1]
	switch p := parent.(type) {
	case *Object:
		return p.Set(last, v)
	case map[string]any:
		// A plain map assigned after wrapping: written but not observed.
		p[last] = v
		return nil
	default:
		return fmt.Errorf("assign %q: %w", expr, ErrNotObject)
	}
}

// Dep returns the subscriber set of the property expr names, or nil if the
// path does not end in a tracked property. Reads are untracked.
func (s *Store) Dep(expr string) *reactive.Dep {
	segs, err := Split(expr)
	if err != nil {
		return nil
	}

	var parent any
	reactive.Untracked(func() {
		parent = s.root
		for _, seg := range segs[:len(segs)-1] {
			parent = index(parent, seg)
		}
	})

	if obj, ok := parent.(*Object); ok {
		return obj.Dep(segs[len(segs)-1])
	}
	return nil
}

// Watch creates a watcher over expr whose reaction is fn.
func (s *Store) Watch(expr string, fn func(newValue any)) (*reactive.Watcher, error) {
	return reactive.NewWatcher(s, expr, fn)
}

// Snapshot returns a plain, untracked copy of the whole tree.
func (s *Store) Snapshot() map[string]any {
	return s.root.Snapshot()
}

// Split splits a dot-separated expression and rejects empty segments.
func Split(expr string) ([]string, error) {
	if expr == "" {
		return nil, ErrEmptyPath
	}
	segs := strings.Split(expr, ".")
	for _, seg := range segs {
		if seg == "" {
			return nil, fmt.Errorf("%q: %w", expr, ErrEmptyPath)
		}
	}
	return segs, nil
}

// index reads one segment from cur. Objects are tracked; plain maps and
// slices are read directly.
func index(cur any, seg string) any {
	switch c := cur.(type) {
	case nil:
		return nil
	case *Object:
		v, _ := c.Get(seg)
		return v
	case map[string]any:
		return c[seg]
	}

	rv := reflect.ValueOf(cur)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		i, err := strconv.Atoi(seg)
		if err != nil || i < 0 || i >= rv.Len() {
			return nil
		}
		return rv.Index(i).Interface()
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil
		}
		v := rv.MapIndex(reflect.ValueOf(seg).Convert(rv.Type().Key()))
		if !v.IsValid() {
			return nil
		}
		return v.Interface()
	}
	return nil
}
