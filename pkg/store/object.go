package store

import (
	"sort"
	"sync"

	"github.com/vango-dev/vbind/pkg/reactive"
)

// slot is one intercepted property: its value and its subscriber set.
type slot struct {
	value any
	dep   *reactive.Dep
}

// Object is an observable key/value node.
type Object struct {
	slots map[string]*slot

	// mu protects slots. Values are replaced under the lock but
	// notification always runs after it is released.
	mu sync.RWMutex
}

// Wrap builds an Object from data, recursively wrapping nested
// map[string]any values. Every key present in data gets a tracked slot.
func Wrap(data map[string]any) *Object {
	o := &Object{slots: make(map[string]*slot, len(data))}
	for k, v := range data {
		o.slots[k] = &slot{value: wrapValue(v), dep: reactive.NewDep()}
	}
	return o
}

func wrapValue(v any) any {
	if m, ok := v.(map[string]any); ok && m != nil {
		return Wrap(m)
	}
	return v
}

// Get returns the value stored under key and registers the evaluating
// watcher with the key's Dep. Missing keys return (nil, false) and register
// nothing.
func (o *Object) Get(key string) (any, bool) {
	o.mu.RLock()
	s, ok := o.slots[key]
	o.mu.RUnlock()
	if !ok {
		return nil, false
	}

	s.dep.Depend()
	return s.value, true
}

// Peek returns the value stored under key without registering anything.
func (o *Object) Peek(key string) (any, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	s, ok := o.slots[key]
	if !ok {
		return nil, false
	}
	return s.value, true
}

// Set stores v under key. If v differs from the current value (see
// reactive.Equal) the key's subscribers are notified synchronously, in
// registration order; writing the current value is a no-op.
//
// v is stored as given; nested maps are not wrapped. A key that did not
// exist gets a new slot with an empty subscriber set.
func (o *Object) Set(key string, v any) error {
	o.mu.Lock()
	s, ok := o.slots[key]
	if !ok {
		o.slots[key] = &slot{value: v, dep: reactive.NewDep()}
		o.mu.Unlock()
		return nil
	}
	if reactive.Equal(s.value, v) {
		o.mu.Unlock()
		return nil
	}
	s.value = v
	o.mu.Unlock()

	return s.dep.Notify()
}

// Dep returns the subscriber set of key, or nil if key does not exist.
func (o *Object) Dep(key string) *reactive.Dep {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if s, ok := o.slots[key]; ok {
		return s.dep
	}
	return nil
}

// Has reports whether key exists.
func (o *Object) Has(key string) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	_, ok := o.slots[key]
	return ok
}

// Keys returns the keys in sorted order.
func (o *Object) Keys() []string {
	o.mu.RLock()
	keys := make([]string, 0, len(o.slots))
	for k := range o.slots {
		keys = append(keys, k)
	}
	o.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

// Len returns the number of keys.
func (o *Object) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.slots)
}

// Snapshot returns a plain, untracked copy of the object tree.
func (o *Object) Snapshot() map[string]any {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make(map[string]any, len(o.slots))
	for k, s := range o.slots {
		if child, ok := s.value.(*Object); ok {
			out[k] = child.Snapshot()
			continue
		}
		out[k] = s.value
	}
	return out
}

// String implements fmt.Stringer so objects render predictably in text.
func (o *Object) String() string {
	return "[object]"
}
