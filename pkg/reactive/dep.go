package reactive

import (
	"errors"
	"fmt"
	"sync"

	binderrors "github.com/vango-dev/vbind/internal/errors"
)

// Dep is the subscriber set of one observable property.
//
// Subscribers are kept in registration order and deduplicated by ID.
// Dep holds back-references only; it never owns its subscribers.
type Dep struct {
	id uint64

	subs  []Subscriber
	index map[uint64]struct{}

	// mu protects subs and index.
	mu sync.RWMutex
}

// NewDep creates an empty Dep.
func NewDep() *Dep {
	return &Dep{
		id:    NextID(),
		index: make(map[uint64]struct{}),
	}
}

// ID returns the unique identifier of this Dep.
func (d *Dep) ID() uint64 {
	return d.id
}

// Add registers s. Adding the same subscriber twice is a no-op.
func (d *Dep) Add(s Subscriber) {
	if s == nil {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	sid := s.ID()
	if _, ok := d.index[sid]; ok {
		return
	}
	d.index[sid] = struct{}{}
	d.subs = append(d.subs, s)
}

// Depend registers the currently evaluating subscriber, if any.
func (d *Dep) Depend() {
	if s := Active(); s != nil {
		d.Add(s)
	}
}

// Has reports whether s is registered.
func (d *Dep) Has(s Subscriber) bool {
	if s == nil {
		return false
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.index[s.ID()]
	return ok
}

// Len returns the number of registered subscribers.
func (d *Dep) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.subs)
}

// Subscribers returns a copy of the subscribers in registration order.
func (d *Dep) Subscribers() []Subscriber {
	d.mu.RLock()
	defer d.mu.RUnlock()
	subs := make([]Subscriber, len(d.subs))
	copy(subs, d.subs)
	return subs
}

// Notify calls Update on every subscriber in registration order.
//
// A subscriber that fails, by returning an error or panicking, does not
// stop the others from being notified. All failures are returned joined.
func (d *Dep) Notify() error {
	subs := d.Subscribers()
	obs := currentObserver()
	obs.Notified(len(subs))

	var errs []error
	for _, s := range subs {
		if err := safeUpdate(s); err != nil {
			obs.SubscriberFailed(err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// safeUpdate runs s.Update, turning a panic into an E001 error.
func safeUpdate(s Subscriber) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = binderrors.New("E001").
				WithDetail(describe(s)).
				Wrap(fmt.Errorf("panic: %v", r))
		}
	}()
	return s.Update()
}

func describe(s Subscriber) string {
	if str, ok := s.(fmt.Stringer); ok {
		return str.String()
	}
	return fmt.Sprintf("subscriber #%d", s.ID())
}
