package reactive

import (
	"sync"
	"sync/atomic"
)

// Observer receives engine events. It is used for metrics and must not
// call back into the engine.
type Observer interface {
	// WatcherCreated is called after a watcher's initial evaluation.
	WatcherCreated(expr string)

	// Notified is called once per Dep.Notify with the subscriber count.
	Notified(subscribers int)

	// Reacted is called after a watcher ran its reaction.
	Reacted(expr string)

	// SubscriberFailed is called for every isolated subscriber failure.
	SubscriberFailed(err error)
}

// NopObserver ignores all events.
type NopObserver struct{}

func (NopObserver) WatcherCreated(string)  {}
func (NopObserver) Notified(int)           {}
func (NopObserver) Reacted(string)         {}
func (NopObserver) SubscriberFailed(error) {}

type observerBox struct{ o Observer }

var (
	observer atomic.Pointer[observerBox]

	// installed holds every observer not yet restored, oldest first.
	installedMu sync.Mutex
	installed   []*observerBox
)

// SetObserver installs o as the process-wide observer and returns a
// function that uninstalls it. A nil o installs NopObserver.
//
// The current observer is always the most recently installed one that has
// not been uninstalled, so restores may be called in any order.
func SetObserver(o Observer) (restore func()) {
	if o == nil {
		o = NopObserver{}
	}
	box := &observerBox{o: o}

	installedMu.Lock()
	installed = append(installed, box)
	observer.Store(box)
	installedMu.Unlock()

	return func() {
		installedMu.Lock()
		defer installedMu.Unlock()
		for i, b := range installed {
			if b == box {
				installed = append(installed[:i], installed[i+1:]...)
				break
			}
		}
		if len(installed) == 0 {
			observer.Store(nil)
			return
		}
		observer.Store(installed[len(installed)-1])
	}
}

func currentObserver() Observer {
	if box := observer.Load(); box != nil {
		return box.o
	}
	return NopObserver{}
}
