package reactive

import (
	"testing"

	binderrors "github.com/vango-dev/vbind/internal/errors"
)

// testSubscriber counts updates and can be told to fail.
type testSubscriber struct {
	id      uint64
	updates int
	panics  bool
	log     *[]uint64
}

func newTestSubscriber(log *[]uint64) *testSubscriber {
	return &testSubscriber{id: NextID(), log: log}
}

func (s *testSubscriber) Update() error {
	s.updates++
	if s.log != nil {
		*s.log = append(*s.log, s.id)
	}
	if s.panics {
		panic("reaction exploded")
	}
	return nil
}

func (s *testSubscriber) ID() uint64 { return s.id }

// fakeSource is a flat key space where each key owns one Dep.
type fakeSource struct {
	deps    map[string]*Dep
	vals    map[string]any
	panicOn string
}

func newFakeSource(vals map[string]any) *fakeSource {
	f := &fakeSource{deps: map[string]*Dep{}, vals: vals}
	for k := range vals {
		f.deps[k] = NewDep()
	}
	return f
}

func (f *fakeSource) Resolve(expr string) any {
	if expr == f.panicOn {
		panic("resolve exploded")
	}
	if dep, ok := f.deps[expr]; ok {
		dep.Depend()
	}
	return f.vals[expr]
}

func (f *fakeSource) set(key string, v any) error {
	if Equal(f.vals[key], v) {
		return nil
	}
	f.vals[key] = v
	return f.deps[key].Notify()
}

func TestDepAddIsIdempotent(t *testing.T) {
	d := NewDep()
	s := newTestSubscriber(nil)

	d.Add(s)
	d.Add(s)
	d.Add(nil)

	if d.Len() != 1 {
		t.Errorf("Len() = %d, want 1", d.Len())
	}
	if !d.Has(s) {
		t.Error("Has() should report the registered subscriber")
	}
}

func TestDepNotifyOrder(t *testing.T) {
	var log []uint64
	d := NewDep()
	a, b, c := newTestSubscriber(&log), newTestSubscriber(&log), newTestSubscriber(&log)
	d.Add(b)
	d.Add(a)
	d.Add(c)

	if err := d.Notify(); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}

	want := []uint64{b.id, a.id, c.id}
	if len(log) != len(want) {
		t.Fatalf("notified %d subscribers, want %d", len(log), len(want))
	}
	for i := range want {
		if log[i] != want[i] {
			t.Errorf("notification %d went to %d, want %d", i, log[i], want[i])
		}
	}
}

func TestDepNotifyIsolatesFailures(t *testing.T) {
	d := NewDep()
	first := newTestSubscriber(nil)
	bad := newTestSubscriber(nil)
	bad.panics = true
	last := newTestSubscriber(nil)
	d.Add(first)
	d.Add(bad)
	d.Add(last)

	err := d.Notify()
	if err == nil {
		t.Fatal("Notify() should report the failing subscriber")
	}
	if !binderrors.HasCode(err, "E001") {
		t.Errorf("Notify() error = %v, want E001", err)
	}
	if first.updates != 1 || last.updates != 1 {
		t.Errorf("siblings updated %d/%d times, want 1/1", first.updates, last.updates)
	}
	if Active() != nil {
		t.Error("active slot should be empty after Notify")
	}
}

func TestDependWithoutActiveIsNoop(t *testing.T) {
	d := NewDep()
	d.Depend()
	if d.Len() != 0 {
		t.Errorf("Len() = %d, want 0", d.Len())
	}
}

func TestTrackRestoresOnPanic(t *testing.T) {
	s := newTestSubscriber(nil)

	func() {
		defer func() { _ = recover() }()
		Track(s, func() {
			if Active() != s {
				t.Error("Active() should be the tracked subscriber inside Track")
			}
			panic("boom")
		})
	}()

	if Active() != nil {
		t.Error("Active() should be nil after a panicking Track")
	}
}

func TestTrackNested(t *testing.T) {
	outer, inner := newTestSubscriber(nil), newTestSubscriber(nil)
	Track(outer, func() {
		Track(inner, func() {
			if Active() != inner {
				t.Error("inner subscriber should be active")
			}
		})
		if Active() != outer {
			t.Error("outer subscriber should be restored")
		}
	})
}

func TestUntracked(t *testing.T) {
	d := NewDep()
	s := newTestSubscriber(nil)
	Track(s, func() {
		Untracked(func() {
			d.Depend()
		})
	})
	if d.Has(s) {
		t.Error("reads inside Untracked must not register")
	}
}

func TestWatcherInitialEvaluation(t *testing.T) {
	src := newFakeSource(map[string]any{"a": 1, "b": 2})
	calls := 0

	w, err := NewWatcher(src, "a", func(any) { calls++ })
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}

	if w.Value() != 1 {
		t.Errorf("Value() = %v, want 1", w.Value())
	}
	if calls != 0 {
		t.Errorf("reaction ran %d times on construction, want 0", calls)
	}
	if !src.deps["a"].Has(w) {
		t.Error("watcher should be registered with the dep it read")
	}
	if src.deps["b"].Has(w) {
		t.Error("watcher must not be registered with deps it did not read")
	}
	if Active() != nil {
		t.Error("active slot should be empty after construction")
	}
}

func TestWatcherUpdate(t *testing.T) {
	src := newFakeSource(map[string]any{"a": "x"})
	var got []any

	w, err := NewWatcher(src, "a", func(v any) { got = append(got, v) })
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}

	if err := src.set("a", "y"); err != nil {
		t.Fatalf("set() error = %v", err)
	}
	if len(got) != 1 || got[0] != "y" {
		t.Fatalf("reactions = %v, want [y]", got)
	}
	if w.Value() != "y" {
		t.Errorf("Value() = %v, want y", w.Value())
	}

	// Direct update with an unchanged value is short-circuited.
	if err := w.Update(); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if len(got) != 1 {
		t.Errorf("reactions = %v, want no new reaction", got)
	}
}

func TestWatcherEqualWriteDoesNotReact(t *testing.T) {
	src := newFakeSource(map[string]any{"a": 5})
	calls := 0
	if _, err := NewWatcher(src, "a", func(any) { calls++ }); err != nil {
		t.Fatal(err)
	}

	// Force a notification without changing the value.
	if err := src.deps["a"].Notify(); err != nil {
		t.Fatal(err)
	}
	if calls != 0 {
		t.Errorf("reaction ran %d times, want 0", calls)
	}
}

func TestWatcherEvaluatePanic(t *testing.T) {
	src := newFakeSource(map[string]any{"a": 1})
	src.panicOn = "a"

	_, err := NewWatcher(src, "a", nil)
	if !binderrors.HasCode(err, "E002") {
		t.Fatalf("NewWatcher() error = %v, want E002", err)
	}
	if Active() != nil {
		t.Error("active slot must be cleared after a failed evaluation")
	}
}

func TestWatcherString(t *testing.T) {
	src := newFakeSource(map[string]any{"info": nil})
	w, err := NewWatcher(src, "info", nil)
	if err != nil {
		t.Fatal(err)
	}
	if w.String() != "watcher(info)" {
		t.Errorf("String() = %q", w.String())
	}
	if w.Expr() != "info" {
		t.Errorf("Expr() = %q", w.Expr())
	}
}

type countingObserver struct {
	created, notified, reacted, failed int
}

func (o *countingObserver) WatcherCreated(string)  { o.created++ }
func (o *countingObserver) Notified(int)           { o.notified++ }
func (o *countingObserver) Reacted(string)         { o.reacted++ }
func (o *countingObserver) SubscriberFailed(error) { o.failed++ }

func TestObserver(t *testing.T) {
	obs := &countingObserver{}
	restore := SetObserver(obs)
	defer restore()

	src := newFakeSource(map[string]any{"a": 1})
	if _, err := NewWatcher(src, "a", func(any) { panic("nope") }); err != nil {
		t.Fatal(err)
	}
	if _, err := NewWatcher(src, "a", func(any) {}); err != nil {
		t.Fatal(err)
	}

	_ = src.set("a", 2)

	if obs.created != 2 {
		t.Errorf("created = %d, want 2", obs.created)
	}
	if obs.notified != 1 {
		t.Errorf("notified = %d, want 1", obs.notified)
	}
	if obs.reacted != 1 {
		t.Errorf("reacted = %d, want 1", obs.reacted)
	}
	if obs.failed != 1 {
		t.Errorf("failed = %d, want 1", obs.failed)
	}
}

func TestSetObserverOutOfOrderRestore(t *testing.T) {
	first := &countingObserver{}
	second := &countingObserver{}

	restoreFirst := SetObserver(first)
	restoreSecond := SetObserver(second)

	restoreFirst()
	if currentObserver() != second {
		t.Fatal("restoring an already replaced observer must not uninstall the current one")
	}

	restoreSecond()
	if _, ok := currentObserver().(NopObserver); !ok {
		t.Errorf("after both restores observer = %T, want NopObserver", currentObserver())
	}
}

func TestEqual(t *testing.T) {
	m := map[string]any{"a": 1}
	s := []int{1, 2}
	p := &struct{ X int }{1}

	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"nil nil", nil, nil, true},
		{"nil vs value", nil, 0, false},
		{"same int", 1, 1, true},
		{"different int", 1, 2, false},
		{"different types", 1, "1", false},
		{"same string", "x", "x", true},
		{"same map", m, m, true},
		{"equal but distinct maps", m, map[string]any{"a": 1}, false},
		{"same slice", s, s, true},
		{"resliced", s, s[:1], false},
		{"same pointer", p, p, true},
		{"distinct pointers", p, &struct{ X int }{1}, false},
		{"struct values", struct{ X int }{1}, struct{ X int }{1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
