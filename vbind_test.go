package vbind

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/vbind/internal/errors"
	"github.com/vango-dev/vbind/pkg/dom"
	"github.com/vango-dev/vbind/pkg/source"
)

func mustDoc(t *testing.T, src string) *dom.Document {
	t.Helper()
	doc, err := dom.ParseString(src)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	return doc
}

func mustHTML(t *testing.T, vm *VM) string {
	t.Helper()
	out, err := vm.HTML()
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	return out
}

func TestNewRendersAndReacts(t *testing.T) {
	doc := mustDoc(t, `<div id="app"><p>{{user.name}} is {{age}}</p><span v-text="age"></span></div>`)
	vm, err := New(doc, map[string]any{
		"user": map[string]any{"name": "Ann"},
		"age":  30,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer vm.Close()

	if got, want := mustHTML(t, vm), `<p>Ann is 30</p><span v-text="age">30</span>`; got != want {
		t.Errorf("initial HTML = %q, want %q", got, want)
	}
	if len(vm.Watchers()) != 3 {
		t.Errorf("Watchers() = %d, want 3", len(vm.Watchers()))
	}

	if err := vm.Set("age", 31); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := vm.Set("user.name", "Bo"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got, want := mustHTML(t, vm), `<p>Bo is 31</p><span v-text="age">31</span>`; got != want {
		t.Errorf("updated HTML = %q, want %q", got, want)
	}
	if vm.Get("user.name") != "Bo" {
		t.Errorf("Get(user.name) = %v", vm.Get("user.name"))
	}
}

func TestInputWritesBack(t *testing.T) {
	doc := mustDoc(t, `<div id="app"><input v-model="msg"/><p>{{msg}}</p></div>`)
	vm, err := New(doc, map[string]any{"msg": "hello"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer vm.Close()

	if len(vm.Targets()) != 1 {
		t.Fatalf("Targets() = %d, want 1", len(vm.Targets()))
	}
	if v, _ := dom.Attr(vm.Targets()[0], "value"); v != "hello" {
		t.Errorf("initial value attr = %q, want hello", v)
	}

	if err := vm.Input(0, "hi"); err != nil {
		t.Fatalf("Input: %v", err)
	}
	if vm.Get("msg") != "hi" {
		t.Errorf("msg = %v, want hi", vm.Get("msg"))
	}
	out := mustHTML(t, vm)
	if !strings.Contains(out, "<p>hi</p>") || !strings.Contains(out, `value="hi"`) {
		t.Errorf("HTML after input = %q", out)
	}

	if err := vm.Input(3, "x"); !errors.HasCode(err, "E081") {
		t.Errorf("Input out of range = %v, want E081", err)
	}
}

func TestNewMountErrors(t *testing.T) {
	doc := mustDoc(t, `<div id="root">{{a}}</div>`)
	if _, err := New(doc, nil); !errors.HasCode(err, "E021") {
		t.Errorf("missing mount = %v, want E021", err)
	}
	if _, err := New(nil, nil); !errors.HasCode(err, "E021") {
		t.Errorf("nil document = %v, want E021", err)
	}

	vm, err := New(doc, map[string]any{"a": "x"}, WithMount("#root"))
	if err != nil {
		t.Fatalf("New WithMount: %v", err)
	}
	defer vm.Close()
	if got := mustHTML(t, vm); got != "x" {
		t.Errorf("HTML = %q, want x", got)
	}
}

func TestNewUnknownDirective(t *testing.T) {
	doc := mustDoc(t, `<div id="app"><input v-modle="name"/></div>`)
	_, err := New(doc, map[string]any{"name": "a"})
	if !errors.HasCode(err, "E020") {
		t.Fatalf("New = %v, want E020", err)
	}
}

func TestNewCustomPrefix(t *testing.T) {
	doc := mustDoc(t, `<main><b x-text="n"></b><i v-text="n"></i></main>`)
	vm, err := New(doc, map[string]any{"n": 1}, WithMount("main"), WithPrefix("x-"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer vm.Close()
	if got, want := mustHTML(t, vm), `<b x-text="n">1</b><i v-text="n"></i>`; got != want {
		t.Errorf("HTML = %q, want %q", got, want)
	}
}

type countingObserver struct {
	created, notified, reacted, failed int
	compiles, bindings                 int
}

func (o *countingObserver) WatcherCreated(string)  { o.created++ }
func (o *countingObserver) Notified(int)           { o.notified++ }
func (o *countingObserver) Reacted(string)         { o.reacted++ }
func (o *countingObserver) SubscriberFailed(error) { o.failed++ }

func (o *countingObserver) ObserveCompile(_ time.Duration, bindings int) {
	o.compiles++
	o.bindings = bindings
}

func TestWithObserver(t *testing.T) {
	obs := &countingObserver{}
	doc := mustDoc(t, `<div id="app"><span v-text="n"></span>{{n}}</div>`)
	vm, err := New(doc, map[string]any{"n": 1}, WithObserver(obs))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if obs.created != 2 {
		t.Errorf("created = %d, want 2", obs.created)
	}
	if obs.compiles != 1 || obs.bindings != 2 {
		t.Errorf("compiles/bindings = %d/%d, want 1/2", obs.compiles, obs.bindings)
	}

	if err := vm.Set("n", 2); err != nil {
		t.Fatal(err)
	}
	if obs.notified != 1 || obs.reacted != 2 {
		t.Errorf("notified/reacted = %d/%d, want 1/2", obs.notified, obs.reacted)
	}

	vm.Close()
	if err := vm.Set("n", 3); err != nil {
		t.Fatal(err)
	}
	if obs.notified != 1 {
		t.Errorf("observer still installed after Close: notified = %d", obs.notified)
	}
}

func TestCloseOutOfOrder(t *testing.T) {
	first, second := &countingObserver{}, &countingObserver{}
	vm1, err := New(mustDoc(t, `<div id="app">{{n}}</div>`), map[string]any{"n": 1}, WithObserver(first))
	if err != nil {
		t.Fatal(err)
	}
	vm2, err := New(mustDoc(t, `<div id="app">{{n}}</div>`), map[string]any{"n": 1}, WithObserver(second))
	if err != nil {
		t.Fatal(err)
	}
	defer vm2.Close()

	vm1.Close()
	if err := vm2.Set("n", 2); err != nil {
		t.Fatal(err)
	}
	if second.notified != 1 || first.notified != 0 {
		t.Errorf("notified first/second = %d/%d, want 0/1", first.notified, second.notified)
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	tmpl := filepath.Join(dir, "index.html")
	data := filepath.Join(dir, "data.yaml")
	if err := os.WriteFile(tmpl, []byte(`<div id="app">{{title}} ({{items.0}})</div>`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(data, []byte("title: Todo\nitems: [milk, eggs]\n"), 0644); err != nil {
		t.Fatal(err)
	}

	vm, err := Open(context.Background(), source.FileLoader{}, tmpl, data)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer vm.Close()
	if got := mustHTML(t, vm); got != "Todo (milk)" {
		t.Errorf("HTML = %q, want %q", got, "Todo (milk)")
	}

	if _, err := Open(context.Background(), source.FileLoader{}, filepath.Join(dir, "missing.html"), ""); !errors.HasCode(err, "E040") {
		t.Errorf("missing template = %v, want E040", err)
	}
}
