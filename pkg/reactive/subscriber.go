package reactive

// Subscriber is anything that can be registered with a Dep and notified
// when the property it depends on changes.
type Subscriber interface {
	// Update is called synchronously after the dependency changed.
	Update() error

	// ID returns a unique identifier used for set semantics in Dep.
	ID() uint64
}
