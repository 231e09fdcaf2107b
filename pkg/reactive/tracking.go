package reactive

// active is the subscriber currently evaluating, or nil.
// It is non-nil only for the synchronous extent of Track.
var active Subscriber

// Active returns the subscriber currently evaluating, or nil when no
// evaluation is in progress.
func Active() Subscriber {
	return active
}

// setActive installs s as the evaluating subscriber and returns the
// previous one so it can be restored.
func setActive(s Subscriber) Subscriber {
	old := active
	active = s
	return old
}

// Track runs fn with s installed as the evaluating subscriber. Every Dep
// whose Depend is called during fn registers s. The previous subscriber is
// restored on return, including when fn panics.
func Track(s Subscriber, fn func()) {
	old := setActive(s)
	defer setActive(old)
	fn()
}

// Untracked runs fn with no evaluating subscriber, so reads inside fn do
// not create dependencies.
func Untracked(fn func()) {
	Track(nil, fn)
}
