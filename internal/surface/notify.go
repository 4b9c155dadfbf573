package surface

// Notifier coalesces board change notifications into at most one pending
// wake-up. Notify never blocks, so it can be passed to WithNotify and
// called with the engine lock held.
type Notifier struct {
	ch chan struct{}
}

// NewNotifier returns a ready Notifier.
func NewNotifier() *Notifier {
	return &Notifier{ch: make(chan struct{}, 1)}
}

// Notify records that something changed.
func (n *Notifier) Notify() {
	select {
	case n.ch <- struct{}{}:
	default:
	}
}

// C is the wake-up channel.
func (n *Notifier) C() <-chan struct{} {
	return n.ch
}
