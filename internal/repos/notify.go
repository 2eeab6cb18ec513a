package repos

import "sync"

// notifier fans a commit signal out to live-query subscribers. Signals are
// coalesced: each subscriber channel holds at most one pending tick, so a
// slow consumer re-queries once and observes only the latest state.
type notifier struct {
	mu   sync.Mutex
	subs map[chan struct{}]struct{}
}

func newNotifier() *notifier {
	return &notifier{subs: make(map[chan struct{}]struct{})}
}

func (n *notifier) subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	n.mu.Lock()
	n.subs[ch] = struct{}{}
	n.mu.Unlock()
	cancel := func() {
		n.mu.Lock()
		delete(n.subs, ch)
		n.mu.Unlock()
	}
	return ch, cancel
}

func (n *notifier) broadcast() {
	n.mu.Lock()
	for ch := range n.subs {
		select {
		case ch <- struct{}{}:
		default: // a tick is already pending
		}
	}
	n.mu.Unlock()
}

// Notify carries the per-table commit signals. The composition root builds
// one and hands it to every repo so writers and watchers share channels.
type Notify struct {
	Products *notifier
	Cart     *notifier
	Orders   *notifier
}

func NewNotify() *Notify {
	return &Notify{Products: newNotifier(), Cart: newNotifier(), Orders: newNotifier()}
}
