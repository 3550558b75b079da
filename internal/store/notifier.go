package store

import (
	"log/slog"
	"sync"

	"github.com/jcallahan/tastemap/internal/domain"
)

// subscriberBuffer bounds how many undelivered events a subscriber may
// accumulate before further events are dropped for it.
const subscriberBuffer = 64

// notifier fans change events out to subscribers. Publishing never blocks: a
// subscriber that falls more than subscriberBuffer events behind loses events,
// which the at-least-once contract permits consumers to tolerate anyway.
type notifier struct {
	mu     sync.Mutex
	subs   map[int]chan domain.ChangeEvent
	nextID int
	closed bool
	logger *slog.Logger
}

func newNotifier(logger *slog.Logger) *notifier {
	return &notifier{
		subs:   make(map[int]chan domain.ChangeEvent),
		logger: logger,
	}
}

func (n *notifier) subscribe() (<-chan domain.ChangeEvent, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	ch := make(chan domain.ChangeEvent, subscriberBuffer)
	if n.closed {
		close(ch)
		return ch, func() {}
	}

	id := n.nextID
	n.nextID++
	n.subs[id] = ch

	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if sub, ok := n.subs[id]; ok {
			delete(n.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

func (n *notifier) publish(ev domain.ChangeEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for id, sub := range n.subs {
		select {
		case sub <- ev:
		default:
			n.logger.Warn("dropping change event for slow subscriber",
				"subscriber", id, "kind", ev.Kind, "key", ev.Key)
		}
	}
}

func (n *notifier) close() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return
	}
	n.closed = true
	for id, sub := range n.subs {
		delete(n.subs, id)
		close(sub)
	}
}
