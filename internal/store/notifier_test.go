package store

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcallahan/tastemap/internal/domain"
)

func TestNotifierFansOutToAllSubscribers(t *testing.T) {
	n := newNotifier(slog.Default())

	a, cancelA := n.subscribe()
	defer cancelA()
	b, cancelB := n.subscribe()
	defer cancelB()

	n.publish(domain.ChangeEvent{Kind: domain.ChangeInsert, Key: "r1"})

	assert.Equal(t, "r1", (<-a).Key)
	assert.Equal(t, "r1", (<-b).Key)
}

func TestNotifierCancelStopsDelivery(t *testing.T) {
	n := newNotifier(slog.Default())

	ch, cancel := n.subscribe()
	cancel()

	// Publishing after cancellation must not panic; the channel is closed.
	n.publish(domain.ChangeEvent{Kind: domain.ChangeDelete, Key: "r1"})

	_, open := <-ch
	assert.False(t, open)
}

func TestNotifierCancelIsIdempotent(t *testing.T) {
	n := newNotifier(slog.Default())

	_, cancel := n.subscribe()
	cancel()
	cancel()
}

func TestNotifierDropsForSlowSubscriber(t *testing.T) {
	n := newNotifier(slog.Default())

	ch, cancel := n.subscribe()
	defer cancel()

	for i := 0; i < subscriberBuffer+10; i++ {
		n.publish(domain.ChangeEvent{Kind: domain.ChangeInsert, Key: "r1"})
	}

	// The buffer is full; the overflow was dropped rather than blocking the
	// publisher.
	delivered := 0
	for len(ch) > 0 {
		<-ch
		delivered++
	}
	assert.Equal(t, subscriberBuffer, delivered)
}

func TestNotifierCloseClosesSubscribers(t *testing.T) {
	n := newNotifier(slog.Default())

	ch, _ := n.subscribe()
	n.close()

	_, open := <-ch
	require.False(t, open)

	// A subscription taken after close is immediately closed.
	late, _ := n.subscribe()
	_, open = <-late
	assert.False(t, open)
}
