package pubsub

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPublishReachesAllSubscribers(t *testing.T) {
	b := NewBus()

	var first, second []Event
	b.Subscribe(func(e Event) { first = append(first, e) })
	b.Subscribe(func(e Event) { second = append(second, e) })

	b.Publish(CartChanged)
	b.Publish(SessionChanged)

	require.Equal(t, []Event{CartChanged, SessionChanged}, first)
	require.Equal(t, []Event{CartChanged, SessionChanged}, second)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := NewBus()

	var got int
	unsubscribe := b.Subscribe(func(Event) { got++ })

	b.Publish(CartChanged)
	unsubscribe()
	b.Publish(CartChanged)

	require.Equal(t, 1, got)
}

func TestHandlerMayUnsubscribeItself(t *testing.T) {
	b := NewBus()

	var got int
	var unsubscribe func()
	unsubscribe = b.Subscribe(func(Event) {
		got++
		unsubscribe()
	})

	b.Publish(CartChanged)
	b.Publish(CartChanged)

	require.Equal(t, 1, got)
}

func TestPublishWithNoSubscribers(t *testing.T) {
	b := NewBus()
	b.Publish(CartChanged) // must not panic
}
