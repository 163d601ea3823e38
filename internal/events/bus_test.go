package events

import (
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guildradar/core/internal/domain"
)

func newTestBus() *Bus {
	return NewBus(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type captureSubscriber struct {
	mu     sync.Mutex
	events []Event
}

func (c *captureSubscriber) OnEvent(event Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.events = append(c.events, event)
}

func (c *captureSubscriber) seen() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Event, len(c.events))
	copy(out, c.events)

	return out
}

type panickySubscriber struct{}

func (panickySubscriber) OnEvent(Event) { panic("handler blew up") }

func TestBus_PublishDeliversInOrder(t *testing.T) {
	bus := newTestBus()
	sub := &captureSubscriber{}
	bus.Subscribe(sub)

	bus.Publish(UserLoggedOut{})
	bus.Publish(DataCleared{})
	bus.Publish(DataRefreshCompleted{Success: true})

	seen := sub.seen()
	require.Len(t, seen, 3)
	assert.Equal(t, "user_logged_out", seen[0].EventType())
	assert.Equal(t, "data_cleared", seen[1].EventType())
	assert.Equal(t, "data_refresh_completed", seen[2].EventType())
}

func TestBus_EventPayloadsSurvivedDelivery(t *testing.T) {
	bus := newTestBus()
	sub := &captureSubscriber{}
	bus.Subscribe(sub)

	bus.Publish(UserDataUpdated{User: domain.User{ID: "u1", Username: "alpha"}})

	seen := sub.seen()
	require.Len(t, seen, 1)
	updated, ok := seen[0].(UserDataUpdated)
	require.True(t, ok)
	assert.Equal(t, domain.UserID("u1"), updated.User.ID)
}

func TestBus_SubscribeTwiceIsNoOp(t *testing.T) {
	bus := newTestBus()
	sub := &captureSubscriber{}
	bus.Subscribe(sub)
	bus.Subscribe(sub)

	bus.Publish(DataCleared{})

	assert.Len(t, sub.seen(), 1)
}

func TestBus_UnsubscribeStopsDelivery(t *testing.T) {
	bus := newTestBus()
	sub := &captureSubscriber{}
	bus.Subscribe(sub)

	bus.Publish(DataCleared{})
	bus.Unsubscribe(sub)
	bus.Publish(DataCleared{})

	assert.Len(t, sub.seen(), 1)
}

func TestBus_UnsubscribeUnknownSubscriber(t *testing.T) {
	bus := newTestBus()

	// Must not panic or disturb existing subscribers.
	bus.Unsubscribe(&captureSubscriber{})

	sub := &captureSubscriber{}
	bus.Subscribe(sub)
	bus.Publish(DataCleared{})
	assert.Len(t, sub.seen(), 1)
}

func TestBus_PanickingHandlerDoesNotBlockOthers(t *testing.T) {
	bus := newTestBus()
	sub := &captureSubscriber{}
	bus.Subscribe(panickySubscriber{})
	bus.Subscribe(sub)

	assert.NotPanics(t, func() { bus.Publish(DataCleared{}) })
	assert.Len(t, sub.seen(), 1)
}

func TestBus_NilSubscriberIgnored(t *testing.T) {
	bus := newTestBus()

	bus.Subscribe(nil)

	assert.NotPanics(t, func() { bus.Publish(DataCleared{}) })
}

func TestBus_ConcurrentPublish(t *testing.T) {
	bus := newTestBus()
	sub := &captureSubscriber{}
	bus.Subscribe(sub)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Publish(DataRefreshCompleted{Success: true})
		}()
	}
	wg.Wait()

	assert.Len(t, sub.seen(), 10)
}
