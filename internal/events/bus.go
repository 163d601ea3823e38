package events

import (
	"log/slog"
	"sync"
)

// Bus is a synchronous publish/subscribe channel for domain events.
//
// Delivery rules:
//   - A subscriber receives every event published after Subscribe and before
//     Unsubscribe, in publication order.
//   - A panicking handler is recovered and logged; it never reaches the
//     publisher and never blocks delivery to the remaining subscribers.
//   - Subscribe and Unsubscribe are safe to call from multiple goroutines.
type Bus struct {
	mu     sync.Mutex
	subs   []Subscriber
	logger *slog.Logger
}

// NewBus creates an event bus. Defaults logger to slog.Default() if nil.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}

	return &Bus{
		logger: logger.With(slog.String("component", "events.Bus")),
	}
}

// Subscribe registers a subscriber. Registering the same subscriber twice is
// a no-op.
func (b *Bus) Subscribe(s Subscriber) {
	if s == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, existing := range b.subs {
		if existing == s {
			return
		}
	}

	b.subs = append(b.subs, s)
}

// Unsubscribe removes a subscriber. Events published after Unsubscribe
// returns are not delivered to it.
func (b *Bus) Unsubscribe(s Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, existing := range b.subs {
		if existing == s {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers the event to every current subscriber. Delivery is
// serialized under the bus lock so each subscriber observes publication
// order; handlers must therefore not publish synchronously from OnEvent.
func (b *Bus) Publish(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.logger.Debug("publishing event",
		slog.String("event", event.EventType()),
		slog.Int("subscribers", len(b.subs)),
	)

	for _, s := range b.subs {
		b.deliver(s, event)
	}
}

// deliver invokes one handler, containing any panic.
func (b *Bus) deliver(s Subscriber, event Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				slog.String("event", event.EventType()),
				slog.Any("panic", r),
			)
		}
	}()

	s.OnEvent(event)
}
