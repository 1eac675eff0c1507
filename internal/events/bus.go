package events

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// BusOption customizes Bus construction.
type BusOption func(*Bus)

// WithLogger injects a logger for delivery failures.
func WithLogger(logger *zap.Logger) BusOption {
	return func(b *Bus) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithClock injects a deterministic clock for event timestamps.
func WithClock(clock func() time.Time) BusOption {
	return func(b *Bus) {
		if clock != nil {
			b.clock = clock
		}
	}
}

// Bus fans events out to subscribers keyed by event type.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[Type][]Processor
	logger      *zap.Logger
	clock       func() time.Time
}

// NewBus returns an empty bus.
func NewBus(opts ...BusOption) *Bus {
	b := &Bus{
		subscribers: map[Type][]Processor{},
		logger:      zap.NewNop(),
		clock:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Subscribe registers p for the given event types.
func (b *Bus) Subscribe(p Processor, types ...Type) {
	if p == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range types {
		b.subscribers[t] = append(b.subscribers[t], p)
	}
}

// Publish normalizes and validates the event, then hands it to each
// subscriber in registration order. Subscriber errors are joined and
// returned after every subscriber has run.
func (b *Bus) Publish(e Event) error {
	e.Normalize(b.clock())
	if err := e.Validate(); err != nil {
		return fmt.Errorf("events: %w", err)
	}
	b.mu.RLock()
	subs := append([]Processor(nil), b.subscribers[e.Type]...)
	b.mu.RUnlock()

	var errs []error
	for _, sub := range subs {
		if err := sub.HandleEvent(e); err != nil {
			b.logger.Warn("event subscriber failed",
				zap.String("type", string(e.Type)),
				zap.String("module_id", e.ModuleID),
				zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
