package notification

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNotFound is returned when an operation targets an unknown notification.
var ErrNotFound = errors.New("notification: not found")

// Option customizes a Center.
type Option func(*Center)

// WithClock injects a deterministic clock (primarily for tests).
func WithClock(clock func() time.Time) Option {
	return func(c *Center) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithIDGenerator overrides how notification ids are minted.
func WithIDGenerator(gen func() string) Option {
	return func(c *Center) {
		if gen != nil {
			c.newID = gen
		}
	}
}

// WithLogger injects a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Center) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithObserver registers a callback that sees every emitted notification.
func WithObserver(fn func(Notification)) Option {
	return func(c *Center) {
		if fn != nil {
			c.observers = append(c.observers, fn)
		}
	}
}

// Center holds the notification list, newest first.
type Center struct {
	mu        sync.RWMutex
	items     []Notification
	clock     func() time.Time
	newID     func() string
	logger    *zap.Logger
	observers []func(Notification)
}

// NewCenter returns an empty notification center.
func NewCenter(opts ...Option) *Center {
	c := &Center{
		clock:  time.Now,
		newID:  newUUID,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func newUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Emit prepends n to the list. A missing or already used id is replaced
// with a fresh one and a missing date is filled in. The notification always
// starts unread and an unknown type falls back to info. Display order is
// emission order, never date order.
func (c *Center) Emit(n Notification) Notification {
	n.Title = strings.TrimSpace(n.Title)
	n.Message = strings.TrimSpace(n.Message)
	if !n.Type.Valid() {
		n.Type = TypeInfo
	}
	n.Read = false

	c.mu.Lock()
	if strings.TrimSpace(n.ID) == "" || c.indexOf(n.ID) >= 0 {
		n.ID = c.newID()
	}
	if n.Date.IsZero() {
		n.Date = c.clock().UTC()
	}
	c.items = append([]Notification{n}, c.items...)
	observers := c.observers
	c.mu.Unlock()

	c.logger.Debug("notification emitted", zap.String("id", n.ID), zap.String("type", string(n.Type)), zap.String("title", n.Title))
	for _, fn := range observers {
		fn(n)
	}
	return n
}

// Notify is shorthand for emitting a notification stamped now.
func (c *Center) Notify(t Type, title, message string) Notification {
	return c.Emit(Notification{Type: t, Title: title, Message: message})
}

// List returns a copy of the notifications, newest first.
func (c *Center) List() []Notification {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Notification, len(c.items))
	copy(out, c.items)
	return out
}

// Get returns the notification with the given id.
func (c *Center) Get(id string) (Notification, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	idx := c.indexOf(id)
	if idx < 0 {
		return Notification{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return c.items[idx], nil
}

// Len returns the number of notifications in the list.
func (c *Center) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// UnreadCount counts notifications that have not been read.
func (c *Center) UnreadCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	count := 0
	for _, n := range c.items {
		if !n.Read {
			count++
		}
	}
	return count
}

// MarkAsRead flags one notification read. Repeating it is harmless.
func (c *Center) MarkAsRead(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := c.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	c.items[idx].Read = true
	return nil
}

// MarkAllAsRead flags every notification read.
func (c *Center) MarkAllAsRead() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		c.items[i].Read = true
	}
}

// Delete removes one notification permanently.
func (c *Center) Delete(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := c.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	c.items = append(c.items[:idx], c.items[idx+1:]...)
	return nil
}

// ClearAll removes every notification.
func (c *Center) ClearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
}

func (c *Center) indexOf(id string) int {
	for i, n := range c.items {
		if n.ID == id {
			return i
		}
	}
	return -1
}
