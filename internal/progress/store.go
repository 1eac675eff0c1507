// Package progress owns the learner's CompletionSet: which modules have been
// passed. Membership only grows; the set is mirrored to the key-value store
// after every change and reloaded once at startup.
package progress

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/kingrea/secureaware/internal/events"
	"github.com/kingrea/secureaware/internal/kvstore"
)

// StoreKey is the key the CompletionSet is persisted under.
const StoreKey = "completedModules"

// MarkResult reports the outcome of MarkCompleted.
type MarkResult struct {
	AlreadyCompleted bool
}

// Option customizes a Store.
type Option func(*Store)

// WithLogger injects a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithPublisher sets the collaborator that receives ModuleCompleted events.
func WithPublisher(pub events.Publisher) Option {
	return func(s *Store) {
		s.publisher = pub
	}
}

// Store tracks completed module ids in insertion order.
type Store struct {
	mu        sync.RWMutex
	kv        kvstore.Store
	order     []string
	members   map[string]struct{}
	publisher events.Publisher
	logger    *zap.Logger
}

// Open loads the persisted CompletionSet. A missing or corrupt record starts
// the learner with an empty set.
func Open(kv kvstore.Store, opts ...Option) (*Store, error) {
	if kv == nil {
		return nil, fmt.Errorf("progress: key-value store is required")
	}
	s := &Store{
		kv:      kv,
		members: map[string]struct{}{},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	var persisted []string
	if _, err := kvstore.GetJSON(kv, StoreKey, &persisted); err != nil {
		s.logger.Warn("completed modules unreadable, starting empty", zap.Error(err))
		persisted = nil
	}
	for _, id := range persisted {
		s.add(id)
	}
	return s, nil
}

func (s *Store) add(id string) bool {
	id = strings.TrimSpace(id)
	if id == "" {
		return false
	}
	if _, ok := s.members[id]; ok {
		return false
	}
	s.members[id] = struct{}{}
	s.order = append(s.order, id)
	return true
}

// IsCompleted reports whether the module has been passed.
func (s *Store) IsCompleted(moduleID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.members[strings.TrimSpace(moduleID)]
	return ok
}

// Completed returns the completed ids in insertion order.
func (s *Store) Completed() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Count returns the number of completed modules.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// MarkCompleted adds moduleID to the set. Marking an id that is already
// present is a no-op and publishes nothing. Otherwise the set is persisted
// and a ModuleCompleted event is published. If persisting fails the in-memory
// change is rolled back.
func (s *Store) MarkCompleted(moduleID string) (MarkResult, error) {
	id := strings.TrimSpace(moduleID)
	if id == "" {
		return MarkResult{}, fmt.Errorf("progress: module id is required")
	}
	s.mu.Lock()
	if !s.add(id) {
		s.mu.Unlock()
		return MarkResult{AlreadyCompleted: true}, nil
	}
	snapshot := make([]string, len(s.order))
	copy(snapshot, s.order)
	if err := kvstore.SetJSON(s.kv, StoreKey, snapshot); err != nil {
		delete(s.members, id)
		s.order = s.order[:len(s.order)-1]
		s.mu.Unlock()
		return MarkResult{}, fmt.Errorf("progress: persist: %w", err)
	}
	s.mu.Unlock()

	s.logger.Info("module completed", zap.String("module_id", id), zap.Int("completed", len(snapshot)))
	if s.publisher != nil {
		if err := s.publisher.Publish(events.Event{Type: events.ModuleCompleted, ModuleID: id}); err != nil {
			s.logger.Warn("module completed event not fully delivered", zap.String("module_id", id), zap.Error(err))
		}
	}
	return MarkResult{}, nil
}
