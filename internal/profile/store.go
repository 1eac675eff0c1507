package profile

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/kingrea/secureaware/internal/events"
	"github.com/kingrea/secureaware/internal/kvstore"
)

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

// WithPublisher sets the collaborator that receives profile events.
func WithPublisher(pub events.Publisher) Option {
	return func(s *Store) {
		s.publisher = pub
	}
}

// Store owns the persisted profile record.
type Store struct {
	mu        sync.RWMutex
	kv        kvstore.Store
	current   Profile
	publisher events.Publisher
	logger    *zap.Logger
}

// Open loads the persisted profile. A missing, unreadable or incomplete record
// yields Default().
func Open(kv kvstore.Store, opts ...Option) (*Store, error) {
	if kv == nil {
		return nil, fmt.Errorf("profile: key-value store is required")
	}
	s := &Store{
		kv:      kv,
		current: Default(),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	var persisted Profile
	found, err := kvstore.GetJSON(kv, StoreKey, &persisted)
	switch {
	case err != nil:
		s.logger.Warn("profile unreadable, using defaults", zap.Error(err))
	case !found:
	default:
		persisted = persisted.Normalized()
		if verr := persisted.Validate(); verr != nil {
			s.logger.Warn("profile incomplete, using defaults", zap.Error(verr))
			break
		}
		s.current = persisted
	}
	return s, nil
}

// Profile returns the current profile.
func (s *Store) Profile() Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Update replaces the whole profile, persists it and publishes
// ProfileUpdated. An invalid profile is rejected with *ValidationError and
// nothing changes.
func (s *Store) Update(p Profile) error {
	p = p.Normalized()
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	if err := kvstore.SetJSON(s.kv, StoreKey, p); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("profile: persist: %w", err)
	}
	s.current = p
	s.mu.Unlock()

	s.logger.Info("profile updated", zap.String("department", p.Department), zap.String("role", p.Role))
	s.publish(events.ProfileUpdated)
	return nil
}

// UpdatePassword validates the password form and publishes PasswordUpdated.
// No credential is stored; on validation failure nothing is published.
func (s *Store) UpdatePassword(req PasswordChange) error {
	if verr := ValidatePasswordChange(req); verr != nil {
		return verr
	}
	s.logger.Info("password changed")
	s.publish(events.PasswordUpdated)
	return nil
}

func (s *Store) publish(t events.Type) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(events.Event{Type: t}); err != nil {
		s.logger.Warn("profile event not fully delivered", zap.String("type", string(t)), zap.Error(err))
	}
}
