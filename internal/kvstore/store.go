// Package kvstore is the persistent key-value layer behind every durable
// record. Values are JSON documents and every write replaces the whole value.
package kvstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// ErrNotFound is returned when no value is stored under a key.
var ErrNotFound = errors.New("kvstore: key not found")

// Store reads and writes raw JSON values by key.
type Store interface {
	Get(key string) (json.RawMessage, error)
	Set(key string, value json.RawMessage) error
	Remove(key string) error
}

var validKey = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

func checkKey(key string) error {
	if !validKey.MatchString(key) {
		return fmt.Errorf("kvstore: invalid key %q", key)
	}
	return nil
}

// GetJSON decodes the value under key into v. It reports false with a nil
// error when the key is absent.
func GetJSON(s Store, key string, v any) (bool, error) {
	raw, err := s.Get(key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("kvstore: decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(s Store, key string, v any) error {
	encoded, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("kvstore: encode %s: %w", key, err)
	}
	return s.Set(key, encoded)
}

// FileStore keeps one JSON file per key inside a directory.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore creates the directory if needed and returns a store rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("kvstore: directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("kvstore: ensure dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the directory backing the store.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Get reads the value stored under key.
func (s *FileStore) Get(key string) (json.RawMessage, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("kvstore: read %s: %w", key, err)
	}
	return json.RawMessage(data), nil
}

// Set writes the value through a temp file and rename so a crash never leaves
// a half-written record behind.
func (s *FileStore) Set(key string, value json.RawMessage) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if !json.Valid(value) {
		return fmt.Errorf("kvstore: value for %s is not valid JSON", key)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("kvstore: write %s: %w", key, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(append(append([]byte{}, value...), '\n')); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("kvstore: write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("kvstore: write %s: %w", key, err)
	}
	if err := os.Rename(tmpName, s.path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("kvstore: commit %s: %w", key, err)
	}
	return nil
}

// Remove deletes the value under key. Removing a missing key is not an error.
func (s *FileStore) Remove(key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("kvstore: remove %s: %w", key, err)
	}
	return nil
}

// Keys lists the stored keys in lexical order.
func (s *FileStore) Keys() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("kvstore: list: %w", err)
	}
	var keys []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(keys)
	return keys, nil
}

// MemoryStore is an in-process Store used by tests and ephemeral sessions.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]json.RawMessage
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[string]json.RawMessage{}}
}

// Get returns a copy of the value under key.
func (m *MemoryStore) Get(key string) (json.RawMessage, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append(json.RawMessage(nil), value...), nil
}

// Set stores a copy of value under key. Invalid JSON is stored as-is so tests
// can simulate corrupt records.
func (m *MemoryStore) Set(key string, value json.RawMessage) error {
	if err := checkKey(key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = append(json.RawMessage(nil), value...)
	return nil
}

// Remove deletes key if present.
func (m *MemoryStore) Remove(key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
