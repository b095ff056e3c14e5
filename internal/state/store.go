// Package state persists client-side state between runs: the session
// credential and UI preferences. It plays the role browser local storage
// plays for the web dashboard.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Well-known keys.
const (
	KeyToken   = "token"
	KeyUser    = "user"
	KeyTheme   = "theme"
	KeySidebar = "sidebar"
)

// Store is a persisted string key-value store.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	// Delete removes keys in one write. Missing keys are ignored.
	Delete(keys ...string) error
	Close() error
}

// Compile-time interface checks.
var (
	_ Store    = (*FileStore)(nil)
	_ Notifier = (*FileStore)(nil)
)

// FileStore holds state in memory and writes it through to a JSON file.
type FileStore struct {
	mu       sync.RWMutex
	data     map[string]string
	filePath string
	log      *slog.Logger

	*hub
}

// NewFileStore creates a FileStore, loading persisted state from filePath.
// A missing file starts an empty store; an unreadable one is an error.
func NewFileStore(filePath string, log *slog.Logger) (*FileStore, error) {
	if log == nil {
		log = slog.Default()
	}
	s := &FileStore{
		data:     make(map[string]string),
		filePath: filePath,
		log:      log,
		hub:      newHub(log),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Get returns the value stored under key.
func (s *FileStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

// Set stores a value, persists to disk, and broadcasts to subscribers.
func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	prev, had := s.data[key]
	s.data[key] = value
	if err := s.flush(); err != nil {
		if had {
			s.data[key] = prev
		} else {
			delete(s.data, key)
		}
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.broadcast(Event{Type: EventSet, Key: key, Value: value})
	return nil
}

// Delete removes keys, persists to disk, and broadcasts to subscribers.
func (s *FileStore) Delete(keys ...string) error {
	s.mu.Lock()
	removed := make(map[string]string)
	for _, k := range keys {
		if v, ok := s.data[k]; ok {
			removed[k] = v
			delete(s.data, k)
		}
	}
	if len(removed) == 0 {
		s.mu.Unlock()
		return nil
	}
	if err := s.flush(); err != nil {
		for k, v := range removed {
			s.data[k] = v
		}
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.broadcast(Event{Type: EventDelete, Keys: keys})
	return nil
}

// Close unsubscribes every subscriber.
func (s *FileStore) Close() error {
	s.closeAll()
	return nil
}

// load reads the JSON file into memory.
func (s *FileStore) load() error {
	data, err := os.ReadFile(s.filePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading state file: %w", err)
	}
	var loaded map[string]string
	if err := json.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("parsing state file %s: %w", s.filePath, err)
	}
	if loaded != nil {
		s.data = loaded
	}
	s.log.Debug("loaded client state", "path", s.filePath, "keys", len(s.data))
	return nil
}

// flush writes the in-memory state to disk via a temp file and rename. Must
// be called with mu held.
func (s *FileStore) flush() error {
	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.filePath), 0o700); err != nil {
		return fmt.Errorf("creating state dir: %w", err)
	}
	tmp := s.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing state file: %w", err)
	}
	if err := os.Rename(tmp, s.filePath); err != nil {
		return fmt.Errorf("replacing state file: %w", err)
	}
	return nil
}
