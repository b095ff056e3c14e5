package state

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"koduck/pkg/koduck"
)

// Compile-time interface check.
var _ koduck.Session = (*Session)(nil)

// User is the minimal identity stored next to the token.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Session exposes the credential held in a Store to the API client.
type Session struct {
	mu    sync.Mutex
	store Store
}

// NewSession returns a Session reading and writing store.
func NewSession(store Store) *Session {
	return &Session{store: store}
}

// Token returns the stored bearer token.
func (s *Session) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tok, ok := s.store.Get(KeyToken)
	return tok, ok && tok != ""
}

// User returns the stored identity, if any.
func (s *Session) User() (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.store.Get(KeyUser)
	if !ok {
		return User{}, false
	}
	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return User{}, false
	}
	return u, true
}

// SetCredential stores a token and its user after a successful login. The
// user is optional.
func (s *Session) SetCredential(token string, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user != nil {
		b, err := json.Marshal(user)
		if err != nil {
			return err
		}
		if err := s.store.Set(KeyUser, string(b)); err != nil {
			return fmt.Errorf("storing user: %w", err)
		}
	} else if err := s.store.Delete(KeyUser); err != nil {
		return fmt.Errorf("clearing user: %w", err)
	}
	if err := s.store.Set(KeyToken, token); err != nil {
		return fmt.Errorf("storing token: %w", err)
	}
	return nil
}

// Clear removes the token and the stored user. UI preferences are kept.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Delete(KeyToken, KeyUser)
}

// Open returns the Store for driver ("json" or "sqlite") at path.
func Open(driver, path string, log *slog.Logger) (Store, error) {
	switch driver {
	case "", "json":
		return NewFileStore(path, log)
	case "sqlite":
		return NewSQLiteStore(path, log)
	default:
		return nil, fmt.Errorf("unknown state driver %q", driver)
	}
}
