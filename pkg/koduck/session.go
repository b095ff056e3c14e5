package koduck

import "sync"

// Session is the credential source the Client reads before every request and
// clears when the server rejects the credential.
//
// Implementations must be safe for concurrent use, and a completed Clear must
// be visible to every later Token call.
type Session interface {
	// Token returns the bearer token, or false when there is none.
	Token() (string, bool)

	// Clear removes the token together with any other authentication state.
	Clear() error
}

// Compile-time interface check.
var _ Session = (*MemorySession)(nil)

// MemorySession keeps a token in memory only.
type MemorySession struct {
	mu    sync.RWMutex
	token string
}

// NewMemorySession returns a session holding token; an empty token means
// unauthenticated.
func NewMemorySession(token string) *MemorySession {
	return &MemorySession{token: token}
}

// Token returns the current token.
func (s *MemorySession) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

// SetToken replaces the current token.
func (s *MemorySession) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

// Clear forgets the token.
func (s *MemorySession) Clear() error {
	s.SetToken("")
	return nil
}

type noSession struct{}

func (noSession) Token() (string, bool) { return "", false }
func (noSession) Clear() error          { return nil }
