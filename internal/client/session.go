package client

import (
	"fmt"
	"sync"
)

// State is what a session remembers between requests.
type State struct {
	Identity     Identity `yaml:"identity"`
	AccessToken  string   `yaml:"access_token"`
	RefreshToken string   `yaml:"refresh_token"`
}

// SessionPersister keeps session state across process runs.
type SessionPersister interface {
	// Load returns nil, nil when nothing was saved.
	Load() (*State, error)
	Save(state *State) error
	Clear() error
}

// Session holds the current login. It is owned by the application root and
// shared with the client and dashboards; safe for concurrent use.
type Session struct {
	mu        sync.RWMutex
	state     *State
	persister SessionPersister
}

// NewSession creates an empty session. persister may be nil.
func NewSession(persister SessionPersister) *Session {
	return &Session{persister: persister}
}

// Restore loads saved state, if any.
func (s *Session) Restore() error {
	if s.persister == nil {
		return nil
	}
	state, err := s.persister.Load()
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
	return nil
}

// Set replaces the session state and persists it.
func (s *Session) Set(state State) error {
	s.mu.Lock()
	s.state = &state
	s.mu.Unlock()
	if s.persister == nil {
		return nil
	}
	if err := s.persister.Save(&state); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Current returns a copy of the state and whether anyone is logged in.
func (s *Session) Current() (State, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == nil {
		return State{}, false
	}
	return *s.state, true
}

// Identity returns the logged-in identity or nil.
func (s *Session) Identity() *Identity {
	state, ok := s.Current()
	if !ok {
		return nil
	}
	return &state.Identity
}

// Clear forgets the login.
func (s *Session) Clear() error {
	s.mu.Lock()
	s.state = nil
	s.mu.Unlock()
	if s.persister == nil {
		return nil
	}
	if err := s.persister.Clear(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *Session) setAccessToken(token string) error {
	s.mu.Lock()
	if s.state == nil {
		s.mu.Unlock()
		return nil
	}
	s.state.AccessToken = token
	state := *s.state
	s.mu.Unlock()
	if s.persister == nil {
		return nil
	}
	return s.persister.Save(&state)
}
