package models

import "sync"

// Session holds the per-conversation state: the active mode and the ordered
// turn history. Each session exclusively owns its history.
type Session struct {
	ID    string
	Mode  Mode
	Turns []Turn

	mu sync.Mutex
}

func NewSession(id string, mode Mode) *Session {
	return &Session{ID: id, Mode: mode}
}

// Lock serializes turn processing for this session. Turns within one session
// run strictly one at a time; distinct sessions are independent.
func (s *Session) Lock() { s.mu.Lock() }

func (s *Session) Unlock() { s.mu.Unlock() }

// Append adds a completed turn. Caller must hold the session lock.
func (s *Session) Append(t Turn) {
	s.Turns = append(s.Turns, t)
}

// Window returns up to n most recent turns. Caller must hold the session lock.
func (s *Session) Window(n int) []Turn {
	if n <= 0 || len(s.Turns) <= n {
		return s.Turns
	}
	return s.Turns[len(s.Turns)-n:]
}
