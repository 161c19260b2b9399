package dialog

import "sync"

// Session is the per-conversation state record the machine reads and writes
// on every turn. The zero value is a fresh idle session.
type Session struct {
	// Step is the machine position; the zero value maps to [StepIdle].
	Step Step

	// TempIC holds the IC number collected at [StepAskIC] while it awaits
	// confirmation.
	TempIC string

	// LastAction is the most recent idle action, kept for follow-up turns.
	LastAction Action

	// PendingPage is the page awaiting a navigation yes/no. HasPending
	// distinguishes "no pending navigation" from a zero-value page.
	PendingPage Page
	HasPending  bool
}

// step returns the session step with the zero value normalised to idle.
func (s Session) step() Step {
	if s.Step == "" {
		return StepIdle
	}
	return s.Step
}

// Store keeps one [Session] per conversation id. It is safe for concurrent
// use; sessions for unknown ids spring into existence as fresh idle sessions.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewStore returns an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]Session)}
}

// Get returns the session for id. Unknown ids yield a fresh idle session
// without creating an entry; the entry appears on the first [Store.Put].
func (s *Store) Get(id string) Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[id]
}

// Put stores sess under id, replacing any previous record.
func (s *Store) Put(id string, sess Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = sess
}

// Reset returns the session for id to a fresh idle session. Resetting an
// unknown or already-idle session is a no-op.
func (s *Store) Reset(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len returns the number of sessions currently held, for health reporting.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
