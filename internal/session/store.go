package session

import (
	"sync"

	"github.com/google/uuid"
)

// Store is a process-wide registry of sessions keyed by an opaque id, so
// each browser tab gets its own Session. The id travels in a cookie; the
// state itself never leaves this process.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore returns an empty session registry.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Create registers a fresh anonymous session and returns its id.
func (st *Store) Create() (string, *Session) {
	id := uuid.New().String()
	s := &Session{}

	st.mu.Lock()
	st.sessions[id] = s
	st.mu.Unlock()

	return id, s
}

// Get returns the session for id, if one exists.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	return s, ok
}

// GetOrCreate returns the session for id, or a fresh one (with a new id)
// when id is unknown or empty.
func (st *Store) GetOrCreate(id string) (string, *Session) {
	if id != "" {
		if s, ok := st.Get(id); ok {
			return id, s
		}
	}
	return st.Create()
}

// Destroy clears and removes the session for id. Unknown ids are a no-op.
func (st *Store) Destroy(id string) {
	st.mu.Lock()
	s, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()

	if ok {
		s.Clear()
	}
}

// Len reports how many sessions are registered.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
