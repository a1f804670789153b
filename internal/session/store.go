// Package session keeps server-side browsing sessions in memory.
package session

import (
	"sync"

	"github.com/google/uuid"

	"github.com/TNTKien/repo-timeline/internal/timeline"
)

type Store struct {
	mu       sync.RWMutex
	sessions map[string]*timeline.Session
}

func NewStore() *Store {
	return &Store{sessions: map[string]*timeline.Session{}}
}

// Create registers s and returns its id.
func (st *Store) Create(s *timeline.Session) string {
	id := uuid.NewString()

	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[id] = s
	return id
}

func (st *Store) Get(id string) (*timeline.Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	return s, ok
}

// Delete removes the session and reports whether it existed.
func (st *Store) Delete(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[id]; !ok {
		return false
	}
	delete(st.sessions, id)
	return true
}

func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
