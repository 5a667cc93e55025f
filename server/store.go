package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spektr-org/chartkit/engine"
	"github.com/spektr-org/chartkit/schema"
)

// Session is one uploaded dataset. Everything but the remembered scenes is
// fixed once the session is stored.
type Session struct {
	ID      uuid.UUID
	Name    string
	Created time.Time
	Catalog *schema.Config
	Data    *engine.Dataset
	Stats   engine.SanitizeStats

	last map[engine.ChartKind]*engine.Scene // guarded by Store.mu
}

// Store holds sessions in memory, evicting the oldest past a fixed cap.
type Store struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	order    []uuid.UUID
	max      int
}

// NewStore creates a store holding at most max sessions.
func NewStore(max int) *Store {
	if max < 1 {
		max = 1
	}
	return &Store{
		sessions: make(map[uuid.UUID]*Session),
		max:      max,
	}
}

// Add assigns the session an ID and stores it.
func (st *Store) Add(s *Session) uuid.UUID {
	s.ID = uuid.New()
	s.Created = time.Now().UTC()
	s.last = make(map[engine.ChartKind]*engine.Scene)

	st.mu.Lock()
	defer st.mu.Unlock()

	for len(st.order) >= st.max {
		oldest := st.order[0]
		st.order = st.order[1:]
		delete(st.sessions, oldest)
	}
	st.sessions[s.ID] = s
	st.order = append(st.order, s.ID)
	return s.ID
}

// Get returns the session with the given ID.
func (st *Store) Get(id uuid.UUID) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	return s, ok
}

// Delete removes a session and reports whether it existed.
func (st *Store) Delete(id uuid.UUID) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, ok := st.sessions[id]; !ok {
		return false
	}
	delete(st.sessions, id)
	for i, v := range st.order {
		if v == id {
			st.order = append(st.order[:i], st.order[i+1:]...)
			break
		}
	}
	return true
}

// Len returns the number of stored sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Previous returns the last valid scene computed for a chart kind, or nil.
func (st *Store) Previous(s *Session, kind engine.ChartKind) *engine.Scene {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return s.last[kind]
}

// Remember replaces the last valid scene for a chart kind.
func (st *Store) Remember(s *Session, kind engine.ChartKind, scene *engine.Scene) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s.last[kind] = scene
}
