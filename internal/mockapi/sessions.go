package mockapi

import (
	"sync"

	"github.com/google/uuid"

	"github.com/abhisek/careerflow/internal/interview"
)

// session is one in-progress interview. busy is held for the whole of an
// answer request so a concurrent answer sees a lock conflict.
type session struct {
	busy sync.Mutex

	id       string
	role     string
	level    interview.ExperienceLevel
	question string
	history  []Exchange
}

func (s *session) transcript() Transcript {
	return Transcript{
		Role:    s.role,
		Level:   s.level,
		History: append([]Exchange(nil), s.history...),
	}
}

type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*session)}
}

func (st *sessionStore) create(role string, level interview.ExperienceLevel, question string) *session {
	s := &session{
		id:       uuid.NewString(),
		role:     role,
		level:    level,
		question: question,
	}
	st.mu.Lock()
	st.sessions[s.id] = s
	st.mu.Unlock()
	return s
}

func (st *sessionStore) get(id string) (*session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	return s, ok
}

func (st *sessionStore) remove(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

func (st *sessionStore) len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}
