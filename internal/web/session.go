package web

import (
	"sync"
	"time"

	"contact-picker/internal/model"
	"contact-picker/internal/picker"

	"github.com/google/uuid"
)

// session is one mounted picker. Its mutex serializes the widget's events.
type session struct {
	id string

	// universe is the mounted contact set; strict mode checks every state against it.
	universe []model.Contact

	mu       sync.Mutex
	state    picker.State
	lastSeen time.Time
}

type sessionStore struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

func newSessionStore(ttl time.Duration) *sessionStore {
	return &sessionStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: map[string]*session{},
	}
}

func (st *sessionStore) create(state picker.State) *session {
	sess := &session{id: uuid.NewString(), universe: state.Universe(), state: state, lastSeen: st.now()}
	st.mu.Lock()
	st.sessions[sess.id] = sess
	st.mu.Unlock()
	return sess
}

func (st *sessionStore) get(id string) (*session, bool) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, false
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	sess, ok := st.sessions[id]
	if !ok {
		return nil, false
	}
	sess.lastSeen = st.now()
	return sess, true
}

func (st *sessionStore) len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// sweep drops sessions idle for longer than the TTL and reports how many went.
func (st *sessionStore) sweep() int {
	if st.ttl <= 0 {
		return 0
	}
	cutoff := st.now().Add(-st.ttl)
	st.mu.Lock()
	defer st.mu.Unlock()
	n := 0
	for id, sess := range st.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(st.sessions, id)
			n++
		}
	}
	return n
}

func (st *sessionStore) janitor(stop <-chan struct{}, every time.Duration, onSweep func(int)) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			if n := st.sweep(); n > 0 && onSweep != nil {
				onSweep(n)
			}
		}
	}
}
