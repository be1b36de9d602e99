package client

import "sync"

// User is the client-side view of an account. Extra holds fields the
// application attaches locally; the server never sees or overwrites them.
type User struct {
	ID        int64             `json:"id"`
	Username  string            `json:"username"`
	Email     string            `json:"mail"`
	Nombre    string            `json:"nombre,omitempty"`
	Telefono  string            `json:"telefono,omitempty"`
	Role      string            `json:"role"`
	ImagenURL string            `json:"imagen_url,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`
}

// Session is the unit of persisted auth state. The refresh token is not
// here; it lives in the HTTP cookie jar only.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Store owns the session. All reads and writes in the client go through
// one Store so there is a single source of truth for auth state.
type Store interface {
	Get() (Session, bool)
	Set(Session) error
	Clear() error

	// Subscribe registers fn to run after every Set or Clear. The bool is
	// false when the session was cleared. Returns a cancel func.
	Subscribe(fn func(Session, bool)) func()
}

// MemoryStore keeps the session in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	sess    Session
	present bool

	nextSub int
	subs    map[int]func(Session, bool)
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{subs: make(map[int]func(Session, bool))}
}

func (s *MemoryStore) Get() (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess, s.present
}

func (s *MemoryStore) Set(sess Session) error {
	s.mu.Lock()
	s.sess = sess
	s.present = true
	fns := s.snapshotSubs()
	s.mu.Unlock()

	for _, fn := range fns {
		fn(sess, true)
	}
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	s.sess = Session{}
	s.present = false
	fns := s.snapshotSubs()
	s.mu.Unlock()

	for _, fn := range fns {
		fn(Session{}, false)
	}
	return nil
}

func (s *MemoryStore) Subscribe(fn func(Session, bool)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// snapshotSubs must be called with mu held. Callbacks run outside the lock
// so a subscriber may call back into the store.
func (s *MemoryStore) snapshotSubs() []func(Session, bool) {
	fns := make([]func(Session, bool), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	return fns
}
