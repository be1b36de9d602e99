package client

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	boltBucket  = []byte("session")
	boltCurrent = []byte("current")
)

// BoltStore persists the session to a bbolt file so it survives process
// restarts. Subscription semantics match MemoryStore.
type BoltStore struct {
	db *bolt.DB

	mu      sync.Mutex
	nextSub int
	subs    map[int]func(Session, bool)
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init session bucket: %w", err)
	}
	return &BoltStore{db: db, subs: make(map[int]func(Session, bool))}, nil
}

func (s *BoltStore) Close() error { return s.db.Close() }

func (s *BoltStore) Get() (Session, bool) {
	var raw []byte
	_ = s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(boltBucket).Get(boltCurrent); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if raw == nil {
		return Session{}, false
	}
	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return Session{}, false
	}
	return sess, true
}

func (s *BoltStore) Set(sess Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltBucket).Put(boltCurrent, raw)
	})
	if err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	s.notify(sess, true)
	return nil
}

func (s *BoltStore) Clear() error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltBucket).Delete(boltCurrent)
	})
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.notify(Session{}, false)
	return nil
}

func (s *BoltStore) Subscribe(fn func(Session, bool)) func() {
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

func (s *BoltStore) notify(sess Session, present bool) {
	s.mu.Lock()
	fns := make([]func(Session, bool), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(sess, present)
	}
}
