package session

import (
	"cmp"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/L1TangDingZhen/BOX-P/pkg/errors"
)

// Entry is a session registered in a Store together with the lock that
// serializes access to it.
type Entry struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	sess     *Session
	lastUsed time.Time
	now      func() time.Time
}

// Do runs fn with exclusive access to the session.
func (e *Entry) Do(fn func(*Session) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastUsed = e.now()
	return fn(e.sess)
}

func (e *Entry) idleSince() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastUsed
}

// Store is an in-memory registry of sessions keyed by random UUIDs.
// Store is safe for concurrent use; each session is guarded by its own
// lock (see Entry.Do).
type Store struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	now     func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{entries: make(map[string]*Entry), now: time.Now}
}

// Create registers a new session built from opts.
func (s *Store) Create(opts Options) (*Entry, error) {
	sess, err := New(opts)
	if err != nil {
		return nil, err
	}
	return s.Add(sess), nil
}

// Add registers an existing session under a fresh ID.
func (s *Store) Add(sess *Session) *Entry {
	now := s.now()
	e := &Entry{
		ID:        uuid.NewString(),
		CreatedAt: now,
		sess:      sess,
		lastUsed:  now,
		now:       s.now,
	}

	s.mu.Lock()
	s.entries[e.ID] = e
	s.mu.Unlock()
	return e
}

// Get returns the entry with the given ID, or a NOT_FOUND error.
func (s *Store) Get(id string) (*Entry, error) {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "session %q not found", id)
	}
	return e, nil
}

// Delete removes a session, returning NOT_FOUND if it does not exist.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return errors.New(errors.ErrCodeNotFound, "session %q not found", id)
	}
	delete(s.entries, id)
	return nil
}

// List returns all entries, oldest first.
func (s *Store) List() []*Entry {
	s.mu.RLock()
	out := make([]*Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b *Entry) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// Len returns the number of sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Cleanup removes sessions that have not been used for longer than ttl and
// returns how many were removed.
func (s *Store) Cleanup(ttl time.Duration) int {
	cutoff := s.now().Add(-ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, e := range s.entries {
		if e.idleSince().Before(cutoff) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}
