package session

import (
	"errors"
	"sync"
	"time"

	"impostor-bot/internal/game"
)

var (
	ErrSessionNotFound = errors.New("no session in this room")
	ErrSessionExists   = errors.New("a session is already open in this room")
	ErrNotCreator      = errors.New("only the session creator may do that")
	ErrUnknownGameType = errors.New("unknown game type")
)

// Key identifies a room: one chat topic hosts at most one open session.
type Key struct {
	ChatID  int64
	TopicID int64
}

// Session is the in-memory record for one room. All mutation happens under
// mu; operations on different sessions never contend.
type Session struct {
	mu         sync.Mutex
	DBID       uint
	Key        Key
	GameType   string
	Status     string
	CreatorID  int64
	InviteCode string
	State      *game.State
	CreatedAt  time.Time
	StartedAt  *time.Time
	FinishedAt *time.Time
}

// Registry holds every live session keyed by room. It replaces the ambient
// per-chat global the bot would otherwise accrete.
type Registry struct {
	mu       sync.RWMutex
	sessions map[Key]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[Key]*Session)}
}

// Put registers a session, failing if the room already has one.
func (r *Registry) Put(sess *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[sess.Key]; ok {
		return ErrSessionExists
	}
	r.sessions[sess.Key] = sess
	return nil
}

func (r *Registry) Get(key Key) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.sessions[key]
	return sess, ok
}

func (r *Registry) Delete(key Key) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, key)
}

// Update runs fn with the session's own lock held. The registry lock is
// released first, so slow operations on one room never block another.
func (r *Registry) Update(key Key, fn func(*Session) error) (*Session, error) {
	sess, ok := r.Get(key)
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := fn(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Keys returns the rooms with a live session, for recovery and shutdown.
func (r *Registry) Keys() []Key {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]Key, 0, len(r.sessions))
	for key := range r.sessions {
		keys = append(keys, key)
	}
	return keys
}
