package booking

import (
	"context"
	"sync"
	"time"
)

// DefaultSessionTimeout bounds memory growth from abandoned dialogs.
const DefaultSessionTimeout = 30 * time.Minute

// SessionStore maps a user id to at most one live session and serializes
// actions per user: two concurrent actions from the same user are applied
// one at a time against a consistent session snapshot. Operations for
// different users are independent.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[int64]*Session
	locks    map[int64]*sync.Mutex
	timeout  time.Duration
	now      func() time.Time
}

// NewSessionStore creates a session store with the given idle timeout.
func NewSessionStore(timeout time.Duration) *SessionStore {
	if timeout <= 0 {
		timeout = DefaultSessionTimeout
	}
	return &SessionStore{
		sessions: make(map[int64]*Session),
		locks:    make(map[int64]*sync.Mutex),
		timeout:  timeout,
		now:      time.Now,
	}
}

// userLock returns the per-user mutex, creating it on first use. Lock
// entries are never removed: they are a few words per distinct user and
// dropping one while it is held would break the ordering guarantee.
func (ss *SessionStore) userLock(userID int64) *sync.Mutex {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	l, ok := ss.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		ss.locks[userID] = l
	}
	return l
}

// Do runs fn while holding the user's mutex.
func (ss *SessionStore) Do(userID int64, fn func()) {
	l := ss.userLock(userID)
	l.Lock()
	defer l.Unlock()
	fn()
}

// Get returns the user's live session, or nil. An expired session counts
// as absent.
func (ss *SessionStore) Get(userID int64) *Session {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	s := ss.sessions[userID]
	if s == nil || s.Expired(ss.now(), ss.timeout) {
		return nil
	}
	return s
}

// Reset replaces any existing session with a fresh one (last-write-wins
// when the user restarts the flow).
func (ss *SessionStore) Reset(userID int64, userName string) *Session {
	s := NewSession(userID, userName, ss.now())
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.sessions[userID] = s
	return s
}

// Clear removes the session. Clearing an absent session is a no-op.
func (ss *SessionStore) Clear(userID int64) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	delete(ss.sessions, userID)
}

// Len returns the number of stored sessions, expired ones included.
func (ss *SessionStore) Len() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return len(ss.sessions)
}

// Cleanup removes expired sessions and returns how many were dropped.
func (ss *SessionStore) Cleanup() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	removed := 0
	now := ss.now()
	for userID, s := range ss.sessions {
		if s.Expired(now, ss.timeout) {
			delete(ss.sessions, userID)
			removed++
		}
	}
	return removed
}

// Sweep runs Cleanup on the given interval until ctx is done. onExpire,
// if non-nil, receives the number of sessions removed per pass.
func (ss *SessionStore) Sweep(ctx context.Context, interval time.Duration, onExpire func(removed int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := ss.Cleanup(); removed > 0 && onExpire != nil {
				onExpire(removed)
			}
		}
	}
}
