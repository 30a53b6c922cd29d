package service

import "sync"

// userLocks serializes mutating discovery and feedback work per user.
// Lock granularity is the user, so concurrent requests for different users
// never contend.
type userLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for userID, creating it on first use, and returns
// the unlock func.
func (l *userLocks) Lock(userID string) func() {
	l.mu.Lock()
	m, ok := l.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[userID] = m
	}
	l.mu.Unlock()

	m.Lock()

	return m.Unlock
}
