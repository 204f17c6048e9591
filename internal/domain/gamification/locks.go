package gamification

import (
	"sync"

	"github.com/google/uuid"
)

// UserLocks serializes progress writes per user inside one process.
type UserLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

func NewUserLocks() *UserLocks {
	return &UserLocks{locks: make(map[uuid.UUID]*userLock)}
}

// Lock blocks until the caller owns userID and returns the release func.
// Entries are dropped once nobody holds or waits for them.
func (l *UserLocks) Lock(userID uuid.UUID) func() {
	l.mu.Lock()
	ul, ok := l.locks[userID]
	if !ok {
		ul = &userLock{}
		l.locks[userID] = ul
	}
	ul.refs++
	l.mu.Unlock()

	ul.mu.Lock()
	return func() {
		ul.mu.Unlock()
		l.mu.Lock()
		ul.refs--
		if ul.refs == 0 {
			delete(l.locks, userID)
		}
		l.mu.Unlock()
	}
}
