package service

import (
	"sync"

	"github.com/pathwise/pathwise-hub/internal/domain/shared"
)

// UserLocks hands out one mutex per username. Compound commands hold the
// user's lock while they read and write several repositories.
type UserLocks struct {
	mu    sync.Mutex
	locks map[shared.Username]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

// NewUserLocks creates an empty lock table.
func NewUserLocks() *UserLocks {
	return &UserLocks{locks: make(map[shared.Username]*userLock)}
}

// Lock acquires the user's lock and returns the matching unlock function.
// Entries are removed once no goroutine holds or waits for them.
func (l *UserLocks) Lock(username shared.Username) func() {
	l.mu.Lock()
	ul, ok := l.locks[username]
	if !ok {
		ul = &userLock{}
		l.locks[username] = ul
	}
	ul.refs++
	l.mu.Unlock()

	ul.mu.Lock()

	return func() {
		ul.mu.Unlock()

		l.mu.Lock()
		ul.refs--
		if ul.refs == 0 {
			delete(l.locks, username)
		}
		l.mu.Unlock()
	}
}

// Size returns the number of live entries.
func (l *UserLocks) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
