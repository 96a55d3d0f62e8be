package service

import "sync"

type userLock struct {
	mu   sync.Mutex
	refs int
}

// UserLocks serializes all mutation of one user's cart. Different users
// never contend; the same user's concurrent requests queue up so no
// read-modify-write ever interleaves. Shared between CartService and
// OrderService since both mutate carts. Entries are refcounted and
// dropped when the last holder unlocks, so the map is bounded by
// in-flight requests rather than by every user ID ever seen.
type UserLocks struct {
	mu    sync.Mutex
	locks map[string]*userLock
}

func NewUserLocks() *UserLocks {
	return &UserLocks{locks: make(map[string]*userLock)}
}

// Lock acquires the user's mutex and returns the matching unlock
// function for the caller to defer.
func (l *UserLocks) Lock(userID string) func() {
	l.mu.Lock()
	entry, ok := l.locks[userID]
	if !ok {
		entry = &userLock{}
		l.locks[userID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, userID)
		}
		l.mu.Unlock()
	}
}
