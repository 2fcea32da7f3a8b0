package activity

import "sync"

// Guard provides per-activity mutual exclusion. Every mutating path, the lazy
// expiry applied from reads included, runs under the activity's lock so
// check-then-mutate sequences cannot interleave. Activities are mutated
// independently of one another, so there is no cross-activity locking.
type Guard struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewGuard creates an empty guard.
func NewGuard() *Guard {
	return &Guard{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the lock for activityID and returns its release function.
func (g *Guard) Lock(activityID string) func() {
	g.mu.Lock()
	lock, ok := g.locks[activityID]
	if !ok {
		lock = &sync.Mutex{}
		g.locks[activityID] = lock
	}
	g.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// Forget drops the lock entry for a deleted activity.
func (g *Guard) Forget(activityID string) {
	g.mu.Lock()
	delete(g.locks, activityID)
	g.mu.Unlock()
}
