package middleware

import "sync"

// UserSerializer hands out one mutex per user so updates for the same user
// are handled one at a time (last write wins, no lost updates) while updates
// for different users proceed concurrently.
type UserSerializer struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewUserSerializer creates a new per-user serializer
func NewUserSerializer() *UserSerializer {
	return &UserSerializer{locks: make(map[int64]*sync.Mutex)}
}

// Lock acquires the user's mutex, creating it on first use. Locks are never
// reclaimed; one mutex per user who has interacted mirrors the session map.
func (s *UserSerializer) Lock(userID int64) {
	s.userLock(userID).Lock()
}

// Unlock releases the user's mutex.
func (s *UserSerializer) Unlock(userID int64) {
	s.userLock(userID).Unlock()
}

func (s *UserSerializer) userLock(userID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	return l
}
