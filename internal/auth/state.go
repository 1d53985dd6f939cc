package auth

import (
	"sync"

	"nexora/internal/models"
)

// Listener is notified with the current user (nil when signed out).
type Listener func(user *models.User)

// State holds the signed-in user and notifies subscribers when it changes.
// The zero value is a signed-out state ready for use.
type State struct {
	mu        sync.RWMutex
	user      *models.User
	token     string
	nextID    uint64
	listeners map[uint64]Listener
}

// NewState returns a signed-out State.
func NewState() *State {
	return &State{}
}

// Subscription is the handle returned by Subscribe. Close releases it.
type Subscription struct {
	state *State
	id    uint64
	once  sync.Once
}

// Close removes the listener. It is safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.state.mu.Lock()
		delete(s.state.listeners, s.id)
		s.state.mu.Unlock()
	})
}

// Subscribe registers fn and immediately calls it with the current user.
func (s *State) Subscribe(fn Listener) *Subscription {
	s.mu.Lock()
	if s.listeners == nil {
		s.listeners = make(map[uint64]Listener)
	}
	s.nextID++
	id := s.nextID
	s.listeners[id] = fn
	current := s.user
	s.mu.Unlock()

	fn(current)
	return &Subscription{state: s, id: id}
}

// SignIn records user and its session token, then notifies subscribers.
func (s *State) SignIn(user *models.User, token string) {
	s.mu.Lock()
	s.user = user
	s.token = token
	listeners := s.snapshot()
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(user)
	}
}

// SignOut clears the user and notifies subscribers.
func (s *State) SignOut() {
	s.mu.Lock()
	wasSignedIn := s.user != nil
	s.user = nil
	s.token = ""
	listeners := s.snapshot()
	s.mu.Unlock()

	if !wasSignedIn {
		return
	}
	for _, fn := range listeners {
		fn(nil)
	}
}

// User returns the signed-in user, or nil.
func (s *State) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Token returns the session token of the signed-in user.
func (s *State) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// SignedIn reports whether a user is present.
func (s *State) SignedIn() bool {
	return s.User() != nil
}

// snapshot copies the listeners; callers hold s.mu.
func (s *State) snapshot() []Listener {
	out := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		out = append(out, fn)
	}
	return out
}
