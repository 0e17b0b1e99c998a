// Package auth holds the sign-in session state shared across the app and
// the email one-time-passcode sign-in flow.
package auth

import "sync"

// State is the process-wide auth session state. Asynchronous verify
// callbacks and the frame loop both touch it, so every access goes
// through the mutex; critical sections only copy fields.
type State struct {
	mu          sync.Mutex
	signedIn    bool
	email       string
	accessToken string
}

// NewState returns an empty, signed-out state.
func NewState() *State {
	return &State{}
}

// SignedIn reports whether a verified identity is present.
func (s *State) SignedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.signedIn
}

// Email returns the signed-in email when one is set.
func (s *State) Email() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.email, s.email != ""
}

// AccessToken returns the cached bearer token when one is set.
func (s *State) AccessToken() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken, s.accessToken != ""
}

// SetSignedIn records a verified identity.
func (s *State) SetSignedIn(email, accessToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signedIn = true
	s.email = email
	s.accessToken = accessToken
}

// Clear signs out.
func (s *State) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signedIn = false
	s.email = ""
	s.accessToken = ""
}

// Persisted is the serialized form stored across restarts, independent
// of chat state.
type Persisted struct {
	SignedIn    bool   `json:"signed_in"`
	Email       string `json:"email,omitempty"`
	AccessToken string `json:"access_token,omitempty"`
}

// Snapshot copies the state for persistence.
func (s *State) Snapshot() Persisted {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Persisted{
		SignedIn:    s.signedIn,
		Email:       s.email,
		AccessToken: s.accessToken,
	}
}

// Restore replaces the state from a persisted snapshot.
func (s *State) Restore(p Persisted) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signedIn = p.SignedIn
	s.email = p.Email
	s.accessToken = p.AccessToken
}
