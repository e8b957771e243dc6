// Package console is the client SDK for the backoffice API. It provides the
// authenticated request pipeline (credential attachment, one coalesced
// refresh-and-retry on authorization failure), the session store, tag-based
// listing invalidation, and list-view plumbing on top of pkg/dynquery.
package console

import "sync"

// UserProfile is the authenticated account as returned by /accounts/me.
type UserProfile struct {
	ID        string   `json:"id"`
	Email     string   `json:"email"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Roles     []string `json:"roles"`
	AvatarURL string   `json:"avatarUrl,omitempty"`
}

// TokenSet holds the credentials returned by a login or refresh.
type TokenSet struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	IDToken      string `json:"id_token,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
}

// Session is the single authentication state of a running client. It starts
// empty, is populated by a login or silent refresh, and is cleared entirely on
// logout or unrecoverable refresh failure.
type Session struct {
	Authenticated bool
	User          *UserProfile
	Tokens        TokenSet
}

// SessionStore owns the Session. All mutation goes through the three
// transitions below; there is no other writer pathway.
type SessionStore struct {
	mu       sync.RWMutex
	session  Session
	onChange []func(Session)
}

func NewSessionStore() *SessionStore {
	return &SessionStore{}
}

// LoginSucceeded installs a fresh session after a successful login.
func (s *SessionStore) LoginSucceeded(user *UserProfile, tokens TokenSet) {
	s.mu.Lock()
	s.session = Session{Authenticated: true, User: user, Tokens: tokens}
	s.mu.Unlock()
	s.fireChange()
}

// TokenRefreshed replaces the credentials after a silent refresh. A refresh
// response without a rotated refresh token keeps the current one.
func (s *SessionStore) TokenRefreshed(tokens TokenSet) {
	s.mu.Lock()
	if tokens.RefreshToken == "" {
		tokens.RefreshToken = s.session.Tokens.RefreshToken
	}
	s.session.Tokens = tokens
	s.session.Authenticated = true
	s.mu.Unlock()
	s.fireChange()
}

// Cleared wipes the session on logout or unrecoverable refresh failure.
func (s *SessionStore) Cleared() {
	s.mu.Lock()
	s.session = Session{}
	s.mu.Unlock()
	s.fireChange()
}

// Snapshot returns a copy of the current session for readers.
func (s *SessionStore) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// OnChange registers a listener invoked after every session transition, e.g.
// to persist rotated tokens.
func (s *SessionStore) OnChange(fn func(Session)) {
	s.mu.Lock()
	s.onChange = append(s.onChange, fn)
	s.mu.Unlock()
}

func (s *SessionStore) fireChange() {
	s.mu.RLock()
	snap := s.session
	listeners := make([]func(Session), len(s.onChange))
	copy(listeners, s.onChange)
	s.mu.RUnlock()
	for _, fn := range listeners {
		fn(snap)
	}
}
