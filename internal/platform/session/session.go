package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is the gateway-side authentication state for one signed-in staff
// member: the upstream bearer token, the current CSRF token, and the cached
// identity used by the navigation views. All fields are guarded so the
// backend client can rotate the CSRF token mid-request.
type Session struct {
	mu sync.RWMutex

	id        string
	userID    int
	username  string
	name      string
	role      string
	photoURL  string
	token     string
	csrfToken string
	createdAt time.Time
	expiresAt time.Time
}

// Identity is the immutable part of a session handed to callers.
type Identity struct {
	UserID   int    `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	PhotoURL string `json:"photo_url"`
}

func (s *Session) ID() string { return s.id }

func (s *Session) Role() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.role
}

func (s *Session) Identity() Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Identity{
		UserID:   s.userID,
		Username: s.username,
		Name:     s.name,
		Role:     s.role,
		PhotoURL: s.photoURL,
	}
}

// SetPhotoURL updates the cached photo after a profile upload so the
// navigation bar reflects it without a new login.
func (s *Session) SetPhotoURL(u string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.photoURL = u
}

// BearerToken implements backend.CredentialSource.
func (s *Session) BearerToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// CSRFToken implements backend.CredentialSource.
func (s *Session) CSRFToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.csrfToken
}

// SetCSRFToken implements backend.CredentialSource.
func (s *Session) SetCSRFToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.csrfToken = token
}

func (s *Session) expired(now time.Time) bool {
	return now.After(s.expiresAt)
}

// Store holds active sessions in memory. Login creates a fully populated
// session in one step and logout removes it in one step, so a session is
// never observable half-initialized.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
}

// Create registers a new session for a signed-in user and returns it.
func (st *Store) Create(identity Identity, upstreamToken string) *Session {
	now := time.Now()
	s := &Session{
		id:        uuid.NewString(),
		userID:    identity.UserID,
		username:  identity.Username,
		name:      identity.Name,
		role:      identity.Role,
		photoURL:  identity.PhotoURL,
		token:     upstreamToken,
		createdAt: now,
		expiresAt: now.Add(st.ttl),
	}

	st.mu.Lock()
	st.sessions[s.id] = s
	st.mu.Unlock()
	return s
}

// Get returns the session for id. Expired sessions are dropped and reported
// as missing.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if s.expired(time.Now()) {
		st.Delete(id)
		return nil, false
	}
	return s, true
}

// Delete tears the session down; subsequent lookups miss.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

// Len reports the number of live sessions, used by the health endpoint.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
