// Package session holds the single active login: bearer token, server
// profile and role.
//
// The Store is Anonymous until Login succeeds and returns to Anonymous on
// Logout. Token and profile are mirrored to the durable key-value store so
// Restore can bring the session back on the next start.
package session

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"roadfix/internal/api"
	"roadfix/internal/role"
	"roadfix/internal/storage"
)

// Session is an authenticated identity.
type Session struct {
	Token string
	User  api.User
	Role  role.Role
}

// DisplayName is the name shown in the header, falling back to the e-mail.
func (s *Session) DisplayName() string {
	if strings.TrimSpace(s.User.Name) != "" {
		return s.User.Name
	}
	return s.User.Email
}

// Store owns the current session.
//
// Thread-safety:
//   - All methods are safe for concurrent use; Token is called from API
//     request goroutines while the UI goroutine logs in and out
type Store struct {
	mu      sync.RWMutex
	storage *storage.Storage
	current *Session

	now    func() time.Time
	parser *jwt.Parser
}

// NewStore creates an anonymous store backed by st.
func NewStore(st *storage.Storage) *Store {
	return &Store{
		storage: st,
		now:     time.Now,
		parser:  jwt.NewParser(),
	}
}

// Restore rebuilds the session from durable storage.
//
// Flow:
//  1. Read token and serialized profile
//  2. Discard both if the profile is not valid JSON
//  3. Discard both if the token is a JWT whose exp has passed
//  4. Otherwise become Authenticated
//
// Returns:
//   - *Session and true when a session was restored
func (s *Store) Restore() (*Session, bool) {
	token, hasToken := s.storage.Get(storage.KeyToken)
	rawUser, hasUser := s.storage.Get(storage.KeyUser)
	if !hasToken || !hasUser || token == "" {
		return nil, false
	}

	var user api.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		log.Printf("⚠️  Stored profile is malformed, logging out: %v\n", err)
		_ = s.Logout()
		return nil, false
	}

	if s.expired(token) {
		log.Println("⚠️  Stored token has expired, logging out")
		_ = s.Logout()
		return nil, false
	}

	sess := &Session{Token: token, User: user, Role: role.Parse(user.Role)}

	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()

	log.Printf("✓ Restored session for %s (%s)\n", sess.DisplayName(), sess.Role.Kind())
	return sess, true
}

// expired reports whether token is a JWT with an exp claim in the past.
// Opaque tokens never expire client-side; the server answers 401 instead.
func (s *Store) expired(token string) bool {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := s.parser.ParseUnverified(token, claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !s.now().Before(claims.ExpiresAt.Time)
}

// Login makes (token, user) the active session and persists it.
//
// The in-memory session is set even if persisting fails; the error is
// returned so the caller can warn that the login will not survive a
// restart.
func (s *Store) Login(token string, user api.User) (*Session, error) {
	if token == "" {
		return nil, fmt.Errorf("login: empty token")
	}
	sess := &Session{Token: token, User: user, Role: role.Parse(user.Role)}

	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()

	profile, err := json.Marshal(user)
	if err != nil {
		return sess, fmt.Errorf("encode profile: %w", err)
	}
	if err := s.storage.SetMultiple(map[string]string{
		storage.KeyToken: token,
		storage.KeyUser:  string(profile),
	}); err != nil {
		return sess, fmt.Errorf("persist session: %w", err)
	}

	log.Printf("✓ Logged in as %s (%s)\n", sess.DisplayName(), sess.Role.Kind())
	return sess, nil
}

// Logout clears credential, profile and role. The remembered e-mail is
// kept.
func (s *Store) Logout() error {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	if err := s.storage.Delete(storage.KeyToken, storage.KeyUser); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Current returns the active session.
func (s *Store) Current() (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.current != nil
}

// Authenticated reports whether a session is active.
func (s *Store) Authenticated() bool {
	_, ok := s.Current()
	return ok
}

// Token returns the bearer token, or "" when anonymous. It satisfies
// api.TokenSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.Token
}

// RememberEmail stores email for the next login when remember is true and
// forgets it otherwise.
func (s *Store) RememberEmail(email string, remember bool) error {
	if remember {
		return s.storage.SetMultiple(map[string]string{
			storage.KeySavedEmail: email,
			storage.KeyRememberMe: "true",
		})
	}
	return s.storage.Delete(storage.KeySavedEmail, storage.KeyRememberMe)
}

// RememberedEmail returns the e-mail saved by RememberEmail.
func (s *Store) RememberedEmail() (string, bool) {
	if flag, _ := s.storage.Get(storage.KeyRememberMe); flag != "true" {
		return "", false
	}
	return s.storage.Get(storage.KeySavedEmail)
}
