package session

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"sync"
	"time"

	"github.com/avetrov/gamebank/internal/dependencies/clock"
	"github.com/avetrov/gamebank/internal/model"
)

// ErrInvalidSession is returned for unknown or expired tokens
var ErrInvalidSession = errors.New("invalid or expired session")

// Session binds a bearer token to an identity
type Session struct {
	Token      string
	IdentityID model.IdentityID
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

// Config holds configuration for the session service
type Config struct {
	Duration time.Duration
}

// DefaultConfig returns default session configuration
func DefaultConfig() Config {
	return Config{
		Duration: 24 * time.Hour,
	}
}

// Service hands out bearer tokens for registered identities. There is no
// password flow: the account source is trusted, and registration itself
// mints the session.
type Service struct {
	clock clock.Clock

	mu       sync.RWMutex
	sessions map[string]*Session

	duration time.Duration
}

// New creates a new session Service
func New(clk clock.Clock, cfg Config) *Service {
	if cfg.Duration == 0 {
		cfg = DefaultConfig()
	}
	return &Service{
		clock:    clk,
		sessions: make(map[string]*Session),
		duration: cfg.Duration,
	}
}

// Create mints a session for an identity
func (s *Service) Create(identityID model.IdentityID) *Session {
	now := s.clock.Now()
	session := &Session{
		Token:      generateToken(),
		IdentityID: identityID,
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.duration),
	}

	s.mu.Lock()
	s.sessions[session.Token] = session
	s.mu.Unlock()

	return session
}

// Validate checks a token and returns its session
func (s *Service) Validate(token string) (*Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrInvalidSession
	}

	if s.clock.Now().After(session.ExpiresAt) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return nil, ErrInvalidSession
	}

	return session, nil
}

// Invalidate removes a session
func (s *Service) Invalidate(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// CleanExpired removes expired sessions (call periodically)
func (s *Service) CleanExpired() {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	for token, session := range s.sessions {
		if now.After(session.ExpiresAt) {
			delete(s.sessions, token)
		}
	}
}

func generateToken() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return "sess_" + base64.RawURLEncoding.EncodeToString(b)
}
