package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pders01/bulletin/internal/debuglog"
	"github.com/pders01/bulletin/internal/storage"
)

// Session is the logged-in user, persisted in the local store. It is safe for
// concurrent use; Token can be handed to feed.Fetcher.SetTokenSource.
type Session struct {
	store  *storage.Store
	client *Client
	now    func() time.Time

	mu      sync.RWMutex
	current *storage.Session
}

// NewSession restores any saved login. A saved token that no longer parses
// or has expired is removed.
func NewSession(store *storage.Store, client *Client) (*Session, error) {
	s := &Session{store: store, client: client, now: time.Now}
	if err := s.restore(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) restore() error {
	saved, err := s.store.GetSession()
	if errors.Is(err, storage.ErrNoSession) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("restoring session: %w", err)
	}

	claims, err := ParseToken(saved.Token)
	if err == nil && claims.Expired(s.now()) {
		err = fmt.Errorf("%w: expired", ErrInvalidToken)
	}
	if err != nil {
		debuglog.Warnf("dropping saved session: %v", err)
		return s.store.ClearSession()
	}

	s.mu.Lock()
	s.current = saved
	s.mu.Unlock()
	return nil
}

// Current returns a copy of the active session, or nil when logged out.
func (s *Session) Current() *storage.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	c := *s.current
	return &c
}

func (s *Session) LoggedIn() bool {
	return s.Current() != nil
}

// Token returns the bearer token, or "" when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.Token
}

func (s *Session) Login(ctx context.Context, email, password string) (*storage.Session, error) {
	token, err := s.client.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.adopt(token)
}

func (s *Session) Register(ctx context.Context, name, email, password string) (*storage.Session, error) {
	token, err := s.client.Register(ctx, name, email, password)
	if err != nil {
		return nil, err
	}
	return s.adopt(token)
}

func (s *Session) adopt(token string) (*storage.Session, error) {
	claims, err := ParseToken(token)
	if err != nil {
		return nil, err
	}

	session := &storage.Session{
		Token:   NormalizeToken(token),
		UserID:  claims.UserID,
		Subject: claims.Subject,
		Name:    claims.Name,
		Role:    claims.Role,
	}
	if err := s.store.SaveSession(session); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}

	s.mu.Lock()
	s.current = session
	s.mu.Unlock()

	debuglog.WithFields(map[string]interface{}{
		"user": claims.Subject,
		"role": claims.Role,
	}).Infof("logged in")

	c := *session
	return &c, nil
}

func (s *Session) Logout() error {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
	if err := s.store.ClearSession(); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}
