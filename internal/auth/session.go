package auth

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"

	"pulasa-client/internal/status"
	"pulasa-client/internal/tokenstore"
	"pulasa-client/models"
)

// Session holds the authenticated user and token. The two are always set and
// cleared together; dependents (realtime channel, domain stores) observe
// changes through Watch and never see a half-cleared session.
type Session struct {
	client *Client
	store  tokenstore.Store

	mu    sync.RWMutex
	user  *models.User
	token string

	watchMu  sync.Mutex
	watchers []chan struct{}
}

func NewSession(client *Client, store tokenstore.Store) *Session {
	return &Session{client: client, store: store}
}

// Restore loads a persisted token on startup and exchanges it for a user
// profile. An expired or rejected token is discarded; Restore never fails
// the program, it just leaves the session logged out.
func (s *Session) Restore(ctx context.Context) {
	token, err := s.store.Load(ctx)
	if err != nil {
		log.WithError(err).Warn("session: token load failed")
		return
	}
	if token == "" {
		return
	}
	if expired(token) {
		log.Info("session: stored token expired, clearing")
		_ = s.store.Clear(ctx)
		return
	}

	user, err := s.client.Profile(ctx, token)
	if err != nil {
		log.WithError(err).Info("session: stored token rejected, clearing")
		_ = s.store.Clear(ctx)
		return
	}
	s.set(ctx, user, token)
}

func (s *Session) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, token, err := s.client.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	s.set(ctx, user, token)
	return user, nil
}

func (s *Session) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	user, token, err := s.client.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	s.set(ctx, user, token)
	return user, nil
}

// Logout tells the auth service and clears local state. Local state is
// cleared even when the remote call fails.
func (s *Session) Logout(ctx context.Context) {
	if token := s.Token(); token != "" {
		if err := s.client.Logout(ctx, token); err != nil {
			log.WithError(err).Warn("session: remote logout failed")
		}
	}
	s.Clear(ctx)
}

// TransferToken performs the one-time token-transfer handshake: a token
// arriving as a URL query parameter is validated with the auth service,
// adopted, and exchanged for a profile. If validation cannot be reached the
// profile fetch itself serves as the fallback check.
func (s *Session) TransferToken(ctx context.Context, token string) (*models.User, error) {
	valid, err := s.client.ValidateToken(ctx, token)
	if err != nil {
		log.WithError(err).Warn("session: token validation unreachable, falling back to profile fetch")
	} else if !valid {
		return nil, status.ErrTokenInvalid
	}

	user, err := s.client.Profile(ctx, token)
	if err != nil {
		return nil, status.ErrTokenInvalid
	}
	s.set(ctx, user, token)
	return user, nil
}

func (s *Session) UpdateProfile(ctx context.Context, update ProfileUpdate) (*models.User, error) {
	s.mu.RLock()
	user, token := s.user, s.token
	s.mu.RUnlock()
	if user == nil {
		return nil, status.ErrNotAuthenticated
	}

	updated, err := s.client.UpdateProfile(ctx, token, user.ID, update)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.user = updated
	s.mu.Unlock()
	return updated, nil
}

func (s *Session) Current() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) IsAuthenticated() bool { return s.Current() != nil }

func (s *Session) IsAdmin() bool {
	u := s.Current()
	return u != nil && u.IsAdmin
}

// Clear removes user and token together.
func (s *Session) Clear(ctx context.Context) {
	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.mu.Unlock()

	if err := s.store.Clear(ctx); err != nil {
		log.WithError(err).Warn("session: token clear failed")
	}
	s.notify()
}

// Watch returns a channel that receives a signal after every login, logout
// or token transfer.
func (s *Session) Watch() <-chan struct{} {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	ch := make(chan struct{}, 1)
	s.watchers = append(s.watchers, ch)
	return ch
}

func (s *Session) set(ctx context.Context, user *models.User, token string) {
	s.mu.Lock()
	s.user = user
	s.token = token
	s.mu.Unlock()

	if err := s.store.Save(ctx, token); err != nil {
		log.WithError(err).Warn("session: token persist failed")
	}
	s.notify()
}

func (s *Session) notify() {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	for _, ch := range s.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// expired inspects the token's exp claim locally without verifying the
// signature; verification is the auth service's job.
func expired(token string) bool {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		// Not a JWT; let the auth service decide.
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Before(time.Now())
}
