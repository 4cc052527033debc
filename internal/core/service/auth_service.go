package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/accessdesk/project-access/internal/core/domain"
	"github.com/accessdesk/project-access/internal/core/ports"
	"github.com/accessdesk/project-access/internal/pkg/metrics"
)

// AuthService implements signup, login and session resolution.
type AuthService struct {
	users    ports.UserRepository
	sessions ports.SessionStore
	tokens   *SessionTokens
	ttl      time.Duration
	log      zerolog.Logger
}

func NewAuthService(users ports.UserRepository, sessions ports.SessionStore, tokens *SessionTokens, ttl time.Duration, log zerolog.Logger) *AuthService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthService{users: users, sessions: sessions, tokens: tokens, ttl: ttl, log: log}
}

// TTL is the lifetime of sessions created by Login.
func (s *AuthService) TTL() time.Duration { return s.ttl }

func (s *AuthService) Signup(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := createAccount(ctx, s.users, username, password, domain.RoleClient)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("user signed up")
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	if username == "" || password == "" {
		return nil, domain.ErrMissingCredentials
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !verifyPassword(user.PasswordHash, password) {
		return nil, domain.ErrInvalidCredentials
	}

	sess := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		ExpiresAt: time.Now().Add(s.ttl).UTC(),
	}
	if err := s.sessions.Save(ctx, sess, s.ttl); err != nil {
		return nil, err
	}

	token, err := s.tokens.Sign(sess)
	if err != nil {
		return nil, err
	}

	metrics.SessionsCreatedTotal.Inc()
	s.log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("login successful")

	return &ports.LoginResult{Token: token, Session: sess}, nil
}

func (s *AuthService) Resolve(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, domain.ErrNotAuthenticated
	}

	id, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrNotAuthenticated
		}
		return nil, err
	}
	if sess.Expired(time.Now()) {
		return nil, domain.ErrNotAuthenticated
	}
	return sess, nil
}

// Logout deletes the session. A missing session is not an error.
func (s *AuthService) Logout(ctx context.Context, sess *domain.Session) error {
	if sess == nil || sess.ID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sess.ID); err != nil {
		return err
	}
	s.log.Info().Str("user_id", sess.UserID).Msg("logged out")
	return nil
}
