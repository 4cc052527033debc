package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/accessdesk/project-access/internal/core/domain"
	"github.com/accessdesk/project-access/internal/core/ports"
)

// UserService implements admin-side user management.
type UserService struct {
	users    ports.UserRepository
	projects ports.ProjectRepository
	requests ports.RequestRepository
	sessions ports.SessionStore
	log      zerolog.Logger
}

func NewUserService(
	users ports.UserRepository,
	projects ports.ProjectRepository,
	requests ports.RequestRepository,
	sessions ports.SessionStore,
	log zerolog.Logger,
) *UserService {
	return &UserService{users: users, projects: projects, requests: requests, sessions: sessions, log: log}
}

func (s *UserService) CreateUser(ctx context.Context, sess *domain.Session, username, password, role string) (*domain.User, error) {
	if err := domain.RequireAdmin(sess); err != nil {
		return nil, err
	}
	r, err := domain.ParseRole(role)
	if err != nil {
		return nil, err
	}

	user, err := createAccount(ctx, s.users, username, password, r)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", user.ID).Str("role", string(r)).Str("by", sess.UserID).Msg("user created by admin")
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context, sess *domain.Session) ([]*domain.User, error) {
	if err := domain.RequireAdmin(sess); err != nil {
		return nil, err
	}
	return s.users.List(ctx)
}

// DeleteUser removes the user's requests, pulls the user from every access
// set and revokes their sessions before deleting the user record, so no
// reference to the user outlives it.
func (s *UserService) DeleteUser(ctx context.Context, sess *domain.Session, userID string) error {
	if err := domain.RequireAdmin(sess); err != nil {
		return err
	}
	if userID == sess.UserID {
		return domain.ErrSelfDelete
	}

	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return err
	}

	removedRequests, err := s.requests.DeleteByClient(ctx, userID)
	if err != nil {
		return fmt.Errorf("delete user: remove requests: %w", err)
	}
	pulled, err := s.projects.RemoveClientFromAll(ctx, userID)
	if err != nil {
		return fmt.Errorf("delete user: revoke access: %w", err)
	}
	revoked, err := s.sessions.DeleteByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("delete user: revoke sessions: %w", err)
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}

	s.log.Info().
		Str("user_id", userID).
		Str("by", sess.UserID).
		Int64("requests_removed", removedRequests).
		Int64("grants_removed", pulled).
		Int("sessions_revoked", revoked).
		Msg("user deleted")
	return nil
}
