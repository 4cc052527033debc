package ports

import (
	"context"

	"github.com/accessdesk/project-access/internal/core/domain"
)

// LoginResult carries the new session and the signed cookie token for it.
type LoginResult struct {
	Token   string
	Session *domain.Session
}

// AuthService covers signup, login and session resolution.
type AuthService interface {
	// Signup creates a Client account; any requested role is ignored.
	Signup(ctx context.Context, username, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	// Resolve maps a cookie token to a live session.
	Resolve(ctx context.Context, token string) (*domain.Session, error)
	Logout(ctx context.Context, sess *domain.Session) error
}

// UserService covers admin-side user management.
type UserService interface {
	CreateUser(ctx context.Context, sess *domain.Session, username, password, role string) (*domain.User, error)
	ListUsers(ctx context.Context, sess *domain.Session) ([]*domain.User, error)
	// DeleteUser cascades: the user's requests, access grants and sessions go
	// before the user record.
	DeleteUser(ctx context.Context, sess *domain.Session, userID string) error
}
