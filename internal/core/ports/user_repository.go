package ports

import (
	"context"

	"github.com/accessdesk/project-access/internal/core/domain"
)

// UserRepository defines credential persistence.
type UserRepository interface {
	// Create inserts a user and returns it with its ID. A duplicate username
	// yields domain.ErrUsernameTaken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Delete(ctx context.Context, id string) error
}
