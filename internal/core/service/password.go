package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/accessdesk/project-access/internal/core/domain"
	"github.com/accessdesk/project-access/internal/core/ports"
)

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func verifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// createAccount is shared by public signup and admin user creation.
func createAccount(ctx context.Context, users ports.UserRepository, username, password string, role domain.Role) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, domain.ErrMissingCredentials
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return users.Create(ctx, &domain.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

// EnsureAdmin creates an admin account unless the username is already taken.
// It reports whether an account was created.
func EnsureAdmin(ctx context.Context, users ports.UserRepository, username, password string) (bool, error) {
	_, err := createAccount(ctx, users, username, password, domain.RoleAdmin)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrUsernameTaken):
		return false, nil
	default:
		return false, err
	}
}
