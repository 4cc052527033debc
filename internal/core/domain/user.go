package domain

import "time"

// Role is the closed set of actor roles.
type Role string

const (
	RoleAdmin  Role = "Admin"
	RoleClient Role = "Client"
)

// ParseRole accepts the two known roles; an empty string defaults to Client.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case "", RoleClient:
		return RoleClient, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", ErrInvalidRole
	}
}

// User models an authenticated actor in the system.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
