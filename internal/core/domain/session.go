package domain

import "time"

// Session binds an opaque token to an authenticated identity.
type Session struct {
	ID        string    `json:"-"`
	UserID    string    `json:"id"`
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"-"`
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// IsAdmin reports whether the session belongs to an admin.
func (s *Session) IsAdmin() bool { return s != nil && s.Role == RoleAdmin }

// RequireAuthenticated fails with ErrNotAuthenticated when there is no live
// session.
func RequireAuthenticated(s *Session) error {
	if s == nil || s.UserID == "" || s.Expired(time.Now()) {
		return ErrNotAuthenticated
	}
	return nil
}

// RequireAdmin fails with ErrNotAuthenticated when there is no live session
// and with ErrAdminOnly when the session is not an admin's.
func RequireAdmin(s *Session) error {
	if err := RequireAuthenticated(s); err != nil {
		return err
	}
	if s.Role != RoleAdmin {
		return ErrAdminOnly
	}
	return nil
}

// RequireClient fails with ErrClientOnly when the session is not a client's.
func RequireClient(s *Session) error {
	if err := RequireAuthenticated(s); err != nil {
		return err
	}
	if s.Role != RoleClient {
		return ErrClientOnly
	}
	return nil
}
