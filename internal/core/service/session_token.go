package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/accessdesk/project-access/internal/core/domain"
)

// SessionTokens signs and verifies the cookie value. The token only carries
// the session id; the session store stays authoritative for validity.
type SessionTokens struct {
	secret []byte
}

func NewSessionTokens(secret string) *SessionTokens {
	return &SessionTokens{secret: []byte(secret)}
}

// Sign returns an HS256 token whose jti is the session id.
func (t *SessionTokens) Sign(s *domain.Session) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        s.ID,
		Subject:   s.UserID,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Parse verifies the token and returns the session id it names.
func (t *SessionTokens) Parse(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid || claims.ID == "" {
		return "", domain.ErrNotAuthenticated
	}
	return claims.ID, nil
}
