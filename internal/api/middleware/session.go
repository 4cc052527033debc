package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/accessdesk/project-access/internal/core/domain"
)

// SessionKey is the echo.Context key holding the caller's *domain.Session.
const SessionKey = "session"

// SessionResolver turns a cookie value into a live session.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*domain.Session, error)
}

// LoadSession resolves the session cookie, when present, and stores the
// session under SessionKey. Requests without a cookie, or with a cookie that
// no longer maps to a live session, continue as guests; guards decide later
// whether that is acceptable.
func LoadSession(resolver SessionResolver, cookieName string, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				return next(c)
			}

			sess, err := resolver.Resolve(c.Request().Context(), cookie.Value)
			switch {
			case err == nil:
				c.Set(SessionKey, sess)
			case errors.Is(err, domain.ErrUnauthorized):
				log.Debug().Err(err).Str("path", c.Path()).Msg("stale session cookie ignored")
				c.SetCookie(&http.Cookie{Name: cookieName, Path: "/", MaxAge: -1, HttpOnly: true})
			default:
				return err
			}
			return next(c)
		}
	}
}

// SessionFrom returns the session stored by LoadSession, or nil for guests.
func SessionFrom(c echo.Context) *domain.Session {
	sess, _ := c.Get(SessionKey).(*domain.Session)
	return sess
}
