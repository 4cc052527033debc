package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/accessdesk/project-access/internal/core/domain"
)

// guard rejects the request with the error check returns for its session.
// Services repeat the same checks; route guards fail before the body is read.
func guard(check func(*domain.Session) error) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := check(SessionFrom(c)); err != nil {
				return err
			}
			return next(c)
		}
	}
}

// RequireAuth admits any live session.
func RequireAuth() echo.MiddlewareFunc { return guard(domain.RequireAuthenticated) }

// RequireAdmin admits admins only.
func RequireAdmin() echo.MiddlewareFunc { return guard(domain.RequireAdmin) }

// RequireClient admits clients only.
func RequireClient() echo.MiddlewareFunc { return guard(domain.RequireClient) }
