package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/accessdesk/project-access/internal/api/middleware"
	"github.com/accessdesk/project-access/internal/core/domain"
)

// ctxSession returns the session resolved by the session middleware, or nil
// for guests. Services run their own guards on the value.
func ctxSession(c echo.Context) *domain.Session {
	return middleware.SessionFrom(c)
}

// bindAndValidate binds the body into req and runs the struct validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.Validation("invalid payload")
	}
	return c.Validate(req)
}
