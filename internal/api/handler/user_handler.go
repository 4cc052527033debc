package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/accessdesk/project-access/internal/core/domain"
	"github.com/accessdesk/project-access/internal/core/ports"
)

type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

type createUserRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role,omitempty" enums:"Admin,Client"`
}

// List returns every user without password hashes.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Success      200  {object}  usersResponse
// @Failure      403  {object}  errorResponse
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.service.ListUsers(c.Request().Context(), ctxSession(c))
	if err != nil {
		return err
	}
	if users == nil {
		users = []*domain.User{}
	}
	return c.JSON(http.StatusOK, usersResponse{
		messageResponse: ok(fetched(len(users), "users")),
		Users:           users,
		Count:           len(users),
	})
}

// Create adds a user with the given role (Client when omitted).
//
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      createUserRequest  true  "User"
// @Success      201   {object}  userIDResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.service.CreateUser(c.Request().Context(), ctxSession(c), req.Username, req.Password, req.Role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, userIDResponse{messageResponse: ok("User created"), UserID: user.ID})
}

// Delete removes a user together with their requests, grants and sessions.
//
// @Summary      Delete a user
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  messageResponse
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	if err := h.service.DeleteUser(c.Request().Context(), ctxSession(c), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ok("User deleted successfully"))
}
