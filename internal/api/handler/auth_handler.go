package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/accessdesk/project-access/internal/core/domain"
	"github.com/accessdesk/project-access/internal/core/ports"
)

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

type AuthHandler struct {
	authService ports.AuthService
	cookie      CookieConfig
}

func NewAuthHandler(authService ports.AuthService, cookie CookieConfig) *AuthHandler {
	if cookie.Name == "" {
		cookie.Name = "sid"
	}
	return &AuthHandler{authService: authService, cookie: cookie}
}

type credentialsRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	// Role is accepted for compatibility and ignored on signup.
	Role string `json:"role,omitempty"`
}

// Signup creates a Client account.
//
// @Summary      Sign up
// @Description  Creates a Client account. Any role in the body is ignored.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      credentialsRequest  true  "Credentials"
// @Success      201   {object}  userIDResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /auth/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req credentialsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.authService.Signup(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, userIDResponse{messageResponse: ok("User created"), UserID: user.ID})
}

// Login verifies credentials and sets the session cookie.
//
// @Summary      Log in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      credentialsRequest  true  "Credentials"
// @Success      200   {object}  sessionUserResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req credentialsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	c.SetCookie(h.sessionCookie(res.Token, int(h.cookie.MaxAge.Seconds())))
	return c.JSON(http.StatusOK, sessionUserResponse{messageResponse: ok("Login successful"), User: res.Session})
}

// Me returns the caller's identity.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  sessionUserResponse
// @Failure      401  {object}  errorResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	sess := ctxSession(c)
	if err := domain.RequireAuthenticated(sess); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sessionUserResponse{messageResponse: ok("Authenticated user"), User: sess})
}

// Logout destroys the session and clears the cookie. It succeeds for guests.
//
// @Summary      Log out
// @Tags         auth
// @Produce      json
// @Success      200  {object}  messageResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.authService.Logout(c.Request().Context(), ctxSession(c)); err != nil {
		return err
	}
	c.SetCookie(h.sessionCookie("", -1))
	return c.JSON(http.StatusOK, ok("Logged out"))
}

func (h *AuthHandler) sessionCookie(value string, maxAge int) *http.Cookie {
	cookie := &http.Cookie{
		Name:     h.cookie.Name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	}
	if h.cookie.Secure {
		cookie.SameSite = http.SameSiteNoneMode
	}
	return cookie
}
