package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/accessdesk/project-access/internal/api/middleware"
	"github.com/accessdesk/project-access/internal/core/domain"
	"github.com/accessdesk/project-access/internal/core/ports"
)

// --- auth ---

type stubAuthService struct {
	signupFn  func(ctx context.Context, username, password string) (*domain.User, error)
	loginFn   func(ctx context.Context, username, password string) (*ports.LoginResult, error)
	resolveFn func(ctx context.Context, token string) (*domain.Session, error)
	logoutFn  func(ctx context.Context, sess *domain.Session) error
}

func (s *stubAuthService) Signup(ctx context.Context, username, password string) (*domain.User, error) {
	return s.signupFn(ctx, username, password)
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	return s.loginFn(ctx, username, password)
}

func (s *stubAuthService) Resolve(ctx context.Context, token string) (*domain.Session, error) {
	return s.resolveFn(ctx, token)
}

func (s *stubAuthService) Logout(ctx context.Context, sess *domain.Session) error {
	if s.logoutFn == nil {
		return nil
	}
	return s.logoutFn(ctx, sess)
}

// --- users ---

type stubUserService struct {
	createFn func(ctx context.Context, sess *domain.Session, username, password, role string) (*domain.User, error)
	listFn   func(ctx context.Context, sess *domain.Session) ([]*domain.User, error)
	deleteFn func(ctx context.Context, sess *domain.Session, id string) error
}

func (s *stubUserService) CreateUser(ctx context.Context, sess *domain.Session, username, password, role string) (*domain.User, error) {
	return s.createFn(ctx, sess, username, password, role)
}

func (s *stubUserService) ListUsers(ctx context.Context, sess *domain.Session) ([]*domain.User, error) {
	return s.listFn(ctx, sess)
}

func (s *stubUserService) DeleteUser(ctx context.Context, sess *domain.Session, id string) error {
	return s.deleteFn(ctx, sess, id)
}

// --- projects ---

type stubProjectService struct {
	listFn       func(ctx context.Context, sess *domain.Session) ([]*domain.Project, error)
	listAccessFn func(ctx context.Context, sess *domain.Session) ([]*domain.ProjectAccessView, error)
	createFn     func(ctx context.Context, sess *domain.Session, in ports.CreateProjectInput) (*domain.Project, error)
	updateFn     func(ctx context.Context, sess *domain.Session, id string, u domain.ProjectUpdate) (*domain.Project, error)
	deleteFn     func(ctx context.Context, sess *domain.Session, id string) (*domain.Project, error)
}

func (s *stubProjectService) ListProjects(ctx context.Context, sess *domain.Session) ([]*domain.Project, error) {
	return s.listFn(ctx, sess)
}

func (s *stubProjectService) ListForRequestAccess(ctx context.Context, sess *domain.Session) ([]*domain.ProjectAccessView, error) {
	return s.listAccessFn(ctx, sess)
}

func (s *stubProjectService) CreateProject(ctx context.Context, sess *domain.Session, in ports.CreateProjectInput) (*domain.Project, error) {
	return s.createFn(ctx, sess, in)
}

func (s *stubProjectService) UpdateProject(ctx context.Context, sess *domain.Session, id string, u domain.ProjectUpdate) (*domain.Project, error) {
	return s.updateFn(ctx, sess, id, u)
}

func (s *stubProjectService) DeleteProject(ctx context.Context, sess *domain.Session, id string) (*domain.Project, error) {
	return s.deleteFn(ctx, sess, id)
}

// --- requests ---

type stubRequestService struct {
	createFn  func(ctx context.Context, sess *domain.Session, projectID string) (*domain.AccessRequest, error)
	decideFn  func(ctx context.Context, sess *domain.Session, id, decision string) (*domain.AccessRequest, error)
	pendingFn func(ctx context.Context, sess *domain.Session) ([]*domain.JoinedRequest, error)
	mineFn    func(ctx context.Context, sess *domain.Session) ([]*domain.JoinedRequest, error)
}

func (s *stubRequestService) Create(ctx context.Context, sess *domain.Session, projectID string) (*domain.AccessRequest, error) {
	return s.createFn(ctx, sess, projectID)
}

func (s *stubRequestService) Decide(ctx context.Context, sess *domain.Session, id, decision string) (*domain.AccessRequest, error) {
	return s.decideFn(ctx, sess, id, decision)
}

func (s *stubRequestService) ListPending(ctx context.Context, sess *domain.Session) ([]*domain.JoinedRequest, error) {
	return s.pendingFn(ctx, sess)
}

func (s *stubRequestService) ListForClient(ctx context.Context, sess *domain.Session) ([]*domain.JoinedRequest, error) {
	return s.mineFn(ctx, sess)
}

// --- reports ---

type stubReportService struct {
	openFn func(ctx context.Context, sess *domain.Session) (ports.JoinedRequestCursor, error)
}

func (s *stubReportService) Open(ctx context.Context, sess *domain.Session) (ports.JoinedRequestCursor, error) {
	return s.openFn(ctx, sess)
}

// sliceCursor replays rows. When failErr is set, iteration stops after
// failAt rows and Err reports failErr.
type sliceCursor struct {
	rows    []*domain.JoinedRequest
	pos     int
	failAt  int
	failErr error
	closed  bool
}

func (c *sliceCursor) Next(context.Context) bool {
	if c.failErr != nil && c.pos == c.failAt {
		return false
	}
	if c.pos >= len(c.rows) {
		return false
	}
	c.pos++
	return true
}

func (c *sliceCursor) Current() (*domain.JoinedRequest, error) { return c.rows[c.pos-1], nil }

func (c *sliceCursor) Err() error {
	if c.failErr != nil && c.pos == c.failAt {
		return c.failErr
	}
	return nil
}

func (c *sliceCursor) Close(context.Context) error {
	c.closed = true
	return nil
}

var errBoom = errors.New("boom")

// --- helpers ---

func adminSession() *domain.Session {
	return &domain.Session{ID: "s1", UserID: "u_admin", Username: "root", Role: domain.RoleAdmin}
}

func clientSession() *domain.Session {
	return &domain.Session{ID: "s2", UserID: "u_client", Username: "ana", Role: domain.RoleClient}
}

// newContext builds an echo.Context with the validator installed and, when
// sess is non-nil, the session the middleware would have loaded.
func newContext(method, target, body string, sess *domain.Session) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if sess != nil {
		c.Set(middleware.SessionKey, sess)
	}
	return c, rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return resp
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected %d, got %d (%s)", want, rec.Code, rec.Body.String())
	}
}

func expectKind(t *testing.T, err, kind error) {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Fatalf("expected %v, got %v", kind, err)
	}
}
