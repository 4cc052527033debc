package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/accessdesk/project-access/internal/core/domain"
)

func TestRequestHandler_Create(t *testing.T) {
	stub := &stubRequestService{
		createFn: func(ctx context.Context, sess *domain.Session, projectID string) (*domain.AccessRequest, error) {
			if projectID != "p1" || sess.UserID != "u_client" {
				t.Fatalf("unexpected args: %s %+v", projectID, sess)
			}
			return &domain.AccessRequest{ID: "r1", ProjectID: projectID, ClientID: sess.UserID, Status: domain.StatusPending}, nil
		},
	}
	c, rec := newContext(http.MethodPost, "/api/requests", `{"projectId":"p1"}`, clientSession())

	if err := NewRequestHandler(stub).Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	expectStatus(t, rec, http.StatusCreated)
	req := decode(t, rec)["request"].(map[string]any)
	if req["status"] != "PENDING" || req["project"] != "p1" || req["decidedBy"] != nil {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestRequestHandler_Create_MissingProject(t *testing.T) {
	stub := &stubRequestService{}
	c, _ := newContext(http.MethodPost, "/api/requests", `{}`, clientSession())

	expectKind(t, NewRequestHandler(stub).Create(c), domain.ErrValidation)
}

func TestRequestHandler_Decide_Messages(t *testing.T) {
	for _, status := range []string{"APPROVED", "DENIED"} {
		t.Run(status, func(t *testing.T) {
			stub := &stubRequestService{
				decideFn: func(ctx context.Context, sess *domain.Session, id, decision string) (*domain.AccessRequest, error) {
					if id != "r1" || decision != status {
						t.Fatalf("unexpected args: %s %s", id, decision)
					}
					by := sess.UserID
					return &domain.AccessRequest{ID: id, Status: domain.RequestStatus(decision), DecidedBy: &by}, nil
				},
			}
			c, rec := newContext(http.MethodPost, "/api/requests/r1/decision", `{"status":"`+status+`"}`, adminSession())
			c.SetParamNames("id")
			c.SetParamValues("r1")

			if err := NewRequestHandler(stub).Decide(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			resp := decode(t, rec)
			want := map[string]string{"APPROVED": "Request approved", "DENIED": "Request denied"}[status]
			if resp["message"] != want {
				t.Fatalf("expected %q, got %v", want, resp["message"])
			}
			if resp["request"].(map[string]any)["decidedBy"] != "u_admin" {
				t.Fatalf("decidedBy not returned: %+v", resp["request"])
			}
		})
	}
}

func TestRequestHandler_Decide_InvalidStatus(t *testing.T) {
	stub := &stubRequestService{
		decideFn: func(ctx context.Context, sess *domain.Session, id, decision string) (*domain.AccessRequest, error) {
			_, err := domain.ParseDecision(decision)
			return nil, err
		},
	}
	c, _ := newContext(http.MethodPost, "/api/requests/r1/decision", `{"status":"MAYBE"}`, adminSession())

	err := NewRequestHandler(stub).Decide(c)
	expectKind(t, err, domain.ErrValidation)
	if err.Error() != "invalid status" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestRequestHandler_Pending_Empty(t *testing.T) {
	stub := &stubRequestService{
		pendingFn: func(ctx context.Context, sess *domain.Session) ([]*domain.JoinedRequest, error) {
			return nil, nil
		},
	}
	c, rec := newContext(http.MethodGet, "/api/requests/pending", "", adminSession())

	if err := NewRequestHandler(stub).Pending(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	resp := decode(t, rec)
	if resp["message"] != "No pending requests" || resp["count"] != float64(0) {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestRequestHandler_Mine(t *testing.T) {
	stub := &stubRequestService{
		mineFn: func(ctx context.Context, sess *domain.Session) ([]*domain.JoinedRequest, error) {
			return []*domain.JoinedRequest{
				{ID: "r1", Project: &domain.RequestProject{ID: "p1", Name: "Apollo", Location: "Lima"}, Status: domain.StatusApproved},
				{ID: "r2", Project: nil, Status: domain.StatusPending},
			}, nil
		},
	}
	c, rec := newContext(http.MethodGet, "/api/requests/my-requests", "", clientSession())

	if err := NewRequestHandler(stub).Mine(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	resp := decode(t, rec)
	if resp["count"] != float64(2) || resp["message"] != "Requests fetched" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	second := resp["requests"].([]any)[1].(map[string]any)
	if second["project"] != nil {
		t.Fatalf("orphaned request should carry a null project: %+v", second)
	}
}
