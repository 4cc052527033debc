package ports

import (
	"context"

	"github.com/accessdesk/project-access/internal/core/domain"
)

// RequestService is the access request workflow.
type RequestService interface {
	Create(ctx context.Context, sess *domain.Session, projectID string) (*domain.AccessRequest, error)
	Decide(ctx context.Context, sess *domain.Session, requestID, decision string) (*domain.AccessRequest, error)
	ListPending(ctx context.Context, sess *domain.Session) ([]*domain.JoinedRequest, error)
	ListForClient(ctx context.Context, sess *domain.Session) ([]*domain.JoinedRequest, error)
}

// ReportService opens the full joined history for streaming. Errors returned
// by Open happen before any output is produced.
type ReportService interface {
	Open(ctx context.Context, sess *domain.Session) (JoinedRequestCursor, error)
}
