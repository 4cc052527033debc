package ports

import (
	"context"

	"github.com/accessdesk/project-access/internal/core/domain"
)

// JoinedRequestCursor iterates joined requests without materializing the
// whole result. Callers must Close it.
type JoinedRequestCursor interface {
	Next(ctx context.Context) bool
	Current() (*domain.JoinedRequest, error)
	Err() error
	Close(ctx context.Context) error
}

// RequestRepository defines access request persistence.
type RequestRepository interface {
	Create(ctx context.Context, r *domain.AccessRequest) (*domain.AccessRequest, error)
	// SetDecision atomically sets status and decidedBy on one request and
	// returns the updated record. Unknown ids yield domain.ErrRequestNotFound.
	SetDecision(ctx context.Context, id string, status domain.RequestStatus, decidedBy string) (prev domain.RequestStatus, updated *domain.AccessRequest, err error)
	ListPendingJoined(ctx context.Context) ([]*domain.JoinedRequest, error)
	ListByClientJoined(ctx context.Context, clientID string) ([]*domain.JoinedRequest, error)
	// StreamAllJoined opens a newest-first cursor over every request joined
	// with project (name, email) and client (username).
	StreamAllJoined(ctx context.Context) (JoinedRequestCursor, error)
	DeleteByClient(ctx context.Context, clientID string) (int64, error)
	// ListMissingGrants finds APPROVED requests whose existing project does
	// not list the client in its access set.
	ListMissingGrants(ctx context.Context) ([]domain.GrantRepair, error)
}

// TxRunner runs fn so that the writes it performs commit together when the
// store supports it. Implementations without transactions just call fn.
type TxRunner interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
