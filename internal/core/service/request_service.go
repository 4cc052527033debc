package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/accessdesk/project-access/internal/core/domain"
	"github.com/accessdesk/project-access/internal/core/ports"
	"github.com/accessdesk/project-access/internal/pkg/metrics"
)

// NoTx runs the function directly, for stores without transactions.
type NoTx struct{}

func (NoTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// RequestService implements the access request workflow.
type RequestService struct {
	requests ports.RequestRepository
	projects ports.ProjectRepository
	tx       ports.TxRunner
	log      zerolog.Logger
}

func NewRequestService(requests ports.RequestRepository, projects ports.ProjectRepository, tx ports.TxRunner, log zerolog.Logger) *RequestService {
	if tx == nil {
		tx = NoTx{}
	}
	return &RequestService{requests: requests, projects: projects, tx: tx, log: log}
}

// Create files a PENDING request from the calling client for projectID.
func (s *RequestService) Create(ctx context.Context, sess *domain.Session, projectID string) (*domain.AccessRequest, error) {
	if err := domain.RequireClient(sess); err != nil {
		return nil, err
	}
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, domain.Validation("projectId is required")
	}

	ok, err := s.projects.Exists(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if !ok {
		return nil, domain.ErrProjectNotFound
	}

	req, err := s.requests.Create(ctx, domain.NewAccessRequest(projectID, sess.UserID, time.Now().UTC()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	metrics.AccessRequestsCreatedTotal.Inc()
	s.log.Info().Str("request_id", req.ID).Str("project_id", projectID).Str("client_id", sess.UserID).Msg("access request created")
	return req, nil
}

// Decide sets the request's status and decidedBy and, on approval, adds the
// client to the project's access set. The request write happens first; the
// grant is a set-add so retrying a decision never duplicates it. Deciding an
// already decided request overwrites the earlier decision.
func (s *RequestService) Decide(ctx context.Context, sess *domain.Session, requestID, decision string) (*domain.AccessRequest, error) {
	if err := domain.RequireAdmin(sess); err != nil {
		return nil, err
	}
	status, err := domain.ParseDecision(decision)
	if err != nil {
		return nil, err
	}

	var (
		prev    domain.RequestStatus
		updated *domain.AccessRequest
	)
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		p, u, err := s.requests.SetDecision(ctx, requestID, status, sess.UserID)
		if err != nil {
			return err
		}
		prev, updated = p, u

		if !status.GrantsAccess() {
			return nil
		}
		err = s.projects.AddClientAccess(ctx, u.ProjectID, u.ClientID)
		if errors.Is(err, domain.ErrProjectNotFound) {
			s.log.Warn().Str("request_id", u.ID).Str("project_id", u.ProjectID).Msg("approved request targets a deleted project, no grant applied")
			return nil
		}
		if err != nil {
			return fmt.Errorf("grant access: %w", err)
		}
		return nil
	})
	if err != nil {
		if updated != nil {
			// Without a transaction the request stays decided and the
			// reconciler re-applies the grant later.
			s.log.Error().Err(err).Str("request_id", requestID).Msg("access grant failed after decision write")
		}
		return nil, err
	}

	if prev.Terminal() {
		s.log.Warn().
			Str("request_id", requestID).
			Str("previous", string(prev)).
			Str("status", string(status)).
			Msg("request re-decided")
	}
	metrics.AccessDecisionsTotal.WithLabelValues(string(status), strconv.FormatBool(prev.Terminal())).Inc()
	s.log.Info().Str("request_id", requestID).Str("status", string(status)).Str("by", sess.UserID).Msg("request decided")

	return updated, nil
}

// ListPending returns every PENDING request joined with its project and
// client. Order is unspecified.
func (s *RequestService) ListPending(ctx context.Context, sess *domain.Session) ([]*domain.JoinedRequest, error) {
	if err := domain.RequireAdmin(sess); err != nil {
		return nil, err
	}
	return s.requests.ListPendingJoined(ctx)
}

// ListForClient returns the caller's own requests joined with project name.
func (s *RequestService) ListForClient(ctx context.Context, sess *domain.Session) ([]*domain.JoinedRequest, error) {
	if err := domain.RequireAuthenticated(sess); err != nil {
		return nil, err
	}
	return s.requests.ListByClientJoined(ctx, sess.UserID)
}
