package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/accessdesk/project-access/internal/core/domain"
	"github.com/accessdesk/project-access/internal/core/ports"
)

type ProjectService struct {
	repo ports.ProjectRepository
	log  zerolog.Logger
}

func NewProjectService(repo ports.ProjectRepository, log zerolog.Logger) *ProjectService {
	return &ProjectService{repo: repo, log: log}
}

// ListProjects returns every project to admins and only the granted ones to
// clients.
func (s *ProjectService) ListProjects(ctx context.Context, sess *domain.Session) ([]*domain.Project, error) {
	if err := domain.RequireAuthenticated(sess); err != nil {
		return nil, err
	}
	if sess.IsAdmin() {
		return s.repo.List(ctx, "")
	}
	return s.repo.List(ctx, sess.UserID)
}

func (s *ProjectService) ListForRequestAccess(ctx context.Context, sess *domain.Session) ([]*domain.ProjectAccessView, error) {
	if err := domain.RequireAuthenticated(sess); err != nil {
		return nil, err
	}
	return s.repo.ListForRequestAccess(ctx)
}

func (s *ProjectService) CreateProject(ctx context.Context, sess *domain.Session, in ports.CreateProjectInput) (*domain.Project, error) {
	if err := domain.RequireAdmin(sess); err != nil {
		return nil, err
	}
	if err := domain.ValidatePhone(in.Phone); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p, err := s.repo.Create(ctx, &domain.Project{
		Name:              in.Name,
		Location:          in.Location,
		Phone:             in.Phone,
		Email:             in.Email,
		StartDate:         in.StartDate.UTC(),
		EndDate:           in.EndDate.UTC(),
		CreatedBy:         sess.UserID,
		ClientsWithAccess: []string{},
		CreatedAt:         now,
		UpdatedAt:         now,
	})
	if err != nil {
		s.log.Error().Err(err).Msg("failed to create project")
		return nil, err
	}

	s.log.Info().Str("project_id", p.ID).Str("by", sess.UserID).Msg("project created")
	return p, nil
}

// UpdateProject applies only the supplied fields.
func (s *ProjectService) UpdateProject(ctx context.Context, sess *domain.Session, id string, u domain.ProjectUpdate) (*domain.Project, error) {
	if err := domain.RequireAdmin(sess); err != nil {
		return nil, err
	}
	if u.Phone != nil {
		if err := domain.ValidatePhone(*u.Phone); err != nil {
			return nil, err
		}
	}
	if u.Empty() {
		return s.repo.FindByID(ctx, id)
	}

	p, err := s.repo.Update(ctx, id, u)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("project_id", id).Str("by", sess.UserID).Msg("project updated")
	return p, nil
}

// DeleteProject removes the project. Access requests that reference it are
// kept; their joined project reads as null afterwards.
func (s *ProjectService) DeleteProject(ctx context.Context, sess *domain.Session, id string) (*domain.Project, error) {
	if err := domain.RequireAdmin(sess); err != nil {
		return nil, err
	}
	p, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("project_id", id).Str("by", sess.UserID).Msg("project deleted")
	return p, nil
}
