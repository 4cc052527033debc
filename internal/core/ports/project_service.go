package ports

import (
	"context"
	"time"

	"github.com/accessdesk/project-access/internal/core/domain"
)

// CreateProjectInput carries the fields of a new project.
type CreateProjectInput struct {
	Name      string
	Location  string
	Phone     string
	Email     string
	StartDate time.Time
	EndDate   time.Time
}

// ProjectService covers project CRUD with role-aware listing.
type ProjectService interface {
	ListProjects(ctx context.Context, sess *domain.Session) ([]*domain.Project, error)
	ListForRequestAccess(ctx context.Context, sess *domain.Session) ([]*domain.ProjectAccessView, error)
	CreateProject(ctx context.Context, sess *domain.Session, in CreateProjectInput) (*domain.Project, error)
	UpdateProject(ctx context.Context, sess *domain.Session, id string, u domain.ProjectUpdate) (*domain.Project, error)
	DeleteProject(ctx context.Context, sess *domain.Session, id string) (*domain.Project, error)
}
