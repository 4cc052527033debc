package ports

import (
	"context"

	"github.com/accessdesk/project-access/internal/core/domain"
)

// ProjectRepository defines project persistence, including the access set.
type ProjectRepository interface {
	Create(ctx context.Context, p *domain.Project) (*domain.Project, error)
	FindByID(ctx context.Context, id string) (*domain.Project, error)
	// Update applies a partial update and returns the updated project.
	Update(ctx context.Context, id string, u domain.ProjectUpdate) (*domain.Project, error)
	// Delete removes the project and returns it as it was.
	Delete(ctx context.Context, id string) (*domain.Project, error)
	// List returns all projects, or only those granted to clientID when it is
	// non-empty.
	List(ctx context.Context, clientID string) ([]*domain.Project, error)
	ListForRequestAccess(ctx context.Context) ([]*domain.ProjectAccessView, error)

	Exists(ctx context.Context, id string) (bool, error)
	// AddClientAccess is an idempotent set-add on clientsWithAccess.
	AddClientAccess(ctx context.Context, projectID, clientID string) error
	// RemoveClientAccess is an idempotent set-remove on clientsWithAccess.
	RemoveClientAccess(ctx context.Context, projectID, clientID string) error
	// RemoveClientFromAll pulls clientID from every project's access set.
	RemoveClientFromAll(ctx context.Context, clientID string) (int64, error)
}
