package ports

import (
	"context"
	"time"

	"github.com/accessdesk/project-access/internal/core/domain"
)

// SessionStore persists server-side sessions with a TTL.
type SessionStore interface {
	Save(ctx context.Context, s *domain.Session, ttl time.Duration) error
	// Get returns domain.ErrSessionNotFound for unknown or expired ids.
	Get(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) (int, error)
}

// ActivityRecorder persists audit entries.
type ActivityRecorder interface {
	Record(ctx context.Context, e domain.ActivityEntry) error
}
