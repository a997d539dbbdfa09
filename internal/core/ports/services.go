package ports

import (
	"context"

	"github.com/aitorfdez/flyover/internal/core/domain"
)

// EventPublisher publishes engine events to a message broker so
// monitoring and analytics consumers can observe sessions.
type EventPublisher interface {
	PublishRouteShown(ctx context.Context, projectID, landmarkID string, route *domain.Route) error
	PublishRouteCleared(ctx context.Context, projectID, landmarkID string) error
	PublishRouteFailed(ctx context.Context, projectID, landmarkID string, cause error) error
	PublishIntroStarted(ctx context.Context, projectID string) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// ProjectRepository reads project, building, and landmark records. The
// engine never writes them; the admin panel that does is a separate
// system.
type ProjectRepository interface {
	GetProject(ctx context.Context, id string) (*domain.Project, error)
	GetProjectBySlug(ctx context.Context, slug string) (*domain.Project, error)
	ListLandmarks(ctx context.Context, projectID string) ([]domain.Landmark, error)
	GetLandmark(ctx context.Context, id string) (*domain.Landmark, error)
}

// TourController runs the guided landmark tour. It is started by the
// intro sequence when multiple landmarks exist and no route is shown.
type TourController interface {
	Start(ctx context.Context, landmarks []domain.Landmark) error
}
