package http

import (
	"time"

	"github.com/nats-io/nats.go"

	"github.com/aitorfdez/flyover/internal/adapters/postgres"
	"github.com/aitorfdez/flyover/internal/adapters/valkey"
	"github.com/aitorfdez/flyover/internal/core/domain"
	"github.com/aitorfdez/flyover/internal/core/ports"
	"github.com/aitorfdez/flyover/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers and WebSocket sessions.
type Dependencies struct {
	Projects ports.ProjectRepository
	Resolver *usecases.RouteResolver
	Events   ports.EventPublisher
	Tunables usecases.Tunables

	// FrameInterval is the animation tick of per-session engines.
	FrameInterval time.Duration
	// Profile is the travel profile routes are resolved with.
	Profile domain.TravelProfile

	NATS  *nats.Conn
	DB    *postgres.DB
	Cache *valkey.Cache
}
