package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/aitorfdez/flyover/internal/core/domain"
)

// Publisher implements ports.EventPublisher over NATS. Engine events are
// fire-and-forget telemetry for analytics/monitoring consumers; nothing
// in the engine blocks on them, so plain core NATS publish is enough.
type Publisher struct {
	conn *nats.Conn
}

// NewPublisher connects to NATS with indefinite reconnects.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &Publisher{conn: conn}, nil
}

type routeEvent struct {
	ProjectID  string  `json:"project_id"`
	LandmarkID string  `json:"landmark_id"`
	DistanceM  float64 `json:"distance_m,omitempty"`
	DurationS  float64 `json:"duration_s,omitempty"`
	Error      string  `json:"error,omitempty"`
	At         string  `json:"at"`
}

func (p *Publisher) PublishRouteShown(ctx context.Context, projectID, landmarkID string, route *domain.Route) error {
	return p.publish("flyover.route.shown", routeEvent{
		ProjectID:  projectID,
		LandmarkID: landmarkID,
		DistanceM:  route.Distance,
		DurationS:  route.Duration,
		At:         time.Now().UTC().Format(time.RFC3339),
	})
}

func (p *Publisher) PublishRouteCleared(ctx context.Context, projectID, landmarkID string) error {
	return p.publish("flyover.route.cleared", routeEvent{
		ProjectID:  projectID,
		LandmarkID: landmarkID,
		At:         time.Now().UTC().Format(time.RFC3339),
	})
}

func (p *Publisher) PublishRouteFailed(ctx context.Context, projectID, landmarkID string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return p.publish("flyover.route.failed", routeEvent{
		ProjectID:  projectID,
		LandmarkID: landmarkID,
		Error:      msg,
		At:         time.Now().UTC().Format(time.RFC3339),
	})
}

func (p *Publisher) PublishIntroStarted(ctx context.Context, projectID string) error {
	return p.publish("flyover.intro.started", routeEvent{
		ProjectID: projectID,
		At:        time.Now().UTC().Format(time.RFC3339),
	})
}

func (p *Publisher) publish(subject string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.conn.Publish(subject, data)
}

// Conn exposes the underlying connection for health checks.
func (p *Publisher) Conn() *nats.Conn { return p.conn }

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}
