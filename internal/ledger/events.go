package ledger

import "context"

// Event kinds published to the event stream.
const (
	EventProjectCreated = "project.created"
	EventProjectDeleted = "project.deleted"
	EventTaskCreated    = "task.created"
	EventTimeLogCreated = "timelog.created"
	EventCostCreated    = "cost.created"
)

// Event is the payload published for every ledger mutation.
type Event struct {
	Kind      string `json:"kind"`
	ProjectID int    `json:"project_id"`
	EntityID  int    `json:"entity_id"`
}

// EventPublisher abstracts the broker (NATS in production). A nil publisher
// disables events; publishing is fire-and-forget either way.
type EventPublisher interface {
	Publish(ctx context.Context, value interface{}) error
}

func (s *service) publish(ctx context.Context, kind string, projectID, entityID int) {
	if s.events == nil {
		return
	}
	event := Event{
		Kind:      kind,
		ProjectID: projectID,
		EntityID:  entityID,
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish ledger event", "kind", kind, "error", err)
	}
}
