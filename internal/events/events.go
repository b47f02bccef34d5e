// Package events publishes domain events about users and recipes.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/recipebook/apiserver/internal/mq"
)

type Type string

const (
	UserSignedUp  Type = "user.signed_up"
	RecipeCreated Type = "recipe.created"
)

const attrType = "type"

// Event is the JSON payload sent to the broker.
type Event struct {
	Type       Type      `json:"type"`
	UserID     int       `json:"user_id"`
	RecipeID   int       `json:"recipe_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher sends events to a single channel. A Publisher with a nil
// backend drops every event.
type Publisher struct {
	backend mq.Backend
	channel string
	logger  *slog.Logger
	now     func() time.Time
}

func NewPublisher(backend mq.Backend, channel string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		backend: backend,
		channel: channel,
		logger:  logger,
		now:     time.Now,
	}
}

// Publish sends event. Failures are logged and swallowed: events describe
// writes that are already committed.
func (p *Publisher) Publish(ctx context.Context, event Event) {
	if p == nil || p.backend == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = p.now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		p.logger.WarnContext(ctx, "encode event failed", "type", event.Type, "error", err)
		return
	}

	id, err := p.backend.Publish(ctx, p.channel, mq.Message{
		Data:       data,
		Attributes: map[string]string{attrType: string(event.Type)},
	})
	if err != nil {
		p.logger.WarnContext(ctx, "publish event failed", "type", event.Type, "channel", p.channel, "error", err)
		return
	}
	p.logger.DebugContext(ctx, "event published", "type", event.Type, "id", id)
}

// Decode parses a delivered message back into an Event.
func Decode(msg mq.Message) (Event, error) {
	var event Event
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		return Event{}, err
	}
	if event.Type == "" {
		event.Type = Type(msg.Attributes[attrType])
	}
	return event, nil
}
