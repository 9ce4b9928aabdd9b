package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Publisher appends events to the stream named after their subject.
type Publisher struct {
	client redis.Cmdable
	maxLen int64
}

// NewPublisher returns a Publisher. maxLen caps each stream approximately;
// zero leaves streams untrimmed.
func NewPublisher(client redis.Cmdable, maxLen int64) *Publisher {
	return &Publisher{client: client, maxLen: maxLen}
}

// Publish queues data under subject. Broker errors are returned to the
// caller; there is no retry.
func (p *Publisher) Publish(ctx context.Context, subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", subject, err)
	}

	event := Event{
		ID:        uuid.NewString(),
		Subject:   subject,
		Timestamp: time.Now().UTC(),
		Data:      payload,
	}
	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: subject,
		Values: map[string]any{"event": eventJSON},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}

	id, err := p.client.XAdd(ctx, args).Result()
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", subject, err)
	}

	log.WithFields(log.Fields{"subject": subject, "event_id": event.ID, "message_id": id}).Debug("event published")
	return nil
}
