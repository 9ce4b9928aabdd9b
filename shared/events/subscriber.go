package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Message is a single delivery handed to a Handler. The handler must call
// Ack once it has finished; anything left unacknowledged is redelivered to
// a member of the same group after the ack wait elapses.
type Message struct {
	ID    string
	Event Event

	mu    sync.Mutex
	acked bool
	ack   func(ctx context.Context) error
}

// NewMessage builds a delivery whose acknowledgement runs ack. Handlers
// can be driven directly with it, outside a Subscriber.
func NewMessage(id string, event Event, ack func(ctx context.Context) error) *Message {
	return &Message{ID: id, Event: event, ack: ack}
}

// Ack acknowledges the message. Calling it more than once is a no-op.
func (m *Message) Ack(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.acked {
		return nil
	}
	if err := m.ack(ctx); err != nil {
		return fmt.Errorf("failed to ack message %s: %w", m.ID, err)
	}
	m.acked = true
	return nil
}

// Acked reports whether Ack has succeeded.
func (m *Message) Acked() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.acked
}

// Decode unmarshals the event payload into v.
func (m *Message) Decode(v any) error {
	return m.Event.Decode(v)
}

type Handler func(ctx context.Context, msg *Message) error

type SubscriberConfig struct {
	Group         string
	Consumer      string
	Subject       string
	Handler       Handler
	BatchSize     int64
	BlockDuration time.Duration
	// AckWait is how long a delivery may stay unacknowledged before it is
	// claimed and handed out again.
	AckWait time.Duration
}

type Subscriber struct {
	client        redis.Cmdable
	group         string
	consumer      string
	subject       string
	handler       Handler
	batchSize     int64
	blockDuration time.Duration
	ackWait       time.Duration
	logger        *log.Entry
}

func NewSubscriber(client redis.Cmdable, config SubscriberConfig) *Subscriber {
	if config.BatchSize == 0 {
		config.BatchSize = 10
	}
	if config.BlockDuration == 0 {
		config.BlockDuration = 5 * time.Second
	}
	if config.AckWait == 0 {
		config.AckWait = 30 * time.Second
	}

	return &Subscriber{
		client:        client,
		group:         config.Group,
		consumer:      config.Consumer,
		subject:       config.Subject,
		handler:       config.Handler,
		batchSize:     config.BatchSize,
		blockDuration: config.BlockDuration,
		ackWait:       config.AckWait,
		logger: log.WithFields(log.Fields{
			"subject":  config.Subject,
			"group":    config.Group,
			"consumer": config.Consumer,
		}),
	}
}

// Start joins the queue group and delivers messages until ctx is cancelled.
func (s *Subscriber) Start(ctx context.Context) error {
	if err := s.ensureGroup(ctx); err != nil {
		return err
	}

	s.logger.Info("subscriber started")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.redeliverLoop(ctx)
	}()
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("subscriber stopping")
			return ctx.Err()
		default:
		}

		if err := s.readMessages(ctx); err != nil {
			if ctx.Err() != nil {
				continue
			}
			s.logger.WithError(err).Error("error reading messages")
			sleep(ctx, time.Second)
		}
	}
}

func (s *Subscriber) ensureGroup(ctx context.Context) error {
	err := s.client.XGroupCreateMkStream(ctx, s.subject, s.group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group %s on %s: %w", s.group, s.subject, err)
	}
	return nil
}

func (s *Subscriber) readMessages(ctx context.Context) error {
	streams, err := s.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    s.group,
		Consumer: s.consumer,
		Streams:  []string{s.subject, ">"},
		Count:    s.batchSize,
		Block:    s.blockDuration,
	}).Result()

	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read from stream: %w", err)
	}

	for _, stream := range streams {
		for _, message := range stream.Messages {
			s.dispatch(ctx, message)
		}
	}
	return nil
}

func (s *Subscriber) redeliverLoop(ctx context.Context) {
	ticker := time.NewTicker(s.ackWait)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.redeliver(ctx); err != nil && ctx.Err() == nil {
				s.logger.WithError(err).Error("failed to claim pending messages")
			}
		}
	}
}

// redeliver claims every entry of the group that has been pending longer
// than the ack wait and hands it to this consumer's handler again.
func (s *Subscriber) redeliver(ctx context.Context) error {
	start := "0-0"
	for {
		messages, next, err := s.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
			Stream:   s.subject,
			Group:    s.group,
			Consumer: s.consumer,
			MinIdle:  s.ackWait,
			Start:    start,
			Count:    s.batchSize,
		}).Result()
		if err != nil {
			return err
		}

		for _, message := range messages {
			s.logger.WithField("message_id", message.ID).Info("redelivering message")
			s.dispatch(ctx, message)
		}

		if next == "0-0" || len(messages) == 0 {
			return nil
		}
		start = next
	}
}

func (s *Subscriber) dispatch(ctx context.Context, message redis.XMessage) {
	entry := s.logger.WithField("message_id", message.ID)

	event, err := decodeEvent(message)
	if err != nil {
		// A malformed entry can never succeed; drop it rather than loop on it.
		entry.WithError(err).Error("dropping malformed message")
		if err := s.client.XAck(ctx, s.subject, s.group, message.ID).Err(); err != nil {
			entry.WithError(err).Error("failed to ack malformed message")
		}
		return
	}

	msg := NewMessage(message.ID, event, func(ctx context.Context) error {
		return s.client.XAck(ctx, s.subject, s.group, message.ID).Err()
	})

	if err := s.handler(ctx, msg); err != nil {
		entry.WithError(err).Warn("handler failed, message left pending")
		return
	}
	if !msg.Acked() {
		entry.Debug("message not acknowledged, it will be redelivered")
	}
}

func decodeEvent(message redis.XMessage) (Event, error) {
	raw, ok := message.Values["event"].(string)
	if !ok {
		return Event{}, fmt.Errorf("invalid message format")
	}
	var event Event
	if err := json.Unmarshal([]byte(raw), &event); err != nil {
		return Event{}, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	return event, nil
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
