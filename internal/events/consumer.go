package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"cineMatch/domain"
	"cineMatch/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-playground/validator/v10"
)

type PreferencesProcessor interface {
	ProcessPreferences(ctx context.Context, event domain.PreferencesEvent) error
}

// Consumer drains the preferences topic and hands each event to the
// aggregation engine. Delivery is at-least-once: a processing failure Nacks
// the message and the broker redelivers it; malformed or invalid payloads are
// Acked away so they cannot wedge the subscription.
type Consumer struct {
	subscriber message.Subscriber
	processor  PreferencesProcessor
	validate   *validator.Validate
	topic      string
	workers    int
}

func NewConsumer(subscriber message.Subscriber, processor PreferencesProcessor, validate *validator.Validate, topic string) *Consumer {
	return &Consumer{
		subscriber: subscriber,
		processor:  processor,
		validate:   validate,
		topic:      topic,
		workers:    8,
	}
}

// Run blocks until the context is canceled or the subscription closes.
// Messages are handled concurrently up to the worker bound; ordering per
// email is enforced downstream by the engine.
func (c *Consumer) Run(ctx context.Context) error {
	messages, err := c.subscriber.Subscribe(ctx, c.topic)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", c.topic, err)
	}

	logger.Info("Consuming preference events", "topic", c.topic)

	var wg sync.WaitGroup
	sem := make(chan struct{}, c.workers)

	for msg := range messages {
		sem <- struct{}{}
		wg.Add(1)

		go func(msg *message.Message) {
			defer wg.Done()
			defer func() { <-sem }()
			c.handle(ctx, msg)
		}(msg)
	}

	wg.Wait()
	return nil
}

func (c *Consumer) handle(ctx context.Context, msg *message.Message) {
	var event domain.PreferencesEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		logger.Error("Dropping malformed preferences event", err, "message_id", msg.UUID)
		msg.Ack()
		return
	}

	if err := c.validate.Struct(event); err != nil {
		logger.Error("Dropping invalid preferences event", err, "message_id", msg.UUID)
		msg.Ack()
		return
	}

	if err := c.processor.ProcessPreferences(ctx, event); err != nil {
		logger.Error("Failed to process preferences event, requesting redelivery", err,
			"email", event.Email, "message_id", msg.UUID)
		msg.Nack()
		return
	}

	msg.Ack()
}
