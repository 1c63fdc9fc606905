package events

import (
	"encoding/json"
	"fmt"

	"cineMatch/domain"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// Publisher is the outbound edge for preference events. The user service is
// the usual producer; this service only publishes on explicit rebuild
// requests.
type Publisher struct {
	publisher message.Publisher
	topic     string
}

func NewPublisher(publisher message.Publisher, topic string) *Publisher {
	return &Publisher{
		publisher: publisher,
		topic:     topic,
	}
}

func (p *Publisher) PublishPreferences(event domain.PreferencesEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences event: %w", err)
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("failed to publish preferences event: %w", err)
	}

	return nil
}
