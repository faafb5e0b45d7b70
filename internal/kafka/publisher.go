package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"ticket-selling/internal/config"
	"ticket-selling/internal/models"
)

type Publisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// LifecyclePublisher routes reservation lifecycle events to their topics,
// keyed by reservation id so one reservation's events stay ordered.
type LifecyclePublisher struct {
	Producer Publisher
	Topics   config.TopicConfig
}

func NewLifecyclePublisher(producer Publisher, topics config.TopicConfig) *LifecyclePublisher {
	return &LifecyclePublisher{Producer: producer, Topics: topics}
}

func (p *LifecyclePublisher) topic(t models.LifecycleEventType) (string, error) {
	switch t {
	case models.EventReservationCreated:
		return p.Topics.ReservationCreated, nil
	case models.EventReservationCompleted:
		return p.Topics.ReservationCompleted, nil
	case models.EventReservationCancelled:
		return p.Topics.ReservationCancelled, nil
	case models.EventReservationExpired:
		return p.Topics.ReservationExpired, nil
	}
	return "", fmt.Errorf("no topic for event type %q", t)
}

func (p *LifecyclePublisher) PublishLifecycleEvent(ctx context.Context, event models.LifecycleEvent) error {
	topic, err := p.topic(event.Type)
	if err != nil {
		return err
	}
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}
	key := []byte(strconv.FormatInt(event.ReservationID, 10))
	return p.Producer.Publish(ctx, topic, key, value)
}
