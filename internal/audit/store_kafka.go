package audit

import (
	"context"
	"encoding/json"
	"fmt"
)

// MessagePublisher is the broker seam, satisfied by platform/kafka.Producer.
type MessagePublisher interface {
	Publish(ctx context.Context, key string, value []byte) error
}

// KafkaStore publishes audit events to a Kafka topic. The broker is the
// system of record; reads go through a downstream consumer, not this store.
type KafkaStore struct {
	producer MessagePublisher
}

func NewKafkaStore(producer MessagePublisher) *KafkaStore {
	return &KafkaStore{producer: producer}
}

// Append publishes the event keyed by registration id so all events for one
// company land in the same partition, preserving their order.
func (s *KafkaStore) Append(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	return s.producer.Publish(ctx, event.RegistrationID, payload)
}

// ListByCompany is not supported on the Kafka sink; querying happens in the
// consumer-side materialized store.
func (s *KafkaStore) ListByCompany(context.Context, string) ([]Event, error) {
	return nil, fmt.Errorf("kafka audit store is write-only")
}
