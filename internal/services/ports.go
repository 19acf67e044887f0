package services

import "context"

// EventPublisher publishes domain events to the message broker.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// Cache is a byte cache keyed by string. Misses report ok=false without error.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
