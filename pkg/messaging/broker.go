package messaging

import (
	"context"
	"time"
)

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// Notification levels.
const (
	LevelSuccess = "success"
	LevelError   = "error"
)

// Notification is a store outcome message as it travels over the broker.
type Notification struct {
	ID        string    `json:"id"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	Source    string    `json:"source,omitempty"`
	RequestID string    `json:"requestId,omitempty"`
	Time      time.Time `json:"time"`
}
