package service

import (
	"context"
	"time"
)

// NotificationEvent is published when a scheduled notification fires, so a
// downstream worker can deliver it as a push message.
type NotificationEvent struct {
	NotificationID string            `json:"notification_id"`
	Type           string            `json:"type"`
	Title          string            `json:"title"`
	Body           string            `json:"body"`
	Data           map[string]string `json:"data,omitempty"`
	FiredAt        time.Time         `json:"fired_at"`
	RequestID      string            `json:"request_id,omitempty"`
}

// EventPublisher publishes notification events to the configured transport.
type EventPublisher interface {
	PublishNotificationEvent(ctx context.Context, event *NotificationEvent) error
	Close() error
}
