package entity

import (
	"time"
)

// NotificationType is the semantic category of a scheduled notification.
type NotificationType string

const (
	NotificationOrder     NotificationType = "order"
	NotificationPromotion NotificationType = "promotion"
	NotificationReminder  NotificationType = "reminder"
	NotificationSystem    NotificationType = "system"
	NotificationCustom    NotificationType = "custom"
)

// NotificationData is the structured payload attached to a scheduled
// notification. It replaces the ad hoc key/value payloads of the mobile
// client with a closed, typed set of fields sharing the Type discriminant,
// so predicate matching stays statically checkable.
type NotificationData struct {
	Type      NotificationType `json:"type"`
	OrderID   string           `json:"order_id,omitempty"`
	PromoCode string           `json:"promo_code,omitempty"`
	Reference string           `json:"reference,omitempty"`
}

// Matches reports whether the payload is a superset of the predicate: every
// non-zero field of pred must be equal. A zero predicate matches everything.
func (d NotificationData) Matches(pred NotificationData) bool {
	if pred.Type != "" && d.Type != pred.Type {
		return false
	}
	if pred.OrderID != "" && d.OrderID != pred.OrderID {
		return false
	}
	if pred.PromoCode != "" && d.PromoCode != pred.PromoCode {
		return false
	}
	if pred.Reference != "" && d.Reference != pred.Reference {
		return false
	}

	return true
}

// Payload flattens the data into the string map shape the scheduling
// provider and FCM expect. Zero fields are omitted.
func (d NotificationData) Payload() map[string]string {
	payload := map[string]string{"type": string(d.Type)}
	if d.OrderID != "" {
		payload["order_id"] = d.OrderID
	}
	if d.PromoCode != "" {
		payload["promo_code"] = d.PromoCode
	}
	if d.Reference != "" {
		payload["reference"] = d.Reference
	}

	return payload
}

// TriggerKind distinguishes one-shot from repeating schedules.
type TriggerKind string

const (
	TriggerOnce     TriggerKind = "once"
	TriggerInterval TriggerKind = "interval"
)

// Trigger describes when a scheduled notification fires.
type Trigger struct {
	Kind     TriggerKind   `json:"kind"`
	Delay    time.Duration `json:"delay,omitempty"`    // One-shot delay.
	Interval time.Duration `json:"interval,omitempty"` // Repeat interval.
}

// ScheduledNotification is a locally scheduled alert recorded in the durable
// index so it can later be cancelled by id or by a partial payload match.
type ScheduledNotification struct {
	ID          string           `json:"id"` // Provider-issued identifier.
	Type        NotificationType `json:"type"`
	Title       string           `json:"title"`
	Body        string           `json:"body"`
	Data        NotificationData `json:"data"`
	ScheduledAt time.Time        `json:"scheduled_at"` // Next expected firing time.
	Trigger     Trigger          `json:"trigger"`
	CreatedAt   time.Time        `json:"created_at"`
}

// DeliveredNotification is the history summary kept for a fired
// notification. The history list is capped; oldest entries drop first.
type DeliveredNotification struct {
	ID      string           `json:"id"`
	Type    NotificationType `json:"type"`
	Title   string           `json:"title"`
	Body    string           `json:"body"`
	Data    NotificationData `json:"data"`
	FiredAt time.Time        `json:"fired_at"`
}
