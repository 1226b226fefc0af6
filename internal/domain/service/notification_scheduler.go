package service

import (
	"context"
	"time"
)

// ScheduleRequest is the provider-level description of a notification to
// schedule. Interval == 0 means a one-shot trigger after Delay.
type ScheduleRequest struct {
	Title    string
	Body     string
	Data     map[string]string
	Delay    time.Duration
	Interval time.Duration
}

// FiredHandler is invoked by the provider when a scheduled notification
// fires. Providers call it best-effort; handlers must not block.
type FiredHandler func(ctx context.Context, id string)

// NotificationScheduler is the OS-level scheduling capability. Every
// notification it creates is identified by a provider-issued id used for
// later cancellation.
type NotificationScheduler interface {
	// PermissionGranted reports the current notification permission state.
	PermissionGranted(ctx context.Context) bool

	// RequestPermission triggers the permission prompt and returns the
	// final grant state. Provider failure returns false.
	RequestPermission(ctx context.Context) bool

	// Schedule hands the notification to the provider and returns its id.
	Schedule(ctx context.Context, req *ScheduleRequest) (string, error)

	// Cancel revokes a pending notification by id. Cancelling an unknown
	// id is not an error.
	Cancel(ctx context.Context, id string) error

	// OnFired registers the handler called when a notification fires.
	OnFired(handler FiredHandler)
}
