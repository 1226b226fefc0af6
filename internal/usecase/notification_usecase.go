package usecase

import (
	"context"
	"time"

	"waypoint/internal/domain/entity"
)

// ScheduleInput describes a notification to schedule.
type ScheduleInput struct {
	Type  entity.NotificationType `json:"type"`
	Title string                  `json:"title"`
	Body  string                  `json:"body"`
	Data  entity.NotificationData `json:"data"`
}

// NotificationUsecase schedules, tracks and cancels local notifications.
// Provider failures are swallowed with logging: scheduling is best-effort
// and must never interrupt the calling flow. A denied notification
// permission yields an empty id and a nil error.
type NotificationUsecase interface {
	Schedule(ctx context.Context, input *ScheduleInput, delay time.Duration) (string, error)
	ScheduleRecurring(ctx context.Context, input *ScheduleInput, interval time.Duration) (string, error)

	Cancel(ctx context.Context, id string) error

	// CancelAllMatching cancels every indexed notification whose data
	// payload is a superset of the predicate and returns the count.
	CancelAllMatching(ctx context.Context, predicate entity.NotificationData) (int, error)

	Scheduled(ctx context.Context) ([]*entity.ScheduledNotification, error)
	History(ctx context.Context) ([]*entity.DeliveredNotification, error)
}
