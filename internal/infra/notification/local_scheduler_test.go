package notification

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"waypoint/config"
	"waypoint/internal/domain/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
)

// capturePublisher records published events.
type capturePublisher struct {
	mu     sync.Mutex
	events []*service.NotificationEvent
}

func (p *capturePublisher) PublishNotificationEvent(_ context.Context, event *service.NotificationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)

	return nil
}

func (p *capturePublisher) Close() error {
	return nil
}

func (p *capturePublisher) snapshot() []*service.NotificationEvent {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]*service.NotificationEvent(nil), p.events...)
}

func newTestScheduler(t *testing.T, enabled bool) (service.NotificationScheduler, *capturePublisher) {
	t.Helper()
	cfg := &config.Config{
		Notification: &config.NotificationConfig{Enabled: enabled, HistoryLimit: 100},
	}
	publisher := &capturePublisher{}
	lc := fxtest.NewLifecycle(t)
	scheduler := NewLocalScheduler(SchedulerParams{
		Lc:        lc,
		Config:    cfg,
		Publisher: publisher,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	lc.RequireStart()
	t.Cleanup(func() { lc.RequireStop() })

	return scheduler, publisher
}

func TestLocalScheduler_PermissionFollowsConfig(t *testing.T) {
	enabled, _ := newTestScheduler(t, true)
	assert.True(t, enabled.PermissionGranted(context.Background()))
	assert.True(t, enabled.RequestPermission(context.Background()))

	disabled, _ := newTestScheduler(t, false)
	assert.False(t, disabled.PermissionGranted(context.Background()))
	assert.False(t, disabled.RequestPermission(context.Background()), "a disabled configuration stays disabled")
}

func TestLocalScheduler_OneShotFires(t *testing.T) {
	scheduler, publisher := newTestScheduler(t, true)

	var mu sync.Mutex
	var firedIDs []string
	scheduler.OnFired(func(_ context.Context, id string) {
		mu.Lock()
		defer mu.Unlock()
		firedIDs = append(firedIDs, id)
	})

	id, err := scheduler.Schedule(context.Background(), &service.ScheduleRequest{
		Title: "Order confirmed",
		Body:  "Your order ORD-1 has been confirmed.",
		Data:  map[string]string{"type": "order", "order_id": "ORD-1"},
		Delay: 10 * time.Millisecond,
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()

		return len(firedIDs) == 1
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	assert.Equal(t, id, firedIDs[0])
	mu.Unlock()

	events := publisher.snapshot()
	require.Len(t, events, 1)
	assert.Equal(t, id, events[0].NotificationID)
	assert.Equal(t, "order", events[0].Type)
	assert.Equal(t, "Order confirmed", events[0].Title)
	assert.Equal(t, "ORD-1", events[0].Data["order_id"])
}

func TestLocalScheduler_CancelPreventsFiring(t *testing.T) {
	scheduler, publisher := newTestScheduler(t, true)

	id, err := scheduler.Schedule(context.Background(), &service.ScheduleRequest{
		Title: "Order confirmed",
		Delay: 50 * time.Millisecond,
	})
	require.NoError(t, err)
	require.NoError(t, scheduler.Cancel(context.Background(), id))

	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, publisher.snapshot())
}

func TestLocalScheduler_CancelUnknownIDIsNoOp(t *testing.T) {
	scheduler, _ := newTestScheduler(t, true)

	assert.NoError(t, scheduler.Cancel(context.Background(), "unknown"))
}

func TestLocalScheduler_RecurringFiresRepeatedly(t *testing.T) {
	scheduler, publisher := newTestScheduler(t, true)

	id, err := scheduler.Schedule(context.Background(), &service.ScheduleRequest{
		Title:    "Meal reminder",
		Data:     map[string]string{"type": "reminder"},
		Interval: 20 * time.Millisecond,
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(publisher.snapshot()) >= 2
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, scheduler.Cancel(context.Background(), id))
	count := len(publisher.snapshot())

	time.Sleep(60 * time.Millisecond)
	assert.LessOrEqual(t, len(publisher.snapshot()), count+1, "cancelled ticker stops firing")
}
