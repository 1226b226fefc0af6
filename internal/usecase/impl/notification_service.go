package impl

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"waypoint/config"
	"waypoint/internal/domain/entity"
	"waypoint/internal/domain/repository"
	"waypoint/internal/domain/service"
	"waypoint/internal/errors"
	"waypoint/internal/usecase"

	"go.uber.org/fx"
)

type notificationService struct {
	cfg       *config.Config
	scheduler service.NotificationScheduler
	repo      repository.StateRepository
	clock     service.Clock
	logger    *slog.Logger

	mu    sync.Mutex
	index map[string]*entity.ScheduledNotification
}

// NotificationServiceParams holds dependencies for the notification
// service, injected by Fx.
type NotificationServiceParams struct {
	fx.In

	Ctx       context.Context
	Config    *config.Config
	Scheduler service.NotificationScheduler
	Repo      repository.StateRepository
	Clock     service.Clock
	Logger    *slog.Logger
}

// NewNotificationService creates the scheduler service and restores the
// durable index. It registers itself as the provider's fired handler so
// one-shot notifications move from the index into history when they fire.
// Restored entries are re-armed with the provider, whose timers do not
// survive a restart.
func NewNotificationService(params NotificationServiceParams) (usecase.NotificationUsecase, error) {
	s := &notificationService{
		cfg:       params.Config,
		scheduler: params.Scheduler,
		repo:      params.Repo,
		clock:     params.Clock,
		logger:    params.Logger,
		index:     make(map[string]*entity.ScheduledNotification),
	}

	scheduled, err := params.Repo.LoadScheduled(params.Ctx)
	if err != nil && !errors.Is(err, repository.ErrStateNotFound) {
		return nil, errors.Wrap(err, "failed to load scheduled notifications")
	}
	for _, n := range scheduled {
		s.index[n.ID] = n
	}

	params.Scheduler.OnFired(s.recordFired)
	s.rearmRestored(params.Ctx)

	return s, nil
}

// rearmRestored hands every restored index entry back to the provider:
// recurring entries keep their interval, one-shots keep their remaining
// delay, and overdue one-shots fire immediately. The provider issues fresh
// ids, so entries are re-keyed and the index flushed.
func (s *notificationService) rearmRestored(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.index) == 0 {
		return
	}

	now := s.clock.Now()
	rearmed := make(map[string]*entity.ScheduledNotification, len(s.index))
	for oldID, record := range s.index {
		req := &service.ScheduleRequest{
			Title: record.Title,
			Body:  record.Body,
			Data:  record.Data.Payload(),
		}
		if record.Trigger.Kind == entity.TriggerInterval {
			req.Interval = record.Trigger.Interval
		} else if remaining := record.ScheduledAt.Sub(now); remaining > 0 {
			req.Delay = remaining
		}

		id, err := s.scheduler.Schedule(ctx, req)
		if err != nil {
			s.logger.Warn("Failed to re-arm restored notification",
				slog.String("id", oldID),
				slog.Any("error", err),
			)
			rearmed[oldID] = record

			continue
		}
		record.ID = id
		rearmed[id] = record
	}
	s.index = rearmed
	s.persistIndexLocked(ctx)
}

// Schedule registers a one-shot notification. A denied permission or a
// provider failure yields ("", nil): delivery is best-effort and must never
// interrupt the calling flow.
func (s *notificationService) Schedule(ctx context.Context, input *usecase.ScheduleInput, delay time.Duration) (string, error) {
	return s.schedule(ctx, input, delay, 0)
}

// ScheduleRecurring registers a repeating notification with the given
// interval, under the same permission gate and failure policy.
func (s *notificationService) ScheduleRecurring(ctx context.Context, input *usecase.ScheduleInput, interval time.Duration) (string, error) {
	return s.schedule(ctx, input, interval, interval)
}

func (s *notificationService) schedule(ctx context.Context, input *usecase.ScheduleInput, delay, interval time.Duration) (string, error) {
	if !s.ensurePermission(ctx) {
		s.logger.Info("Notification permission denied, skipping schedule",
			slog.String("type", string(input.Type)),
		)

		return "", nil
	}

	req := &service.ScheduleRequest{
		Title:    input.Title,
		Body:     input.Body,
		Data:     input.Data.Payload(),
		Delay:    delay,
		Interval: interval,
	}
	id, err := s.scheduler.Schedule(ctx, req)
	if err != nil {
		s.logger.Warn("Failed to schedule notification",
			slog.String("type", string(input.Type)),
			slog.Any("error", err),
		)

		return "", nil
	}

	trigger := entity.Trigger{Kind: entity.TriggerOnce, Delay: delay}
	if interval > 0 {
		trigger = entity.Trigger{Kind: entity.TriggerInterval, Interval: interval}
	}
	record := &entity.ScheduledNotification{
		ID:          id,
		Type:        input.Type,
		Title:       input.Title,
		Body:        input.Body,
		Data:        input.Data,
		ScheduledAt: s.clock.Now().Add(delay),
		Trigger:     trigger,
		CreatedAt:   s.clock.Now(),
	}

	s.mu.Lock()
	s.index[id] = record
	s.persistIndexLocked(ctx)
	s.mu.Unlock()

	return id, nil
}

// ensurePermission checks the provider grant, prompting once if needed.
func (s *notificationService) ensurePermission(ctx context.Context) bool {
	if s.scheduler.PermissionGranted(ctx) {
		return true
	}

	return s.scheduler.RequestPermission(ctx)
}

// Cancel revokes a notification with the provider and drops it from the
// index. Provider failures are logged, not returned.
func (s *notificationService) Cancel(ctx context.Context, id string) error {
	if err := s.scheduler.Cancel(ctx, id); err != nil {
		s.logger.Warn("Failed to cancel notification with provider",
			slog.String("id", id),
			slog.Any("error", err),
		)
	}

	s.mu.Lock()
	delete(s.index, id)
	s.persistIndexLocked(ctx)
	s.mu.Unlock()

	return nil
}

// CancelAllMatching cancels every indexed notification whose data payload
// is a superset of the predicate, e.g. {OrderID: "A"} cancels all
// notifications for order A regardless of extra fields.
func (s *notificationService) CancelAllMatching(ctx context.Context, predicate entity.NotificationData) (int, error) {
	s.mu.Lock()
	var matched []string
	for id, n := range s.index {
		if n.Data.Matches(predicate) {
			matched = append(matched, id)
		}
	}
	s.mu.Unlock()

	for _, id := range matched {
		if err := s.Cancel(ctx, id); err != nil {
			return 0, err
		}
	}

	return len(matched), nil
}

// Scheduled returns the currently indexed notifications.
func (s *notificationService) Scheduled(ctx context.Context) ([]*entity.ScheduledNotification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*entity.ScheduledNotification, 0, len(s.index))
	for _, n := range s.index {
		clone := *n
		out = append(out, &clone)
	}

	return out, nil
}

// History returns fired-notification summaries, newest last.
func (s *notificationService) History(ctx context.Context) ([]*entity.DeliveredNotification, error) {
	history, err := s.repo.LoadHistory(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrStateNotFound) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to load notification history: %w", err)
	}

	return history, nil
}

// recordFired is invoked by the provider when a notification fires. One-shot
// entries leave the index; recurring entries stay and advance their next
// expected firing time. The fired summary is appended to the capped history.
func (s *notificationService) recordFired(ctx context.Context, id string) {
	s.mu.Lock()
	record, ok := s.index[id]
	if !ok {
		s.mu.Unlock()

		return
	}
	fired := &entity.DeliveredNotification{
		ID:      record.ID,
		Type:    record.Type,
		Title:   record.Title,
		Body:    record.Body,
		Data:    record.Data,
		FiredAt: s.clock.Now(),
	}
	if record.Trigger.Kind == entity.TriggerInterval {
		record.ScheduledAt = s.clock.Now().Add(record.Trigger.Interval)
	} else {
		delete(s.index, id)
	}
	s.persistIndexLocked(ctx)
	s.mu.Unlock()

	s.appendHistory(ctx, fired)
}

// appendHistory appends a fired summary, dropping the oldest entries beyond
// the configured cap.
func (s *notificationService) appendHistory(ctx context.Context, fired *entity.DeliveredNotification) {
	history, err := s.repo.LoadHistory(ctx)
	if err != nil && !errors.Is(err, repository.ErrStateNotFound) {
		s.logger.Warn("Failed to load notification history", slog.Any("error", err))

		return
	}

	history = append(history, fired)
	if limit := s.cfg.Notification.HistoryLimit; len(history) > limit {
		history = history[len(history)-limit:]
	}
	if err := s.repo.SaveHistory(ctx, history); err != nil {
		s.logger.Warn("Failed to persist notification history", slog.Any("error", err))
	}
}

// persistIndexLocked flushes the index; the caller holds s.mu. Persistence
// failures are logged only, per the best-effort policy.
func (s *notificationService) persistIndexLocked(ctx context.Context) {
	out := make([]*entity.ScheduledNotification, 0, len(s.index))
	for _, n := range s.index {
		out = append(out, n)
	}
	if err := s.repo.SaveScheduled(ctx, out); err != nil {
		s.logger.Warn("Failed to persist scheduled notifications", slog.Any("error", err))
	}
}
