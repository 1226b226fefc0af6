package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"waypoint/config"
	"waypoint/internal/domain/lifecycle"
	"waypoint/internal/domain/service"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// localScheduler implements NotificationScheduler with in-process timers.
// When a timer fires, the notification event is handed to the EventPublisher
// so the push worker delivers it, and the registered fired handler is
// invoked so the owning service can update its durable index.
type localScheduler struct {
	cfg       *config.Config
	publisher service.EventPublisher
	logger    *slog.Logger

	mu      sync.Mutex
	pending map[string]*pendingEntry
	onFired service.FiredHandler
	closed  bool
}

type pendingEntry struct {
	req    *service.ScheduleRequest
	timer  *time.Timer  // one-shot
	ticker *time.Ticker // recurring
	stop   chan struct{}
}

// SchedulerParams holds dependencies for the local scheduler, injected by Fx.
type SchedulerParams struct {
	fx.In

	Lc        fx.Lifecycle
	Config    *config.Config
	Publisher service.EventPublisher
	Logger    *slog.Logger
}

// NewLocalScheduler creates the in-process notification scheduler and
// registers its shutdown hook so pending timers are stopped cleanly.
func NewLocalScheduler(params SchedulerParams) service.NotificationScheduler {
	s := &localScheduler{
		cfg:       params.Config,
		publisher: params.Publisher,
		logger:    params.Logger,
		pending:   make(map[string]*pendingEntry),
	}

	params.Lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			s.shutdown()

			return nil
		},
	})

	return s
}

// PermissionGranted reports whether local notifications are enabled. The
// grant is a configuration switch; there is no OS prompt on this platform.
func (s *localScheduler) PermissionGranted(_ context.Context) bool {
	return s.cfg.Notification.Enabled
}

// RequestPermission returns the configured grant. There is nothing to
// prompt; a disabled configuration stays disabled.
func (s *localScheduler) RequestPermission(_ context.Context) bool {
	return s.cfg.Notification.Enabled
}

// Schedule arms a timer for the request and returns the issued id.
func (s *localScheduler) Schedule(_ context.Context, req *service.ScheduleRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", errors.New("scheduler is shut down")
	}

	id := uuid.NewString()
	entry := &pendingEntry{req: req}

	if req.Interval > 0 {
		entry.ticker = time.NewTicker(req.Interval)
		entry.stop = make(chan struct{})
		go s.runRecurring(id, entry)
	} else {
		entry.timer = time.AfterFunc(req.Delay, func() {
			s.fire(id, req, true)
		})
	}

	s.pending[id] = entry
	s.logger.Debug("Notification scheduled",
		slog.String("id", id),
		slog.Duration("delay", req.Delay),
		slog.Duration("interval", req.Interval),
	)

	return id, nil
}

// Cancel disarms a pending notification. Unknown ids are a no-op.
func (s *localScheduler) Cancel(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.pending[id]
	if !ok {
		return nil
	}
	s.stopEntry(entry)
	delete(s.pending, id)

	return nil
}

// OnFired registers the fired handler. The last registration wins.
func (s *localScheduler) OnFired(handler service.FiredHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onFired = handler
}

func (s *localScheduler) runRecurring(id string, entry *pendingEntry) {
	for {
		select {
		case <-entry.ticker.C:
			s.fire(id, entry.req, false)
		case <-entry.stop:
			return
		}
	}
}

// fire publishes the event and notifies the fired handler. It runs on the
// timer goroutine with a background context; the originating request is
// long gone by the time the notification fires.
func (s *localScheduler) fire(id string, req *service.ScheduleRequest, oneShot bool) {
	s.mu.Lock()
	if _, ok := s.pending[id]; !ok {
		s.mu.Unlock()

		return
	}
	if oneShot {
		delete(s.pending, id)
	}
	handler := s.onFired
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), lifecycle.DefaultTimeout)
	defer cancel()

	event := &service.NotificationEvent{
		NotificationID: id,
		Type:           req.Data["type"],
		Title:          req.Title,
		Body:           req.Body,
		Data:           req.Data,
		FiredAt:        time.Now().UTC(),
	}
	if err := s.publisher.PublishNotificationEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish notification event",
			slog.String("id", id),
			slog.Any("error", err),
		)
	}

	if handler != nil {
		handler(ctx, id)
	}
}

func (s *localScheduler) stopEntry(entry *pendingEntry) {
	if entry.timer != nil {
		entry.timer.Stop()
	}
	if entry.ticker != nil {
		entry.ticker.Stop()
		close(entry.stop)
	}
}

func (s *localScheduler) shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, entry := range s.pending {
		s.stopEntry(entry)
		delete(s.pending, id)
	}
	s.closed = true
}
