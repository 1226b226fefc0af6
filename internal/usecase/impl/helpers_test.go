package impl

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"testing"
	"time"

	"waypoint/config"
	"waypoint/internal/domain/entity"
	"waypoint/internal/domain/service"
	"waypoint/internal/infra/persistence/kv"

	"github.com/stretchr/testify/require"
	"gocloud.dev/blob/memblob"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeGeoProvider is a scriptable GeoProvider that counts adapter calls.
type fakeGeoProvider struct {
	mu sync.Mutex

	servicesEnabled  bool
	permissionStatus entity.PermissionStatus
	requestGranted   bool
	fix              entity.Fix
	positionErr      error
	positionDelay    time.Duration
	placemark        entity.Placemark

	servicesCalls int
	statusCalls   int
	requestCalls  int
	positionCalls int
	geocodeCalls  int
}

func newFakeGeoProvider() *fakeGeoProvider {
	return &fakeGeoProvider{
		servicesEnabled:  true,
		permissionStatus: entity.PermissionGranted,
		requestGranted:   true,
		fix:              entity.Fix{Latitude: 3.85, Longitude: 11.50},
		placemark: entity.Placemark{
			City:             "Yaoundé",
			Region:           "Centre",
			Neighborhood:     "Bastos",
			FormattedAddress: "Bastos, Yaoundé, Centre",
		},
	}
}

func (g *fakeGeoProvider) ServicesEnabled(_ context.Context) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.servicesCalls++

	return g.servicesEnabled
}

func (g *fakeGeoProvider) PermissionStatus(_ context.Context) entity.PermissionStatus {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.statusCalls++

	return g.permissionStatus
}

func (g *fakeGeoProvider) RequestPermission(_ context.Context) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requestCalls++

	return g.requestGranted
}

func (g *fakeGeoProvider) Position(ctx context.Context, _ bool) (entity.Fix, error) {
	g.mu.Lock()
	g.positionCalls++
	delay := g.positionDelay
	fix := g.fix
	err := g.positionErr
	g.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return entity.Fix{}, ctx.Err()
		}
	}

	return fix, err
}

func (g *fakeGeoProvider) ReverseGeocode(_ context.Context, _, _ float64) entity.Placemark {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.geocodeCalls++

	return g.placemark
}

func (g *fakeGeoProvider) counts() (services, status, request, position, geocode int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.servicesCalls, g.statusCalls, g.requestCalls, g.positionCalls, g.geocodeCalls
}

// fakeScheduler is a scriptable NotificationScheduler. Fire simulates the
// provider firing a notification.
type fakeScheduler struct {
	mu sync.Mutex

	granted     bool
	scheduleErr error

	nextID    int
	scheduled map[string]*service.ScheduleRequest
	cancelled []string
	onFired   service.FiredHandler
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{
		granted:   true,
		scheduled: make(map[string]*service.ScheduleRequest),
	}
}

func (f *fakeScheduler) PermissionGranted(_ context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.granted
}

func (f *fakeScheduler) RequestPermission(_ context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.granted
}

func (f *fakeScheduler) Schedule(_ context.Context, req *service.ScheduleRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.scheduleErr != nil {
		return "", f.scheduleErr
	}
	f.nextID++
	id := "n-" + strconv.Itoa(f.nextID)
	f.scheduled[id] = req

	return id, nil
}

func (f *fakeScheduler) Cancel(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.scheduled, id)
	f.cancelled = append(f.cancelled, id)

	return nil
}

func (f *fakeScheduler) OnFired(handler service.FiredHandler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onFired = handler
}

func (f *fakeScheduler) Fire(ctx context.Context, id string) {
	f.mu.Lock()
	handler := f.onFired
	f.mu.Unlock()

	if handler != nil {
		handler(ctx, id)
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Location = &config.LocationConfig{
		CacheTTL:           5 * time.Minute,
		ResolveTimeout:     100 * time.Millisecond,
		PermissionCooldown: 30 * time.Second,
		HighAccuracy:       false,
		UseFallback:        true,
		FallbackCity: config.FallbackCity{
			Name:      "Yaoundé",
			Region:    "Centre",
			Latitude:  3.8480,
			Longitude: 11.5021,
		},
	}
	cfg.Notification = &config.NotificationConfig{
		Enabled:      true,
		HistoryLimit: 100,
	}
	cfg.Storage = config.StorageConfig{Bucket: "mem://"}

	return cfg
}

func newTestStore(t *testing.T) *kv.Store {
	t.Helper()
	bucket := memblob.OpenBucket(nil)
	t.Cleanup(func() { bucket.Close() })

	return kv.NewWithBucket(bucket)
}

func newTestStateManager(t *testing.T, cfg *config.Config, store *kv.Store, clock service.Clock) *StateManager {
	t.Helper()
	states, err := NewStateManager(StateManagerParams{
		Ctx:    context.Background(),
		Repo:   store,
		Config: cfg,
		Clock:  clock,
		Logger: testLogger(),
	})
	require.NoError(t, err)

	return states
}

func newTestLocationService(t *testing.T, cfg *config.Config, geo service.GeoProvider, clock service.Clock) (*locationService, *StateManager) {
	t.Helper()
	states := newTestStateManager(t, cfg, newTestStore(t), clock)
	uc := NewLocationService(LocationServiceParams{
		Config: cfg,
		Geo:    geo,
		States: states,
		Clock:  clock,
		Logger: testLogger(),
	})

	return uc.(*locationService), states
}
