package impl

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"waypoint/config"
	"waypoint/internal/domain/entity"
	"waypoint/internal/domain/service"
	"waypoint/internal/usecase"

	"go.uber.org/fx"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrResolveTimeout is returned when the position fetch exceeds the
	// configured window.
	ErrResolveTimeout = errors.New("location request timed out")
)

// Resolver error strings surfaced to the UI. Permission-denied and
// services-disabled both produce the fallback location but keep distinct
// messages for UI copy.
const (
	errServicesDisabled = "services disabled"
	errPermissionDenied = "permission not granted"
)

type locationService struct {
	cfg    *config.Config
	geo    service.GeoProvider
	states *StateManager
	cache  *LocationCache
	clock  service.Clock
	logger *slog.Logger

	group singleflight.Group

	mu              sync.Mutex
	isLoading       bool
	lastErr         string
	servicesEnabled bool
	current         *entity.Location
}

// LocationServiceParams holds dependencies for the location service,
// injected by Fx.
type LocationServiceParams struct {
	fx.In

	Config *config.Config
	Geo    service.GeoProvider
	States *StateManager
	Clock  service.Clock
	Logger *slog.Logger
}

// NewLocationService creates the resolver. The persisted location, if any,
// is restored for restart continuity but not treated as a fresh cache entry.
func NewLocationService(params LocationServiceParams) usecase.LocationUsecase {
	s := &locationService{
		cfg:    params.Config,
		geo:    params.Geo,
		states: params.States,
		cache:  NewLocationCache(params.Config.Location.CacheTTL, params.Clock),
		clock:  params.Clock,
		logger: params.Logger,
	}

	if loc := params.States.Snapshot().Location; loc != nil {
		s.current = loc
	}

	return s
}

// GetCurrentLocation resolves the current location. Fresh cache entries are
// served without any adapter calls; otherwise concurrent callers coalesce
// onto a single in-flight resolution.
func (s *locationService) GetCurrentLocation(ctx context.Context, opts *usecase.ResolveOptions) *usecase.Resolution {
	o := s.normalize(opts)

	if o.forceRefresh {
		s.cache.Clear()
	} else if loc := s.cache.Get(); loc != nil {
		s.setResolved(loc)

		return &usecase.Resolution{Success: true, Location: loc}
	}

	res, _, _ := s.group.Do("resolve", func() (any, error) {
		return s.resolve(ctx, o), nil
	})

	return res.(*usecase.Resolution)
}

// RefreshLocation forces a cache bypass.
func (s *locationService) RefreshLocation(ctx context.Context, opts *usecase.ResolveOptions) *usecase.Resolution {
	o := s.normalize(opts)
	o.forceRefresh = true

	s.cache.Clear()
	res, _, _ := s.group.Do("resolve", func() (any, error) {
		return s.resolve(ctx, o), nil
	})

	return res.(*usecase.Resolution)
}

// resolvedOptions are ResolveOptions with defaults applied.
type resolvedOptions struct {
	timeout      time.Duration
	highAccuracy bool
	useFallback  bool
	forceRefresh bool
}

func (s *locationService) normalize(opts *usecase.ResolveOptions) resolvedOptions {
	loc := s.cfg.Location
	o := resolvedOptions{
		timeout:      loc.ResolveTimeout,
		highAccuracy: loc.HighAccuracy,
		useFallback:  loc.UseFallback,
	}
	if opts == nil {
		return o
	}
	if opts.Timeout > 0 {
		o.timeout = opts.Timeout
	}
	if opts.HighAccuracy != nil {
		o.highAccuracy = *opts.HighAccuracy
	}
	if opts.UseFallback != nil {
		o.useFallback = *opts.UseFallback
	}
	o.forceRefresh = opts.ForceRefresh

	return o
}

// resolve runs one full resolution attempt: services check, permission
// check (with prompt and cooldown), position fetch racing a timeout,
// reverse geocode, cache write. Every failure path degrades to the
// configured fallback city; no path returns an error to the caller.
func (s *locationService) resolve(ctx context.Context, o resolvedOptions) *usecase.Resolution {
	s.setLoading()

	enabled := s.geo.ServicesEnabled(ctx)
	s.setServicesEnabled(enabled)
	if !enabled {
		return s.fail(ctx, o, errServicesDisabled)
	}

	if status := s.geo.PermissionStatus(ctx); status != entity.PermissionGranted {
		if !s.promptForPermission(ctx) {
			return s.fail(ctx, o, errPermissionDenied)
		}
	} else {
		s.setPermission(ctx, true)
	}

	fix, err := s.positionWithTimeout(ctx, o)
	if err != nil {
		msg := err.Error()
		if errors.Is(err, ErrResolveTimeout) {
			msg = ErrResolveTimeout.Error()
		}
		s.logger.Warn("Position fetch failed", slog.Any("error", err))

		return s.fail(ctx, o, msg)
	}

	placemark := s.geo.ReverseGeocode(ctx, fix.Latitude, fix.Longitude)
	location := &entity.Location{
		Latitude:         fix.Latitude,
		Longitude:        fix.Longitude,
		City:             placemark.City,
		Region:           placemark.Region,
		Neighborhood:     placemark.Neighborhood,
		FormattedAddress: placemark.FormattedAddress,
		IsFallback:       false,
		ResolvedAt:       s.clock.Now(),
	}

	s.cache.Set(location)
	s.setResolved(location)
	s.states.UpdateAsync(ctx, func(state *entity.LocationState) {
		state.Location = location
	})

	return &usecase.Resolution{Success: true, Location: location}
}

// promptForPermission requests the OS permission prompt unless it was
// already requested within the cooldown window. Returns the grant state.
func (s *locationService) promptForPermission(ctx context.Context) bool {
	state := s.states.Snapshot()
	if state.PermissionRequested {
		elapsed := s.clock.Now().Sub(state.LastPermissionRequest)
		if elapsed < s.cfg.Location.PermissionCooldown {
			// Within cooldown: no new OS prompt, the previous denial stands.
			return state.HasPermission
		}
	}

	granted := s.geo.RequestPermission(ctx)
	now := s.clock.Now()
	s.states.UpdateAsync(ctx, func(st *entity.LocationState) {
		st.PermissionRequested = true
		st.LastPermissionRequest = now
		st.HasPermission = granted
	})

	return granted
}

// RequestPermission is the UI-triggered prompt, gated by the same cooldown.
func (s *locationService) RequestPermission(ctx context.Context) bool {
	return s.promptForPermission(ctx)
}

// positionWithTimeout races the provider fetch against a timer. The first
// to settle wins; a fix arriving after the timeout is discarded rather than
// applied to state.
func (s *locationService) positionWithTimeout(ctx context.Context, o resolvedOptions) (entity.Fix, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	type positionResult struct {
		fix entity.Fix
		err error
	}
	// Buffered so the late loser can settle without a reader.
	results := make(chan positionResult, 1)
	go func() {
		fix, err := s.geo.Position(fetchCtx, o.highAccuracy)
		results <- positionResult{fix: fix, err: err}
	}()

	timer := time.NewTimer(o.timeout)
	defer timer.Stop()

	select {
	case res := <-results:
		// A provider that honors fetchCtx reports the deadline itself; both
		// shapes of the race count as the same timeout.
		if errors.Is(res.err, context.DeadlineExceeded) {
			return entity.Fix{}, ErrResolveTimeout
		}

		return res.fix, res.err
	case <-timer.C:
		return entity.Fix{}, ErrResolveTimeout
	case <-ctx.Done():
		return entity.Fix{}, ctx.Err()
	}
}

// fail produces the fallback resolution for any failure path. The fallback
// location is cached too, so a failing provider is not hammered on every
// call within the TTL window.
func (s *locationService) fail(ctx context.Context, o resolvedOptions, msg string) *usecase.Resolution {
	if !o.useFallback {
		s.setError(msg)

		return &usecase.Resolution{Success: false, Err: msg}
	}

	location := s.fallbackLocation()
	s.cache.Set(location)
	s.setFallback(location, msg)
	s.states.UpdateAsync(ctx, func(state *entity.LocationState) {
		state.Location = location
	})

	return &usecase.Resolution{Success: false, Location: location, Err: msg}
}

// fallbackLocation builds the configured fallback-city location. The
// coordinates always equal the configured city center exactly.
func (s *locationService) fallbackLocation() *entity.Location {
	city := s.cfg.Location.FallbackCity

	return &entity.Location{
		Latitude:         city.Latitude,
		Longitude:        city.Longitude,
		City:             city.Name,
		Region:           city.Region,
		FormattedAddress: city.Name + ", " + city.Region,
		IsFallback:       true,
		ResolvedAt:       s.clock.Now(),
	}
}

// State returns the UI-visible session snapshot.
func (s *locationService) State(ctx context.Context) *usecase.SessionState {
	s.mu.Lock()
	isLoading, lastErr, servicesEnabled, current := s.isLoading, s.lastErr, s.servicesEnabled, s.current
	s.mu.Unlock()

	persisted := s.states.Snapshot()

	return &usecase.SessionState{
		Location:            current,
		IsLoading:           isLoading,
		Err:                 lastErr,
		HasPermission:       persisted.HasPermission,
		PermissionRequested: persisted.PermissionRequested,
		ServicesEnabled:     servicesEnabled,
	}
}

// Reset clears session and persisted state back to first-run defaults.
func (s *locationService) Reset(ctx context.Context) error {
	s.cache.Clear()
	s.mu.Lock()
	s.isLoading = false
	s.lastErr = ""
	s.current = nil
	s.mu.Unlock()

	return s.states.Reset(ctx)
}

// Session-state transitions. isLoading and a non-empty lastErr are mutually
// exclusive at every observation point.

func (s *locationService) setLoading() {
	s.mu.Lock()
	s.isLoading = true
	s.lastErr = ""
	s.mu.Unlock()
}

func (s *locationService) setResolved(location *entity.Location) {
	s.mu.Lock()
	s.isLoading = false
	s.lastErr = ""
	s.current = location
	s.mu.Unlock()
}

func (s *locationService) setFallback(location *entity.Location, msg string) {
	s.mu.Lock()
	s.isLoading = false
	s.lastErr = msg
	s.current = location
	s.mu.Unlock()
}

func (s *locationService) setError(msg string) {
	s.mu.Lock()
	s.isLoading = false
	s.lastErr = msg
	s.mu.Unlock()
}

func (s *locationService) setServicesEnabled(enabled bool) {
	s.mu.Lock()
	s.servicesEnabled = enabled
	s.mu.Unlock()
}

func (s *locationService) setPermission(ctx context.Context, granted bool) {
	snapshot := s.states.Snapshot()
	if snapshot.HasPermission == granted {
		return
	}
	s.states.UpdateAsync(ctx, func(state *entity.LocationState) {
		state.HasPermission = granted
	})
}
