// Package impl contains the concrete usecase services.
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

	"github.com/google/uuid"
	"go.uber.org/fx"
)

// seededAddressLabel is the label of the address seeded on first run.
const seededAddressLabel = "Home"

// StateManager owns the process-wide LocationState aggregate. All mutation
// goes through Update; callers receive copies and must treat them as
// immutable snapshots. Every mutation is flushed to the durable store.
type StateManager struct {
	mu     sync.Mutex
	repo   repository.StateRepository
	cfg    *config.Config
	clock  service.Clock
	logger *slog.Logger

	state *entity.LocationState
}

// StateManagerParams holds dependencies for the StateManager, injected by Fx.
type StateManagerParams struct {
	fx.In

	Ctx    context.Context
	Repo   repository.StateRepository
	Config *config.Config
	Clock  service.Clock
	Logger *slog.Logger
}

// NewStateManager loads the persisted snapshot, seeding first-run defaults
// (a "Home" address in the fallback city, marked default) when none exists.
func NewStateManager(params StateManagerParams) (*StateManager, error) {
	m := &StateManager{
		repo:   params.Repo,
		cfg:    params.Config,
		clock:  params.Clock,
		logger: params.Logger,
	}

	state, err := params.Repo.LoadState(params.Ctx)
	switch {
	case err == nil:
		m.state = state
	case errors.Is(err, repository.ErrStateNotFound):
		m.state = m.seededState()
		if err := params.Repo.SaveState(params.Ctx, m.state); err != nil {
			return nil, errors.Wrap(err, "failed to persist seeded state")
		}
		m.logger.Info("Seeded first-run location state",
			slog.String("default_address", seededAddressLabel),
		)
	default:
		return nil, errors.Wrap(err, "failed to load persisted state")
	}

	return m, nil
}

// seededState builds the first-run snapshot with one default address in the
// configured fallback city.
func (m *StateManager) seededState() *entity.LocationState {
	now := m.clock.Now()
	city := m.cfg.Location.FallbackCity
	home := &entity.SavedAddress{
		ID:          uuid.New(),
		Label:       seededAddressLabel,
		FullAddress: fmt.Sprintf("%s, %s", city.Name, city.Region),
		Latitude:    city.Latitude,
		Longitude:   city.Longitude,
		IsDefault:   true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	return &entity.LocationState{
		SavedAddresses:   []*entity.SavedAddress{home},
		DefaultAddressID: &home.ID,
	}
}

// Snapshot returns a deep copy of the current state.
func (m *StateManager) Snapshot() *entity.LocationState {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.copyState()
}

// Update applies fn to the state under the manager's ownership and flushes
// the result. The callback must not retain the *LocationState.
func (m *StateManager) Update(ctx context.Context, fn func(state *entity.LocationState)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	fn(m.state)
	if err := m.repo.SaveState(ctx, m.state); err != nil {
		return errors.Wrap(err, "failed to persist state")
	}

	return nil
}

// UpdateAsync applies fn like Update but treats persistence as
// fire-and-forget: flush failures are logged, never returned. Used by the
// resolver, whose results must not depend on storage health.
func (m *StateManager) UpdateAsync(ctx context.Context, fn func(state *entity.LocationState)) {
	if err := m.Update(ctx, fn); err != nil {
		m.logger.Warn("State flush failed", slog.Any("error", err))
	}
}

// Reset restores first-run defaults (logout).
func (m *StateManager) Reset(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = m.seededState()
	if err := m.repo.SaveState(ctx, m.state); err != nil {
		return errors.Wrap(err, "failed to persist reset state")
	}

	return nil
}

// LastPermissionRequest returns the persisted prompt timestamp.
func (m *StateManager) LastPermissionRequest() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.state.LastPermissionRequest
}

func (m *StateManager) copyState() *entity.LocationState {
	st := *m.state
	if m.state.Location != nil {
		loc := *m.state.Location
		st.Location = &loc
	}
	if m.state.DefaultAddressID != nil {
		id := *m.state.DefaultAddressID
		st.DefaultAddressID = &id
	}
	st.SavedAddresses = make([]*entity.SavedAddress, 0, len(m.state.SavedAddresses))
	for _, addr := range m.state.SavedAddresses {
		st.SavedAddresses = append(st.SavedAddresses, addr.Clone())
	}

	return &st
}
