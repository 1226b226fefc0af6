// Package usecase defines the application-facing interfaces of the location
// and notification subsystems.
package usecase

import (
	"context"
	"time"

	"waypoint/internal/domain/entity"
)

// ResolveOptions tunes a single resolution attempt. Zero values fall back to
// the configured defaults.
type ResolveOptions struct {
	Timeout      time.Duration // Position fetch timeout; 0 = configured default.
	HighAccuracy *bool         // nil = configured default.
	UseFallback  *bool         // nil = configured default.
	ForceRefresh bool          // Bypass and clear the cache before resolving.
}

// Resolution is the outcome of a resolution attempt. Adapter failures never
// escape as errors; they are folded into Success=false plus an error string,
// with the fallback location attached when fallback is enabled.
type Resolution struct {
	Success  bool             `json:"success"`
	Location *entity.Location `json:"location,omitempty"`
	Err      string           `json:"error,omitempty"`
}

// SessionState is the UI-visible, process-lifetime resolver state. IsLoading
// and a non-empty Err are mutually exclusive at any observation point.
type SessionState struct {
	Location            *entity.Location `json:"location"`
	IsLoading           bool             `json:"is_loading"`
	Err                 string           `json:"error,omitempty"`
	HasPermission       bool             `json:"has_permission"`
	PermissionRequested bool             `json:"permission_requested"`
	ServicesEnabled     bool             `json:"services_enabled"`
}

// LocationUsecase orchestrates permission checks, GPS acquisition with
// timeout racing, reverse geocoding, caching and the fallback-city policy.
type LocationUsecase interface {
	// GetCurrentLocation resolves the device location, serving fresh cache
	// hits without touching the provider. Concurrent calls are coalesced
	// into one in-flight resolution.
	GetCurrentLocation(ctx context.Context, opts *ResolveOptions) *Resolution

	// RefreshLocation forces a cache bypass.
	RefreshLocation(ctx context.Context, opts *ResolveOptions) *Resolution

	// RequestPermission prompts for location permission, honoring the
	// re-prompt cooldown, and returns the grant state.
	RequestPermission(ctx context.Context) bool

	// State returns a snapshot of the session state for the UI.
	State(ctx context.Context) *SessionState

	// Reset clears session and persisted state back to first-run defaults
	// (logout).
	Reset(ctx context.Context) error
}
