package handler

import (
	"log/slog"
	"net/http"
	"time"

	"waypoint/internal/delivery/http/response"
	"waypoint/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// LocationHandlerParams holds dependencies for LocationHandler, injected by Fx.
type LocationHandlerParams struct {
	fx.In

	LocationUC usecase.LocationUsecase
	Logger     *slog.Logger
}

// LocationHandler holds dependencies for location-related handlers
type LocationHandler struct {
	locationUC usecase.LocationUsecase
	logger     *slog.Logger
}

// NewLocationHandler is the constructor for LocationHandler
func NewLocationHandler(params LocationHandlerParams) *LocationHandler {
	return &LocationHandler{
		locationUC: params.LocationUC,
		logger:     params.Logger,
	}
}

// ResolveRequest represents the optional per-request resolution overrides
type ResolveRequest struct {
	TimeoutMs    int   `json:"timeout_ms" query:"timeout_ms" validate:"omitempty,min=0"`
	HighAccuracy *bool `json:"high_accuracy" query:"high_accuracy"`
	UseFallback  *bool `json:"use_fallback" query:"use_fallback"`
}

func (r *ResolveRequest) toOptions(forceRefresh bool) *usecase.ResolveOptions {
	return &usecase.ResolveOptions{
		Timeout:      time.Duration(r.TimeoutMs) * time.Millisecond,
		HighAccuracy: r.HighAccuracy,
		UseFallback:  r.UseFallback,
		ForceRefresh: forceRefresh,
	}
}

// GetCurrentLocation handles resolving the current location, serving cache
// hits when fresh
func (h *LocationHandler) GetCurrentLocation(c echo.Context) error {
	var req ResolveRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid resolve options")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	resolution := h.locationUC.GetCurrentLocation(c.Request().Context(), req.toOptions(false))

	return response.Success(c, http.StatusOK, resolution, "Location resolved")
}

// RefreshLocation handles a forced re-resolution, bypassing the cache
func (h *LocationHandler) RefreshLocation(c echo.Context) error {
	var req ResolveRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid resolve options")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	resolution := h.locationUC.RefreshLocation(c.Request().Context(), req.toOptions(true))

	return response.Success(c, http.StatusOK, resolution, "Location refreshed")
}

// RequestPermission handles an explicit permission prompt
func (h *LocationHandler) RequestPermission(c echo.Context) error {
	granted := h.locationUC.RequestPermission(c.Request().Context())

	return response.Success(c, http.StatusOK, map[string]bool{"granted": granted}, "Permission request completed")
}

// GetState handles retrieving the session resolver state
func (h *LocationHandler) GetState(c echo.Context) error {
	state := h.locationUC.State(c.Request().Context())

	return response.Success(c, http.StatusOK, state, "Location state retrieved")
}

// Reset handles clearing session and persisted location state (logout)
func (h *LocationHandler) Reset(c echo.Context) error {
	if err := h.locationUC.Reset(c.Request().Context()); err != nil {
		h.logger.Error("Failed to reset location state", slog.Any("error", err))

		return response.InternalServerError(c, "RESET_FAILED", "Failed to reset location state")
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "State reset"}, "Location state reset")
}
