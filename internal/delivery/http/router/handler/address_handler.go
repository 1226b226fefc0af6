package handler

import (
	"log/slog"
	"net/http"

	"waypoint/internal/delivery/http/response"
	"waypoint/internal/usecase"
	"waypoint/internal/usecase/impl"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// AddressHandlerParams holds dependencies for AddressHandler, injected by Fx.
type AddressHandlerParams struct {
	fx.In

	AddressUC usecase.AddressUsecase
	Logger    *slog.Logger
}

// AddressHandler holds dependencies for saved-address handlers
type AddressHandler struct {
	addressUC usecase.AddressUsecase
	logger    *slog.Logger
}

// NewAddressHandler is the constructor for AddressHandler
func NewAddressHandler(params AddressHandlerParams) *AddressHandler {
	return &AddressHandler{
		addressUC: params.AddressUC,
		logger:    params.Logger,
	}
}

// CreateAddressRequest represents the request body for creating an address
type CreateAddressRequest struct {
	Label                string  `json:"label" validate:"required"`
	Street               string  `json:"street" validate:"required"`
	Neighborhood         string  `json:"neighborhood"`
	FullAddress          string  `json:"full_address" validate:"required"`
	Latitude             float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude            float64 `json:"longitude" validate:"min=-180,max=180"`
	DeliveryInstructions string  `json:"delivery_instructions"`
	IsDefault            bool    `json:"is_default"`
}

// UpdateAddressRequest represents the request body for updating an address
type UpdateAddressRequest struct {
	Label                *string  `json:"label,omitempty"`
	Street               *string  `json:"street,omitempty"`
	Neighborhood         *string  `json:"neighborhood,omitempty"`
	FullAddress          *string  `json:"full_address,omitempty"`
	Latitude             *float64 `json:"latitude,omitempty" validate:"omitempty,min=-90,max=90"`
	Longitude            *float64 `json:"longitude,omitempty" validate:"omitempty,min=-180,max=180"`
	DeliveryInstructions *string  `json:"delivery_instructions,omitempty"`
	IsDefault            *bool    `json:"is_default,omitempty"`
}

// NearestAddressRequest represents the query for the nearest saved address
type NearestAddressRequest struct {
	Latitude  float64 `query:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `query:"longitude" validate:"min=-180,max=180"`
}

// ListAddresses handles retrieving all saved addresses
func (h *AddressHandler) ListAddresses(c echo.Context) error {
	addresses, err := h.addressUC.ListAddresses(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, addresses, "Addresses retrieved successfully")
}

// CreateAddress handles creating a new saved address
func (h *AddressHandler) CreateAddress(c echo.Context) error {
	var req CreateAddressRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid address input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	input := &usecase.AddAddressInput{
		Label:                req.Label,
		Street:               req.Street,
		Neighborhood:         req.Neighborhood,
		FullAddress:          req.FullAddress,
		Latitude:             req.Latitude,
		Longitude:            req.Longitude,
		DeliveryInstructions: req.DeliveryInstructions,
		IsDefault:            req.IsDefault,
	}

	address, err := h.addressUC.AddAddress(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, address, "Address created successfully")
}

// UpdateAddress handles updating an existing saved address
func (h *AddressHandler) UpdateAddress(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid address ID")
	}

	var req UpdateAddressRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid address input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	input := &usecase.UpdateAddressInput{
		Label:                req.Label,
		Street:               req.Street,
		Neighborhood:         req.Neighborhood,
		FullAddress:          req.FullAddress,
		Latitude:             req.Latitude,
		Longitude:            req.Longitude,
		DeliveryInstructions: req.DeliveryInstructions,
		IsDefault:            req.IsDefault,
	}

	address, err := h.addressUC.UpdateAddress(c.Request().Context(), id, input)
	if err != nil {
		return h.handleAddressError(c, err)
	}

	return response.Success(c, http.StatusOK, address, "Address updated successfully")
}

// DeleteAddress handles deleting a saved address
func (h *AddressHandler) DeleteAddress(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid address ID")
	}

	if err := h.addressUC.DeleteAddress(c.Request().Context(), id); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "Address deleted successfully"}, "Address deleted successfully")
}

// SetDefaultAddress handles marking an address as the default
func (h *AddressHandler) SetDefaultAddress(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid address ID")
	}

	address, err := h.addressUC.SetDefaultAddress(c.Request().Context(), id)
	if err != nil {
		return h.handleAddressError(c, err)
	}

	return response.Success(c, http.StatusOK, address, "Default address updated successfully")
}

// GetDefaultAddress handles retrieving the default address
func (h *AddressHandler) GetDefaultAddress(c echo.Context) error {
	address, err := h.addressUC.DefaultAddress(c.Request().Context())
	if err != nil {
		return h.handleAddressError(c, err)
	}

	return response.Success(c, http.StatusOK, address, "Default address retrieved successfully")
}

// GetNearestAddress handles finding the saved address closest to a point
func (h *AddressHandler) GetNearestAddress(c echo.Context) error {
	var req NearestAddressRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid coordinates")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	address, distance, err := h.addressUC.NearestAddress(c.Request().Context(), req.Latitude, req.Longitude)
	if err != nil {
		return h.handleAddressError(c, err)
	}

	return response.Success(c, http.StatusOK, map[string]any{
		"address":         address,
		"distance_meters": distance,
	}, "Nearest address retrieved successfully")
}

// GetAddressQR handles rendering an address-share QR code as PNG
func (h *AddressHandler) GetAddressQR(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid address ID")
	}

	png, err := h.addressUC.AddressShareQR(c.Request().Context(), id)
	if err != nil {
		return h.handleAddressError(c, err)
	}

	return c.Blob(http.StatusOK, "image/png", png)
}

// handleAddressError maps known domain errors to HTTP responses
func (h *AddressHandler) handleAddressError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, impl.ErrAddressNotFound):
		return response.NotFound(c, "ADDRESS_NOT_FOUND", "Address not found")
	case errors.Is(err, impl.ErrNoAddresses):
		return response.NotFound(c, "NO_ADDRESSES", "No saved addresses")
	default:
		return errors.WithStack(err)
	}
}
