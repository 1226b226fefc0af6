package handler

import (
	"log/slog"
	"net/http"
	"time"

	"waypoint/internal/delivery/http/response"
	"waypoint/internal/domain/entity"
	"waypoint/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// NotificationHandlerParams holds dependencies for NotificationHandler, injected by Fx.
type NotificationHandlerParams struct {
	fx.In

	NotificationUC usecase.NotificationUsecase
	Logger         *slog.Logger
}

// NotificationHandler holds dependencies for notification handlers
type NotificationHandler struct {
	notificationUC usecase.NotificationUsecase
	logger         *slog.Logger
}

// NewNotificationHandler is the constructor for NotificationHandler
func NewNotificationHandler(params NotificationHandlerParams) *NotificationHandler {
	return &NotificationHandler{
		notificationUC: params.NotificationUC,
		logger:         params.Logger,
	}
}

// ScheduleRequest represents the request body for scheduling a notification
type ScheduleRequest struct {
	Type      string `json:"type" validate:"required,oneof=order promotion reminder system custom"`
	Title     string `json:"title" validate:"required"`
	Body      string `json:"body" validate:"required"`
	OrderID   string `json:"order_id"`
	PromoCode string `json:"promo_code"`
	Reference string `json:"reference"`

	// DelaySeconds is the one-shot delay; IntervalSeconds the repeat period.
	DelaySeconds    int `json:"delay_seconds" validate:"omitempty,min=0"`
	IntervalSeconds int `json:"interval_seconds" validate:"omitempty,min=1"`
}

func (r *ScheduleRequest) toInput() *usecase.ScheduleInput {
	notificationType := entity.NotificationType(r.Type)

	return &usecase.ScheduleInput{
		Type:  notificationType,
		Title: r.Title,
		Body:  r.Body,
		Data: entity.NotificationData{
			Type:      notificationType,
			OrderID:   r.OrderID,
			PromoCode: r.PromoCode,
			Reference: r.Reference,
		},
	}
}

// CancelMatchingRequest represents the predicate for bulk cancellation
type CancelMatchingRequest struct {
	Type      string `json:"type" validate:"omitempty,oneof=order promotion reminder system custom"`
	OrderID   string `json:"order_id"`
	PromoCode string `json:"promo_code"`
	Reference string `json:"reference"`
}

// Schedule handles scheduling a one-shot notification
func (h *NotificationHandler) Schedule(c echo.Context) error {
	var req ScheduleRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid notification input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	delay := time.Duration(req.DelaySeconds) * time.Second
	id, err := h.notificationUC.Schedule(c.Request().Context(), req.toInput(), delay)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, map[string]string{"id": id}, "Notification scheduled")
}

// ScheduleRecurring handles scheduling a repeating notification
func (h *NotificationHandler) ScheduleRecurring(c echo.Context) error {
	var req ScheduleRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid notification input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}
	if req.IntervalSeconds <= 0 {
		return response.BadRequest(c, "VALIDATION_ERROR", "interval_seconds must be positive")
	}

	interval := time.Duration(req.IntervalSeconds) * time.Second
	id, err := h.notificationUC.ScheduleRecurring(c.Request().Context(), req.toInput(), interval)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, map[string]string{"id": id}, "Recurring notification scheduled")
}

// Cancel handles cancelling a notification by id
func (h *NotificationHandler) Cancel(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return response.BadRequest(c, "INVALID_ID", "Notification ID is required")
	}

	if err := h.notificationUC.Cancel(c.Request().Context(), id); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "Notification cancelled"}, "Notification cancelled")
}

// CancelMatching handles bulk cancellation by data-payload predicate
func (h *NotificationHandler) CancelMatching(c echo.Context) error {
	var req CancelMatchingRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid predicate input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	predicate := entity.NotificationData{
		Type:      entity.NotificationType(req.Type),
		OrderID:   req.OrderID,
		PromoCode: req.PromoCode,
		Reference: req.Reference,
	}

	count, err := h.notificationUC.CancelAllMatching(c.Request().Context(), predicate)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]int{"cancelled": count}, "Matching notifications cancelled")
}

// GetScheduled handles retrieving the pending notification index
func (h *NotificationHandler) GetScheduled(c echo.Context) error {
	scheduled, err := h.notificationUC.Scheduled(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, scheduled, "Scheduled notifications retrieved")
}

// GetHistory handles retrieving the fired-notification history
func (h *NotificationHandler) GetHistory(c echo.Context) error {
	history, err := h.notificationUC.History(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, history, "Notification history retrieved")
}
