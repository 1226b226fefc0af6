// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"waypoint/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	LocationHandler     *handler.LocationHandler
	AddressHandler      *handler.AddressHandler
	NotificationHandler *handler.NotificationHandler
}

// router holds all the handlers that need to be registered.
type router struct {
	locationHandler     *handler.LocationHandler
	addressHandler      *handler.AddressHandler
	notificationHandler *handler.NotificationHandler
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		locationHandler:     params.LocationHandler,
		addressHandler:      params.AddressHandler,
		notificationHandler: params.NotificationHandler,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Location resolution routes
	locationGroup := e.Group("/location")
	{
		locationGroup.GET("/current", r.locationHandler.GetCurrentLocation)
		locationGroup.POST("/refresh", r.locationHandler.RefreshLocation)
		locationGroup.POST("/permission", r.locationHandler.RequestPermission)
		locationGroup.GET("/state", r.locationHandler.GetState)
		locationGroup.POST("/reset", r.locationHandler.Reset)
	}

	// Saved address routes
	addressGroup := e.Group("/addresses")
	{
		addressGroup.GET("", r.addressHandler.ListAddresses)
		addressGroup.POST("", r.addressHandler.CreateAddress)
		addressGroup.GET("/default", r.addressHandler.GetDefaultAddress)
		addressGroup.GET("/nearest", r.addressHandler.GetNearestAddress)
		addressGroup.PUT("/:id", r.addressHandler.UpdateAddress)
		addressGroup.DELETE("/:id", r.addressHandler.DeleteAddress)
		addressGroup.PUT("/:id/default", r.addressHandler.SetDefaultAddress)
		addressGroup.GET("/:id/qr", r.addressHandler.GetAddressQR)
	}

	// Local notification routes
	notificationGroup := e.Group("/notifications")
	{
		notificationGroup.POST("", r.notificationHandler.Schedule)
		notificationGroup.POST("/recurring", r.notificationHandler.ScheduleRecurring)
		notificationGroup.POST("/cancel-matching", r.notificationHandler.CancelMatching)
		notificationGroup.GET("/scheduled", r.notificationHandler.GetScheduled)
		notificationGroup.GET("/history", r.notificationHandler.GetHistory)
		notificationGroup.DELETE("/:id", r.notificationHandler.Cancel)
	}
}
