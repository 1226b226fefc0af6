package service

import (
	"context"

	"waypoint/internal/domain/entity"
	"waypoint/internal/errors"
)

// ErrPositionUnavailable is returned by GeoProvider.Position when the
// underlying provider cannot produce a fix.
var ErrPositionUnavailable = errors.New("position unavailable")

// GeoProvider isolates the device location and geocoding capability so the
// resolver is testable without a real device.
//
// Failure semantics are fixed per call: ServicesEnabled and
// RequestPermission fail to false, PermissionStatus fails to denied, and
// ReverseGeocode degrades to a coordinate-only placemark instead of
// returning an error. Only Position surfaces errors; it carries no internal
// timeout and relies on the caller to impose one.
type GeoProvider interface {
	ServicesEnabled(ctx context.Context) bool
	PermissionStatus(ctx context.Context) entity.PermissionStatus
	RequestPermission(ctx context.Context) bool
	Position(ctx context.Context, highAccuracy bool) (entity.Fix, error)
	ReverseGeocode(ctx context.Context, latitude, longitude float64) entity.Placemark
}
