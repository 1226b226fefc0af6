// Package entity contains the core business objects of the project.
package entity

import (
	"fmt"
	"time"
)

// UnknownPlace is the sentinel used for city/region when reverse geocoding
// cannot name the place.
const UnknownPlace = "Unknown"

// PermissionStatus describes the device location permission grant state.
type PermissionStatus string

const (
	PermissionGranted      PermissionStatus = "granted"
	PermissionDenied       PermissionStatus = "denied"
	PermissionUndetermined PermissionStatus = "undetermined"
)

// Fix is a single position reading from the device location provider.
type Fix struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Placemark is the reverse-geocoded description of a fix.
type Placemark struct {
	City             string `json:"city"`
	Region           string `json:"region"`
	Neighborhood     string `json:"neighborhood,omitempty"`
	FormattedAddress string `json:"formatted_address"`
}

// CoordinatePlacemark builds the degraded placemark used when reverse
// geocoding fails: a bare coordinate string with Unknown city/region.
func CoordinatePlacemark(latitude, longitude float64) Placemark {
	return Placemark{
		City:             UnknownPlace,
		Region:           UnknownPlace,
		FormattedAddress: fmt.Sprintf("%g, %g", latitude, longitude),
	}
}

// Location is a resolved geographic point. A Location with IsFallback=true
// is the configured fallback-city placeholder and never originates from a
// device fix. Locations are superseded, never mutated, by the next
// resolution.
type Location struct {
	Latitude         float64   `json:"latitude"`
	Longitude        float64   `json:"longitude"`
	City             string    `json:"city"`
	Region           string    `json:"region"`
	FormattedAddress string    `json:"formatted_address"`
	Neighborhood     string    `json:"neighborhood,omitempty"`
	IsFallback       bool      `json:"is_fallback"`
	ResolvedAt       time.Time `json:"resolved_at"`
}
