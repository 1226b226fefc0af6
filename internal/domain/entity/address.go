package entity

import (
	"time"

	"github.com/google/uuid"
)

// SavedAddress is a user-authored delivery address. At most one address in a
// collection carries IsDefault=true; the AddressUsecase maintains that
// invariant on every mutation.
type SavedAddress struct {
	ID                   uuid.UUID `json:"id"`           // Immutable, generated at creation.
	Label                string    `json:"label"`        // User-defined label, e.g. "Home", "Office".
	Street               string    `json:"street"`       // Street component of the address.
	Neighborhood         string    `json:"neighborhood,omitempty"` // Optional neighborhood or landmark.
	FullAddress          string    `json:"full_address"` // The full, human-readable address.
	Latitude             float64   `json:"latitude"`
	Longitude            float64   `json:"longitude"`
	DeliveryInstructions string    `json:"delivery_instructions,omitempty"`
	IsDefault            bool      `json:"is_default"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// Clone returns a copy so callers can treat stored addresses as immutable
// snapshots.
func (a *SavedAddress) Clone() *SavedAddress {
	clone := *a

	return &clone
}
