package usecase

import (
	"context"

	"waypoint/internal/domain/entity"

	"github.com/google/uuid"
)

// AddAddressInput represents the input for adding a new saved address
type AddAddressInput struct {
	Label                string  `json:"label"`
	Street               string  `json:"street"`
	Neighborhood         string  `json:"neighborhood,omitempty"`
	FullAddress          string  `json:"full_address"`
	Latitude             float64 `json:"latitude"`
	Longitude            float64 `json:"longitude"`
	DeliveryInstructions string  `json:"delivery_instructions,omitempty"`
	IsDefault            bool    `json:"is_default"`
}

// UpdateAddressInput represents the input for updating an existing address
type UpdateAddressInput struct {
	Label                *string  `json:"label,omitempty"`
	Street               *string  `json:"street,omitempty"`
	Neighborhood         *string  `json:"neighborhood,omitempty"`
	FullAddress          *string  `json:"full_address,omitempty"`
	Latitude             *float64 `json:"latitude,omitempty"`
	Longitude            *float64 `json:"longitude,omitempty"`
	DeliveryInstructions *string  `json:"delivery_instructions,omitempty"`
	IsDefault            *bool    `json:"is_default,omitempty"`
}

// AddressUsecase is durable CRUD over user addresses with single-default
// enforcement: exactly one default exists whenever the collection is
// non-empty.
type AddressUsecase interface {
	ListAddresses(ctx context.Context) ([]*entity.SavedAddress, error)
	AddAddress(ctx context.Context, input *AddAddressInput) (*entity.SavedAddress, error)
	UpdateAddress(ctx context.Context, id uuid.UUID, input *UpdateAddressInput) (*entity.SavedAddress, error)

	// DeleteAddress removes an address; deleting the default promotes the
	// first remaining address. Deleting an unknown id is a no-op.
	DeleteAddress(ctx context.Context, id uuid.UUID) error

	SetDefaultAddress(ctx context.Context, id uuid.UUID) (*entity.SavedAddress, error)
	DefaultAddress(ctx context.Context) (*entity.SavedAddress, error)

	// NearestAddress returns the saved address closest to the given point
	// and the distance in meters. The UI uses it to skip GPS resolution
	// when the user is near a saved address.
	NearestAddress(ctx context.Context, latitude, longitude float64) (*entity.SavedAddress, float64, error)

	// AddressShareQR renders a QR code PNG for sharing an address.
	AddressShareQR(ctx context.Context, id uuid.UUID) ([]byte, error)
}
