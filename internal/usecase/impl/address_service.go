package impl

import (
	"context"
	"errors"
	"fmt"

	"waypoint/internal/domain/entity"
	"waypoint/internal/domain/service"
	"waypoint/internal/usecase"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"go.uber.org/fx"
)

var (
	// ErrAddressNotFound is returned when an operation references an id
	// absent from the collection.
	ErrAddressNotFound = errors.New("address not found")
	// ErrNoAddresses is returned when the collection is empty.
	ErrNoAddresses = errors.New("no saved addresses")
)

type addressService struct {
	states *StateManager
	clock  service.Clock
	qr     service.QRCodeService
}

// AddressServiceParams holds dependencies for the address service, injected
// by Fx.
type AddressServiceParams struct {
	fx.In

	States *StateManager
	Clock  service.Clock
	QR     service.QRCodeService
}

// NewAddressService creates the saved-address store service.
func NewAddressService(params AddressServiceParams) usecase.AddressUsecase {
	return &addressService{
		states: params.States,
		clock:  params.Clock,
		qr:     params.QR,
	}
}

// ListAddresses returns immutable snapshots of all saved addresses.
func (s *addressService) ListAddresses(ctx context.Context) ([]*entity.SavedAddress, error) {
	return s.states.Snapshot().SavedAddresses, nil
}

// AddAddress creates an address. The first address of the collection, or
// one the caller marks default, becomes the default and demotes any
// previous one.
func (s *addressService) AddAddress(ctx context.Context, input *usecase.AddAddressInput) (*entity.SavedAddress, error) {
	now := s.clock.Now()
	address := &entity.SavedAddress{
		ID:                   uuid.New(),
		Label:                input.Label,
		Street:               input.Street,
		Neighborhood:         input.Neighborhood,
		FullAddress:          input.FullAddress,
		Latitude:             input.Latitude,
		Longitude:            input.Longitude,
		DeliveryInstructions: input.DeliveryInstructions,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	err := s.states.Update(ctx, func(state *entity.LocationState) {
		makeDefault := input.IsDefault || len(state.SavedAddresses) == 0
		state.SavedAddresses = append(state.SavedAddresses, address)
		if makeDefault {
			promote(state, address.ID)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add address: %w", err)
	}

	return address.Clone(), nil
}

// UpdateAddress merges the provided fields and stamps UpdatedAt. An unknown
// id is surfaced as ErrAddressNotFound rather than a silent no-op.
func (s *addressService) UpdateAddress(ctx context.Context, id uuid.UUID, input *usecase.UpdateAddressInput) (*entity.SavedAddress, error) {
	var updated *entity.SavedAddress
	err := s.states.Update(ctx, func(state *entity.LocationState) {
		address := findAddress(state, id)
		if address == nil {
			return
		}
		applyAddressUpdates(address, input, s.clock)
		if input.IsDefault != nil && *input.IsDefault {
			promote(state, id)
		}
		updated = address.Clone()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update address: %w", err)
	}
	if updated == nil {
		return nil, ErrAddressNotFound
	}

	return updated, nil
}

// applyAddressUpdates applies the update input to an address. Clearing
// IsDefault on the current default is ignored; the single-default invariant
// keeps exactly one default while the collection is non-empty.
func applyAddressUpdates(address *entity.SavedAddress, input *usecase.UpdateAddressInput, clock service.Clock) {
	if input.Label != nil {
		address.Label = *input.Label
	}
	if input.Street != nil {
		address.Street = *input.Street
	}
	if input.Neighborhood != nil {
		address.Neighborhood = *input.Neighborhood
	}
	if input.FullAddress != nil {
		address.FullAddress = *input.FullAddress
	}
	if input.Latitude != nil {
		address.Latitude = *input.Latitude
	}
	if input.Longitude != nil {
		address.Longitude = *input.Longitude
	}
	if input.DeliveryInstructions != nil {
		address.DeliveryInstructions = *input.DeliveryInstructions
	}
	address.UpdatedAt = clock.Now()
}

// DeleteAddress removes an address. Deleting the default promotes the first
// remaining address in collection order, or clears the default pointer when
// the collection becomes empty. Unknown ids are a no-op.
func (s *addressService) DeleteAddress(ctx context.Context, id uuid.UUID) error {
	err := s.states.Update(ctx, func(state *entity.LocationState) {
		idx := -1
		for i, addr := range state.SavedAddresses {
			if addr.ID == id {
				idx = i

				break
			}
		}
		if idx < 0 {
			return
		}

		wasDefault := state.SavedAddresses[idx].IsDefault
		state.SavedAddresses = append(state.SavedAddresses[:idx], state.SavedAddresses[idx+1:]...)

		if len(state.SavedAddresses) == 0 {
			state.DefaultAddressID = nil

			return
		}
		if wasDefault {
			promote(state, state.SavedAddresses[0].ID)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to delete address: %w", err)
	}

	return nil
}

// SetDefaultAddress marks the target default and demotes every other entry.
func (s *addressService) SetDefaultAddress(ctx context.Context, id uuid.UUID) (*entity.SavedAddress, error) {
	var target *entity.SavedAddress
	err := s.states.Update(ctx, func(state *entity.LocationState) {
		address := findAddress(state, id)
		if address == nil {
			return
		}
		promote(state, id)
		address.UpdatedAt = s.clock.Now()
		target = address.Clone()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set default address: %w", err)
	}
	if target == nil {
		return nil, ErrAddressNotFound
	}

	return target, nil
}

// DefaultAddress returns the current default address.
func (s *addressService) DefaultAddress(ctx context.Context) (*entity.SavedAddress, error) {
	state := s.states.Snapshot()
	if address := state.DefaultAddress(); address != nil {
		return address, nil
	}
	if len(state.SavedAddresses) == 0 {
		return nil, ErrNoAddresses
	}

	return nil, ErrAddressNotFound
}

// NearestAddress returns the saved address closest to the given point and
// the haversine distance in meters.
func (s *addressService) NearestAddress(ctx context.Context, latitude, longitude float64) (*entity.SavedAddress, float64, error) {
	state := s.states.Snapshot()
	if len(state.SavedAddresses) == 0 {
		return nil, 0, ErrNoAddresses
	}

	from := orb.Point{longitude, latitude}
	var nearest *entity.SavedAddress
	var best float64
	for _, address := range state.SavedAddresses {
		d := geo.DistanceHaversine(from, orb.Point{address.Longitude, address.Latitude})
		if nearest == nil || d < best {
			nearest = address
			best = d
		}
	}

	return nearest, best, nil
}

// AddressShareQR renders a QR code PNG encoding the address share payload.
func (s *addressService) AddressShareQR(ctx context.Context, id uuid.UUID) ([]byte, error) {
	address := findAddress(s.states.Snapshot(), id)
	if address == nil {
		return nil, ErrAddressNotFound
	}

	png, err := s.qr.GenerateAddressQR(address)
	if err != nil {
		return nil, fmt.Errorf("failed to generate address QR: %w", err)
	}

	return png, nil
}

func findAddress(state *entity.LocationState, id uuid.UUID) *entity.SavedAddress {
	for _, address := range state.SavedAddresses {
		if address.ID == id {
			return address
		}
	}

	return nil
}

// promote makes id the single default and points DefaultAddressID at it.
func promote(state *entity.LocationState, id uuid.UUID) {
	for _, address := range state.SavedAddresses {
		address.IsDefault = address.ID == id
	}
	target := id
	state.DefaultAddressID = &target
}
