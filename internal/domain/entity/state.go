package entity

import (
	"time"

	"github.com/google/uuid"
)

// LocationState is the durable snapshot written to the location-storage
// document. Transient session fields (loading flag, last error, services
// state) are deliberately absent: they live in the resolver and must not
// survive a restart.
type LocationState struct {
	Location              *Location       `json:"location"`
	HasPermission         bool            `json:"has_permission"`
	SavedAddresses        []*SavedAddress `json:"saved_addresses"`
	DefaultAddressID      *uuid.UUID      `json:"default_address_id"`
	PermissionRequested   bool            `json:"permission_requested"` // Sticky, never reset outside Reset.
	LastPermissionRequest time.Time       `json:"last_permission_request"`
}

// DefaultAddress returns the address DefaultAddressID points at, or nil.
func (s *LocationState) DefaultAddress() *SavedAddress {
	if s.DefaultAddressID == nil {
		return nil
	}
	for _, addr := range s.SavedAddresses {
		if addr.ID == *s.DefaultAddressID {
			return addr
		}
	}

	return nil
}
