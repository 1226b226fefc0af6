package service

import (
	"waypoint/internal/domain/entity"

	"github.com/google/uuid"
)

// QRCodeService generates and parses address-share QR codes.
type QRCodeService interface {
	// GenerateAddressQR encodes a saved address into a PNG QR code.
	GenerateAddressQR(address *entity.SavedAddress) ([]byte, error)

	// ParseAddressQR decodes QR payload data and returns the address ID.
	ParseAddressQR(qrData string) (uuid.UUID, error)
}
