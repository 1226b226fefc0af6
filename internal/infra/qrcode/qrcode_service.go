// Package qrcode renders saved addresses as shareable QR codes.
package qrcode

import (
	"encoding/json"
	"fmt"

	"waypoint/config"
	"waypoint/internal/domain/entity"
	"waypoint/internal/domain/service"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
)

const defaultSize = 256

type qrcodeService struct {
	size                 int
	errorCorrectionLevel qrcode.RecoveryLevel
}

// QRCodeData is the payload encoded in an address-share QR code.
type QRCodeData struct {
	AddressID string  `json:"address_id"`
	Label     string  `json:"label"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Type      string  `json:"type"`
}

// NewQRCodeService creates a new QR code service instance
func NewQRCodeService(cfg *config.Config) service.QRCodeService {
	size := defaultSize
	correction := ""
	if cfg.QRCode != nil {
		if cfg.QRCode.Size > 0 {
			size = cfg.QRCode.Size
		}
		correction = cfg.QRCode.ErrorCorrectionLevel
	}

	var level qrcode.RecoveryLevel
	switch correction {
	case "L":
		level = qrcode.Low
	case "M":
		level = qrcode.Medium
	case "Q":
		level = qrcode.High
	case "H":
		level = qrcode.Highest
	default:
		level = qrcode.Medium
	}

	return &qrcodeService{
		size:                 size,
		errorCorrectionLevel: level,
	}
}

// GenerateAddressQR generates a QR code PNG for sharing a saved address
func (s *qrcodeService) GenerateAddressQR(address *entity.SavedAddress) ([]byte, error) {
	data := QRCodeData{
		AddressID: address.ID.String(),
		Label:     address.Label,
		Latitude:  address.Latitude,
		Longitude: address.Longitude,
		Type:      "address-share",
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal QR code data: %w", err)
	}

	qrCode, err := qrcode.New(string(jsonData), s.errorCorrectionLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create QR code: %w", err)
	}

	pngBytes, err := qrCode.PNG(s.size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PNG: %w", err)
	}

	return pngBytes, nil
}

// ParseAddressQR parses QR code data and returns the address ID
func (s *qrcodeService) ParseAddressQR(qrData string) (uuid.UUID, error) {
	var data QRCodeData
	if err := json.Unmarshal([]byte(qrData), &data); err != nil {
		return uuid.Nil, fmt.Errorf("failed to unmarshal QR code data: %w", err)
	}

	if data.Type != "address-share" {
		return uuid.Nil, fmt.Errorf("invalid QR code type: %s", data.Type)
	}

	addressID, err := uuid.Parse(data.AddressID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to parse address ID: %w", err)
	}

	return addressID, nil
}
