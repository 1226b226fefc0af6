// Package geo implements the GeoProvider port against the device bridge:
// the UI shell exposes the OS location capability over a localhost HTTP
// endpoint, and reverse geocoding goes to a Nominatim-compatible service.
package geo

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"waypoint/config"
	"waypoint/internal/domain/entity"
	"waypoint/internal/domain/service"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const defaultRequestTimeout = 10 * time.Second

type bridgeProvider struct {
	baseURL    string
	geocodeURL string
	client     *http.Client
	logger     *slog.Logger
}

// Params holds dependencies for the bridge provider, injected by Fx.
type Params struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

// NewBridgeProvider creates the device-bridge GeoProvider.
func NewBridgeProvider(params Params) (service.GeoProvider, error) {
	cfg := params.Config.GeoBridge
	if cfg == nil || cfg.BaseURL == "" {
		return nil, errors.New("geoBridge.baseUrl is required")
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	return &bridgeProvider{
		baseURL:    cfg.BaseURL,
		geocodeURL: cfg.GeocodeURL,
		client:     &http.Client{Timeout: timeout},
		logger:     params.Logger,
	}, nil
}

type servicesResponse struct {
	Enabled bool `json:"enabled"`
}

// ServicesEnabled reports device-level location service availability. Any
// bridge failure reads as disabled.
func (p *bridgeProvider) ServicesEnabled(ctx context.Context) bool {
	var res servicesResponse
	if err := p.getJSON(ctx, p.baseURL+"/location/services", &res); err != nil {
		p.logger.Warn("Services check failed", slog.Any("error", err))

		return false
	}

	return res.Enabled
}

type permissionResponse struct {
	Status string `json:"status"`
}

// PermissionStatus queries the current grant. Bridge failure maps to denied
// (fail-closed).
func (p *bridgeProvider) PermissionStatus(ctx context.Context) entity.PermissionStatus {
	var res permissionResponse
	if err := p.getJSON(ctx, p.baseURL+"/location/permission", &res); err != nil {
		p.logger.Warn("Permission status check failed", slog.Any("error", err))

		return entity.PermissionDenied
	}

	switch entity.PermissionStatus(res.Status) {
	case entity.PermissionGranted, entity.PermissionUndetermined:
		return entity.PermissionStatus(res.Status)
	default:
		return entity.PermissionDenied
	}
}

type permissionRequestResponse struct {
	Granted bool `json:"granted"`
}

// RequestPermission triggers the OS prompt via the bridge and returns the
// final grant state; failure returns false.
func (p *bridgeProvider) RequestPermission(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/location/permission/request", nil)
	if err != nil {
		return false
	}

	var res permissionRequestResponse
	if err := p.doJSON(req, &res); err != nil {
		p.logger.Warn("Permission request failed", slog.Any("error", err))

		return false
	}

	return res.Granted
}

// Position fetches a single fix. No internal timeout beyond the transport's;
// the resolver imposes the race.
func (p *bridgeProvider) Position(ctx context.Context, highAccuracy bool) (entity.Fix, error) {
	endpoint := p.baseURL + "/location/position?high_accuracy=" + strconv.FormatBool(highAccuracy)
	var fix entity.Fix
	if err := p.getJSON(ctx, endpoint, &fix); err != nil {
		return entity.Fix{}, errors.Wrap(service.ErrPositionUnavailable, err.Error())
	}

	return fix, nil
}

// nominatimResponse is the subset of the reverse-geocode payload we read.
type nominatimResponse struct {
	DisplayName string `json:"display_name"`
	Address     struct {
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
		Suburb  string `json:"suburb"`
		State   string `json:"state"`
	} `json:"address"`
}

// ReverseGeocode is best-effort: any failure degrades to a coordinate-only
// placemark with Unknown city/region instead of an error.
func (p *bridgeProvider) ReverseGeocode(ctx context.Context, latitude, longitude float64) entity.Placemark {
	if p.geocodeURL == "" {
		return entity.CoordinatePlacemark(latitude, longitude)
	}

	query := url.Values{}
	query.Set("format", "jsonv2")
	query.Set("lat", strconv.FormatFloat(latitude, 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(longitude, 'f', -1, 64))

	var res nominatimResponse
	if err := p.getJSON(ctx, p.geocodeURL+"/reverse?"+query.Encode(), &res); err != nil {
		p.logger.Warn("Reverse geocode failed", slog.Any("error", err))

		return entity.CoordinatePlacemark(latitude, longitude)
	}

	city := res.Address.City
	if city == "" {
		city = res.Address.Town
	}
	if city == "" {
		city = res.Address.Village
	}
	if city == "" {
		city = entity.UnknownPlace
	}
	region := res.Address.State
	if region == "" {
		region = entity.UnknownPlace
	}
	formatted := res.DisplayName
	if formatted == "" {
		formatted = entity.CoordinatePlacemark(latitude, longitude).FormattedAddress
	}

	return entity.Placemark{
		City:             city,
		Region:           region,
		Neighborhood:     res.Address.Suburb,
		FormattedAddress: formatted,
	}
}

func (p *bridgeProvider) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return errors.WithStack(err)
	}

	return p.doJSON(req, out)
}

func (p *bridgeProvider) doJSON(req *http.Request, out any) error {
	resp, err := p.client.Do(req)
	if err != nil {
		return errors.WithStack(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("unexpected status %d from %s", resp.StatusCode, req.URL.Path)
	}

	return errors.WithStack(json.NewDecoder(resp.Body).Decode(out))
}
