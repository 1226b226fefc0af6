package geo

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"waypoint/config"
	"waypoint/internal/domain/entity"
	"waypoint/internal/domain/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, baseURL, geocodeURL string) service.GeoProvider {
	t.Helper()
	provider, err := NewBridgeProvider(Params{
		Config: &config.Config{
			GeoBridge: &config.GeoBridgeConfig{
				BaseURL:    baseURL,
				GeocodeURL: geocodeURL,
			},
		},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)

	return provider
}

func bridgeServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return srv
}

func TestNewBridgeProvider_RequiresBaseURL(t *testing.T) {
	_, err := NewBridgeProvider(Params{
		Config: &config.Config{},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	assert.Error(t, err)
}

func TestBridgeProvider_ServicesEnabled(t *testing.T) {
	srv := bridgeServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/location/services", r.URL.Path)
		w.Write([]byte(`{"enabled": true}`))
	})

	provider := newTestProvider(t, srv.URL, "")
	assert.True(t, provider.ServicesEnabled(context.Background()))
}

func TestBridgeProvider_ServicesEnabledFailsClosed(t *testing.T) {
	t.Run("error status", func(t *testing.T) {
		srv := bridgeServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		provider := newTestProvider(t, srv.URL, "")
		assert.False(t, provider.ServicesEnabled(context.Background()))
	})

	t.Run("connection failure", func(t *testing.T) {
		srv := bridgeServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"enabled": true}`))
		})
		srv.Close()

		provider := newTestProvider(t, srv.URL, "")
		assert.False(t, provider.ServicesEnabled(context.Background()))
	})
}

func TestBridgeProvider_PermissionStatus(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		want   entity.PermissionStatus
	}{
		{name: "granted", body: `{"status": "granted"}`, status: http.StatusOK, want: entity.PermissionGranted},
		{name: "undetermined", body: `{"status": "undetermined"}`, status: http.StatusOK, want: entity.PermissionUndetermined},
		{name: "unknown value maps to denied", body: `{"status": "whenInUse"}`, status: http.StatusOK, want: entity.PermissionDenied},
		{name: "error status maps to denied", body: ``, status: http.StatusBadGateway, want: entity.PermissionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := bridgeServer(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/location/permission", r.URL.Path)
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			provider := newTestProvider(t, srv.URL, "")
			assert.Equal(t, tt.want, provider.PermissionStatus(context.Background()))
		})
	}
}

func TestBridgeProvider_RequestPermission(t *testing.T) {
	srv := bridgeServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/location/permission/request", r.URL.Path)
		w.Write([]byte(`{"granted": true}`))
	})

	provider := newTestProvider(t, srv.URL, "")
	assert.True(t, provider.RequestPermission(context.Background()))
}

func TestBridgeProvider_RequestPermissionFailureIsDenial(t *testing.T) {
	srv := bridgeServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	provider := newTestProvider(t, srv.URL, "")
	assert.False(t, provider.RequestPermission(context.Background()))
}

func TestBridgeProvider_Position(t *testing.T) {
	srv := bridgeServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/location/position", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("high_accuracy"))
		w.Write([]byte(`{"latitude": 3.8665, "longitude": 11.5167, "accuracy": 12.5}`))
	})

	provider := newTestProvider(t, srv.URL, "")
	fix, err := provider.Position(context.Background(), true)
	require.NoError(t, err)
	assert.InDelta(t, 3.8665, fix.Latitude, 1e-9)
	assert.InDelta(t, 11.5167, fix.Longitude, 1e-9)
}

func TestBridgeProvider_PositionFailure(t *testing.T) {
	srv := bridgeServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	provider := newTestProvider(t, srv.URL, "")
	_, err := provider.Position(context.Background(), false)
	assert.ErrorIs(t, err, service.ErrPositionUnavailable)
}

func TestBridgeProvider_ReverseGeocode(t *testing.T) {
	geocode := bridgeServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		assert.Equal(t, "jsonv2", r.URL.Query().Get("format"))
		assert.Equal(t, "3.848", r.URL.Query().Get("lat"))
		assert.Equal(t, "11.5021", r.URL.Query().Get("lon"))
		w.Write([]byte(`{
			"display_name": "Bastos, Yaoundé, Centre, Cameroon",
			"address": {"city": "Yaoundé", "suburb": "Bastos", "state": "Centre"}
		}`))
	})

	provider := newTestProvider(t, "http://unused.invalid", geocode.URL)
	placemark := provider.ReverseGeocode(context.Background(), 3.848, 11.5021)
	assert.Equal(t, "Yaoundé", placemark.City)
	assert.Equal(t, "Centre", placemark.Region)
	assert.Equal(t, "Bastos", placemark.Neighborhood)
	assert.Equal(t, "Bastos, Yaoundé, Centre, Cameroon", placemark.FormattedAddress)
}

func TestBridgeProvider_ReverseGeocodeCityFallbackChain(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "town when city missing", body: `{"address": {"town": "Mbalmayo", "state": "Centre"}}`, want: "Mbalmayo"},
		{name: "village when town missing", body: `{"address": {"village": "Nkolbisson", "state": "Centre"}}`, want: "Nkolbisson"},
		{name: "sentinel when all missing", body: `{"address": {"state": "Centre"}}`, want: entity.UnknownPlace},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			geocode := bridgeServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte(tt.body))
			})

			provider := newTestProvider(t, "http://unused.invalid", geocode.URL)
			placemark := provider.ReverseGeocode(context.Background(), 3.848, 11.5021)
			assert.Equal(t, tt.want, placemark.City)
			assert.Equal(t, "Centre", placemark.Region)
		})
	}
}

func TestBridgeProvider_ReverseGeocodeEmptyPayloadUsesSentinels(t *testing.T) {
	geocode := bridgeServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{}`))
	})

	provider := newTestProvider(t, "http://unused.invalid", geocode.URL)
	placemark := provider.ReverseGeocode(context.Background(), 3.848, 11.5021)
	assert.Equal(t, entity.UnknownPlace, placemark.City)
	assert.Equal(t, entity.UnknownPlace, placemark.Region)
	assert.Equal(t, "3.848, 11.5021", placemark.FormattedAddress)
}

func TestBridgeProvider_ReverseGeocodeFailureDegradesToCoordinates(t *testing.T) {
	geocode := bridgeServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	provider := newTestProvider(t, "http://unused.invalid", geocode.URL)
	placemark := provider.ReverseGeocode(context.Background(), 3.848, 11.5021)
	assert.Equal(t, entity.CoordinatePlacemark(3.848, 11.5021), placemark)
	assert.Equal(t, "3.848, 11.5021", placemark.FormattedAddress)
}

func TestBridgeProvider_ReverseGeocodeWithoutEndpoint(t *testing.T) {
	provider := newTestProvider(t, "http://unused.invalid", "")

	placemark := provider.ReverseGeocode(context.Background(), 3.848, 11.5021)
	assert.Equal(t, entity.CoordinatePlacemark(3.848, 11.5021), placemark)
}
