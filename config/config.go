// Package config loads the service configuration from YAML files with
// environment variable overrides.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const defaultPath = "."

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port     int `json:"port" yaml:"port"`
		Timeouts struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	// Location configuration for the resolver, cache and fallback policy
	Location *LocationConfig `json:"location" yaml:"location"`

	// Notification configuration for the local scheduler
	Notification *NotificationConfig `json:"notification" yaml:"notification"`

	// Storage configuration for the durable key-value store
	Storage StorageConfig `json:"storage" yaml:"storage"`

	// GeoBridge configuration for the device location bridge
	GeoBridge *GeoBridgeConfig `json:"geoBridge" yaml:"geoBridge"`

	// Firebase configuration for push delivery
	Firebase *FirebaseConfig `json:"firebase" yaml:"firebase"`

	// PubSub configuration for fired-notification events
	PubSub *PubSubConfig `json:"pubsub" yaml:"pubsub"`

	// QRCode configuration for address-share QR codes
	QRCode *QRCodeConfig `json:"qrcode" yaml:"qrcode"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// FallbackCity is the fixed known-good location used when real resolution is
// unavailable or denied.
type FallbackCity struct {
	Name      string  `json:"name" yaml:"name"`
	Region    string  `json:"region" yaml:"region"`
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

// LocationConfig defines resolver, cache and fallback policy settings
type LocationConfig struct {
	CacheTTL           time.Duration `json:"cacheTtl" yaml:"cacheTtl"`
	ResolveTimeout     time.Duration `json:"resolveTimeout" yaml:"resolveTimeout"`
	PermissionCooldown time.Duration `json:"permissionCooldown" yaml:"permissionCooldown"`
	HighAccuracy       bool          `json:"highAccuracy" yaml:"highAccuracy"`
	UseFallback        bool          `json:"useFallback" yaml:"useFallback"`
	FallbackCity       FallbackCity  `json:"fallbackCity" yaml:"fallbackCity"`
}

// NotificationConfig defines local notification scheduling settings
type NotificationConfig struct {
	Enabled      bool     `json:"enabled" yaml:"enabled"`
	HistoryLimit int      `json:"historyLimit" yaml:"historyLimit"`
	DeviceTokens []string `json:"deviceTokens" yaml:"deviceTokens"`
}

// StorageConfig defines the durable key-value store location. Bucket is a
// gocloud.dev blob URL, e.g. "file:///var/lib/waypoint" or "mem://".
type StorageConfig struct {
	Bucket string `json:"bucket" yaml:"bucket"`
}

// GeoBridgeConfig defines the device bridge and reverse geocoding endpoints
type GeoBridgeConfig struct {
	BaseURL        string        `json:"baseUrl" yaml:"baseUrl"`
	GeocodeURL     string        `json:"geocodeUrl" yaml:"geocodeUrl"`
	RequestTimeout time.Duration `json:"requestTimeout" yaml:"requestTimeout"`
}

// FirebaseConfig defines Firebase configuration for push notifications
type FirebaseConfig struct {
	ProjectID       string `json:"projectId" yaml:"projectId"`
	CredentialsPath string `json:"credentialsPath" yaml:"credentialsPath"`
}

// PubSubConfig defines Pub/Sub configuration for event publishing
type PubSubConfig struct {
	// Provider type: "local" for local HTTP or "google" for Google Pub/Sub
	Provider string `json:"provider" yaml:"provider"`

	// Google Cloud project ID (for google provider)
	ProjectID string `json:"projectId" yaml:"projectId"`

	// Pub/Sub topic ID (for google provider)
	TopicID string `json:"topicId" yaml:"topicId"`

	// Local HTTP endpoint for development (for local provider)
	LocalEndpoint string `json:"localEndpoint" yaml:"localEndpoint"`
}

// QRCodeConfig defines QR code generation configuration
type QRCodeConfig struct {
	Size                 int    `json:"size" yaml:"size"`
	ErrorCorrectionLevel string `json:"errorCorrectionLevel" yaml:"errorCorrectionLevel"`
}

// Resolver policy defaults applied when the yaml omits them.
const (
	DefaultCacheTTL           = 5 * time.Minute
	DefaultResolveTimeout     = 15 * time.Second
	DefaultPermissionCooldown = 30 * time.Second
	DefaultHistoryLimit       = 100
)

// LoadWithEnv loads .yaml files through koanf, then applies environment
// variable overrides (LOCATION_CACHETTL -> location.cachettl, matched
// case-insensitively against struct fields).
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			searchPaths = append(searchPaths, filepath.Join(pwd, path))
		}
	}

	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	// Environment variables override file values: A_B_C -> a.b.c.
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			return strings.ReplaceAll(strings.ToLower(k), "_", "."), v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Location == nil {
		cfg.Location = &LocationConfig{}
	}
	if cfg.Location.CacheTTL <= 0 {
		cfg.Location.CacheTTL = DefaultCacheTTL
	}
	if cfg.Location.ResolveTimeout <= 0 {
		cfg.Location.ResolveTimeout = DefaultResolveTimeout
	}
	if cfg.Location.PermissionCooldown <= 0 {
		cfg.Location.PermissionCooldown = DefaultPermissionCooldown
	}
	if cfg.Notification == nil {
		cfg.Notification = &NotificationConfig{Enabled: true}
	}
	if cfg.Notification.HistoryLimit <= 0 {
		cfg.Notification.HistoryLimit = DefaultHistoryLimit
	}
	if cfg.Storage.Bucket == "" {
		cfg.Storage.Bucket = "mem://"
	}
}
