package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	API     APIConfig
	Sweep   SweepConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port int
}

type StorageConfig struct {
	DataDir    string
	UploadsDir string
}

type APIConfig struct {
	Token string // bearer token for the agency endpoints
}

type SweepConfig struct {
	Interval string // Go duration string
	MaxAge   string
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	dataDir := defaultDataDir()
	return Config{
		Server: ServerConfig{
			Port: 4600,
		},
		Storage: StorageConfig{
			DataDir:    dataDir,
			UploadsDir: "", // derived from DataDir when empty, see UploadsPath
		},
		Sweep: SweepConfig{
			Interval: "1h",
			MaxAge:   "48h",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the platform-native backend, environment
// variables, and platform secret store.
//
// On macOS the backend is UserDefaults (domain: com.cvgo.app) and the API
// token falls back to macOS Keychain.
// On Linux the backend is a JSON file at $XDG_CONFIG_HOME/cvgo/config.json
// and the token falls back to a secrets file under $XDG_DATA_HOME/cvgo.
//
// Environment variables (CVGO_*) override backend values on all platforms.
func Load() (Config, error) {
	return loadWith(newPlatformBackend(), keychainReader{})
}

// keychain abstracts secret storage for testing.
type keychain interface {
	Get(service, account string) (string, error)
}

func loadWith(b ConfigBackend, kc keychain) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	if cfg.API.Token == "" {
		if key, err := kc.Get("cvgo", "api_token"); err == nil && key != "" {
			cfg.API.Token = key
		}
	}

	if cfg.API.Token == "" {
		msg := "missing required config: agency API token. " +
			"Set it via environment variable CVGO_API_TOKEN" +
			apiKeyHint()
		return Config{}, fmt.Errorf("%s", msg)
	}

	if _, err := time.ParseDuration(cfg.Sweep.Interval); err != nil {
		return Config{}, fmt.Errorf("invalid sweep.interval %q: %w", cfg.Sweep.Interval, err)
	}
	if _, err := time.ParseDuration(cfg.Sweep.MaxAge); err != nil {
		return Config{}, fmt.Errorf("invalid sweep.max_age %q: %w", cfg.Sweep.MaxAge, err)
	}

	return cfg, nil
}

// UploadsPath resolves the uploads directory, defaulting to DataDir/uploads.
func (c Config) UploadsPath() string {
	if c.Storage.UploadsDir != "" {
		return c.Storage.UploadsDir
	}
	return filepath.Join(c.Storage.DataDir, "uploads")
}

// SweepInterval returns the parsed sweep interval. Load validated it.
func (c Config) SweepInterval() time.Duration {
	d, _ := time.ParseDuration(c.Sweep.Interval)
	return d
}

// SweepMaxAge returns the parsed session retention window.
func (c Config) SweepMaxAge() time.Duration {
	d, _ := time.ParseDuration(c.Sweep.MaxAge)
	return d
}

// keychainReader reads from the platform secret store.
type keychainReader struct{}

func (keychainReader) Get(service, account string) (string, error) {
	out, err := keychainExec(service, account)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
