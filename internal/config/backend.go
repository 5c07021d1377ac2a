package config

// ConfigBackend abstracts where non-secret settings live on each platform.
// macOS reads and writes the com.cvgo.app defaults domain through the
// `defaults` CLI; everything else uses a JSON file under XDG_CONFIG_HOME.
// Secrets (the agency API token) never pass through a backend.
type ConfigBackend interface {
	GetString(key string) (val string, ok bool, err error)
	GetInt(key string) (val int, ok bool, err error)
	SetString(key, val string) error
	SetInt(key string, val int) error
	Delete(key string) error
}
