package types

import "errors"

// Config holds backend selection and parameters for opening a store pair.
type Config struct {
	Backend string `json:"backend" yaml:"backend"`
	DataDir string `json:"data_dir" yaml:"data_dir"`
	BaseURL string `json:"base_url" yaml:"base_url"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
	BackendServer = "server"
)

// Config validation errors.
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
	ErrBaseURLEmpty   = errors.New("base_url is required for the server backend")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
	BackendServer: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel
// error from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.Backend == BackendServer && c.BaseURL == "" {
		return ErrBaseURLEmpty
	}
	return nil
}
