package server

import (
	"fmt"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// Config holds the server process configuration, loaded from environment
// variables.
type Config struct {
	Port           int    `env:"LINKWED_PORT" envDefault:"3000"`
	DataDir        string `env:"LINKWED_DATA_DIR" envDefault:"data"`
	PublicDir      string `env:"LINKWED_PUBLIC_DIR" envDefault:"public"`
	DistDir        string `env:"LINKWED_DIST_DIR" envDefault:"dist"`
	MaxUploadBytes int64  `env:"LINKWED_MAX_UPLOAD_BYTES" envDefault:"26214400"`
	AMAPKey        string `env:"LINKWED_AMAP_KEY"`
}

// ParseEnv loads a Config from environment variables.
func ParseEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// UploadDir returns the directory uploaded assets are stored in.
func (c Config) UploadDir() string {
	return filepath.Join(c.PublicDir, "uploads")
}

// MediaDir returns the directory preset media files are served from.
func (c Config) MediaDir() string {
	return filepath.Join(c.PublicDir, "media")
}
