package config

// loader.go - configuration loading from .env files and environment
// variables.
//
// Precedence order (highest wins):
//   1. CLI flags  (handled by cmd/root.go)
//   2. Environment variables  (LoadFromEnv)
//   3. .env file  (LoadEnvFile; never overrides a variable already set)
//   4. Defaults   (defaults.go)

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// LoadEnvFile loads KEY=VALUE pairs from path into the process
// environment.  An empty path means CHATD_ENV_FILE, then ".env".  A
// missing default file is not an error; a missing explicit one is.
func LoadEnvFile(path string) error {
	explicit := true
	if path == "" {
		path = os.Getenv(EnvPrefix + "_ENV_FILE")
	}
	if path == "" {
		path = DefaultEnvFile
		explicit = false
	}

	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("env file %s: %w", path, err)
	}
	return nil
}

// LoadFromEnv overlays CHATD_* environment variables onto cfg.  Unset
// variables leave the existing value untouched.  Call it BEFORE CLI
// flag parsing so that flags take precedence.
func LoadFromEnv(cfg *Config) error {
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return fmt.Errorf("environment: %w", err)
	}
	return nil
}

// Load returns defaults overlaid with the .env file and environment.
func Load() (*Config, error) {
	cfg := Default()
	if err := LoadEnvFile(""); err != nil {
		return nil, err
	}
	if err := LoadFromEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
