package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment variables read by Load.
const (
	EnvBackend = "FACETARGET_BACKEND"
	EnvCascade = "FACETARGET_CASCADE"
	EnvModel   = "FACETARGET_MODEL"
	EnvMode    = "FACETARGET_MODE"
	EnvPreset  = "FACETARGET_PRESET"
	EnvWorkers = "FACETARGET_WORKERS"
)

var envKeys = map[string]string{
	"detector.backend": EnvBackend,
	"detector.cascade": EnvCascade,
	"detector.model":   EnvModel,
	"mode":             EnvMode,
	"preset":           EnvPreset,
	"workers":          EnvWorkers,
}

func bindEnv(v *viper.Viper) error {
	for key, env := range envKeys {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s: %w", env, err)
		}
	}
	return nil
}

// LoadDotEnv loads variables from a .env file without overriding ones
// already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
